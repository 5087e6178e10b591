package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/lunchclub/internal/auth"
	"github.com/mmynk/lunchclub/internal/metrics"
	"github.com/mmynk/lunchclub/internal/service"
	"github.com/mmynk/lunchclub/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func (a *app) serve(ctx context.Context, args []string) error {
	fs := a.newFlagSet("serve", "serve [--addr ADDR]")
	addr := fs.String("addr", a.cfg.ListenAddr, "Listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", a.cfg.Database)

	server := &http.Server{
		Addr: *addr,
		// Wrap with h2c for HTTP/2 without TLS (required for Connect)
		Handler:           h2c.NewHandler(a.newServerHandler(store, metrics.New()), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", *addr, "auth", a.cfg.AuthEnabled())
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newServerHandler routes the Connect service and /metrics behind request
// logging and CORS.
func (a *app) newServerHandler(store storage.Store, m *metrics.Metrics) http.Handler {
	opts := service.Options{
		MinGroupSize:  a.cfg.MinGroupSize,
		HistoryWindow: a.cfg.HistoryWindow,
		Metrics:       m,
	}
	if a.cfg.AuthEnabled() {
		opts.Authenticator = auth.NewPasswordAuthenticator(a.cfg.Auth.Operator, a.cfg.Auth.PasswordHash)
		opts.JWTManager = auth.NewJWTManager(a.cfg.Auth.JWTSecret, a.cfg.Auth.TokenTTL)
	} else {
		slog.Warn("Operator auth not configured; ImportRoster and CommitRound are disabled")
	}

	mux := http.NewServeMux()
	path, handler := service.NewHandler(service.NewLunchService(store, opts), opts.JWTManager)
	mux.Handle(path, handler)
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return loggingMiddleware(corsMiddleware(mux))
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
