package service

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/lunchclub/internal/auth"
	"github.com/mmynk/lunchclub/internal/middleware"
	"github.com/mmynk/lunchclub/pkg/api/apiconnect"
)

// NewHandler mounts svc with request logging and operator auth on the
// mutating procedures. jwtManager may be nil when auth is disabled.
func NewHandler(svc *LunchService, jwtManager *auth.JWTManager) (string, http.Handler) {
	return apiconnect.NewLunchServiceHandler(svc, connect.WithInterceptors(
		middleware.RequireAuth(jwtManager, ProtectedProcedures...),
		middleware.LoggingInterceptor(),
	))
}
