package middleware

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/lunchclub/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// OperatorKey is the context key for storing the authenticated operator.
const OperatorKey contextKey = "operator"

// GetOperator extracts the operator name from the context.
// Returns empty string if not found.
func GetOperator(ctx context.Context) string {
	operator, _ := ctx.Value(OperatorKey).(string)
	return operator
}

// RequireAuth returns an interceptor that validates JWT bearer tokens for the
// listed procedures and lets every other procedure through untouched.
// Rejected calls are logged here because they never reach inner interceptors.
// A nil jwtManager means auth is not configured: the listed procedures are
// refused with CodeFailedPrecondition.
func RequireAuth(jwtManager *auth.JWTManager, procedures ...string) connect.UnaryInterceptorFunc {
	protected := make(map[string]bool, len(procedures))
	for _, p := range procedures {
		protected[p] = true
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if !protected[req.Spec().Procedure] {
				return next(ctx, req)
			}
			if jwtManager == nil {
				return nil, reject(req, connect.CodeFailedPrecondition, auth.ErrAuthDisabled)
			}

			// Extract Authorization header
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, reject(req, connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			// Parse Bearer token
			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				return nil, reject(req, connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, reject(req, connect.CodeUnauthenticated, err)
			}

			ctx = context.WithValue(ctx, OperatorKey, claims.Operator)
			return next(ctx, req)
		}
	}
}

func reject(req connect.AnyRequest, code connect.Code, err error) error {
	slog.Warn("RPC rejected",
		"procedure", req.Spec().Procedure,
		"code", code,
		"error", err,
		"peer", req.Peer().Addr,
	)
	return connect.NewError(code, err)
}
