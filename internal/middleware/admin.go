package middleware

import (
	"log/slog"
	"net/http"

	"github.com/chronoshop/chronoshop/internal/auth"
)

// RequireAdmin returns a middleware that restricts a route to admin users.
// It must run after Authenticate so the identity is already in context.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := auth.AuthFromContext(r.Context())
			if authCtx == nil {
				writeAuthError(w)
				return
			}

			if !authCtx.IsAdmin {
				logger.Warn("admin route denied",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("user_id", authCtx.UserID),
					slog.String("path", r.URL.Path),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"admin privileges required","code":"FORBIDDEN"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
