package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/chronoshop/chronoshop/internal/auth"
	"github.com/chronoshop/chronoshop/internal/model"
)

// Authenticate returns a middleware that validates a Bearer access token
// and injects the authenticated identity into the request context.
//
// Requests without a valid token receive 401 with a JSON error body.
// All failure modes return the same response so callers cannot distinguish
// a missing token from an expired or forged one.
func Authenticate(signer *auth.TokenSigner, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				writeAuthError(w)
				return
			}

			claims, err := signer.Verify(token)
			if err != nil {
				logger.Warn("token rejected",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				writeAuthError(w)
				return
			}

			authCtx := &model.AuthContext{
				UserID:   claims.UserID,
				Username: claims.Username,
				IsAdmin:  claims.IsAdmin,
			}
			ctx := auth.ContextWithAuth(r.Context(), authCtx)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken pulls the access token from the Authorization header.
// Returns "" when the header is missing or not a Bearer scheme.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}

	return strings.TrimSpace(header[len(prefix):])
}

// writeAuthError writes a uniform 401 response.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"authentication required","code":"UNAUTHORIZED"}`))
}
