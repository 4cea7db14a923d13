package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/chronoshop/chronoshop/internal/auth"
	"github.com/chronoshop/chronoshop/internal/cache"
)

// RateLimitConfig holds rate limit settings for the API.
type RateLimitConfig struct {
	// UserRatePerMinute is the sustained request rate for authenticated users.
	// Zero disables the per-user limit.
	UserRatePerMinute int
	// UserBurst is the bucket capacity for authenticated users.
	UserBurst int
	// IPRatePerSecond is the sustained request rate per client IP.
	IPRatePerSecond int
	// IPBurst is the bucket capacity per client IP.
	IPBurst int
}

// DefaultRateLimitConfig returns the default limits.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		UserRatePerMinute: 300,
		UserBurst:         30,
		IPRatePerSecond:   10,
		IPBurst:           20,
	}
}

// RateLimitUser returns a middleware that rate-limits requests per
// authenticated user using a Redis token bucket. It must run after
// Authenticate. Requests from unauthenticated contexts pass through
// untouched; the IP limiter covers those.
//
// On Redis failure the limiter fails open.
func RateLimitUser(c *cache.Cache, cfg RateLimitConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := auth.AuthFromContext(r.Context())
			if authCtx == nil || cfg.UserRatePerMinute == 0 {
				next.ServeHTTP(w, r)
				return
			}

			result, err := c.CheckUserRateLimit(r.Context(), authCtx.UserID, cfg.UserRatePerMinute, cfg.UserBurst)
			if err != nil {
				logger.Warn("rate limit check failed",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, cfg.UserRatePerMinute, result)

			if !result.Allowed {
				writeRateLimitError(w, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitIP returns a middleware that rate-limits requests by client IP.
// Intended for unauthenticated surfaces like the catalog and auth endpoints.
func RateLimitIP(c *cache.Cache, cfg RateLimitConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.IPRatePerSecond == 0 {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			result, err := c.CheckIPRateLimit(r.Context(), ip, cfg.IPRatePerSecond, cfg.IPBurst)
			if err != nil {
				logger.Warn("rate limit check failed",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			if !result.Allowed {
				setRateLimitHeaders(w, cfg.IPRatePerSecond, result)
				writeRateLimitError(w, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// setRateLimitHeaders adds standard rate limit headers to the response.
func setRateLimitHeaders(w http.ResponseWriter, limit int, result *cache.RateLimitResult) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

// writeRateLimitError writes a 429 response with Retry-After.
func writeRateLimitError(w http.ResponseWriter, result *cache.RateLimitResult) {
	retryAfter := int(result.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"rate limit exceeded","code":"RATE_LIMITED"}`))
}

// clientIP extracts the client IP, preferring proxy-set headers.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host
}
