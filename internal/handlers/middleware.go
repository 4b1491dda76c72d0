package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
)

type ctxKey struct{}

// WithAuth stores the verified token payload on ctx.
func WithAuth(ctx context.Context, payload domain.AuthPayload) context.Context {
	return context.WithValue(ctx, ctxKey{}, payload)
}

// AuthFromContext returns the payload stored by JWTMiddleware.
func AuthFromContext(ctx context.Context) (domain.AuthPayload, bool) {
	payload, ok := ctx.Value(ctxKey{}).(domain.AuthPayload)
	return payload, ok
}

type RateLimitOptions struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

type MiddlewareProvider struct {
	jwtService primary.JWTService
	limiter    secondary.RateLimiter
	rateLimit  RateLimitOptions
	logger     primary.Logger
}

func New(jwtService primary.JWTService, limiter secondary.RateLimiter, rateLimit RateLimitOptions, logger primary.Logger) *MiddlewareProvider {
	return &MiddlewareProvider{
		jwtService: jwtService,
		limiter:    limiter,
		rateLimit:  rateLimit,
		logger:     logger,
	}
}

func (m *MiddlewareProvider) JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			ResponseError(w, "Authorization header missing", http.StatusUnauthorized)
			return
		}

		// Extract token from "Bearer <token>"
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		payload, err := m.jwtService.ParseTokenHMAC(r.Context(), tokenString)
		if err != nil {
			m.logger.Debug("Rejected token", "error", err)
			ResponseError(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), payload)))
	})
}

// RequireAdmin must run after JWTMiddleware.
func (m *MiddlewareProvider) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, ok := AuthFromContext(r.Context())
		if !ok {
			ResponseError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if payload.Role != domain.RoleAdmin {
			ResponseError(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit counts requests per user. Limiter failures let the request through.
func (m *MiddlewareProvider) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.rateLimit.Enabled || m.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}
		key := clientIP(r)
		if payload, ok := AuthFromContext(r.Context()); ok {
			key = "user:" + payload.UserID
		}

		allowed, err := m.limiter.Allow(r.Context(), key, m.rateLimit.Requests, m.rateLimit.Window)
		if err != nil {
			m.logger.Warn("Rate limiter unavailable", "key", key, "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(m.rateLimit.Window.Seconds())))
			ResponseError(w, "Too many execution requests, please try again later", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return "ip:" + strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return "ip:" + host
}

// LongRunning clears the server's read and write deadlines for routes that
// grade code. Those are bounded by the per-case execution timeouts instead.
func (m *MiddlewareProvider) LongRunning(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := http.NewResponseController(w)
		if err := rc.SetReadDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
			m.logger.Warn("Failed to clear read deadline", "error", err)
		}
		if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
			m.logger.Warn("Failed to clear write deadline", "error", err)
		}
		next.ServeHTTP(w, r)
	})
}

// Authenticated wraps h with token verification.
func (m *MiddlewareProvider) Authenticated(h http.HandlerFunc) http.Handler {
	return m.JWTMiddleware(h)
}

// Limited wraps a grading route with token verification and the per-user
// rate limit.
func (m *MiddlewareProvider) Limited(h http.HandlerFunc) http.Handler {
	return m.LongRunning(m.JWTMiddleware(m.RateLimit(h)))
}

// Admin wraps h with token verification and the admin role check.
func (m *MiddlewareProvider) Admin(h http.HandlerFunc) http.Handler {
	return m.JWTMiddleware(m.RequireAdmin(h))
}
