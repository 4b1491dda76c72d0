package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/codeprep.net/internal/adapter/crypto"
	"gitlab.com/codeprep.net/internal/adapter/logging"
	"gitlab.com/codeprep.net/internal/adapter/ratelimit"
	"gitlab.com/codeprep.net/internal/config"
	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/domain"
)

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return false, errors.New("redis down")
}

func newJWT() primary.JWTService {
	return crypto.NewJWTService(&config.JwtConfig{Secret: "test-secret", ExpiresIn: time.Hour})
}

func bearer(t *testing.T, jwt primary.JWTService, userID string, role domain.Role) string {
	t.Helper()
	token, err := jwt.GenerateTokenHMAC(context.Background(), "HS256", map[string]interface{}{
		"sub":      userID,
		"username": "user-" + userID,
		"role":     string(role),
	})
	require.NoError(t, err)
	return "Bearer " + token
}

func whoAmI(w http.ResponseWriter, r *http.Request) {
	payload, ok := AuthFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_, _ = w.Write([]byte(payload.UserID))
}

func serve(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestJWTMiddleware(t *testing.T) {
	jwt := newJWT()
	mw := New(jwt, nil, RateLimitOptions{}, logging.NewNopLogger())
	h := mw.Authenticated(whoAmI)

	t.Run("missing header", func(t *testing.T) {
		rec := serve(h, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Authorization header missing")
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := serve(h, "Bearer not-a-token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := crypto.NewJWTService(&config.JwtConfig{Secret: "other"})
		rec := serve(h, bearer(t, other, "u1", domain.RoleUser))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token reaches handler", func(t *testing.T) {
		rec := serve(h, bearer(t, jwt, "u1", domain.RoleUser))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "u1", rec.Body.String())
	})
}

func TestAdmin(t *testing.T) {
	jwt := newJWT()
	mw := New(jwt, nil, RateLimitOptions{}, logging.NewNopLogger())
	h := mw.Admin(whoAmI)

	assert.Equal(t, http.StatusForbidden, serve(h, bearer(t, jwt, "u1", domain.RoleUser)).Code)
	assert.Equal(t, http.StatusOK, serve(h, bearer(t, jwt, "boss", domain.RoleAdmin)).Code)
}

func TestRateLimit(t *testing.T) {
	jwt := newJWT()
	opts := RateLimitOptions{Enabled: true, Requests: 2, Window: time.Minute}

	t.Run("blocks after the limit per user", func(t *testing.T) {
		mw := New(jwt, ratelimit.NewLocalLimiter(), opts, logging.NewNopLogger())
		h := mw.Limited(whoAmI)
		alice := bearer(t, jwt, "alice", domain.RoleUser)

		assert.Equal(t, http.StatusOK, serve(h, alice).Code)
		assert.Equal(t, http.StatusOK, serve(h, alice).Code)

		rec := serve(h, alice)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
		assert.Contains(t, rec.Body.String(), "Too many execution requests")

		// another user has their own bucket
		assert.Equal(t, http.StatusOK, serve(h, bearer(t, jwt, "bob", domain.RoleUser)).Code)
	})

	t.Run("limiter failure lets requests through", func(t *testing.T) {
		mw := New(jwt, brokenLimiter{}, opts, logging.NewNopLogger())
		h := mw.Limited(whoAmI)
		alice := bearer(t, jwt, "alice", domain.RoleUser)
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, serve(h, alice).Code)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		mw := New(jwt, ratelimit.NewLocalLimiter(), RateLimitOptions{Requests: 1, Window: time.Minute}, logging.NewNopLogger())
		h := mw.Limited(whoAmI)
		alice := bearer(t, jwt, "alice", domain.RoleUser)
		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusOK, serve(h, alice).Code)
		}
	})
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.7:4000"
	assert.Equal(t, "ip:192.168.1.7", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "ip:203.0.113.9", clientIP(req))
}

func slowHandler(delay time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
		ResponseData(w, http.StatusOK, map[string]string{"state": "graded"})
	}
}

func startShortTimeoutServer(t *testing.T, h http.Handler) *httptest.Server {
	t.Helper()
	srv := httptest.NewUnstartedServer(h)
	srv.Config.ReadTimeout = 100 * time.Millisecond
	srv.Config.WriteTimeout = 100 * time.Millisecond
	srv.Start()
	t.Cleanup(srv.Close)
	return srv
}

func TestLongRunningOutlivesServerTimeouts(t *testing.T) {
	mw := New(newJWT(), nil, RateLimitOptions{}, logging.NewNopLogger())
	srv := startShortTimeoutServer(t, mw.LongRunning(slowHandler(400*time.Millisecond)))

	resp, err := http.Post(srv.URL, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "graded", body.Data["state"])
}

func TestServerTimeoutsDropSlowResponsesWithoutLongRunning(t *testing.T) {
	srv := startShortTimeoutServer(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(400 * time.Millisecond)
		ResponseData(w, http.StatusOK, map[string]string{"state": "graded"})
	}))

	resp, err := http.Post(srv.URL, "application/json", nil)
	if err == nil {
		resp.Body.Close()
	}
	assert.Error(t, err)
}

func TestLimitedClearsDeadlines(t *testing.T) {
	jwt := newJWT()
	mw := New(jwt, ratelimit.NewLocalLimiter(), RateLimitOptions{Enabled: true, Requests: 5, Window: time.Minute}, logging.NewNopLogger())
	srv := startShortTimeoutServer(t, mw.Limited(slowHandler(400*time.Millisecond)))

	req, err := http.NewRequest(http.MethodPost, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", bearer(t, jwt, "u1", domain.RoleUser))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
