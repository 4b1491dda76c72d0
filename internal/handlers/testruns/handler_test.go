package testruns

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/codeprep.net/internal/adapter/crypto"
	"gitlab.com/codeprep.net/internal/adapter/executor"
	"gitlab.com/codeprep.net/internal/adapter/kafka/recordpublisher"
	"gitlab.com/codeprep.net/internal/adapter/logging"
	"gitlab.com/codeprep.net/internal/adapter/memory"
	"gitlab.com/codeprep.net/internal/adapter/ratelimit"
	"gitlab.com/codeprep.net/internal/config"
	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/services/engine"
	"gitlab.com/codeprep.net/internal/core/services/testrun"
	"gitlab.com/codeprep.net/internal/core/services/validator"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/handlers"
)

type fixture struct {
	router  *mux.Router
	jwt     primary.JWTService
	records *memory.ExecutionRecordRepository
}

func newFixture(t *testing.T, rateLimit handlers.RateLimitOptions) *fixture {
	t.Helper()
	logger := logging.NewNopLogger()
	ctx := context.Background()

	cases := memory.NewTestCaseRepository()
	quick := domain.NewTestCase("p1", "1 + 2", "3", false, true)
	hidden := domain.NewTestCase("p1", "2 * (3 + 4)", "14", true, false)
	require.NoError(t, cases.CreateBatch(ctx, []*domain.TestCase{quick, hidden}))

	eng := engine.NewEngine(logger)
	for _, h := range executor.NewSimulatedHandlers() {
		eng.Register(h)
	}
	eng.Register(executor.NewSimulatedHandlers()[0], "py")

	records := memory.NewExecutionRecordRepository()
	svc := testrun.NewTestRunService(validator.NewCodeValidator(0), eng, cases, records,
		recordpublisher.NopPublisher{}, nil, logger, testrun.Options{})

	jwt := crypto.NewJWTService(&config.JwtConfig{Secret: "test-secret", ExpiresIn: time.Hour})
	mw := handlers.New(jwt, ratelimit.NewLocalLimiter(), rateLimit, logger)

	catalog := []domain.LanguageConfig{
		{ID: "python", Name: "Python"},
		{ID: "rust", Name: "Rust"},
	}

	router := mux.NewRouter()
	NewHandler(svc, catalog, eng.Resolve, logger).RegisterRoutes(router, mw)
	return &fixture{router: router, jwt: jwt, records: records}
}

func (f *fixture) post(t *testing.T, path, body string, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if userID != "" {
		token, err := f.jwt.GenerateTokenHMAC(context.Background(), "HS256", map[string]interface{}{
			"sub":  userID,
			"role": string(domain.RoleUser),
		})
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

type resultEnvelope struct {
	Success bool                   `json:"success"`
	Data    domain.ExecutionResult `json:"data"`
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) domain.ExecutionResult {
	t.Helper()
	var env resultEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.True(t, env.Success)
	return env.Data
}

func TestQuickTest(t *testing.T) {
	f := newFixture(t, handlers.RateLimitOptions{})

	rec := f.post(t, "/api/problems/p1/quick-test", `{"code":"print(1 + 2)","language":"Python"}`, "u1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decodeResult(t, rec)
	assert.True(t, res.Passed)
	assert.True(t, res.IsQuickTest)
	assert.Equal(t, 1, res.TotalCount)

	stats, err := f.records.StatsByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.QuickTestExecutions)
}

func TestFullTestRedactsHiddenCases(t *testing.T) {
	f := newFixture(t, handlers.RateLimitOptions{})

	rec := f.post(t, "/api/problems/p1/full-test", `{"code":"print(1 + 2)","language":"py"}`, "u1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decodeResult(t, rec)
	assert.True(t, res.Passed)
	assert.False(t, res.IsQuickTest)
	require.Len(t, res.Results, 2)
	for _, r := range res.Results {
		if r.IsHidden {
			assert.Empty(t, r.Input)
			assert.Empty(t, r.ExpectedOutput)
		}
	}
}

func TestRunRejections(t *testing.T) {
	f := newFixture(t, handlers.RateLimitOptions{})

	t.Run("no token", func(t *testing.T) {
		rec := f.post(t, "/api/problems/p1/quick-test", `{"code":"x","language":"python"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing code", func(t *testing.T) {
		rec := f.post(t, "/api/problems/p1/quick-test", `{"code":"  ","language":"python"}`, "u1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := f.post(t, "/api/problems/p1/quick-test", `{"code":`, "u1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("denied code", func(t *testing.T) {
		rec := f.post(t, "/api/problems/p1/quick-test", `{"code":"import os\nprint(1)","language":"python"}`, "u1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "import os")
	})

	t.Run("unsupported language", func(t *testing.T) {
		rec := f.post(t, "/api/problems/p1/full-test", `{"code":"main = print 3","language":"haskell"}`, "u1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "unsupported language")
	})

	stats, err := f.records.StatsByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalExecutions)
}

func TestRunIsRateLimited(t *testing.T) {
	f := newFixture(t, handlers.RateLimitOptions{Enabled: true, Requests: 1, Window: time.Minute})

	body := `{"code":"print(1 + 2)","language":"python"}`
	assert.Equal(t, http.StatusOK, f.post(t, "/api/problems/p1/quick-test", body, "u1").Code)

	rec := f.post(t, "/api/problems/p1/quick-test", body, "u1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestLanguages(t *testing.T) {
	f := newFixture(t, handlers.RateLimitOptions{})

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/languages", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data []struct {
			ID      string `json:"id"`
			Enabled bool   `json:"enabled"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.Len(t, env.Data, 2)
	assert.Equal(t, "python", env.Data[0].ID)
	assert.True(t, env.Data[0].Enabled)
	assert.Equal(t, "rust", env.Data[1].ID)
	assert.False(t, env.Data[1].Enabled)
}
