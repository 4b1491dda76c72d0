package records

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/codeprep.net/internal/adapter/crypto"
	"gitlab.com/codeprep.net/internal/adapter/logging"
	"gitlab.com/codeprep.net/internal/adapter/memory"
	"gitlab.com/codeprep.net/internal/config"
	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/services/record"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/handlers"
)

type fixture struct {
	router *mux.Router
	jwt    primary.JWTService
}

func seed(t *testing.T, repo *memory.ExecutionRecordRepository, userID, problemID string, passed, quick bool) {
	t.Helper()
	result := &domain.ExecutionResult{Passed: passed, TotalCount: 1, IsQuickTest: quick, ExecutionTimeMs: 10}
	if passed {
		result.PassedCount = 1
	}
	_, err := repo.Append(context.Background(), domain.NewExecutionRecord(userID, problemID, "code", "python", result))
	require.NoError(t, err)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logging.NewNopLogger()
	repo := memory.NewExecutionRecordRepository()
	seed(t, repo, "alice", "p1", true, true)
	seed(t, repo, "alice", "p1", false, false)
	seed(t, repo, "alice", "p2", true, false)
	seed(t, repo, "bob", "p1", true, false)

	jwt := crypto.NewJWTService(&config.JwtConfig{Secret: "test-secret", ExpiresIn: time.Hour})
	router := mux.NewRouter()
	NewHandler(record.NewRecordService(repo, logger), logger).RegisterRoutes(router, handlers.New(jwt, nil, handlers.RateLimitOptions{}, logger))
	return &fixture{router: router, jwt: jwt}
}

func (f *fixture) do(t *testing.T, method, path, userID string, role domain.Role) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	token, err := f.jwt.GenerateTokenHMAC(context.Background(), "HS256", map[string]interface{}{
		"sub":  userID,
		"role": string(role),
	})
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env), rec.Body.String())
	return env.Data
}

func TestUserHistory(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/executions", "alice", domain.RoleUser)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.ExecutionRecord](t, rec), 3)

	rec = f.do(t, http.MethodGet, "/api/executions?problem_id=p1&limit=1", "alice", domain.RoleUser)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.ExecutionRecord](t, rec), 1)

	rec = f.do(t, http.MethodGet, "/api/problems/p2/execution-records", "alice", domain.RoleUser)
	require.Equal(t, http.StatusOK, rec.Code)
	onlyP2 := decode[[]domain.ExecutionRecord](t, rec)
	require.Len(t, onlyP2, 1)
	assert.Equal(t, "p2", onlyP2[0].ProblemID)

	rec = f.do(t, http.MethodGet, "/api/executions?limit=abc", "alice", domain.RoleUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStats(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/executions/stats", "alice", domain.RoleUser)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[domain.ExecutionStats](t, rec)
	assert.Equal(t, 3, mine.TotalExecutions)
	assert.Equal(t, 2, mine.PassedExecutions)
	assert.Equal(t, 1, mine.QuickTestExecutions)
	assert.Equal(t, 2, mine.FullTestExecutions)

	rec = f.do(t, http.MethodGet, "/api/problems/p1/executions/stats", "alice", domain.RoleUser)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[domain.ExecutionStats](t, rec).TotalExecutions)
}

func TestAdminRoutes(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/api/admin/problems/p1/executions", "alice", domain.RoleUser).Code)

	rec := f.do(t, http.MethodGet, "/api/admin/problems/p1/executions", "root", domain.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.ExecutionRecord](t, rec), 3)

	rec = f.do(t, http.MethodDelete, "/api/admin/users/alice/executions", "root", domain.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), decode[PurgeResponse](t, rec).Deleted)

	rec = f.do(t, http.MethodDelete, "/api/admin/problems/p1/executions", "root", domain.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[PurgeResponse](t, rec).Deleted)

	rec = f.do(t, http.MethodGet, "/api/executions/stats", "alice", domain.RoleUser)
	assert.Zero(t, decode[domain.ExecutionStats](t, rec).TotalExecutions)
}
