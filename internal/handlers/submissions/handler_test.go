package submissions

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
	"gitlab.com/codeprep.net/internal/config"
	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/services/engine"
	"gitlab.com/codeprep.net/internal/core/services/submission"
	"gitlab.com/codeprep.net/internal/core/services/testrun"
	"gitlab.com/codeprep.net/internal/core/services/validator"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/handlers"
)

type fixture struct {
	router *mux.Router
	jwt    primary.JWTService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logging.NewNopLogger()

	cases := memory.NewTestCaseRepository()
	require.NoError(t, cases.Create(context.Background(), domain.NewTestCase("p1", "1 + 2", "3", false, true)))

	eng := engine.NewEngine(logger)
	for _, h := range executor.NewSimulatedHandlers() {
		eng.Register(h)
	}
	runner := testrun.NewTestRunService(validator.NewCodeValidator(0), eng, cases,
		memory.NewExecutionRecordRepository(), recordpublisher.NopPublisher{}, nil, logger, testrun.Options{})
	svc := submission.NewSubmissionService(runner, memory.NewSubmissionRepository(), nil, logger)

	jwt := crypto.NewJWTService(&config.JwtConfig{Secret: "test-secret", ExpiresIn: time.Hour})
	router := mux.NewRouter()
	NewHandler(svc, logger).RegisterRoutes(router, handlers.New(jwt, nil, handlers.RateLimitOptions{}, logger))
	return &fixture{router: router, jwt: jwt}
}

func (f *fixture) do(t *testing.T, method, path, body, userID string, role domain.Role) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
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

func TestSubmitAndRead(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/problems/p1/submissions", `{"code":"print(1 + 2)","language":"Python"}`, "alice", domain.RoleUser)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	accepted := decode[domain.Submission](t, rec)
	assert.Equal(t, domain.StatusAccepted, accepted.Status)
	assert.Equal(t, "python", accepted.Language)
	assert.Equal(t, 1, accepted.TestCasesPassed)

	rec = f.do(t, http.MethodPost, "/api/problems/p1/submissions", `{"code":"eval('1+2')","language":"python"}`, "alice", domain.RoleUser)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, domain.StatusCompileError, decode[domain.Submission](t, rec).Status)

	rec = f.do(t, http.MethodGet, "/api/submissions?status=Accepted", "", "alice", domain.RoleUser)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]domain.Submission](t, rec)
	require.Len(t, listed, 1)
	assert.Equal(t, accepted.ID, listed[0].ID)

	rec = f.do(t, http.MethodGet, "/api/submissions/stats", "", "alice", domain.RoleUser)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[domain.SubmissionStats](t, rec)
	assert.Equal(t, 2, stats.TotalSubmissions)
	assert.Equal(t, 1, stats.AcceptedSubmissions)
	assert.Equal(t, 1, stats.ProblemsSolved)

	path := "/api/submissions/" + accepted.ID.String()
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, path, "", "alice", domain.RoleUser).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, path, "", "mallory", domain.RoleUser).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, path, "", "root", domain.RoleAdmin).Code)
}

func TestSubmitRejections(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/problems/p1/submissions", `{"code":"x","language":"cobol"}`, "alice", domain.RoleUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/problems/p1/submissions", `{"language":"python"}`, "alice", domain.RoleUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/submissions?status=Great", "", "alice", domain.RoleUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/submissions/123", "", "alice", domain.RoleUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/submissions/00000000-0000-0000-0000-000000000001", "", "alice", domain.RoleUser)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
