package testruns

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/services/testrun"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/handlers"
)

// TestRunRequest is the body of quick-test and full-test
type TestRunRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// LanguageView is one entry of GET /api/languages
type LanguageView struct {
	domain.LanguageConfig
	Enabled bool `json:"enabled"`
}

type runFunc func(ctx context.Context, userID, problemID, code, language string) (*domain.ExecutionResult, error)

type Handler struct {
	testRunService testrun.ITestRunService
	catalog        []domain.LanguageConfig
	enabled        func(language string) (string, bool)
	logger         primary.Logger
}

// NewHandler takes the language catalog and the engine's resolver so the
// listing can tell which languages this deployment actually runs.
func NewHandler(testRunService testrun.ITestRunService, catalog []domain.LanguageConfig, resolve func(string) (string, bool), logger primary.Logger) *Handler {
	return &Handler{
		testRunService: testRunService,
		catalog:        catalog,
		enabled:        resolve,
		logger:         logger,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router, mw *handlers.MiddlewareProvider) {
	router.HandleFunc("/api/languages", h.Languages).Methods(http.MethodGet)
	router.Handle("/api/problems/{problemId}/quick-test", mw.Limited(h.QuickTest)).Methods(http.MethodPost)
	router.Handle("/api/problems/{problemId}/full-test", mw.Limited(h.FullTest)).Methods(http.MethodPost)
}

func (h *Handler) QuickTest(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.testRunService.RunQuickTest, "Failed to run quick test")
}

func (h *Handler) FullTest(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.testRunService.RunFullTest, "Failed to run full test")
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request, run runFunc, failure string) {
	payload, ok := handlers.AuthFromContext(r.Context())
	if !ok {
		handlers.ResponseError(w, "User not authenticated", http.StatusUnauthorized)
		return
	}

	var req TestRunRequest
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		h.logger.Debug("Failed to decode request", "error", err)
		handlers.ResponseError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Code) == "" || req.Language == "" {
		handlers.ResponseError(w, "code and language are required", http.StatusBadRequest)
		return
	}

	result, err := run(r.Context(), payload.UserID, mux.Vars(r)["problemId"], req.Code, req.Language)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, failure, err)
		return
	}
	handlers.ResponseData(w, http.StatusOK, result)
}

func (h *Handler) Languages(w http.ResponseWriter, r *http.Request) {
	views := make([]LanguageView, 0, len(h.catalog))
	for _, lang := range h.catalog {
		_, ok := h.enabled(lang.ID)
		views = append(views, LanguageView{LanguageConfig: lang, Enabled: ok})
	}
	handlers.ResponseData(w, http.StatusOK, views)
}
