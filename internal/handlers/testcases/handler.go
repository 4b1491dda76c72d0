package testcases

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/services/testcase"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/handlers"
)

// BatchRequest creates several cases of one problem at once
type BatchRequest struct {
	TestCases []domain.TestCaseInput `json:"test_cases"`
}

type Handler struct {
	testCaseService testcase.ITestCaseService
	logger          primary.Logger
}

func NewHandler(testCaseService testcase.ITestCaseService, logger primary.Logger) *Handler {
	return &Handler{
		testCaseService: testCaseService,
		logger:          logger,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router, mw *handlers.MiddlewareProvider) {
	router.HandleFunc("/api/problems/{problemId}/test-cases", h.ListVisible).Methods(http.MethodGet)

	router.Handle("/api/admin/problems/{problemId}/test-cases", mw.Admin(h.ListAll)).Methods(http.MethodGet)
	router.Handle("/api/admin/problems/{problemId}/test-cases", mw.Admin(h.Create)).Methods(http.MethodPost)
	router.Handle("/api/admin/problems/{problemId}/test-cases/batch", mw.Admin(h.CreateBatch)).Methods(http.MethodPost)
	router.Handle("/api/admin/test-cases/{testCaseId}", mw.Admin(h.Get)).Methods(http.MethodGet)
	router.Handle("/api/admin/test-cases/{testCaseId}", mw.Admin(h.Update)).Methods(http.MethodPut)
	router.Handle("/api/admin/test-cases/{testCaseId}", mw.Admin(h.Delete)).Methods(http.MethodDelete)
}

func (h *Handler) ListVisible(w http.ResponseWriter, r *http.Request) {
	cases, err := h.testCaseService.ListVisible(r.Context(), mux.Vars(r)["problemId"])
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to list test cases", err)
		return
	}
	handlers.ResponseData(w, http.StatusOK, cases)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	cases, err := h.testCaseService.ListForProblem(r.Context(), mux.Vars(r)["problemId"])
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to list test cases", err)
		return
	}
	handlers.ResponseData(w, http.StatusOK, cases)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.TestCaseInput
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		handlers.ResponseError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	tc, err := h.testCaseService.Create(r.Context(), mux.Vars(r)["problemId"], req)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to create test case", err)
		return
	}
	handlers.ResponseData(w, http.StatusCreated, tc)
}

func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		handlers.ResponseError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	cases, err := h.testCaseService.CreateBatch(r.Context(), mux.Vars(r)["problemId"], req.TestCases)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to create test cases", err)
		return
	}
	handlers.ResponseData(w, http.StatusCreated, cases)
}

func (h *Handler) testCaseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := mux.Vars(r)["testCaseId"]
	id, err := uuid.Parse(idStr)
	if err != nil {
		handlers.ResponseError(w, "Invalid test case ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.testCaseID(w, r)
	if !ok {
		return
	}
	tc, err := h.testCaseService.Get(r.Context(), id)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to get test case", err)
		return
	}
	handlers.ResponseData(w, http.StatusOK, tc)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.testCaseID(w, r)
	if !ok {
		return
	}
	var req domain.TestCaseInput
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		handlers.ResponseError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	tc, err := h.testCaseService.Update(r.Context(), id, req)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to update test case", err)
		return
	}
	handlers.ResponseData(w, http.StatusOK, tc)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.testCaseID(w, r)
	if !ok {
		return
	}
	if err := h.testCaseService.Delete(r.Context(), id); err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to delete test case", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
