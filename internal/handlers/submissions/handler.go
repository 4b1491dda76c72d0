package submissions

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/services/submission"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/handlers"
)

// SubmitRequest is the body of a submission
type SubmitRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type Handler struct {
	submissionService submission.ISubmissionService
	logger            primary.Logger
}

func NewHandler(submissionService submission.ISubmissionService, logger primary.Logger) *Handler {
	return &Handler{
		submissionService: submissionService,
		logger:            logger,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router, mw *handlers.MiddlewareProvider) {
	router.Handle("/api/problems/{problemId}/submissions", mw.Limited(h.Submit)).Methods(http.MethodPost)
	router.Handle("/api/submissions", mw.Authenticated(h.List)).Methods(http.MethodGet)
	router.Handle("/api/submissions/stats", mw.Authenticated(h.Stats)).Methods(http.MethodGet)
	router.Handle("/api/submissions/{submissionId}", mw.Authenticated(h.Get)).Methods(http.MethodGet)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	payload, _ := handlers.AuthFromContext(r.Context())

	var req SubmitRequest
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		handlers.ResponseError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Code) == "" || req.Language == "" {
		handlers.ResponseError(w, "code and language are required", http.StatusBadRequest)
		return
	}

	sub, err := h.submissionService.Submit(r.Context(), payload.UserID, mux.Vars(r)["problemId"], req.Code, req.Language)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to grade submission", err)
		return
	}
	handlers.ResponseData(w, http.StatusCreated, sub)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	payload, _ := handlers.AuthFromContext(r.Context())
	page, err := handlers.ParsePage(r)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Invalid paging", err)
		return
	}
	filter := domain.SubmissionFilter{
		Status:    domain.Status(r.URL.Query().Get("status")),
		ProblemID: r.URL.Query().Get("problem_id"),
		Page:      page,
	}

	subs, err := h.submissionService.ListByUser(r.Context(), payload.UserID, filter)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to list submissions", err)
		return
	}
	handlers.ResponseData(w, http.StatusOK, subs)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	payload, _ := handlers.AuthFromContext(r.Context())
	stats, err := h.submissionService.StatsByUser(r.Context(), payload.UserID)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to compute submission stats", err)
		return
	}
	handlers.ResponseData(w, http.StatusOK, stats)
}

// Get only serves the caller's own submissions unless the caller is an admin.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	payload, _ := handlers.AuthFromContext(r.Context())
	id, err := uuid.Parse(mux.Vars(r)["submissionId"])
	if err != nil {
		handlers.ResponseError(w, "Invalid submission ID", http.StatusBadRequest)
		return
	}

	sub, err := h.submissionService.Get(r.Context(), id)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to get submission", err)
		return
	}
	if sub.UserID != payload.UserID && payload.Role != domain.RoleAdmin {
		handlers.ResponseError(w, "Submission not found", http.StatusNotFound)
		return
	}
	handlers.ResponseData(w, http.StatusOK, sub)
}
