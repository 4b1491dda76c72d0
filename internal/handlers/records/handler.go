package records

import (
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/services/record"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/handlers"
)

// PurgeResponse reports how many records an admin purge removed
type PurgeResponse struct {
	Deleted int64 `json:"deleted"`
}

type Handler struct {
	recordService record.IRecordService
	logger        primary.Logger
}

func NewHandler(recordService record.IRecordService, logger primary.Logger) *Handler {
	return &Handler{
		recordService: recordService,
		logger:        logger,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router, mw *handlers.MiddlewareProvider) {
	router.Handle("/api/executions", mw.Authenticated(h.ListMine)).Methods(http.MethodGet)
	router.Handle("/api/executions/stats", mw.Authenticated(h.MyStats)).Methods(http.MethodGet)
	router.Handle("/api/problems/{problemId}/execution-records", mw.Authenticated(h.ListMineForProblem)).Methods(http.MethodGet)
	router.Handle("/api/problems/{problemId}/executions/stats", mw.Authenticated(h.ProblemStats)).Methods(http.MethodGet)

	router.Handle("/api/admin/problems/{problemId}/executions", mw.Admin(h.ProblemHistory)).Methods(http.MethodGet)
	router.Handle("/api/admin/problems/{problemId}/executions", mw.Admin(h.PurgeProblem)).Methods(http.MethodDelete)
	router.Handle("/api/admin/users/{userId}/executions", mw.Admin(h.PurgeUser)).Methods(http.MethodDelete)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request, problemID string) {
	payload, _ := handlers.AuthFromContext(r.Context())
	page, err := handlers.ParsePage(r)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Invalid paging", err)
		return
	}
	records, err := h.recordService.ListByUser(r.Context(), payload.UserID, domain.RecordFilter{ProblemID: problemID, Page: page})
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to list execution records", err)
		return
	}
	handlers.ResponseData(w, http.StatusOK, records)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	h.listMine(w, r, r.URL.Query().Get("problem_id"))
}

func (h *Handler) ListMineForProblem(w http.ResponseWriter, r *http.Request) {
	h.listMine(w, r, mux.Vars(r)["problemId"])
}

func (h *Handler) MyStats(w http.ResponseWriter, r *http.Request) {
	payload, _ := handlers.AuthFromContext(r.Context())
	stats, err := h.recordService.StatsByUser(r.Context(), payload.UserID)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to compute execution stats", err)
		return
	}
	handlers.ResponseData(w, http.StatusOK, stats)
}

func (h *Handler) ProblemStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.recordService.StatsByProblem(r.Context(), mux.Vars(r)["problemId"])
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to compute execution stats", err)
		return
	}
	handlers.ResponseData(w, http.StatusOK, stats)
}

func (h *Handler) ProblemHistory(w http.ResponseWriter, r *http.Request) {
	page, err := handlers.ParsePage(r)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Invalid paging", err)
		return
	}
	records, err := h.recordService.ListByProblem(r.Context(), mux.Vars(r)["problemId"], page)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to list execution records", err)
		return
	}
	handlers.ResponseData(w, http.StatusOK, records)
}

func (h *Handler) PurgeProblem(w http.ResponseWriter, r *http.Request) {
	n, err := h.recordService.PurgeByProblem(r.Context(), mux.Vars(r)["problemId"])
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to purge execution records", err)
		return
	}
	handlers.ResponseData(w, http.StatusOK, PurgeResponse{Deleted: n})
}

func (h *Handler) PurgeUser(w http.ResponseWriter, r *http.Request) {
	n, err := h.recordService.PurgeByUser(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to purge execution records", err)
		return
	}
	handlers.ResponseData(w, http.StatusOK, PurgeResponse{Deleted: n})
}
