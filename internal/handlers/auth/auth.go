package auth

import (
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/services/auth"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/handlers"
)

type ServiceDependencies struct {
	LocalAuthService auth.IAuthService
}

type Handler struct {
	providerHandler map[domain.Provider]auth.IAuthService
	logger          primary.Logger
}

func NewHandler(logger primary.Logger) *Handler {
	return &Handler{
		providerHandler: make(map[domain.Provider]auth.IAuthService),
		logger:          logger,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router, svcDep *ServiceDependencies) {
	h.providerHandler[domain.ProviderLocal] = svcDep.LocalAuthService
	router.HandleFunc("/api/auth/register", h.Register).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", h.Login).Methods(http.MethodPost)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var credentials domain.Credentials
	if err := handlers.DecodeJSON(w, r, &credentials); err != nil {
		handlers.ResponseError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	loginResponse, err := h.providerHandler[domain.ProviderLocal].Register(r.Context(), credentials)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to register user", err)
		return
	}
	handlers.ResponseWithJson(w, http.StatusCreated, loginResponse)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var credentials domain.Credentials
	if err := handlers.DecodeJSON(w, r, &credentials); err != nil {
		handlers.ResponseError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	loginResponse, err := h.providerHandler[domain.ProviderLocal].Login(r.Context(), credentials)
	if err != nil {
		handlers.WriteServiceError(w, h.logger, "Failed to log in", err)
		return
	}
	handlers.ResponseWithJson(w, http.StatusOK, loginResponse)
}
