package handlers

import (
	"net/http"

	"github.com/avc/frete-console/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdminHandler задачи, пользователи и закрытие периода
type AdminHandler struct {
	jobs    domain.JobService
	users   domain.UserService
	closing domain.ClosingService
	logger  *zap.Logger
}

func NewAdminHandler(jobs domain.JobService, users domain.UserService, closing domain.ClosingService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		jobs:    jobs,
		users:   users,
		closing: closing,
		logger:  logger,
	}
}

func (h *AdminHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.List(r.Context(), r.URL.Query().Get("cliente_id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, jobs)
}

func (h *AdminHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, job)
}

func (h *AdminHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req domain.JobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, h.logger, http.StatusBadRequest, "Dados inválidos")
		return
	}

	job, err := h.jobs.Create(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusAccepted, job)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, users)
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, h.logger, http.StatusBadRequest, "Dados inválidos")
		return
	}

	user, err := h.users.Create(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, user)
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, h.logger, http.StatusBadRequest, "Dados inválidos")
		return
	}

	user, err := h.users.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if s, ok := currentSession(r); ok && s.User.ID == chi.URLParam(r, "id") {
		writeMessage(w, h.logger, http.StatusBadRequest, "Não é possível excluir o próprio usuário")
		return
	}

	if err := h.users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ClosePeriod(w http.ResponseWriter, r *http.Request) {
	var req domain.ClosingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, h.logger, http.StatusBadRequest, "Dados inválidos")
		return
	}

	result, err := h.closing.Close(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, result)
}
