package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/avc/frete-console/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PlansHandler struct {
	plans  domain.PlanService
	state  domain.StateService
	logger *zap.Logger
}

func NewPlansHandler(plans domain.PlanService, state domain.StateService, logger *zap.Logger) *PlansHandler {
	return &PlansHandler{
		plans:  plans,
		state:  state,
		logger: logger,
	}
}

func (h *PlansHandler) List(w http.ResponseWriter, r *http.Request) {
	plans, err := h.plans.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, plans)
}

func (h *PlansHandler) Get(w http.ResponseWriter, r *http.Request) {
	plan, err := h.plans.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, plan)
}

func (h *PlansHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.PlanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, h.logger, http.StatusBadRequest, "Dados inválidos")
		return
	}

	plan, err := h.plans.Create(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	// Черновик больше не нужен после создания плана
	if s, ok := currentSession(r); ok {
		if err := h.state.DiscardDraft(r.Context(), s.User.ID); err != nil {
			h.logger.Warn("failed to discard plan draft", zap.String("user_id", s.User.ID), zap.Error(err))
		}
	}

	writeJSON(w, h.logger, http.StatusCreated, plan)
}

func (h *PlansHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.PlanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, h.logger, http.StatusBadRequest, "Dados inválidos")
		return
	}

	plan, err := h.plans.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, plan)
}

func (h *PlansHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.plans.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PlansHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(r)
	if !ok {
		writeError(w, h.logger, domain.ErrSessionNotFound)
		return
	}

	draft, err := h.state.GetDraft(r.Context(), s.User.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, draft)
}

// SaveDraft сохраняет произвольный JSON формы плана
func (h *PlansHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(r)
	if !ok {
		writeError(w, h.logger, domain.ErrSessionNotFound)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil || !json.Valid(data) {
		writeMessage(w, h.logger, http.StatusBadRequest, "Dados inválidos")
		return
	}

	draft, err := h.state.SaveDraft(r.Context(), s.User.ID, data)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, draft)
}

func (h *PlansHandler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(r)
	if !ok {
		writeError(w, h.logger, domain.ErrSessionNotFound)
		return
	}

	if err := h.state.DiscardDraft(r.Context(), s.User.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
