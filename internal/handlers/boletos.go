package handlers

import (
	"net/http"

	"github.com/avc/frete-console/internal/domain"
	"go.uber.org/zap"
)

type BoletosHandler struct {
	boletos domain.BoletoService
	logger  *zap.Logger
}

func NewBoletosHandler(boletos domain.BoletoService, logger *zap.Logger) *BoletosHandler {
	return &BoletosHandler{
		boletos: boletos,
		logger:  logger,
	}
}

func (h *BoletosHandler) List(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("cliente_id")
	if s, ok := currentSession(r); ok && clientID == "" && s.User.ClientID != nil {
		clientID = *s.User.ClientID
	}
	if _, ok := authorizedClient(w, r, h.logger, clientID); !ok {
		return
	}

	boletos, err := h.boletos.List(r.Context(), clientID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, boletos)
}

func (h *BoletosHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req domain.BoletoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, h.logger, http.StatusBadRequest, "Dados inválidos")
		return
	}

	boleto, err := h.boletos.Issue(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, boleto)
}

func (h *BoletosHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req domain.CancelBoletoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, h.logger, http.StatusBadRequest, "Dados inválidos")
		return
	}

	if err := h.boletos.Cancel(r.Context(), req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BoletosHandler) ConfigureWebhook(w http.ResponseWriter, r *http.Request) {
	var req domain.WebhookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, h.logger, http.StatusBadRequest, "Dados inválidos")
		return
	}

	if err := h.boletos.ConfigureWebhook(r.Context(), req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeMessage(w, h.logger, http.StatusOK, "Webhook configurado")
}
