package handlers

import (
	"net/http"

	"github.com/avc/frete-console/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreditsHandler баланс, журнал кредитов, PIX и квитанции
type CreditsHandler struct {
	credits domain.CreditService
	pix     domain.PixService
	state   domain.StateService
	logger  *zap.Logger
}

func NewCreditsHandler(credits domain.CreditService, pix domain.PixService, state domain.StateService, logger *zap.Logger) *CreditsHandler {
	return &CreditsHandler{
		credits: credits,
		pix:     pix,
		state:   state,
		logger:  logger,
	}
}

func (h *CreditsHandler) Balance(w http.ResponseWriter, r *http.Request) {
	clientID, ok := authorizedClient(w, r, h.logger, chi.URLParam(r, "clienteId"))
	if !ok {
		return
	}

	balance, err := h.credits.Balance(r.Context(), clientID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, balance)
}

type statementResponse struct {
	Transactions []domain.Transaction `json:"transacoes"`
	Degraded     bool                 `json:"indisponivel,omitempty"`
}

// Statement выписка; при ошибке backend панель получает пустой список
func (h *CreditsHandler) Statement(w http.ResponseWriter, r *http.Request) {
	clientID, ok := authorizedClient(w, r, h.logger, chi.URLParam(r, "clienteId"))
	if !ok {
		return
	}

	result := h.credits.Statement(r.Context(), clientID)
	entries := result.OrEmpty()
	if entries == nil {
		entries = []domain.Transaction{}
	}
	writeJSON(w, h.logger, http.StatusOK, statementResponse{
		Transactions: entries,
		Degraded:     result.Err() != nil,
	})
}

type summaryResponse struct {
	domain.Summary
	Degraded bool `json:"indisponivel,omitempty"`
}

// Summary агрегаты журнала; при ошибке backend нули
func (h *CreditsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	clientID, ok := authorizedClient(w, r, h.logger, chi.URLParam(r, "clienteId"))
	if !ok {
		return
	}

	result := h.credits.Summary(r.Context(), clientID)
	writeJSON(w, h.logger, http.StatusOK, summaryResponse{
		Summary:  result.OrEmpty(),
		Degraded: result.Err() != nil,
	})
}

func (h *CreditsHandler) AddManualCredit(w http.ResponseWriter, r *http.Request) {
	var req domain.ManualCreditRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, h.logger, http.StatusBadRequest, "Dados inválidos")
		return
	}

	if err := h.credits.AddManualCredit(r.Context(), req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CreditsHandler) ConfirmManualPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.ManualPaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, h.logger, http.StatusBadRequest, "Dados inválidos")
		return
	}

	if err := h.credits.ConfirmManualPayment(r.Context(), req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *CreditsHandler) CreateRecharge(w http.ResponseWriter, r *http.Request) {
	var req domain.PixRechargeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, h.logger, http.StatusBadRequest, "Dados inválidos")
		return
	}

	if s, ok := currentSession(r); ok && req.ClientID == "" && s.User.ClientID != nil {
		req.ClientID = *s.User.ClientID
	}
	if _, ok := authorizedClient(w, r, h.logger, req.ClientID); !ok {
		return
	}

	recharge, err := h.pix.CreateRecharge(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, recharge)
}

func (h *CreditsHandler) ListRecharges(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("cliente_id")
	if s, ok := currentSession(r); ok && clientID == "" && s.User.ClientID != nil {
		clientID = *s.User.ClientID
	}
	if _, ok := authorizedClient(w, r, h.logger, clientID); !ok {
		return
	}

	recharges, err := h.pix.ListRecharges(r.Context(), clientID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, recharges)
}

// NextReceipt следующий номер квитанции типа
func (h *CreditsHandler) NextReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.state.NextReceipt(r.Context(), chi.URLParam(r, "tipo"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, receipt)
}
