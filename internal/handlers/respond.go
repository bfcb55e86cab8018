package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avc/frete-console/internal/backend"
	"github.com/avc/frete-console/internal/carrierconfig"
	"github.com/avc/frete-console/internal/domain"
	"github.com/avc/frete-console/internal/service"
	"github.com/avc/frete-console/internal/validation"
	"go.uber.org/zap"
)

// maxBodySize ограничение тела запроса
const maxBodySize = 1 << 20

// errorResponse тело ответа с ошибкой для toast в консоли
type errorResponse struct {
	Message string            `json:"message"`
	Fields  validation.Errors `json:"campos,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func writeMessage(w http.ResponseWriter, logger *zap.Logger, status int, message string) {
	writeJSON(w, logger, status, errorResponse{Message: message})
}

// decodeJSON читает тело запроса; неизвестные поля не допускаются
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeError переводит ошибку сервиса в HTTP ответ
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		writeJSON(w, logger, http.StatusUnprocessableEntity, errorResponse{
			Message: "Verifique os campos destacados",
			Fields:  fieldErrs,
		})
		return
	}

	var soft *backend.SoftFailure
	if errors.As(err, &soft) {
		writeMessage(w, logger, http.StatusUnprocessableEntity, soft.Message)
		return
	}

	var invalid *backend.ValidationError
	if errors.As(err, &invalid) {
		writeMessage(w, logger, http.StatusBadRequest, invalid.Message)
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidRedirect),
		errors.Is(err, domain.ErrInvalidReceiptType),
		errors.Is(err, domain.ErrEmptyDraft),
		errors.Is(err, carrierconfig.ErrUnknownCarrier),
		errors.Is(err, carrierconfig.ErrInactiveCarrier):
		writeMessage(w, logger, http.StatusBadRequest, "Dados inválidos")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeMessage(w, logger, http.StatusUnauthorized, "E-mail ou senha inválidos")
	case errors.Is(err, backend.ErrUnauthorized), errors.Is(err, domain.ErrSessionNotFound):
		writeMessage(w, logger, http.StatusUnauthorized, backend.UserMessage(backend.ErrUnauthorized))
	case errors.Is(err, backend.ErrForbidden), errors.Is(err, domain.ErrAdminOnly):
		writeMessage(w, logger, http.StatusForbidden, backend.UserMessage(backend.ErrForbidden))
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, domain.ErrDraftNotFound),
		errors.Is(err, domain.ErrRedirectNotFound):
		writeMessage(w, logger, http.StatusNotFound, "Registro não encontrado")
	default:
		logger.Error("request failed", zap.Error(err))
		writeMessage(w, logger, http.StatusBadGateway, backend.UserMessage(err))
	}
}
