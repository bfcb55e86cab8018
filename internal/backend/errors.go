package backend

import (
	"errors"
	"fmt"
)

// Ошибки ответа backend по HTTP статусу
var (
	ErrUnauthorized = errors.New("backend: unauthorized")
	ErrForbidden    = errors.New("backend: forbidden")
	ErrServer       = errors.New("backend: internal server error")
)

// ValidationError ответ 400 с сообщением для пользователя
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("backend: validation failed: %s", e.Message)
}

// StatusError неожиданный HTTP статус
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: unexpected status code: %d", e.Code)
	}
	return fmt.Sprintf("backend: unexpected status code: %d: %s", e.Code, e.Message)
}

// SoftFailure функция ответила success:false
type SoftFailure struct {
	Function string
	Message  string
}

func (e *SoftFailure) Error() string {
	return fmt.Sprintf("backend: function %s failed: %s", e.Function, e.Message)
}

// UserMessage возвращает текст ошибки, пригодный для toast
func UserMessage(err error) string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}

	var softErr *SoftFailure
	if errors.As(err, &softErr) {
		return softErr.Message
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("Erro inesperado (código %d)", statusErr.Code)
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return "Sessão expirada. Faça login novamente."
	case errors.Is(err, ErrForbidden):
		return "Acesso negado."
	case errors.Is(err, ErrServer):
		return "Erro interno do servidor. Tente novamente mais tarde."
	}

	return "Erro inesperado. Tente novamente."
}
