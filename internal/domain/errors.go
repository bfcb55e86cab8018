package domain

import "errors"

// Ошибки сессий
var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminOnly          = errors.New("operation requires admin role")
)

// Ошибки локального состояния
var (
	ErrDraftNotFound    = errors.New("plan draft not found")
	ErrRedirectNotFound = errors.New("login redirect not found")
)

// Ошибки журнала и платежей
var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrUnknownTxID   = errors.New("unknown pix txid")
)

// Ошибки ввода
var (
	ErrInvalidRedirect    = errors.New("invalid redirect path")
	ErrInvalidReceiptType = errors.New("invalid receipt type")
	ErrEmptyDraft         = errors.New("empty plan draft")
)
