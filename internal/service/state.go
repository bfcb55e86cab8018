package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/avc/frete-console/internal/domain"
	"github.com/google/uuid"
)

// Префиксы номеров квитанций по типу
var receiptPrefixes = map[string]string{
	"recarga":   "REC",
	"boleto":    "BOL",
	"pagamento": "PAG",
}

// StateService реализует domain.StateService поверх репозиториев состояния
type StateService struct {
	drafts    domain.DraftRepository
	redirects domain.RedirectRepository
	receipts  domain.ReceiptCounterRepository
}

// NewStateService создает новый StateService
func NewStateService(
	drafts domain.DraftRepository,
	redirects domain.RedirectRepository,
	receipts domain.ReceiptCounterRepository,
) *StateService {
	return &StateService{
		drafts:    drafts,
		redirects: redirects,
		receipts:  receipts,
	}
}

// SaveDraft сохраняет черновик плана пользователя (перезаписывает прежний)
func (s *StateService) SaveDraft(ctx context.Context, userID string, data json.RawMessage) (*domain.PlanDraft, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}")) {
		return nil, domain.ErrEmptyDraft
	}

	draft, err := s.drafts.SaveDraft(ctx, userID, trimmed)
	if err != nil {
		return nil, fmt.Errorf("state service: failed to save draft for user %s: %w", userID, err)
	}
	return draft, nil
}

// GetDraft возвращает черновик плана пользователя
func (s *StateService) GetDraft(ctx context.Context, userID string) (*domain.PlanDraft, error) {
	draft, err := s.drafts.GetDraft(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrDraftNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("state service: failed to get draft for user %s: %w", userID, err)
	}
	return draft, nil
}

// DiscardDraft удаляет черновик плана пользователя
func (s *StateService) DiscardDraft(ctx context.Context, userID string) error {
	if err := s.drafts.DeleteDraft(ctx, userID); err != nil {
		return fmt.Errorf("state service: failed to delete draft for user %s: %w", userID, err)
	}
	return nil
}

// RememberRedirect запоминает адрес возврата после входа и возвращает его id
func (s *StateService) RememberRedirect(ctx context.Context, path string) (string, error) {
	if !validRedirect(path) {
		return "", domain.ErrInvalidRedirect
	}

	id := uuid.NewString()
	if err := s.redirects.SaveRedirect(ctx, id, path); err != nil {
		return "", fmt.Errorf("state service: failed to save redirect: %w", err)
	}
	return id, nil
}

// TakeRedirect возвращает адрес возврата; повторно тот же id не срабатывает
func (s *StateService) TakeRedirect(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", domain.ErrRedirectNotFound
	}

	path, err := s.redirects.PopRedirect(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRedirectNotFound) {
			return "", err
		}
		return "", fmt.Errorf("state service: failed to take redirect %s: %w", id, err)
	}
	return path, nil
}

// NextReceipt выдает следующий номер квитанции типа
func (s *StateService) NextReceipt(ctx context.Context, receiptType string) (*domain.Receipt, error) {
	prefix, ok := receiptPrefixes[receiptType]
	if !ok {
		return nil, domain.ErrInvalidReceiptType
	}

	seq, err := s.receipts.NextReceiptNumber(ctx, receiptType)
	if err != nil {
		return nil, fmt.Errorf("state service: failed to get next %s receipt: %w", receiptType, err)
	}

	return &domain.Receipt{
		Type:     receiptType,
		Sequence: seq,
		Number:   fmt.Sprintf("%s-%06d", prefix, seq),
	}, nil
}

// validRedirect только локальные пути консоли
func validRedirect(path string) bool {
	return strings.HasPrefix(path, "/") &&
		!strings.HasPrefix(path, "//") &&
		!strings.Contains(path, "\\") &&
		!strings.Contains(path, "://") &&
		len(path) <= 512
}
