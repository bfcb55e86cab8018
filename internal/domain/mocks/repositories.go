// Package mocks содержит testify моки интерфейсов domain.
package mocks

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/avc/frete-console/internal/domain"
	"github.com/stretchr/testify/mock"
)

// register проверяет ожидания мока в конце теста
func register(t *testing.T, m *mock.Mock) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

// DraftRepositoryMock мок domain.DraftRepository
type DraftRepositoryMock struct {
	mock.Mock
}

// NewDraftRepositoryMock создает мок с проверкой ожиданий
func NewDraftRepositoryMock(t *testing.T) *DraftRepositoryMock {
	m := &DraftRepositoryMock{}
	register(t, &m.Mock)
	return m
}

func (m *DraftRepositoryMock) SaveDraft(ctx context.Context, userID string, data json.RawMessage) (*domain.PlanDraft, error) {
	args := m.Called(ctx, userID, data)
	draft, _ := args.Get(0).(*domain.PlanDraft)
	return draft, args.Error(1)
}

func (m *DraftRepositoryMock) GetDraft(ctx context.Context, userID string) (*domain.PlanDraft, error) {
	args := m.Called(ctx, userID)
	draft, _ := args.Get(0).(*domain.PlanDraft)
	return draft, args.Error(1)
}

func (m *DraftRepositoryMock) DeleteDraft(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// RedirectRepositoryMock мок domain.RedirectRepository
type RedirectRepositoryMock struct {
	mock.Mock
}

// NewRedirectRepositoryMock создает мок с проверкой ожиданий
func NewRedirectRepositoryMock(t *testing.T) *RedirectRepositoryMock {
	m := &RedirectRepositoryMock{}
	register(t, &m.Mock)
	return m
}

func (m *RedirectRepositoryMock) SaveRedirect(ctx context.Context, id, path string) error {
	return m.Called(ctx, id, path).Error(0)
}

func (m *RedirectRepositoryMock) PopRedirect(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

// ReceiptCounterRepositoryMock мок domain.ReceiptCounterRepository
type ReceiptCounterRepositoryMock struct {
	mock.Mock
}

// NewReceiptCounterRepositoryMock создает мок с проверкой ожиданий
func NewReceiptCounterRepositoryMock(t *testing.T) *ReceiptCounterRepositoryMock {
	m := &ReceiptCounterRepositoryMock{}
	register(t, &m.Mock)
	return m
}

func (m *ReceiptCounterRepositoryMock) NextReceiptNumber(ctx context.Context, receiptType string) (int64, error) {
	args := m.Called(ctx, receiptType)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}
