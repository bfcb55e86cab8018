package postgres

import (
	"context"
	"fmt"
)

// ReceiptCounterRepository последовательные номера квитанций по типу
type ReceiptCounterRepository struct {
	db DBTX
}

// NewReceiptCounterRepository создает новый ReceiptCounterRepository
func NewReceiptCounterRepository(db DBTX) *ReceiptCounterRepository {
	return &ReceiptCounterRepository{db: db}
}

// NextReceiptNumber атомарно увеличивает счетчик типа; первый номер 1
func (r *ReceiptCounterRepository) NextReceiptNumber(ctx context.Context, receiptType string) (int64, error) {
	var next int64

	err := r.db.QueryRow(ctx,
		`INSERT INTO receipt_counters (receipt_type, last_value, updated_at)
		 VALUES ($1, 1, now())
		 ON CONFLICT (receipt_type) DO UPDATE
		 SET last_value = receipt_counters.last_value + 1, updated_at = now()
		 RETURNING last_value`,
		receiptType,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to increment %s receipt counter: %w", receiptType, err)
	}

	return next, nil
}
