package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/avc/frete-console/internal/domain"
	"github.com/jackc/pgx/v5"
)

// DraftRepository черновики тарифных планов, один на пользователя
type DraftRepository struct {
	db DBTX
}

// NewDraftRepository создает новый DraftRepository
func NewDraftRepository(db DBTX) *DraftRepository {
	return &DraftRepository{db: db}
}

// SaveDraft сохраняет черновик, заменяя предыдущий
func (r *DraftRepository) SaveDraft(ctx context.Context, userID string, data json.RawMessage) (*domain.PlanDraft, error) {
	draft := &domain.PlanDraft{UserID: userID}

	err := r.db.QueryRow(ctx,
		`INSERT INTO plan_drafts (user_id, data, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (user_id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
		 RETURNING data, updated_at`,
		userID, []byte(data),
	).Scan(&draft.Data, &draft.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to save draft for user %s: %w", userID, err)
	}

	return draft, nil
}

// GetDraft возвращает черновик пользователя
func (r *DraftRepository) GetDraft(ctx context.Context, userID string) (*domain.PlanDraft, error) {
	draft := &domain.PlanDraft{UserID: userID}

	err := r.db.QueryRow(ctx,
		`SELECT data, updated_at
		 FROM plan_drafts
		 WHERE user_id = $1`,
		userID,
	).Scan(&draft.Data, &draft.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDraftNotFound
		}
		return nil, fmt.Errorf("repository: failed to get draft for user %s: %w", userID, err)
	}

	return draft, nil
}

// DeleteDraft удаляет черновик; отсутствие черновика не ошибка
func (r *DraftRepository) DeleteDraft(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM plan_drafts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("repository: failed to delete draft for user %s: %w", userID, err)
	}
	return nil
}
