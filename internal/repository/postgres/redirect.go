package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avc/frete-console/internal/domain"
	"github.com/jackc/pgx/v5"
)

// RedirectTTL время жизни адреса возврата после входа
const RedirectTTL = 30 * time.Minute

// RedirectRepository одноразовые адреса возврата после входа
type RedirectRepository struct {
	db DBTX
}

// NewRedirectRepository создает новый RedirectRepository
func NewRedirectRepository(db DBTX) *RedirectRepository {
	return &RedirectRepository{db: db}
}

// SaveRedirect сохраняет адрес возврата
func (r *RedirectRepository) SaveRedirect(ctx context.Context, id, path string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO login_redirects (id, path) VALUES ($1, $2)`,
		id, path,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to save redirect %s: %w", id, err)
	}
	return nil
}

// PopRedirect удаляет и возвращает адрес; второй вызов получает ErrRedirectNotFound
func (r *RedirectRepository) PopRedirect(ctx context.Context, id string) (string, error) {
	var path string

	err := r.db.QueryRow(ctx,
		`DELETE FROM login_redirects
		 WHERE id = $1 AND created_at > now() - make_interval(secs => $2)
		 RETURNING path`,
		id, RedirectTTL.Seconds(),
	).Scan(&path)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrRedirectNotFound
		}
		return "", fmt.Errorf("repository: failed to pop redirect %s: %w", id, err)
	}

	return path, nil
}

// PurgeExpiredRedirects удаляет просроченные адреса
func (r *RedirectRepository) PurgeExpiredRedirects(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM login_redirects WHERE created_at <= now() - make_interval(secs => $1)`,
		RedirectTTL.Seconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to purge redirects: %w", err)
	}
	return tag.RowsAffected(), nil
}
