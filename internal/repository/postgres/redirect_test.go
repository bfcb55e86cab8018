package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/avc/frete-console/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedirectRepository(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRedirectRepository(mock)
	ctx := context.Background()
	id := "0b7e3c1a-52d4-4a8e-b1f0-7f3e9d2c6a10"

	t.Run("Save", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO login_redirects`).
			WithArgs(id, "/clientes").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.SaveRedirect(ctx, id, "/clientes"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Pop once", func(t *testing.T) {
		mock.ExpectQuery(`DELETE FROM login_redirects`).
			WithArgs(id, RedirectTTL.Seconds()).
			WillReturnRows(pgxmock.NewRows([]string{"path"}).AddRow("/clientes"))
		mock.ExpectQuery(`DELETE FROM login_redirects`).
			WithArgs(id, RedirectTTL.Seconds()).
			WillReturnError(pgx.ErrNoRows)

		path, err := repo.PopRedirect(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "/clientes", path)

		_, err = repo.PopRedirect(ctx, id)
		assert.ErrorIs(t, err, domain.ErrRedirectNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Purge", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM login_redirects WHERE created_at`).
			WithArgs(RedirectTTL.Seconds()).
			WillReturnResult(pgxmock.NewResult("DELETE", 3))

		n, err := repo.PurgeExpiredRedirects(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO login_redirects`).
			WithArgs(id, "/").
			WillReturnError(errors.New("database error"))

		assert.Error(t, repo.SaveRedirect(ctx, id, "/"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
