package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/avc/frete-console/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftRepository_SaveDraft(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDraftRepository(mock)
	ctx := context.Background()
	data := json.RawMessage(`{"nome":"Pro","preco":199.9}`)

	t.Run("Success", func(t *testing.T) {
		updatedAt := time.Now()
		rows := pgxmock.NewRows([]string{"data", "updated_at"}).AddRow(data, updatedAt)

		mock.ExpectQuery(`INSERT INTO plan_drafts`).
			WithArgs("u1", []byte(data)).
			WillReturnRows(rows)

		draft, err := repo.SaveDraft(ctx, "u1", data)
		require.NoError(t, err)
		assert.Equal(t, "u1", draft.UserID)
		assert.JSONEq(t, string(data), string(draft.Data))
		assert.Equal(t, updatedAt, draft.UpdatedAt)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO plan_drafts`).
			WithArgs("u1", []byte(data)).
			WillReturnError(errors.New("database error"))

		draft, err := repo.SaveDraft(ctx, "u1", data)
		assert.Error(t, err)
		assert.Nil(t, draft)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDraftRepository_GetDraft(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDraftRepository(mock)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"data", "updated_at"}).
			AddRow(json.RawMessage(`{"nome":"Pro"}`), time.Now())

		mock.ExpectQuery(`SELECT data, updated_at`).
			WithArgs("u1").
			WillReturnRows(rows)

		draft, err := repo.GetDraft(ctx, "u1")
		require.NoError(t, err)
		assert.JSONEq(t, `{"nome":"Pro"}`, string(draft.Data))

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT data, updated_at`).
			WithArgs("u2").
			WillReturnError(pgx.ErrNoRows)

		draft, err := repo.GetDraft(ctx, "u2")
		assert.ErrorIs(t, err, domain.ErrDraftNotFound)
		assert.Nil(t, draft)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDraftRepository_DeleteDraft(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDraftRepository(mock)

	mock.ExpectExec(`DELETE FROM plan_drafts`).
		WithArgs("u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.DeleteDraft(context.Background(), "u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
