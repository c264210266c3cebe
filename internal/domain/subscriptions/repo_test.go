package subscriptions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/fitclub-bot/internal/infra/db"
)

func TestRepoFindActive(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	end := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	pool.ExpectQuery("ORDER BY end_date DESC").
		WithArgs(int64(4)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "client_id", "tariff_id", "status", "start_date", "end_date",
			"remaining_days", "freeze_used", "created_at", "updated_at",
		}).AddRow(int64(10), int64(4), int64(2), StatusActive, end.AddDate(0, -1, 0), end, 7, 1, end, end))

	s, err := NewRepo(pool).FindActive(context.Background(), 4)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, int64(10), s.ID)
	assert.Equal(t, 7, s.RemainingDays)
	assert.Equal(t, StatusActive, s.Status)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestRepoDecrementRemainingGuarded(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	pool.ExpectQuery("remaining_days > 0").WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"remaining_days"}).AddRow(2))
	pool.ExpectQuery("remaining_days > 0").WithArgs(int64(1)).WillReturnError(pgx.ErrNoRows)

	r := NewRepo(pool)
	left, err := r.DecrementRemaining(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, left)

	_, err = r.DecrementRemaining(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNothingRemaining)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestRepoIncrementFreezeUsedQuota(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	pool.ExpectQuery("freeze_used < \\$2").WithArgs(int64(1), 1).WillReturnError(pgx.ErrNoRows)

	_, err = NewRepo(pool).IncrementFreezeUsed(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.NoError(t, pool.ExpectationsWereMet())
}

// plainDB скрывает Begin у мока: так репозиторий видит пул, а не транзакцию.
type plainDB struct{ db.DBTX }

func TestRepoMarkCompleted(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	pool.ExpectExec("SET status = 'completed'").WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, NewRepo(plainDB{pool}).MarkCompleted(context.Background(), 3))
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestRepoMarkCompletedUsesSavepointInTx(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	ctx := context.Background()
	pool.ExpectBegin()
	tx, err := pool.Begin(ctx)
	require.NoError(t, err)

	pool.ExpectBegin()
	pool.ExpectExec("SET status = 'completed'").WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	pool.ExpectCommit()
	pool.ExpectRollback()

	require.NoError(t, NewRepo(tx).MarkCompleted(ctx, 3))
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestRepoMarkCompletedFailureRollsBackSavepointOnly(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	ctx := context.Background()
	pool.ExpectBegin()
	tx, err := pool.Begin(ctx)
	require.NoError(t, err)

	pool.ExpectBegin()
	pool.ExpectExec("SET status = 'completed'").WithArgs(int64(3)).
		WillReturnError(errors.New("deadlock detected"))
	pool.ExpectRollback()
	pool.ExpectRollback()

	err = NewRepo(tx).MarkCompleted(ctx, 3)
	assert.EqualError(t, err, "deadlock detected")
	assert.NoError(t, pool.ExpectationsWereMet())
}
