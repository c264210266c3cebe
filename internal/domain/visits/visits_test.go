package visits

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/fitclub-bot/internal/venue"
)

var visitCols = []string{"id", "client_id", "subscription_id", "visit_date", "is_freeze_day", "qr_code", "created_at"}

func TestLedgerCreateUsesVenueTime(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	// 19:00 UTC -> 01:00 следующего дня по UTC+6
	now := time.Date(2026, 4, 10, 19, 0, 0, 0, time.UTC)
	clock := venue.NewClock(6, venue.WithNow(func() time.Time { return now }))
	local := time.Date(2026, 4, 11, 1, 0, 0, 0, time.UTC)
	day := time.Date(2026, 4, 11, 0, 0, 0, 0, time.UTC)

	pool.ExpectQuery("INSERT INTO visits").
		WithArgs(int64(1), int64(2), local, day, false, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(77), now))

	v, err := NewLedger(NewRepo(pool), clock).Create(context.Background(), 1, 2, false)
	require.NoError(t, err)
	assert.Equal(t, int64(77), v.ID)
	assert.Equal(t, local, v.VisitDate)
	assert.NotEmpty(t, v.QRCode)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestRepoCreateDuplicate(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	at := time.Date(2026, 4, 11, 9, 30, 0, 0, time.UTC)
	pool.ExpectQuery("ON CONFLICT").
		WithArgs(int64(1), int64(2), at, time.Date(2026, 4, 11, 0, 0, 0, 0, time.UTC), false, "qr-1").
		WillReturnError(pgx.ErrNoRows)

	err = NewRepo(pool).Create(context.Background(), &Visit{ClientID: 1, SubscriptionID: 2, VisitDate: at, QRCode: "qr-1"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestLedgerFindTodayFiltersKind(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	w := venue.Window{Start: time.Date(2026, 4, 11, 0, 0, 0, 0, time.UTC)}
	w.End = w.Start.Add(24 * time.Hour)
	at := w.Start.Add(9 * time.Hour)

	pool.ExpectQuery("FROM visits").
		WithArgs(int64(1), int64(2), w.Start, w.End, false).
		WillReturnError(pgx.ErrNoRows)
	pool.ExpectQuery("FROM visits").
		WithArgs(int64(1), int64(2), w.Start, w.End, true).
		WillReturnRows(pgxmock.NewRows(visitCols).AddRow(int64(5), int64(1), int64(2), at, true, "tok", at))

	l := NewLedger(NewRepo(pool), venue.NewClock(6))
	regular, err := l.FindToday(context.Background(), 1, 2, w)
	require.NoError(t, err)
	assert.Nil(t, regular)

	frozen, err := l.FindFreezeToday(context.Background(), 1, 2, w)
	require.NoError(t, err)
	require.NotNil(t, frozen)
	assert.True(t, frozen.IsFreezeDay)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestRepoDeleteNotFound(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	pool.ExpectExec("DELETE FROM visits").WithArgs(int64(5)).WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, NewRepo(pool).Delete(context.Background(), 5), ErrNotFound)
}

func TestRepoListBetween(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	from := time.Date(2026, 4, 11, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	at := from.Add(8 * time.Hour)
	pool.ExpectQuery("JOIN clients").WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows(append(append([]string{}, visitCols...), "name", "phone", "external_id")).
			AddRow(int64(1), int64(3), int64(4), at, false, "tok", at, "Дана", "+7701", "100"))

	rows, err := NewRepo(pool).ListBetween(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Дана", rows[0].ClientName)
	assert.Equal(t, at, rows[0].VisitDate)
	assert.NoError(t, pool.ExpectationsWereMet())
}
