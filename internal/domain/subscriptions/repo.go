package subscriptions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Spok95/fitclub-bot/internal/infra/db"
)

var (
	ErrNothingRemaining = errors.New("subscriptions: no visits remaining")
	ErrQuotaExceeded    = errors.New("subscriptions: freeze quota exceeded")
)

type Repo struct{ db db.DBTX }

func NewRepo(q db.DBTX) *Repo { return &Repo{db: q} }

const selectSubscription = `SELECT id, client_id, tariff_id, status, start_date, end_date,
       remaining_days, freeze_used, created_at, updated_at
FROM subscriptions`

// FindActive активный абонемент с самой поздней датой окончания.
func (r *Repo) FindActive(ctx context.Context, clientID int64) (*Subscription, error) {
	const q = selectSubscription + `
WHERE client_id = $1 AND status = 'active'
ORDER BY end_date DESC, id DESC
LIMIT 1`
	var s Subscription
	err := r.db.QueryRow(ctx, q, clientID).Scan(
		&s.ID,
		&s.ClientID,
		&s.TariffID,
		&s.Status,
		&s.StartDate,
		&s.EndDate,
		&s.RemainingDays,
		&s.FreezeUsed,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

const markCompletedSQL = `
UPDATE subscriptions
SET status = 'completed',
    updated_at = NOW()
WHERE id = $1 AND status <> 'completed'`

// MarkCompleted внутри транзакции выполняется в SAVEPOINT: его сбой не
// обрывает внешнюю транзакцию, и попытка завершается типизированным отказом.
func (r *Repo) MarkCompleted(ctx context.Context, id int64) error {
	if tx, ok := r.db.(pgx.Tx); ok {
		return pgx.BeginFunc(ctx, tx, func(sp pgx.Tx) error {
			_, err := sp.Exec(ctx, markCompletedSQL, id)
			return err
		})
	}
	_, err := r.db.Exec(ctx, markCompletedSQL, id)
	return err
}

// DecrementRemaining списывает одно посещение и возвращает новый остаток.
func (r *Repo) DecrementRemaining(ctx context.Context, id int64) (int, error) {
	const q = `
UPDATE subscriptions
SET remaining_days = remaining_days - 1,
    updated_at = NOW()
WHERE id = $1
  AND remaining_days > 0
RETURNING remaining_days`
	var left int
	if err := r.db.QueryRow(ctx, q, id).Scan(&left); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNothingRemaining
		}
		return 0, err
	}
	return left, nil
}

func (r *Repo) IncrementFreezeUsed(ctx context.Context, id int64, limit int) (int, error) {
	const q = `
UPDATE subscriptions
SET freeze_used = freeze_used + 1,
    updated_at = NOW()
WHERE id = $1
  AND freeze_used < $2
RETURNING freeze_used`
	var used int
	if err := r.db.QueryRow(ctx, q, id, limit).Scan(&used); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// либо не нашли абонемент, либо лимит заморозок исчерпан
			return 0, ErrQuotaExceeded
		}
		return 0, err
	}
	return used, nil
}

func (r *Repo) DecrementFreezeUsed(ctx context.Context, id int64) (int, error) {
	const q = `
UPDATE subscriptions
SET freeze_used = GREATEST(freeze_used - 1, 0),
    updated_at = NOW()
WHERE id = $1
RETURNING freeze_used`
	var used int
	if err := r.db.QueryRow(ctx, q, id).Scan(&used); err != nil {
		return 0, err
	}
	return used, nil
}
