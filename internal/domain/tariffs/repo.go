package tariffs

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Spok95/fitclub-bot/internal/infra/db"
)

type Repo struct{ db db.DBTX }

func NewRepo(q db.DBTX) *Repo { return &Repo{db: q} }

func (r *Repo) GetByID(ctx context.Context, id int64) (*Tariff, error) {
	const q = `SELECT id, name, price::float8, duration_days, duration_months, start_time, end_time, freeze_limit
	           FROM tariffs WHERE id = $1`
	var t Tariff
	err := r.db.QueryRow(ctx, q, id).Scan(
		&t.ID, &t.Name, &t.Price, &t.DurationDays, &t.Duration, &t.StartTime, &t.EndTime, &t.FreezeLimit,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}
