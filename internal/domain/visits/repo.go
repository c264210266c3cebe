package visits

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Spok95/fitclub-bot/internal/infra/db"
	"github.com/Spok95/fitclub-bot/internal/venue"
)

var (
	ErrDuplicate = errors.New("visits: duplicate visit for the day")
	ErrNotFound  = errors.New("visits: not found")
)

type Repo struct{ db db.DBTX }

func NewRepo(q db.DBTX) *Repo { return &Repo{db: q} }

func (r *Repo) FindInWindow(ctx context.Context, clientID, subscriptionID int64, from, to time.Time, freeze bool) (*Visit, error) {
	const q = `
SELECT id, client_id, subscription_id, visit_date, is_freeze_day, qr_code, created_at
FROM visits
WHERE client_id = $1 AND subscription_id = $2
  AND visit_date >= $3 AND visit_date < $4
  AND is_freeze_day = $5
ORDER BY visit_date
LIMIT 1`
	var v Visit
	err := r.db.QueryRow(ctx, q, clientID, subscriptionID, from, to, freeze).Scan(
		&v.ID, &v.ClientID, &v.SubscriptionID, &v.VisitDate, &v.IsFreezeDay, &v.QRCode, &v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// Create вставляет визит. Второй визит того же вида за день упирается
// в уникальный ключ и возвращает ErrDuplicate.
func (r *Repo) Create(ctx context.Context, v *Visit) error {
	const q = `
INSERT INTO visits (client_id, subscription_id, visit_date, visit_day, is_freeze_day, qr_code)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (client_id, subscription_id, visit_day, is_freeze_day) DO NOTHING
RETURNING id, created_at`
	day := venue.DayOf(v.VisitDate).Start
	err := r.db.QueryRow(ctx, q, v.ClientID, v.SubscriptionID, v.VisitDate, day, v.IsFreezeDay, v.QRCode).
		Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM visits WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) ListBetween(ctx context.Context, from, to time.Time) ([]ReportRow, error) {
	const q = `
SELECT v.id, v.client_id, v.subscription_id, v.visit_date, v.is_freeze_day, v.qr_code, v.created_at,
       c.name, c.phone, c.external_id
FROM visits v
JOIN clients c ON c.id = v.client_id
WHERE v.visit_date >= $1 AND v.visit_date < $2
ORDER BY v.visit_date, v.id`
	rows, err := r.db.Query(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReportRow
	for rows.Next() {
		var row ReportRow
		if err := rows.Scan(
			&row.ID,
			&row.ClientID,
			&row.SubscriptionID,
			&row.VisitDate,
			&row.IsFreezeDay,
			&row.QRCode,
			&row.CreatedAt,
			&row.ClientName,
			&row.ClientPhone,
			&row.ExternalID,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
