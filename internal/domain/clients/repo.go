package clients

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Spok95/fitclub-bot/internal/infra/db"
)

type Repo struct {
	db db.DBTX
}

func NewRepo(q db.DBTX) *Repo { return &Repo{db: q} }

const selectClient = `SELECT id, external_id, name, phone, created_at FROM clients`

func (r *Repo) GetByExternalID(ctx context.Context, externalID string) (*Client, error) {
	return r.get(ctx, selectClient+` WHERE external_id = $1`, externalID)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Client, error) {
	return r.get(ctx, selectClient+` WHERE id = $1`, id)
}

func (r *Repo) get(ctx context.Context, q string, arg any) (*Client, error) {
	var c Client
	err := r.db.QueryRow(ctx, q, arg).Scan(&c.ID, &c.ExternalID, &c.Name, &c.Phone, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
