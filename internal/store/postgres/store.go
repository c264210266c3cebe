package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Spok95/fitclub-bot/internal/attendance"
	"github.com/Spok95/fitclub-bot/internal/domain/clients"
	"github.com/Spok95/fitclub-bot/internal/domain/subscriptions"
	"github.com/Spok95/fitclub-bot/internal/domain/tariffs"
	"github.com/Spok95/fitclub-bot/internal/domain/visits"
	"github.com/Spok95/fitclub-bot/internal/infra/db"
)

// pool подмножество pgxpool.Pool, нужное хранилищу (pgxmock тоже подходит).
type pool interface {
	db.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Store struct {
	pool pool
}

func New(p pool) (*Store, error) {
	if p == nil {
		return nil, errors.New("postgres store requires pool")
	}
	return &Store{pool: p}, nil
}

func (s *Store) Repos() attendance.Repos { return reposOn(s.pool) }

func (s *Store) WithinTx(ctx context.Context, fn func(r attendance.Repos) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(reposOn(tx))
	})
}

func (s *Store) Clients() *clients.Repo { return clients.NewRepo(s.pool) }

func (s *Store) Visits() *visits.Repo { return visits.NewRepo(s.pool) }

func reposOn(q db.DBTX) attendance.Repos {
	return attendance.Repos{
		Clients:       clients.NewRepo(q),
		Tariffs:       tariffs.NewRepo(q),
		Subscriptions: subscriptions.NewRepo(q),
		Visits:        visits.NewRepo(q),
	}
}
