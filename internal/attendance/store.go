package attendance

import (
	"context"

	"github.com/Spok95/fitclub-bot/internal/domain/clients"
	"github.com/Spok95/fitclub-bot/internal/domain/subscriptions"
	"github.com/Spok95/fitclub-bot/internal/domain/tariffs"
	"github.com/Spok95/fitclub-bot/internal/domain/visits"
)

type ClientRepo interface {
	GetByExternalID(ctx context.Context, externalID string) (*clients.Client, error)
}

type TariffRepo interface {
	GetByID(ctx context.Context, id int64) (*tariffs.Tariff, error)
}

// Repos набор репозиториев поверх одного соединения или одной транзакции.
type Repos struct {
	Clients       ClientRepo
	Tariffs       TariffRepo
	Subscriptions subscriptions.Store
	Visits        visits.Store
}

type Store interface {
	Repos() Repos
	// WithinTx выполняет fn атомарно: при ошибке ни одна запись не остаётся.
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}

// Locker сериализует операции одного клиента (commit/freeze/unfreeze).
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Observer считает исходы операций (метрики).
type Observer interface {
	ObserveOutcome(operation, outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveOutcome(string, string) {}
