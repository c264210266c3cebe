package visits

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Spok95/fitclub-bot/internal/venue"
)

type Store interface {
	FindInWindow(ctx context.Context, clientID, subscriptionID int64, from, to time.Time, freeze bool) (*Visit, error)
	Create(ctx context.Context, v *Visit) error
	Delete(ctx context.Context, id int64) error
}

// Ledger журнал посещений одного дня. Время визита всегда берётся из
// venue.Clock, тем же сдвигом, что и границы окна.
type Ledger struct {
	store Store
	clock *venue.Clock
}

func NewLedger(store Store, clock *venue.Clock) *Ledger {
	return &Ledger{store: store, clock: clock}
}

func (l *Ledger) FindToday(ctx context.Context, clientID, subscriptionID int64, w venue.Window) (*Visit, error) {
	return l.store.FindInWindow(ctx, clientID, subscriptionID, w.Start, w.End, false)
}

func (l *Ledger) FindFreezeToday(ctx context.Context, clientID, subscriptionID int64, w venue.Window) (*Visit, error) {
	return l.store.FindInWindow(ctx, clientID, subscriptionID, w.Start, w.End, true)
}

func (l *Ledger) Create(ctx context.Context, clientID, subscriptionID int64, isFreezeDay bool) (*Visit, error) {
	v := &Visit{
		ClientID:       clientID,
		SubscriptionID: subscriptionID,
		VisitDate:      l.clock.LocalNow(),
		IsFreezeDay:    isFreezeDay,
		QRCode:         uuid.NewString(),
	}
	if err := l.store.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (l *Ledger) Delete(ctx context.Context, id int64) error {
	return l.store.Delete(ctx, id)
}
