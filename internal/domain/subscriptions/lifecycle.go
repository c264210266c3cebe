package subscriptions

import (
	"context"
	"log/slog"
	"time"
)

// Store то, что жизненному циклу нужно от хранилища. Реализуется Repo
// и in-memory хранилищем; внутри транзакции передаётся её вариант.
type Store interface {
	FindActive(ctx context.Context, clientID int64) (*Subscription, error)
	MarkCompleted(ctx context.Context, id int64) error
	DecrementRemaining(ctx context.Context, id int64) (int, error)
	IncrementFreezeUsed(ctx context.Context, id int64, limit int) (int, error)
	DecrementFreezeUsed(ctx context.Context, id int64) (int, error)
}

// Notifier получает сигнал о малом остатке посещений. Ошибки доставки
// остаются внутри реализации.
type Notifier interface {
	LowBalance(ctx context.Context, clientID int64, remaining int)
}

// Reconciliation итог ReconcileExpiry.
type Reconciliation int

const (
	Unchanged Reconciliation = iota
	// Expired now > end_date.
	Expired
	// Exhausted активный абонемент с нулевым остатком.
	Exhausted
)

var lowBalanceMilestones = map[int]bool{3: true, 2: true, 1: true}

type Lifecycle struct {
	store    Store
	notifier Notifier
	now      func() time.Time
	log      *slog.Logger
}

func NewLifecycle(store Store, notifier Notifier, now func() time.Time, log *slog.Logger) *Lifecycle {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Lifecycle{store: store, notifier: notifier, now: now, log: log}
}

func (l *Lifecycle) FindActive(ctx context.Context, clientID int64) (*Subscription, error) {
	return l.store.FindActive(ctx, clientID)
}

// ReconcileExpiry переводит абонемент в completed, если срок вышел или
// посещения кончились. Ошибка записи только логируется: статус в памяти
// всё равно completed, а в базе догонит при следующей попытке.
func (l *Lifecycle) ReconcileExpiry(ctx context.Context, s *Subscription) Reconciliation {
	if s.Status == StatusCompleted {
		return Unchanged
	}

	result := Unchanged
	switch {
	case s.Expired(l.now()):
		result = Expired
	case s.RemainingDays <= 0:
		result = Exhausted
	default:
		return Unchanged
	}

	s.Status = StatusCompleted
	if err := l.store.MarkCompleted(ctx, s.ID); err != nil {
		l.log.Warn("mark subscription completed failed, will retry on next attempt",
			"subscription_id", s.ID, "err", err)
	}
	return result
}

// RecordVisitConsumption списывает одно посещение. Уведомление о рубеже
// 3/2/1 уходит до записи нового остатка.
func (l *Lifecycle) RecordVisitConsumption(ctx context.Context, s *Subscription) error {
	if s.RemainingDays <= 0 {
		return nil
	}

	next := s.RemainingDays - 1
	if lowBalanceMilestones[next] && l.notifier != nil {
		l.notifier.LowBalance(ctx, s.ClientID, next)
	}

	left, err := l.store.DecrementRemaining(ctx, s.ID)
	if err != nil {
		return err
	}
	s.RemainingDays = left

	if left == 0 {
		if err := l.store.MarkCompleted(ctx, s.ID); err != nil {
			return err
		}
		s.Status = StatusCompleted
	}
	return nil
}

// Freeze тратит один день заморозки. Визит-заморозку создаёт вызывающий
// в той же транзакции.
func (l *Lifecycle) Freeze(ctx context.Context, s *Subscription, limit int) error {
	if s.FreezeUsed >= limit {
		return ErrQuotaExceeded
	}
	used, err := l.store.IncrementFreezeUsed(ctx, s.ID, limit)
	if err != nil {
		return err
	}
	s.FreezeUsed = used
	return nil
}

// Unfreeze возвращает день заморозки (не ниже нуля).
func (l *Lifecycle) Unfreeze(ctx context.Context, s *Subscription) error {
	used, err := l.store.DecrementFreezeUsed(ctx, s.ID)
	if err != nil {
		return err
	}
	s.FreezeUsed = used
	return nil
}
