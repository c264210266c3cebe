// Package attendance решает, пускать ли клиента в зал прямо сейчас,
// фиксирует посещение и управляет заморозкой дня.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Spok95/fitclub-bot/internal/domain/clients"
	"github.com/Spok95/fitclub-bot/internal/domain/subscriptions"
	"github.com/Spok95/fitclub-bot/internal/domain/tariffs"
	"github.com/Spok95/fitclub-bot/internal/domain/visits"
	"github.com/Spok95/fitclub-bot/internal/venue"
)

var (
	ErrEmptyIdentity = errors.New("attendance: empty external identity")
	ErrUnknownAction = errors.New("attendance: unknown freeze action")
)

type Service struct {
	store    Store
	clock    *venue.Clock
	notifier subscriptions.Notifier
	locker   Locker
	obs      Observer
	log      *slog.Logger
}

type Option func(*Service)

func WithLocker(l Locker) Option     { return func(s *Service) { s.locker = l } }
func WithObserver(o Observer) Option { return func(s *Service) { s.obs = o } }
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(store Store, clock *venue.Clock, notifier subscriptions.Notifier, opts ...Option) *Service {
	s := &Service{
		store:    store,
		clock:    clock,
		notifier: notifier,
		locker:   NewLocalLocker(),
		obs:      nopObserver{},
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// evaluation всё, что прочитано для одной попытки.
type evaluation struct {
	client    *clients.Client
	sub       *subscriptions.Subscription
	tariff    *tariffs.Tariff
	lifecycle *subscriptions.Lifecycle
	ledger    *visits.Ledger

	window  venue.Window
	hour    float64
	endHour float64
	regular *visits.Visit
	freeze  *visits.Visit
}

// resolve шаги 1-3: клиент, активный абонемент, сверка срока. Плюс тариф.
func (s *Service) resolve(ctx context.Context, r Repos, identity string) (*evaluation, *CheckResult, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, nil, ErrEmptyIdentity
	}

	client, err := r.Clients.GetByExternalID(ctx, identity)
	if err != nil {
		return nil, nil, fmt.Errorf("get client: %w", err)
	}
	if client == nil {
		return nil, reject(ErrClientNotFound), nil
	}

	ev := &evaluation{
		client:    client,
		lifecycle: subscriptions.NewLifecycle(r.Subscriptions, s.notifier, s.clock.Now, s.log),
		ledger:    visits.NewLedger(r.Visits, s.clock),
	}

	sub, err := ev.lifecycle.FindActive(ctx, client.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("find active subscription: %w", err)
	}
	if sub == nil {
		res := reject(ErrNoActiveSubscription)
		res.Client = client
		return nil, res, nil
	}
	ev.sub = sub

	if ev.lifecycle.ReconcileExpiry(ctx, sub) != subscriptions.Unchanged {
		s.log.Info("subscription completed on access attempt",
			"client_id", client.ID, "subscription_id", sub.ID, "remaining", sub.RemainingDays)
		res := reject(ErrSubscriptionExpired)
		res.Client = client
		res.Subscription = sub
		return nil, res, nil
	}

	tariff, err := r.Tariffs.GetByID(ctx, sub.TariffID)
	if err != nil {
		return nil, nil, fmt.Errorf("get tariff: %w", err)
	}
	if tariff == nil {
		return nil, nil, fmt.Errorf("tariff %d of subscription %d not found", sub.TariffID, sub.ID)
	}
	ev.tariff = tariff
	return ev, nil, nil
}

// evaluate шаги 1-6. Первое нарушенное правило побеждает.
func (s *Service) evaluate(ctx context.Context, r Repos, identity string) (*evaluation, *CheckResult, error) {
	ev, rej, err := s.resolve(ctx, r, identity)
	if err != nil || rej != nil {
		return nil, rej, err
	}

	start, end, err := ev.tariff.Hours()
	if err != nil {
		return nil, nil, err
	}
	ev.hour = venue.HourOf(s.clock.LocalNow())
	ev.endHour = end
	if ev.hour < start || ev.hour > end {
		res := ev.base()
		res.ErrorType = ErrOutsideWorkingHours
		res.Message = ErrOutsideWorkingHours.Message()
		return nil, res, nil
	}

	ev.window = s.clock.Today()
	if ev.regular, err = ev.ledger.FindToday(ctx, ev.client.ID, ev.sub.ID, ev.window); err != nil {
		return nil, nil, fmt.Errorf("find today visit: %w", err)
	}
	if ev.freeze, err = ev.ledger.FindFreezeToday(ctx, ev.client.ID, ev.sub.ID, ev.window); err != nil {
		return nil, nil, fmt.Errorf("find today freeze: %w", err)
	}

	// день заморозки сам по себе не блокирует посещение
	if ev.regular != nil && ev.freeze == nil {
		res := ev.base()
		res.ErrorType = ErrAlreadyVisitedToday
		res.Message = ErrAlreadyVisitedToday.Message()
		at := ev.regular.VisitDate
		res.VisitTime = &at
		return nil, res, nil
	}
	return ev, nil, nil
}

func (ev *evaluation) base() *CheckResult {
	return &CheckResult{
		Client:          ev.client,
		Subscription:    ev.sub,
		EffectiveStatus: ev.sub.Status,
		Tariff:          ev.tariff,
		WorkingHours:    &WorkingHours{Start: ev.tariff.StartTime, End: ev.tariff.EndTime},
	}
}

func (ev *evaluation) granted() *CheckResult {
	res := ev.base()
	res.Granted = true
	res.CanFreeze = ev.sub.FreezeUsed < ev.tariff.FreezeLimit
	res.IsFrozenToday = ev.freeze != nil
	res.CanUnfreeze = ev.freeze != nil && ev.hour < ev.endHour
	// обычный визит рядом с заморозкой: доступ есть, но второй раз не списать
	res.CanCommit = ev.regular == nil
	if res.IsFrozenToday {
		res.EffectiveStatus = subscriptions.StatusFrozen
	}
	return res
}

// Check пробный прогон без записи (экран подтверждения).
func (s *Service) Check(ctx context.Context, identity string) (*CheckResult, error) {
	ev, rej, err := s.evaluate(ctx, s.store.Repos(), identity)
	if err != nil {
		return nil, err
	}
	if rej != nil {
		s.obs.ObserveOutcome("check", string(rej.ErrorType))
		return rej, nil
	}
	s.obs.ObserveOutcome("check", "granted")
	return ev.granted(), nil
}

// Commit повторяет проверки на свежих данных и фиксирует посещение:
// визит и списание идут одной транзакцией.
func (s *Service) Commit(ctx context.Context, identity string) (*CommitResult, error) {
	unlock, err := s.locker.Lock(ctx, lockKey(identity))
	if err != nil {
		return nil, fmt.Errorf("lock: %w", err)
	}
	defer unlock()

	var res *CommitResult
	err = s.store.WithinTx(ctx, func(r Repos) error {
		ev, rej, err := s.evaluate(ctx, r, identity)
		if err != nil {
			return err
		}
		if rej != nil {
			res = &CommitResult{CheckResult: *rej}
			return nil
		}

		v, err := ev.ledger.Create(ctx, ev.client.ID, ev.sub.ID, false)
		if errors.Is(err, visits.ErrDuplicate) {
			// обычный визит уже есть рядом с заморозкой или параллельный коммит успел раньше
			existing, ferr := ev.ledger.FindToday(ctx, ev.client.ID, ev.sub.ID, ev.window)
			if ferr != nil {
				return fmt.Errorf("find today visit: %w", ferr)
			}
			rej := ev.base()
			rej.ErrorType = ErrAlreadyVisitedToday
			rej.Message = ErrAlreadyVisitedToday.Message()
			if existing != nil {
				at := existing.VisitDate
				rej.VisitTime = &at
			}
			res = &CommitResult{CheckResult: *rej}
			return nil
		}
		if err != nil {
			return fmt.Errorf("create visit: %w", err)
		}

		if err := ev.lifecycle.RecordVisitConsumption(ctx, ev.sub); err != nil {
			return fmt.Errorf("record visit consumption: %w", err)
		}

		res = &CommitResult{CheckResult: *ev.granted(), Visit: v}
		res.CanCommit = false
		res.Message = "Посещение отмечено"
		at := v.VisitDate
		res.VisitTime = &at
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.Granted {
		s.log.Info("visit committed",
			"client_id", res.Client.ID, "visit_id", res.Visit.ID, "remaining", res.Subscription.RemainingDays)
		s.obs.ObserveOutcome("commit", "committed")
	} else {
		s.obs.ObserveOutcome("commit", string(res.ErrorType))
	}
	return res, nil
}

// SetFreeze точка входа для freeze/unfreeze одним действием.
func (s *Service) SetFreeze(ctx context.Context, identity string, action FreezeAction) (*FreezeResult, error) {
	switch action {
	case ActionFreeze:
		return s.Freeze(ctx, identity)
	case ActionUnfreeze:
		return s.Unfreeze(ctx, identity)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownAction, action)
	}
}

// Freeze замораживает сегодняшний день: счётчик заморозок и визит-заморозка
// меняются вместе или не меняются вовсе.
func (s *Service) Freeze(ctx context.Context, identity string) (*FreezeResult, error) {
	unlock, err := s.locker.Lock(ctx, lockKey(identity))
	if err != nil {
		return nil, fmt.Errorf("lock: %w", err)
	}
	defer unlock()

	var res *FreezeResult
	err = s.store.WithinTx(ctx, func(r Repos) error {
		ev, rej, err := s.resolve(ctx, r, identity)
		if err != nil {
			return err
		}
		if rej != nil {
			res = freezeRejected(rej.ErrorType)
			return nil
		}

		window := s.clock.Today()
		existing, err := ev.ledger.FindFreezeToday(ctx, ev.client.ID, ev.sub.ID, window)
		if err != nil {
			return fmt.Errorf("find today freeze: %w", err)
		}
		if existing != nil {
			res = ev.freezeResult(true, "Сегодняшний день уже заморожен")
			return nil
		}

		if err := ev.lifecycle.Freeze(ctx, ev.sub, ev.tariff.FreezeLimit); err != nil {
			if errors.Is(err, subscriptions.ErrQuotaExceeded) {
				res = ev.freezeResult(false, ErrQuotaExceeded.Message())
				res.ErrorType = ErrQuotaExceeded
				return nil
			}
			return fmt.Errorf("freeze: %w", err)
		}

		if _, err := ev.ledger.Create(ctx, ev.client.ID, ev.sub.ID, true); err != nil {
			return err
		}
		res = ev.freezeResult(true, "День заморожен, посещение не списано")
		return nil
	})
	if errors.Is(err, visits.ErrDuplicate) {
		// параллельная заморозка успела раньше, счётчик откатился вместе с транзакцией
		res, err = s.alreadyFrozen(ctx, identity)
	}
	if err != nil {
		return nil, err
	}
	s.observeFreeze("freeze", res)
	return res, nil
}

// Unfreeze отменяет сегодняшнюю заморозку.
func (s *Service) Unfreeze(ctx context.Context, identity string) (*FreezeResult, error) {
	unlock, err := s.locker.Lock(ctx, lockKey(identity))
	if err != nil {
		return nil, fmt.Errorf("lock: %w", err)
	}
	defer unlock()

	var res *FreezeResult
	err = s.store.WithinTx(ctx, func(r Repos) error {
		ev, rej, err := s.resolve(ctx, r, identity)
		if err != nil {
			return err
		}
		if rej != nil {
			res = freezeRejected(rej.ErrorType)
			return nil
		}

		frozen, err := ev.ledger.FindFreezeToday(ctx, ev.client.ID, ev.sub.ID, s.clock.Today())
		if err != nil {
			return fmt.Errorf("find today freeze: %w", err)
		}
		if frozen == nil {
			res = ev.freezeResult(false, ErrNotFound.Message())
			res.ErrorType = ErrNotFound
			return nil
		}

		if err := ev.lifecycle.Unfreeze(ctx, ev.sub); err != nil {
			return fmt.Errorf("unfreeze: %w", err)
		}
		if err := ev.ledger.Delete(ctx, frozen.ID); err != nil {
			return err
		}
		res = ev.freezeResult(true, "Заморозка отменена")
		return nil
	})
	if errors.Is(err, visits.ErrNotFound) {
		res, err = freezeRejected(ErrNotFound), nil
	}
	if err != nil {
		return nil, err
	}
	s.observeFreeze("unfreeze", res)
	return res, nil
}

func (ev *evaluation) freezeResult(ok bool, msg string) *FreezeResult {
	return &FreezeResult{
		Success:     ok,
		Message:     msg,
		FreezeUsed:  ev.sub.FreezeUsed,
		FreezeLimit: ev.tariff.FreezeLimit,
	}
}

// alreadyFrozen перечитывает абонемент после отката, чтобы вернуть
// актуальные счётчики заморозок.
func (s *Service) alreadyFrozen(ctx context.Context, identity string) (*FreezeResult, error) {
	const msg = "Сегодняшний день уже заморожен"
	ev, rej, err := s.resolve(ctx, s.store.Repos(), identity)
	if err != nil {
		return nil, err
	}
	if rej != nil {
		return &FreezeResult{Success: true, Message: msg}, nil
	}
	return ev.freezeResult(true, msg), nil
}

func freezeRejected(t ErrorType) *FreezeResult {
	return &FreezeResult{ErrorType: t, Message: t.Message()}
}

func (s *Service) observeFreeze(op string, res *FreezeResult) {
	switch {
	case res.ErrorType != "":
		s.obs.ObserveOutcome(op, string(res.ErrorType))
	case res.Success:
		s.obs.ObserveOutcome(op, "ok")
	}
}

func lockKey(identity string) string {
	return "attendance:" + strings.TrimSpace(identity)
}
