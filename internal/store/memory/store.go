// Package memory хранилище в памяти с теми же гарантиями, что и Postgres:
// откат транзакции и уникальность визита за день.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/Spok95/fitclub-bot/internal/attendance"
	"github.com/Spok95/fitclub-bot/internal/domain/clients"
	"github.com/Spok95/fitclub-bot/internal/domain/subscriptions"
	"github.com/Spok95/fitclub-bot/internal/domain/tariffs"
	"github.com/Spok95/fitclub-bot/internal/domain/visits"
	"github.com/Spok95/fitclub-bot/internal/venue"
)

type state struct {
	clients map[int64]clients.Client
	tariffs map[int64]tariffs.Tariff
	subs    map[int64]subscriptions.Subscription
	visits  map[int64]visits.Visit
	nextID  int64
}

func (s *state) clone() *state {
	return &state{
		clients: maps.Clone(s.clients),
		tariffs: maps.Clone(s.tariffs),
		subs:    maps.Clone(s.subs),
		visits:  maps.Clone(s.visits),
		nextID:  s.nextID,
	}
}

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   *state
	// faults операция -> ошибка, срабатывает один раз
	faults map[string]error
}

func New() *Store {
	return &Store{
		st: &state{
			clients: map[int64]clients.Client{},
			tariffs: map[int64]tariffs.Tariff{},
			subs:    map[int64]subscriptions.Subscription{},
			visits:  map[int64]visits.Visit{},
		},
		faults: map[string]error{},
	}
}

func (s *Store) Repos() attendance.Repos {
	return attendance.Repos{
		Clients:       ClientRepo{s},
		Tariffs:       TariffRepo{s},
		Subscriptions: SubscriptionRepo{s},
		Visits:        VisitRepo{s},
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(r attendance.Repos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(s.Repos()); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// InjectError следующая операция op вернёт err. Имена операций:
// "subscriptions.mark_completed", "subscriptions.decrement", "subscriptions.freeze",
// "subscriptions.unfreeze", "visits.create", "visits.delete", "visits.find".
func (s *Store) InjectError(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

func (s *Store) fault(op string) error {
	err, ok := s.faults[op]
	if ok {
		delete(s.faults, op)
	}
	return err
}

func (s *Store) id() int64 {
	s.st.nextID++
	return s.st.nextID
}

func (s *Store) AddClient(c clients.Client) clients.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	s.st.clients[c.ID] = c
	return c
}

func (s *Store) AddTariff(t tariffs.Tariff) tariffs.Tariff {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id()
	s.st.tariffs[t.ID] = t
	return t
}

func (s *Store) AddSubscription(sub subscriptions.Subscription) subscriptions.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub.ID = s.id()
	if sub.Status == "" {
		sub.Status = subscriptions.StatusActive
	}
	s.st.subs[sub.ID] = sub
	return sub
}

func (s *Store) Subscription(id int64) (subscriptions.Subscription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.st.subs[id]
	return sub, ok
}

// Visits все визиты по порядку создания.
func (s *Store) Visits() []visits.Visit {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]visits.Visit, 0, len(s.st.visits))
	for _, v := range s.st.visits {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Clients() ClientRepo { return ClientRepo{s} }

func (s *Store) VisitRepo() VisitRepo { return VisitRepo{s} }

type ClientRepo struct{ s *Store }

func (r ClientRepo) GetByExternalID(_ context.Context, externalID string) (*clients.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.st.clients {
		if c.ExternalID == externalID {
			return &c, nil
		}
	}
	return nil, nil
}

func (r ClientRepo) GetByID(_ context.Context, id int64) (*clients.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.st.clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

type TariffRepo struct{ s *Store }

func (r TariffRepo) GetByID(_ context.Context, id int64) (*tariffs.Tariff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.st.tariffs[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

type SubscriptionRepo struct{ s *Store }

func (r SubscriptionRepo) FindActive(_ context.Context, clientID int64) (*subscriptions.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var best *subscriptions.Subscription
	for _, sub := range r.s.st.subs {
		if sub.ClientID != clientID || sub.Status != subscriptions.StatusActive {
			continue
		}
		if best == nil || sub.EndDate.After(best.EndDate) || (sub.EndDate.Equal(best.EndDate) && sub.ID > best.ID) {
			cp := sub
			best = &cp
		}
	}
	return best, nil
}

func (r SubscriptionRepo) MarkCompleted(_ context.Context, id int64) error {
	return r.update(id, "subscriptions.mark_completed", func(sub *subscriptions.Subscription) error {
		sub.Status = subscriptions.StatusCompleted
		return nil
	})
}

func (r SubscriptionRepo) DecrementRemaining(_ context.Context, id int64) (int, error) {
	var left int
	err := r.update(id, "subscriptions.decrement", func(sub *subscriptions.Subscription) error {
		if sub.RemainingDays <= 0 {
			return subscriptions.ErrNothingRemaining
		}
		sub.RemainingDays--
		left = sub.RemainingDays
		return nil
	})
	return left, err
}

func (r SubscriptionRepo) IncrementFreezeUsed(_ context.Context, id int64, limit int) (int, error) {
	var used int
	err := r.update(id, "subscriptions.freeze", func(sub *subscriptions.Subscription) error {
		if sub.FreezeUsed >= limit {
			return subscriptions.ErrQuotaExceeded
		}
		sub.FreezeUsed++
		used = sub.FreezeUsed
		return nil
	})
	return used, err
}

func (r SubscriptionRepo) DecrementFreezeUsed(_ context.Context, id int64) (int, error) {
	var used int
	err := r.update(id, "subscriptions.unfreeze", func(sub *subscriptions.Subscription) error {
		if sub.FreezeUsed > 0 {
			sub.FreezeUsed--
		}
		used = sub.FreezeUsed
		return nil
	})
	return used, err
}

func (r SubscriptionRepo) update(id int64, op string, fn func(*subscriptions.Subscription) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault(op); err != nil {
		return err
	}
	sub, ok := r.s.st.subs[id]
	if !ok {
		return subscriptions.ErrNothingRemaining
	}
	if err := fn(&sub); err != nil {
		return err
	}
	sub.UpdatedAt = time.Now()
	r.s.st.subs[id] = sub
	return nil
}

type VisitRepo struct{ s *Store }

func (r VisitRepo) FindInWindow(_ context.Context, clientID, subscriptionID int64, from, to time.Time, freeze bool) (*visits.Visit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("visits.find"); err != nil {
		return nil, err
	}
	var found *visits.Visit
	for _, v := range r.s.st.visits {
		if v.ClientID != clientID || v.SubscriptionID != subscriptionID || v.IsFreezeDay != freeze {
			continue
		}
		if v.VisitDate.Before(from) || !v.VisitDate.Before(to) {
			continue
		}
		if found == nil || v.VisitDate.Before(found.VisitDate) {
			cp := v
			found = &cp
		}
	}
	return found, nil
}

func (r VisitRepo) Create(_ context.Context, v *visits.Visit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("visits.create"); err != nil {
		return err
	}
	day := venue.DayOf(v.VisitDate).Start
	for _, e := range r.s.st.visits {
		if e.ClientID == v.ClientID && e.SubscriptionID == v.SubscriptionID &&
			e.IsFreezeDay == v.IsFreezeDay && venue.DayOf(e.VisitDate).Start.Equal(day) {
			return visits.ErrDuplicate
		}
	}
	v.ID = r.s.id()
	v.CreatedAt = time.Now()
	r.s.st.visits[v.ID] = *v
	return nil
}

func (r VisitRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("visits.delete"); err != nil {
		return err
	}
	if _, ok := r.s.st.visits[id]; !ok {
		return visits.ErrNotFound
	}
	delete(r.s.st.visits, id)
	return nil
}

func (r VisitRepo) ListBetween(_ context.Context, from, to time.Time) ([]visits.ReportRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []visits.ReportRow
	for _, v := range r.s.st.visits {
		if v.VisitDate.Before(from) || !v.VisitDate.Before(to) {
			continue
		}
		c := r.s.st.clients[v.ClientID]
		out = append(out, visits.ReportRow{Visit: v, ClientName: c.Name, ClientPhone: c.Phone, ExternalID: c.ExternalID})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VisitDate.Equal(out[j].VisitDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].VisitDate.Before(out[j].VisitDate)
	})
	return out, nil
}
