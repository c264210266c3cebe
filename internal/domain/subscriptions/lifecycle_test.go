package subscriptions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	sub         Subscription
	completions int
	failMark    bool
}

func (f *fakeStore) FindActive(context.Context, int64) (*Subscription, error) {
	if f.sub.Status != StatusActive {
		return nil, nil
	}
	s := f.sub
	return &s, nil
}

func (f *fakeStore) MarkCompleted(context.Context, int64) error {
	if f.failMark {
		return errors.New("db down")
	}
	if f.sub.Status != StatusCompleted {
		f.completions++
	}
	f.sub.Status = StatusCompleted
	return nil
}

func (f *fakeStore) DecrementRemaining(context.Context, int64) (int, error) {
	if f.sub.RemainingDays <= 0 {
		return 0, ErrNothingRemaining
	}
	f.sub.RemainingDays--
	return f.sub.RemainingDays, nil
}

func (f *fakeStore) IncrementFreezeUsed(_ context.Context, _ int64, limit int) (int, error) {
	if f.sub.FreezeUsed >= limit {
		return 0, ErrQuotaExceeded
	}
	f.sub.FreezeUsed++
	return f.sub.FreezeUsed, nil
}

func (f *fakeStore) DecrementFreezeUsed(context.Context, int64) (int, error) {
	if f.sub.FreezeUsed > 0 {
		f.sub.FreezeUsed--
	}
	return f.sub.FreezeUsed, nil
}

type notice struct {
	remaining    int
	storedAtCall int
}

type recordingNotifier struct {
	store   *fakeStore
	notices []notice
}

func (n *recordingNotifier) LowBalance(_ context.Context, _ int64, remaining int) {
	n.notices = append(n.notices, notice{remaining: remaining, storedAtCall: n.store.sub.RemainingDays})
}

var now = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func newLifecycle(st *fakeStore, n Notifier) *Lifecycle {
	return NewLifecycle(st, n, func() time.Time { return now }, nil)
}

func TestRecordVisitConsumptionCompletesExactlyOnce(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{sub: Subscription{ID: 1, Status: StatusActive, RemainingDays: 5, EndDate: now.AddDate(0, 1, 0)}}
	n := &recordingNotifier{store: st}
	l := newLifecycle(st, n)

	s, err := l.FindActive(ctx, 1)
	require.NoError(t, err)

	for i := 5; i > 0; i-- {
		require.Equal(t, StatusActive, s.Status, "completed too early at remaining=%d", i)
		require.NoError(t, l.RecordVisitConsumption(ctx, s))
	}
	assert.Equal(t, 0, s.RemainingDays)
	assert.Equal(t, StatusCompleted, s.Status)
	assert.Equal(t, 1, st.completions)

	// дальше счётчик не уходит в минус
	require.NoError(t, l.RecordVisitConsumption(ctx, s))
	assert.Equal(t, 0, st.sub.RemainingDays)
	assert.Equal(t, 1, st.completions)
}

func TestLowBalanceNotifiedBeforeDecrement(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{sub: Subscription{ID: 1, Status: StatusActive, RemainingDays: 5}}
	n := &recordingNotifier{store: st}
	l := newLifecycle(st, n)

	s := st.sub
	for i := 0; i < 5; i++ {
		require.NoError(t, l.RecordVisitConsumption(ctx, &s))
	}

	require.Len(t, n.notices, 3)
	for i, want := range []int{3, 2, 1} {
		assert.Equal(t, want, n.notices[i].remaining)
		assert.Equal(t, want+1, n.notices[i].storedAtCall, "notification must precede the decrement")
	}
}

func TestReconcileExpiry(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{sub: Subscription{ID: 1, Status: StatusActive, RemainingDays: 4, EndDate: now.Add(-time.Minute)}}
	l := newLifecycle(st, nil)

	s := st.sub
	assert.Equal(t, Expired, l.ReconcileExpiry(ctx, &s))
	assert.Equal(t, StatusCompleted, s.Status)
	assert.Equal(t, StatusCompleted, st.sub.Status)

	assert.Equal(t, Unchanged, l.ReconcileExpiry(ctx, &s))
	assert.Equal(t, 1, st.completions)
}

func TestReconcileExpiryNotYet(t *testing.T) {
	st := &fakeStore{sub: Subscription{ID: 1, Status: StatusActive, RemainingDays: 4, EndDate: now}}
	s := st.sub
	assert.Equal(t, Unchanged, newLifecycle(st, nil).ReconcileExpiry(context.Background(), &s))
	assert.Equal(t, StatusActive, s.Status)
}

func TestReconcileExhausted(t *testing.T) {
	st := &fakeStore{sub: Subscription{ID: 1, Status: StatusActive, RemainingDays: 0, EndDate: now.Add(time.Hour)}}
	s := st.sub
	assert.Equal(t, Exhausted, newLifecycle(st, nil).ReconcileExpiry(context.Background(), &s))
	assert.Equal(t, StatusCompleted, st.sub.Status)
}

func TestReconcileToleratesWriteFailure(t *testing.T) {
	st := &fakeStore{failMark: true, sub: Subscription{ID: 1, Status: StatusActive, RemainingDays: 4, EndDate: now.Add(-time.Hour)}}
	l := newLifecycle(st, nil)

	s := st.sub
	assert.Equal(t, Expired, l.ReconcileExpiry(ctx(), &s))
	assert.Equal(t, StatusCompleted, s.Status)
	assert.Equal(t, StatusActive, st.sub.Status)

	// следующая попытка снова видит просроченный active и дописывает статус
	st.failMark = false
	s2, err := l.FindActive(ctx(), 1)
	require.NoError(t, err)
	require.NotNil(t, s2)
	assert.Equal(t, Expired, l.ReconcileExpiry(ctx(), s2))
	assert.Equal(t, StatusCompleted, st.sub.Status)
}

func TestFreezeQuota(t *testing.T) {
	st := &fakeStore{sub: Subscription{ID: 1, Status: StatusActive, RemainingDays: 4}}
	l := newLifecycle(st, nil)
	s := st.sub

	require.NoError(t, l.Freeze(ctx(), &s, 2))
	require.NoError(t, l.Freeze(ctx(), &s, 2))
	assert.ErrorIs(t, l.Freeze(ctx(), &s, 2), ErrQuotaExceeded)
	assert.Equal(t, 2, s.FreezeUsed)
	assert.Equal(t, 2, st.sub.FreezeUsed)

	require.NoError(t, l.Unfreeze(ctx(), &s))
	require.NoError(t, l.Unfreeze(ctx(), &s))
	require.NoError(t, l.Unfreeze(ctx(), &s))
	assert.Equal(t, 0, s.FreezeUsed)
}

func TestFreezeZeroLimit(t *testing.T) {
	st := &fakeStore{sub: Subscription{ID: 1, Status: StatusActive}}
	s := st.sub
	assert.ErrorIs(t, newLifecycle(st, nil).Freeze(ctx(), &s, 0), ErrQuotaExceeded)
	assert.Equal(t, 0, st.sub.FreezeUsed)
}

func ctx() context.Context { return context.Background() }
