// Package notify отправляет клиенту напоминания об остатке посещений.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Spok95/fitclub-bot/internal/domain/clients"
)

type ClientFinder interface {
	GetByID(ctx context.Context, id int64) (*clients.Client, error)
}

// Delivery ответ канала доставки.
type Delivery struct {
	OK          bool
	Description string
}

type Sender interface {
	Send(ctx context.Context, identity, text string) (Delivery, error)
}

type Observer interface {
	ObserveNotification(result string)
}

type nopObserver struct{}

func (nopObserver) ObserveNotification(string) {}

const (
	ResultSent        = "sent"
	ResultRejected    = "rejected"
	ResultFailed      = "failed"
	ResultNoRecipient = "no_recipient"
)

// Trigger шлёт уведомления в фоне: ошибки только логируются и считаются.
type Trigger struct {
	clients ClientFinder
	sender  Sender
	obs     Observer
	log     *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewTrigger(cf ClientFinder, sender Sender, log *slog.Logger, timeout time.Duration, obs Observer) *Trigger {
	if obs == nil {
		obs = nopObserver{}
	}
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Trigger{clients: cf, sender: sender, obs: obs, log: log, timeout: timeout}
}

func (t *Trigger) LowBalance(_ context.Context, clientID int64, remaining int) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		// отдельный контекст: запрос, вызвавший уведомление, уже может завершиться
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		t.deliver(ctx, clientID, remaining)
	}()
}

// Wait дожидается всех отправок (для остановки сервиса и тестов).
func (t *Trigger) Wait() { t.wg.Wait() }

func (t *Trigger) deliver(ctx context.Context, clientID int64, remaining int) {
	c, err := t.clients.GetByID(ctx, clientID)
	if err != nil {
		t.log.Error("notify: get client failed", "err", err, "client_id", clientID)
		t.obs.ObserveNotification(ResultFailed)
		return
	}
	if c == nil || c.ExternalID == "" {
		t.log.Warn("notify: no recipient", "client_id", clientID)
		t.obs.ObserveNotification(ResultNoRecipient)
		return
	}

	d, err := t.sender.Send(ctx, c.ExternalID, LowBalanceText(c.Name, remaining))
	switch {
	case err != nil:
		t.log.Error("notify: send failed", "err", err, "client_id", clientID)
		t.obs.ObserveNotification(ResultFailed)
	case !d.OK:
		t.log.Warn("notify: rejected", "client_id", clientID, "description", d.Description)
		t.obs.ObserveNotification(ResultRejected)
	default:
		t.log.Info("notify: low balance sent", "client_id", clientID, "remaining", remaining)
		t.obs.ObserveNotification(ResultSent)
	}
}

func LowBalanceText(name string, remaining int) string {
	greet := "Здравствуйте!"
	if name != "" {
		greet = fmt.Sprintf("Здравствуйте, %s!", name)
	}
	var tail string
	switch remaining {
	case 1:
		tail = "В вашем абонементе осталось последнее посещение. Не забудьте продлить абонемент."
	default:
		tail = fmt.Sprintf("В вашем абонементе осталось %d %s.", remaining, visitsWord(remaining))
	}
	return greet + "\n" + tail
}

// visitsWord склонение слова «посещение».
func visitsWord(n int) string {
	n %= 100
	if n >= 11 && n <= 14 {
		return "посещений"
	}
	switch n % 10 {
	case 1:
		return "посещение"
	case 2, 3, 4:
		return "посещения"
	default:
		return "посещений"
	}
}
