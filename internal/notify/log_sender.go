package notify

import (
	"context"
	"log/slog"
)

// LogSender пишет уведомления в лог, когда Telegram не настроен.
type LogSender struct {
	Log *slog.Logger
}

func (s LogSender) Send(_ context.Context, identity, text string) (Delivery, error) {
	s.Log.Info("notify: telegram disabled, message logged", "identity", identity, "text", text)
	return Delivery{OK: true, Description: "logged"}, nil
}
