package bot

import (
	"context"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/fitclub-bot/internal/attendance"
	"github.com/Spok95/fitclub-bot/internal/dialog"
)

type Attendance interface {
	Check(ctx context.Context, identity string) (*attendance.CheckResult, error)
	Commit(ctx context.Context, identity string) (*attendance.CommitResult, error)
	SetFreeze(ctx context.Context, identity string, action attendance.FreezeAction) (*attendance.FreezeResult, error)
}

type States interface {
	Get(ctx context.Context, chatID int64) (*dialog.Item, error)
	Set(ctx context.Context, chatID int64, state dialog.State, payload dialog.Payload) error
	Reset(ctx context.Context, chatID int64) error
}

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type Bot struct {
	api    telegramAPI
	log    *slog.Logger
	states States
	att    Attendance
}

func New(api *tgbotapi.BotAPI, log *slog.Logger, statesRepo States, att Attendance) *Bot {
	return &Bot{api: api, log: log, states: statesRepo, att: att}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			if upd.Message != nil {
				b.onMessage(ctx, upd)
			} else if upd.CallbackQuery != nil {
				b.onCallback(ctx, upd)
			}
		}
	}
}

func (b *Bot) onMessage(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg.From == nil {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	switch msg.Text {
	case btnCheckIn:
		b.checkIn(ctx, msg.Chat.ID, identityOf(msg.From))
	case btnMyQR:
		b.sendQR(msg.Chat.ID, identityOf(msg.From))
	default:
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "Нажмите «"+btnCheckIn+"», чтобы отметить посещение."))
	}
}

func (b *Bot) onCallback(ctx context.Context, upd tgbotapi.Update) {
	b.handleCallback(ctx, upd.CallbackQuery)
}

// identityOf клиент в базе заведён по Telegram ID.
func identityOf(u *tgbotapi.User) string {
	return strconv.FormatInt(u.ID, 10)
}
