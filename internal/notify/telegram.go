package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSender identity клиента это chat id в Telegram.
type TelegramSender struct {
	api messageSender
}

func NewTelegramSender(api *tgbotapi.BotAPI) *TelegramSender {
	return &TelegramSender{api: api}
}

func (s *TelegramSender) Send(ctx context.Context, identity, text string) (Delivery, error) {
	if err := ctx.Err(); err != nil {
		return Delivery{}, err
	}
	chatID, err := strconv.ParseInt(identity, 10, 64)
	if err != nil {
		return Delivery{OK: false, Description: fmt.Sprintf("identity %q is not a telegram chat id", identity)}, nil
	}
	if _, err := s.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		var tgErr *tgbotapi.Error
		if errors.As(err, &tgErr) {
			return Delivery{OK: false, Description: tgErr.Message}, nil
		}
		return Delivery{}, err
	}
	return Delivery{OK: true}, nil
}
