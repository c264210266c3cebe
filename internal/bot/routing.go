package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/fitclub-bot/internal/attendance"
	"github.com/Spok95/fitclub-bot/internal/dialog"
	"github.com/Spok95/fitclub-bot/internal/infra/qr"
)

const (
	cbCommit   = "visit:commit"
	cbFreeze   = "visit:freeze"
	cbUnfreeze = "visit:unfreeze"
	cbCancel   = "nav:cancel"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		_ = b.states.Reset(ctx, chatID)
		m := tgbotapi.NewMessage(chatID, "Добро пожаловать в клуб! Чтобы отметить посещение, нажмите «"+btnCheckIn+"».")
		m.ReplyMarkup = memberReplyKeyboard()
		b.send(m)
	case "checkin":
		b.checkIn(ctx, chatID, identityOf(msg.From))
	case "qr":
		b.sendQR(chatID, identityOf(msg.From))
	default:
		b.send(tgbotapi.NewMessage(chatID, "Неизвестная команда."))
	}
}

// checkIn проверка без записи: карточка с кнопками подтверждения.
func (b *Bot) checkIn(ctx context.Context, chatID int64, identity string) {
	b.clearPrevStep(ctx, chatID)

	res, err := b.att.Check(ctx, identity)
	if err != nil {
		b.log.Error("bot: check failed", "err", err, "chat_id", chatID)
		b.send(tgbotapi.NewMessage(chatID, textInternalError))
		return
	}

	m := tgbotapi.NewMessage(chatID, renderCheck(res))
	kb, ok := visitKeyboard(res)
	if ok {
		m.ReplyMarkup = kb
	}
	sent, err := b.api.Send(m)
	if err != nil {
		b.log.Error("send failed", "err", err)
		return
	}
	if ok {
		b.saveLastStep(ctx, chatID, dialog.StateAwaitVisitConfirm, dialog.Payload{}, sent.MessageID)
	} else {
		_ = b.states.Reset(ctx, chatID)
	}
}

func (b *Bot) sendQR(chatID int64, identity string) {
	png, err := qr.PNG(identity, qr.DefaultSize)
	if err != nil {
		b.log.Error("bot: qr failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, textInternalError))
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "qr.png", Bytes: png})
	photo.Caption = "Покажите этот код на входе"
	b.send(photo)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.From == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	mid := cb.Message.MessageID
	identity := identityOf(cb.From)

	switch cb.Data {
	case cbCancel:
		_ = b.states.Reset(ctx, chatID)
		b.editTextAndClear(chatID, mid, "Операция отменена.")
		_ = b.answerCallback(cb, "Отменено", false)

	case cbCommit:
		res, err := b.att.Commit(ctx, identity)
		if err != nil {
			b.log.Error("bot: commit failed", "err", err, "chat_id", chatID)
			_ = b.answerCallback(cb, textInternalError, true)
			return
		}
		_ = b.states.Reset(ctx, chatID)
		b.editTextAndClear(chatID, mid, renderCommit(res))
		_ = b.answerCallback(cb, "", false)

	case cbFreeze, cbUnfreeze:
		action := attendance.ActionFreeze
		if cb.Data == cbUnfreeze {
			action = attendance.ActionUnfreeze
		}
		res, err := b.att.SetFreeze(ctx, identity, action)
		if err != nil {
			b.log.Error("bot: freeze failed", "err", err, "chat_id", chatID, "action", action)
			_ = b.answerCallback(cb, textInternalError, true)
			return
		}
		_ = b.answerCallback(cb, renderFreeze(action, res), !res.Success)
		b.refreshCard(ctx, chatID, mid, identity)

	default:
		_ = b.answerCallback(cb, "Кнопка устарела", false)
	}
}

// refreshCard перерисовать карточку после заморозки/разморозки.
func (b *Bot) refreshCard(ctx context.Context, chatID int64, mid int, identity string) {
	res, err := b.att.Check(ctx, identity)
	if err != nil {
		b.log.Error("bot: check failed", "err", err, "chat_id", chatID)
		b.editTextAndClear(chatID, mid, textInternalError)
		return
	}
	kb, ok := visitKeyboard(res)
	if !ok {
		_ = b.states.Reset(ctx, chatID)
		b.editTextAndClear(chatID, mid, renderCheck(res))
		return
	}
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, mid, renderCheck(res), kb))
}
