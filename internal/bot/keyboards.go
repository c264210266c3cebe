package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/fitclub-bot/internal/attendance"
)

const (
	btnCheckIn = "Отметиться"
	btnMyQR    = "Мой QR-код"
)

func cancelRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✖️ Отменить", cbCancel),
	)
}

// visitKeyboard кнопки под карточкой проверки; false, если действовать нечем.
func visitKeyboard(res *attendance.CheckResult) (tgbotapi.InlineKeyboardMarkup, bool) {
	if !res.Granted {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	if res.CanCommit {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить визит", cbCommit),
		))
	}
	if res.CanFreeze && !res.IsFrozenToday {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❄️ Заморозить день", cbFreeze),
		))
	}
	if res.CanUnfreeze {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔥 Разморозить", cbUnfreeze),
		))
	}
	rows = append(rows, cancelRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

// memberReplyKeyboard нижняя панель клиента
func memberReplyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]tgbotapi.KeyboardButton{
			{tgbotapi.NewKeyboardButton(btnCheckIn)},
			{tgbotapi.NewKeyboardButton(btnMyQR)},
		},
	}
}
