package bot

import (
	"fmt"
	"strings"

	"github.com/Spok95/fitclub-bot/internal/attendance"
)

const textInternalError = "Не удалось выполнить операцию, попробуйте позже."

func renderCheck(res *attendance.CheckResult) string {
	var sb strings.Builder
	if !res.Granted {
		sb.WriteString("⛔ " + res.Message)
		if res.WorkingHours != nil {
			fmt.Fprintf(&sb, "\nЧасы посещения по тарифу: %s-%s", res.WorkingHours.Start, res.WorkingHours.End)
		}
		if res.VisitTime != nil {
			fmt.Fprintf(&sb, "\nВремя отметки: %s", res.VisitTime.Format("15:04"))
		}
		return sb.String()
	}

	sb.WriteString("✅ Доступ разрешён")
	if res.Tariff != nil {
		fmt.Fprintf(&sb, "\nТариф: %s", res.Tariff.Name)
	}
	if res.Subscription != nil {
		fmt.Fprintf(&sb, "\nОсталось посещений: %d", res.Subscription.RemainingDays)
		fmt.Fprintf(&sb, "\nДействует до: %s", res.Subscription.EndDate.Format("02.01.2006"))
		if res.Tariff != nil {
			fmt.Fprintf(&sb, "\nЗаморозки: %d из %d", res.Subscription.FreezeUsed, res.Tariff.FreezeLimit)
		}
	}
	if res.WorkingHours != nil {
		fmt.Fprintf(&sb, "\nЧасы посещения: %s-%s", res.WorkingHours.Start, res.WorkingHours.End)
	}
	if res.IsFrozenToday {
		sb.WriteString("\n❄️ Сегодня день заморозки")
	}
	return sb.String()
}

func renderCommit(res *attendance.CommitResult) string {
	if !res.Granted {
		return renderCheck(&res.CheckResult)
	}
	text := "✅ " + res.Message
	if res.Visit != nil {
		text += fmt.Sprintf("\nВремя: %s", res.Visit.VisitDate.Format("15:04"))
	}
	if res.Subscription != nil {
		text += fmt.Sprintf("\nОсталось посещений: %d", res.Subscription.RemainingDays)
	}
	return text
}

func renderFreeze(action attendance.FreezeAction, res *attendance.FreezeResult) string {
	if !res.Success {
		return res.Message
	}
	if action == attendance.ActionUnfreeze {
		return fmt.Sprintf("День разморожен. Заморозки: %d из %d", res.FreezeUsed, res.FreezeLimit)
	}
	return fmt.Sprintf("День заморожен. Заморозки: %d из %d", res.FreezeUsed, res.FreezeLimit)
}
