package attendance

import (
	"time"

	"github.com/Spok95/fitclub-bot/internal/domain/clients"
	"github.com/Spok95/fitclub-bot/internal/domain/subscriptions"
	"github.com/Spok95/fitclub-bot/internal/domain/tariffs"
	"github.com/Spok95/fitclub-bot/internal/domain/visits"
)

// ErrorType стабильный код отказа, по нему ветвятся UI, бот и сканер.
type ErrorType string

const (
	ErrClientNotFound       ErrorType = "CLIENT_NOT_FOUND"
	ErrNoActiveSubscription ErrorType = "NO_ACTIVE_SUBSCRIPTION"
	ErrSubscriptionExpired  ErrorType = "SUBSCRIPTION_EXPIRED"
	ErrOutsideWorkingHours  ErrorType = "OUTSIDE_WORKING_HOURS"
	ErrAlreadyVisitedToday  ErrorType = "ALREADY_VISITED_TODAY"
	ErrQuotaExceeded        ErrorType = "QUOTA_EXCEEDED"
	ErrNotFound             ErrorType = "NOT_FOUND"
)

var messages = map[ErrorType]string{
	ErrClientNotFound:       "Клиент не найден",
	ErrNoActiveSubscription: "Нет активного абонемента",
	ErrSubscriptionExpired:  "Срок действия абонемента истёк",
	ErrOutsideWorkingHours:  "Сейчас вне времени посещения по тарифу",
	ErrAlreadyVisitedToday:  "Сегодня посещение уже отмечено",
	ErrQuotaExceeded:        "Лимит дней заморозки исчерпан",
	ErrNotFound:             "Сегодня нет заморозки, отменять нечего",
}

func (e ErrorType) Message() string { return messages[e] }

type WorkingHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type CheckResult struct {
	Granted   bool      `json:"granted"`
	ErrorType ErrorType `json:"errorType,omitempty"`
	Message   string    `json:"message,omitempty"`

	Client       *clients.Client             `json:"client,omitempty"`
	Subscription *subscriptions.Subscription `json:"subscription,omitempty"`
	// EffectiveStatus frozen, если сегодня день заморозки.
	EffectiveStatus subscriptions.Status `json:"effectiveStatus,omitempty"`
	Tariff          *tariffs.Tariff      `json:"tariff,omitempty"`
	WorkingHours    *WorkingHours        `json:"workingHours,omitempty"`
	VisitTime       *time.Time           `json:"visitTime,omitempty"`

	// CanCommit false, когда обычный визит сегодня уже есть: Commit ответит
	// ALREADY_VISITED_TODAY, кнопку подтверждения показывать не нужно.
	CanCommit     bool `json:"canCommit"`
	CanFreeze     bool `json:"canFreeze"`
	IsFrozenToday bool `json:"isFrozenToday"`
	CanUnfreeze   bool `json:"canUnfreeze"`
}

type CommitResult struct {
	CheckResult
	Visit *visits.Visit `json:"visit,omitempty"`
}

type FreezeAction string

const (
	ActionFreeze   FreezeAction = "freeze"
	ActionUnfreeze FreezeAction = "unfreeze"
)

type FreezeResult struct {
	Success     bool      `json:"success"`
	ErrorType   ErrorType `json:"errorType,omitempty"`
	Message     string    `json:"message"`
	FreezeUsed  int       `json:"freezeUsed"`
	FreezeLimit int       `json:"freezeLimit"`
}

func reject(t ErrorType) *CheckResult {
	return &CheckResult{ErrorType: t, Message: t.Message()}
}
