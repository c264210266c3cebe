package subscriptions

import "time"

type Status string

const (
	StatusActive    Status = "active"
	StatusFrozen    Status = "frozen"
	StatusCompleted Status = "completed"
)

type Subscription struct {
	ID        int64     `json:"id"`
	ClientID  int64     `json:"clientId"`
	TariffID  int64     `json:"tariffId"`
	Status    Status    `json:"status"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	// RemainingDays остаток посещений (счётчик визитов, не календарных дней).
	RemainingDays int       `json:"remainingDays"`
	FreezeUsed    int       `json:"freezeUsed"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Expired сравнивает с реальным временем, без сдвига клуба.
func (s *Subscription) Expired(now time.Time) bool {
	return now.After(s.EndDate)
}
