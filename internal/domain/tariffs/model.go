package tariffs

import (
	"fmt"

	"github.com/Spok95/fitclub-bot/internal/venue"
)

// Tariff шаблон абонемента. Движок его только читает.
type Tariff struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	// DurationDays общее число посещений, а не календарных дней.
	DurationDays int `json:"durationDays"`
	// Duration срок действия в месяцах.
	Duration    int    `json:"duration"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	FreezeLimit int    `json:"freezeLimit"`
}

// Hours окно доступа в дробных часах, границы включительно.
func (t *Tariff) Hours() (start, end float64, err error) {
	if start, err = venue.ParseClock(t.StartTime); err != nil {
		return 0, 0, fmt.Errorf("tariff %d start: %w", t.ID, err)
	}
	if end, err = venue.ParseClock(t.EndTime); err != nil {
		return 0, 0, fmt.Errorf("tariff %d end: %w", t.ID, err)
	}
	return start, end, nil
}
