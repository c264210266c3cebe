// Package venue считает «сегодня» клуба по фиксированному смещению от UTC,
// не завися от часового пояса сервера.
package venue

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DefaultUTCOffsetHours = 6

// Window полуинтервал [Start, End) одного календарного дня клуба.
// Границы в том же сдвинутом представлении, что и visit_date в хранилище.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

type Clock struct {
	offset time.Duration
	now    func() time.Time
}

type Option func(*Clock)

// WithNow подменяет источник времени (для тестов).
func WithNow(now func() time.Time) Option {
	return func(c *Clock) { c.now = now }
}

func NewClock(offsetHours int, opts ...Option) *Clock {
	c := &Clock{offset: time.Duration(offsetHours) * time.Hour, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Clock) Offset() time.Duration { return c.offset }

// Now реальное время в UTC (для сравнения с end_date абонемента).
func (c *Clock) Now() time.Time { return c.now().UTC() }

// LocalNow «сейчас» клуба: UTC плюс смещение. Так же пишется visit_date.
func (c *Clock) LocalNow() time.Time { return c.Shift(c.now()) }

// Shift переводит момент времени в сдвинутое представление клуба.
func (c *Clock) Shift(t time.Time) time.Time { return t.UTC().Add(c.offset) }

func (c *Clock) Today() Window {
	return DayOf(c.LocalNow())
}

// DayOf окно календарного дня для уже сдвинутого момента.
func DayOf(local time.Time) Window {
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.Add(24 * time.Hour)}
}

// HourOf дробный час: 08:30 -> 8.5. Секунды не учитываются.
func HourOf(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60
}

// ParseClock разбирает "HH:MM" в дробный час.
func ParseClock(s string) (float64, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("venue: bad clock value %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("venue: bad hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("venue: bad minute in %q", s)
	}
	return float64(h) + float64(m)/60, nil
}
