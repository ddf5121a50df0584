package service

import (
	"fmt"
	"time"
)

// Clock источник текущего времени
type Clock interface {
	Now() time.Time
}

// SystemClock возвращает текущее время в заданной временной зоне
type SystemClock struct {
	Location *time.Location
}

// NewSystemClock создает часы для зоны из конфигурации ("Local", "UTC", "Europe/Moscow" ...)
func NewSystemClock(timezone string) (*SystemClock, error) {
	if timezone == "" || timezone == "Local" {
		return &SystemClock{Location: time.Local}, nil
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
	}
	return &SystemClock{Location: loc}, nil
}

func (c *SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// GetWeekStart возвращает понедельник 00:00:00 текущей недели в зоне now.
// Воскресенье считается седьмым днем предыдущей недели (ISO).
func GetWeekStart(now time.Time) time.Time {
	weekday := int(now.Weekday())
	if weekday == int(time.Sunday) {
		weekday = 7
	}
	daysSinceMonday := weekday - int(time.Monday)
	return time.Date(now.Year(), now.Month(), now.Day()-daysSinceMonday, 0, 0, 0, 0, now.Location())
}

// IsResetWindow true в первый час понедельника
func IsResetWindow(now time.Time) bool {
	return now.Weekday() == time.Monday && now.Hour() == 0
}
