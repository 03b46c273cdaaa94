// Package schedule отвечает на два вопроса: доступен ли владелец расписания
// сейчас и когда он станет доступен в следующий раз. Все расчёты ведутся в
// одной канонической зоне системы, не в зоне участника.
package schedule

import (
	"strings"
	"time"

	"github.com/prime-portal/chat-service/internal/domain"
)

// fallbackDelay используется, если в ближайшие 7 дней окно не нашлось.
const fallbackDelay = 24 * time.Hour

const scanDays = 7

var canonicalDays = map[string]string{
	"mon": "Mon", "monday": "Mon",
	"tue": "Tue", "tues": "Tue", "tuesday": "Tue",
	"wed": "Wed", "weds": "Wed", "wednesday": "Wed",
	"thu": "Thu", "thur": "Thu", "thurs": "Thu", "thursday": "Thu",
	"fri": "Fri", "friday": "Fri",
	"sat": "Sat", "saturday": "Sat",
	"sun": "Sun", "sunday": "Sun",
}

// NormalizeDay приводит название дня к каноническому трёхбуквенному токену.
// Неизвестный токен возвращается как есть: он просто никогда не совпадёт.
func NormalizeDay(day string) string {
	trimmed := strings.TrimSpace(day)
	if c, ok := canonicalDays[strings.ToLower(trimmed)]; ok {
		return c
	}
	return trimmed
}

// NormalizeDays нормализует список, отбрасывая пустые элементы.
func NormalizeDays(days []string) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		if n := NormalizeDay(d); n != "" {
			out = append(out, n)
		}
	}
	return out
}

type Calculator struct {
	loc *time.Location
}

// NewCalculator создаёт калькулятор с канонической зоной системы.
func NewCalculator(loc *time.Location) *Calculator {
	if loc == nil {
		loc = time.UTC
	}
	return &Calculator{loc: loc}
}

// IsAvailable — доступен ли владелец расписания в момент now.
func (c *Calculator) IsAvailable(s *domain.AvailabilitySchedule, now time.Time) bool {
	if s == nil || !s.Enabled {
		return true
	}
	// fail-open: без границ окна расписание считается не настроенным
	if s.StartTime == nil || s.EndTime == nil {
		return true
	}

	local := now.In(c.loc)
	if !dayAllowed(s.Days, local.Weekday()) {
		return false
	}

	minutes := local.Hour()*60 + local.Minute()
	return s.StartTime.Minutes() <= minutes && minutes <= s.EndTime.Minutes()
}

// NextAvailable — первый момент строго после now, когда начинается окно.
// Сканируются 7 календарных дней включая сегодняшний; если совпадений нет —
// now + 24h.
func (c *Calculator) NextAvailable(s *domain.AvailabilitySchedule, now time.Time) time.Time {
	if s == nil || !s.Enabled || s.StartTime == nil || s.EndTime == nil {
		return now
	}

	local := now.In(c.loc)
	for i := 0; i < scanDays; i++ {
		day := local.AddDate(0, 0, i)
		if !dayAllowed(s.Days, day.Weekday()) {
			continue
		}
		start := time.Date(day.Year(), day.Month(), day.Day(),
			s.StartTime.Hour, s.StartTime.Minute, 0, 0, c.loc)
		if start.After(now) {
			return start
		}
	}
	return now.Add(fallbackDelay)
}

func dayAllowed(days []string, wd time.Weekday) bool {
	if len(days) == 0 {
		return true
	}
	token := wd.String()[:3]
	for _, d := range days {
		if NormalizeDay(d) == token {
			return true
		}
	}
	return false
}
