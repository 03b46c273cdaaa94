package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prime-portal/chat-service/internal/domain"
)

func clock(h, m int) *domain.ClockTime {
	return &domain.ClockTime{Hour: h, Minute: m}
}

func weekdaySchedule(days ...string) *domain.AvailabilitySchedule {
	return &domain.AvailabilitySchedule{
		Enabled:   true,
		StartTime: clock(9, 0),
		EndTime:   clock(17, 0),
		Days:      days,
	}
}

// 2026-09-01 — вторник.
var tue10 = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

func TestNormalizeDay(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"mon", "Mon"},
		{"MONDAY", "Mon"},
		{"  tuesday ", "Tue"},
		{"Tues", "Tue"},
		{"weds", "Wed"},
		{"THURS", "Thu"},
		{"friday", "Fri"},
		{"Sat", "Sat"},
		{"sun", "Sun"},
		// неизвестный токен сохраняется как есть
		{"Blursday", "Blursday"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDay(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeDays_DropsEmpty(t *testing.T) {
	got := NormalizeDays([]string{"monday", "", "  ", "FRI"})
	assert.Equal(t, []string{"Mon", "Fri"}, got)
}

func TestIsAvailable_FailOpen(t *testing.T) {
	c := NewCalculator(time.UTC)

	tests := []struct {
		name  string
		sched *domain.AvailabilitySchedule
	}{
		{"nil schedule", nil},
		{"disabled", &domain.AvailabilitySchedule{Enabled: false, StartTime: clock(9, 0), EndTime: clock(17, 0)}},
		{"no start", &domain.AvailabilitySchedule{Enabled: true, EndTime: clock(17, 0)}},
		{"no end", &domain.AvailabilitySchedule{Enabled: true, StartTime: clock(9, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, c.IsAvailable(tt.sched, tue10))
		})
	}
}

func TestIsAvailable_Window(t *testing.T) {
	c := NewCalculator(time.UTC)
	s := weekdaySchedule("Mon", "Tue", "Wed")

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"inside window", tue10, true},
		{"start boundary inclusive", time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC), true},
		{"end boundary inclusive", time.Date(2026, 9, 1, 17, 0, 0, 0, time.UTC), true},
		{"before window", time.Date(2026, 9, 1, 8, 59, 0, 0, time.UTC), false},
		{"after window", time.Date(2026, 9, 1, 17, 1, 0, 0, time.UTC), false},
		{"wrong day", time.Date(2026, 9, 3, 10, 0, 0, 0, time.UTC), false}, // четверг
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsAvailable(s, tt.now))
		})
	}
}

func TestIsAvailable_DayCasing(t *testing.T) {
	c := NewCalculator(time.UTC)
	for _, days := range [][]string{
		{"Tue"}, {"tue"}, {"TUESDAY"}, {"tuesday"},
	} {
		assert.True(t, c.IsAvailable(weekdaySchedule(days...), tue10), "days %v", days)
	}
}

func TestIsAvailable_EmptyDaysMeansAnyDay(t *testing.T) {
	c := NewCalculator(time.UTC)
	assert.True(t, c.IsAvailable(weekdaySchedule(), tue10))
}

func TestNextAvailable_SkipsToNextAllowedDay(t *testing.T) {
	c := NewCalculator(time.UTC)
	s := weekdaySchedule("Mon", "Wed", "Fri")

	// вторник 10:00 -> среда 09:00
	got := c.NextAvailable(s, tue10)
	require.Equal(t, time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC), got)
}

func TestNextAvailable_SameDayBeforeStart(t *testing.T) {
	c := NewCalculator(time.UTC)
	s := weekdaySchedule("Tue")

	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	got := c.NextAvailable(s, now)
	require.Equal(t, time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC), got)
}

func TestNextAvailable_StrictlyAfterNow(t *testing.T) {
	c := NewCalculator(time.UTC)
	s := weekdaySchedule()

	// 09:00 уже наступило, любой день разрешён -> завтра 09:00
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	got := c.NextAvailable(s, now)
	require.Equal(t, time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC), got)
}

func TestNextAvailable_FallbackAfterScan(t *testing.T) {
	c := NewCalculator(time.UTC)
	// единственный разрешённый день — сегодняшний, но окно уже началось:
	// следующий вторник за пределами 7-дневного скана
	s := weekdaySchedule("Tue")

	got := c.NextAvailable(s, tue10)
	require.Equal(t, tue10.Add(24*time.Hour), got)
}

func TestNextAvailable_DisabledReturnsNow(t *testing.T) {
	c := NewCalculator(time.UTC)
	assert.Equal(t, tue10, c.NextAvailable(nil, tue10))
	assert.Equal(t, tue10, c.NextAvailable(&domain.AvailabilitySchedule{Enabled: false}, tue10))
}

func TestNextAvailable_RespectsLocation(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)
	c := NewCalculator(loc)
	s := weekdaySchedule("Tue")

	// 08:30 UTC = 09:30 BST: лондонское окно уже открыто
	now := time.Date(2026, 9, 1, 8, 30, 0, 0, time.UTC)
	assert.True(t, c.IsAvailable(s, now))

	// 07:30 UTC = 08:30 BST: старт окна сегодня в 09:00 по Лондону
	earlier := time.Date(2026, 9, 1, 7, 30, 0, 0, time.UTC)
	got := c.NextAvailable(s, earlier)
	require.Equal(t, time.Date(2026, 9, 1, 9, 0, 0, 0, loc), got)
}
