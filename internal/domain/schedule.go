package domain

import "fmt"

// ClockTime — время суток без даты и зоны (колонка TIME).
type ClockTime struct {
	Hour   int
	Minute int
}

func (c ClockTime) Minutes() int { return c.Hour*60 + c.Minute }

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// AvailabilitySchedule — окно доступности владельца.
// Enabled=false или незаданные границы означают «всегда доступен» (fail-open).
type AvailabilitySchedule struct {
	OwnerID   int64      `db:"owner_id"`
	Enabled   bool       `db:"enabled"`
	StartTime *ClockTime `db:"start_time"`
	EndTime   *ClockTime `db:"end_time"`

	// Days — канонические трёхбуквенные токены (Mon..Sun); пусто = любой день.
	Days []string `db:"days"`
}
