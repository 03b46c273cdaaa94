package domain

import "time"

type RoomKind string

const (
	RoomDirect     RoomKind = "direct"
	RoomGroup      RoomKind = "group"
	RoomSupervised RoomKind = "supervised"
)

type Room struct {
	ID   string   `db:"id"`
	Name string   `db:"name"`
	Kind RoomKind `db:"kind"`

	// SupervisorID — участник, чья доступность ограничивает комнату (только supervised).
	SupervisorID *int64 `db:"supervisor_id"`

	IsActive bool `db:"is_active"`
	// IsFrozen — комната использует собственное расписание вместо расписания supervisor-а.
	IsFrozen bool `db:"is_frozen"`

	// ScheduleOverride — собственное окно комнаты; имеет смысл только при IsFrozen.
	ScheduleOverride *AvailabilitySchedule

	LastMessageAt *time.Time `db:"last_message_at"`
	CreatedAt     time.Time  `db:"created_at"`
}
