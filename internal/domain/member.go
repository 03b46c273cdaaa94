package domain

import "time"

// Member — членство в комнате, уникально по (room, user).
type Member struct {
	RoomID     string     `db:"room_id"`
	UserID     int64      `db:"user_id"`
	IsOnline   bool       `db:"is_online"`
	LastReadAt time.Time  `db:"last_read_at"`
	LastSeenAt *time.Time `db:"last_seen_at"`
	JoinedAt   time.Time  `db:"joined_at"`
}
