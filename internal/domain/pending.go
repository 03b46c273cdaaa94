package domain

import "time"

type PendingStatus string

const (
	PendingStatusPending   PendingStatus = "pending"
	PendingStatusDelivered PendingStatus = "delivered"
	PendingStatusFailed    PendingStatus = "failed"
	PendingStatusExpired   PendingStatus = "expired"
)

// Terminal — из delivered/expired выхода нет; failed можно перезапустить вручную.
func (s PendingStatus) Terminal() bool {
	return s == PendingStatusDelivered || s == PendingStatusExpired
}

// PendingMessage — отложенное сообщение: адресат был недоступен в момент отправки.
// Все переходы из pending делаются только через CAS по текущему статусу.
type PendingMessage struct {
	ID       string  `db:"id"`
	RoomID   string  `db:"room_id"`
	SenderID int64   `db:"sender_id"`
	TargetID int64   `db:"target_id"`
	Content  string  `db:"content"`
	ReplyTo  *string `db:"reply_to"`

	SentimentScore float64 `db:"sentiment_score"`
	IsFlagged      bool    `db:"is_flagged"`

	Status                PendingStatus `db:"status"`
	ScheduledDeliveryTime time.Time     `db:"scheduled_delivery_time"`
	ExpiresAt             time.Time     `db:"expires_at"`

	Attempts      int        `db:"attempts"`
	LastAttemptAt *time.Time `db:"last_attempt_at"`
	ErrorMessage  string     `db:"error_message"`

	// DeliveredMessageID — ссылка на Message, созданный при доставке.
	DeliveredMessageID *string    `db:"delivered_message_id"`
	DeliveredAt        *time.Time `db:"delivered_at"`

	CreatedAt time.Time `db:"created_at"`
}
