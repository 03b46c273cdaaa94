package domain

import "time"

// DeletedContent подставляется вместо текста при soft-delete; строка сохраняется для аудита.
const DeletedContent = "[Message deleted]"

type Message struct {
	ID       string  `db:"id"`
	RoomID   string  `db:"room_id"`
	SenderID int64   `db:"sender_id"`
	Content  string  `db:"content"`
	ReplyTo  *string `db:"reply_to"`

	SentimentScore float64 `db:"sentiment_score"`
	IsFlagged      bool    `db:"is_flagged"`

	IsDeleted bool       `db:"is_deleted"`
	DeletedAt *time.Time `db:"deleted_at"`

	CreatedAt time.Time `db:"created_at"`
}

func (m *Message) DisplayContent() string {
	if m.IsDeleted {
		return DeletedContent
	}
	return m.Content
}

type Reaction struct {
	MessageID string    `db:"message_id"`
	UserID    int64     `db:"user_id"`
	Emoji     string    `db:"emoji"`
	CreatedAt time.Time `db:"created_at"`
}
