package service

import "time"

// Кадры сервер→клиент. Плоский JSON, тип в поле "type";
// клиенты дедуплицируют по message_id.
const (
	EventMessage          = "message"
	EventMessagePending   = "message_pending"
	EventPendingDelivered = "pending_delivered"
	EventTyping           = "typing"
	EventUserJoined       = "user_joined"
	EventUserLeft         = "user_left"
	EventRoomState        = "room_state"
	EventReaction         = "reaction"
	EventDeleted          = "deleted"
	EventError            = "error"
)

type MessageEvent struct {
	Type           string    `json:"type"`
	MessageID      string    `json:"message_id"`
	SenderID       int64     `json:"sender_id"`
	SenderName     string    `json:"sender_name"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	ReplyTo        *string   `json:"reply_to"`
	SentimentScore float64   `json:"sentiment_score"`
	IsFlagged      bool      `json:"is_flagged"`

	// PendingMessageID заполняется только для type=pending_delivered.
	PendingMessageID string `json:"pending_message_id,omitempty"`
}

type MessagePendingEvent struct {
	Type                  string    `json:"type"`
	PendingMessageID      string    `json:"pending_message_id"`
	ScheduledDeliveryTime time.Time `json:"scheduled_delivery_time"`
	SupervisorName        string    `json:"supervisor_name"`
	DeliveryMessage       string    `json:"delivery_message"`
}

type TypingEvent struct {
	Type     string `json:"type"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	IsTyping bool   `json:"is_typing"`
}

type PresenceEvent struct {
	Type      string    `json:"type"` // user_joined | user_left
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomStateEvent — снимок комнаты для только что подключившегося клиента.
type RoomStateEvent struct {
	Type          string  `json:"type"`
	OnlineUserIDs []int64 `json:"online_user_ids"`
	TypingUserIDs []int64 `json:"typing_user_ids"`
}

type ReactionEvent struct {
	Type      string `json:"type"`
	MessageID string `json:"message_id"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Emoji     string `json:"emoji"`
}

type DeletedEvent struct {
	Type      string `json:"type"`
	MessageID string `json:"message_id"`
	DeletedBy int64  `json:"deleted_by"`
}

type ErrorEvent struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func NewErrorEvent(msg string, details ...string) ErrorEvent {
	return ErrorEvent{Type: EventError, Message: msg, Details: details}
}

// Publisher — fan-out по комнате. Живая доставка и sweeper публикуют через
// один и тот же механизм, поэтому клиент не отличает отложенное сообщение от обычного.
type Publisher interface {
	Broadcast(roomID string, event any)
	BroadcastExcept(roomID string, exceptUserID int64, event any)
	SendToUser(roomID string, userID int64, event any)
}
