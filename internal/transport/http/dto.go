package http

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

type ChatMessageItem struct {
	ID             string    `json:"id"`
	RoomID         string    `json:"room_id"`
	SenderID       int64     `json:"sender_id"`
	Content        string    `json:"content"`
	ReplyTo        *string   `json:"reply_to,omitempty"`
	SentimentScore float64   `json:"sentiment_score"`
	IsFlagged      bool      `json:"is_flagged"`
	IsDeleted      bool      `json:"is_deleted"`
	CreatedAt      time.Time `json:"created_at"`
}

type ChatHistoryResponse struct {
	Items      []ChatMessageItem `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

type ParticipantItem struct {
	UserID      int64      `json:"user_id"`
	DisplayName string     `json:"display_name"`
	Role        string     `json:"role"`
	IsOnline    bool       `json:"is_online"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`
	JoinedAt    time.Time  `json:"joined_at"`
}

type ParticipantsResponse struct {
	Items []ParticipantItem `json:"items"`
}

type PendingItem struct {
	ID                    string     `json:"id"`
	RoomID                string     `json:"room_id"`
	SenderID              int64      `json:"sender_id"`
	TargetID              int64      `json:"target_id"`
	Status                string     `json:"status"`
	ScheduledDeliveryTime time.Time  `json:"scheduled_delivery_time"`
	ExpiresAt             time.Time  `json:"expires_at"`
	Attempts              int        `json:"attempts"`
	LastAttemptAt         *time.Time `json:"last_attempt_at,omitempty"`
	ErrorMessage          string     `json:"error_message,omitempty"`
	DeliveredMessageID    *string    `json:"delivered_message_id,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

type PendingListResponse struct {
	Items []PendingItem `json:"items"`
}

type SweepResponse struct {
	Delivered    int  `json:"delivered"`
	Expired      int  `json:"expired"`
	Failed       int  `json:"failed"`
	StillPending int  `json:"still_pending"`
	DryRun       bool `json:"dry_run"`
	ForceAll     bool `json:"force_all"`
}

type ScheduleRequest struct {
	Enabled   bool     `json:"enabled"`
	StartTime string   `json:"start_time"` // "09:00"
	EndTime   string   `json:"end_time"`   // "17:00"
	Days      []string `json:"days"`
}
