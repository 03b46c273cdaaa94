package ws

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Кадры клиент→сервер: плоский JSON, диспетчеризация по полю "type".
const (
	FrameMessage      = "message"
	FrameTyping       = "typing"
	FrameReaction     = "reaction"
	FrameDelete       = "delete"
	FrameMarkRoomRead = "mark_room_read"
)

type ClientFrame struct {
	Type string `json:"type"`

	// message
	Message string  `json:"message,omitempty"`
	ReplyTo *string `json:"reply_to,omitempty"`

	// typing
	IsTyping bool `json:"is_typing,omitempty"`

	// reaction / delete
	MessageID string `json:"message_id,omitempty"`
	Emoji     string `json:"emoji,omitempty"`

	// mark_room_read
	RoomID string `json:"room_id,omitempty"`
}

// DecodeFrame разбирает кадр; ошибка означает локальный error-ответ,
// соединение при этом остаётся открытым.
func DecodeFrame(data []byte) (*ClientFrame, error) {
	var f ClientFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if strings.TrimSpace(f.Type) == "" {
		return nil, fmt.Errorf("missing frame type")
	}
	return &f, nil
}
