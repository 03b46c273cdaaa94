package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrNotInRoom       = errors.New("user not in the room")
	ErrMessageNotFound = errors.New("message not found")
	ErrPendingNotFound = errors.New("pending message not found")
	ErrNotPending      = errors.New("pending message is no longer pending")
	ErrEmptyMessage    = errors.New("empty message")
	ErrForbidden       = errors.New("operation not allowed")
)

// ModerationError — отказ модерации: ничего не сохраняется, причины уходят отправителю.
type ModerationError struct {
	Issues []string
}

func (e *ModerationError) Error() string {
	if len(e.Issues) == 0 {
		return "message rejected by moderation"
	}
	return fmt.Sprintf("message rejected by moderation: %s", strings.Join(e.Issues, "; "))
}
