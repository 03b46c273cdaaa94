package service

import (
	"context"
	"log/slog"

	"github.com/prime-portal/chat-service/internal/domain"
)

// Notifier — хук для внешнего канала уведомлений (шаблоны и доставка вне этого сервиса).
type Notifier interface {
	PendingDelivered(ctx context.Context, p *domain.PendingMessage, msg *domain.Message)
	PendingExpired(ctx context.Context, p *domain.PendingMessage)
	SuspiciousMessage(ctx context.Context, msg *domain.Message, issues []string)
}

// LogNotifier — дефолтная реализация: структурные записи в лог.
type LogNotifier struct{}

func (LogNotifier) PendingDelivered(ctx context.Context, p *domain.PendingMessage, msg *domain.Message) {
	slog.InfoContext(ctx, "pending message delivered",
		"pending_id", p.ID, "message_id", msg.ID, "sender", p.SenderID, "target", p.TargetID)
}

func (LogNotifier) PendingExpired(ctx context.Context, p *domain.PendingMessage) {
	slog.WarnContext(ctx, "pending message expired",
		"pending_id", p.ID, "sender", p.SenderID, "target", p.TargetID, "expired_at", p.ExpiresAt)
}

func (LogNotifier) SuspiciousMessage(ctx context.Context, msg *domain.Message, issues []string) {
	slog.WarnContext(ctx, "suspicious message flagged",
		"message_id", msg.ID, "room", msg.RoomID, "sender", msg.SenderID, "issues", issues)
}
