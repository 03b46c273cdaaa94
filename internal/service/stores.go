package service

import (
	"context"
	"time"

	"github.com/prime-portal/chat-service/internal/domain"
	"github.com/prime-portal/chat-service/internal/postgres"
)

// Интерфейсы хранилищ со стороны потребителя; реализации — internal/postgres.

type RoomStore interface {
	Get(ctx context.Context, id string) (*domain.Room, error)
	TouchLastMessage(ctx context.Context, id string) error
}

type MemberStore interface {
	Exists(ctx context.Context, roomID string, userID int64) (bool, error)
	SetOnline(ctx context.Context, roomID string, userID int64, online bool) error
	MarkRead(ctx context.Context, roomID string, userID int64) error
	ListDetailed(ctx context.Context, roomID string) ([]postgres.MemberDetailedRow, error)
}

type MessageStore interface {
	Insert(ctx context.Context, m *domain.Message) error
	Get(ctx context.Context, roomID, id string) (*domain.Message, error)
	ExistsInRoom(ctx context.Context, roomID, id string) (bool, error)
	SoftDelete(ctx context.Context, roomID, id string) error
	AddReaction(ctx context.Context, rc *domain.Reaction) error
	History(ctx context.Context, roomID, after string, limit int) ([]domain.Message, string, error)
}

type PendingStore interface {
	Insert(ctx context.Context, p *domain.PendingMessage) error
	Get(ctx context.Context, id string) (*domain.PendingMessage, error)
	ListByStatus(ctx context.Context, status domain.PendingStatus) ([]domain.PendingMessage, error)
	ListByRoom(ctx context.Context, roomID string) ([]domain.PendingMessage, error)
	CompleteDelivery(ctx context.Context, id string, from domain.PendingStatus, msg *domain.Message) error
	MarkExpired(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, errMsg string, at time.Time, from domain.PendingStatus) error
}

type ScheduleStore interface {
	ForOwner(ctx context.Context, ownerID int64) (*domain.AvailabilitySchedule, error)
	Upsert(ctx context.Context, s *domain.AvailabilitySchedule) error
}

type UserStore interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
}
