package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prime-portal/chat-service/internal/domain"
	"github.com/prime-portal/chat-service/internal/moderation"
	"github.com/prime-portal/chat-service/internal/schedule"
)

// ChatService — точка принятия решения по кадру message и остальные операции комнаты.
type ChatService struct {
	rooms     RoomStore
	members   MemberStore
	messages  MessageStore
	pending   PendingStore
	schedules ScheduleStore
	users     UserStore

	classifier moderation.Classifier
	calc       *schedule.Calculator
	pub        Publisher
	notifier   Notifier

	pendingTTL time.Duration
	now        func() time.Time
}

type ChatServiceDeps struct {
	Rooms      RoomStore
	Members    MemberStore
	Messages   MessageStore
	Pending    PendingStore
	Schedules  ScheduleStore
	Users      UserStore
	Classifier moderation.Classifier
	Calculator *schedule.Calculator
	Publisher  Publisher
	Notifier   Notifier

	// PendingTTL — горизонт жизни отложенного сообщения (default 7 дней).
	PendingTTL time.Duration
	Now        func() time.Time
}

func NewChatService(d ChatServiceDeps) *ChatService {
	if d.PendingTTL <= 0 {
		d.PendingTTL = 7 * 24 * time.Hour
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Notifier == nil {
		d.Notifier = LogNotifier{}
	}
	return &ChatService{
		rooms:      d.Rooms,
		members:    d.Members,
		messages:   d.Messages,
		pending:    d.Pending,
		schedules:  d.Schedules,
		users:      d.Users,
		classifier: d.Classifier,
		calc:       d.Calculator,
		pub:        d.Publisher,
		notifier:   d.Notifier,
		pendingTTL: d.PendingTTL,
		now:        d.Now,
	}
}

// SendResult — исход отправки: ровно одно из полей заполнено.
type SendResult struct {
	Message *domain.Message
	Pending *domain.PendingMessage

	SupervisorName string
}

// SendMessage реализует выбор между немедленной и отложенной доставкой.
// Порядок: валидация -> модерация -> gating -> persist -> publish.
func (s *ChatService) SendMessage(ctx context.Context, roomID string, sender *domain.User, content string, replyTo *string) (*SendResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.ErrEmptyMessage
	}

	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}

	verdict, err := s.classifier.Classify(ctx, content)
	if err != nil {
		// классификатор fail-open, сюда попадают только ошибки сборки запроса
		return nil, fmt.Errorf("classify: %w", err)
	}
	if verdict.IsInappropriate {
		return nil, &domain.ModerationError{Issues: verdict.Issues}
	}

	// reply_to из другой комнаты отбрасывается молча
	if replyTo != nil {
		ok, err := s.messages.ExistsInRoom(ctx, roomID, *replyTo)
		if err != nil {
			return nil, fmt.Errorf("check reply_to: %w", err)
		}
		if !ok {
			replyTo = nil
		}
	}

	target, sched, err := s.gating(ctx, room, sender)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if target == nil || s.calc.IsAvailable(sched, now) {
		return s.deliverImmediate(ctx, room, sender, content, replyTo, verdict)
	}
	return s.deferDelivery(ctx, room, sender, target, content, replyTo, verdict, sched, now)
}

// gating возвращает участника, чья доступность ограничивает доставку,
// и действующее расписание (override комнаты при заморозке, иначе личное).
func (s *ChatService) gating(ctx context.Context, room *domain.Room, sender *domain.User) (*domain.User, *domain.AvailabilitySchedule, error) {
	if room.Kind != domain.RoomSupervised || room.SupervisorID == nil {
		return nil, nil, nil
	}
	if sender.ID == *room.SupervisorID || sender.Role.CanOverrideSchedule() {
		return nil, nil, nil
	}

	target, err := s.users.Get(ctx, *room.SupervisorID)
	if err != nil {
		return nil, nil, fmt.Errorf("load supervisor: %w", err)
	}

	if room.IsFrozen && room.ScheduleOverride != nil {
		return target, room.ScheduleOverride, nil
	}
	sched, err := s.schedules.ForOwner(ctx, target.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load schedule: %w", err)
	}
	return target, sched, nil
}

func (s *ChatService) deliverImmediate(ctx context.Context, room *domain.Room, sender *domain.User, content string, replyTo *string, verdict moderation.Verdict) (*SendResult, error) {
	msg := &domain.Message{
		RoomID:         room.ID,
		SenderID:       sender.ID,
		Content:        content,
		ReplyTo:        replyTo,
		SentimentScore: verdict.SentimentScore,
		IsFlagged:      verdict.IsSuspicious,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	// best-effort, поле только для отображения
	if err := s.rooms.TouchLastMessage(ctx, room.ID); err != nil {
		slog.Debug("touch last message failed", "room", room.ID, "err", err)
	}

	// всем участникам, включая отправителя: клиент дедуплицирует по id
	s.pub.Broadcast(room.ID, MessageEvent{
		Type:           EventMessage,
		MessageID:      msg.ID,
		SenderID:       sender.ID,
		SenderName:     sender.DisplayName,
		Content:        msg.Content,
		Timestamp:      msg.CreatedAt,
		ReplyTo:        msg.ReplyTo,
		SentimentScore: msg.SentimentScore,
		IsFlagged:      msg.IsFlagged,
	})

	if verdict.IsSuspicious {
		s.notifier.SuspiciousMessage(ctx, msg, verdict.Issues)
	}
	return &SendResult{Message: msg}, nil
}

func (s *ChatService) deferDelivery(ctx context.Context, room *domain.Room, sender, target *domain.User, content string, replyTo *string, verdict moderation.Verdict, sched *domain.AvailabilitySchedule, now time.Time) (*SendResult, error) {
	p := &domain.PendingMessage{
		RoomID:                room.ID,
		SenderID:              sender.ID,
		TargetID:              target.ID,
		Content:               content,
		ReplyTo:               replyTo,
		SentimentScore:        verdict.SentimentScore,
		IsFlagged:             verdict.IsSuspicious,
		ScheduledDeliveryTime: s.calc.NextAvailable(sched, now),
		ExpiresAt:             now.Add(s.pendingTTL),
	}
	if err := s.pending.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("insert pending: %w", err)
	}

	// другим участникам ничего не публикуется до фактической доставки
	return &SendResult{Pending: p, SupervisorName: target.DisplayName}, nil
}

// AddReaction идемпотентна; событие уходит всем, кроме автора реакции.
func (s *ChatService) AddReaction(ctx context.Context, roomID string, user *domain.User, messageID, emoji string) error {
	if emoji == "" || messageID == "" {
		return domain.ErrMessageNotFound
	}
	if _, err := s.messages.Get(ctx, roomID, messageID); err != nil {
		return err
	}
	if err := s.messages.AddReaction(ctx, &domain.Reaction{MessageID: messageID, UserID: user.ID, Emoji: emoji}); err != nil {
		return fmt.Errorf("add reaction: %w", err)
	}
	s.pub.BroadcastExcept(roomID, user.ID, ReactionEvent{
		Type:      EventReaction,
		MessageID: messageID,
		UserID:    user.ID,
		Username:  user.DisplayName,
		Emoji:     emoji,
	})
	return nil
}

// DeleteMessage — soft-delete; разрешён автору и роли с правом модерации.
func (s *ChatService) DeleteMessage(ctx context.Context, roomID string, user *domain.User, messageID string) error {
	msg, err := s.messages.Get(ctx, roomID, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != user.ID && !user.Role.CanModerate() {
		return domain.ErrForbidden
	}
	if err := s.messages.SoftDelete(ctx, roomID, messageID); err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			// уже удалено — событие не дублируем
			return nil
		}
		return err
	}
	s.pub.Broadcast(roomID, DeletedEvent{
		Type:      EventDeleted,
		MessageID: messageID,
		DeletedBy: user.ID,
	})
	return nil
}

func (s *ChatService) MarkRoomRead(ctx context.Context, roomID string, userID int64) error {
	return s.members.MarkRead(ctx, roomID, userID)
}

func (s *ChatService) History(ctx context.Context, roomID, after string, limit int) ([]domain.Message, string, error) {
	return s.messages.History(ctx, roomID, after, limit)
}

func (s *ChatService) PendingForRoom(ctx context.Context, roomID string) ([]domain.PendingMessage, error) {
	return s.pending.ListByRoom(ctx, roomID)
}

// UpdateSchedule — расписание меняет только его владелец.
func (s *ChatService) UpdateSchedule(ctx context.Context, owner *domain.User, sched *domain.AvailabilitySchedule) error {
	sched.OwnerID = owner.ID
	sched.Days = schedule.NormalizeDays(sched.Days)
	return s.schedules.Upsert(ctx, sched)
}
