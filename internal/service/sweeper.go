package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prime-portal/chat-service/internal/domain"
	"github.com/prime-portal/chat-service/internal/schedule"
)

// Sweeper сверяет очередь отложенных сообщений с часами и расписаниями:
// готовые доставляет, просроченные помечает expired. Работает и как
// периодическая задача, и по требованию (HTTP/CLI).
type Sweeper struct {
	pending   PendingStore
	rooms     RoomStore
	schedules ScheduleStore
	users     UserStore

	calc     *schedule.Calculator
	pub      Publisher
	notifier Notifier
	now      func() time.Time
}

type SweeperDeps struct {
	Pending    PendingStore
	Rooms      RoomStore
	Schedules  ScheduleStore
	Users      UserStore
	Calculator *schedule.Calculator
	Publisher  Publisher
	Notifier   Notifier
	Now        func() time.Time
}

func NewSweeper(d SweeperDeps) *Sweeper {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Notifier == nil {
		d.Notifier = LogNotifier{}
	}
	return &Sweeper{
		pending:   d.Pending,
		rooms:     d.Rooms,
		schedules: d.Schedules,
		users:     d.Users,
		calc:      d.Calculator,
		pub:       d.Publisher,
		notifier:  d.Notifier,
		now:       d.Now,
	}
}

type SweepOptions struct {
	// DryRun — только посчитать, без единой записи.
	DryRun bool
	// ForceAll — административный обход расписаний: доставить всё pending.
	// Никогда не включается по умолчанию.
	ForceAll bool
}

type SweepSummary struct {
	Delivered    int
	Expired      int
	Failed       int
	StillPending int
}

// Run проходит все pending-строки. Каждый переход защищён CAS по текущему
// статусу, поэтому параллельные запуски безопасны: проигравший пропускает строку.
func (s *Sweeper) Run(ctx context.Context, opts SweepOptions) (SweepSummary, error) {
	var sum SweepSummary

	rows, err := s.pending.ListByStatus(ctx, domain.PendingStatusPending)
	if err != nil {
		return sum, fmt.Errorf("list pending: %w", err)
	}

	for i := range rows {
		p := &rows[i]
		now := s.now()

		// просрочка проверяется раньше готовности: expired никогда не доставляется
		if now.After(p.ExpiresAt) {
			if opts.DryRun {
				sum.Expired++
				continue
			}
			if err := s.pending.MarkExpired(ctx, p.ID); err != nil {
				if errors.Is(err, domain.ErrNotPending) {
					continue // успел другой запуск
				}
				slog.Error("mark expired failed", "pending_id", p.ID, "err", err)
				continue
			}
			s.notifier.PendingExpired(ctx, p)
			sum.Expired++
			continue
		}

		// force-all минует проверку готовности целиком, расписания не читаются
		if !opts.ForceAll {
			ready, err := s.isReady(ctx, p, now)
			if err != nil {
				slog.Error("readiness check failed", "pending_id", p.ID, "err", err)
				sum.StillPending++
				continue
			}
			if !ready {
				sum.StillPending++
				continue
			}
		}

		if opts.DryRun {
			sum.Delivered++
			continue
		}

		switch _, err := s.deliver(ctx, p, domain.PendingStatusPending); {
		case err == nil:
			sum.Delivered++
		case errors.Is(err, domain.ErrNotPending):
			// гонка с другим запуском или ручной доставкой — записей не делаем
		default:
			sum.Failed++
		}
	}

	return sum, nil
}

// isReady — готовность к доставке: нет gating-расписания, окно открыто сейчас,
// либо наступило расчётное время доставки.
func (s *Sweeper) isReady(ctx context.Context, p *domain.PendingMessage, now time.Time) (bool, error) {
	if !now.Before(p.ScheduledDeliveryTime) {
		return true, nil
	}

	room, err := s.rooms.Get(ctx, p.RoomID)
	if err != nil {
		return false, err
	}

	var sched *domain.AvailabilitySchedule
	if room.IsFrozen && room.ScheduleOverride != nil {
		sched = room.ScheduleOverride
	} else {
		sched, err = s.schedules.ForOwner(ctx, p.TargetID)
		if err != nil {
			return false, err
		}
	}
	if sched == nil || !sched.Enabled {
		return true, nil
	}
	return s.calc.IsAvailable(sched, now), nil
}

// deliver материализует Message из pending-строки в одной гарантированной
// транзакции и публикует его в тот же fan-out, что и живые сообщения.
func (s *Sweeper) deliver(ctx context.Context, p *domain.PendingMessage, from domain.PendingStatus) (*domain.Message, error) {
	msg := &domain.Message{
		RoomID:         p.RoomID,
		SenderID:       p.SenderID,
		Content:        p.Content,
		ReplyTo:        p.ReplyTo,
		SentimentScore: p.SentimentScore,
		IsFlagged:      p.IsFlagged,
	}

	if err := s.pending.CompleteDelivery(ctx, p.ID, from, msg); err != nil {
		if errors.Is(err, domain.ErrNotPending) {
			return nil, err
		}
		s.recordFailure(ctx, p, from, err)
		return nil, err
	}

	if err := s.rooms.TouchLastMessage(ctx, p.RoomID); err != nil {
		slog.Debug("touch last message failed", "room", p.RoomID, "err", err)
	}

	senderName := ""
	if u, err := s.users.Get(ctx, p.SenderID); err == nil {
		senderName = u.DisplayName
	}

	s.pub.Broadcast(p.RoomID, MessageEvent{
		Type:             EventPendingDelivered,
		MessageID:        msg.ID,
		SenderID:         msg.SenderID,
		SenderName:       senderName,
		Content:          msg.Content,
		Timestamp:        msg.CreatedAt,
		ReplyTo:          msg.ReplyTo,
		SentimentScore:   msg.SentimentScore,
		IsFlagged:        msg.IsFlagged,
		PendingMessageID: p.ID,
	})
	s.notifier.PendingDelivered(ctx, p, msg)
	return msg, nil
}

func (s *Sweeper) recordFailure(ctx context.Context, p *domain.PendingMessage, from domain.PendingStatus, cause error) {
	slog.Error("pending delivery failed", "pending_id", p.ID, "err", cause)
	if err := s.pending.MarkFailed(ctx, p.ID, cause.Error(), s.now(), from); err != nil && !errors.Is(err, domain.ErrNotPending) {
		slog.Error("mark failed failed", "pending_id", p.ID, "err", err)
	}
}

// DeliverNow — ручной административный override одной строки. Для pending —
// обход расписания, для failed — повторная попытка; терминальные статусы неизменяемы.
func (s *Sweeper) DeliverNow(ctx context.Context, pendingID string) (*domain.Message, error) {
	p, err := s.pending.Get(ctx, pendingID)
	if err != nil {
		return nil, err
	}
	if p.Status.Terminal() {
		return nil, domain.ErrNotPending
	}
	return s.deliver(ctx, p, p.Status)
}

// Start — периодический запуск до отмены контекста.
func (s *Sweeper) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("sweeper started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("sweeper stopped")
			return
		case <-ticker.C:
			sum, err := s.Run(ctx, SweepOptions{})
			if err != nil {
				slog.Error("sweep run failed", "err", err)
				continue
			}
			if sum.Delivered+sum.Expired+sum.Failed > 0 {
				slog.Info("sweep run",
					"delivered", sum.Delivered, "expired", sum.Expired,
					"failed", sum.Failed, "still_pending", sum.StillPending)
			}
		}
	}
}
