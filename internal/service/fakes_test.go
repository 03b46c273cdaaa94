package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prime-portal/chat-service/internal/domain"
	"github.com/prime-portal/chat-service/internal/moderation"
	"github.com/prime-portal/chat-service/internal/postgres"
)

// memStore реализует все store-интерфейсы поверх карт в памяти;
// CAS-семантика повторяет SQL-репозитории.
type memStore struct {
	mu sync.Mutex

	rooms     map[string]*domain.Room
	users     map[int64]*domain.User
	members   map[string]map[int64]bool
	messages  map[string]*domain.Message
	pendings  map[string]*domain.PendingMessage
	schedules map[int64]*domain.AvailabilitySchedule
	reactions map[string]struct{}

	touched     []string
	failInserts bool // имитация отказа стораджа при доставке

	seq int
}

func newMemStore() *memStore {
	return &memStore{
		rooms:     make(map[string]*domain.Room),
		users:     make(map[int64]*domain.User),
		members:   make(map[string]map[int64]bool),
		messages:  make(map[string]*domain.Message),
		pendings:  make(map[string]*domain.PendingMessage),
		schedules: make(map[int64]*domain.AvailabilitySchedule),
		reactions: make(map[string]struct{}),
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

// --- RoomStore ---

func (m *memStore) Get(ctx context.Context, id string) (*domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) TouchLastMessage(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched = append(m.touched, id)
	return nil
}

// --- MemberStore ---

func (m *memStore) Exists(ctx context.Context, roomID string, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.members[roomID][userID], nil
}

func (m *memStore) SetOnline(ctx context.Context, roomID string, userID int64, online bool) error {
	return nil
}

func (m *memStore) MarkRead(ctx context.Context, roomID string, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.members[roomID][userID] {
		return domain.ErrNotInRoom
	}
	return nil
}

func (m *memStore) ListDetailed(ctx context.Context, roomID string) ([]postgres.MemberDetailedRow, error) {
	return nil, nil
}

// --- MessageStore ---

func (m *memStore) Insert(ctx context.Context, msg *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInserts {
		return errors.New("storage unavailable")
	}
	msg.ID = m.nextID("msg")
	msg.CreatedAt = time.Now()
	cp := *msg
	m.messages[msg.ID] = &cp
	return nil
}

func (m *memStore) GetMessage(ctx context.Context, roomID, id string) (*domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[id]
	if !ok || msg.RoomID != roomID {
		return nil, domain.ErrMessageNotFound
	}
	cp := *msg
	return &cp, nil
}

func (m *memStore) ExistsInRoom(ctx context.Context, roomID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[id]
	return ok && msg.RoomID == roomID, nil
}

func (m *memStore) SoftDelete(ctx context.Context, roomID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[id]
	if !ok || msg.RoomID != roomID || msg.IsDeleted {
		return domain.ErrMessageNotFound
	}
	now := time.Now()
	msg.IsDeleted = true
	msg.DeletedAt = &now
	msg.Content = domain.DeletedContent
	return nil
}

func (m *memStore) AddReaction(ctx context.Context, rc *domain.Reaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reactions[rc.MessageID+"|"+fmt.Sprint(rc.UserID)+"|"+rc.Emoji] = struct{}{}
	return nil
}

func (m *memStore) History(ctx context.Context, roomID, after string, limit int) ([]domain.Message, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Message
	for _, msg := range m.messages {
		if msg.RoomID == roomID {
			out = append(out, *msg)
		}
	}
	return out, "", nil
}

// --- PendingStore ---

func (m *memStore) InsertPending(ctx context.Context, p *domain.PendingMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.nextID("pnd")
	p.Status = domain.PendingStatusPending
	p.CreatedAt = time.Now()
	cp := *p
	m.pendings[p.ID] = &cp
	return nil
}

func (m *memStore) GetPending(ctx context.Context, id string) (*domain.PendingMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pendings[id]
	if !ok {
		return nil, domain.ErrPendingNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) ListByStatus(ctx context.Context, status domain.PendingStatus) ([]domain.PendingMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.PendingMessage
	for _, p := range m.pendings {
		if p.Status == status {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memStore) ListByRoom(ctx context.Context, roomID string) ([]domain.PendingMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.PendingMessage
	for _, p := range m.pendings {
		if p.RoomID == roomID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memStore) CompleteDelivery(ctx context.Context, id string, from domain.PendingStatus, msg *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pendings[id]
	if !ok || p.Status != from {
		return domain.ErrNotPending
	}
	if m.failInserts {
		// как в транзакции: статус не меняется
		return errors.New("storage unavailable")
	}
	msg.ID = m.nextID("msg")
	msg.CreatedAt = time.Now()
	cp := *msg
	m.messages[msg.ID] = &cp

	now := time.Now()
	p.Status = domain.PendingStatusDelivered
	p.DeliveredMessageID = &msg.ID
	p.DeliveredAt = &now
	return nil
}

func (m *memStore) MarkExpired(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pendings[id]
	if !ok || p.Status != domain.PendingStatusPending {
		return domain.ErrNotPending
	}
	p.Status = domain.PendingStatusExpired
	return nil
}

func (m *memStore) MarkFailed(ctx context.Context, id, errMsg string, at time.Time, from domain.PendingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pendings[id]
	if !ok || p.Status != from {
		return domain.ErrNotPending
	}
	p.Status = domain.PendingStatusFailed
	p.ErrorMessage = errMsg
	p.Attempts++
	p.LastAttemptAt = &at
	return nil
}

// --- ScheduleStore ---

func (m *memStore) ForOwner(ctx context.Context, ownerID int64) (*domain.AvailabilitySchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[ownerID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) Upsert(ctx context.Context, s *domain.AvailabilitySchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.schedules[s.OwnerID] = &cp
	return nil
}

// --- UserStore ---

func (m *memStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	cp := *u
	return &cp, nil
}

// Интерфейсы различают одноимённые методы; узкие обёртки ниже разводят их.

type msgStore struct{ *memStore }

func (s msgStore) Get(ctx context.Context, roomID, id string) (*domain.Message, error) {
	return s.GetMessage(ctx, roomID, id)
}

type pndStore struct{ *memStore }

func (s pndStore) Insert(ctx context.Context, p *domain.PendingMessage) error {
	return s.InsertPending(ctx, p)
}

func (s pndStore) Get(ctx context.Context, id string) (*domain.PendingMessage, error) {
	return s.GetPending(ctx, id)
}

type usrStore struct{ *memStore }

func (s usrStore) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.GetUser(ctx, id)
}

// --- Publisher ---

type pubEvent struct {
	roomID string
	except int64
	toUser int64
	event  any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []pubEvent
}

func (p *fakePublisher) Broadcast(roomID string, event any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, pubEvent{roomID: roomID, except: -1, toUser: -1, event: event})
}

func (p *fakePublisher) BroadcastExcept(roomID string, exceptUserID int64, event any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, pubEvent{roomID: roomID, except: exceptUserID, toUser: -1, event: event})
}

func (p *fakePublisher) SendToUser(roomID string, userID int64, event any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, pubEvent{roomID: roomID, except: -1, toUser: userID, event: event})
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// --- Classifier ---

type fakeClassifier struct {
	verdicts map[string]moderation.Verdict
}

func (c *fakeClassifier) Classify(ctx context.Context, text string) (moderation.Verdict, error) {
	if v, ok := c.verdicts[text]; ok {
		return v, nil
	}
	return moderation.Verdict{}, nil
}

// --- Notifier ---

type fakeNotifier struct {
	mu         sync.Mutex
	delivered  int
	expired    int
	suspicious int
}

func (n *fakeNotifier) PendingDelivered(ctx context.Context, p *domain.PendingMessage, msg *domain.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delivered++
}

func (n *fakeNotifier) PendingExpired(ctx context.Context, p *domain.PendingMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.expired++
}

func (n *fakeNotifier) SuspiciousMessage(ctx context.Context, msg *domain.Message, issues []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.suspicious++
}
