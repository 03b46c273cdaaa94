package ws

import (
	"sync"
)

type Conn interface {
	Send(event any) error
	Close() error
	UserID() int64
	RoomID() string
}

// Hub — fan-out группы по комнатам; разделяется живой доставкой и sweeper-ом.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[Conn]struct{} // roomID -> set of connections
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[Conn]struct{})}
}

func (h *Hub) Add(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rs, ok := h.rooms[c.RoomID()]
	if !ok {
		rs = make(map[Conn]struct{})
		h.rooms[c.RoomID()] = rs
	}
	rs[c] = struct{}{}
}

func (h *Hub) Remove(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if rs, ok := h.rooms[c.RoomID()]; ok {
		delete(rs, c)
		if len(rs) == 0 {
			delete(h.rooms, c.RoomID())
		}
	}
}

func (h *Hub) Broadcast(roomID string, event any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[roomID] {
		_ = c.Send(event) // best-effort
	}
}

// BroadcastExcept — всем в комнате, кроме указанного пользователя (typing, user_joined).
func (h *Hub) BroadcastExcept(roomID string, exceptUserID int64, event any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[roomID] {
		if c.UserID() == exceptUserID {
			continue
		}
		_ = c.Send(event)
	}
}

// SendToUser — все соединения пользователя в комнате (уведомления отправителю).
func (h *Hub) SendToUser(roomID string, userID int64, event any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[roomID] {
		if c.UserID() == userID {
			_ = c.Send(event)
		}
	}
}
