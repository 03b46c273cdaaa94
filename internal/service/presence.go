package service

import (
	"context"
	"sync"
	"time"
)

// TypingTracker — эфемерное состояние «кто печатает»: живёт только в памяти
// процесса, чистится по TTL и при дисконнекте. Никогда не персистится.
type TypingTracker struct {
	mu     sync.Mutex
	typing map[typingKey]time.Time

	ttl time.Duration
	now func() time.Time
}

type typingKey struct {
	roomID string
	userID int64
}

func NewTypingTracker(ttl time.Duration) *TypingTracker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &TypingTracker{
		typing: make(map[typingKey]time.Time),
		ttl:    ttl,
		now:    time.Now,
	}
}

// SetTyping обновляет или снимает индикатор; каждое нажатие продлевает TTL.
func (t *TypingTracker) SetTyping(roomID string, userID int64, isTyping bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := typingKey{roomID: roomID, userID: userID}
	if isTyping {
		t.typing[k] = t.now()
	} else {
		delete(t.typing, k)
	}
}

// Clear снимает индикатор пользователя; вызывается на каждом пути выхода из соединения.
func (t *TypingTracker) Clear(roomID string, userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.typing, typingKey{roomID: roomID, userID: userID})
}

// TypingUsers — кто печатает в комнате прямо сейчас (протухшие записи не отдаются).
func (t *TypingTracker) TypingUsers(roomID string) []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-t.ttl)
	var out []int64
	for k, at := range t.typing {
		if k.roomID == roomID && at.After(cutoff) {
			out = append(out, k.userID)
		}
	}
	return out
}

// Purge удаляет индикаторы старше TTL; покрывает обрывы соединений без кадра "stop typing".
func (t *TypingTracker) Purge() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-t.ttl)
	n := 0
	for k, at := range t.typing {
		if at.Before(cutoff) {
			delete(t.typing, k)
			n++
		}
	}
	return n
}

// StartJanitor — периодическая чистка до отмены контекста.
func (t *TypingTracker) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Purge()
		}
	}
}
