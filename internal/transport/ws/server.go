package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prime-portal/chat-service/internal/domain"
	"github.com/prime-portal/chat-service/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type ChatSvc interface {
	SendMessage(ctx context.Context, roomID string, sender *domain.User, content string, replyTo *string) (*service.SendResult, error)
	AddReaction(ctx context.Context, roomID string, user *domain.User, messageID, emoji string) error
	DeleteMessage(ctx context.Context, roomID string, user *domain.User, messageID string) error
	MarkRoomRead(ctx context.Context, roomID string, userID int64) error
}

type MemberSvc interface {
	Exists(ctx context.Context, roomID string, userID int64) (bool, error)
	SetOnline(ctx context.Context, roomID string, userID int64, online bool) error
	ListByRoom(ctx context.Context, roomID string) ([]domain.Member, error)
}

type UserSvc interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
}

// Server — шлюз соединений: одна горутина чтения на соединение, состояние
// Connecting -> Open -> Closed. Не-участник закрывается до Open.
type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub

	chatSvc   ChatSvc
	memberSvc MemberSvc
	userSvc   UserSvc
	typing    *service.TypingTracker

	pingEvery time.Duration
	opTimeout time.Duration
}

func NewServer(hub *Hub, chat ChatSvc, member MemberSvc, users UserSvc, typing *service.TypingTracker) *Server {
	return &Server{
		hub:       hub,
		chatSvc:   chat,
		memberSvc: member,
		userSvc:   users,
		typing:    typing,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
		opTimeout: 10 * time.Second,
	}
}

// WS endpoint: GET /chat/{room_id}?access_token=...&user_id=...
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if strings.TrimSpace(q.Get("access_token")) == "" {
		http.Error(w, "missing access_token", http.StatusUnauthorized)
		return
	}
	uid, err := strconv.ParseInt(strings.TrimSpace(q.Get("user_id")), 10, 64)
	if err != nil || uid <= 0 {
		http.Error(w, "invalid user_id", http.StatusUnauthorized)
		return
	}
	roomID := chi.URLParam(r, "room_id")
	if roomID == "" {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}

	// членство проверяется до апгрейда: не-участник не входит в Open
	user, err := s.userSvc.Get(r.Context(), uid)
	if err != nil {
		http.Error(w, "unknown user", http.StatusForbidden)
		return
	}
	ok, err := s.memberSvc.Exists(r.Context(), roomID, uid)
	if err != nil {
		slog.Error("ws membership check failed", "room", roomID, "user", uid, "err", err)
		http.Error(w, "membership check failed", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "not a room member", http.StatusForbidden)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn, roomID, user)
	s.hub.Add(c)

	// cleanup обязан выполниться на любом пути выхода, включая ошибки
	defer s.teardown(c)

	if err := s.memberSvc.SetOnline(r.Context(), roomID, uid, true); err != nil {
		slog.Debug("ws set online failed", "room", roomID, "user", uid, "err", err)
	}

	// user_joined не уходит самому подключившемуся
	s.hub.BroadcastExcept(roomID, uid, service.PresenceEvent{
		Type:      service.EventUserJoined,
		UserID:    uid,
		Username:  user.DisplayName,
		Timestamp: time.Now(),
	})

	s.sendRoomState(r.Context(), c)

	go s.writeLoop(r.Context(), c)
	s.readLoop(r.Context(), c)
}

// sendRoomState отдаёт новому клиенту снимок presence и typing-индикаторов.
func (s *Server) sendRoomState(ctx context.Context, c *wsConn) {
	members, err := s.memberSvc.ListByRoom(ctx, c.roomID)
	if err != nil {
		slog.Debug("ws room state failed", "room", c.roomID, "err", err)
		return
	}

	online := make([]int64, 0, len(members))
	for _, m := range members {
		if m.IsOnline {
			online = append(online, m.UserID)
		}
	}

	_ = c.Send(service.RoomStateEvent{
		Type:          service.EventRoomState,
		OnlineUserIDs: online,
		TypingUserIDs: s.typing.TypingUsers(c.roomID),
	})
}

func (s *Server) teardown(c *wsConn) {
	s.hub.Remove(c)
	s.typing.Clear(c.roomID, c.user.ID)

	// контекст запроса к этому моменту может быть уже отменён
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.memberSvc.SetOnline(ctx, c.roomID, c.user.ID, false); err != nil {
		slog.Debug("ws set offline failed", "room", c.roomID, "user", c.user.ID, "err", err)
	}

	s.hub.BroadcastExcept(c.roomID, c.user.ID, service.PresenceEvent{
		Type:      service.EventUserLeft,
		UserID:    c.user.ID,
		Username:  c.user.DisplayName,
		Timestamp: time.Now(),
	})

	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "room", c.roomID, "user", c.user.ID, "err", err)
	}
}

func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(1 << 20)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		frame, err := DecodeFrame(data)
		if err != nil {
			_ = c.Send(service.NewErrorEvent("malformed frame"))
			continue
		}
		s.dispatch(ctx, c, frame)
	}
}

// dispatch обрабатывает один кадр; любая ошибка превращается в error-ответ,
// соединение остаётся открытым.
func (s *Server) dispatch(ctx context.Context, c *wsConn, f *ClientFrame) {
	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	switch f.Type {
	case FrameMessage:
		s.handleMessage(opCtx, c, f)
	case FrameTyping:
		s.handleTyping(c, f)
	case FrameReaction:
		if err := s.chatSvc.AddReaction(opCtx, c.roomID, c.user, f.MessageID, f.Emoji); err != nil {
			_ = c.Send(service.NewErrorEvent("failed to add reaction"))
		}
	case FrameDelete:
		s.handleDelete(opCtx, c, f)
	case FrameMarkRoomRead:
		if err := s.chatSvc.MarkRoomRead(opCtx, c.roomID, c.user.ID); err != nil {
			_ = c.Send(service.NewErrorEvent("failed to mark room read"))
		}
	default:
		_ = c.Send(service.NewErrorEvent("unknown frame type: " + f.Type))
	}
}

func (s *Server) handleMessage(ctx context.Context, c *wsConn, f *ClientFrame) {
	res, err := s.chatSvc.SendMessage(ctx, c.roomID, c.user, f.Message, f.ReplyTo)
	if err != nil {
		var modErr *domain.ModerationError
		switch {
		case errors.Is(err, domain.ErrEmptyMessage):
			_ = c.Send(service.NewErrorEvent("message is empty"))
		case errors.As(err, &modErr):
			_ = c.Send(service.NewErrorEvent(
				"Your message contains inappropriate content and cannot be sent.",
				modErr.Issues...))
		default:
			slog.Error("ws send message failed", "room", c.roomID, "user", c.user.ID, "err", err)
			_ = c.Send(service.NewErrorEvent("failed to send message"))
		}
		return
	}

	// немедленная доставка уже разослана сервисом; отложенная подтверждается
	// только отправителю, включая остальные его вкладки
	if res.Pending != nil {
		s.hub.SendToUser(c.roomID, c.user.ID, service.MessagePendingEvent{
			Type:                  service.EventMessagePending,
			PendingMessageID:      res.Pending.ID,
			ScheduledDeliveryTime: res.Pending.ScheduledDeliveryTime,
			SupervisorName:        res.SupervisorName,
			DeliveryMessage: res.SupervisorName + " is currently unavailable. " +
				"Your message will be delivered when they become available.",
		})
	}
}

func (s *Server) handleTyping(c *wsConn, f *ClientFrame) {
	s.typing.SetTyping(c.roomID, c.user.ID, f.IsTyping)
	s.hub.BroadcastExcept(c.roomID, c.user.ID, service.TypingEvent{
		Type:     service.EventTyping,
		UserID:   c.user.ID,
		Username: c.user.DisplayName,
		IsTyping: f.IsTyping,
	})
}

func (s *Server) handleDelete(ctx context.Context, c *wsConn, f *ClientFrame) {
	err := s.chatSvc.DeleteMessage(ctx, c.roomID, c.user, f.MessageID)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrForbidden):
		_ = c.Send(service.NewErrorEvent("only the sender or an admin can delete a message"))
	case errors.Is(err, domain.ErrMessageNotFound):
		_ = c.Send(service.NewErrorEvent("message not found"))
	default:
		_ = c.Send(service.NewErrorEvent("failed to delete message"))
	}
}

// writeLoop — единственный писатель соединения: выгребает очередь и шлёт ping-и.
func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case ev := <-c.queue:
			c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.conn.WriteJSON(ev); err != nil {
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

// --- соединение ---

const sendQueueSize = 32

type wsConn struct {
	conn   *websocket.Conn
	roomID string
	user   *domain.User
	queue  chan any
	closed chan struct{}
}

func newWsConn(c *websocket.Conn, roomID string, user *domain.User) *wsConn {
	return &wsConn{
		conn:   c,
		roomID: roomID,
		user:   user,
		queue:  make(chan any, sendQueueSize),
		closed: make(chan struct{}),
	}
}

// Send ставит событие в исходящую очередь, запись выполняет writeLoop.
// Полная очередь означает зависшего клиента: такое соединение закрывается,
// рассылка по комнате его не ждёт.
func (c *wsConn) Send(event any) error {
	select {
	case <-c.closed:
		return errors.New("connection closed")
	default:
	}

	select {
	case c.queue <- event:
		return nil
	default:
		_ = c.Close()
		return errors.New("send queue overflow")
	}
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}

func (c *wsConn) UserID() int64  { return c.user.ID }
func (c *wsConn) RoomID() string { return c.roomID }
