package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/prime-portal/chat-service/internal/domain"
	"github.com/prime-portal/chat-service/internal/postgres"
	"github.com/prime-portal/chat-service/internal/service"
	httpmw "github.com/prime-portal/chat-service/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	chatSvc *service.ChatService
	sweeper *service.Sweeper
	members service.MemberStore
	users   service.UserStore
}

func NewHandler(chat *service.ChatService, sweeper *service.Sweeper, members service.MemberStore, users service.UserStore) *Handler {
	return &Handler{
		chatSvc: chat,
		sweeper: sweeper,
		members: members,
		users:   users,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// caller грузит пользователя по X-User-ID; роли проверяются по данным стораджа,
// а не по заголовкам.
func (h *Handler) caller(r *http.Request) (*domain.User, error) {
	uid := httpmw.UserIDFromCtx(r.Context())
	if uid == 0 {
		return nil, domain.ErrForbidden
	}
	return h.users.Get(r.Context(), uid)
}

// requireMember — участник комнаты или админ.
func (h *Handler) requireMember(r *http.Request, roomID string, u *domain.User) error {
	if u.Role.CanModerate() {
		return nil
	}
	ok, err := h.members.Exists(r.Context(), roomID, u.ID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotInRoom
	}
	return nil
}

// GET /rooms/{id}/messages?after=&limit=
func (h *Handler) GetChatHistory(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	u, err := h.caller(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unknown user"})
		return
	}
	if err := h.requireMember(r, roomID, u); err != nil {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "access denied"})
		return
	}

	after := r.URL.Query().Get("after")
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	items, next, err := h.chatSvc.History(r.Context(), roomID, after, limit)
	if err != nil {
		if errors.Is(err, postgres.ErrInvalidCursor) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_cursor"})
			return
		}
		slog.Error("handler.GetChatHistory:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	resp := ChatHistoryResponse{Items: make([]ChatMessageItem, 0, len(items)), NextCursor: next}
	for _, m := range items {
		resp.Items = append(resp.Items, ChatMessageItem{
			ID:             m.ID,
			RoomID:         m.RoomID,
			SenderID:       m.SenderID,
			Content:        m.DisplayContent(),
			ReplyTo:        m.ReplyTo,
			SentimentScore: m.SentimentScore,
			IsFlagged:      m.IsFlagged,
			IsDeleted:      m.IsDeleted,
			CreatedAt:      m.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /rooms/{id}/participants
func (h *Handler) GetParticipants(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	u, err := h.caller(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unknown user"})
		return
	}
	if err := h.requireMember(r, roomID, u); err != nil {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "access denied"})
		return
	}

	rows, err := h.members.ListDetailed(r.Context(), roomID)
	if err != nil {
		slog.Error("handler.GetParticipants:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	resp := ParticipantsResponse{Items: make([]ParticipantItem, 0, len(rows))}
	for _, it := range rows {
		resp.Items = append(resp.Items, ParticipantItem{
			UserID:      it.UserID,
			DisplayName: it.DisplayName,
			Role:        string(it.Role),
			IsOnline:    it.IsOnline,
			LastSeenAt:  it.LastSeenAt,
			JoinedAt:    it.JoinedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /rooms/{id}/pending — инспекция очереди комнаты.
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	u, err := h.caller(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unknown user"})
		return
	}
	if err := h.requireMember(r, roomID, u); err != nil {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "access denied"})
		return
	}

	rows, err := h.chatSvc.PendingForRoom(r.Context(), roomID)
	if err != nil {
		slog.Error("handler.ListPending:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	resp := PendingListResponse{Items: make([]PendingItem, 0, len(rows))}
	for _, p := range rows {
		resp.Items = append(resp.Items, pendingItem(&p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /pending/{id}/deliver — ручной override: pending в обход расписания,
// failed как повторная попытка.
func (h *Handler) DeliverPending(w http.ResponseWriter, r *http.Request) {
	u, err := h.caller(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unknown user"})
		return
	}
	if !u.Role.CanOverrideSchedule() {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "access denied"})
		return
	}

	id := chi.URLParam(r, "id")
	msg, err := h.sweeper.DeliverNow(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "delivered", "message_id": msg.ID})
	case errors.Is(err, domain.ErrPendingNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "pending message not found"})
	case errors.Is(err, domain.ErrNotPending):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "pending message already resolved"})
	default:
		slog.Error("handler.DeliverPending:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}

// POST /sweep?dry_run=1&force_all=1 — запуск sweeper-а по требованию.
func (h *Handler) RunSweep(w http.ResponseWriter, r *http.Request) {
	u, err := h.caller(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unknown user"})
		return
	}
	if !u.Role.CanModerate() {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "access denied"})
		return
	}

	opts := service.SweepOptions{
		DryRun:   boolParam(r, "dry_run"),
		ForceAll: boolParam(r, "force_all"),
	}
	sum, err := h.sweeper.Run(r.Context(), opts)
	if err != nil {
		slog.Error("handler.RunSweep:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, SweepResponse{
		Delivered:    sum.Delivered,
		Expired:      sum.Expired,
		Failed:       sum.Failed,
		StillPending: sum.StillPending,
		DryRun:       opts.DryRun,
		ForceAll:     opts.ForceAll,
	})
}

// PUT /availability — владелец меняет собственное расписание.
func (h *Handler) PutSchedule(w http.ResponseWriter, r *http.Request) {
	u, err := h.caller(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unknown user"})
		return
	}

	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	sched := &domain.AvailabilitySchedule{Enabled: req.Enabled, Days: req.Days}
	if req.StartTime != "" {
		if sched.StartTime, err = parseClock(req.StartTime); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid start_time"})
			return
		}
	}
	if req.EndTime != "" {
		if sched.EndTime, err = parseClock(req.EndTime); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid end_time"})
			return
		}
	}
	if req.Enabled {
		if sched.StartTime == nil || sched.EndTime == nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "start_time and end_time are required when enabled"})
			return
		}
		if sched.StartTime.Minutes() >= sched.EndTime.Minutes() {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "start_time must be before end_time"})
			return
		}
	}

	if err := h.chatSvc.UpdateSchedule(r.Context(), u, sched); err != nil {
		slog.Error("handler.PutSchedule:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// --- helpers ---

func pendingItem(p *domain.PendingMessage) PendingItem {
	return PendingItem{
		ID:                    p.ID,
		RoomID:                p.RoomID,
		SenderID:              p.SenderID,
		TargetID:              p.TargetID,
		Status:                string(p.Status),
		ScheduledDeliveryTime: p.ScheduledDeliveryTime,
		ExpiresAt:             p.ExpiresAt,
		Attempts:              p.Attempts,
		LastAttemptAt:         p.LastAttemptAt,
		ErrorMessage:          p.ErrorMessage,
		DeliveredMessageID:    p.DeliveredMessageID,
		CreatedAt:             p.CreatedAt,
	}
}

func boolParam(r *http.Request, name string) bool {
	switch strings.ToLower(r.URL.Query().Get(name)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func parseClock(s string) (*domain.ClockTime, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("bad time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return nil, fmt.Errorf("bad hour %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return nil, fmt.Errorf("bad minute %q", s)
	}
	return &domain.ClockTime{Hour: h, Minute: m}, nil
}
