package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/prime-portal/chat-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PendingRepository struct {
	db *pgxpool.Pool
}

func NewPendingRepository(db *pgxpool.Pool) *PendingRepository {
	return &PendingRepository{db: db}
}

const pendingColumns = `
	id, room_id, sender_id, target_id, content, reply_to,
	sentiment_score, is_flagged, status, scheduled_delivery_time, expires_at,
	attempts, last_attempt_at, error_message, delivered_message_id, delivered_at, created_at`

func (r *PendingRepository) Insert(ctx context.Context, p *domain.PendingMessage) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO pending_messages
			(room_id, sender_id, target_id, content, reply_to,
			 sentiment_score, is_flagged, status, scheduled_delivery_time, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`, p.RoomID, p.SenderID, p.TargetID, p.Content, p.ReplyTo,
		p.SentimentScore, p.IsFlagged, domain.PendingStatusPending,
		p.ScheduledDeliveryTime, p.ExpiresAt)
	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return err
	}
	p.Status = domain.PendingStatusPending
	return nil
}

func (r *PendingRepository) Get(ctx context.Context, id string) (*domain.PendingMessage, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+pendingColumns+` FROM pending_messages WHERE id = $1`, id)
	p, err := scanPending(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPendingNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListByStatus — выборка для sweeper-а и инспекции; сортировка по времени создания.
func (r *PendingRepository) ListByStatus(ctx context.Context, status domain.PendingStatus) ([]domain.PendingMessage, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+pendingColumns+` FROM pending_messages WHERE status = $1 ORDER BY created_at ASC`,
		status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PendingMessage
	for rows.Next() {
		p, err := scanPending(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PendingRepository) ListByRoom(ctx context.Context, roomID string) ([]domain.PendingMessage, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+pendingColumns+` FROM pending_messages WHERE room_id = $1 ORDER BY created_at ASC`,
		roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PendingMessage
	for rows.Next() {
		p, err := scanPending(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// CompleteDelivery — одна транзакция: CAS из from в delivered, затем INSERT
// сообщения и линковка. Проигравший гонку получает ErrNotPending и не пишет ничего.
func (r *PendingRepository) CompleteDelivery(ctx context.Context, id string, from domain.PendingStatus, msg *domain.Message) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
		UPDATE pending_messages
		SET status = $3, delivered_at = now()
		WHERE id = $1 AND status = $2
	`, id, from, domain.PendingStatusDelivered)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotPending
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO messages (room_id, sender_id, content, reply_to, sentiment_score, is_flagged)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, msg.RoomID, msg.SenderID, msg.Content, msg.ReplyTo, msg.SentimentScore, msg.IsFlagged)
	if err := row.Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE pending_messages SET delivered_message_id = $2 WHERE id = $1`,
		id, msg.ID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PendingRepository) MarkExpired(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE pending_messages
		SET status = $2
		WHERE id = $1 AND status = $3
	`, id, domain.PendingStatusExpired, domain.PendingStatusPending)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotPending
	}
	return nil
}

// MarkFailed фиксирует неудачную попытку доставки; строка остаётся доступной для ручного retry.
func (r *PendingRepository) MarkFailed(ctx context.Context, id, errMsg string, at time.Time, from domain.PendingStatus) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE pending_messages
		SET status = $3, error_message = $4, attempts = attempts + 1, last_attempt_at = $5
		WHERE id = $1 AND status = $2
	`, id, from, domain.PendingStatusFailed, errMsg, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotPending
	}
	return nil
}

func scanPending(row pgx.Row) (*domain.PendingMessage, error) {
	var p domain.PendingMessage
	err := row.Scan(&p.ID, &p.RoomID, &p.SenderID, &p.TargetID, &p.Content, &p.ReplyTo,
		&p.SentimentScore, &p.IsFlagged, &p.Status, &p.ScheduledDeliveryTime, &p.ExpiresAt,
		&p.Attempts, &p.LastAttemptAt, &p.ErrorMessage, &p.DeliveredMessageID, &p.DeliveredAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
