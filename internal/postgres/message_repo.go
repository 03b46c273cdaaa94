package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/prime-portal/chat-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Insert(ctx context.Context, m *domain.Message) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO messages (room_id, sender_id, content, reply_to, sentiment_score, is_flagged)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, m.RoomID, m.SenderID, m.Content, m.ReplyTo, m.SentimentScore, m.IsFlagged)
	return row.Scan(&m.ID, &m.CreatedAt)
}

func (r *MessageRepository) Get(ctx context.Context, roomID, id string) (*domain.Message, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, room_id, sender_id, content, reply_to, sentiment_score,
		       is_flagged, is_deleted, deleted_at, created_at
		FROM messages
		WHERE id = $1 AND room_id = $2
	`, id, roomID)

	var m domain.Message
	err := row.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.Content, &m.ReplyTo,
		&m.SentimentScore, &m.IsFlagged, &m.IsDeleted, &m.DeletedAt, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ExistsInRoom — проверка reply_to: ссылаться можно только на сообщение той же комнаты.
func (r *MessageRepository) ExistsInRoom(ctx context.Context, roomID, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM messages WHERE id=$1 AND room_id=$2)`,
		id, roomID).Scan(&exists)
	return exists, err
}

// SoftDelete заменяет контент и выставляет флаг; строка остаётся для аудита.
func (r *MessageRepository) SoftDelete(ctx context.Context, roomID, id string) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE messages
		SET is_deleted = TRUE, deleted_at = now(), content = $3
		WHERE id = $1 AND room_id = $2 AND NOT is_deleted
	`, id, roomID, domain.DeletedContent)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

// AddReaction идемпотентна по (message, user, emoji).
func (r *MessageRepository) AddReaction(ctx context.Context, rc *domain.Reaction) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO message_reactions (message_id, user_id, emoji)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, rc.MessageID, rc.UserID, rc.Emoji)
	return err
}

// History — курсорная пагинация (created_at, id DESC).
func (r *MessageRepository) History(ctx context.Context, roomID, after string, limit int) ([]domain.Message, string, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	cur, err := DecodeCursor(after)
	if err != nil {
		return nil, "", fmt.Errorf("decode cursor: %w", err)
	}

	const q = `
		SELECT id, room_id, sender_id, content, reply_to, sentiment_score,
		       is_flagged, is_deleted, deleted_at, created_at
		FROM messages
		WHERE room_id = $1
		  AND (
		    $2::timestamptz IS NULL
		    OR created_at < $2
		    OR (created_at = $2 AND id < $3)
		  )
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`

	var createdAt any
	var id any
	if cur != nil {
		createdAt = cur.CreatedAt
		id = cur.ID
	}

	rows, err := r.db.Query(ctx, q, roomID, createdAt, id, limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.Content, &m.ReplyTo,
			&m.SentimentScore, &m.IsFlagged, &m.IsDeleted, &m.DeletedAt, &m.CreatedAt); err != nil {
			return nil, "", err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	var next string
	if len(out) == limit {
		last := out[len(out)-1]
		if c, e := (Cursor{CreatedAt: last.CreatedAt, ID: last.ID}).Encode(); e == nil {
			next = c
		}
	}
	return out, next, nil
}
