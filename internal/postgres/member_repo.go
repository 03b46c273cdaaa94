package postgres

import (
	"context"
	"time"

	"github.com/prime-portal/chat-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MemberRepository struct {
	db *pgxpool.Pool
}

func NewMemberRepository(db *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) Exists(ctx context.Context, roomID string, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM room_members WHERE room_id=$1 AND user_id=$2 AND is_active)`,
		roomID, userID).Scan(&exists)
	return exists, err
}

// SetOnline переключает флаг присутствия; при online обновляется last_seen_at.
func (r *MemberRepository) SetOnline(ctx context.Context, roomID string, userID int64, online bool) error {
	var err error
	if online {
		_, err = r.db.Exec(ctx, `
			UPDATE room_members SET is_online = TRUE, last_seen_at = now()
			WHERE room_id=$1 AND user_id=$2
		`, roomID, userID)
	} else {
		_, err = r.db.Exec(ctx, `
			UPDATE room_members SET is_online = FALSE
			WHERE room_id=$1 AND user_id=$2
		`, roomID, userID)
	}
	return err
}

func (r *MemberRepository) MarkRead(ctx context.Context, roomID string, userID int64) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE room_members SET last_read_at = now() WHERE room_id=$1 AND user_id=$2`,
		roomID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotInRoom
	}
	return nil
}

func (r *MemberRepository) ListByRoom(ctx context.Context, roomID string) ([]domain.Member, error) {
	rows, err := r.db.Query(ctx, `
		SELECT room_id, user_id, is_online, last_read_at, last_seen_at, joined_at
		FROM room_members
		WHERE room_id = $1 AND is_active
		ORDER BY joined_at ASC
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.RoomID, &m.UserID, &m.IsOnline, &m.LastReadAt, &m.LastSeenAt, &m.JoinedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

type MemberDetailedRow struct {
	UserID      int64
	DisplayName string
	Role        domain.Role
	IsOnline    bool
	LastSeenAt  *time.Time
	JoinedAt    time.Time
}

func (r *MemberRepository) ListDetailed(ctx context.Context, roomID string) ([]MemberDetailedRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT m.user_id, u.display_name, u.role, m.is_online, m.last_seen_at, m.joined_at
		FROM room_members AS m
		JOIN users AS u ON u.id = m.user_id
		WHERE m.room_id = $1 AND m.is_active
		ORDER BY u.display_name, m.joined_at
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]MemberDetailedRow, 0, 16)
	for rows.Next() {
		var row MemberDetailedRow
		if err := rows.Scan(&row.UserID, &row.DisplayName, &row.Role, &row.IsOnline, &row.LastSeenAt, &row.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
