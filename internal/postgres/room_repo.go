package postgres

import (
	"context"
	"errors"

	"github.com/prime-portal/chat-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoomRepository struct {
	db *pgxpool.Pool
}

func NewRoomRepository(db *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Get(ctx context.Context, id string) (*domain.Room, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, kind, supervisor_id, is_active, is_frozen,
		       schedule_start_time, schedule_end_time, schedule_days,
		       last_message_at, created_at
		FROM rooms
		WHERE id = $1
	`, id)

	var (
		rm    domain.Room
		start pgtype.Time
		end   pgtype.Time
		days  *string
	)
	err := row.Scan(&rm.ID, &rm.Name, &rm.Kind, &rm.SupervisorID, &rm.IsActive, &rm.IsFrozen,
		&start, &end, &days, &rm.LastMessageAt, &rm.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}

	// override комнаты живёт в её собственных колонках
	if start.Valid && end.Valid {
		rm.ScheduleOverride = &domain.AvailabilitySchedule{
			Enabled:   rm.IsFrozen,
			StartTime: clockFromPg(start),
			EndTime:   clockFromPg(end),
			Days:      splitDays(days),
		}
	}
	return &rm, nil
}

// TouchLastMessage — last-write-wins, значение только для отображения.
func (r *RoomRepository) TouchLastMessage(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `UPDATE rooms SET last_message_at = now() WHERE id = $1`, id)
	return err
}
