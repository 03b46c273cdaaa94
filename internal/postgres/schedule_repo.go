package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/prime-portal/chat-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ScheduleRepository struct {
	db *pgxpool.Pool
}

func NewScheduleRepository(db *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ForOwner возвращает расписание владельца; nil без ошибки, если расписания нет.
func (r *ScheduleRepository) ForOwner(ctx context.Context, ownerID int64) (*domain.AvailabilitySchedule, error) {
	row := r.db.QueryRow(ctx, `
		SELECT owner_id, enabled, start_time, end_time, days
		FROM availability_schedules
		WHERE owner_id = $1
	`, ownerID)

	var (
		s     domain.AvailabilitySchedule
		start pgtype.Time
		end   pgtype.Time
		days  *string
	)
	if err := row.Scan(&s.OwnerID, &s.Enabled, &start, &end, &days); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.StartTime = clockFromPg(start)
	s.EndTime = clockFromPg(end)
	s.Days = splitDays(days)
	return &s, nil
}

// Upsert — расписание меняет только его владелец (проверка на уровне транспорта).
func (r *ScheduleRepository) Upsert(ctx context.Context, s *domain.AvailabilitySchedule) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO availability_schedules (owner_id, enabled, start_time, end_time, days)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id) DO UPDATE
		SET enabled = EXCLUDED.enabled,
		    start_time = EXCLUDED.start_time,
		    end_time = EXCLUDED.end_time,
		    days = EXCLUDED.days
	`, s.OwnerID, s.Enabled, clockToPg(s.StartTime), clockToPg(s.EndTime), joinDays(s.Days))
	return err
}

// --- helpers: TIME <-> ClockTime, days как comma-separated text ---

func clockFromPg(t pgtype.Time) *domain.ClockTime {
	if !t.Valid {
		return nil
	}
	mins := int(t.Microseconds / 60_000_000)
	return &domain.ClockTime{Hour: mins / 60, Minute: mins % 60}
}

func clockToPg(c *domain.ClockTime) pgtype.Time {
	if c == nil {
		return pgtype.Time{}
	}
	return pgtype.Time{Microseconds: int64(c.Minutes()) * 60_000_000, Valid: true}
}

func splitDays(s *string) []string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	parts := strings.Split(*s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinDays(days []string) *string {
	if len(days) == 0 {
		return nil
	}
	s := strings.Join(days, ",")
	return &s
}
