package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/xXemran05khanXx/uniflow/internal/models"
)

// TimetableEntryRepository manages placed sessions under a timetable version.
type TimetableEntryRepository struct {
	db *sqlx.DB
}

// NewTimetableEntryRepository builds repository.
func NewTimetableEntryRepository(db *sqlx.DB) *TimetableEntryRepository {
	return &TimetableEntryRepository{db: db}
}

func (r *TimetableEntryRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// UpsertBatch inserts or updates entries for a timetable.
func (r *TimetableEntryRepository) UpsertBatch(ctx context.Context, exec sqlx.ExtContext, entries []models.TimetableEntry) error {
	if len(entries) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO timetable_entries (id, timetable_id, course_code, course_name, session_type, teacher_id, teacher_name, room_number, day, start_time, end_time, duration, enrollment, created_at)
VALUES (:id, :timetable_id, :course_code, :course_name, :session_type, :teacher_id, :teacher_name, :room_number, :day, :start_time, :end_time, :duration, :enrollment, :created_at)
ON CONFLICT (timetable_id, course_code, day, start_time) DO UPDATE
SET teacher_id = EXCLUDED.teacher_id,
    teacher_name = EXCLUDED.teacher_name,
    room_number = EXCLUDED.room_number,
    end_time = EXCLUDED.end_time,
    duration = EXCLUDED.duration,
    enrollment = EXCLUDED.enrollment`

	for i := range entries {
		entry := &entries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, entry); err != nil {
			return fmt.Errorf("upsert timetable entry: %w", err)
		}
	}
	return nil
}

// ListByTimetable returns entries ordered by day/start for a timetable.
func (r *TimetableEntryRepository) ListByTimetable(ctx context.Context, timetableID string) ([]models.TimetableEntry, error) {
	const query = `SELECT id, timetable_id, course_code, course_name, session_type, teacher_id, teacher_name, room_number, day, start_time, end_time, duration, enrollment, created_at
FROM timetable_entries WHERE timetable_id = $1 ORDER BY day ASC, start_time ASC`
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, timetableID); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}
