package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rohitbihal/smart-classroom-api/internal/models"
)

// TimetableRepository persists generated timetable entries. A generation run
// replaces the institution's whole timetable atomically.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// ReplaceAll swaps the stored timetable and its unscheduled-session report for
// the given institution inside one transaction. A failed insert rolls back to
// the previous timetable.
func (r *TimetableRepository) ReplaceAll(ctx context.Context, institutionID string, entries []models.TimetableEntry, unscheduled []models.UnscheduledSession) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin timetable replace: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM timetable_entries WHERE institution_id = $1", institutionID); err != nil {
		return fmt.Errorf("clear timetable: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM unscheduled_sessions WHERE institution_id = $1", institutionID); err != nil {
		return fmt.Errorf("clear unscheduled sessions: %w", err)
	}

	const entryQuery = `INSERT INTO timetable_entries (id, institution_id, day, time, class_name, subject, faculty, room, type, class_type, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	now := time.Now().UTC()
	for i := range entries {
		entry := entries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
		if _, err = tx.ExecContext(ctx, entryQuery,
			entry.ID, institutionID, entry.Day, entry.Time, entry.ClassName,
			entry.Subject, entry.Faculty, entry.Room, entry.Type, entry.ClassType, entry.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert timetable entry: %w", err)
		}
	}

	const unscheduledQuery = `INSERT INTO unscheduled_sessions (id, institution_id, class_name, subject, reason, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	for _, session := range unscheduled {
		if _, err = tx.ExecContext(ctx, unscheduledQuery,
			uuid.NewString(), institutionID, session.ClassName, session.Subject, session.Reason, now,
		); err != nil {
			return fmt.Errorf("insert unscheduled session: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit timetable replace: %w", err)
	}
	return nil
}

// ListUnscheduled returns the unscheduled-session report of the last
// generation run.
func (r *TimetableRepository) ListUnscheduled(ctx context.Context, institutionID string) ([]models.UnscheduledSession, error) {
	const query = `SELECT class_name, subject, reason FROM unscheduled_sessions WHERE institution_id = $1 ORDER BY class_name ASC, subject ASC`
	var sessions []models.UnscheduledSession
	if err := r.db.SelectContext(ctx, &sessions, query, institutionID); err != nil {
		return nil, fmt.Errorf("list unscheduled sessions: %w", err)
	}
	return sessions, nil
}

// ListAll returns every stored entry for the institution ordered by day and
// start time.
func (r *TimetableRepository) ListAll(ctx context.Context, institutionID string) ([]models.TimetableEntry, error) {
	const query = `SELECT id, day, time, class_name, subject, faculty, room, type, class_type, created_at
FROM timetable_entries WHERE institution_id = $1 ORDER BY day ASC, time ASC, class_name ASC`
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, institutionID); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}

// ListByDay returns stored entries for one weekday.
func (r *TimetableRepository) ListByDay(ctx context.Context, institutionID, day string) ([]models.TimetableEntry, error) {
	const query = `SELECT id, day, time, class_name, subject, faculty, room, type, class_type, created_at
FROM timetable_entries WHERE institution_id = $1 AND day = $2 ORDER BY time ASC, class_name ASC`
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, institutionID, day); err != nil {
		return nil, fmt.Errorf("list timetable entries by day: %w", err)
	}
	return entries, nil
}
