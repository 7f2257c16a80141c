package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dtu-portal/timetable-api/internal/models"
)

// dayOrderCase sorts entries by week position; the day column stores names.
const dayOrderCase = `CASE day
  WHEN 'Mon' THEN 1 WHEN 'Tue' THEN 2 WHEN 'Wed' THEN 3 WHEN 'Thu' THEN 4
  WHEN 'Fri' THEN 5 WHEN 'Sat' THEN 6 WHEN 'Sun' THEN 7 ELSE 8 END`

// TimetableEntryRepository persists generated timetable entries.
type TimetableEntryRepository struct {
	db *sqlx.DB
}

// NewTimetableEntryRepository constructs the repository.
func NewTimetableEntryRepository(db *sqlx.DB) *TimetableEntryRepository {
	return &TimetableEntryRepository{db: db}
}

// BulkCreateWithTx inserts all entries inside the caller's transaction.
func (r *TimetableEntryRepository) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, entries []models.TimetableEntry) error {
	if len(entries) == 0 {
		return nil
	}
	now := time.Now().UTC()
	const query = `INSERT INTO timetable_entries (id, assigned_class_id, teacher_id, teacher_name, subject_id,
       subject_name, subject_code, semester, branch, day, period_number, start_time, end_time, created_at)
VALUES (:id, :assigned_class_id, :teacher_id, :teacher_name, :subject_id,
        :subject_name, :subject_code, :semester, :branch, :day, :period_number, :start_time, :end_time, :created_at)`
	for i := range entries {
		entry := &entries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, query, entry); err != nil {
			return fmt.Errorf("insert timetable entry: %w", err)
		}
	}
	return nil
}

// DeleteAllWithTx clears the table inside the caller's transaction.
func (r *TimetableEntryRepository) DeleteAllWithTx(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM timetable_entries`); err != nil {
		return fmt.Errorf("delete timetable entries: %w", err)
	}
	return nil
}

// DeleteAll clears the table.
func (r *TimetableEntryRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM timetable_entries`); err != nil {
		return fmt.Errorf("delete timetable entries: %w", err)
	}
	return nil
}

// List returns entries matching the filter ordered by week position then
// period.
func (r *TimetableEntryRepository) List(ctx context.Context, filter models.EntryFilter) ([]models.TimetableEntry, error) {
	var (
		conditions []string
		args       []interface{}
	)
	add := func(condition string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if filter.Branch != nil {
		add("branch = $%d", filter.Branch.String())
	}
	if filter.Semester != nil {
		add("semester = $%d", *filter.Semester)
	}
	if filter.Parity != nil {
		if *filter.Parity == models.ParityEven {
			conditions = append(conditions, "semester % 2 = 0")
		} else {
			conditions = append(conditions, "semester % 2 = 1")
		}
	}
	if filter.TeacherID != "" {
		add("teacher_id = $%d", filter.TeacherID)
	}

	query := `SELECT id, assigned_class_id, teacher_id, teacher_name, subject_id, subject_name, subject_code,
       semester, branch, day, period_number, start_time, end_time, created_at
FROM timetable_entries`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY " + dayOrderCase + ", period_number ASC, branch ASC, semester ASC"

	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}
