package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dtu-portal/timetable-api/internal/models"
)

// SettingsRepository persists the singleton timetable settings row.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs the repository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get fetches the settings row.
func (r *SettingsRepository) Get(ctx context.Context) (*models.TimetableSettings, error) {
	const query = `SELECT id, start_time, end_time, lunch_duration, min_class_duration, max_class_duration,
       periods, working_days, active_semester_type, updated_at
FROM timetable_settings WHERE id = $1`
	var settings models.TimetableSettings
	if err := r.db.GetContext(ctx, &settings, query, models.SettingsRowID); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Upsert inserts or replaces the settings row.
func (r *SettingsRepository) Upsert(ctx context.Context, settings *models.TimetableSettings) error {
	if settings.ID == "" {
		settings.ID = models.SettingsRowID
	}
	settings.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO timetable_settings (id, start_time, end_time, lunch_duration, min_class_duration,
       max_class_duration, periods, working_days, active_semester_type, updated_at)
VALUES (:id, :start_time, :end_time, :lunch_duration, :min_class_duration,
        :max_class_duration, :periods, :working_days, :active_semester_type, :updated_at)
ON CONFLICT (id)
DO UPDATE SET start_time = EXCLUDED.start_time, end_time = EXCLUDED.end_time,
              lunch_duration = EXCLUDED.lunch_duration, min_class_duration = EXCLUDED.min_class_duration,
              max_class_duration = EXCLUDED.max_class_duration, periods = EXCLUDED.periods,
              working_days = EXCLUDED.working_days, active_semester_type = EXCLUDED.active_semester_type,
              updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("upsert timetable settings: %w", err)
	}
	return nil
}
