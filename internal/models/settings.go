package models

import "time"

// SettingsRowID is the fixed primary key of the single timetable_settings
// row. The working-day structure is institution-wide, so the table behaves as
// an upserted singleton.
const SettingsRowID = "default"

// TimetableSettings defines the working-day structure consumed by the
// scheduling engine: day bounds, lunch break, period count, the allowed class
// duration band, working days, and the active semester parity group.
type TimetableSettings struct {
	ID                 string         `db:"id" json:"id"`
	StartTime          MinuteOfDay    `db:"start_time" json:"start_time"`
	EndTime            MinuteOfDay    `db:"end_time" json:"end_time"`
	LunchDuration      int            `db:"lunch_duration" json:"lunch_duration"`
	MinClassDuration   int            `db:"min_class_duration" json:"min_class_duration"`
	MaxClassDuration   int            `db:"max_class_duration" json:"max_class_duration"`
	Periods            int            `db:"periods" json:"periods"`
	WorkingDaysRaw     string         `db:"working_days" json:"working_days"`
	ActiveSemesterType SemesterParity `db:"active_semester_type" json:"active_semester_type"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// WorkingDays parses the stored working-days column.
func (s TimetableSettings) WorkingDays() (WorkingDays, error) {
	return ParseWorkingDays(s.WorkingDaysRaw)
}
