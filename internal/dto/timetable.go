package dto

// UpdateSettingsRequest carries the administrator's working-day structure.
// Clock fields use "HH:MM"; workingDays accepts a comma-separated day list or
// the "MTWTF" shorthand for Monday-Friday.
type UpdateSettingsRequest struct {
	StartTime          string `json:"startTime" validate:"required"`
	EndTime            string `json:"endTime" validate:"required"`
	LunchDuration      int    `json:"lunchDuration" validate:"gte=0"`
	MinClassDuration   int    `json:"minClassDuration" validate:"gt=0"`
	MaxClassDuration   int    `json:"maxClassDuration" validate:"gt=0"`
	Periods            int    `json:"periods" validate:"gte=1"`
	WorkingDays        string `json:"workingDays" validate:"required"`
	ActiveSemesterType string `json:"activeSemesterType" validate:"omitempty,oneof=odd even"`
}

// Generation modes. Replace clears previously generated entries inside the
// same transaction; append leaves them in place.
const (
	GenerateModeReplace = "replace"
	GenerateModeAppend  = "append"
)

// GenerateRequest triggers a scheduling run.
type GenerateRequest struct {
	Mode string `json:"mode" validate:"omitempty,oneof=replace append"`
}

// GenerateResponse summarises a scheduling run. Success is false when any
// assignment could not be placed; successful placements are persisted
// regardless.
type GenerateResponse struct {
	Success        bool     `json:"success"`
	Mode           string   `json:"mode"`
	ScheduledCount int      `json:"scheduledCount"`
	Failures       []string `json:"failures,omitempty"`
}

// GridQuery narrows the rendered timetable. When semester is unset the grid
// is restricted to the configured active parity group.
type GridQuery struct {
	Branch    string `form:"branch"`
	Semester  int    `form:"semester"`
	TeacherID string `form:"teacherId"`
}

// PeriodLabel is a grid column header derived from the period calculator.
type PeriodLabel struct {
	Number    int    `json:"number"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// LunchLabel marks the lunch interval and the period it follows.
type LunchLabel struct {
	AfterPeriod int    `json:"afterPeriod"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
}

// GridCell is one scheduled class in a day/period slot. A slot holds several
// cells when the query spans cohorts that legitimately share it.
type GridCell struct {
	SubjectID   string `json:"subjectId"`
	SubjectName string `json:"subjectName"`
	SubjectCode string `json:"subjectCode"`
	TeacherID   string `json:"teacherId"`
	TeacherName string `json:"teacherName"`
	Branch      string `json:"branch"`
	Semester    int    `json:"semester"`
}

// GridDay is one row of the rendered timetable; Slots is indexed by
// period number - 1.
type GridDay struct {
	Day   string       `json:"day"`
	Slots [][]GridCell `json:"slots"`
}

// GridResponse is the day-by-period timetable rendering.
type GridResponse struct {
	Days         []GridDay     `json:"days"`
	Periods      []PeriodLabel `json:"periods"`
	Lunch        *LunchLabel   `json:"lunch,omitempty"`
	ActiveParity string        `json:"activeParity"`
}
