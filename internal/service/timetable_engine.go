package service

import (
	"fmt"
	"sort"

	"github.com/dtu-portal/timetable-api/internal/models"
)

// ScheduleFailure records an assignment the engine could not place.
type ScheduleFailure struct {
	AssignmentID string `json:"assignment_id"`
	TeacherName  string `json:"teacher_name"`
	SubjectName  string `json:"subject_name"`
	Reason       string `json:"reason"`
}

// Message renders the failure for the administrator-facing error list.
func (f ScheduleFailure) Message() string {
	return fmt.Sprintf("could not schedule class for %s / %s: %s", f.TeacherName, f.SubjectName, f.Reason)
}

// ScheduleResult is the engine's output: the entries it placed and the
// assignments it could not. A partially failed run still carries every
// successful placement.
type ScheduleResult struct {
	Entries  []models.TimetableEntry
	Failures []ScheduleFailure
}

// OK reports whether every assignment was placed.
func (r ScheduleResult) OK() bool {
	return len(r.Failures) == 0
}

// PeriodDuration derives the shared per-period length in minutes:
// (end - start - lunch) / periods, floor division. Every period in the day
// has this single duration.
func PeriodDuration(s models.TimetableSettings) int {
	if s.Periods < 1 {
		return 0
	}
	return (int(s.EndTime) - int(s.StartTime) - s.LunchDuration) / s.Periods
}

// LunchBoundary returns the period after which lunch is inserted
// (periods / 2). A boundary of 0 means the lunch shift never applies.
func LunchBoundary(s models.TimetableSettings) int {
	return s.Periods / 2
}

// ValidateSettings checks a configuration for feasibility, accumulating every
// violated rule so the administrator can correct all of them in one pass. An
// empty slice means the configuration is valid.
func ValidateSettings(s models.TimetableSettings) []string {
	var errs []string

	if s.MinClassDuration > s.MaxClassDuration {
		errs = append(errs, fmt.Sprintf(
			"minimum class duration (%d min) exceeds maximum class duration (%d min)",
			s.MinClassDuration, s.MaxClassDuration))
	}

	if s.Periods < 1 {
		errs = append(errs, "periods must be at least 1")
	} else {
		duration := PeriodDuration(s)
		switch {
		case duration <= 0:
			errs = append(errs, fmt.Sprintf(
				"working day of %d min minus %d min lunch cannot fit %d periods",
				int(s.EndTime)-int(s.StartTime), s.LunchDuration, s.Periods))
		case duration < s.MinClassDuration || duration > s.MaxClassDuration:
			errs = append(errs, fmt.Sprintf(
				"computed period duration of %d min is outside the allowed range of %d-%d min",
				duration, s.MinClassDuration, s.MaxClassDuration))
		}
	}

	days, err := s.WorkingDays()
	if err != nil {
		errs = append(errs, err.Error())
	} else if len(days) == 0 {
		errs = append(errs, "at least one working day is required")
	}

	if s.ActiveSemesterType != "" {
		if _, err := models.ParseParity(string(s.ActiveSemesterType)); err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}

// PeriodWindow computes the absolute time window of a period. Periods up to
// the lunch boundary sit back to back from the day start; periods after it
// are shifted later by exactly the lunch duration. Generation, grid
// rendering, and export all label periods through this one function.
func PeriodWindow(s models.TimetableSettings, period int) (start, end models.MinuteOfDay) {
	duration := PeriodDuration(s)
	offset := (period - 1) * duration
	if period > LunchBoundary(s) {
		offset += s.LunchDuration
	}
	start = s.StartTime + models.MinuteOfDay(offset)
	end = start + models.MinuteOfDay(duration)
	return start, end
}

// LunchWindow returns the lunch interval, the gap between the boundary period
// and the one after it. ok is false when no lunch break exists (zero duration
// or a single-period day whose boundary is 0).
func LunchWindow(s models.TimetableSettings) (start, end models.MinuteOfDay, ok bool) {
	boundary := LunchBoundary(s)
	if boundary == 0 || s.LunchDuration <= 0 {
		return 0, 0, false
	}
	_, boundaryEnd := PeriodWindow(s, boundary)
	return boundaryEnd, boundaryEnd + models.MinuteOfDay(s.LunchDuration), true
}

type slotKey struct {
	Day    string
	Period int
}

type teacherClaimKey struct {
	TeacherID string
	Parity    models.SemesterParity
}

type cohortClaimKey struct {
	Branch   models.Branch
	Semester int
}

// claimBoard tracks occupied slots during one scheduling run. Teacher claims
// are scoped per parity group: a teacher's odd-semester and even-semester
// classes never run concurrently, so they may share a slot. Cohort claims are
// scoped per exact (branch, semester): one student group cannot attend two
// classes at once.
type claimBoard struct {
	teacher map[teacherClaimKey]map[slotKey]bool
	cohort  map[cohortClaimKey]map[slotKey]bool
}

func newClaimBoard() *claimBoard {
	return &claimBoard{
		teacher: make(map[teacherClaimKey]map[slotKey]bool),
		cohort:  make(map[cohortClaimKey]map[slotKey]bool),
	}
}

func (b *claimBoard) free(a models.AssignedClassDetail, slot slotKey) bool {
	tk := teacherClaimKey{TeacherID: a.TeacherID, Parity: a.Parity()}
	if b.teacher[tk][slot] {
		return false
	}
	ck := cohortClaimKey{Branch: a.Branch, Semester: a.Semester}
	return !b.cohort[ck][slot]
}

func (b *claimBoard) claim(a models.AssignedClassDetail, slot slotKey) {
	tk := teacherClaimKey{TeacherID: a.TeacherID, Parity: a.Parity()}
	if b.teacher[tk] == nil {
		b.teacher[tk] = make(map[slotKey]bool)
	}
	b.teacher[tk][slot] = true

	ck := cohortClaimKey{Branch: a.Branch, Semester: a.Semester}
	if b.cohort[ck] == nil {
		b.cohort[ck] = make(map[slotKey]bool)
	}
	b.cohort[ck][slot] = true
}

// BuildSchedule runs the greedy first-fit scheduler over the full assignment
// set. The configuration must already have passed ValidateSettings.
//
// Assignments are processed in a stable order (branch, semester, subject
// code, subject name, assignment id) so identical inputs always yield the
// identical entry set. Candidate slots are tried working day by working day
// in configured order, periods 1..N within each day; the first slot free for
// both the teacher's parity group and the (branch, semester) cohort wins.
// Unplaceable assignments are recorded as failures and the run continues.
func BuildSchedule(s models.TimetableSettings, assignments []models.AssignedClassDetail) ScheduleResult {
	var result ScheduleResult

	days, err := s.WorkingDays()
	if err != nil || len(days) == 0 || PeriodDuration(s) <= 0 {
		for _, a := range assignments {
			result.Failures = append(result.Failures, ScheduleFailure{
				AssignmentID: a.ID,
				TeacherName:  a.TeacherName,
				SubjectName:  a.SubjectName,
				Reason:       "configuration is not valid for scheduling",
			})
		}
		return result
	}

	ordered := make([]models.AssignedClassDetail, len(assignments))
	copy(ordered, assignments)
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Branch != b.Branch {
			return a.Branch < b.Branch
		}
		if a.Semester != b.Semester {
			return a.Semester < b.Semester
		}
		if a.SubjectCode != b.SubjectCode {
			return a.SubjectCode < b.SubjectCode
		}
		if a.SubjectName != b.SubjectName {
			return a.SubjectName < b.SubjectName
		}
		return a.ID < b.ID
	})

	board := newClaimBoard()
	for _, a := range ordered {
		slot, found := firstFreeSlot(board, a, days, s.Periods)
		if !found {
			result.Failures = append(result.Failures, ScheduleFailure{
				AssignmentID: a.ID,
				TeacherName:  a.TeacherName,
				SubjectName:  a.SubjectName,
				Reason:       "no free slot",
			})
			continue
		}

		board.claim(a, slot)
		start, end := PeriodWindow(s, slot.Period)
		result.Entries = append(result.Entries, models.TimetableEntry{
			AssignedClassID: a.ID,
			TeacherID:       a.TeacherID,
			TeacherName:     a.TeacherName,
			SubjectID:       a.SubjectID,
			SubjectName:     a.SubjectName,
			SubjectCode:     a.SubjectCode,
			Semester:        a.Semester,
			Branch:          a.Branch,
			Day:             slot.Day,
			PeriodNumber:    slot.Period,
			StartTime:       start,
			EndTime:         end,
		})
	}

	return result
}

func firstFreeSlot(board *claimBoard, a models.AssignedClassDetail, days models.WorkingDays, periods int) (slotKey, bool) {
	for _, day := range days {
		for period := 1; period <= periods; period++ {
			slot := slotKey{Day: day, Period: period}
			if board.free(a, slot) {
				return slot, true
			}
		}
	}
	return slotKey{}, false
}
