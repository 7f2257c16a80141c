package models

import (
	"fmt"
	"strings"
)

// canonical day names in week order, used to validate input and to position
// grid columns consistently.
var weekDayOrder = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var weekDayLookup = func() map[string]string {
	m := make(map[string]string, len(weekDayOrder))
	for _, day := range weekDayOrder {
		m[strings.ToLower(day)] = day
	}
	return m
}()

// WorkingDays is an ordered, deduplicated list of instructional day names.
// Insertion order defines the column order of the produced grid.
type WorkingDays []string

// ParseWorkingDays accepts either a comma-separated list of day names
// ("Mon,Tue,Wed") or the five-letter shorthand "MTWTF" meaning Monday through
// Friday. Unknown day names are rejected.
func ParseWorkingDays(raw string) (WorkingDays, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.EqualFold(trimmed, "MTWTF") {
		return WorkingDays{"Mon", "Tue", "Wed", "Thu", "Fri"}, nil
	}

	seen := make(map[string]bool)
	var days WorkingDays
	for _, part := range strings.Split(trimmed, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		canonical, ok := weekDayLookup[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown working day %q", name)
		}
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		days = append(days, canonical)
	}
	return days, nil
}

// Contains reports whether day is one of the working days.
func (w WorkingDays) Contains(day string) bool {
	for _, d := range w {
		if d == day {
			return true
		}
	}
	return false
}

// Position returns the column index of day, or -1 when absent.
func (w WorkingDays) Position(day string) int {
	for i, d := range w {
		if d == day {
			return i
		}
	}
	return -1
}

func (w WorkingDays) String() string {
	return strings.Join(w, ",")
}
