package models

import (
	"fmt"
	"strings"
)

// SemesterParity classifies semesters into the odd/even groups that run
// concurrently within one academic term. Two classes may share a teacher's
// slot only when their semesters belong to different parity groups.
type SemesterParity string

const (
	ParityOdd  SemesterParity = "odd"
	ParityEven SemesterParity = "even"
)

// ParityOf returns the parity group for a semester number.
func ParityOf(semester int) SemesterParity {
	if semester%2 == 0 {
		return ParityEven
	}
	return ParityOdd
}

// ParseParity validates a raw parity label.
func ParseParity(raw string) (SemesterParity, error) {
	switch SemesterParity(strings.ToLower(strings.TrimSpace(raw))) {
	case ParityOdd:
		return ParityOdd, nil
	case ParityEven:
		return ParityEven, nil
	}
	return "", fmt.Errorf("unknown semester parity %q", raw)
}

func (p SemesterParity) String() string {
	return string(p)
}
