package models

import (
	"database/sql/driver"
	"fmt"
)

// MinuteOfDay is a clock time expressed as minutes from midnight. Period
// arithmetic stays in plain integer minutes; formatting happens only at the
// edges (JSON, database, export labels).
type MinuteOfDay int

// ParseClock parses "HH:MM" into a MinuteOfDay.
func ParseClock(raw string) (MinuteOfDay, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(raw, "%d:%d", &hh, &mm); err != nil {
		return 0, fmt.Errorf("invalid clock time %q", raw)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("clock time %q out of range", raw)
	}
	return MinuteOfDay(hh*60 + mm), nil
}

func (m MinuteOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// MarshalJSON renders the time as "HH:MM".
func (m MinuteOfDay) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", m.String())), nil
}

// UnmarshalJSON parses "HH:MM".
func (m *MinuteOfDay) UnmarshalJSON(data []byte) error {
	var raw string
	if _, err := fmt.Sscanf(string(data), "%q", &raw); err != nil {
		return fmt.Errorf("invalid clock time json %s", data)
	}
	parsed, err := ParseClock(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer, storing the time as "HH:MM" text.
func (m MinuteOfDay) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner.
func (m *MinuteOfDay) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into MinuteOfDay", src)
	}
	// Postgres TIME columns round-trip as "HH:MM:SS"; seconds are dropped.
	if len(raw) >= 8 {
		raw = raw[:5]
	}
	parsed, err := ParseClock(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
