package repository

import (
	"fmt"
	"time"
)

// ParseTime parses a timestamp stored as RFC3339 or a bare "2006-01-02"
// date. Kept local to the repository layer to avoid cross-layer imports.
func ParseTime(str string) (time.Time, error) {
	returnTime, err := time.Parse(time.RFC3339Nano, str)
	if err != nil {
		returnTime, err = time.Parse("2006-01-02", str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}
	return returnTime.UTC(), nil
}

// FormatTime renders a timestamp the way the repository stores it.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// FormatDay renders a calendar-day key the way the repository stores it.
func FormatDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
