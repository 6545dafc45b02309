package domain

import (
	"math"
	"time"
)

// ActiveTimer is the single in-progress clock-in record embedded on a user.
// Its lifetime is exactly the clocked-in interval: clock-in creates it,
// clock-out converts it into a TimeEntry and deletes it.
type ActiveTimer struct {
	WorkOrderID string
	StartedAt   time.Time
}

// TimeEntryType classifies how a time entry was produced.
type TimeEntryType string

const (
	// TimeEntryTypeClock marks entries produced by the clock-out transition.
	TimeEntryTypeClock TimeEntryType = "clock"
)

// TimeEntry is an immutable record of time worked against a work order.
// Entries are never edited, only superseded by new ones.
type TimeEntry struct {
	ID            string
	TenantID      string
	UserID        string
	WorkOrderID   string
	StartTime     time.Time
	EndTime       time.Time
	DurationHours float64
	EntryType     TimeEntryType
	Notes         *string
	CreatedAt     time.Time
}

// DurationHours computes elapsed hours between two instants rounded to
// four decimal places.
func DurationHours(start, end time.Time) float64 {
	hours := end.Sub(start).Hours()
	return math.Round(hours*10000) / 10000
}
