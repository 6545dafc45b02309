package domain

import (
	"math"
	"time"
)

// Calendar geometry defaults shared with the scheduling UI.
const (
	DefaultPixelsPerHour  = 60.0
	SnapIntervalMinutes   = 15
	DefaultDayStartHour   = 8
	DefaultJobDurationMin = 60
)

// ColumnKind identifies what a drop target column represents.
type ColumnKind string

const (
	// ColumnTechnician is one technician's lane for a single day; dropping
	// here assigns both the technician and the time slot.
	ColumnTechnician ColumnKind = "technician-column"
	// ColumnDay reassigns the date only, leaving the technician unchanged.
	ColumnDay ColumnKind = "day-column"
)

// DropColumn describes the target column of a drag-and-drop gesture.
type DropColumn struct {
	Kind         ColumnKind
	TechnicianID string
	Day          time.Time
}

// DropInput is the UI-agnostic description of a completed drop: the vertical
// pixel offset inside the column plus the geometry scale in effect.
type DropInput struct {
	Column        DropColumn
	OffsetY       float64
	PixelsPerHour float64
}

// ScheduledAssignment is the resolved outcome of a drop.
type ScheduledAssignment struct {
	WorkOrderID  string
	TechnicianID *string
	ScheduledAt  time.Time
	Status       WorkOrderStatus
	NoOp         bool
}

// SnapMinutes converts a vertical pixel offset into minutes from the top of
// the column, snapped to the nearest 15-minute boundary.
func SnapMinutes(offsetY, pixelsPerHour float64) int {
	if pixelsPerHour <= 0 {
		pixelsPerHour = DefaultPixelsPerHour
	}
	minutes := offsetY / pixelsPerHour * 60
	return int(math.Round(minutes/SnapIntervalMinutes)) * SnapIntervalMinutes
}

// SlotTime combines a column's date with minutes-from-midnight.
func SlotTime(day time.Time, minutes int) time.Time {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return midnight.Add(time.Duration(minutes) * time.Minute)
}

// sameDay reports whether two instants fall on the same calendar day.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ResolveDrop converts a drop gesture into a scheduling assignment for the
// given work order. Technician-column drops derive the time slot from the
// pixel offset; day-column drops move the date while preserving the existing
// time of day, defaulting to the standard start hour for never-scheduled
// orders. A day-column drop landing on the order's current date resolves to
// a no-op so callers can skip the redundant write.
func ResolveDrop(wo *WorkOrder, input DropInput) ScheduledAssignment {
	switch input.Column.Kind {
	case ColumnTechnician:
		minutes := SnapMinutes(input.OffsetY, input.PixelsPerHour)
		techID := input.Column.TechnicianID
		return ScheduledAssignment{
			WorkOrderID:  wo.ID,
			TechnicianID: &techID,
			ScheduledAt:  SlotTime(input.Column.Day, minutes),
			Status:       WorkOrderStatusScheduled,
		}
	default:
		minutes := DefaultDayStartHour * 60
		if wo.ScheduledAt != nil {
			minutes = wo.ScheduledAt.Hour()*60 + wo.ScheduledAt.Minute()
		}
		scheduledAt := SlotTime(input.Column.Day, minutes)

		noOp := wo.ScheduledAt != nil && sameDay(*wo.ScheduledAt, scheduledAt)

		return ScheduledAssignment{
			WorkOrderID:  wo.ID,
			TechnicianID: wo.AssignedTechnicianID,
			ScheduledAt:  scheduledAt,
			Status:       WorkOrderStatusScheduled,
			NoOp:         noOp,
		}
	}
}

// SlotsOverlap reports whether two fixed-length slots intersect. The
// scheduler uses this for advisory conflict detection only; overlapping
// assignments are surfaced, not rejected.
func SlotsOverlap(a, b time.Time, duration time.Duration) bool {
	if duration <= 0 {
		duration = DefaultJobDurationMin * time.Minute
	}
	return a.Before(b.Add(duration)) && b.Before(a.Add(duration))
}
