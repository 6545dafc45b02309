package domain

import (
	"testing"
	"time"
)

func TestSnapMinutes(t *testing.T) {
	tests := []struct {
		name          string
		offsetY       float64
		pixelsPerHour float64
		want          int
	}{
		{"top of column", 0, 60, 0},
		{"exact hour", 60, 60, 60},
		{"snaps down to quarter", 65, 60, 60},
		{"snaps up to quarter", 70, 60, 75},
		{"two and a quarter hours", 135, 60, 135},
		{"denser grid", 240, 120, 120},
		{"zero scale falls back to default", 60, 0, 60},
		{"negative scale falls back to default", 30, -10, 30},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SnapMinutes(tc.offsetY, tc.pixelsPerHour); got != tc.want {
				t.Fatalf("SnapMinutes(%v, %v) = %d, want %d", tc.offsetY, tc.pixelsPerHour, got, tc.want)
			}
		})
	}
}

func TestSlotTime(t *testing.T) {
	day := time.Date(2025, time.March, 11, 14, 45, 12, 0, time.UTC)

	got := SlotTime(day, 135)
	want := time.Date(2025, time.March, 11, 2, 15, 0, 0, time.UTC)

	if !got.Equal(want) {
		t.Fatalf("SlotTime = %v, want %v", got, want)
	}
}

func TestResolveDrop_TechnicianColumnAssignsSlot(t *testing.T) {
	wo := newWorkOrder(WorkOrderStatusNew)
	day := time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC)

	assignment := ResolveDrop(wo, DropInput{
		Column: DropColumn{
			Kind:         ColumnTechnician,
			TechnicianID: "tech-1",
			Day:          day,
		},
		OffsetY:       135,
		PixelsPerHour: 60,
	})

	if assignment.TechnicianID == nil || *assignment.TechnicianID != "tech-1" {
		t.Fatalf("expected technician assigned")
	}
	want := time.Date(2025, time.March, 11, 2, 15, 0, 0, time.UTC)
	if !assignment.ScheduledAt.Equal(want) {
		t.Fatalf("scheduled at %v, want %v", assignment.ScheduledAt, want)
	}
	if assignment.Status != WorkOrderStatusScheduled {
		t.Fatalf("expected scheduled status, got %s", assignment.Status)
	}
	if assignment.NoOp {
		t.Fatalf("technician drop must never resolve to a no-op")
	}
}

func TestResolveDrop_DayColumnPreservesTimeOfDay(t *testing.T) {
	wo := newWorkOrder(WorkOrderStatusScheduled)
	techID := "tech-1"
	existing := time.Date(2025, time.March, 10, 10, 30, 0, 0, time.UTC)
	wo.AssignedTechnicianID = &techID
	wo.ScheduledAt = &existing

	day := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
	assignment := ResolveDrop(wo, DropInput{
		Column: DropColumn{Kind: ColumnDay, Day: day},
	})

	want := time.Date(2025, time.March, 12, 10, 30, 0, 0, time.UTC)
	if !assignment.ScheduledAt.Equal(want) {
		t.Fatalf("scheduled at %v, want %v", assignment.ScheduledAt, want)
	}
	if assignment.TechnicianID == nil || *assignment.TechnicianID != techID {
		t.Fatalf("day drop must preserve the technician")
	}
	if assignment.NoOp {
		t.Fatalf("different day must not resolve to a no-op")
	}
}

func TestResolveDrop_DayColumnDefaultsStartHour(t *testing.T) {
	wo := newWorkOrder(WorkOrderStatusNew)
	day := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)

	assignment := ResolveDrop(wo, DropInput{
		Column: DropColumn{Kind: ColumnDay, Day: day},
	})

	want := time.Date(2025, time.March, 12, DefaultDayStartHour, 0, 0, 0, time.UTC)
	if !assignment.ScheduledAt.Equal(want) {
		t.Fatalf("never-scheduled order should default to %02d:00, got %v", DefaultDayStartHour, assignment.ScheduledAt)
	}
}

func TestResolveDrop_SameDayDropIsNoOp(t *testing.T) {
	wo := newWorkOrder(WorkOrderStatusScheduled)
	existing := time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC)
	wo.ScheduledAt = &existing

	assignment := ResolveDrop(wo, DropInput{
		Column: DropColumn{Kind: ColumnDay, Day: time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)},
	})

	if !assignment.NoOp {
		t.Fatalf("drop on the current date must resolve to a no-op")
	}
}

func TestSlotsOverlap(t *testing.T) {
	base := time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		a, b     time.Time
		duration time.Duration
		want     bool
	}{
		{"identical slots", base, base, time.Hour, true},
		{"partial overlap", base, base.Add(30 * time.Minute), time.Hour, true},
		{"back to back", base, base.Add(time.Hour), time.Hour, false},
		{"disjoint", base, base.Add(3 * time.Hour), time.Hour, false},
		{"zero duration uses default", base, base.Add(30 * time.Minute), 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SlotsOverlap(tc.a, tc.b, tc.duration); got != tc.want {
				t.Fatalf("SlotsOverlap = %v, want %v", got, tc.want)
			}
		})
	}
}
