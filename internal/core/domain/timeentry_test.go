package domain

import (
	"testing"
	"time"
)

func TestDurationHours(t *testing.T) {
	start := time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		want float64
	}{
		{"whole hour", start.Add(time.Hour), 1},
		{"quarter hour", start.Add(15 * time.Minute), 0.25},
		{"one second", start.Add(time.Second), 0.0003},
		{"seven and a half minutes", start.Add(7*time.Minute + 30*time.Second), 0.125},
		{"zero elapsed", start, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DurationHours(start, tc.end); got != tc.want {
				t.Fatalf("DurationHours = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDurationHours_RoundsToFourDecimals(t *testing.T) {
	start := time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Minute).Add(7 * time.Second)

	got := DurationHours(start, end)
	// 10m7s = 0.16861... hours
	want := 0.1686
	if got != want {
		t.Fatalf("DurationHours = %v, want %v", got, want)
	}
}
