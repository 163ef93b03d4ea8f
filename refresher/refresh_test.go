package refresher

import (
	"testing"
	"time"
)

func at(hh, mm, ss int) time.Time {
	return time.Date(2024, 6, 19, hh, mm, ss, 0, time.UTC)
}

func TestNextRefreshDelay(t *testing.T) {
	marks := []int{5, 35}
	buffer := 2 * time.Second

	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{"just after the hour waits for :05:02", at(10, 0, 0), 5*time.Minute + 2*time.Second},
		{"between marks waits for :35:02", at(10, 10, 0), 25*time.Minute + 2*time.Second},
		{"after last mark rolls to next hour", at(10, 40, 0), 25*time.Minute + 2*time.Second},
		{"exactly on a mark still waits for the buffer", at(10, 5, 0), 2 * time.Second},
		{"one second before the mark", at(10, 5, 1), time.Second},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NextRefreshDelay(tc.now, marks, buffer)
			if got != tc.want {
				t.Fatalf("NextRefreshDelay(%s) = %s, want %s", tc.now.Format("15:04:05"), got, tc.want)
			}
		})
	}
}

func TestNextRefreshDelayMinimumClamp(t *testing.T) {
	// Past the mark plus buffer within the same second, the delay must
	// never be zero or negative.
	now := at(10, 5, 2)
	got := NextRefreshDelay(now, []int{5, 35}, 2*time.Second)
	if got < time.Second {
		t.Fatalf("delay below minimum clamp: %s", got)
	}
	// And it should already point at the next mark.
	if got != 30*time.Minute {
		t.Fatalf("expected 30m to :35:02, got %s", got)
	}
}

func TestNextRefreshDelayDefaultMarks(t *testing.T) {
	got := NextRefreshDelay(at(10, 0, 0), nil, 0)
	if got != 5*time.Minute {
		t.Fatalf("expected default marks to apply, got %s", got)
	}
}

func TestNextRefreshDelayUnsortedMarks(t *testing.T) {
	got := NextRefreshDelay(at(10, 0, 0), []int{35, 5}, 0)
	if got != 5*time.Minute {
		t.Fatalf("marks should be considered in order, got %s", got)
	}
}
