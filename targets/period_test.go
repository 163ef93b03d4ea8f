package targets

import (
	"testing"
	"time"
)

func mustDay(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestPeriodRange(t *testing.T) {
	tests := []struct {
		name      string
		period    string
		anchor    string
		wantStart string
		wantEnd   string
	}{
		{"daily is the anchor itself", PeriodDaily, "2024-06-19", "2024-06-19", "2024-06-19"},
		{"weekly from a wednesday", PeriodWeekly, "2024-06-19", "2024-06-17", "2024-06-23"},
		{"weekly anchored on monday", PeriodWeekly, "2024-06-17", "2024-06-17", "2024-06-23"},
		{"weekly anchored on sunday", PeriodWeekly, "2024-06-23", "2024-06-17", "2024-06-23"},
		{"monthly mid-month", PeriodMonthly, "2024-06-19", "2024-06-01", "2024-06-30"},
		{"monthly february leap year", PeriodMonthly, "2024-02-10", "2024-02-01", "2024-02-29"},
		{"monthly february non-leap", PeriodMonthly, "2023-02-10", "2023-02-01", "2023-02-28"},
		{"monthly december wraps year", PeriodMonthly, "2024-12-15", "2024-12-01", "2024-12-31"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			start, end, err := PeriodRange(tc.period, mustDay(tc.anchor))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !start.Equal(mustDay(tc.wantStart)) {
				t.Fatalf("start: expected %s, got %s", tc.wantStart, start.Format("2006-01-02"))
			}
			if !end.Equal(mustDay(tc.wantEnd)) {
				t.Fatalf("end: expected %s, got %s", tc.wantEnd, end.Format("2006-01-02"))
			}
		})
	}
}

func TestPeriodRangeUnknownPeriod(t *testing.T) {
	_, _, err := PeriodRange("quarterly", mustDay("2024-06-19"))
	if err == nil {
		t.Fatalf("expected error for unknown period")
	}
}

func TestPeriodDays(t *testing.T) {
	days, err := PeriodDays(PeriodWeekly, mustDay("2024-06-19"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 7 {
		t.Fatalf("expected 7 days in a week, got %d", len(days))
	}
	if !days[0].Equal(mustDay("2024-06-17")) || !days[6].Equal(mustDay("2024-06-23")) {
		t.Fatalf("week boundaries wrong: %s .. %s", days[0], days[6])
	}

	days, err = PeriodDays(PeriodMonthly, mustDay("2024-02-10"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 29 {
		t.Fatalf("expected 29 days in feb 2024, got %d", len(days))
	}

	days, err = PeriodDays(PeriodDaily, mustDay("2024-06-19"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("expected a single day, got %d", len(days))
	}
}
