package targets

import (
	"fmt"
	"time"
)

const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// PeriodRange expands an anchor date into the calendar period containing it.
// Weeks start on Monday: the range runs from the most recent Monday on or
// before the anchor through the following Sunday. Months run from the first
// of the anchor's month through its last day (day 0 of the next month).
func PeriodRange(period string, anchor time.Time) (time.Time, time.Time, error) {
	anchor = time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())

	switch period {
	case PeriodDaily:
		return anchor, anchor, nil
	case PeriodWeekly:
		// time.Weekday has Sunday as 0, shift so Monday is 0.
		offset := (int(anchor.Weekday()) + 6) % 7
		start := anchor.AddDate(0, 0, -offset)
		end := start.AddDate(0, 0, 6)
		return start, end, nil
	case PeriodMonthly:
		start := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
		end := time.Date(anchor.Year(), anchor.Month()+1, 0, 0, 0, 0, 0, anchor.Location())
		return start, end, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown period %q", period)
	}
}

// PeriodDays lists every day of the period containing the anchor, inclusive.
func PeriodDays(period string, anchor time.Time) ([]time.Time, error) {
	start, end, err := PeriodRange(period, anchor)
	if err != nil {
		return nil, err
	}

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}
