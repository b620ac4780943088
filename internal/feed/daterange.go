// Package feed merges activity and routine instances into the time-ordered
// daily feed shown for a stable.
package feed

import (
	"fmt"
	"strings"
	"time"
)

// Period is the granularity of the date window used to filter activities.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod converts a query-string value into a Period.
func ParsePeriod(raw string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(raw))) {
	case PeriodDay, "":
		return PeriodDay, nil
	case PeriodWeek:
		return PeriodWeek, nil
	case PeriodMonth:
		return PeriodMonth, nil
	}
	return "", fmt.Errorf("unknown period %q", raw)
}

// DateRange is an inclusive [Start, End] day span. Both bounds are midnight UTC.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ResolveRange maps a selected date and period onto the inclusive window the
// feed covers. Pure and total over all valid dates.
//
//	day:   start = end = selected
//	week:  Monday..Sunday of the selected date's ISO week
//	month: first..last calendar day of the selected date's month
func ResolveRange(selected time.Time, period Period) DateRange {
	day := truncateToDay(selected)

	switch period {
	case PeriodWeek:
		// ISO weekday with Monday=1; a Sunday belongs to the week it ends.
		weekday := int(day.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start := day.AddDate(0, 0, -(weekday - 1))
		return DateRange{Start: start, End: start.AddDate(0, 0, 6)}
	case PeriodMonth:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return DateRange{Start: start, End: start.AddDate(0, 1, -1)}
	default:
		return DateRange{Start: day, End: day}
	}
}

// Navigate steps the selected date by offset units of the period. Month steps
// clamp to the last valid day of the target month rather than normalizing
// forward, so Jan 31 + 1 month lands on Feb 28 (or 29).
func Navigate(current time.Time, period Period, offset int) time.Time {
	day := truncateToDay(current)

	switch period {
	case PeriodWeek:
		return day.AddDate(0, 0, offset*7)
	case PeriodMonth:
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		target := first.AddDate(0, offset, 0)
		dom := day.Day()
		if last := daysInMonth(target); dom > last {
			dom = last
		}
		return time.Date(target.Year(), target.Month(), dom, 0, 0, 0, 0, time.UTC)
	default:
		return day.AddDate(0, 0, offset)
	}
}

func daysInMonth(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1).Day()
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
