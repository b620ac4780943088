package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParsePeriod(t *testing.T) {
	cases := []struct {
		raw  string
		want Period
	}{
		{"", PeriodDay},
		{"day", PeriodDay},
		{"Week", PeriodWeek},
		{" month ", PeriodMonth},
	}
	for _, tc := range cases {
		got, err := ParsePeriod(tc.raw)
		require.NoError(t, err)
		require.Equal(t, tc.want, got)
	}

	_, err := ParsePeriod("fortnight")
	require.Error(t, err)
}

func TestResolveRangeDay(t *testing.T) {
	selected := time.Date(2026, time.March, 14, 15, 30, 0, 0, time.UTC)
	rng := ResolveRange(selected, PeriodDay)
	require.Equal(t, date(2026, time.March, 14), rng.Start)
	require.Equal(t, date(2026, time.March, 14), rng.End)
}

func TestResolveRangeWeek(t *testing.T) {
	cases := []struct {
		name     string
		selected time.Time
		start    time.Time
		end      time.Time
	}{
		{
			name:     "midweek",
			selected: date(2026, time.March, 11), // Wednesday
			start:    date(2026, time.March, 9),
			end:      date(2026, time.March, 15),
		},
		{
			name:     "monday is its own start",
			selected: date(2026, time.March, 9),
			start:    date(2026, time.March, 9),
			end:      date(2026, time.March, 15),
		},
		{
			name:     "sunday ends its week",
			selected: date(2026, time.March, 15),
			start:    date(2026, time.March, 9),
			end:      date(2026, time.March, 15),
		},
		{
			name:     "week spanning year boundary",
			selected: date(2025, time.December, 31),
			start:    date(2025, time.December, 29),
			end:      date(2026, time.January, 4),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rng := ResolveRange(tc.selected, PeriodWeek)
			require.Equal(t, tc.start, rng.Start)
			require.Equal(t, tc.end, rng.End)
		})
	}
}

func TestResolveRangeMonth(t *testing.T) {
	rng := ResolveRange(date(2024, time.February, 10), PeriodMonth)
	require.Equal(t, date(2024, time.February, 1), rng.Start)
	require.Equal(t, date(2024, time.February, 29), rng.End)

	rng = ResolveRange(date(2026, time.April, 30), PeriodMonth)
	require.Equal(t, date(2026, time.April, 1), rng.Start)
	require.Equal(t, date(2026, time.April, 30), rng.End)
}

func TestNavigateDayAndWeek(t *testing.T) {
	require.Equal(t, date(2026, time.March, 1), Navigate(date(2026, time.February, 28), PeriodDay, 1))
	require.Equal(t, date(2026, time.February, 28), Navigate(date(2026, time.March, 1), PeriodDay, -1))
	require.Equal(t, date(2026, time.March, 18), Navigate(date(2026, time.March, 11), PeriodWeek, 1))
	require.Equal(t, date(2026, time.February, 25), Navigate(date(2026, time.March, 11), PeriodWeek, -2))
}

func TestNavigateMonthClampsToLastDay(t *testing.T) {
	// Jan 31 forward one month lands on the last day of February.
	require.Equal(t, date(2025, time.February, 28), Navigate(date(2025, time.January, 31), PeriodMonth, 1))
	require.Equal(t, date(2024, time.February, 29), Navigate(date(2024, time.January, 31), PeriodMonth, 1))
	require.Equal(t, date(2026, time.February, 28), Navigate(date(2026, time.March, 31), PeriodMonth, -1))
	// Days that exist in the target month are preserved.
	require.Equal(t, date(2026, time.April, 15), Navigate(date(2026, time.March, 15), PeriodMonth, 1))
}
