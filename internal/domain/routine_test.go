package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoutineProgressRecalculate(t *testing.T) {
	cases := []struct {
		name      string
		completed int
		total     int
		want      int
	}{
		{"zero total", 0, 0, 0},
		{"negative total", 3, -1, 0},
		{"none done", 0, 4, 0},
		{"one of three rounds up", 1, 3, 33},
		{"two of three", 2, 3, 67},
		{"half", 1, 2, 50},
		{"one of eight rounds to thirteen", 1, 8, 13},
		{"all done", 5, 5, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := RoutineProgress{StepsCompleted: tc.completed, StepsTotal: tc.total}
			p.Recalculate()
			require.Equal(t, tc.want, p.PercentComplete)
		})
	}
}

func TestRoutineStatusTransitions(t *testing.T) {
	require.True(t, RoutineStatusScheduled.CanTransition(RoutineStatusStarted))
	require.True(t, RoutineStatusScheduled.CanTransition(RoutineStatusMissed))
	require.True(t, RoutineStatusStarted.CanTransition(RoutineStatusCompleted))
	require.True(t, RoutineStatusInProgress.CanTransition(RoutineStatusCancelled))

	require.False(t, RoutineStatusCompleted.CanTransition(RoutineStatusScheduled))
	require.False(t, RoutineStatusMissed.CanTransition(RoutineStatusInProgress))
	require.False(t, RoutineStatusCancelled.CanTransition(RoutineStatusCompleted))
}

func TestActivityStatusTransitions(t *testing.T) {
	require.True(t, ActivityStatusPending.CanTransition(ActivityStatusInProgress))
	require.True(t, ActivityStatusPending.CanTransition(ActivityStatusOverdue))
	require.True(t, ActivityStatusInProgress.CanTransition(ActivityStatusCompleted))
	require.True(t, ActivityStatusOverdue.CanTransition(ActivityStatusCompleted))

	require.False(t, ActivityStatusCompleted.CanTransition(ActivityStatusPending))
	require.False(t, ActivityStatusCancelled.CanTransition(ActivityStatusInProgress))
}

func TestIsClockTime(t *testing.T) {
	valid := []string{"00:00", "09:30", "23:59", "12:05"}
	for _, s := range valid {
		require.True(t, IsClockTime(s), s)
	}

	invalid := []string{"", "24:00", "12:60", "9:30", "12-30", "ab:cd", "12:345"}
	for _, s := range invalid {
		require.False(t, IsClockTime(s), s)
	}
}
