package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/stableops/internal/domain"
)

func activity(id, scheduledTime, assignedTo string) domain.ActivityInstance {
	return domain.ActivityInstance{
		ID:            id,
		StableID:      "stable-1",
		ActivityType:  "turnout",
		ActivityDate:  time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC),
		ScheduledTime: scheduledTime,
		AssignedTo:    assignedTo,
		Status:        domain.ActivityStatusPending,
	}
}

func routine(id, startTime, assignedTo string) domain.RoutineInstance {
	return domain.RoutineInstance{
		ID:                 id,
		StableID:           "stable-1",
		RoutineName:        "morning feed",
		ScheduledDate:      time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC),
		ScheduledStartTime: startTime,
		AssignedTo:         assignedTo,
		Status:             domain.RoutineStatusScheduled,
	}
}

func keys(items []TodayItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Key())
	}
	return out
}

func TestAggregateOrdersByClockTime(t *testing.T) {
	items := Aggregate(
		[]domain.ActivityInstance{activity("a1", "09:00", "")},
		[]domain.RoutineInstance{routine("r1", "08:00", "")},
		false, "",
	)
	require.Equal(t, []string{"routine-r1", "activity-a1"}, keys(items))
}

func TestAggregateUnscheduledActivitiesSortLast(t *testing.T) {
	items := Aggregate(
		[]domain.ActivityInstance{
			activity("a1", "", ""),
			activity("a2", "07:30", ""),
		},
		[]domain.RoutineInstance{routine("r1", "18:00", "")},
		false, "",
	)
	require.Equal(t, []string{"activity-a2", "routine-r1", "activity-a1"}, keys(items))
	require.Equal(t, "23:59", items[2].SortTime())
}

func TestAggregateStableOnEqualTimes(t *testing.T) {
	// Equal clock keys keep input order: activities before routines, each in
	// input sequence.
	items := Aggregate(
		[]domain.ActivityInstance{
			activity("a1", "10:00", ""),
			activity("a2", "10:00", ""),
		},
		[]domain.RoutineInstance{routine("r1", "10:00", "")},
		false, "",
	)
	require.Equal(t, []string{"activity-a1", "activity-a2", "routine-r1"}, keys(items))
}

func TestAggregateOnlyMine(t *testing.T) {
	activities := []domain.ActivityInstance{
		activity("a1", "08:00", "user-1"),
		activity("a2", "09:00", "user-2"),
		activity("a3", "10:00", ""),
	}
	routines := []domain.RoutineInstance{
		routine("r1", "07:00", "user-1"),
		routine("r2", "11:00", ""),
	}

	items := Aggregate(activities, routines, true, "user-1")
	require.Equal(t, []string{"routine-r1", "activity-a1"}, keys(items))
}

func TestAggregateOnlyMineWithoutUserIsNoop(t *testing.T) {
	activities := []domain.ActivityInstance{activity("a1", "08:00", "user-1")}
	routines := []domain.RoutineInstance{routine("r1", "07:00", "user-2")}

	items := Aggregate(activities, routines, true, "")
	require.Len(t, items, 2)
}

func TestAggregateEmptyInputs(t *testing.T) {
	items := Aggregate(nil, nil, false, "")
	require.NotNil(t, items)
	require.Empty(t, items)
}
