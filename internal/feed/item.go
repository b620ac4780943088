package feed

import "example.com/stableops/internal/domain"

// endOfDaySentinel places activities without an explicit time at the end of
// the day's ordering.
const endOfDaySentinel = "23:59"

// TodayItem is the tagged union over activity and routine instances used as
// the merge and sort unit of the feed. The marker method seals the set of
// implementations to ActivityItem and RoutineItem.
type TodayItem interface {
	// Key returns a namespaced identity ("activity-<id>" / "routine-<id>")
	// so the two id spaces can never collide in a merged list.
	Key() string
	// SortTime returns the HH:MM clock key the feed orders by.
	SortTime() string
	// AssignedTo returns the assigned user id, empty when unassigned.
	AssignedTo() string

	todayItem()
}

// ActivityItem wraps an activity instance in the feed.
type ActivityItem struct {
	Activity domain.ActivityInstance
}

func (ActivityItem) todayItem() {}

// Key implements TodayItem.
func (i ActivityItem) Key() string { return "activity-" + i.Activity.ID }

// SortTime implements TodayItem. Activities with no scheduled time sort last.
func (i ActivityItem) SortTime() string {
	if i.Activity.ScheduledTime == "" {
		return endOfDaySentinel
	}
	return i.Activity.ScheduledTime
}

// AssignedTo implements TodayItem.
func (i ActivityItem) AssignedTo() string { return i.Activity.AssignedTo }

// RoutineItem wraps a routine instance in the feed.
type RoutineItem struct {
	Routine domain.RoutineInstance
}

func (RoutineItem) todayItem() {}

// Key implements TodayItem.
func (i RoutineItem) Key() string { return "routine-" + i.Routine.ID }

// SortTime implements TodayItem. Routines always carry a start time.
func (i RoutineItem) SortTime() string { return i.Routine.ScheduledStartTime }

// AssignedTo implements TodayItem.
func (i RoutineItem) AssignedTo() string { return i.Routine.AssignedTo }
