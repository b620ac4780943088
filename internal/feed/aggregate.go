package feed

import (
	"sort"

	"example.com/stableops/internal/domain"
)

// Aggregate merges the two collections into one time-ordered feed.
//
// When onlyMine is set and the current user is known, only items assigned to
// that user survive; an empty currentUserID disables the filter entirely
// (filtering by "mine" is only meaningful once identity is known). The sort
// is stable: items with equal clock keys keep their input order, activities
// before routines. Pure and total over any well-formed input.
func Aggregate(activities []domain.ActivityInstance, routines []domain.RoutineInstance, onlyMine bool, currentUserID string) []TodayItem {
	filter := onlyMine && currentUserID != ""

	items := make([]TodayItem, 0, len(activities)+len(routines))
	for _, activity := range activities {
		if filter && activity.AssignedTo != currentUserID {
			continue
		}
		items = append(items, ActivityItem{Activity: activity})
	}
	for _, routine := range routines {
		if filter && routine.AssignedTo != currentUserID {
			continue
		}
		items = append(items, RoutineItem{Routine: routine})
	}

	// HH:MM strings order lexicographically within a single day.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].SortTime() < items[j].SortTime()
	})

	return items
}
