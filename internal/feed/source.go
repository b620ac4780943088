package feed

import (
	"context"
	"sync"
	"time"

	"example.com/stableops/internal/domain"
)

// ActivitySource fetches activity instances for a stable and window.
// Implementations publish results into a shared activities Store rather than
// returning them, mirroring the shared-repository pattern the feed's other
// consumers rely on.
type ActivitySource interface {
	FetchActivities(ctx context.Context, stableID string, rng DateRange) error
}

// RoutineSource fetches routine instances for a single calendar day.
type RoutineSource interface {
	FetchRoutineInstances(ctx context.Context, stableID string, day time.Time) ([]domain.RoutineInstance, error)
}

// Source tags used in error summaries and metrics.
const (
	sourceActivities = "activities"
	sourceRoutines   = "routines"
)

// Collect issues both fetches concurrently and settles them independently: a
// failure in one is caught and tagged locally, never cancelling or masking
// the other. It returns the fetched routines (nil when that fetch failed) and
// the tags of the sources that failed, in a fixed order.
func Collect(ctx context.Context, activities ActivitySource, routines RoutineSource, stableID string, rng DateRange, routineDay time.Time) ([]domain.RoutineInstance, []string) {
	var (
		wg          sync.WaitGroup
		activityErr error
		routineErr  error
		fetched     []domain.RoutineInstance
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		activityErr = activities.FetchActivities(ctx, stableID, rng)
	}()
	go func() {
		defer wg.Done()
		fetched, routineErr = routines.FetchRoutineInstances(ctx, stableID, routineDay)
	}()
	wg.Wait()

	var failed []string
	if activityErr != nil {
		failed = append(failed, sourceActivities)
		recordSourceFailure(sourceActivities)
	}
	if routineErr != nil {
		failed = append(failed, sourceRoutines)
		recordSourceFailure(sourceRoutines)
		fetched = nil
	}
	return fetched, failed
}
