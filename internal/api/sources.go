package api

import (
	"context"
	"time"

	"example.com/stableops/internal/domain"
	"example.com/stableops/internal/feed"
)

// FeedSources bundles the two fetch adapters with the activities store they
// share for one load cycle.
type FeedSources struct {
	Activities feed.ActivitySource
	Routines   feed.RoutineSource
	Store      *feed.Store[[]domain.ActivityInstance]
}

// FeedSourceFactory builds an isolated FeedSources per request so concurrent
// feed loads never observe each other's activity snapshots.
type FeedSourceFactory func() FeedSources

// NewLocalFeedSources builds a factory serving the feed straight from the
// domain service, for deployments where stableops owns the data.
func NewLocalFeedSources(service *domain.Service) FeedSourceFactory {
	return func() FeedSources {
		store := feed.NewStore[[]domain.ActivityInstance](nil)
		return FeedSources{
			Activities: &serviceActivitySource{service: service, store: store},
			Routines:   &serviceRoutineSource{service: service},
			Store:      store,
		}
	}
}

type serviceActivitySource struct {
	service *domain.Service
	store   *feed.Store[[]domain.ActivityInstance]
}

func (s *serviceActivitySource) FetchActivities(ctx context.Context, stableID string, rng feed.DateRange) error {
	activities, err := s.service.ListActivitiesByWindow(ctx, stableID, rng.Start, rng.End)
	if err != nil {
		return err
	}
	s.store.Set(activities)
	return nil
}

type serviceRoutineSource struct {
	service *domain.Service
}

func (s *serviceRoutineSource) FetchRoutineInstances(ctx context.Context, stableID string, day time.Time) ([]domain.RoutineInstance, error) {
	return s.service.ListRoutinesByDay(ctx, stableID, day)
}
