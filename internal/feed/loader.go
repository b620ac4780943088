package feed

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"example.com/stableops/internal/domain"
)

// State is the load-orchestration state of a Loader.
type State string

const (
	StateIdle            State = "idle"
	StateLoading         State = "loading"
	StateReady           State = "ready"
	StatePartiallyFailed State = "partially_failed"
)

// Option configures optional behaviour for the Loader.
type Option func(*Loader)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) Option {
	return func(l *Loader) {
		l.clock = clock
	}
}

// WithLogger overrides the logger used to report degraded loads.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithRoutinesFollowRange makes the routine fetch track the selected date
// instead of the current calendar day. The default replicates the upstream
// behaviour where routines are always fetched for today regardless of the
// selected window.
func WithRoutinesFollowRange() Option {
	return func(l *Loader) {
		l.routinesFollowRange = true
	}
}

// Snapshot is the externally visible load state at one point in time.
type Snapshot struct {
	Items   []TodayItem
	Range   DateRange
	State   State
	Loading bool
	Error   string
}

// Loader orchestrates the two feed fetches and keeps the merged feed current
// whenever any of its inputs change. It is scoped to one screen instance: the
// stores it consumes are injected, and Run tears every subscription down when
// its context ends.
type Loader struct {
	activitySource ActivitySource
	routineSource  RoutineSource

	activities *Store[[]domain.ActivityInstance]
	stableID   *Store[string]
	userID     *Store[string]
	items      *Store[[]TodayItem]

	clock               func() time.Time
	logger              *log.Logger
	routinesFollowRange bool

	mu           sync.Mutex
	selectedDate time.Time
	period       Period
	onlyMine     bool
	state        State
	loading      bool
	errMsg       string
	routines     []domain.RoutineInstance
}

// NewLoader constructs a Loader over the injected sources and stores.
func NewLoader(activitySource ActivitySource, routineSource RoutineSource, activities *Store[[]domain.ActivityInstance], stableID, userID *Store[string], opts ...Option) *Loader {
	l := &Loader{
		activitySource: activitySource,
		routineSource:  routineSource,
		activities:     activities,
		stableID:       stableID,
		userID:         userID,
		items:          NewStore[[]TodayItem](nil),
		clock:          time.Now,
		logger:         log.New(log.Writer(), "[feed] ", log.LstdFlags),
		period:         PeriodDay,
		state:          StateIdle,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.selectedDate = truncateToDay(l.clock())
	return l
}

// Refresh performs one load cycle: both sources are fetched concurrently and
// settled independently, so a failure in one never hides data from the other.
// When no stable is selected the load silently declines; Run retries once a
// stable becomes available.
func (l *Loader) Refresh(ctx context.Context) {
	stable := l.stableID.Get()
	if stable == "" {
		return
	}

	l.mu.Lock()
	rng := ResolveRange(l.selectedDate, l.period)
	routineDay := truncateToDay(l.clock())
	if l.routinesFollowRange {
		routineDay = truncateToDay(l.selectedDate)
	}
	l.state = StateLoading
	l.loading = true
	l.errMsg = ""
	l.mu.Unlock()

	started := time.Now()
	routines, failed := Collect(ctx, l.activitySource, l.routineSource, stable, rng, routineDay)

	l.mu.Lock()
	l.routines = routines
	l.loading = false
	if len(failed) > 0 {
		l.state = StatePartiallyFailed
		l.errMsg = "could not load " + strings.Join(failed, " and ")
		l.logger.Printf("feed load degraded (stable=%s): %s", stable, l.errMsg)
		recordLoad("partial", started)
	} else {
		l.state = StateReady
		recordLoad("ready", started)
	}
	l.mu.Unlock()

	l.recompute()
}

// Navigate steps the selected date by offset units of the current period and
// reloads.
func (l *Loader) Navigate(ctx context.Context, offset int) {
	l.mu.Lock()
	l.selectedDate = Navigate(l.selectedDate, l.period, offset)
	l.mu.Unlock()
	l.Refresh(ctx)
}

// SetDate jumps to an explicit selected date and reloads.
func (l *Loader) SetDate(ctx context.Context, date time.Time) {
	l.mu.Lock()
	l.selectedDate = truncateToDay(date)
	l.mu.Unlock()
	l.Refresh(ctx)
}

// SetPeriod changes the window granularity and reloads.
func (l *Loader) SetPeriod(ctx context.Context, period Period) {
	l.mu.Lock()
	l.period = period
	l.mu.Unlock()
	l.Refresh(ctx)
}

// SetOnlyMine toggles the assignment filter. No fetch is needed: the merged
// feed is recomputed from data already held.
func (l *Loader) SetOnlyMine(onlyMine bool) {
	l.mu.Lock()
	l.onlyMine = onlyMine
	l.mu.Unlock()
	l.recompute()
}

// Run keeps the feed reactive: any change to the selected stable reloads, and
// any change to the current user or the shared activities collection
// recomputes the merged feed, so a stale snapshot is never left visible after
// an input update. Run blocks until ctx is done.
func (l *Loader) Run(ctx context.Context) {
	stableCh, cancelStable := l.stableID.Watch()
	defer cancelStable()
	userCh, cancelUser := l.userID.Watch()
	defer cancelUser()
	activityCh, cancelActivities := l.activities.Watch()
	defer cancelActivities()

	l.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-stableCh:
			if !ok {
				return
			}
			l.Refresh(ctx)
		case _, ok := <-userCh:
			if !ok {
				return
			}
			l.recompute()
		case _, ok := <-activityCh:
			if !ok {
				return
			}
			l.recompute()
		}
	}
}

// Feed exposes the merged feed as an observable store.
func (l *Loader) Feed() *Store[[]TodayItem] {
	return l.items
}

// Snapshot returns the current load state and merged items.
func (l *Loader) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{
		Items:   l.items.Get(),
		Range:   ResolveRange(l.selectedDate, l.period),
		State:   l.state,
		Loading: l.loading,
		Error:   l.errMsg,
	}
}

// State returns the orchestration state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// IsLoading reports whether a load cycle is in flight.
func (l *Loader) IsLoading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// ErrorMessage returns the current error summary, empty when the last load
// fully succeeded.
func (l *Loader) ErrorMessage() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errMsg
}

func (l *Loader) recompute() {
	l.mu.Lock()
	routines := l.routines
	onlyMine := l.onlyMine
	l.mu.Unlock()

	l.items.Set(Aggregate(l.activities.Get(), routines, onlyMine, l.userID.Get()))
}
