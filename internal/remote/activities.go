// Package remote implements HTTP fetch adapters against the upstream
// stable-management backends.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"example.com/stableops/internal/domain"
	"example.com/stableops/internal/feed"
)

const dateLayout = "2006-01-02"

// ActivityClient fetches activity instances over HTTP and publishes them into
// the shared activities store. The store is the return channel: feed
// consumers observe the update rather than receiving a direct result.
type ActivityClient struct {
	client *http.Client
	base   string
	token  string
	store  *feed.Store[[]domain.ActivityInstance]
}

// NewActivityClient constructs an ActivityClient writing into store.
func NewActivityClient(baseURL, token string, timeout time.Duration, store *feed.Store[[]domain.ActivityInstance]) *ActivityClient {
	return &ActivityClient{
		client: &http.Client{Timeout: timeout},
		base:   strings.TrimRight(baseURL, "/"),
		token:  token,
		store:  store,
	}
}

// FetchActivities implements feed.ActivitySource.
func (c *ActivityClient) FetchActivities(ctx context.Context, stableID string, rng feed.DateRange) error {
	query := url.Values{}
	query.Set("stable_id", stableID)
	query.Set("start", rng.Start.Format(dateLayout))
	query.Set("end", rng.End.Format(dateLayout))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/v1/activities?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("activities backend returned status %d", resp.StatusCode)
	}

	var payload struct {
		Items []activityRecord `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode activities response: %w", err)
	}

	activities := make([]domain.ActivityInstance, 0, len(payload.Items))
	for _, record := range payload.Items {
		activities = append(activities, record.toDomain(stableID))
	}
	c.store.Set(activities)
	return nil
}

// activityRecord mirrors the backend wire shape. Optional fields are pointers
// so absent values survive decoding without defaults leaking in.
type activityRecord struct {
	ID            string   `json:"id"`
	StableID      string   `json:"stable_id"`
	ActivityType  string   `json:"activity_type"`
	ActivityDate  string   `json:"activity_date"`
	ScheduledTime *string  `json:"scheduled_time"`
	DurationMin   *int     `json:"duration_min"`
	AssignedTo    *string  `json:"assigned_to"`
	Status        string   `json:"status"`
	Horses        []string `json:"horses"`
}

func (r activityRecord) toDomain(stableID string) domain.ActivityInstance {
	activity := domain.ActivityInstance{
		ID:           r.ID,
		StableID:     r.StableID,
		ActivityType: r.ActivityType,
		Status:       domain.ActivityStatus(r.Status),
		Horses:       r.Horses,
	}
	if activity.StableID == "" {
		activity.StableID = stableID
	}
	if !activity.Status.Valid() {
		activity.Status = domain.ActivityStatusPending
	}
	if r.ScheduledTime != nil && domain.IsClockTime(*r.ScheduledTime) {
		activity.ScheduledTime = *r.ScheduledTime
	}
	if r.DurationMin != nil {
		activity.DurationMin = *r.DurationMin
	}
	if r.AssignedTo != nil {
		activity.AssignedTo = *r.AssignedTo
	}
	if parsed, err := time.Parse(dateLayout, r.ActivityDate); err == nil {
		activity.ActivityDate = parsed
	}
	return activity
}
