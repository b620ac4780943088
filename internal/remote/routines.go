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
)

// RoutineClient fetches routine instances for a single calendar day from the
// upstream routines backend.
type RoutineClient struct {
	client *http.Client
	base   string
	token  string
}

// NewRoutineClient constructs a RoutineClient.
func NewRoutineClient(baseURL, token string, timeout time.Duration) *RoutineClient {
	return &RoutineClient{
		client: &http.Client{Timeout: timeout},
		base:   strings.TrimRight(baseURL, "/"),
		token:  token,
	}
}

// FetchRoutineInstances implements feed.RoutineSource.
func (c *RoutineClient) FetchRoutineInstances(ctx context.Context, stableID string, day time.Time) ([]domain.RoutineInstance, error) {
	query := url.Values{}
	query.Set("stable_id", stableID)
	query.Set("date", day.Format(dateLayout))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/v1/routines?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("routines backend returned status %d", resp.StatusCode)
	}

	var payload struct {
		Items []routineRecord `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode routines response: %w", err)
	}

	routines := make([]domain.RoutineInstance, 0, len(payload.Items))
	for _, record := range payload.Items {
		routines = append(routines, record.toDomain(stableID))
	}
	return routines, nil
}

type routineRecord struct {
	ID                 string  `json:"id"`
	StableID           string  `json:"stable_id"`
	RoutineName        string  `json:"routine_name"`
	ScheduledDate      string  `json:"scheduled_date"`
	ScheduledStartTime string  `json:"scheduled_start_time"`
	EstimatedDuration  *int    `json:"estimated_duration_min"`
	AssignedTo         *string `json:"assigned_to"`
	Status             string  `json:"status"`
	Progress           *struct {
		StepsCompleted int `json:"steps_completed"`
		StepsTotal     int `json:"steps_total"`
	} `json:"progress"`
}

func (r routineRecord) toDomain(stableID string) domain.RoutineInstance {
	routine := domain.RoutineInstance{
		ID:                 r.ID,
		StableID:           r.StableID,
		RoutineName:        r.RoutineName,
		ScheduledStartTime: r.ScheduledStartTime,
		Status:             domain.RoutineStatus(r.Status),
	}
	if routine.StableID == "" {
		routine.StableID = stableID
	}
	if !routine.Status.Valid() {
		routine.Status = domain.RoutineStatusScheduled
	}
	if r.EstimatedDuration != nil {
		routine.EstimatedDuration = *r.EstimatedDuration
	}
	if r.AssignedTo != nil {
		routine.AssignedTo = *r.AssignedTo
	}
	if parsed, err := time.Parse(dateLayout, r.ScheduledDate); err == nil {
		routine.ScheduledDate = parsed
	}
	if r.Progress != nil {
		routine.Progress.StepsCompleted = r.Progress.StepsCompleted
		routine.Progress.StepsTotal = r.Progress.StepsTotal
	}
	// The percent field is derived; recompute rather than trusting the wire.
	routine.Progress.Recalculate()
	return routine
}
