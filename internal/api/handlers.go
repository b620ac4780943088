// Package api exposes HTTP handlers for the stableops service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example.com/stableops/internal/auth"
	"example.com/stableops/internal/domain"
	"example.com/stableops/internal/feed"
	"example.com/stableops/internal/persistence"
)

const dateLayout = "2006-01-02"

// Handler coordinates HTTP requests with the domain service and feed sources.
type Handler struct {
	service *domain.Service
	sources FeedSourceFactory
	clock   func() time.Time
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, sources FeedSourceFactory) *Handler {
	return &Handler{service: service, sources: sources, clock: time.Now}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/feed/today", h.todayFeed)
	mux.HandleFunc("/v1/activities", h.activities)
	mux.HandleFunc("/v1/activities/", h.activityByID)
	mux.HandleFunc("/v1/routines", h.routines)
	mux.HandleFunc("/v1/routines/", h.routineByID)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) todayFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeFeedRead) {
		writeError(w, http.StatusForbidden, "forbidden", "scope feed:read required")
		return
	}

	stableID := r.URL.Query().Get("stable_id")
	if stableID == "" {
		stableID = claims.StableID
	}
	if stableID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing stable_id parameter")
		return
	}
	if claims.StableID != "" && stableID != claims.StableID {
		writeError(w, http.StatusForbidden, "forbidden", "stable_id does not match token")
		return
	}

	selected := truncateToDay(h.clock())
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "date must be YYYY-MM-DD")
			return
		}
		selected = parsed
	}

	period, err := feed.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	onlyMine := false
	if raw := r.URL.Query().Get("only_mine"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "only_mine must be a boolean")
			return
		}
		onlyMine = parsed
	}

	rng := feed.ResolveRange(selected, period)
	// Routines cover the current calendar day regardless of the selected
	// window; the window narrows activities only.
	routineDay := truncateToDay(h.clock())

	sources := h.sources()
	routines, failed := feed.Collect(r.Context(), sources.Activities, sources.Routines, stableID, rng, routineDay)
	items := feed.Aggregate(sources.Store.Get(), routines, onlyMine, claims.Subject)

	resp := FeedResponse{
		Items: make([]FeedItemView, 0, len(items)),
		Range: DateRangeView{
			Start: rng.Start.Format(dateLayout),
			End:   rng.End.Format(dateLayout),
		},
		Period:   string(period),
		Degraded: len(failed) > 0,
	}
	if len(failed) > 0 {
		resp.Error = "could not load " + strings.Join(failed, " and ")
	}
	for _, item := range items {
		resp.Items = append(resp.Items, toFeedItemView(item))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createActivity(w, r)
	case http.MethodGet:
		h.listActivities(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) activityByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/activities/")
	if rest == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing activity id")
		return
	}

	if id, ok := strings.CutSuffix(rest, "/status"); ok {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
			return
		}
		h.updateActivityStatus(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getActivity(w, r, rest)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeActivitiesWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope activities:write required")
		return
	}

	var req CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	activityDate, _ := time.Parse(dateLayout, req.ActivityDate)
	idempotencyKey := r.Header.Get("Idempotency-Key")

	activity, replay, err := h.service.CreateActivity(r.Context(), domain.CreateActivityInput{
		StableID:       claims.StableID,
		ActivityType:   req.ActivityType,
		ActivityDate:   activityDate,
		ScheduledTime:  req.ScheduledTime,
		DurationMin:    req.DurationMin,
		AssignedTo:     req.AssignedTo,
		Horses:         req.Horses,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	resp := CreateActivityResponse{
		ActivityID: activity.ID,
		Status:     string(activity.Status),
		Replay:     replay,
	}

	status := http.StatusAccepted
	if replay {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (h *Handler) getActivity(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeActivitiesRead) && !claims.HasScope(auth.ScopeActivitiesWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope activities:read required")
		return
	}

	activity, err := h.service.GetActivity(r.Context(), claims.StableID, id)
	if err != nil {
		if errors.Is(err, domain.ErrActivityNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "activity not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toActivityView(*activity))
}

func (h *Handler) updateActivityStatus(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeActivitiesWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope activities:write required")
		return
	}

	var req UpdateActivityStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	activity, err := h.service.UpdateActivityStatus(r.Context(), claims.StableID, id, domain.ActivityStatus(req.Status), req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrActivityNotFound):
			writeError(w, http.StatusNotFound, "not_found", "activity not found")
		case errors.Is(err, domain.ErrInvalidTransition):
			writeError(w, http.StatusConflict, "invalid_transition", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, toActivityView(*activity))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeActivitiesRead) && !claims.HasScope(auth.ScopeActivitiesWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope activities:read required")
		return
	}

	query := r.URL.Query()
	if assignee := query.Get("assigned_to"); assignee != "" {
		h.listActivitiesByAssignee(w, r, claims.StableID, assignee)
		return
	}

	start, err := parseDateParam(query.Get("start"), truncateToDay(h.clock()))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "start must be YYYY-MM-DD")
		return
	}
	end, err := parseDateParam(query.Get("end"), start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "end must be YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "validation_failed", "end must not precede start")
		return
	}

	activities, err := h.service.ListActivitiesByWindow(r.Context(), claims.StableID, start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]ActivityView, 0, len(activities))
	for _, activity := range activities {
		items = append(items, toActivityView(activity))
	}
	writeJSON(w, http.StatusOK, ListActivitiesResponse{Items: items})
}

func (h *Handler) listActivitiesByAssignee(w http.ResponseWriter, r *http.Request, stableID, assignee string) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	activities, next, err := h.service.ListActivitiesByAssignee(r.Context(), stableID, assignee, cursor, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]ActivityView, 0, len(activities))
	for _, activity := range activities {
		items = append(items, toActivityView(activity))
	}
	writeJSON(w, http.StatusOK, ListActivitiesResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

func (h *Handler) routines(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.scheduleRoutine(w, r)
	case http.MethodGet:
		h.listRoutines(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) routineByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/routines/")
	if rest == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing routine id")
		return
	}

	if id, ok := strings.CutSuffix(rest, "/steps"); ok {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
			return
		}
		h.recordRoutineStep(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getRoutine(w, r, rest)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) scheduleRoutine(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeRoutinesWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope routines:write required")
		return
	}

	var req ScheduleRoutineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	scheduledDate, _ := time.Parse(dateLayout, req.ScheduledDate)

	routine, err := h.service.ScheduleRoutine(r.Context(), domain.ScheduleRoutineInput{
		StableID:           claims.StableID,
		RoutineName:        req.RoutineName,
		ScheduledDate:      scheduledDate,
		ScheduledStartTime: req.ScheduledStartTime,
		EstimatedDuration:  req.EstimatedDuration,
		AssignedTo:         req.AssignedTo,
		StepsTotal:         req.StepsTotal,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toRoutineView(*routine))
}

func (h *Handler) getRoutine(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeRoutinesRead) && !claims.HasScope(auth.ScopeRoutinesWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope routines:read required")
		return
	}

	routine, err := h.service.GetRoutine(r.Context(), claims.StableID, id)
	if err != nil {
		if errors.Is(err, domain.ErrRoutineNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "routine not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toRoutineView(*routine))
}

func (h *Handler) recordRoutineStep(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeRoutinesWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope routines:write required")
		return
	}

	routine, err := h.service.RecordRoutineStep(r.Context(), claims.StableID, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoutineNotFound):
			writeError(w, http.StatusNotFound, "not_found", "routine not found")
		case errors.Is(err, domain.ErrInvalidTransition):
			writeError(w, http.StatusConflict, "invalid_transition", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, toRoutineView(*routine))
}

func (h *Handler) listRoutines(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeRoutinesRead) && !claims.HasScope(auth.ScopeRoutinesWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope routines:read required")
		return
	}

	day, err := parseDateParam(r.URL.Query().Get("date"), truncateToDay(h.clock()))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "date must be YYYY-MM-DD")
		return
	}

	routines, err := h.service.ListRoutinesByDay(r.Context(), claims.StableID, day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]RoutineView, 0, len(routines))
	for _, routine := range routines {
		items = append(items, toRoutineView(routine))
	}
	writeJSON(w, http.StatusOK, ListRoutinesResponse{Items: items})
}

// CreateActivityRequest is the payload for POST /v1/activities.
type CreateActivityRequest struct {
	ActivityType  string   `json:"activity_type"`
	ActivityDate  string   `json:"activity_date"`
	ScheduledTime string   `json:"scheduled_time,omitempty"`
	DurationMin   int      `json:"duration_min,omitempty"`
	AssignedTo    string   `json:"assigned_to,omitempty"`
	Horses        []string `json:"horses,omitempty"`
}

// Validate ensures request correctness.
func (r CreateActivityRequest) Validate() error {
	if strings.TrimSpace(r.ActivityType) == "" {
		return errors.New("activity_type is required")
	}
	if _, err := time.Parse(dateLayout, r.ActivityDate); err != nil {
		return errors.New("activity_date must be YYYY-MM-DD")
	}
	if r.ScheduledTime != "" && !domain.IsClockTime(r.ScheduledTime) {
		return errors.New("scheduled_time must be HH:MM")
	}
	if r.DurationMin < 0 {
		return errors.New("duration_min must be >= 0")
	}
	return nil
}

// CreateActivityResponse describes the response body for create.
type CreateActivityResponse struct {
	ActivityID string `json:"activity_id"`
	Status     string `json:"status"`
	Replay     bool   `json:"idempotent_replay"`
}

// UpdateActivityStatusRequest is the payload for POST /v1/activities/{id}/status.
type UpdateActivityStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Validate ensures request correctness.
func (r UpdateActivityStatusRequest) Validate() error {
	if !domain.ActivityStatus(r.Status).Valid() {
		return errors.New("status must be one of pending, in_progress, completed, cancelled, overdue")
	}
	return nil
}

// ScheduleRoutineRequest is the payload for POST /v1/routines.
type ScheduleRoutineRequest struct {
	RoutineName        string `json:"routine_name"`
	ScheduledDate      string `json:"scheduled_date"`
	ScheduledStartTime string `json:"scheduled_start_time"`
	EstimatedDuration  int    `json:"estimated_duration,omitempty"`
	AssignedTo         string `json:"assigned_to,omitempty"`
	StepsTotal         int    `json:"steps_total"`
}

// Validate ensures request correctness.
func (r ScheduleRoutineRequest) Validate() error {
	if strings.TrimSpace(r.RoutineName) == "" {
		return errors.New("routine_name is required")
	}
	if _, err := time.Parse(dateLayout, r.ScheduledDate); err != nil {
		return errors.New("scheduled_date must be YYYY-MM-DD")
	}
	if !domain.IsClockTime(r.ScheduledStartTime) {
		return errors.New("scheduled_start_time must be HH:MM")
	}
	if r.StepsTotal < 0 {
		return errors.New("steps_total must be >= 0")
	}
	return nil
}

// ActivityView exposes full details about an activity instance.
type ActivityView struct {
	ActivityID    string    `json:"activity_id"`
	StableID      string    `json:"stable_id"`
	ActivityType  string    `json:"activity_type"`
	ActivityDate  string    `json:"activity_date"`
	ScheduledTime string    `json:"scheduled_time,omitempty"`
	DurationMin   int       `json:"duration_min,omitempty"`
	AssignedTo    string    `json:"assigned_to,omitempty"`
	Status        string    `json:"status"`
	Horses        []string  `json:"horses,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RoutineView exposes full details about a routine instance.
type RoutineView struct {
	RoutineID          string    `json:"routine_id"`
	StableID           string    `json:"stable_id"`
	RoutineName        string    `json:"routine_name"`
	ScheduledDate      string    `json:"scheduled_date"`
	ScheduledStartTime string    `json:"scheduled_start_time"`
	EstimatedDuration  int       `json:"estimated_duration,omitempty"`
	AssignedTo         string    `json:"assigned_to,omitempty"`
	Status             string    `json:"status"`
	StepsCompleted     int       `json:"steps_completed"`
	StepsTotal         int       `json:"steps_total"`
	PercentComplete    int       `json:"percent_complete"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ListActivitiesResponse packages activity list results.
type ListActivitiesResponse struct {
	Items      []ActivityView `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// ListRoutinesResponse packages routine list results.
type ListRoutinesResponse struct {
	Items []RoutineView `json:"items"`
}

// DateRangeView is the inclusive window the feed covered.
type DateRangeView struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// FeedItemView is one merged feed entry. Exactly one of Activity and Routine
// is set, discriminated by Kind.
type FeedItemView struct {
	Key        string        `json:"key"`
	Kind       string        `json:"kind"`
	SortTime   string        `json:"sort_time"`
	AssignedTo string        `json:"assigned_to,omitempty"`
	Activity   *ActivityView `json:"activity,omitempty"`
	Routine    *RoutineView  `json:"routine,omitempty"`
}

// FeedResponse is the body for GET /v1/feed/today.
type FeedResponse struct {
	Items    []FeedItemView `json:"items"`
	Range    DateRangeView  `json:"range"`
	Period   string         `json:"period"`
	Degraded bool           `json:"degraded"`
	Error    string         `json:"error,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toActivityView(activity domain.ActivityInstance) ActivityView {
	return ActivityView{
		ActivityID:    activity.ID,
		StableID:      activity.StableID,
		ActivityType:  activity.ActivityType,
		ActivityDate:  activity.ActivityDate.Format(dateLayout),
		ScheduledTime: activity.ScheduledTime,
		DurationMin:   activity.DurationMin,
		AssignedTo:    activity.AssignedTo,
		Status:        string(activity.Status),
		Horses:        activity.Horses,
		CreatedAt:     activity.CreatedAt,
		UpdatedAt:     activity.UpdatedAt,
	}
}

func toRoutineView(routine domain.RoutineInstance) RoutineView {
	return RoutineView{
		RoutineID:          routine.ID,
		StableID:           routine.StableID,
		RoutineName:        routine.RoutineName,
		ScheduledDate:      routine.ScheduledDate.Format(dateLayout),
		ScheduledStartTime: routine.ScheduledStartTime,
		EstimatedDuration:  routine.EstimatedDuration,
		AssignedTo:         routine.AssignedTo,
		Status:             string(routine.Status),
		StepsCompleted:     routine.Progress.StepsCompleted,
		StepsTotal:         routine.Progress.StepsTotal,
		PercentComplete:    routine.Progress.PercentComplete,
		CreatedAt:          routine.CreatedAt,
		UpdatedAt:          routine.UpdatedAt,
	}
}

func toFeedItemView(item feed.TodayItem) FeedItemView {
	view := FeedItemView{
		Key:        item.Key(),
		SortTime:   item.SortTime(),
		AssignedTo: item.AssignedTo(),
	}
	switch typed := item.(type) {
	case feed.ActivityItem:
		view.Kind = "activity"
		activity := toActivityView(typed.Activity)
		view.Activity = &activity
	case feed.RoutineItem:
		view.Kind = "routine"
		routine := toRoutineView(typed.Routine)
		view.Routine = &routine
	}
	return view
}

func parseDateParam(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.Parse(dateLayout, raw)
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
