package auth

// Known OAuth scopes used by the stableops API.
const (
	ScopeFeedRead        = "feed:read"
	ScopeActivitiesRead  = "activities:read"
	ScopeActivitiesWrite = "activities:write"
	ScopeRoutinesRead    = "routines:read"
	ScopeRoutinesWrite   = "routines:write"
)
