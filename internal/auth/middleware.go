package auth

import (
	"net/http"
	"strings"
)

// Skipper allows callers to bypass authentication for specific requests.
type Skipper func(r *http.Request) bool

// Middleware provides HTTP middleware for bearer-token validation.
type Middleware struct {
	Config  Config
	Skipper Skipper
}

// NewMiddleware constructs a middleware that leaves the health and metrics
// endpoints unauthenticated.
func NewMiddleware(cfg Config) Middleware {
	open := map[string]struct{}{
		"/healthz": {},
		"/metrics": {},
	}
	return Middleware{
		Config: cfg,
		Skipper: func(r *http.Request) bool {
			_, ok := open[r.URL.Path]
			return ok
		},
	}
}

// Wrap authenticates requests before handing them to next. Valid claims are
// attached to the request context; anything else is a 401.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Skipper != nil && m.Skipper(r) {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := Parse(bearerToken(r), m.Config)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// bearerToken extracts the token from the Authorization header, returning ""
// when the header is absent or not a bearer credential. Parse turns "" into
// ErrMissingToken.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return token
}
