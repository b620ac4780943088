package auth

import "context"

// claimsKey is unexported so only this package can attach claims.
type claimsKey struct{}

// WithClaims returns a child context carrying the claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// FromContext retrieves claims attached by WithClaims. The second return is
// false for requests that never passed the middleware.
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok && claims != nil
}
