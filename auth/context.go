package auth

import (
	"context"
)

// contextKey is a private type so no other package can collide with our keys.
type contextKey string

const claimsContextKey contextKey = "auth_claims"

// NewContextWithClaims returns a child context carrying verified claims.
func NewContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext extracts the claims stored by the Authenticate middleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

// UserIDFromContext returns the authenticated caller's id.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}
