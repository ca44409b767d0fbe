// Package utils provides general-purpose helpers used across the host:
// context keys for the authenticated caller, and peer bearer token minting
// and verification.
package utils

import (
	"context"

	"github.com/dotfed/idhost/models"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// CallerCtxKey is the key under which the authenticated [models.Caller] is
// stored in the request context by the peer-auth middleware.
var CallerCtxKey = contextKey("caller")

// CallerFromContext retrieves the caller stored in ctx.
//
// Returns the caller and an ok flag:
//   - ok == true  — value is found and has the correct type
//   - ok == false — value is missing; treat the caller as anonymous
func CallerFromContext(ctx context.Context) (models.Caller, bool) {
	caller, ok := ctx.Value(CallerCtxKey).(models.Caller)
	return caller, ok
}

// WithCaller returns a child context carrying caller.
func WithCaller(ctx context.Context, caller models.Caller) context.Context {
	return context.WithValue(ctx, CallerCtxKey, caller)
}
