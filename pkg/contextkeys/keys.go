// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across the application must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// IdentityKey contains *auth.Identity
	// Set by: middleware.IdentityMiddleware (pkg/middleware/identity.go)
	// Required by: all privileged endpoints, permission middleware
	// Type: *auth.Identity
	IdentityKey Key = "identity"

	// FarmKey contains the selected farm ID
	// Set by: middleware.FarmContext (pkg/middleware/farm.go)
	// Required by: farm-scoped endpoints, permission middleware
	// Type: int64
	FarmKey Key = "farm"

	// RequestIDKey contains request ID string (UUID)
	// Set by: middleware.RequestIDMiddleware
	// Used by: logger, access log
	// Type: string
	RequestIDKey Key = "request_id"
)

// WithIdentity adds the authenticated identity to the context
func WithIdentity(ctx context.Context, identity interface{}) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// WithFarm adds the selected farm to the context
func WithFarm(ctx context.Context, farm interface{}) context.Context {
	return context.WithValue(ctx, FarmKey, farm)
}

// WithRequestID adds the request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestID extracts the request ID from the context, or "" if absent
func RequestID(ctx context.Context) string {
	if v := ctx.Value(RequestIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
