package middleware

import (
	"net/http"
	"strconv"

	"github.com/farmhand-io/farmhand/pkg/auth"
	"github.com/farmhand-io/farmhand/pkg/contextkeys"
	"github.com/farmhand-io/farmhand/pkg/httputil"
)

const (
	userIDHeader    = "X-User-ID"
	userEmailHeader = "X-User-Email"
)

// IdentityMiddleware extracts the authenticated identity from headers
// set by the upstream gateway. Authentication itself happens before
// this service.
type IdentityMiddleware struct {
	optional bool
}

// NewIdentityMiddleware creates an identity middleware. When optional
// is true, requests without identity headers pass through
// unauthenticated; route-level checks then decide what they may do.
func NewIdentityMiddleware(optional bool) *IdentityMiddleware {
	return &IdentityMiddleware{optional: optional}
}

// Handler wraps an HTTP handler with identity extraction
func (m *IdentityMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idHeader := r.Header.Get(userIDHeader)
		if idHeader == "" {
			if m.optional {
				next.ServeHTTP(w, r)
				return
			}
			httputil.WriteUnauthorized(w, "authentication required")
			return
		}

		userID, err := strconv.ParseInt(idHeader, 10, 64)
		if err != nil || userID <= 0 {
			httputil.WriteUnauthorized(w, "invalid identity header")
			return
		}

		identity := &auth.Identity{
			UserID: userID,
			Email:  r.Header.Get(userEmailHeader),
		}
		ctx := contextkeys.WithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetIdentity extracts the authenticated identity from the request, or
// nil if the request is unauthenticated.
func GetIdentity(r *http.Request) *auth.Identity {
	v := r.Context().Value(contextkeys.IdentityKey)
	if v == nil {
		return nil
	}
	identity, ok := v.(*auth.Identity)
	if !ok {
		return nil
	}
	return identity
}
