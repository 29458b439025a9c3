// Package middleware provides the HTTP middleware chain: identity
// extraction, farm scoping, request IDs, rate limiting, logging,
// metrics, and panic recovery.
//
// Identity is taken from trusted headers set by the upstream gateway;
// this service performs authorization, not authentication. Farm scope
// comes from the {farm_id} path variable or the X-Farm-ID header and
// is only a selection, never a grant: the permission middleware in
// pkg/rbac decides whether the caller may act within the selected
// farm.
package middleware
