package rbac

import (
	"context"
	"fmt"
	"time"

	"github.com/farmhand-io/farmhand/pkg/observability"
)

// Resolver decides allow/deny for a (user, farm, required permissions)
// triple. The check runs before the guarded operation executes, on every
// invocation; results are never cached across requests.
type Resolver interface {
	// Authorize requires all of the given permissions (conjunctive).
	Authorize(ctx context.Context, userID, farmID int64, required []Permission) (*Decision, error)

	// AuthorizeAny allows if any one alternative set is fully satisfied.
	// Empty alternative sets are ignored rather than trivially satisfied;
	// the call is unconditional only when every alternative is empty.
	AuthorizeAny(ctx context.Context, userID, farmID int64, alternatives ...[]Permission) (*Decision, error)
}

// PermissionResolver implements Resolver against the RBAC store.
type PermissionResolver struct {
	store   *Store
	metrics *observability.Metrics
}

// NewPermissionResolver creates a resolver. metrics may be nil.
func NewPermissionResolver(store *Store, metrics *observability.Metrics) *PermissionResolver {
	return &PermissionResolver{
		store:   store,
		metrics: metrics,
	}
}

// Authorize requires all of the given permissions within the selected farm.
func (pr *PermissionResolver) Authorize(ctx context.Context, userID, farmID int64, required []Permission) (*Decision, error) {
	return pr.AuthorizeAny(ctx, userID, farmID, required)
}

// AuthorizeAny allows if any one of the alternative permission sets is
// fully satisfied by the caller's role bindings in the selected farm.
// An empty alternative set never satisfies the check on its own; only a
// call with no non-empty alternatives at all is allowed unconditionally.
func (pr *PermissionResolver) AuthorizeAny(ctx context.Context, userID, farmID int64, alternatives ...[]Permission) (*Decision, error) {
	start := time.Now()
	decision, err := pr.decide(ctx, userID, farmID, alternatives)
	if err != nil {
		return nil, err
	}
	if pr.metrics != nil {
		pr.metrics.ObserveAuthzDecision(decision.Allowed, time.Since(start))
	}
	return decision, nil
}

func (pr *PermissionResolver) decide(ctx context.Context, userID, farmID int64, alternatives [][]Permission) (*Decision, error) {
	now := time.Now()

	// An operation that declared no requirement is allowed unconditionally.
	if !hasRequirement(alternatives) {
		return &Decision{Allowed: true, Reason: "no permissions required", CheckedAt: now}, nil
	}

	if userID <= 0 || farmID <= 0 {
		return &Decision{Allowed: false, Reason: ReasonMissingContext, CheckedAt: now}, nil
	}

	membership, err := pr.store.GetMembership(ctx, userID, farmID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve membership: %w", err)
	}
	if membership == nil {
		return &Decision{Allowed: false, Reason: ReasonNotMember, CheckedAt: now}, nil
	}

	// Bindings for (role, farm) only; the same role elsewhere is invisible.
	names, err := pr.store.GetRolePermissions(ctx, membership.RoleID, farmID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve permissions: %w", err)
	}
	granted := make(map[Permission]bool, len(names))
	for _, name := range names {
		granted[Permission(name)] = true
	}

	var firstUnmet Permission
	for _, required := range alternatives {
		if len(required) == 0 {
			continue
		}
		if unmet, ok := allGranted(granted, required); ok {
			return &Decision{
				Allowed:   true,
				Role:      membership.RoleName,
				CheckedAt: now,
			}, nil
		} else if firstUnmet == "" {
			firstUnmet = unmet
		}
	}

	return &Decision{
		Allowed:   false,
		Reason:    fmt.Sprintf("missing permission: %s", firstUnmet),
		Role:      membership.RoleName,
		CheckedAt: now,
	}, nil
}

// allGranted checks a conjunctive permission set, returning the first
// unmet permission on failure.
func allGranted(granted map[Permission]bool, required []Permission) (Permission, bool) {
	for _, p := range required {
		if !granted[p] {
			return p, false
		}
	}
	return "", true
}

func hasRequirement(alternatives [][]Permission) bool {
	for _, set := range alternatives {
		if len(set) > 0 {
			return true
		}
	}
	return false
}
