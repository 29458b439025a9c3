package rbac

import (
	"net/http"

	"github.com/farmhand-io/farmhand/pkg/httputil"
	"github.com/farmhand-io/farmhand/pkg/middleware"
	"github.com/farmhand-io/farmhand/pkg/observability"
)

// PermissionMiddleware guards routes with declared permission sets. It is
// the single enforcement point: handlers never re-check permissions.
type PermissionMiddleware struct {
	resolver Resolver
	logger   *observability.Logger
}

// NewPermissionMiddleware creates a new permission middleware
func NewPermissionMiddleware(resolver Resolver, logger *observability.Logger) *PermissionMiddleware {
	return &PermissionMiddleware{
		resolver: resolver,
		logger:   logger,
	}
}

// Require annotates a route with the permission set it needs; all listed
// permissions must be granted (conjunctive).
func (pm *PermissionMiddleware) Require(permissions ...Permission) func(http.Handler) http.Handler {
	return pm.RequireAny(permissions)
}

// RequireAny annotates a route with alternative permission sets; the
// request is allowed if any one full set is satisfied.
func (pm *PermissionMiddleware) RequireAny(alternatives ...[]Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := middleware.GetIdentity(r)
			if identity == nil {
				httputil.WriteErrorMessage(w, http.StatusUnauthorized, "authentication required")
				return
			}

			farmID := middleware.SelectedFarmID(r)

			decision, err := pm.resolver.AuthorizeAny(r.Context(), identity.UserID, farmID, alternatives...)
			if err != nil {
				pm.logger.WithError(err).Error("authorization check failed")
				httputil.WriteErrorMessage(w, http.StatusInternalServerError, "authorization check failed")
				return
			}

			if !decision.Allowed {
				pm.logger.WithFields(map[string]interface{}{
					"user_id": identity.UserID,
					"farm_id": farmID,
					"reason":  decision.Reason,
				}).Debug("request denied")
				httputil.WriteErrorMessage(w, http.StatusForbidden, decision.Reason)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
