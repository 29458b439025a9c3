package api

import (
	"net/http"

	"github.com/farmhand-io/farmhand/pkg/httputil"
)

// listPermissions handles GET /api/v1/permissions
func (s *Server) listPermissions(w http.ResponseWriter, r *http.Request) {
	permissions, err := s.store.ListPermissions(r.Context())
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, permissions)
}

// listRoles handles GET /api/v1/roles
func (s *Server) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := s.store.ListRoles(r.Context())
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, roles)
}

// listFarmRoles handles GET /api/v1/farms/{farm_id}/roles
func (s *Server) listFarmRoles(w http.ResponseWriter, r *http.Request) {
	farmID, ok := httputil.ParsePathInt64OrError(w, r, "farm_id")
	if !ok {
		return
	}

	roles, err := s.store.ListRolesWithBindings(r.Context(), farmID)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, roles)
}

// bindPermission handles POST /api/v1/farms/{farm_id}/roles/{role_id}/permissions/{permission_id}
func (s *Server) bindPermission(w http.ResponseWriter, r *http.Request) {
	farmID, ok := httputil.ParsePathInt64OrError(w, r, "farm_id")
	if !ok {
		return
	}
	roleID, ok := httputil.ParsePathInt64OrError(w, r, "role_id")
	if !ok {
		return
	}
	permissionID, ok := httputil.ParsePathInt64OrError(w, r, "permission_id")
	if !ok {
		return
	}

	if _, err := s.store.GetRoleByID(r.Context(), roleID); err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	if _, err := s.store.GetPermissionByID(r.Context(), permissionID); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	if err := s.store.Bind(r.Context(), roleID, permissionID, farmID); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteCreated(w, map[string]interface{}{
		"farm_id":       farmID,
		"role_id":       roleID,
		"permission_id": permissionID,
	})
}

// unbindPermission handles DELETE /api/v1/farms/{farm_id}/roles/{role_id}/permissions/{permission_id}
func (s *Server) unbindPermission(w http.ResponseWriter, r *http.Request) {
	farmID, ok := httputil.ParsePathInt64OrError(w, r, "farm_id")
	if !ok {
		return
	}
	roleID, ok := httputil.ParsePathInt64OrError(w, r, "role_id")
	if !ok {
		return
	}
	permissionID, ok := httputil.ParsePathInt64OrError(w, r, "permission_id")
	if !ok {
		return
	}

	if err := s.store.Unbind(r.Context(), roleID, permissionID, farmID); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}
