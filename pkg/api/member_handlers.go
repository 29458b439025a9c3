package api

import (
	"net/http"

	"github.com/farmhand-io/farmhand/pkg/farms"
	"github.com/farmhand-io/farmhand/pkg/httputil"
)

// listMembers handles GET /api/v1/farms/{farm_id}/members
func (s *Server) listMembers(w http.ResponseWriter, r *http.Request) {
	farmID, ok := httputil.ParsePathInt64OrError(w, r, "farm_id")
	if !ok {
		return
	}

	members, err := s.service.ListMembers(r.Context(), farmID)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, members)
}

// addMember handles POST /api/v1/farms/{farm_id}/members
func (s *Server) addMember(w http.ResponseWriter, r *http.Request) {
	farmID, ok := httputil.ParsePathInt64OrError(w, r, "farm_id")
	if !ok {
		return
	}

	var req farms.AddMemberRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if err := s.service.AddMember(r.Context(), farmID, req.UserID, req.RoleID); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteCreated(w, map[string]interface{}{
		"farm_id": farmID,
		"user_id": req.UserID,
		"role_id": req.RoleID,
	})
}

// updateMemberRole handles PATCH /api/v1/farms/{farm_id}/members/{user_id}
func (s *Server) updateMemberRole(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	farmID, ok := httputil.ParsePathInt64OrError(w, r, "farm_id")
	if !ok {
		return
	}
	userID, ok := httputil.ParsePathInt64OrError(w, r, "user_id")
	if !ok {
		return
	}

	var req farms.UpdateMemberRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if err := s.service.UpdateMemberRole(r.Context(), farmID, userID, req.RoleID, identity.UserID); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

// removeMember handles DELETE /api/v1/farms/{farm_id}/members/{user_id}
func (s *Server) removeMember(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	farmID, ok := httputil.ParsePathInt64OrError(w, r, "farm_id")
	if !ok {
		return
	}
	userID, ok := httputil.ParsePathInt64OrError(w, r, "user_id")
	if !ok {
		return
	}

	if err := s.service.RemoveMember(r.Context(), farmID, userID, identity.UserID); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

// leaveFarm handles POST /api/v1/farms/{farm_id}/leave
func (s *Server) leaveFarm(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	farmID, ok := httputil.ParsePathInt64OrError(w, r, "farm_id")
	if !ok {
		return
	}

	if err := s.service.Leave(r.Context(), farmID, identity.UserID); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}
