package api

import (
	"net/http"

	"github.com/farmhand-io/farmhand/pkg/farms"
	"github.com/farmhand-io/farmhand/pkg/httputil"
)

// createInvitation handles POST /api/v1/farms/{farm_id}/invitations
func (s *Server) createInvitation(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	farmID, ok := httputil.ParsePathInt64OrError(w, r, "farm_id")
	if !ok {
		return
	}

	var req farms.InviteRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	invitation, err := s.service.CreateInvitation(r.Context(), farmID, req.Email, req.RoleID, identity.UserID)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	// The raw token travels by email only.
	invitation.Token = ""
	httputil.WriteCreated(w, invitation)
}

// listInvitations handles GET /api/v1/farms/{farm_id}/invitations
func (s *Server) listInvitations(w http.ResponseWriter, r *http.Request) {
	farmID, ok := httputil.ParsePathInt64OrError(w, r, "farm_id")
	if !ok {
		return
	}

	invitations, err := s.service.ListInvitations(r.Context(), farmID)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	for _, inv := range invitations {
		inv.Token = ""
	}
	httputil.WriteSuccess(w, invitations)
}

// revokeInvitation handles DELETE /api/v1/farms/{farm_id}/invitations/{invitation_id}
func (s *Server) revokeInvitation(w http.ResponseWriter, r *http.Request) {
	farmID, ok := httputil.ParsePathInt64OrError(w, r, "farm_id")
	if !ok {
		return
	}
	invitationID, ok := httputil.ParsePathInt64OrError(w, r, "invitation_id")
	if !ok {
		return
	}

	if err := s.service.RevokeInvitation(r.Context(), farmID, invitationID); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

// verifyInvitation handles GET /api/v1/invitations/verify?token=...
func (s *Server) verifyInvitation(w http.ResponseWriter, r *http.Request) {
	token := httputil.ParseQueryString(r, "token", "")
	if token == "" {
		httputil.WriteBadRequest(w, "token query parameter is required")
		return
	}

	result, err := s.service.VerifyInvitation(r.Context(), token)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, result)
}

// acceptInvitation handles POST /api/v1/invitations/accept
func (s *Server) acceptInvitation(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	var req farms.AcceptRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Token == "" {
		httputil.WriteBadRequest(w, "token is required")
		return
	}

	result, err := s.service.AcceptInvitation(r.Context(), req.Token, *identity)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, result)
}

// pendingInvitations handles GET /api/v1/invitations/pending
func (s *Server) pendingInvitations(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	pending, err := s.service.GetPendingInvitationsByEmail(r.Context(), identity.Email)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, pending)
}
