package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmhand-io/farmhand/pkg/apperr"
	"github.com/farmhand-io/farmhand/pkg/auth"
	"github.com/farmhand-io/farmhand/pkg/farms"
)

func TestCreateInvitationHandler(t *testing.T) {
	t.Run("creates an invitation without leaking the token", func(t *testing.T) {
		service := &mockFarmService{
			createInvitationFunc: func(farmID int64, email string, roleID, invitedBy int64) (*farms.Invitation, error) {
				assert.Equal(t, int64(42), farmID)
				assert.Equal(t, "newhand@example.com", email)
				assert.Equal(t, int64(3), roleID)
				assert.Equal(t, int64(7), invitedBy)
				return &farms.Invitation{ID: 5, FarmID: farmID, Email: email, RoleID: roleID, Token: "secret-token"}, nil
			},
		}
		server, _ := newTestServer(t, service, allowResolver{})

		body := bytes.NewBufferString(`{"email":"newhand@example.com","role_id":3}`)
		req := authenticated(httptest.NewRequest("POST", "/api/v1/farms/42/invitations", body), 7, "owner@example.com")
		rec := do(server, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.NotContains(t, rec.Body.String(), "secret-token")
	})

	t.Run("maps existing member to 403", func(t *testing.T) {
		service := &mockFarmService{
			createInvitationFunc: func(farmID int64, email string, roleID, invitedBy int64) (*farms.Invitation, error) {
				return nil, apperr.Forbidden("already a member: member@example.com")
			},
		}
		server, _ := newTestServer(t, service, allowResolver{})

		body := bytes.NewBufferString(`{"email":"member@example.com","role_id":3}`)
		req := authenticated(httptest.NewRequest("POST", "/api/v1/farms/42/invitations", body), 7, "owner@example.com")
		rec := do(server, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "already a member")
	})
}

func TestListInvitationsHandler(t *testing.T) {
	service := &mockFarmService{
		listInvitationsFunc: func(farmID int64) ([]*farms.Invitation, error) {
			return []*farms.Invitation{
				{ID: 1, FarmID: farmID, Email: "a@example.com", Token: "tok-a"},
				{ID: 2, FarmID: farmID, Email: "b@example.com", Token: "tok-b"},
			}, nil
		},
	}
	server, _ := newTestServer(t, service, allowResolver{})

	req := authenticated(httptest.NewRequest("GET", "/api/v1/farms/42/invitations", nil), 7, "owner@example.com")
	rec := do(server, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "tok-a")

	var list []*farms.Invitation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)
}

func TestRevokeInvitationHandler(t *testing.T) {
	t.Run("revokes the invitation", func(t *testing.T) {
		service := &mockFarmService{
			revokeInvitationFunc: func(farmID, invitationID int64) error {
				assert.Equal(t, int64(42), farmID)
				assert.Equal(t, int64(5), invitationID)
				return nil
			},
		}
		server, _ := newTestServer(t, service, allowResolver{})

		req := authenticated(httptest.NewRequest("DELETE", "/api/v1/farms/42/invitations/5", nil), 7, "owner@example.com")
		rec := do(server, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("maps unknown invitation to 404", func(t *testing.T) {
		service := &mockFarmService{
			revokeInvitationFunc: func(farmID, invitationID int64) error {
				return apperr.NotFound("invitation", "%d", invitationID)
			},
		}
		server, _ := newTestServer(t, service, allowResolver{})

		req := authenticated(httptest.NewRequest("DELETE", "/api/v1/farms/42/invitations/5", nil), 7, "owner@example.com")
		rec := do(server, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestVerifyInvitationHandler(t *testing.T) {
	t.Run("reports the verification status without authentication", func(t *testing.T) {
		service := &mockFarmService{
			verifyInvitationFunc: func(token string) (*farms.VerifyResult, error) {
				assert.Equal(t, "tok-123", token)
				return &farms.VerifyResult{
					Status:   farms.VerifyRegistrationRequired,
					FarmName: "Hill Farm",
					Email:    "newhand@example.com",
				}, nil
			},
		}
		server, _ := newTestServer(t, service, allowResolver{})

		rec := do(server, httptest.NewRequest("GET", "/api/v1/invitations/verify?token=tok-123", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var result farms.VerifyResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, farms.VerifyRegistrationRequired, result.Status)
	})

	t.Run("requires a token parameter", func(t *testing.T) {
		server, _ := newTestServer(t, &mockFarmService{}, allowResolver{})

		rec := do(server, httptest.NewRequest("GET", "/api/v1/invitations/verify", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps an expired invitation to 403", func(t *testing.T) {
		service := &mockFarmService{
			verifyInvitationFunc: func(token string) (*farms.VerifyResult, error) {
				return nil, apperr.Forbidden("invitation expired")
			},
		}
		server, _ := newTestServer(t, service, allowResolver{})

		rec := do(server, httptest.NewRequest("GET", "/api/v1/invitations/verify?token=tok-old", nil))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestAcceptInvitationHandler(t *testing.T) {
	t.Run("accepts with the caller's identity", func(t *testing.T) {
		service := &mockFarmService{
			acceptInvitationFunc: func(token string, identity auth.Identity) (*farms.AcceptResult, error) {
				assert.Equal(t, "tok-123", token)
				assert.Equal(t, int64(8), identity.UserID)
				assert.Equal(t, "newhand@example.com", identity.Email)
				return &farms.AcceptResult{Status: farms.AcceptJoined, FarmID: 42, RoleName: "WORKER"}, nil
			},
		}
		server, _ := newTestServer(t, service, allowResolver{})

		body := bytes.NewBufferString(`{"token":"tok-123"}`)
		req := authenticated(httptest.NewRequest("POST", "/api/v1/invitations/accept", body), 8, "newhand@example.com")
		rec := do(server, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var result farms.AcceptResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, farms.AcceptJoined, result.Status)
	})

	t.Run("requires authentication", func(t *testing.T) {
		server, _ := newTestServer(t, &mockFarmService{}, allowResolver{})

		body := bytes.NewBufferString(`{"token":"tok-123"}`)
		rec := do(server, httptest.NewRequest("POST", "/api/v1/invitations/accept", body))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("requires a token", func(t *testing.T) {
		server, _ := newTestServer(t, &mockFarmService{}, allowResolver{})

		body := bytes.NewBufferString(`{}`)
		req := authenticated(httptest.NewRequest("POST", "/api/v1/invitations/accept", body), 8, "newhand@example.com")
		rec := do(server, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps email mismatch to 403", func(t *testing.T) {
		service := &mockFarmService{
			acceptInvitationFunc: func(token string, identity auth.Identity) (*farms.AcceptResult, error) {
				return nil, apperr.Forbidden("invitation was issued to a different email address")
			},
		}
		server, _ := newTestServer(t, service, allowResolver{})

		body := bytes.NewBufferString(`{"token":"tok-123"}`)
		req := authenticated(httptest.NewRequest("POST", "/api/v1/invitations/accept", body), 9, "other@example.com")
		rec := do(server, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "different email")
	})
}

func TestPendingInvitationsHandler(t *testing.T) {
	service := &mockFarmService{
		pendingInvitationsFunc: func(email string) ([]*farms.PendingInvitation, error) {
			assert.Equal(t, "newhand@example.com", email)
			return []*farms.PendingInvitation{
				{ID: 1, FarmID: 42, FarmName: "Hill Farm", RoleName: "WORKER"},
			}, nil
		},
	}
	server, _ := newTestServer(t, service, allowResolver{})

	req := authenticated(httptest.NewRequest("GET", "/api/v1/invitations/pending", nil), 8, "newhand@example.com")
	rec := do(server, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hill Farm")
}
