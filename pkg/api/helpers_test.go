package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/farmhand-io/farmhand/pkg/auth"
	"github.com/farmhand-io/farmhand/pkg/contextkeys"
	"github.com/farmhand-io/farmhand/pkg/farms"
	"github.com/farmhand-io/farmhand/pkg/observability"
	"github.com/farmhand-io/farmhand/pkg/rbac"
)

// mockFarmService is a mock implementation of farms.Service for testing
type mockFarmService struct {
	createFarmFunc          func(ownerID int64, name string) (*farms.Farm, error)
	getFarmFunc             func(id int64) (*farms.Farm, error)
	listFarmsFunc           func(userID int64) ([]*farms.Farm, error)
	renameFarmFunc          func(farmID, requesterID int64, name string) (*farms.Farm, error)
	deleteFarmFunc          func(farmID, requesterID int64) error
	listMembersFunc         func(farmID int64) ([]*farms.Member, error)
	addMemberFunc           func(farmID, userID, roleID int64) error
	updateMemberRoleFunc    func(farmID, userID, roleID, requesterID int64) error
	removeMemberFunc        func(farmID, userID, requesterID int64) error
	leaveFunc               func(farmID, userID int64) error
	createInvitationFunc    func(farmID int64, email string, roleID, invitedBy int64) (*farms.Invitation, error)
	verifyInvitationFunc    func(token string) (*farms.VerifyResult, error)
	acceptInvitationFunc    func(token string, identity auth.Identity) (*farms.AcceptResult, error)
	pendingInvitationsFunc  func(email string) ([]*farms.PendingInvitation, error)
	listInvitationsFunc     func(farmID int64) ([]*farms.Invitation, error)
	revokeInvitationFunc    func(farmID, invitationID int64) error
	cleanupInvitationsFunc  func() (int64, error)
}

func (m *mockFarmService) CreateFarm(ctx context.Context, ownerID int64, name string) (*farms.Farm, error) {
	if m.createFarmFunc != nil {
		return m.createFarmFunc(ownerID, name)
	}
	return &farms.Farm{ID: 1, Name: name, OwnerID: ownerID}, nil
}

func (m *mockFarmService) GetFarm(ctx context.Context, id int64) (*farms.Farm, error) {
	if m.getFarmFunc != nil {
		return m.getFarmFunc(id)
	}
	return &farms.Farm{ID: id, Name: "Test Farm"}, nil
}

func (m *mockFarmService) ListFarms(ctx context.Context, userID int64) ([]*farms.Farm, error) {
	if m.listFarmsFunc != nil {
		return m.listFarmsFunc(userID)
	}
	return []*farms.Farm{}, nil
}

func (m *mockFarmService) RenameFarm(ctx context.Context, farmID, requesterID int64, name string) (*farms.Farm, error) {
	if m.renameFarmFunc != nil {
		return m.renameFarmFunc(farmID, requesterID, name)
	}
	return &farms.Farm{ID: farmID, Name: name}, nil
}

func (m *mockFarmService) DeleteFarm(ctx context.Context, farmID, requesterID int64) error {
	if m.deleteFarmFunc != nil {
		return m.deleteFarmFunc(farmID, requesterID)
	}
	return nil
}

func (m *mockFarmService) ListMembers(ctx context.Context, farmID int64) ([]*farms.Member, error) {
	if m.listMembersFunc != nil {
		return m.listMembersFunc(farmID)
	}
	return []*farms.Member{}, nil
}

func (m *mockFarmService) AddMember(ctx context.Context, farmID, userID, roleID int64) error {
	if m.addMemberFunc != nil {
		return m.addMemberFunc(farmID, userID, roleID)
	}
	return nil
}

func (m *mockFarmService) UpdateMemberRole(ctx context.Context, farmID, userID, roleID, requesterID int64) error {
	if m.updateMemberRoleFunc != nil {
		return m.updateMemberRoleFunc(farmID, userID, roleID, requesterID)
	}
	return nil
}

func (m *mockFarmService) RemoveMember(ctx context.Context, farmID, userID, requesterID int64) error {
	if m.removeMemberFunc != nil {
		return m.removeMemberFunc(farmID, userID, requesterID)
	}
	return nil
}

func (m *mockFarmService) Leave(ctx context.Context, farmID, userID int64) error {
	if m.leaveFunc != nil {
		return m.leaveFunc(farmID, userID)
	}
	return nil
}

func (m *mockFarmService) CreateInvitation(ctx context.Context, farmID int64, email string, roleID, invitedBy int64) (*farms.Invitation, error) {
	if m.createInvitationFunc != nil {
		return m.createInvitationFunc(farmID, email, roleID, invitedBy)
	}
	return &farms.Invitation{ID: 1, FarmID: farmID, Email: email, RoleID: roleID}, nil
}

func (m *mockFarmService) VerifyInvitation(ctx context.Context, token string) (*farms.VerifyResult, error) {
	if m.verifyInvitationFunc != nil {
		return m.verifyInvitationFunc(token)
	}
	return &farms.VerifyResult{Status: farms.VerifyReadyToAccept}, nil
}

func (m *mockFarmService) AcceptInvitation(ctx context.Context, token string, identity auth.Identity) (*farms.AcceptResult, error) {
	if m.acceptInvitationFunc != nil {
		return m.acceptInvitationFunc(token, identity)
	}
	return &farms.AcceptResult{Status: farms.AcceptJoined}, nil
}

func (m *mockFarmService) GetPendingInvitationsByEmail(ctx context.Context, email string) ([]*farms.PendingInvitation, error) {
	if m.pendingInvitationsFunc != nil {
		return m.pendingInvitationsFunc(email)
	}
	return []*farms.PendingInvitation{}, nil
}

func (m *mockFarmService) ListInvitations(ctx context.Context, farmID int64) ([]*farms.Invitation, error) {
	if m.listInvitationsFunc != nil {
		return m.listInvitationsFunc(farmID)
	}
	return []*farms.Invitation{}, nil
}

func (m *mockFarmService) RevokeInvitation(ctx context.Context, farmID, invitationID int64) error {
	if m.revokeInvitationFunc != nil {
		return m.revokeInvitationFunc(farmID, invitationID)
	}
	return nil
}

func (m *mockFarmService) CleanupExpiredInvitations(ctx context.Context) (int64, error) {
	if m.cleanupInvitationsFunc != nil {
		return m.cleanupInvitationsFunc()
	}
	return 0, nil
}

// allowResolver approves every authorization check
type allowResolver struct{}

func (allowResolver) Authorize(ctx context.Context, userID, farmID int64, required []rbac.Permission) (*rbac.Decision, error) {
	return &rbac.Decision{Allowed: true, CheckedAt: time.Now()}, nil
}

func (allowResolver) AuthorizeAny(ctx context.Context, userID, farmID int64, alternatives ...[]rbac.Permission) (*rbac.Decision, error) {
	return &rbac.Decision{Allowed: true, CheckedAt: time.Now()}, nil
}

// denyResolver rejects every authorization check with a fixed reason
type denyResolver struct {
	reason string
}

func (d denyResolver) Authorize(ctx context.Context, userID, farmID int64, required []rbac.Permission) (*rbac.Decision, error) {
	return &rbac.Decision{Allowed: false, Reason: d.reason, CheckedAt: time.Now()}, nil
}

func (d denyResolver) AuthorizeAny(ctx context.Context, userID, farmID int64, alternatives ...[]rbac.Permission) (*rbac.Decision, error) {
	return &rbac.Decision{Allowed: false, Reason: d.reason, CheckedAt: time.Now()}, nil
}

// newTestServer builds a server backed by a mock service and a sqlmock
// database for the RBAC store routes.
func newTestServer(t *testing.T, service *mockFarmService, resolver rbac.Resolver) (*Server, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	return NewServer(service, rbac.NewStore(db), resolver, logger), mock
}

// authenticated attaches an identity to the request context the way the
// identity middleware would.
func authenticated(req *http.Request, userID int64, email string) *http.Request {
	ctx := contextkeys.WithIdentity(req.Context(), &auth.Identity{UserID: userID, Email: email})
	return req.WithContext(ctx)
}

// do routes the request through the server and records the response.
func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}
