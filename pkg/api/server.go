package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/farmhand-io/farmhand/pkg/auth"
	"github.com/farmhand-io/farmhand/pkg/farms"
	"github.com/farmhand-io/farmhand/pkg/httputil"
	"github.com/farmhand-io/farmhand/pkg/middleware"
	"github.com/farmhand-io/farmhand/pkg/observability"
	"github.com/farmhand-io/farmhand/pkg/rbac"
)

// Server represents our API server
type Server struct {
	service farms.Service
	store   *rbac.Store
	perms   *rbac.PermissionMiddleware
	router  *mux.Router
	logger  *observability.Logger
}

// NewServer creates a new API server
func NewServer(service farms.Service, store *rbac.Store, resolver rbac.Resolver, logger *observability.Logger) *Server {
	s := &Server{
		service: service,
		store:   store,
		perms:   rbac.NewPermissionMiddleware(resolver, logger),
		router:  mux.NewRouter(),
		logger:  logger,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	r := s.router.PathPrefix("/api/v1").Subrouter()

	// Catalog routes (any authenticated caller)
	r.HandleFunc("/permissions", s.listPermissions).Methods("GET")
	r.HandleFunc("/roles", s.listRoles).Methods("GET")

	// Role binding routes
	r.Handle("/farms/{farm_id}/roles",
		s.perms.Require(rbac.PermissionMemberRead)(http.HandlerFunc(s.listFarmRoles))).Methods("GET")
	r.Handle("/farms/{farm_id}/roles/{role_id}/permissions/{permission_id}",
		s.perms.Require(rbac.PermissionRoleManage)(http.HandlerFunc(s.bindPermission))).Methods("POST")
	r.Handle("/farms/{farm_id}/roles/{role_id}/permissions/{permission_id}",
		s.perms.Require(rbac.PermissionRoleManage)(http.HandlerFunc(s.unbindPermission))).Methods("DELETE")

	// Farm routes
	r.HandleFunc("/farms", s.createFarm).Methods("POST")
	r.HandleFunc("/farms", s.listFarms).Methods("GET")
	r.Handle("/farms/{farm_id}",
		s.perms.Require(rbac.PermissionMemberRead)(http.HandlerFunc(s.getFarm))).Methods("GET")
	r.Handle("/farms/{farm_id}",
		s.perms.Require(rbac.PermissionFarmManage)(http.HandlerFunc(s.renameFarm))).Methods("PATCH")
	r.Handle("/farms/{farm_id}",
		s.perms.Require(rbac.PermissionFarmManage)(http.HandlerFunc(s.deleteFarm))).Methods("DELETE")

	// Membership routes
	r.Handle("/farms/{farm_id}/members",
		s.perms.Require(rbac.PermissionMemberRead)(http.HandlerFunc(s.listMembers))).Methods("GET")
	r.Handle("/farms/{farm_id}/members",
		s.perms.Require(rbac.PermissionMemberManage)(http.HandlerFunc(s.addMember))).Methods("POST")
	r.Handle("/farms/{farm_id}/members/{user_id}",
		s.perms.Require(rbac.PermissionMemberManage)(http.HandlerFunc(s.updateMemberRole))).Methods("PATCH")
	r.Handle("/farms/{farm_id}/members/{user_id}",
		s.perms.Require(rbac.PermissionMemberManage)(http.HandlerFunc(s.removeMember))).Methods("DELETE")
	r.HandleFunc("/farms/{farm_id}/leave", s.leaveFarm).Methods("POST")

	// Invitation routes (farm side)
	r.Handle("/farms/{farm_id}/invitations",
		s.perms.Require(rbac.PermissionInviteCreate)(http.HandlerFunc(s.createInvitation))).Methods("POST")
	r.Handle("/farms/{farm_id}/invitations",
		s.perms.RequireAny(
			[]rbac.Permission{rbac.PermissionInviteCreate},
			[]rbac.Permission{rbac.PermissionMemberManage},
		)(http.HandlerFunc(s.listInvitations))).Methods("GET")
	r.Handle("/farms/{farm_id}/invitations/{invitation_id}",
		s.perms.RequireAny(
			[]rbac.Permission{rbac.PermissionInviteCreate},
			[]rbac.Permission{rbac.PermissionMemberManage},
		)(http.HandlerFunc(s.revokeInvitation))).Methods("DELETE")

	// Invitation routes (invitee side). Verify is a pre-login probe and
	// carries no identity.
	r.HandleFunc("/invitations/verify", s.verifyInvitation).Methods("GET")
	r.HandleFunc("/invitations/accept", s.acceptInvitation).Methods("POST")
	r.HandleFunc("/invitations/pending", s.pendingInvitations).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the underlying router so callers can wrap it with
// middleware chains.
func (s *Server) Router() *mux.Router {
	return s.router
}

// requireIdentity extracts the authenticated identity or writes a 401.
func (s *Server) requireIdentity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	identity := middleware.GetIdentity(r)
	if identity == nil {
		httputil.WriteUnauthorized(w, "authentication required")
		return nil, false
	}
	return identity, true
}
