package api

import (
	"net/http"

	"github.com/farmhand-io/farmhand/pkg/farms"
	"github.com/farmhand-io/farmhand/pkg/httputil"
)

// createFarm handles POST /api/v1/farms
func (s *Server) createFarm(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	var req farms.CreateFarmRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	farm, err := s.service.CreateFarm(r.Context(), identity.UserID, req.Name)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteCreated(w, farm)
}

// listFarms handles GET /api/v1/farms
func (s *Server) listFarms(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	list, err := s.service.ListFarms(r.Context(), identity.UserID)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, list)
}

// getFarm handles GET /api/v1/farms/{farm_id}
func (s *Server) getFarm(w http.ResponseWriter, r *http.Request) {
	farmID, ok := httputil.ParsePathInt64OrError(w, r, "farm_id")
	if !ok {
		return
	}

	farm, err := s.service.GetFarm(r.Context(), farmID)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, farm)
}

// renameFarm handles PATCH /api/v1/farms/{farm_id}
func (s *Server) renameFarm(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	farmID, ok := httputil.ParsePathInt64OrError(w, r, "farm_id")
	if !ok {
		return
	}

	var req farms.RenameFarmRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	farm, err := s.service.RenameFarm(r.Context(), farmID, identity.UserID, req.Name)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, farm)
}

// deleteFarm handles DELETE /api/v1/farms/{farm_id}
func (s *Server) deleteFarm(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	farmID, ok := httputil.ParsePathInt64OrError(w, r, "farm_id")
	if !ok {
		return
	}

	if err := s.service.DeleteFarm(r.Context(), farmID, identity.UserID); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}
