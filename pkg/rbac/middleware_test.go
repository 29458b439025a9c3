package rbac

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/farmhand-io/farmhand/pkg/auth"
	"github.com/farmhand-io/farmhand/pkg/contextkeys"
	"github.com/farmhand-io/farmhand/pkg/observability"
)

// stubResolver returns a canned decision
type stubResolver struct {
	decision *Decision
	err      error

	gotUserID int64
	gotFarmID int64
}

func (s *stubResolver) Authorize(ctx context.Context, userID, farmID int64, required []Permission) (*Decision, error) {
	return s.AuthorizeAny(ctx, userID, farmID, required)
}

func (s *stubResolver) AuthorizeAny(ctx context.Context, userID, farmID int64, alternatives ...[]Permission) (*Decision, error) {
	s.gotUserID = userID
	s.gotFarmID = farmID
	if s.err != nil {
		return nil, s.err
	}
	return s.decision, nil
}

func permRequest(identity *auth.Identity, farmID int64) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/farms/42/fields", nil)
	ctx := req.Context()
	if identity != nil {
		ctx = contextkeys.WithIdentity(ctx, identity)
	}
	if farmID != 0 {
		ctx = contextkeys.WithFarm(ctx, farmID)
	}
	return req.WithContext(ctx)
}

func TestPermissionMiddleware(t *testing.T) {
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allows when the resolver allows", func(t *testing.T) {
		resolver := &stubResolver{decision: &Decision{Allowed: true, CheckedAt: time.Now()}}
		pm := NewPermissionMiddleware(resolver, logger)

		rec := httptest.NewRecorder()
		handler := pm.Require(PermissionFieldRead)(next)
		handler.ServeHTTP(rec, permRequest(&auth.Identity{UserID: 7}, 42))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(7), resolver.gotUserID)
		assert.Equal(t, int64(42), resolver.gotFarmID)
	})

	t.Run("unauthenticated requests get 401", func(t *testing.T) {
		resolver := &stubResolver{decision: &Decision{Allowed: true}}
		pm := NewPermissionMiddleware(resolver, logger)

		rec := httptest.NewRecorder()
		pm.Require(PermissionFieldRead)(next).ServeHTTP(rec, permRequest(nil, 42))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("denied requests get 403 with the decision reason", func(t *testing.T) {
		resolver := &stubResolver{decision: &Decision{
			Allowed: false,
			Reason:  "missing permission: FIELD_CREATE",
		}}
		pm := NewPermissionMiddleware(resolver, logger)

		rec := httptest.NewRecorder()
		pm.Require(PermissionFieldCreate)(next).ServeHTTP(rec, permRequest(&auth.Identity{UserID: 7}, 42))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "missing permission: FIELD_CREATE")
	})

	t.Run("resolver failure is a 500", func(t *testing.T) {
		resolver := &stubResolver{err: assert.AnError}
		pm := NewPermissionMiddleware(resolver, logger)

		rec := httptest.NewRecorder()
		pm.Require(PermissionFieldRead)(next).ServeHTTP(rec, permRequest(&auth.Identity{UserID: 7}, 42))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("missing farm scope is denied by the resolver contract", func(t *testing.T) {
		resolver := &stubResolver{decision: &Decision{
			Allowed: false,
			Reason:  ReasonMissingContext,
		}}
		pm := NewPermissionMiddleware(resolver, logger)

		rec := httptest.NewRecorder()
		pm.Require(PermissionFieldRead)(next).ServeHTTP(rec, permRequest(&auth.Identity{UserID: 7}, 0))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, int64(0), resolver.gotFarmID)
		assert.Contains(t, rec.Body.String(), ReasonMissingContext)
	})
}
