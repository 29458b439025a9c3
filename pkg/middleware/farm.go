package middleware

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/farmhand-io/farmhand/pkg/contextkeys"
	"github.com/farmhand-io/farmhand/pkg/httputil"
)

const farmIDHeader = "X-Farm-ID"

// FarmContext resolves the tenant scope of the request from the
// {farm_id} path variable, falling back to the X-Farm-ID header.
// Selecting a farm grants nothing: the permission middleware decides
// whether the caller may act within it.
func FarmContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := mux.Vars(r)["farm_id"]
		if raw == "" {
			raw = r.Header.Get(farmIDHeader)
		}
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		farmID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || farmID <= 0 {
			httputil.WriteBadRequest(w, "invalid farm id")
			return
		}

		ctx := contextkeys.WithFarm(r.Context(), farmID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SelectedFarmID returns the farm scope of the request, or 0 when no
// farm was selected.
func SelectedFarmID(r *http.Request) int64 {
	v := r.Context().Value(contextkeys.FarmKey)
	if v == nil {
		return 0
	}
	farmID, ok := v.(int64)
	if !ok {
		return 0
	}
	return farmID
}
