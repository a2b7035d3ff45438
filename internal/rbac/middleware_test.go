package rbac_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/certiflow/certiflow/internal/rbac"

	"github.com/stretchr/testify/assert"
)

func serve(t *testing.T, mw func(http.Handler) http.Handler, role string) int {
	t.Helper()
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if role != "" {
		req = req.WithContext(rbac.WithRole(req.Context(), role))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRequire(t *testing.T) {
	assert.Equal(t, http.StatusOK, serve(t, rbac.Require("session:create"), "candidate"))
	assert.Equal(t, http.StatusForbidden, serve(t, rbac.Require("exam:create"), "candidate"))
	assert.Equal(t, http.StatusForbidden, serve(t, rbac.Require("exam:view"), ""))
	assert.Equal(t, http.StatusOK, serve(t, rbac.Require("exam:create"), "admin"))
}

func TestRequireAny(t *testing.T) {
	mw := rbac.RequireAny("session:view-own", "session:view-all")
	assert.Equal(t, http.StatusOK, serve(t, mw, "candidate"))
	assert.Equal(t, http.StatusOK, serve(t, mw, "marker"))
	assert.Equal(t, http.StatusForbidden, serve(t, mw, "nobody"))
}

func TestRequireOwnerOr(t *testing.T) {
	owner := func(own bool) func(r *http.Request) bool {
		return func(r *http.Request) bool { return own }
	}

	// Owner passes regardless of role.
	assert.Equal(t, http.StatusOK, serve(t, rbac.RequireOwnerOr("session:view-all", owner(true)), "candidate"))
	// Non-owner needs the permission.
	assert.Equal(t, http.StatusOK, serve(t, rbac.RequireOwnerOr("session:view-all", owner(false)), "marker"))
	assert.Equal(t, http.StatusForbidden, serve(t, rbac.RequireOwnerOr("session:view-all", owner(false)), "candidate"))
}
