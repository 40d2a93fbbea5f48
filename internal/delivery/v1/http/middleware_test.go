package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithIdentityParsesTrustedHeaders(t *testing.T) {
	var captured Identity
	handler := withIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = identityFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("X-User-ID", "42")
	req.Header.Set("X-User-Admin", "true")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, int64(42), captured.UserID)
	assert.True(t, captured.IsAdmin)
}

func TestWithIdentityIgnoresGarbageHeaders(t *testing.T) {
	var captured Identity
	handler := withIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = identityFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("X-User-ID", "not-a-number")
	req.Header.Set("X-User-Admin", "maybe")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Zero(t, captured.UserID)
	assert.False(t, captured.IsAdmin)
}

func TestRequireUserRejectsAnonymous(t *testing.T) {
	called := false
	handler := withIdentity(requireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	called := false
	handler := withIdentity(requireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})))

	// Без личности — 401
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Обычный пользователь — 403
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.Header.Set("X-User-ID", "42")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)

	// Администратор проходит
	req = httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.Header.Set("X-User-ID", "42")
	req.Header.Set("X-User-Admin", "1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.True(t, called)
}
