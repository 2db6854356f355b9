package routers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"mockmate/internal/auth"
	"mockmate/internal/handlers"
	"mockmate/internal/session"
)

const secret = "0123456789abcdef0123456789abcdef"

func newRouter() *chi.Mux {
	router := chi.NewRouter()
	registry := session.NewRegistry(nil, nil, 0, nil)
	HealthRoutes(router, handlers.NewHealthHandler(nil, nil, nil, nil))
	APIRoutes(router, APIHandlers{
		Interviews:  handlers.NewInterviewHandler(nil, nil),
		Sessions:    handlers.NewSessionHandler(nil, registry, nil, nil),
		Preferences: handlers.NewPreferenceHandler(nil, nil),
	}, auth.RequireUser(secret, nil), time.Minute)
	return router
}

func TestRoutesRegistered(t *testing.T) {
	router := newRouter()

	paths := map[string]bool{}
	if err := chi.Walk(router, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		paths[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("failed walking routes: %v", err)
	}

	base := "/api/v1/interviews/{id}/questions/{index}/session"
	expected := []string{
		"GET /healthz",
		"GET /readyz",
		"GET /metrics",
		"POST /api/v1/interviews",
		"GET /api/v1/interviews",
		"GET /api/v1/interviews/{id}",
		"PUT /api/v1/interviews/{id}",
		"DELETE /api/v1/interviews/{id}",
		"GET /api/v1/interviews/{id}/feedback",
		"POST " + base,
		"GET " + base,
		"DELETE " + base,
		"PUT " + base + "/segments",
		"POST " + base + "/{action}",
		"GET " + base + "/stream",
		"GET /api/v1/preferences/theme",
		"PUT /api/v1/preferences/theme",
	}

	for _, route := range expected {
		if !paths[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func TestAPIRoutesRequireAuth(t *testing.T) {
	router := newRouter()

	for _, path := range []string{
		"/api/v1/interviews",
		"/api/v1/preferences/theme",
		"/api/v1/interviews/abc/questions/0/session/stream",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected healthz to be public, got %d", rec.Code)
	}
}
