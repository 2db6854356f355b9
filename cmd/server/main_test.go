package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockmate/internal/auth"
	"mockmate/internal/config"
	"mockmate/internal/handlers"
	"mockmate/internal/models"
	"mockmate/internal/routers"
	"mockmate/internal/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"serve", "migrate", "token"} {
		assert.True(t, names[name], "missing subcommand %s", name)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("env-file"))
}

func TestLoadEnvFile(t *testing.T) {
	require.NoError(t, loadEnvFile(""))
	require.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MOCKMATE_TEST_VALUE=from-file\n"), 0o600))
	t.Setenv("MOCKMATE_TEST_VALUE", "")
	os.Unsetenv("MOCKMATE_TEST_VALUE")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("MOCKMATE_TEST_VALUE"))
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"token", "--env-file", "", "--user", "user-7", "--ttl", "1h"})
	require.NoError(t, root.Execute())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(out.String()))
	claims, err := auth.VerifyToken(req, testSecret)
	require.NoError(t, err)
	id, err := auth.GetUserIDFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "user-7", id)
}

func TestTokenCommandRequiresUser(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"token", "--env-file", ""})
	assert.Error(t, root.Execute())
}

func TestOpenStoreSQLite(t *testing.T) {
	store, err := openStore(context.Background(), config.StoreConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "mockmate.db"),
	})
	require.NoError(t, err)
	defer store.Close(context.Background())

	require.NoError(t, store.Ping(context.Background()))
	require.NoError(t, store.Interviews.Create(context.Background(), &models.InterviewProfile{
		ID: "iv-1", UserID: "user-1", Position: "Engineer", Description: "Writes Go services",
		TechStack: "Go", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))
	got, err := store.Interviews.GetByID(context.Background(), "iv-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
}

func TestOpenStoreUnsupported(t *testing.T) {
	_, err := openStore(context.Background(), config.StoreConfig{Driver: "cassandra"})
	assert.Error(t, err)
}

func TestRouterMiddlewareStack(t *testing.T) {
	cfg := &config.Config{
		JWT:  config.JWTConfig{Secret: testSecret},
		HTTP: config.HTTPConfig{RequestTimeout: time.Minute},
		CORS: config.CORSConfig{TrustedOrigins: []string{"http://localhost:5173"}},
	}
	registry := session.NewRegistry(nil, nil, 0, nil)
	router := newRouter(cfg, handlers.NewHealthHandler(nil, nil, cfg, nil), routers.APIHandlers{
		Interviews:  handlers.NewInterviewHandler(nil, nil),
		Sessions:    handlers.NewSessionHandler(nil, registry, cfg.CORSOrigins(), nil),
		Preferences: handlers.NewPreferenceHandler(nil, nil),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/interviews", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	preflight := httptest.NewRequest(http.MethodOptions, "/api/v1/interviews", nil)
	preflight.Header.Set("Origin", "http://localhost:5173")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, preflight)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mockmate_http_requests_total")
}
