package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	cacheapp "github.com/AzielCF/az-storage/cache/application"
	cachedomain "github.com/AzielCF/az-storage/cache/domain"
	"github.com/AzielCF/az-storage/core/config"
	settingsapp "github.com/AzielCF/az-storage/core/settings/application"
	settingsinfra "github.com/AzielCF/az-storage/core/settings/infrastructure"
	"github.com/AzielCF/az-storage/pkg/security"
	"github.com/AzielCF/az-storage/ui/rest/middleware"
)

func newApp(t *testing.T) (*fiber.App, fiber.Router, *security.Signer) {
	t.Helper()
	signer := security.NewSigner("test-secret", "az-storage", time.Hour)
	app := fiber.New()
	app.Use(middleware.Recovery())
	api := app.Group("/api", middleware.Auth(signer))
	return app, api, signer
}

func call(t *testing.T, app *fiber.App, method, path, auth, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", "Bearer "+auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func token(t *testing.T, signer *security.Signer, userID string, role security.Role) string {
	t.Helper()
	tok, err := signer.GenerateToken(userID, role)
	require.NoError(t, err)
	return tok
}

func TestCacheRoutes(t *testing.T) {
	app, api, signer := newApp(t)
	svc, err := cacheapp.NewMemoryService(config.CacheConfig{})
	require.NoError(t, err)
	InitRestCache(api, svc)

	ctx := context.Background()
	require.NoError(t, svc.Put(ctx, cachedomain.NamespaceFiles, cachedomain.StorageKey("u1"), 1))
	require.NoError(t, svc.Put(ctx, cachedomain.NamespaceSubscription, cachedomain.SubscriptionKey("u1"), 2))
	require.NoError(t, svc.Put(ctx, cachedomain.NamespaceFiles, cachedomain.StorageKey("u2"), 3))

	user := token(t, signer, "u1", security.RoleUser)
	admin := token(t, signer, "root", security.RoleAdmin)

	status, body := call(t, app, http.MethodGet, "/api/cache/stats", user, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["results"], len(cachedomain.Namespaces))

	status, body = call(t, app, http.MethodDelete, "/api/cache/me", user, "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["results"].(map[string]any)["removed"])

	status, _ = call(t, app, http.MethodPost, "/api/cache/clear", user, "")
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, app, http.MethodPost, "/api/cache/clear", admin, "")
	require.Equal(t, http.StatusOK, status)
	st, _ := svc.Store(cachedomain.NamespaceFiles)
	_, ok, _ := st.Get(ctx, cachedomain.StorageKey("u2"))
	assert.False(t, ok)

	status, body = call(t, app, http.MethodPost, "/api/cache/sweep", admin, "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["results"].(map[string]any)["removed"])

	status, _ = call(t, app, http.MethodGet, "/api/cache/stats", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHealthStatus(t *testing.T) {
	app := fiber.New()
	healthy := true
	InitRestHealth(app, map[string]HealthCheck{
		"database": func(ctx context.Context) error { return nil },
		"valkey": func(ctx context.Context) error {
			if healthy {
				return nil
			}
			return errors.New("connection refused")
		},
	})

	status, body := call(t, app, http.MethodGet, "/health/status", "", "")
	require.Equal(t, http.StatusOK, status)
	records := body["results"].([]any)
	require.Len(t, records, 2)
	assert.Equal(t, "database", records[0].(map[string]any)["name"])

	healthy = false
	status, body = call(t, app, http.MethodGet, "/health/status", "", "")
	require.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "UNHEALTHY", body["code"])
	valkey := body["results"].([]any)[1].(map[string]any)
	assert.Equal(t, false, valkey["healthy"])
	assert.Equal(t, "connection refused", valkey["error"])
}

func TestSettingsRoutes(t *testing.T) {
	app, api, signer := newApp(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := settingsinfra.NewSettingsGormRepository(db)
	require.NoError(t, repo.InitSchema(context.Background()))
	cache, err := cacheapp.NewMemoryService(config.CacheConfig{})
	require.NoError(t, err)
	InitRestSettings(api, settingsapp.NewSettingsService(repo, cache))

	admin := token(t, signer, "root", security.RoleAdmin)

	status, _ := call(t, app, http.MethodGet, "/api/admin/settings", token(t, signer, "u1", security.RoleUser), "")
	assert.Equal(t, http.StatusForbidden, status)

	status, body := call(t, app, http.MethodPut, "/api/admin/settings", admin, `{"uploads_enabled":false,"resync_concurrency":8}`)
	require.Equal(t, http.StatusOK, status, body)
	results := body["results"].(map[string]any)
	assert.Equal(t, false, results["uploads_enabled"])
	assert.EqualValues(t, 8, results["resync_concurrency"])

	status, body = call(t, app, http.MethodPut, "/api/admin/settings", admin, `{"resync_concurrency":500}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	status, body = call(t, app, http.MethodGet, "/api/admin/settings", admin, "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 8, body["results"].(map[string]any)["resync_concurrency"])
}
