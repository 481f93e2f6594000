package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanzalakhan/portfolio-backend/internal/config"
	"github.com/hanzalakhan/portfolio-backend/internal/middleware"
	"github.com/hanzalakhan/portfolio-backend/internal/model"
	"github.com/hanzalakhan/portfolio-backend/internal/portfolio"
	"github.com/hanzalakhan/portfolio-backend/internal/storage"
)

func newAdminApp(t *testing.T) (*fiber.App, *storage.MemoryBackend) {
	t.Helper()

	dir := t.TempDir()
	backend := storage.NewMemory()
	svc := portfolio.New(backend, nil, false,
		portfolio.WithPaths(filepath.Join(dir, "bundled.json"), filepath.Join(dir, "scratch.json")))

	authCfg := &config.AuthConfig{
		AuthorizedEmails: []string{"admin@example.com"},
		JWTSecret:        testSecret,
	}

	adminAuth := middleware.AdminAuth(authCfg, nil)
	checkAuth := middleware.AdminAuth(authCfg, func(c *fiber.Ctx, email string, granted bool) {
		action := model.ActionAuthDenied
		if granted {
			action = model.ActionAuthSuccess
		}
		_ = backend.LogChange(c.Context(), action, email, "Admin authorization attempt")
	})

	app := fiber.New()
	NewAdminHandler(svc, nil).RegisterRoutes(app, adminAuth, checkAuth)
	return app, backend
}

func docNamed(name string) *model.PortfolioDocument {
	return &model.PortfolioDocument{
		Personal: model.PersonalInfo{Name: name, Email: "admin@example.com"},
	}
}

func adminGet(t *testing.T, path, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return req
}

func auditActions(t *testing.T, backend *storage.MemoryBackend) []string {
	t.Helper()
	entries, err := backend.GetAuditLog(context.Background(), 50)
	require.NoError(t, err)
	actions := make([]string, 0, len(entries))
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	return actions
}

func TestCheckRouteAuditsAttempts(t *testing.T) {
	app, backend := newAdminApp(t)

	resp, err := app.Test(adminGet(t, "/api/admin/check", signToken(t, "admin@example.com")))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{model.ActionAuthSuccess}, auditActions(t, backend))

	resp, err = app.Test(adminGet(t, "/api/admin/check", signToken(t, "intruder@example.com")))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, []string{model.ActionAuthDenied, model.ActionAuthSuccess}, auditActions(t, backend))
}

func TestRoutineAdminTrafficWritesNoAudit(t *testing.T) {
	app, backend := newAdminApp(t)
	token := signToken(t, "admin@example.com")

	for _, path := range []string{"/api/admin/backup", "/api/admin/health", "/api/admin/dashboard"} {
		resp, err := app.Test(adminGet(t, path, token))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
	}

	assert.Empty(t, auditActions(t, backend))
}

func TestDashboardAggregates(t *testing.T) {
	app, backend := newAdminApp(t)
	ctx := context.Background()
	token := signToken(t, "admin@example.com")

	require.NoError(t, backend.SavePortfolioData(ctx, docNamed("v1"), "admin@example.com"))
	require.NoError(t, backend.SavePortfolioData(ctx, docNamed("v2"), "admin@example.com"))

	resp, err := app.Test(adminGet(t, "/api/admin/dashboard", token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			RecentActivity   []model.AuditLogEntry `json:"recentActivity"`
			AvailableBackups []model.BackupInfo    `json:"availableBackups"`
			AdminEmail       string                `json:"adminEmail"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Data.RecentActivity, 2)
	assert.Len(t, body.Data.AvailableBackups, 1)
	assert.Equal(t, "admin@example.com", body.Data.AdminEmail)
}
