package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanzalakhan/portfolio-backend/internal/config"
	"github.com/hanzalakhan/portfolio-backend/internal/middleware"
	"github.com/hanzalakhan/portfolio-backend/internal/model"
	"github.com/hanzalakhan/portfolio-backend/internal/portfolio"
	"github.com/hanzalakhan/portfolio-backend/internal/security"
	"github.com/hanzalakhan/portfolio-backend/internal/storage"
)

const testSecret = "test-secret"

func newTestApp(t *testing.T) (*fiber.App, *storage.MemoryBackend) {
	t.Helper()

	dir := t.TempDir()
	backend := storage.NewMemory()
	svc := portfolio.New(backend, nil, false,
		portfolio.WithPaths(filepath.Join(dir, "bundled.json"), filepath.Join(dir, "scratch.json")))

	authCfg := &config.AuthConfig{
		AuthorizedEmails: []string{"admin@example.com"},
		JWTSecret:        testSecret,
	}

	app := fiber.New()
	adminAuth := middleware.AdminAuth(authCfg, nil)
	NewPortfolioHandler(svc, security.NewRateLimiter()).RegisterRoutes(app, adminAuth)
	return app, backend
}

func signToken(t *testing.T, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": email})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func saveRequest(t *testing.T, token string, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/portfolio", bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return req
}

func validBody(name string) []byte {
	raw, _ := json.Marshal(map[string]any{
		"personal": map[string]any{
			"name":  name,
			"title": "Developer",
			"email": "admin@example.com",
		},
	})
	return raw
}

func TestSaveRequiresToken(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(saveRequest(t, "", validBody("x")))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSaveRejectsBadSignature(t *testing.T) {
	app, _ := newTestApp(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "admin@example.com"})
	signed, err := token.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	resp, err := app.Test(saveRequest(t, signed, validBody("x")))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSaveRejectsUnlistedEmail(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(saveRequest(t, signToken(t, "intruder@example.com"), validBody("x")))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var body struct {
		AuthorizedEmails []string `json:"authorizedEmails"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.AuthorizedEmails)
	// The allow-list comes back masked, never verbatim.
	assert.NotContains(t, body.AuthorizedEmails, "admin@example.com")
	assert.Contains(t, body.AuthorizedEmails[0], "****")
}

func TestSaveAndReadBack(t *testing.T) {
	app, backend := newTestApp(t)

	resp, err := app.Test(saveRequest(t, signToken(t, "admin@example.com"), validBody("saved-name")))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var saved struct {
		Success    bool   `json:"success"`
		SavedBy    string `json:"savedBy"`
		Persistent bool   `json:"persistent"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&saved))
	assert.True(t, saved.Success)
	assert.Equal(t, "admin@example.com", saved.SavedBy)
	assert.True(t, saved.Persistent)
	assert.Equal(t, int64(1), backend.Version())

	// Public read serves the new document with caching disabled.
	getResp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/portfolio", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, getResp.StatusCode)
	assert.Contains(t, getResp.Header.Get(fiber.HeaderCacheControl), "no-store")

	raw, err := io.ReadAll(getResp.Body)
	require.NoError(t, err)
	var doc struct {
		Personal struct {
			Name string `json:"name"`
		} `json:"personal"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "saved-name", doc.Personal.Name)
}

func TestSaveValidationFailure(t *testing.T) {
	app, backend := newTestApp(t)

	body, _ := json.Marshal(map[string]any{
		"personal": map[string]any{"name": "", "title": ""},
	})
	resp, err := app.Test(saveRequest(t, signToken(t, "admin@example.com"), body))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var payload struct {
		ValidationErrors []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"validationErrors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.NotEmpty(t, payload.ValidationErrors)

	// A rejected payload writes nothing.
	assert.Equal(t, int64(0), backend.Version())
}

func TestSaveRateLimited(t *testing.T) {
	app, backend := newTestApp(t)
	token := signToken(t, "admin@example.com")

	for i := 0; i < 5; i++ {
		resp, err := app.Test(saveRequest(t, token, validBody("x")))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, "request %d", i+1)
	}

	resp, err := app.Test(saveRequest(t, token, validBody("x")))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))

	// The denied request reached no backend: five UPDATE audit rows from the
	// five accepted saves, nothing else.
	entries, err := backend.GetAuditLog(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	for _, e := range entries {
		assert.Equal(t, model.ActionUpdate, e.Action)
	}
}
