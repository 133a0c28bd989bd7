package auth

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	authmw "commerce-sync/core/middleware/auth"
	"commerce-sync/core/middleware/rayid"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) *fiber.App {
	svc, s := setupService(t)
	app := fiber.New()
	app.Use(rayid.New())
	protect := authmw.New(authmw.Config{Tokens: svc.tokens, Load: s.FindTenant})
	NewHandler(svc, protect).RegisterRoutes(app.Group("/api"))
	return app
}

func post(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestHandleRegisterAndMe(t *testing.T) {
	app := setupTestApp(t)

	status, body := post(t, app, "/api/auth/register", `{"email":"a@shop.com","password":"secret1","shop_domain":"a.myshopify.com"}`)
	require.Equal(t, fiber.StatusCreated, status)
	tok, _ := body["token"].(string)
	require.NotEmpty(t, tok)

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Tenant map[string]any `json:"tenant"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	me := out.Tenant
	assert.Equal(t, "a@shop.com", me["email"])
	assert.Equal(t, false, me["connected"])
	assert.NotContains(t, me, "password")

	status, _ = post(t, app, "/api/auth/register", `{"email":"a@shop.com","password":"secret1","shop_domain":"b.myshopify.com"}`)
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestHandleRegister_WithAccessToken(t *testing.T) {
	app := setupTestApp(t)

	status, body := post(t, app, "/api/auth/register", `{"email":"a@shop.com","password":"secret1","shopDomain":"a.myshopify.com","accessToken":"shpat_abc"}`)
	require.Equal(t, fiber.StatusCreated, status)
	tenant, _ := body["tenant"].(map[string]any)
	assert.Equal(t, "a.myshopify.com", tenant["shop_domain"])
	assert.Equal(t, true, tenant["connected"])

	status, body = post(t, app, "/api/auth/register", `{"email":"b@shop.com","password":"secret1","shop_domain":"b.myshopify.com","access_token":"shpat_def"}`)
	require.Equal(t, fiber.StatusCreated, status)
	tenant, _ = body["tenant"].(map[string]any)
	assert.Equal(t, true, tenant["connected"])
	assert.NotContains(t, tenant, "access_token")
}

func TestHandleRegister_Invalid(t *testing.T) {
	app := setupTestApp(t)

	status, body := post(t, app, "/api/auth/register", `{"email":"a@shop.com","password":"1","shop_domain":"a.example.com"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	fields, _ := body["fields"].(map[string]any)
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "shop_domain")

	status, _ = post(t, app, "/api/auth/register", `{not json`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestHandleLogin(t *testing.T) {
	app := setupTestApp(t)
	status, _ := post(t, app, "/api/auth/register", `{"email":"a@shop.com","password":"secret1","shop_domain":"a.myshopify.com"}`)
	require.Equal(t, fiber.StatusCreated, status)

	status, body := post(t, app, "/api/auth/login", `{"email":"a@shop.com","password":"secret1"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["token"])

	status, _ = post(t, app, "/api/auth/login", `{"email":"a@shop.com","password":"wrong"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestHandleMe_Unauthorized(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/auth/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
