package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgError "github.com/AzielCF/az-storage/pkg/error"
	"github.com/AzielCF/az-storage/pkg/security"
)

func TestAuth(t *testing.T) {
	signer := security.NewSigner("secret", "az-storage", time.Hour)
	app := fiber.New()
	app.Get("/me", Auth(signer), func(c *fiber.Ctx) error { return c.SendString(UserID(c)) })
	app.Get("/admin", Auth(signer), RequireRole(security.RoleAdmin), func(c *fiber.Ctx) error { return c.SendString("ok") })

	userToken, err := signer.GenerateToken("u1", security.RoleUser)
	require.NoError(t, err)

	cases := []struct {
		path   string
		header string
		status int
	}{
		{"/me", "", http.StatusUnauthorized},
		{"/me", "Basic abc", http.StatusUnauthorized},
		{"/me", "Bearer garbage", http.StatusUnauthorized},
		{"/me", "Bearer " + userToken, http.StatusOK},
		{"/admin", "Bearer " + userToken, http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tc.status, resp.StatusCode, tc.header)

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		switch tc.status {
		case http.StatusOK:
			assert.Equal(t, "u1", string(body))
		case http.StatusUnauthorized:
			assert.JSONEq(t, `{"error":"Unauthorized"}`, string(body))
		}
	}
}

func TestRecovery(t *testing.T) {
	app := fiber.New()
	app.Use(Recovery())
	app.Get("/typed", func(c *fiber.Ctx) error { panic(pkgError.ValidationError("bad input")) })
	app.Get("/plain", func(c *fiber.Ctx) error { panic("boom") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/typed", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"status":400,"code":"VALIDATION_ERROR","message":"bad input"}`, string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/plain", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
