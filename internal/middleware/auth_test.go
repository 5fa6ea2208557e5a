package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman121K/social-backend/internal/token"
)

func authApp(tokens *token.Manager) *fiber.App {
	app := fiber.New()
	app.Get("/me", Auth(tokens), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userId": c.Locals("user_id")})
	})
	return app
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	app := authApp(token.NewManager("secret", time.Hour))

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRejectsMalformedHeader(t *testing.T) {
	app := authApp(token.NewManager("secret", time.Hour))

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "garbage")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRejectsBadToken(t *testing.T) {
	app := authApp(token.NewManager("secret", time.Hour))

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthAcceptsValidToken(t *testing.T) {
	tokens := token.NewManager("secret", time.Hour)
	app := authApp(tokens)

	tok, err := tokens.Issue("user-42", time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
