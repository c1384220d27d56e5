package validation

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(Middleware(cfg))
	app.Post("/api/identify", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"reached": true})
	})
	app.Get("/api/species", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"reached": true})
	})
	return app
}

func TestValidationRejectsWrongContentType(t *testing.T) {
	app := testApp(Config{})

	req := httptest.NewRequest(http.MethodPost, "/api/identify", strings.NewReader("image=abc"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestValidationRejectsOversizedImage(t *testing.T) {
	app := testApp(Config{MaxImageChars: 64})

	body := fmt.Sprintf(`{"image": %q}`, "data:image/jpeg;base64,"+strings.Repeat("A", 128))
	req := httptest.NewRequest(http.MethodPost, "/api/identify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestValidationPassesWellFormedRequest(t *testing.T) {
	app := testApp(Config{})

	req := httptest.NewRequest(http.MethodPost, "/api/identify",
		strings.NewReader(`{"image": "data:image/jpeg;base64,aGVsbG8="}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestValidationIgnoresOtherRoutes(t *testing.T) {
	app := testApp(Config{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/species", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
