package validation

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Config struct {
	// MaxImageChars bounds the data-URL length of an uploaded photo.
	MaxImageChars int
	Logger        *zap.Logger
}

// Middleware enforces the hard limits of the identify endpoint:
// content type and payload size. Shape problems (missing image, wrong
// scheme) are left to the handler, which answers them softly.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxImageChars == 0 {
		cfg.MaxImageChars = 8 * 1024 * 1024
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost || !strings.HasSuffix(c.Path(), "/identify") {
			return c.Next()
		}

		contentType := c.Get("Content-Type")
		if contentType != "" && !strings.Contains(contentType, "application/json") {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
				"error": "Unsupported content type",
			})
		}

		var req struct {
			Image string `json:"image"`
		}
		if err := c.BodyParser(&req); err == nil && len(req.Image) > cfg.MaxImageChars {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Oversized image payload rejected",
					zap.String("ip", c.IP()),
					zap.Int("chars", len(req.Image)),
				)
			}
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error": "Image exceeds maximum size",
			})
		}

		return c.Next()
	}
}
