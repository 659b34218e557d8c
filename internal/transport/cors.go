package transport

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization"
)

// CORS echoes the request origin only when it exactly matches an allow-list
// entry; other origins get no Access-Control-Allow-Origin header. Preflight
// requests to any path are answered with 200 and an empty body.
func CORS(allowedOrigins []string) fiber.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			allowed[trimmed] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		c.Vary(fiber.HeaderOrigin)

		if origin := c.Get(fiber.HeaderOrigin); origin != "" {
			if _, ok := allowed[origin]; ok {
				c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
			}
		}
		c.Set(fiber.HeaderAccessControlAllowMethods, corsAllowMethods)
		c.Set(fiber.HeaderAccessControlAllowHeaders, corsAllowHeaders)

		if c.Method() == fiber.MethodOptions {
			c.Status(fiber.StatusOK)
			c.Response().ResetBody()
			return nil
		}

		return c.Next()
	}
}
