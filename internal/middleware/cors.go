package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"winery-backend/internal/pkg/response"
)

// CORSConfig holds CORS configuration. AllowedSuffix may list several suffixes separated by commas.
type CORSConfig struct {
	AllowedSuffix string
	DevPassword   string
}

// CORS allows origins ending with one of the configured suffixes, localhost preflights, and
// requests carrying the dev-password header. Credentials are allowed so the wallet cookie travels.
func CORS(cfg CORSConfig) fiber.Handler {
	var suffixes []string
	for _, s := range strings.Split(cfg.AllowedSuffix, ",") {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			suffixes = append(suffixes, s)
		}
	}
	matches := func(origin string) bool {
		origin = strings.ToLower(origin)
		for _, s := range suffixes {
			if strings.HasSuffix(origin, s) {
				return true
			}
		}
		return false
	}

	return func(c *fiber.Ctx) error {
		c.Vary(fiber.HeaderOrigin)
		origin := c.Get(fiber.HeaderOrigin)
		if origin == "" {
			return c.Next()
		}
		preflight := c.Method() == fiber.MethodOptions

		switch {
		case preflight && isLocalOrigin(origin), matches(origin):
			setCORSHeaders(c, origin)
			if preflight {
				return c.SendStatus(fiber.StatusNoContent)
			}
			return c.Next()
		case cfg.DevPassword != "" && c.Get("dev-password") == cfg.DevPassword:
			setCORSHeaders(c, origin)
			return c.Next()
		}
		return response.Error(c, "Not allowed by CORS", fiber.StatusForbidden, nil)
	}
}

func isLocalOrigin(origin string) bool {
	return strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")
}

func setCORSHeaders(c *fiber.Ctx, origin string) {
	c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
	c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
	c.Set(fiber.HeaderAccessControlAllowHeaders, "Content-Type, dev-password, "+traceIDHeader)
	c.Set(fiber.HeaderAccessControlAllowMethods, "GET, POST, DELETE, OPTIONS")
	c.Set(fiber.HeaderAccessControlExposeHeaders, traceIDHeader)
}
