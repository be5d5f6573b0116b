package middleware

import (
	"winery-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RequireWallet ensures a wallet is connected in the session. Returns 401 with standard error format if not.
func RequireWallet() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetWallet(c) == "" {
			return response.Unauthorized(c, "Connect a wallet first")
		}
		return c.Next()
	}
}
