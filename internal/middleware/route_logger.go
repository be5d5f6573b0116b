package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RouteLogger logs one line per request with status, duration and the connected wallet.
// Server errors log at error level, client errors at warn.
func RouteLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			status = fiber.StatusInternalServerError
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		l := zerolog.Ctx(c.UserContext())
		if l.GetLevel() == zerolog.Disabled {
			l = &log.Logger
		}
		ev := l.Info()
		switch {
		case status >= 500:
			ev = l.Error().Err(err)
		case status >= 400:
			ev = l.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Int64("ms", time.Since(start).Milliseconds()).
			Str("wallet", GetWallet(c)).
			Msg("request")
		return err
	}
}
