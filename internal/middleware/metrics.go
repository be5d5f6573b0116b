package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"winery-backend/internal/metrics"
)

// Metrics records request count and latency per route pattern.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}
		path := c.Route().Path
		if path == "" || path == "/" && c.Path() != "/" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Method(), path, status, time.Since(start))
		return err
	}
}
