// Package bootstrap builds the app outside internal/ so the Vercel handler and cmd/ binaries share it.
package bootstrap

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"winery-backend/internal/config"
	"winery-backend/internal/interfaces/router"
)

// ConfigureLogging sets the global zerolog logger: JSON in production, console output elsewhere.
func ConfigureLogging(env string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if os.Getenv("LOG_LEVEL") != "" {
		if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
			zerolog.SetGlobalLevel(lvl)
		}
	}
}

// New creates the Fiber app for Vercel serverless (api handler imports this package, not internal).
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	ConfigureLogging(cfg.Env)
	app, _, _, err := router.CreateApp(cfg)
	return app, err
}
