package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"winery-backend/bootstrap"
	"winery-backend/internal/config"
	"winery-backend/internal/interfaces/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	bootstrap.ConfigureLogging(cfg.Env)
	app, db, rdb, err := router.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app create")
	}

	// Verify connections before listening
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal().Err(err).Msg("postgres: get DB")
		}
		if err := sqlDB.Ping(); err != nil {
			log.Fatal().Err(err).Msg("postgres connection failed")
		}
		log.Info().Msg("postgres connected")
	} else {
		log.Warn().Msg("no DATABASE_URL: snapshots and wine events are disabled")
	}
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	log.Info().Msg("redis connected")

	log.Info().Str("port", cfg.Port).Msgf("server running at http://localhost:%s (health: /health/json)", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
}
