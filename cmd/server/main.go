package main

import (
	"github.com/rs/zerolog/log"

	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/logger"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/router"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/pkg/config"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger.Init(cfg.Env)

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize databases")
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, db.Mongo)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
