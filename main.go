package main

import (
	"os"
	"path/filepath"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/strady/imo-backend/internal/api"
	"github.com/strady/imo-backend/internal/config"
	"github.com/strady/imo-backend/internal/rates"
)

var version = "1.0.0"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg := config.Load()
	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// The upload slot's directory must exist before the first request, not
	// be created lazily at upload time.
	if err := os.MkdirAll(filepath.Dir(cfg.RatesFile), 0o755); err != nil {
		log.Fatal().Err(err).Str("path", cfg.RatesFile).Msg("could not create data directory")
	}

	store := rates.NewStore(cfg.RatesFile)
	if err := store.Reload(); err != nil {
		log.Fatal().Err(err).Msg("initial rate table load failed")
	}

	// Uploads have no declared size limit; fiber's 4MB default is too small
	// for real rate spreadsheets.
	app := fiber.New(fiber.Config{
		AppName:   "strady-imo-backend",
		BodyLimit: 100 * 1024 * 1024,
	})

	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/openapi.json",
		Path:     "docs",
		Title:    "Strady Imo API",
	}))

	h := &api.Handler{
		Store:    store,
		Receiver: &rates.Receiver{Store: store},
	}
	h.RegisterRoutes(app)

	log.Info().
		Str("port", cfg.Port).
		Str("version", version).
		Str("rates_file", cfg.RatesFile).
		Msg("starting Strady Imo backend")

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
