// @title Module Gate API
// @version 1.0
// @description Module access codes and research consent for student admission.

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"

	"modulegate_backend/internal/app"
	"modulegate_backend/internal/config"
	"modulegate_backend/pkg/database"
	"modulegate_backend/pkg/logger"

	"go.uber.org/zap"
)

const configDir = "configs"

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	migrate := flag.Bool("migrate", false, "run migrations on startup even in release mode")
	flag.Parse()

	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	if cfg.MigrateOnly {
		logger.InitLogger(cfg)
		defer logger.Log.Sync()
		if _, err := database.InitDB(&cfg.Database, cfg.Server.Mode, true); err != nil {
			logger.Log.Fatal("Migration failed", zap.Error(err))
		}
		logger.Log.Info("Database migration finished")
		return
	}

	application := app.NewApp(cfg, configDir)
	defer logger.Log.Sync()

	application.Run()
}
