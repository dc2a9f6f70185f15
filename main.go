// @title AiCourse Backend API
// @version 1.0
// @description AI-assisted course generation and spaced-repetition backend.

// @host localhost:8080
// @BasePath /api

package main

import (
	"aicourse_backend/internal/app"
	"aicourse_backend/internal/config"
	"aicourse_backend/pkg/database"
	"aicourse_backend/pkg/logger"
	"flag"
	"log"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	migrate := flag.Bool("migrate", false, "force database migrations at startup, even in release mode")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *migrateOnly {
		if err := database.Migrate(application.DB); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Database migration complete, exiting")
		return
	}

	application.Run()
}
