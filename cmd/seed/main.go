package main

import (
	"context"
	"os"

	"catalog/internal/auth"
	"catalog/internal/config"
	"catalog/internal/db"
	"catalog/internal/logging"
	"catalog/internal/repository"
	"catalog/internal/service"
)

// Seed runs the schema migration and creates the bootstrap admin.
// Set RESET_DB=true to drop the catalog tables first.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info").Error("load config", "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)
	ctx := context.Background()

	gormDB, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseDSN, log)
	if err != nil {
		log.Error("connect to database", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	log.Info("connected to database", "driver", cfg.DBDriver)

	if os.Getenv("RESET_DB") == "true" {
		log.Warn("RESET_DB=true detected, dropping catalog tables")
		if err := db.Reset(gormDB); err != nil {
			log.Error("reset database", "error", err)
			os.Exit(1)
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Error("run migrations", "error", err)
		os.Exit(1)
	}
	log.Info("database migrations completed")

	users := service.NewUserService(repository.NewUserRepository(gormDB), auth.NewBcryptHasher(0))
	created, err := service.SeedAdmin(ctx, users, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		log.Error("seed admin", "error", err)
		os.Exit(1)
	}
	if created {
		log.Info("bootstrap admin created", "username", cfg.AdminUsername)
	} else {
		log.Info("bootstrap admin already present", "username", cfg.AdminUsername)
	}
}
