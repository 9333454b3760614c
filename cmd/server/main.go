package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"catalog/docs"
	"catalog/internal/auth"
	"catalog/internal/cache"
	"catalog/internal/config"
	"catalog/internal/db"
	"catalog/internal/events"
	"catalog/internal/handler"
	"catalog/internal/logging"
	"catalog/internal/middleware"
	"catalog/internal/repository"
	"catalog/internal/router"
	"catalog/internal/service"
)

// @title Catalog API
// @version 1.0
// @description Product catalog API with JWT authentication and owner/admin authorization.
// @contact.email admin@example.com
// @license.name MIT License
// @license.url https://opensource.org/licenses/MIT
// @host localhost:5001
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info").Error("load config", "error", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel)
	if cfg.UsesDefaultSecret() {
		log.Warn("JWT_SECRET_KEY is not set; tokens are signed with the development key")
	}

	ctx := context.Background()
	gormDB, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseDSN, log)
	if err != nil {
		log.Error("database init", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}

	// Repositories and core services
	userRepo := repository.NewUserRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	userService := service.NewUserService(userRepo, auth.NewBcryptHasher(0))
	authService := service.NewAuthService(userService, jwtService)

	if cfg.AutoMigrate {
		if err := db.Migrate(gormDB); err != nil {
			log.Error("auto-migrate", "error", err)
			os.Exit(1)
		}
		created, err := service.SeedAdmin(ctx, userService, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			log.Error("seed admin", "error", err)
			os.Exit(1)
		}
		if created {
			log.Info("bootstrap admin created", "username", cfg.AdminUsername)
		}
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if cacheClient != nil {
		if err := cacheClient.Ping(ctx); err != nil {
			log.Warn("redis unreachable, product cache degrades to misses", "addr", cfg.RedisAddr, "error", err)
		}
	}
	publisher := events.New(cfg.KafkaBrokers, cfg.KafkaTopic)

	productService := service.NewProductService(productRepo, cacheClient, publisher)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	router.Register(e, cfg, log, middleware.NewAuthenticator(jwtService, authService), router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Product: handler.NewProductHandler(productService),
		User:    handler.NewUserHandler(userService),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}
	log.Info("swagger documentation available", "url", "http://"+docs.SwaggerInfo.Host+"/apidocs/index.html")

	go func() {
		addr := ":" + cfg.ServerPort
		log.Info("server starting", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
	if err := publisher.Close(); err != nil {
		log.Warn("close event publisher", "error", err)
	}
	if err := cacheClient.Close(); err != nil {
		log.Warn("close cache", "error", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
