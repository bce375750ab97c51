// Package main is the entry point for the UniTrack API server.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: feature mapping, eligibility and prediction logic, no external deps
// - Application: use case orchestration (Commands/Queries)
// - Infrastructure: PostgreSQL, Redis, auth, model loading
// - Interface: HTTP endpoints
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/unitrack/unitrack-api/config"
	"github.com/unitrack/unitrack-api/internal/application/command"
	"github.com/unitrack/unitrack-api/internal/application/query"
	"github.com/unitrack/unitrack-api/internal/domain/course"
	"github.com/unitrack/unitrack-api/internal/domain/features"
	"github.com/unitrack/unitrack-api/internal/domain/prediction"
	"github.com/unitrack/unitrack-api/internal/infrastructure/auth"
	"github.com/unitrack/unitrack-api/internal/infrastructure/ml"
	"github.com/unitrack/unitrack-api/internal/infrastructure/persistence/postgres"
	"github.com/unitrack/unitrack-api/internal/infrastructure/persistence/redis"
	httpserver "github.com/unitrack/unitrack-api/internal/interface/http"
	"github.com/unitrack/unitrack-api/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	_ = godotenv.Load() // .env is optional; real deployments use the environment

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.App.LogLevel),
		AddCaller: cfg.IsDevelopment(),
	})
	log.Info("starting UniTrack API",
		logger.String("env", cfg.App.Environment),
		logger.String("auth_mode", cfg.Auth.Mode),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection")
		dbConn.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("running database migrations")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		redisCache   *redis.Cache
		catalogCache *redis.CatalogCache
		cachePinger  httpserver.Pinger
	)
	if cfg.Redis.Enabled {
		log.Info("connecting to Redis", logger.String("addr", cfg.Redis.Addr))
		redisCfg := redis.DefaultConfig()
		redisCfg.Addr = cfg.Redis.Addr
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", logger.Err(err))
		} else {
			defer redisCache.Close()
			catalogCache = redis.NewCatalogCache(redisCache, cfg.Redis.CacheTTL, log)
			cachePinger = redisCache
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	userRepo := postgres.NewUserRepository(dbConn)
	profileRepo := postgres.NewProfileRepository(dbConn)
	inferenceRepo := postgres.NewInferenceRepository(dbConn)

	var courseRepo course.Repository = postgres.NewCourseRepository(dbConn)
	if catalogCache != nil {
		// Placeholder creation during predictions must drop the cached
		// catalog, or new courses stay invisible until the TTL expires.
		courseRepo = redis.NewCachingCourseRepository(courseRepo, catalogCache)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. AUTH & MODEL
	// ─────────────────────────────────────────────────────────────────────────
	tokens, err := auth.NewManager(auth.Mode(cfg.Auth.Mode), cfg.Auth.Secret(), cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize auth: %w", err)
	}
	hasher := auth.NewHasher(cfg.Auth.BcryptCost)

	registry := ml.NewRegistry(cfg.Model.ArtifactPath, ml.MockVersion, log)
	engine := prediction.NewEngine(registry)
	mapper := features.NewMapper()
	adjuster := features.NewAdjuster(mapper)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	var cache query.CatalogCache
	if catalogCache != nil {
		cache = catalogCache
	}

	deps := httpserver.Dependencies{
		RegisterUser: command.NewRegisterUserHandler(userRepo, hasher, tokens),
		LoginUser:    command.NewLoginUserHandler(userRepo, hasher, tokens),
		SaveProfile:  command.NewSaveProfileHandler(userRepo, profileRepo),
		Predict:      command.NewPredictHandler(userRepo, courseRepo, profileRepo, inferenceRepo, mapper, engine, log),
		WhatIf:       command.NewWhatIfHandler(userRepo, courseRepo, profileRepo, inferenceRepo, adjuster, engine, log),

		EligibleCourses: query.NewGetEligibleCoursesHandler(profileRepo, courseRepo, cache),
		ListCourses:     query.NewListCoursesHandler(courseRepo, cache),
		GetHistory:      query.NewGetHistoryHandler(inferenceRepo),
		GetProfile:      query.NewGetProfileHandler(profileRepo),

		Tokens: tokens,
		Users:  userRepo,

		DB:    dbConn,
		Cache: cachePinger,
		Model: registry,

		Logger: log,
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	serverCfg := httpserver.DefaultConfig()
	serverCfg.Host = cfg.HTTP.Host
	serverCfg.Port = cfg.HTTP.Port
	serverCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	serverCfg.WriteTimeout = cfg.HTTP.WriteTimeout

	server := httpserver.NewServer(serverCfg, deps)
	errCh := server.StartAsync()

	log.Info("UniTrack API is ready",
		logger.String("address", server.Address()),
		logger.ModelVersion(registry.Version()),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}
