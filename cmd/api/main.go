package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"labmatch/internal/app"
	"labmatch/internal/config"
	"labmatch/internal/database"
	"labmatch/internal/dbx"
	apphttp "labmatch/internal/http"
	"labmatch/internal/http/handlers"
	httpmw "labmatch/internal/http/middleware"
	"labmatch/internal/observability"
	"labmatch/internal/repository/postgres"
	"labmatch/internal/security"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger()

	db, err := database.NewPostgres(database.PostgresConfig{
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxIdle:     cfg.DBConnMaxIdle,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer db.Close()

	if cfg.RunMigrations {
		if err := database.RunMigrations(context.Background(), db); err != nil {
			logger.Fatal().Err(err).Msg("migrations failed")
		}
	}

	userRepo := postgres.NewUserRepository(db)
	projectRepo := postgres.NewProjectRepository(db)
	applicationRepo := postgres.NewApplicationRepository(db)
	runner := dbx.NewRunner(db)

	applicationService := app.NewApplicationService(applicationRepo, projectRepo, userRepo, runner, logger)
	projectService := app.NewProjectService(projectRepo, applicationService, logger)
	recommendationService := app.NewRecommendationService(projectRepo, applicationRepo, userRepo)
	userService := app.NewUserService(userRepo)

	var limiter httpmw.Limiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		client := redis.NewClient(opts)
		defer client.Close()
		limiter = httpmw.NewRedisLimiter(client)
		logger.Info().Msg("using redis rate limiter")
	} else {
		limiter = httpmw.NewMemoryLimiter()
	}

	jwtProvider := security.NewJWTProvider(cfg.JWTSecret, cfg.AccessTokenTTL)

	router := apphttp.NewRouter(apphttp.RouterDependencies{
		UserHandler:           handlers.NewUserHandler(userService),
		ProjectHandler:        handlers.NewProjectHandler(projectService),
		ApplicationHandler:    handlers.NewApplicationHandler(applicationService, limiter),
		RecommendationHandler: handlers.NewRecommendationHandler(recommendationService),
		AuthMiddleware:        httpmw.NewAuthMiddleware(jwtProvider),
		Limiter:               limiter,
		RequestTimeout:        cfg.RequestTimeout,
		CORSOrigins:           cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("API started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("shutdown failed")
	}
	logger.Info().Msg("server stopped cleanly")
}
