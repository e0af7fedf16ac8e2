package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"grindx/fittrack/internal/api"
	"grindx/fittrack/internal/config"
	"grindx/fittrack/internal/repository/mongo"
	"grindx/fittrack/internal/service"
	"grindx/fittrack/internal/storage"
	"grindx/fittrack/pkg/logger"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Init(logger.Options{})
		logger.Get().Fatal().Err(err).Msg("could not load configuration")
	}

	logger.Init(logger.Options{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
	})
	log := logger.Get()

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT secret is not configured (set JWT_SECRET)")
	}

	// --- Database Connection ---
	mongoClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to MongoDB")
	}
	defer func() {
		if err := mongo.DisconnectDB(mongoClient); err != nil {
			log.Error().Err(err).Msg("error disconnecting from MongoDB")
		}
	}()
	db := mongoClient.Database(cfg.Database.Name)

	// Index creation happens in the background so a slow or partially
	// unavailable database does not block startup.
	go func() {
		indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		mongo.EnsureUserIndexes(indexCtx, db.Collection("users"))
		mongo.EnsureWorkoutIndexes(indexCtx, db.Collection("workouts"))
		mongo.EnsureLogIndexes(indexCtx, db.Collection("logs"))
		mongo.EnsureAttachmentIndexes(indexCtx, db.Collection("attachments"))
	}()

	// --- Object Storage ---
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatal().Err(err).Msg("could not initialize object storage")
	}

	// --- Repositories ---
	userRepo := mongo.NewMongoUserRepository(db)
	workoutRepo := mongo.NewMongoWorkoutRepository(db)
	logRepo := mongo.NewMongoLogRepository(db)
	attachmentRepo := mongo.NewMongoAttachmentRepository(db)

	// --- Services ---
	tokenService := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiration)
	authService := service.NewAuthService(userRepo, tokenService)
	workoutService := service.NewWorkoutService(workoutRepo, userRepo)
	logService := service.NewLogService(logRepo, workoutRepo, userRepo, attachmentRepo, fileStorage)

	// --- HTTP Server ---
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(api.RequestLogger())

	api.SetupRoutes(router, authService, workoutService, logService, cfg.JWT.Expiration)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
