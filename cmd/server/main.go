package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/doit-app/challenge-arena-go/internal/auth"
	"github.com/doit-app/challenge-arena-go/internal/config"
	"github.com/doit-app/challenge-arena-go/internal/db"
	"github.com/doit-app/challenge-arena-go/internal/handler"
	"github.com/doit-app/challenge-arena-go/internal/middleware"
	"github.com/doit-app/challenge-arena-go/internal/repository"
	"github.com/doit-app/challenge-arena-go/internal/service"
	"github.com/doit-app/challenge-arena-go/internal/service/groq"
	"github.com/doit-app/challenge-arena-go/internal/snapshot"
	"github.com/doit-app/challenge-arena-go/internal/storage"
	"github.com/doit-app/challenge-arena-go/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		logger.Log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close(pool)

	logger.Log.Info("database connection established",
		zap.String("host", cfg.Database.Host),
		zap.String("name", cfg.Database.Name),
	)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Log.Warn("redis unavailable, voted-set cache will fail open", zap.Error(err))
	}

	var publisher *service.EventPublisher
	if cfg.RabbitMQ.Host != "" {
		publisher, err = service.NewEventPublisher(&cfg.RabbitMQ)
		if err != nil {
			logger.Log.Warn("rabbitmq unavailable, engagement events will not be published", zap.Error(err))
		} else {
			defer publisher.Close()
		}
	} else {
		logger.Log.Info("rabbitmq not configured, engagement events disabled")
	}

	videoRepo := repository.NewVideoRepository(pool)
	voteRepo := repository.NewVoteRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)

	authClient := auth.NewClient(cfg.Auth.BaseURL, cfg.Auth.AnonKey, cfg.Auth.JWTSecret)
	storageClient := storage.NewClient(cfg.Storage.BaseURL)

	groqClient := groq.NewClient(groq.Config{
		BaseURL: cfg.Groq.BaseURL,
		APIKey:  cfg.Groq.APIKey,
		Model:   cfg.Groq.Model,
		Timeout: cfg.Groq.Timeout,
	})
	if groqClient.Available() {
		logger.Log.Info("groq topic generation enabled", zap.String("model", cfg.Groq.Model))
	} else {
		logger.Log.Info("groq api key not configured, topics use the daily fallback shuffle")
	}

	snapshotStore := snapshot.NewStore(cfg.Snapshot.Path)

	topicService := service.NewTopicService(groqClient, snapshotStore)
	votedSet := service.NewVotedSetCache(redisClient, voteRepo)
	catalog := service.NewCatalog(videoRepo, voteRepo, commentRepo, votedSet, publisher)
	identity := service.NewIdentityService(authClient, profileRepo, storageClient, publisher)
	challenge := service.NewChallengeService()
	arenaSessions := service.NewArenaManager()

	rotation := service.NewRotationWorker(topicService, challenge, time.Minute)
	go rotation.Start(ctx)

	bearerAuth := middleware.NewBearerAuth(authClient)

	router := handler.NewRouter(handler.Handlers{
		Auth:    handler.NewAuthHandler(identity),
		Topics:  handler.NewTopicHandler(topicService),
		Videos:  handler.NewVideoHandler(catalog, topicService, identity),
		Arena:   handler.NewArenaHandler(arenaSessions, catalog, topicService, identity, &cfg.Arena),
		Profile: handler.NewProfileHandler(identity, challenge),
		Health:  handler.NewHealthHandler(pool, redisClient, publisher),
	}, bearerAuth, cfg.Server.CORSOrigin)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Log.Info("server starting", zap.Int("port", cfg.Server.Port))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Log.Fatal("server error", zap.Error(err))
	case sig := <-shutdown:
		logger.Log.Info("shutdown signal received", zap.String("signal", sig.String()))

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("graceful shutdown failed", zap.Error(err))
			if err := server.Close(); err != nil {
				logger.Log.Error("failed to close server", zap.Error(err))
			}
			os.Exit(1)
		}

		logger.Log.Info("server stopped gracefully")
	}
}
