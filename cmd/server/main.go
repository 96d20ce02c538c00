package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/thestackdev/loop/internal/config"
	"github.com/thestackdev/loop/internal/delivery/httpapi"
	"github.com/thestackdev/loop/internal/infra/postgres"
	"github.com/thestackdev/loop/internal/infra/postgres/repository"
	"github.com/thestackdev/loop/internal/logger"
	"github.com/thestackdev/loop/internal/service"
)

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dsn, err := cfg.DB.DSN()
	if err != nil {
		zlog.Fatal("database not configured", zap.Error(err))
	}

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
		MaxConns:        int32(cfg.DB.MaxConnections),
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	// Repositories.
	topicRepo := repository.NewTopicRepository(pool)
	subtopicRepo := repository.NewSubtopicRepository(pool)
	userTopicRepo := repository.NewUserTopicRepository(pool)
	progressRepo := repository.NewProgressRepository(pool)
	feedRepo := repository.NewFeedRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	contentRepo := repository.NewContentRepository(pool)

	// Services.
	topicService := service.NewTopicService(topicRepo, subtopicRepo, userTopicRepo)
	progressService := service.NewProgressService(progressRepo, subtopicRepo)
	sessionService := service.NewSessionService(sessionRepo, subtopicRepo, progressService)
	feedService := service.NewFeedService(feedRepo, userTopicRepo, subtopicRepo, progressRepo)
	resetService := service.NewResetService(postgres.NewTransactor(pool))

	var openaiClient *openai.Client
	if cfg.OpenAI.APIKey != "" {
		openaiClient = openai.NewClient(cfg.OpenAI.APIKey)
	} else {
		zlog.Warn("OPENAI_API_KEY not set, serving mock content")
	}
	contentService := service.NewContentService(
		contentRepo, subtopicRepo, topicRepo,
		clientOrNil(openaiClient), cfg.OpenAI.Model, zlog,
	)

	// Background feed generation.
	scheduler := service.NewFeedScheduler(feedService, userTopicRepo, cfg.Feed.CronSpec, zlog)
	go scheduler.Start(ctx)

	router := httpapi.NewRouter(httpapi.Handlers{
		Topics:   httpapi.NewTopicHandler(topicService),
		Progress: httpapi.NewProgressHandler(progressService),
		Sessions: httpapi.NewSessionHandler(sessionService),
		Feed:     httpapi.NewFeedHandler(feedService, cfg.Feed.HistoryDays),
		Content:  httpapi.NewContentHandler(contentService),
		Reset:    httpapi.NewResetHandler(resetService),
	}, zlog)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zlog.Info("http server started", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("http server shutdown failed", zap.Error(err))
	}
}

// clientOrNil keeps a typed nil *openai.Client from sneaking into the
// service's interface field as a non-nil value.
func clientOrNil(c *openai.Client) service.ChatCompleter {
	if c == nil {
		return nil
	}
	return c
}
