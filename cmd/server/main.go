package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tunequiz/internal/cache"
	"tunequiz/internal/catalog"
	"tunequiz/internal/config"
	"tunequiz/internal/game"
	"tunequiz/internal/service"
	"tunequiz/internal/transport/rest"
	"tunequiz/internal/transport/ws"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping MongoDB")
	}
	logger.Info().Msg("connected to MongoDB")

	// Redis connection
	redisAddr := cfg.RedisAddr
	if len(redisAddr) > 8 && redisAddr[:8] == "redis://" {
		redisAddr = redisAddr[8:]
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping Redis")
	}
	logger.Info().Msg("connected to Redis")

	// Catalog and caches
	movies := catalog.NewMovieRepo(mongoClient, cfg.MongoDB)
	trackCache := cache.NewTrackCache(rdb)
	scores := cache.NewScoreMirror(rdb, logger)

	// Services
	tokens := service.NewTokenService(cfg.JWTSecret)
	saavn := service.NewSaavnClient(cfg.TrackSearchURL, logger)
	tracks := service.NewTrackService(movies, saavn, trackCache, logger)
	suggestions := service.NewSuggestionService(movies)

	// Room registry
	registry := game.NewRegistry(cfg.MaxRooms, game.Policy{
		MaxPlayers:     cfg.MaxPlayers,
		RevealDuration: cfg.RevealDuration,
		ReconnectGrace: cfg.ReconnectGrace,
		RequireReady:   cfg.RequireReady,
	}, game.Deps{
		Clock:  game.NewClock(),
		Tracks: tracks,
		Mirror: scores,
		Logger: logger,
	})

	stopReaper := make(chan struct{})
	go registry.RunReaper(cfg.ReapInterval, cfg.ReconnectGrace, stopReaper)

	wsHandler := ws.NewHandler(registry, tokens, suggestions, cfg.ActionsPerSec, cfg.ActionBurst, logger)

	router := rest.NewRouter(&rest.Container{
		Registry:  registry,
		Tokens:    tokens,
		Scores:    scores,
		WSHandler: wsHandler,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen and serve")
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	close(stopReaper)
	registry.CloseAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("forced shutdown")
	}

	logger.Info().Msg("server exited")
}
