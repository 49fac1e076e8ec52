package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/DaveMolla/Emoji-Game/internal/cache"
	"github.com/DaveMolla/Emoji-Game/internal/config"
	"github.com/DaveMolla/Emoji-Game/internal/repository"
	"github.com/DaveMolla/Emoji-Game/internal/service"
	"github.com/DaveMolla/Emoji-Game/internal/transport/rest"
	"github.com/DaveMolla/Emoji-Game/internal/transport/ws"
)

// @title Emoji Game API
// @version 1.0
// @description Two-player realtime emoji matching game
// @BasePath /v1
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal().Err(err).Msg("failed to ping MongoDB")
	}
	log.Info().Msg("connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDatabase)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping Redis")
	}
	log.Info().Msg("connected to Redis")

	// WebSocket hub
	wsHub := ws.NewHub()

	// Repositories and caches
	userRepo := repository.NewUserRepo(db)
	sessionRepo := repository.NewGameSessionRepo(db)
	leaderboard := cache.NewLeaderboardCache(rdb)
	records := cache.NewRecordCache(rdb)

	// Services
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)

	gameCfg := service.DefaultGameConfig()
	gameCfg.CountdownSeconds = cfg.CountdownSeconds
	gameCfg.RoundSeconds = cfg.RoundSeconds

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	gameSvc := service.NewGameService(sessionRepo, leaderboard, records, clockwork.NewRealClock(), rng, gameCfg)
	gameSvc.SetBroadcaster(wsHub)

	router := rest.NewRouter(&rest.Container{
		AuthService: authSvc,
		GameService: gameSvc,
		Leaderboard: leaderboard,
		WSHub:       wsHub,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen and serve")
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
