package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joakmannn/SocialMed/internal/app/registry"
	"github.com/joakmannn/SocialMed/internal/app/server"
	"github.com/joakmannn/SocialMed/internal/app/worker"
	"github.com/joakmannn/SocialMed/internal/config"
	"github.com/joakmannn/SocialMed/internal/core/services"
	"github.com/joakmannn/SocialMed/internal/platform/logger"
	"github.com/joakmannn/SocialMed/internal/platform/telemetry"
	"github.com/joakmannn/SocialMed/internal/plugins/google"
	"github.com/joakmannn/SocialMed/internal/plugins/postgres"
	redisPlugin "github.com/joakmannn/SocialMed/internal/plugins/redis"
)

func main() {
	// Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Config
	cfg := config.Load()

	// Logger
	log := logger.NewLogger(*cfg)
	log.Info("starting application")

	otelShutdown, err := telemetry.InitTelemetry(ctx, *cfg)
	if err != nil {
		log.Error("failed to initialize telemetry", "err", err)
	}
	defer func() {
		log.Info("flushing telemetry...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", "err", err)
		}
	}()

	// Infra
	var pdb *sql.DB
	if pdb, err = postgres.New(ctx, *cfg.Postgres); err != nil {
		log.Error("postgres connection failed", "DSN", cfg.Postgres.DSN)
		return
	}
	log.Info("postgres connected")
	var rdb *redis.Client
	if rdb, err = redisPlugin.NewRedisClient(ctx, *cfg.Redis); err != nil {
		log.Error("redis connection failed", "url", cfg.Redis.URL)
		return
	}
	log.Info("redis connected")

	// Adapters
	userRepo := postgres.NewUserRepository(pdb)
	msgRepo := postgres.NewMessageRepo(pdb)
	txManager := postgres.NewTxManager(pdb)
	feed := redisPlugin.NewRedisChangeFeed(rdb, log)
	queue := redisPlugin.NewRedisEventQueue(rdb)
	badges := redisPlugin.NewRedisBadgeCache(rdb)
	sessions := redisPlugin.NewRedisSessionStore(rdb)
	identity := google.NewGoogleClient(*cfg.Google)

	// Core Services
	hub := registry.NewRegistry()
	tokenSvc := services.NewTokenService(cfg.SecretToken, cfg.SessionTTL)
	sessionSvc := services.NewSessionService(log, tokenSvc, sessions, cfg.SessionTTL)
	authSvc := services.NewAuthService(log, userRepo, sessionSvc, identity)
	convSvc := services.NewConversationService(log, msgRepo, userRepo)
	msgSvc := services.NewMessageService(log, msgRepo, feed, queue, txManager)
	receiptSvc := services.NewReceiptService(log, msgRepo, badges, hub, txManager)

	// Worker
	wrkr := worker.NewBadgeWorker(log, queue, msgRepo, badges, hub, cfg.Worker.BadgeGroup, cfg.Worker.PollInterval)
	go func() {
		if err := wrkr.Run(ctx); err != nil {
			log.Error("badge worker exited", "err", err)
		}
	}()

	// Server
	srv := server.NewServer(log, cfg.Service.Addr, cfg.Service.Name, authSvc, sessionSvc, convSvc, msgSvc, receiptSvc, hub)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "err", err)
		}
	}()
	if err := srv.Start(); err != nil {
		log.Error("server stopped", "err", err)
	}
}
