package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reviewhub/review-api/internal/api"
	"github.com/reviewhub/review-api/internal/core/ports"
	"github.com/reviewhub/review-api/internal/infrastructure/config"
	mongostore "github.com/reviewhub/review-api/internal/infrastructure/db/mongo"
	redisstore "github.com/reviewhub/review-api/internal/infrastructure/db/redis"
	"github.com/reviewhub/review-api/internal/infrastructure/email"
	"github.com/reviewhub/review-api/internal/infrastructure/queue"
	"github.com/reviewhub/review-api/pkg/logger"
)

// @title           Review Platform API
// @version         1.0
// @description     Review aggregation service: titles, reviews, comments and
// @description     passwordless account management.
// @BasePath        /v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	// --- Redis ---
	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	throttle := redisstore.NewSignupThrottle(rdb, cfg.Signup.ThrottleLimit, cfg.Signup.ThrottleWindow)

	// --- Confirmation code transport ---
	var mailer ports.Mailer
	if cfg.SMTP.Enabled {
		mailer = email.NewSMTPMailer(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			From:     cfg.SMTP.From,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
		}, log)
	} else {
		log.Warn().Msg("smtp disabled, confirmation codes are logged instead of mailed")
		mailer = email.NewLogMailer(log)
	}

	// --- Async audit trail ---
	audit := queue.NewAuditDispatcher(cfg.AuditWorkers, mongostore.NewAuditRepository(db), log)
	audit.Start(ctx)

	e := api.NewRouter(cfg, api.Dependencies{
		DB:       db,
		Redis:    rdb,
		Mailer:   mailer,
		Throttle: throttle,
		Audit:    audit,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info().Err(err).Msg("http server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("review api started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("shutdown complete")
}
