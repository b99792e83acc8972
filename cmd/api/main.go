package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/BruksfildServices01/booking-crm/internal/audit"
	"github.com/BruksfildServices01/booking-crm/internal/config"
	dbpkg "github.com/BruksfildServices01/booking-crm/internal/db"
	"github.com/BruksfildServices01/booking-crm/internal/logging"
	"github.com/BruksfildServices01/booking-crm/internal/metrics"
	"github.com/BruksfildServices01/booking-crm/internal/routes"
	"github.com/BruksfildServices01/booking-crm/internal/session"
	"github.com/BruksfildServices01/booking-crm/internal/webhook"
)

func main() {

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	db, err := dbpkg.NewDB(cfg, logger)
	if err != nil {
		logger.Error("failed to connect database", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	sessions := session.NewRedisStore(rdb, cfg.SessionTTL)
	if err := sessions.Ping(context.Background()); err != nil {
		// o funil falha por requisição até o redis voltar
		logger.Warn("redis unavailable at startup", "addr", cfg.RedisAddr, "error", err)
	}

	m := metrics.NewBookingMetrics(nil)
	auditDispatcher := audit.NewDispatcher(audit.New(db), logger, m)
	notifier := webhook.NewNotifier(db, cfg.WebhookTimeout, cfg.WebhookQueueSize, logger, m)

	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, db, cfg, routes.Infra{
		Sessions: sessions,
		Log:      logger,
		Metrics:  m,
		Audit:    auditDispatcher,
		Notifier: notifier,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server running", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	// drena as filas depois que nenhuma requisição nova entra
	notifier.Close()
	auditDispatcher.Close()
}
