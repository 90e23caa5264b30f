package main

import (
	"context"
	"errors"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lacus-ops/bbs-service/internal/bbs"
	"github.com/lacus-ops/bbs-service/internal/config"
	"github.com/lacus-ops/bbs-service/internal/http"
	"github.com/lacus-ops/bbs-service/internal/log"
	"github.com/lacus-ops/bbs-service/internal/mail"
	"github.com/lacus-ops/bbs-service/internal/metrics"
	"github.com/lacus-ops/bbs-service/internal/notify"
	"github.com/lacus-ops/bbs-service/internal/queue"
	"github.com/lacus-ops/bbs-service/internal/repo"
)

// @title Lacus BBS Service
// @version 1.0
// @description Internal staff bulletin board.
func main() {
	cfg := config.Load()

	logger, err := log.Init(cfg.Production)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.MustRegister()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("mongo connect failed", zap.Error(err))
	}
	defer store.Close(context.Background())
	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Fatal("index creation failed", zap.Error(err))
	}

	rds := repo.NewRedis(cfg.RedisAddr)
	defer rds.Close()
	if err := rds.Ping(ctx); err != nil {
		logger.Fatal("redis connect failed", zap.Error(err))
	}

	var events queue.Publisher = queue.NewNoop()
	if cfg.RabbitURL != "" {
		rabbit, err := queue.NewPublisher(cfg.RabbitURL, "bbs.events")
		if err != nil {
			logger.Fatal("rabbitmq connect failed", zap.Error(err))
		}
		events = rabbit
	}
	defer events.Close()

	var sender mail.Sender = mail.LogSender{}
	if cfg.SMTPHost != "" {
		sender = &mail.SMTPSender{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.MailFrom,
		}
	}

	loc := cfg.Location()
	notifier := notify.New(sender, cfg.BaseURL, loc)
	svc := bbs.NewService(store, notifier, events, loc, time.Duration(cfg.BoardCacheTTLSeconds)*time.Second)
	handler := http.NewHandler(cfg, store, svc, rds)

	srv := &nethttp.Server{
		Addr:              ":" + cfg.Port,
		Handler:           http.Router(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
