package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"placement/internal/auth"
	"placement/internal/config"
	"placement/internal/contact"
	"placement/internal/db"
	"placement/internal/document"
	httpx "placement/internal/http"
	"placement/internal/jobs"
	"placement/internal/logging"
	"placement/internal/message"
	"placement/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	jwtSvc := auth.NewJWT(cfg.JWTSecret)

	contactSvc := &contact.Service{Store: &store.Contacts{DB: gdb}}
	messageSvc := &message.Service{
		Store:             &store.Messages{DB: gdb},
		ProcessingTimeout: cfg.ProcessingTimeout,
	}
	documentSvc := &document.Service{
		Store: &store.Documents{DB: gdb},
		Log:   logger.Named("document"),
	}

	r := httpx.NewRouter(cfg, gdb, jwtSvc, httpx.Services{
		Contacts:  contactSvc,
		Messages:  messageSvc,
		Documents: documentSvc,
	})

	worker := &jobs.Worker{
		ID:       "worker-" + uuid.NewString(),
		Repo:     &jobs.Repo{DB: gdb},
		Messages: messageSvc,
		Log:      logger.Named("jobs"),
	}

	ctx, cancel := context.WithCancel(context.Background())
	go worker.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info("stopped")
}
