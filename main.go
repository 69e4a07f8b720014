package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rationdist/config"
	"rationdist/pkg/logger"
	"rationdist/scheduler"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(2)
	}

	log := logger.Must(logger.New(cfg.Server.Mode))
	defer func() { _ = log.Sync() }()
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// `rationdist migrate` runs migrations and seeding then exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if _, err := initDB(ctx, cfg, log, true); err != nil {
			log.Fatal("migration failed", zap.Error(err))
		}
		log.Info("migration and seeding completed")
		return
	}

	db, err := initDB(ctx, cfg, log, false)
	if err != nil {
		log.Fatal("database setup failed", zap.Error(err))
	}

	srv, err := newServer(ctx, cfg, db, log)
	if err != nil {
		log.Fatal("server setup failed", zap.Error(err))
	}
	if err := srv.views.watch(ctx.Done()); err != nil {
		log.Warn("template watch disabled", zap.Error(err))
	}

	sched, err := scheduler.New(cfg.Report, db, srv.publisher, log.Named("scheduler"))
	if err != nil {
		log.Fatal("scheduler setup failed", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		log.Fatal("scheduler start failed", zap.Error(err))
	}
	defer sched.Stop()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("db", cfg.DB.Driver))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	if srv.webhook != nil {
		srv.webhook.Wait()
	}
}
