package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-admin-dashboard/internal/catalog"
	"github.com/noah-isme/sma-admin-dashboard/internal/handler"
	"github.com/noah-isme/sma-admin-dashboard/internal/store"
	"github.com/noah-isme/sma-admin-dashboard/pkg/config"
	"github.com/noah-isme/sma-admin-dashboard/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-admin-dashboard/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-admin-dashboard/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "mock-api")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opened, err := store.Open(ctx, cfg)
	if err != nil {
		logr.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer opened.Close() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	mock := handler.NewMockAPIHandler(opened.Backend, handler.MockAPIConfig{
		KeyPrefix:   cfg.Mock.KeyPrefix,
		Collections: catalog.Names(),
		Latency:     cfg.Mock.Latency,
	}, logr, nil)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(mock.Latency())
	mock.Register(r)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Mock.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("mock api starting", "addr", srv.Addr, "latency", cfg.Mock.Latency, "backend", opened.Backend.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("mock api failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
