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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-admin-dashboard/api/swagger"
	"github.com/noah-isme/sma-admin-dashboard/internal/catalog"
	"github.com/noah-isme/sma-admin-dashboard/internal/handler"
	"github.com/noah-isme/sma-admin-dashboard/internal/middleware"
	"github.com/noah-isme/sma-admin-dashboard/internal/models"
	"github.com/noah-isme/sma-admin-dashboard/internal/service"
	"github.com/noah-isme/sma-admin-dashboard/internal/store"
	"github.com/noah-isme/sma-admin-dashboard/pkg/config"
	"github.com/noah-isme/sma-admin-dashboard/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-admin-dashboard/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-admin-dashboard/pkg/middleware/requestid"
)

// @title School Admin Dashboard API
// @version 1.0.0
// @description Collections backing the school admin dashboard: students, teachers, courses, attendance, fees and more.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "dashboard-api")
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
	defer func() {
		if err := opened.Close(); err != nil {
			logr.Warn("store close failed", zap.Error(err))
		}
	}()
	logr.Info("store opened", zap.String("backend", opened.Backend.Name()))

	metricsSvc := service.NewMetricsService()
	notifications := service.NewNotificationService(0, logr)

	registry, err := catalog.NewDefaultRegistry(catalog.Deps{
		KeyPrefix:  cfg.Store.KeyPrefix,
		Remote:     cfg.Remote,
		Backend:    opened.Backend,
		HTTPClient: &http.Client{},
		Logger:     logr,
		Notifier:   notifications,
		Observer:   metricsSvc,
	})
	if err != nil {
		logr.Fatal("failed to build registry", zap.Error(err))
	}

	syncSvc := service.NewSyncService(registry, metricsSvc, logr, service.SyncConfig{
		Interval:   cfg.Sync.Interval,
		Workers:    cfg.Sync.Workers,
		MaxRetries: cfg.Sync.Retries,
	})

	authSvc := service.NewAuthService(nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.Auth.Secret,
		AccessTokenExpiry: cfg.Auth.Expiration,
		Issuer:            "sma-admin-dashboard",
		AdminEmail:        cfg.Auth.AdminEmail,
		AdminPasswordHash: cfg.Auth.AdminPasswordHash,
	})

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, registry)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	authHandler := handler.NewAuthHandler(authSvc)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/notifications", handler.NewNotificationHandler(notifications).List)

	var guard []gin.HandlerFunc
	if cfg.Auth.Enabled {
		guard = []gin.HandlerFunc{middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin)}
		api.GET("/auth/me", middleware.JWT(authSvc), authHandler.Me)
	}
	handler.NewCollectionHandler(registry, service.NewExportService(logr), syncSvc).Register(api, guard...)

	go func() {
		if err := registry.LoadAll(ctx); err != nil {
			logr.Error("collections failed to load", zap.Error(err))
		}
	}()
	if cfg.Sync.Enabled {
		syncSvc.Start(ctx)
		defer syncSvc.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "auth", cfg.Auth.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
