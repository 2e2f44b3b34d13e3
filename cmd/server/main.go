package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Skufu/CardioRx/internal/artifact"
	"github.com/Skufu/CardioRx/internal/config"
	"github.com/Skufu/CardioRx/internal/logger"
	"github.com/Skufu/CardioRx/internal/metrics"
	"github.com/Skufu/CardioRx/internal/pipeline"
	"github.com/Skufu/CardioRx/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("config error: %v", err)
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	metrics.Init()
	gin.SetMode(cfg.GinMode)

	bundle, err := artifact.Load(cfg.ArtifactManifest, artifact.Options{
		Policy:      pipeline.MismatchPolicy(cfg.MismatchPolicy),
		ONNXLibrary: cfg.ONNXRuntimeLib,
	})
	if err != nil {
		logger.Log.Fatalf("load artifacts: %v", err)
	}
	defer bundle.Close()

	deps := routerDeps{
		Pipeline:     bundle.Pipeline,
		MaxBodyBytes: cfg.MaxBodyBytes,
		RateLimit:    rate.Limit(cfg.RateLimitRPS),
		RateBurst:    cfg.RateLimitBurst,
	}

	ctx := context.Background()
	if cfg.EnableDB {
		db, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Log.Fatalf("database connection failed: %v", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			logger.Log.Fatalf("database migration failed: %v", err)
		}
		deps.Log = db
	}

	router, err := setupRouter(deps)
	if err != nil {
		logger.Log.Fatalf("router setup failed: %v", err)
	}
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("server error: %v", err)
		}
	}()

	logger.WithField("port", cfg.Port).Info("Server listening")
	waitForShutdown(server, cfg.ShutdownTimeout)
}

func waitForShutdown(server *http.Server, timeout time.Duration) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.Errorf("graceful shutdown failed: %v", err)
	}
}
