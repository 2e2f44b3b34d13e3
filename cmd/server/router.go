package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/Skufu/CardioRx/internal/form"
	"github.com/Skufu/CardioRx/internal/metrics"
	"github.com/Skufu/CardioRx/internal/pipeline"
	"github.com/Skufu/CardioRx/internal/presenter"
	"github.com/Skufu/CardioRx/internal/store"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// PredictionLog is the optional persistence behind /api/v1/prescriptions/recent.
type PredictionLog interface {
	HealthChecker
	Record(ctx context.Context, channel string, rx *pipeline.Prescription) error
	Recent(ctx context.Context, limit int) ([]store.Entry, error)
}

type routerDeps struct {
	Pipeline     *pipeline.Pipeline
	Log          PredictionLog
	MaxBodyBytes int64
	RateLimit    rate.Limit
	RateBurst    int
}

func setupRouter(deps routerDeps) (*gin.Engine, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := form.RegisterValidators(v); err != nil {
			return nil, fmt.Errorf("register validators: %w", err)
		}
	}

	tmpl, err := presenter.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	router := gin.New()
	router.Use(
		requestLogger(),
		gin.Recovery(),
		limitBodySize(maxBody),
		cors.New(cors.Config{
			AllowOrigins:  []string{"*"},
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders: []string{requestIDHeader},
			MaxAge:        12 * time.Hour,
		}),
	)
	router.SetHTMLTemplate(tmpl)
	router.StaticFS("/static", http.FS(presenter.Static()))

	h := &handlers{pipeline: deps.Pipeline, log: deps.Log}
	limit := rateLimit(deps.RateLimit, deps.RateBurst)

	router.GET("/", h.page)
	router.POST("/", limit, h.submitForm)

	api := router.Group("/api/v1")
	api.GET("/form", h.catalogue)
	api.GET("/schemas", h.schemas)
	api.POST("/prescriptions", limit, h.submitJSON)
	api.GET("/prescriptions/recent", h.recent)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		if deps.Log == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := deps.Log.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"db":     fmt.Sprintf("unhealthy: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
	})

	return router, nil
}
