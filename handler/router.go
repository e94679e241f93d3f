package handler

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds router configuration
type RouterConfig struct {
	Logger            *slog.Logger
	ServiceName       string
	Publisher         Publisher
	PolicyStore       PolicyStore
	MetricsGatherer   prometheus.Gatherer
	RequestsPerSecond float64
	Burst             int
}

// NewRouter creates and configures the Echo router
func NewRouter(config RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	publishHandler := NewPublishHandler(config.Publisher, config.Logger)
	policyHandler := NewPolicyHandler(config.PolicyStore, config.Logger)
	healthHandler := NewHealthHandler(config.ServiceName)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	v1 := e.Group("/v1")
	v1.POST("/descriptions", publishHandler.Publish, RateLimit(config.RequestsPerSecond, config.Burst))
	v1.PUT("/policy/languages", policyHandler.Replace)
	v1.GET("/policy/languages", policyHandler.Current)
	v1.GET("/health", healthHandler.Health)

	if config.MetricsGatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(config.MetricsGatherer, promhttp.HandlerOpts{})))
	}

	return e
}
