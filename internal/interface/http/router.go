package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/merchant-insights/internal/domain/auth"
	"github.com/yanqian/merchant-insights/internal/infra/config"
)

// Handlers groups the transport handlers so the router has a single wire input.
type Handlers struct {
	Forecast *ForecastHandler
	Insight  *InsightHandler
	Auth     *AuthHandler
	Webhook  *WebhookHandler
	Notes    *NoteHandler
}

// NewHandlers is a wire provider for the handler set.
func NewHandlers(forecastHandler *ForecastHandler, insightHandler *InsightHandler, authHandler *AuthHandler, webhookHandler *WebhookHandler, noteHandler *NoteHandler) Handlers {
	return Handlers{
		Forecast: forecastHandler,
		Insight:  insightHandler,
		Auth:     authHandler,
		Webhook:  webhookHandler,
		Notes:    noteHandler,
	}
}

// insertRoutes create a new row per request, so a replay after a lost response
// would store duplicates.
var insertRoutes = []string{
	"/api/v1/competitors",
	"/api/v1/notes",
}

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handlers Handlers, authSvc auth.Service, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	logger = logger.With("component", "http.router")

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(logger),
		errorHandlingMiddleware(logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		rateLimitMiddleware(cfg.HTTP.RateLimit, logger),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/auth/install", handlers.Auth.Install)
	router.GET("/auth/callback", handlers.Auth.Callback)
	router.POST("/webhooks/*topic", handlers.Webhook.Receive)

	api := router.Group("/api/v1")
	api.Use(sessionMiddleware(authSvc))
	{
		api.POST("/forecasts/generate", handlers.Forecast.Generate)
		api.GET("/forecasts", handlers.Forecast.Latest)
		api.GET("/analysis", handlers.Forecast.Analyze)
		api.POST("/trends", handlers.Forecast.RecordTrends)

		api.POST("/sales", handlers.Insight.RecordSales)
		api.GET("/product-stats", handlers.Insight.Stats)
		api.GET("/insights", handlers.Insight.Insights)
		api.GET("/competitors", handlers.Insight.Competitors)
		api.POST("/competitors", handlers.Insight.AddCompetitor)
		api.DELETE("/competitors/:id", handlers.Insight.DeleteCompetitor)

		api.GET("/notes", handlers.Notes.List)
		api.POST("/notes", handlers.Notes.Add)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, retryConfig(cfg.HTTP.Retry), logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func retryConfig(cfg config.RetryConfig) config.RetryConfig {
	exclude := make([]string, 0, len(cfg.Exclude)+len(insertRoutes))
	exclude = append(exclude, cfg.Exclude...)
	cfg.Exclude = append(exclude, insertRoutes...)
	return cfg
}
