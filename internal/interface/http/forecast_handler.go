package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/merchant-insights/internal/domain/forecast"
)

// ForecastHandler exposes demand forecasting and series analysis.
type ForecastHandler struct {
	svc    forecast.Service
	logger *slog.Logger
}

// NewForecastHandler constructs the forecast HTTP handler.
func NewForecastHandler(svc forecast.Service, logger *slog.Logger) *ForecastHandler {
	return &ForecastHandler{svc: svc, logger: logger.With("component", "http.forecast")}
}

// Generate runs a new forecast and replaces the stored batch.
func (h *ForecastHandler) Generate(c *gin.Context) {
	var req forecast.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	req.ShopID = shopID(c)

	resp, err := h.svc.Generate(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "forecast_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Latest returns the most recent stored forecast for a product.
func (h *ForecastHandler) Latest(c *gin.Context) {
	resp, err := h.svc.Latest(c.Request.Context(), shopID(c), c.Query("productId"))
	if err != nil {
		abortWithError(c, fromDomainError(err, "forecast_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Analyze reports correlation, optimal lag and seasonality.
func (h *ForecastHandler) Analyze(c *gin.Context) {
	req := forecast.AnalyzeRequest{ShopID: shopID(c), ProductID: c.Query("productId")}
	if raw := c.Query("maxLag"); raw != "" {
		maxLag, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "maxLag must be an integer", err))
			return
		}
		req.MaxLag = &maxLag
	}

	resp, err := h.svc.Analyze(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "analysis_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecordTrends stores search interest points for a product query.
func (h *ForecastHandler) RecordTrends(c *gin.Context) {
	var req forecast.TrendsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	req.ShopID = shopID(c)

	resp, err := h.svc.RecordTrends(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "trends_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
