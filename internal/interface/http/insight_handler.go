package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/merchant-insights/internal/domain/insight"
)

// InsightHandler exposes sales snapshots, competitor tracking and insights.
type InsightHandler struct {
	svc    insight.Service
	logger *slog.Logger
}

// NewInsightHandler constructs the insight HTTP handler.
func NewInsightHandler(svc insight.Service, logger *slog.Logger) *InsightHandler {
	return &InsightHandler{svc: svc, logger: logger.With("component", "http.insight")}
}

// Insights evaluates the rule set for a product and period.
func (h *InsightHandler) Insights(c *gin.Context) {
	req := insight.InsightsRequest{
		ShopID:       shopID(c),
		ProductID:    c.Query("productId"),
		Period:       queryPeriod(c),
		ProductPrice: c.Query("price"),
	}
	if raw := c.Query("inventory"); raw != "" {
		inventory, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "inventory must be an integer", err))
			return
		}
		req.Inventory = inventory
	}

	resp, err := h.svc.Insights(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "insights_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Stats returns the cached sales snapshot for a product and period.
func (h *InsightHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context(), shopID(c), c.Query("productId"), queryPeriod(c))
	if err != nil {
		abortWithError(c, fromDomainError(err, "stats_failed"))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RecordSales stores daily sales and refreshes the snapshots.
func (h *InsightHandler) RecordSales(c *gin.Context) {
	var req insight.SalesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	req.ShopID = shopID(c)

	resp, err := h.svc.RecordSales(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "sales_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Competitors lists tracked competitor listings for a product.
func (h *InsightHandler) Competitors(c *gin.Context) {
	items, err := h.svc.Competitors(c.Request.Context(), shopID(c), c.Query("productId"))
	if err != nil {
		abortWithError(c, fromDomainError(err, "competitors_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"competitors": items})
}

// AddCompetitor registers a competitor listing.
func (h *InsightHandler) AddCompetitor(c *gin.Context) {
	var req insight.CompetitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	req.ShopID = shopID(c)

	created, err := h.svc.AddCompetitor(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "competitors_failed"))
		return
	}
	c.JSON(http.StatusCreated, created)
}

// DeleteCompetitor removes a competitor listing owned by the shop.
func (h *InsightHandler) DeleteCompetitor(c *gin.Context) {
	if err := h.svc.DeleteCompetitor(c.Request.Context(), shopID(c), c.Param("id")); err != nil {
		abortWithError(c, fromDomainError(err, "competitors_failed"))
		return
	}
	c.Status(http.StatusNoContent)
}

func queryPeriod(c *gin.Context) insight.Period {
	return insight.Period(c.DefaultQuery("period", string(insight.Period30d)))
}
