package insight

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/merchant-insights/pkg/errors"
	"github.com/yanqian/merchant-insights/pkg/util"
)

const maxCompetitorName = 200

// Service exposes product statistics, insights and competitor tracking.
type Service interface {
	Insights(ctx context.Context, req InsightsRequest) (InsightsResponse, error)
	Stats(ctx context.Context, shopID, productID string, period Period) (ProductStats, error)
	RecordSales(ctx context.Context, req SalesRequest) (SalesResponse, error)
	Competitors(ctx context.Context, shopID, productID string) ([]Competitor, error)
	AddCompetitor(ctx context.Context, req CompetitorRequest) (Competitor, error)
	DeleteCompetitor(ctx context.Context, shopID, competitorID string) error
}

type service struct {
	cfg         Config
	stats       StatsStore
	sales       SalesRepository
	competitors CompetitorRepository
	logger      *slog.Logger
	now         func() time.Time
}

// NewService wires up the insight domain.
func NewService(cfg Config, stats StatsStore, sales SalesRepository, competitors CompetitorRepository, logger *slog.Logger) Service {
	return &service{
		cfg:         cfg,
		stats:       stats,
		sales:       sales,
		competitors: competitors,
		logger:      logger.With("component", "insight.service"),
		now:         util.NowUTC,
	}
}

func (s *service) Insights(ctx context.Context, req InsightsRequest) (InsightsResponse, error) {
	if err := validateProductPeriod(req.ProductID, req.Period); err != nil {
		return InsightsResponse{}, err
	}
	if req.Inventory < 0 {
		return InsightsResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "inventory cannot be negative", nil)
	}

	var snapshot *ProductStats
	stats, found, err := s.stats.GetStats(ctx, req.ShopID, req.ProductID, req.Period)
	if err != nil {
		return InsightsResponse{}, apperrors.Wrap("insight_error", "failed to load product stats", err)
	}
	if found {
		snapshot = &stats
	}
	competitors, err := s.competitors.ListCompetitors(ctx, req.ShopID, req.ProductID)
	if err != nil {
		return InsightsResponse{}, apperrors.Wrap("insight_error", "failed to load competitors", err)
	}

	insights := Generate(Input{
		Stats:        snapshot,
		Inventory:    req.Inventory,
		Competitors:  competitors,
		Period:       req.Period,
		ProductPrice: req.ProductPrice,
	})
	s.logger.Debug("insights generated", "shop", req.ShopID, "product", req.ProductID, "count", len(insights))
	return InsightsResponse{ProductID: req.ProductID, Period: req.Period, Insights: insights}, nil
}

func (s *service) Stats(ctx context.Context, shopID, productID string, period Period) (ProductStats, error) {
	if err := validateProductPeriod(productID, period); err != nil {
		return ProductStats{}, err
	}
	stats, found, err := s.stats.GetStats(ctx, shopID, productID, period)
	if err != nil {
		return ProductStats{}, apperrors.Wrap("insight_error", "failed to load product stats", err)
	}
	if !found {
		return ProductStats{}, apperrors.Wrap(apperrors.CodeNotFound, "no stats for this product and period", nil)
	}
	return stats, nil
}

func (s *service) RecordSales(ctx context.Context, req SalesRequest) (SalesResponse, error) {
	if !util.ValidProductID(req.ProductID) {
		return SalesResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "productId must be a Shopify product GID", nil)
	}
	if len(req.Days) == 0 {
		return SalesResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "days cannot be empty", nil)
	}
	days := make([]DailyStat, 0, len(req.Days))
	for _, d := range req.Days {
		ts, ok := util.ParseDate(d.Date)
		if !ok {
			return SalesResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("invalid date %q", d.Date), nil)
		}
		if d.Units < 0 || d.Revenue < 0 {
			return SalesResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "units and revenue cannot be negative", nil)
		}
		days = append(days, DailyStat{Date: util.FormatDate(ts), Units: d.Units, Revenue: d.Revenue})
	}

	if err := s.sales.UpsertDailySales(ctx, req.ShopID, req.ProductID, days); err != nil {
		return SalesResponse{}, apperrors.Wrap("insight_error", "failed to store sales", err)
	}
	history, err := s.sales.DailySales(ctx, req.ShopID, req.ProductID)
	if err != nil {
		return SalesResponse{}, apperrors.Wrap("insight_error", "failed to load sales history", err)
	}

	now := s.now()
	resp := SalesResponse{
		ProductID:  req.ProductID,
		DaysStored: len(days),
		Stats30d:   BuildStats(req.ProductID, Period30d, history, now),
		Stats90d:   BuildStats(req.ProductID, Period90d, history, now),
	}
	for _, snapshot := range []ProductStats{resp.Stats30d, resp.Stats90d} {
		if err := s.stats.SaveStats(ctx, req.ShopID, snapshot, s.cfg.StatsTTL); err != nil {
			return SalesResponse{}, apperrors.Wrap("insight_error", "failed to cache product stats", err)
		}
	}
	s.logger.Info("sales recorded",
		"shop", req.ShopID,
		"product", req.ProductID,
		"days", len(days),
		"units30d", resp.Stats30d.UnitsSold,
		"units90d", resp.Stats90d.UnitsSold,
	)
	return resp, nil
}

func (s *service) Competitors(ctx context.Context, shopID, productID string) ([]Competitor, error) {
	if !util.ValidProductID(productID) {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "productId must be a Shopify product GID", nil)
	}
	list, err := s.competitors.ListCompetitors(ctx, shopID, productID)
	if err != nil {
		return nil, apperrors.Wrap("insight_error", "failed to load competitors", err)
	}
	if list == nil {
		list = []Competitor{}
	}
	return list, nil
}

func (s *service) AddCompetitor(ctx context.Context, req CompetitorRequest) (Competitor, error) {
	if !util.ValidProductID(req.ProductID) {
		return Competitor{}, apperrors.Wrap(apperrors.CodeInvalidInput, "productId must be a Shopify product GID", nil)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || utf8.RuneCountInString(name) > maxCompetitorName {
		return Competitor{}, apperrors.Wrap(apperrors.CodeInvalidInput,
			fmt.Sprintf("name must be 1-%d characters", maxCompetitorName), nil)
	}
	link := strings.TrimSpace(req.URL)
	if !validURL(link) {
		return Competitor{}, apperrors.Wrap(apperrors.CodeInvalidInput, "url must be an absolute http(s) URL", nil)
	}
	price, ok := ParsePrice(req.Price.String())
	if !ok || price.IsNegative() {
		return Competitor{}, apperrors.Wrap(apperrors.CodeInvalidInput, "price must be a non-negative number", nil)
	}

	created, err := s.competitors.CreateCompetitor(ctx, req.ShopID, Competitor{
		ID:          uuid.NewString(),
		ProductID:   req.ProductID,
		Name:        name,
		URL:         link,
		Price:       price.StringFixed(2),
		LastChecked: s.now(),
	})
	if err != nil {
		return Competitor{}, apperrors.Wrap("insight_error", "failed to store competitor", err)
	}
	s.logger.Info("competitor added", "shop", req.ShopID, "product", req.ProductID, "competitor", created.ID)
	return created, nil
}

func (s *service) DeleteCompetitor(ctx context.Context, shopID, competitorID string) error {
	if _, err := uuid.Parse(competitorID); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "competitor id must be a UUID", err)
	}
	deleted, err := s.competitors.DeleteCompetitor(ctx, shopID, competitorID)
	if err != nil {
		return apperrors.Wrap("insight_error", "failed to delete competitor", err)
	}
	if !deleted {
		return apperrors.Wrap(apperrors.CodeNotFound, "competitor not found", nil)
	}
	return nil
}

func validateProductPeriod(productID string, period Period) error {
	if !util.ValidProductID(productID) {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "productId must be a Shopify product GID", nil)
	}
	if !period.Valid() {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "period must be 30d or 90d", nil)
	}
	return nil
}

func validURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
