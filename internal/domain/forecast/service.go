package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/merchant-insights/pkg/errors"
	"github.com/yanqian/merchant-insights/pkg/util"
)

const maxQueryLength = 200

// Service exposes demand forecasting and series analysis.
type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	Latest(ctx context.Context, shopID, productID string) (LatestResponse, error)
	Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeResponse, error)
	RecordTrends(ctx context.Context, req TrendsRequest) (TrendsResponse, error)
}

type service struct {
	cfg       Config
	series    SeriesRepository
	forecasts Repository
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// NewService wires up the forecast domain.
func NewService(cfg Config, series SeriesRepository, forecasts Repository, logger *slog.Logger) Service {
	return &service{
		cfg:       cfg.withDefaults(),
		series:    series,
		forecasts: forecasts,
		logger:    logger.With("component", "forecast.service"),
		now:       util.NowUTC,
		newID:     func() string { return uuid.NewString() },
	}
}

func (s *service) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	if !util.ValidProductID(req.ProductID) {
		return GenerateResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "productId must be a Shopify product GID", nil)
	}
	horizon := req.HorizonDays
	if horizon == 0 {
		horizon = s.cfg.DefaultHorizonDays
	}
	if horizon < 1 || horizon > s.cfg.MaxHorizonDays {
		return GenerateResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput,
			fmt.Sprintf("horizonDays must be between 1 and %d", s.cfg.MaxHorizonDays), nil)
	}

	sales, err := s.series.SalesHistory(ctx, req.ShopID, req.ProductID)
	if err != nil {
		return GenerateResponse{}, apperrors.Wrap("forecast_error", "failed to load sales history", err)
	}
	if len(sales) == 0 {
		return GenerateResponse{}, apperrors.Wrap(apperrors.CodeNoData, "no sales data available for this product; sync sales first", nil)
	}
	trends, err := s.series.TrendsHistory(ctx, req.ShopID, req.ProductID)
	if err != nil {
		return GenerateResponse{}, apperrors.Wrap("forecast_error", "failed to load trends history", err)
	}

	points := GenerateForecast(salesSeries(sales), trends, horizon, s.now())
	revenuePerUnit := 0.0
	if sales[0].Units > 0 {
		revenuePerUnit = sales[0].Revenue / sales[0].Units
	}

	batch := Batch{
		ID:        s.newID(),
		ProductID: req.ProductID,
		CreatedAt: s.now(),
		Points:    make([]StoredPoint, 0, len(points)),
	}
	for _, p := range points {
		batch.Points = append(batch.Points, StoredPoint{
			Date:             p.Date,
			PredictedUnits:   p.ExpectedUnits,
			PredictedRevenue: round2(p.ExpectedUnits * revenuePerUnit),
			ConfidenceLower:  p.LowerBound,
			ConfidenceUpper:  p.UpperBound,
		})
	}
	if err := s.forecasts.ReplaceForecast(ctx, req.ShopID, batch); err != nil {
		return GenerateResponse{}, apperrors.Wrap("forecast_error", "failed to store forecast", err)
	}

	summary := summarize(batch.Points)
	summary.TotalPredictedRevenue = nil
	s.logger.Info("forecast generated",
		"shop", req.ShopID,
		"product", req.ProductID,
		"horizon", horizon,
		"salesPoints", len(sales),
		"trendsPoints", len(trends),
	)
	return GenerateResponse{
		Success:        true,
		BatchID:        batch.ID,
		ProductID:      req.ProductID,
		HorizonDays:    horizon,
		ForecastPoints: len(points),
		DateRange:      dateRange(batch.Points),
		Summary:        summary,
		Forecast:       points,
	}, nil
}

func (s *service) Latest(ctx context.Context, shopID, productID string) (LatestResponse, error) {
	if !util.ValidProductID(productID) {
		return LatestResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "productId must be a Shopify product GID", nil)
	}
	batch, found, err := s.forecasts.LatestForecast(ctx, shopID, productID)
	if err != nil {
		return LatestResponse{}, apperrors.Wrap("forecast_error", "failed to load forecast", err)
	}
	if !found || len(batch.Points) == 0 {
		return LatestResponse{}, apperrors.Wrap(apperrors.CodeNotFound, "no forecast found; generate one first", nil)
	}
	return LatestResponse{
		BatchID:     batch.ID,
		ProductID:   productID,
		CreatedAt:   batch.CreatedAt,
		HorizonDays: len(batch.Points),
		DateRange:   dateRange(batch.Points),
		Summary:     summarize(batch.Points),
		Forecast:    batch.Points,
	}, nil
}

func (s *service) Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeResponse, error) {
	if !util.ValidProductID(req.ProductID) {
		return AnalyzeResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "productId must be a Shopify product GID", nil)
	}
	maxLag := s.cfg.MaxLag
	if req.MaxLag != nil {
		if *req.MaxLag < 0 || *req.MaxLag > s.cfg.MaxLag {
			return AnalyzeResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput,
				fmt.Sprintf("maxLag must be between 0 and %d", s.cfg.MaxLag), nil)
		}
		maxLag = *req.MaxLag
	}

	sales, err := s.series.SalesHistory(ctx, req.ShopID, req.ProductID)
	if err != nil {
		return AnalyzeResponse{}, apperrors.Wrap("forecast_error", "failed to load sales history", err)
	}
	trends, err := s.series.TrendsHistory(ctx, req.ShopID, req.ProductID)
	if err != nil {
		return AnalyzeResponse{}, apperrors.Wrap("forecast_error", "failed to load trends history", err)
	}

	salesPoints := salesSeries(sales)
	return AnalyzeResponse{
		ProductID:    req.ProductID,
		SalesPoints:  len(salesPoints),
		TrendsPoints: len(trends),
		Correlation:  ComputeCorrelation(salesPoints, trends),
		OptimalLag:   FindOptimalLag(salesPoints, trends, maxLag),
		Seasonality:  DetectSeasonality(trends),
	}, nil
}

func (s *service) RecordTrends(ctx context.Context, req TrendsRequest) (TrendsResponse, error) {
	if !util.ValidProductID(req.ProductID) {
		return TrendsResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "productId must be a Shopify product GID", nil)
	}
	query := strings.TrimSpace(req.Query)
	if query == "" || len(query) > maxQueryLength {
		return TrendsResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput,
			fmt.Sprintf("query must be 1-%d characters", maxQueryLength), nil)
	}
	points := make([]SeriesPoint, 0, len(req.Points))
	for _, p := range req.Points {
		ts, ok := util.ParseDate(p.Date)
		if !ok {
			return TrendsResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput,
				fmt.Sprintf("invalid date %q", p.Date), nil)
		}
		if p.Value < 0 || p.Value > 100 {
			return TrendsResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "interest must be between 0 and 100", nil)
		}
		points = append(points, SeriesPoint{Date: util.FormatDate(ts), Value: p.Value})
	}
	if len(points) == 0 {
		return TrendsResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "points cannot be empty", nil)
	}

	if err := s.series.UpsertTrends(ctx, req.ShopID, req.ProductID, query, points); err != nil {
		return TrendsResponse{}, apperrors.Wrap("forecast_error", "failed to store trends", err)
	}
	s.logger.Info("trends recorded", "shop", req.ShopID, "product", req.ProductID, "points", len(points))
	return TrendsResponse{ProductID: req.ProductID, Query: query, Stored: len(points)}, nil
}

func salesSeries(rows []SalesRow) []SeriesPoint {
	points := make([]SeriesPoint, len(rows))
	for i, r := range rows {
		points[i] = SeriesPoint{Date: r.Date, Value: r.Units}
	}
	return points
}

func summarize(points []StoredPoint) Summary {
	var units, revenue float64
	for _, p := range points {
		units += p.PredictedUnits
		revenue += p.PredictedRevenue
	}
	avg := 0.0
	if len(points) > 0 {
		avg = units / float64(len(points))
	}
	totalRevenue := round2(revenue)
	return Summary{
		TotalPredictedUnits:   round2(units),
		TotalPredictedRevenue: &totalRevenue,
		AverageDailyUnits:     round2(avg),
	}
}

func dateRange(points []StoredPoint) DateRange {
	if len(points) == 0 {
		return DateRange{}
	}
	return DateRange{Start: points[0].Date, End: points[len(points)-1].Date}
}
