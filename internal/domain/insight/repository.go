package insight

import (
	"context"
	"time"
)

// StatsStore caches per-period stats snapshots.
type StatsStore interface {
	GetStats(ctx context.Context, shopID, productID string, period Period) (ProductStats, bool, error)
	SaveStats(ctx context.Context, shopID string, stats ProductStats, ttl time.Duration) error
}

// SalesRepository persists daily sales rows keyed by shop, product and date.
type SalesRepository interface {
	UpsertDailySales(ctx context.Context, shopID, productID string, days []DailyStat) error
	DailySales(ctx context.Context, shopID, productID string) ([]DailyStat, error)
}

// CompetitorRepository stores tracked competitor listings.
type CompetitorRepository interface {
	ListCompetitors(ctx context.Context, shopID, productID string) ([]Competitor, error)
	CreateCompetitor(ctx context.Context, shopID string, competitor Competitor) (Competitor, error)
	DeleteCompetitor(ctx context.Context, shopID, competitorID string) (bool, error)
}
