package forecast

import "context"

// SeriesRepository reads and writes the daily series feeding the forecaster.
type SeriesRepository interface {
	// SalesHistory returns daily sales rows for a product in ascending date order.
	SalesHistory(ctx context.Context, shopID, productID string) ([]SalesRow, error)
	// TrendsHistory returns interest per date averaged across the product's mapped queries,
	// ascending by date.
	TrendsHistory(ctx context.Context, shopID, productID string) ([]SeriesPoint, error)
	UpsertTrends(ctx context.Context, shopID, productID, query string, points []SeriesPoint) error
}

// Repository persists forecast batches. ReplaceForecast drops any earlier batch for the
// same product.
type Repository interface {
	ReplaceForecast(ctx context.Context, shopID string, batch Batch) error
	LatestForecast(ctx context.Context, shopID, productID string) (Batch, bool, error)
}
