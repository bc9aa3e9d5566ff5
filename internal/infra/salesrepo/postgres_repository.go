package salesrepo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/merchant-insights/internal/domain/auth"
	"github.com/yanqian/merchant-insights/internal/domain/forecast"
	"github.com/yanqian/merchant-insights/internal/domain/insight"
	"github.com/yanqian/merchant-insights/pkg/util"
)

// PostgresRepository stores daily sales and search-interest series in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// UpsertDailySales writes one row per day, replacing existing rows for the same date.
func (r *PostgresRepository) UpsertDailySales(ctx context.Context, shopID, productID string, days []insight.DailyStat) error {
	batch := &pgx.Batch{}
	for _, d := range days {
		batch.Queue(`
			INSERT INTO sales_timeseries (shop_id, product_id, date, units_sold, revenue)
			VALUES ($1, $2, $3::date, $4, $5)
			ON CONFLICT (shop_id, product_id, date)
			DO UPDATE SET units_sold = EXCLUDED.units_sold, revenue = EXCLUDED.revenue
		`, shopID, productID, d.Date, d.Units, d.Revenue)
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

// DailySales returns every stored day for a product, oldest first.
func (r *PostgresRepository) DailySales(ctx context.Context, shopID, productID string) ([]insight.DailyStat, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date, units_sold, revenue
		FROM sales_timeseries
		WHERE shop_id = $1 AND product_id = $2
		ORDER BY date ASC
	`, shopID, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []insight.DailyStat
	for rows.Next() {
		var (
			day     time.Time
			units   int
			revenue float64
		)
		if err := rows.Scan(&day, &units, &revenue); err != nil {
			return nil, err
		}
		out = append(out, insight.DailyStat{Date: util.FormatDate(day), Units: units, Revenue: revenue})
	}
	return out, rows.Err()
}

// SalesHistory adapts DailySales for the forecaster.
func (r *PostgresRepository) SalesHistory(ctx context.Context, shopID, productID string) ([]forecast.SalesRow, error) {
	days, err := r.DailySales(ctx, shopID, productID)
	if err != nil {
		return nil, err
	}
	return toSalesRows(days), nil
}

// TrendsHistory averages interest per date across every query mapped to the product.
func (r *PostgresRepository) TrendsHistory(ctx context.Context, shopID, productID string) ([]forecast.SeriesPoint, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.date, AVG(t.interest)::float8
		FROM trends_timeseries t
		JOIN product_trends_mapping m
			ON m.shop_id = t.shop_id AND m.query = t.query
		WHERE m.shop_id = $1 AND m.product_id = $2
		GROUP BY t.date
		ORDER BY t.date ASC
	`, shopID, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []forecast.SeriesPoint
	for rows.Next() {
		var (
			day      time.Time
			interest float64
		)
		if err := rows.Scan(&day, &interest); err != nil {
			return nil, err
		}
		out = append(out, forecast.SeriesPoint{Date: util.FormatDate(day), Value: interest})
	}
	return out, rows.Err()
}

// UpsertTrends maps the query to the product and stores its interest points.
func (r *PostgresRepository) UpsertTrends(ctx context.Context, shopID, productID, query string, points []forecast.SeriesPoint) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO product_trends_mapping (shop_id, product_id, query)
		VALUES ($1, $2, $3)
		ON CONFLICT (shop_id, product_id, query) DO NOTHING
	`, shopID, productID, query); err != nil {
		return err
	}
	batch := &pgx.Batch{}
	for _, p := range points {
		batch.Queue(`
			INSERT INTO trends_timeseries (shop_id, query, date, interest)
			VALUES ($1, $2, $3::date, $4)
			ON CONFLICT (shop_id, query, date)
			DO UPDATE SET interest = EXCLUDED.interest
		`, shopID, query, p.Date, p.Value)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// PurgeShop removes every series row owned by the shop.
func (r *PostgresRepository) PurgeShop(ctx context.Context, shopID string) error {
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM sales_timeseries WHERE shop_id = $1`, shopID)
	batch.Queue(`DELETE FROM product_trends_mapping WHERE shop_id = $1`, shopID)
	batch.Queue(`DELETE FROM trends_timeseries WHERE shop_id = $1`, shopID)
	return r.pool.SendBatch(ctx, batch).Close()
}

func toSalesRows(days []insight.DailyStat) []forecast.SalesRow {
	rows := make([]forecast.SalesRow, len(days))
	for i, d := range days {
		rows[i] = forecast.SalesRow{Date: d.Date, Units: float64(d.Units), Revenue: d.Revenue}
	}
	return rows
}

var (
	_ forecast.SeriesRepository = (*PostgresRepository)(nil)
	_ insight.SalesRepository   = (*PostgresRepository)(nil)
	_ auth.ShopDataPurger       = (*PostgresRepository)(nil)
)
