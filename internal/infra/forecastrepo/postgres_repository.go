package forecastrepo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/merchant-insights/internal/domain/auth"
	"github.com/yanqian/merchant-insights/internal/domain/forecast"
	"github.com/yanqian/merchant-insights/pkg/util"
)

// PostgresRepository persists forecast batches in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ReplaceForecast deletes the product's previous rows and inserts the batch in one transaction.
func (r *PostgresRepository) ReplaceForecast(ctx context.Context, shopID string, batch forecast.Batch) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		DELETE FROM forecasts WHERE shop_id = $1 AND product_id = $2
	`, shopID, batch.ProductID); err != nil {
		return err
	}
	rows := &pgx.Batch{}
	for _, p := range batch.Points {
		rows.Queue(`
			INSERT INTO forecasts (batch_id, shop_id, product_id, date, predicted_units, predicted_revenue, confidence_lower, confidence_upper, created_at)
			VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8, $9)
		`, batch.ID, shopID, batch.ProductID, p.Date, p.PredictedUnits, p.PredictedRevenue, p.ConfidenceLower, p.ConfidenceUpper, batch.CreatedAt)
	}
	if err := tx.SendBatch(ctx, rows).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// LatestForecast returns the newest batch for the product.
func (r *PostgresRepository) LatestForecast(ctx context.Context, shopID, productID string) (forecast.Batch, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT batch_id, created_at, date, predicted_units, predicted_revenue, confidence_lower, confidence_upper
		FROM forecasts
		WHERE shop_id = $1 AND product_id = $2
		  AND created_at = (
			SELECT MAX(created_at) FROM forecasts WHERE shop_id = $1 AND product_id = $2
		  )
		ORDER BY date ASC
	`, shopID, productID)
	if err != nil {
		return forecast.Batch{}, false, err
	}
	defer rows.Close()

	batch := forecast.Batch{ProductID: productID}
	for rows.Next() {
		var (
			p       forecast.StoredPoint
			day     time.Time
			created time.Time
		)
		if err := rows.Scan(&batch.ID, &created, &day, &p.PredictedUnits, &p.PredictedRevenue, &p.ConfidenceLower, &p.ConfidenceUpper); err != nil {
			return forecast.Batch{}, false, err
		}
		batch.CreatedAt = created.UTC()
		p.Date = util.FormatDate(day)
		batch.Points = append(batch.Points, p)
	}
	if err := rows.Err(); err != nil {
		return forecast.Batch{}, false, err
	}
	return batch, len(batch.Points) > 0, nil
}

// PurgeShop removes every forecast row owned by the shop.
func (r *PostgresRepository) PurgeShop(ctx context.Context, shopID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM forecasts WHERE shop_id = $1`, shopID)
	return err
}

var (
	_ forecast.Repository = (*PostgresRepository)(nil)
	_ auth.ShopDataPurger = (*PostgresRepository)(nil)
)
