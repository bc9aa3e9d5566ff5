package competitorrepo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/merchant-insights/internal/domain/auth"
	"github.com/yanqian/merchant-insights/internal/domain/insight"
)

// PostgresRepository persists competitor listings in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ListCompetitors returns the product's competitors, most recently checked first.
func (r *PostgresRepository) ListCompetitors(ctx context.Context, shopID, productID string) ([]insight.Competitor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, product_id, name, url, price::text, last_checked
		FROM product_competitors
		WHERE shop_id = $1 AND product_id = $2
		ORDER BY last_checked DESC
	`, shopID, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []insight.Competitor
	for rows.Next() {
		c, err := scanCompetitor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCompetitor inserts a new listing.
func (r *PostgresRepository) CreateCompetitor(ctx context.Context, shopID string, c insight.Competitor) (insight.Competitor, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO product_competitors (id, shop_id, product_id, name, url, price, last_checked)
		VALUES ($1::uuid, $2, $3, $4, $5, $6::numeric, $7)
		RETURNING id::text, product_id, name, url, price::text, last_checked
	`, c.ID, shopID, c.ProductID, c.Name, c.URL, c.Price, c.LastChecked)
	return scanCompetitor(row)
}

// DeleteCompetitor removes a listing owned by the shop.
func (r *PostgresRepository) DeleteCompetitor(ctx context.Context, shopID, competitorID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM product_competitors WHERE shop_id = $1 AND id = $2::uuid
	`, shopID, competitorID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// PurgeShop removes every listing owned by the shop.
func (r *PostgresRepository) PurgeShop(ctx context.Context, shopID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM product_competitors WHERE shop_id = $1`, shopID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompetitor(row rowScanner) (insight.Competitor, error) {
	var c insight.Competitor
	var checked time.Time
	if err := row.Scan(&c.ID, &c.ProductID, &c.Name, &c.URL, &c.Price, &checked); err != nil {
		return insight.Competitor{}, err
	}
	c.LastChecked = checked.UTC()
	return c, nil
}

var (
	_ insight.CompetitorRepository = (*PostgresRepository)(nil)
	_ auth.ShopDataPurger          = (*PostgresRepository)(nil)
)
