package shoprepo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/merchant-insights/internal/domain/auth"
)

// PostgresRepository persists installed shops in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// UpsertShop inserts the shop or refreshes its token and scope. The original install time
// and id are kept on reinstall.
func (r *PostgresRepository) UpsertShop(ctx context.Context, shop auth.Shop) (auth.Shop, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO shops (id, shop_domain, access_token, scope, installed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (shop_domain) DO UPDATE
		SET access_token = EXCLUDED.access_token,
			scope = EXCLUDED.scope,
			updated_at = EXCLUDED.updated_at
		RETURNING id, shop_domain, access_token, scope, installed_at, updated_at
	`, shop.ID, shop.Domain, shop.AccessToken, shop.Scope, shop.InstalledAt, shop.UpdatedAt)
	return scanShop(row)
}

// GetShopByDomain fetches a shop by its myshopify domain.
func (r *PostgresRepository) GetShopByDomain(ctx context.Context, domain string) (auth.Shop, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, shop_domain, access_token, scope, installed_at, updated_at
		FROM shops
		WHERE shop_domain = $1
		LIMIT 1
	`, domain)
	if err != nil {
		return auth.Shop{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return auth.Shop{}, false, rows.Err()
	}
	shop, err := scanShop(rows)
	if err != nil {
		return auth.Shop{}, false, err
	}
	return shop, true, rows.Err()
}

// DeleteShop removes the shop record.
func (r *PostgresRepository) DeleteShop(ctx context.Context, shopID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM shops WHERE id = $1`, shopID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShop(row rowScanner) (auth.Shop, error) {
	var shop auth.Shop
	var installed, updated time.Time
	if err := row.Scan(&shop.ID, &shop.Domain, &shop.AccessToken, &shop.Scope, &installed, &updated); err != nil {
		return auth.Shop{}, err
	}
	shop.InstalledAt = installed.UTC()
	shop.UpdatedAt = updated.UTC()
	return shop, nil
}

var _ auth.ShopRepository = (*PostgresRepository)(nil)
