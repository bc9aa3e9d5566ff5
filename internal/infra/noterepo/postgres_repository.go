package noterepo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/merchant-insights/internal/domain/auth"
	"github.com/yanqian/merchant-insights/internal/domain/notes"
)

// PostgresRepository persists product notes in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ListNotes returns the product's notes, newest first.
func (r *PostgresRepository) ListNotes(ctx context.Context, shopID, productID string) ([]notes.Note, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, product_id, note_text, tags, author, created_at
		FROM product_notes
		WHERE shop_id = $1 AND product_id = $2
		ORDER BY created_at DESC, id
	`, shopID, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []notes.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// CreateNote inserts a new note.
func (r *PostgresRepository) CreateNote(ctx context.Context, shopID string, n notes.Note) (notes.Note, error) {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO product_notes (id, shop_id, product_id, note_text, tags, author, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
		RETURNING id::text, product_id, note_text, tags, author, created_at
	`, n.ID, shopID, n.ProductID, n.Text, tags, n.Author, n.CreatedAt)
	return scanNote(row)
}

// PurgeShop removes every note owned by the shop.
func (r *PostgresRepository) PurgeShop(ctx context.Context, shopID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM product_notes WHERE shop_id = $1`, shopID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (notes.Note, error) {
	var n notes.Note
	var created time.Time
	if err := row.Scan(&n.ID, &n.ProductID, &n.Text, &n.Tags, &n.Author, &created); err != nil {
		return notes.Note{}, err
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
	n.CreatedAt = created.UTC()
	return n, nil
}

var (
	_ notes.Repository    = (*PostgresRepository)(nil)
	_ auth.ShopDataPurger = (*PostgresRepository)(nil)
)
