package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/platform/postgres"
	"storefront/pkg/platform/sentinel"
)

// PostgresStore persists the catalog in the products table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the products table when missing. Kept here rather than
// in a migration tool so the development loop stays one binary.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS products (
			id        BIGINT PRIMARY KEY,
			title     TEXT NOT NULL,
			category  TEXT NOT NULL DEFAULT '',
			price     DOUBLE PRECISION NOT NULL DEFAULT 0,
			rating    DOUBLE PRECISION NOT NULL DEFAULT 0,
			image_url TEXT NOT NULL DEFAULT ''
		)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure products schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, category, price, rating, image_url FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Category, &p.Price, &p.Rating, &p.ImageURL); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Create(ctx context.Context, p Product) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (id, title, category, price, rating, image_url)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Title, p.Category, p.Price, p.Rating, p.ImageURL)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, p Product) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET title = $2, category = $3, price = $4, rating = $5, image_url = $6
		 WHERE id = $1`,
		p.ID, p.Title, p.Category, p.Price, p.Rating, p.ImageURL)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
