package purchase

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"storefront/internal/platform/postgres"
	"storefront/pkg/platform/sentinel"
)

// PostgresStore keeps one row per purchase with the item lines as JSONB,
// mirroring the document shape the frontend consumes.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS purchases (
			purchase_id TEXT PRIMARY KEY,
			items       JSONB NOT NULL DEFAULT '[]'
		)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure purchases schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Purchase, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT purchase_id, items FROM purchases ORDER BY purchase_id`)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var out []Purchase
	for rows.Next() {
		var p Purchase
		var items []byte
		if err := rows.Scan(&p.PurchaseID, &items); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		if err := json.Unmarshal(items, &p.Items); err != nil {
			return nil, fmt.Errorf("decode purchase items: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Create(ctx context.Context, purchases []Purchase) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin purchase insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range purchases {
		items, err := json.Marshal(p.Items)
		if err != nil {
			return fmt.Errorf("encode purchase items: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO purchases (purchase_id, items) VALUES ($1, $2)`,
			p.PurchaseID, items); err != nil {
			if postgres.IsUniqueViolation(err) {
				return sentinel.ErrConflict
			}
			return fmt.Errorf("insert purchase: %w", err)
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) Update(ctx context.Context, p Purchase) error {
	items, err := json.Marshal(p.Items)
	if err != nil {
		return fmt.Errorf("encode purchase items: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE purchases SET items = $2 WHERE purchase_id = $1`, p.PurchaseID, items)
	if err != nil {
		return fmt.Errorf("update purchase: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update purchase: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, purchaseID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM purchases WHERE purchase_id = $1`, purchaseID)
	if err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
