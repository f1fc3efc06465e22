package account

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/platform/postgres"
	"storefront/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS userdata (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL DEFAULT '',
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT ''
		)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure userdata schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, email FROM userdata ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Create(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO userdata (id, name, email, password_hash) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Name, u.Email, u.PasswordHash)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, u User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE userdata
		 SET name = $2, email = $3,
		     password_hash = CASE WHEN $4 = '' THEN password_hash ELSE $4 END
		 WHERE id = $1`,
		u.ID, u.Name, u.Email, u.PasswordHash)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM userdata WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
