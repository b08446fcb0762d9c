package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQL dialects supported by SQLKV.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// SQLKV stores each key as one row of the documents table. The document
// is still read and written whole; the database is only a durable KV here.
type SQLKV struct {
	db      *sql.DB
	dialect string
}

func NewSQLKV(db *sql.DB, dialect string) *SQLKV {
	return &SQLKV{db: db, dialect: dialect}
}

// EnsureSchema creates the state table if needed.
func (s *SQLKV) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS documents (
		name TEXT PRIMARY KEY,
		payload TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create state table: %w", err)
	}
	return nil
}

func (s *SQLKV) Get(ctx context.Context, key string) (string, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM documents WHERE name = `+s.arg(1), key,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrMiss
		}
		return "", fmt.Errorf("select %s: %w", key, err)
	}
	return payload, nil
}

func (s *SQLKV) Set(ctx context.Context, key string, value string, _ time.Duration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (name, payload) VALUES (`+s.arg(1)+`, `+s.arg(2)+`)
		 ON CONFLICT (name) DO UPDATE SET payload = excluded.payload`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *SQLKV) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE name = `+s.arg(1), key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLKV) arg(n int) string {
	if s.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}
