package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/avadhootsavle/hackispiration-hackathon/common/config"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// NewSQLiteDB 打开（必要时创建）SQLite 文件
func NewSQLiteDB(ctx context.Context, cfg *config.SQLiteConfig) (*sql.DB, error) {
	path := cfg.Path
	if path == "" {
		path = "lifeline.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite 只允许单写者
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}
