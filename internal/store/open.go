package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/avadhootsavle/hackispiration-hackathon/common/config"
	"github.com/avadhootsavle/hackispiration-hackathon/common/database"
	rediscommon "github.com/avadhootsavle/hackispiration-hackathon/common/redis"
)

// Storage drivers accepted by Open.
const (
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Options 选择存储后端所需的配置
type Options struct {
	Driver    string
	DataPath  string // file driver: document path
	LocksPath string // file driver: KV file for donation locks
	SQLite    config.SQLiteConfig
	Database  config.DatabaseConfig
	Redis     config.RedisConfig
}

// Backend bundles the document store with the KV holding donation locks.
type Backend struct {
	Documents *Guarded
	KV        KV
	Locks     LockStore
	Driver    string

	// Redis is set for the redis driver so other components can share the client.
	Redis *redis.Client

	closers []func() error
}

// Close releases connections opened by Open.
func (b *Backend) Close() error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open 根据驱动创建存储后端
func Open(ctx context.Context, opts Options, logger *zap.Logger) (*Backend, error) {
	driver := strings.ToLower(strings.TrimSpace(opts.Driver))
	if driver == "" {
		driver = DriverFile
	}
	b := &Backend{Driver: driver}

	switch driver {
	case DriverFile:
		b.Documents = NewGuarded(NewFileStore(opts.DataPath))
		b.KV = NewFileKV(opts.LocksPath)

	case DriverMemory:
		kv := NewMemoryKV()
		b.KV = kv
		b.Documents = NewGuarded(NewKVStore(kv))

	case DriverRedis:
		client := rediscommon.NewRedisClient(&opts.Redis)
		if err := rediscommon.Ping(ctx, client); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		b.Redis = client
		b.closers = append(b.closers, client.Close)
		kv := NewRedisKV(client)
		b.KV = kv
		b.Documents = NewGuarded(NewKVStore(kv))

	case DriverPostgres, DriverSQLite:
		var (
			db      *sql.DB
			err     error
			dialect = DialectSQLite
		)
		if driver == DriverPostgres {
			dialect = DialectPostgres
			db, err = database.NewPostgresDB(ctx, &opts.Database)
		} else {
			db, err = database.NewSQLiteDB(ctx, &opts.SQLite)
		}
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, db.Close)
		kv := NewSQLKV(db, dialect)
		if err := kv.EnsureSchema(ctx); err != nil {
			_ = b.Close()
			return nil, err
		}
		b.KV = kv
		b.Documents = NewGuarded(NewKVStore(kv))

	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}

	b.Locks = NewKVLockStore(b.KV)
	if logger != nil {
		logger.Info("storage opened", zap.String("driver", driver))
	}
	return b, nil
}
