// Package cache stores successful conversion results keyed by file content,
// operation and options, in SQLite or PostgreSQL.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/docconv/internal/common"
)

const schema = `CREATE TABLE IF NOT EXISTS conversion_cache (
	cache_key  TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	created_at TEXT NOT NULL
)`

// Open connects to the DSN and makes sure the cache table exists.
//
//	postgres://... or postgresql://...  pgx pool wrapped as database/sql
//	sqlite:<path>, file:<path>, :memory:  modernc sqlite
func Open(ctx context.Context, cfg common.CacheConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	var (
		db   *sqlx.DB
		pool *pgxpool.Pool
		err  error
	)
	switch {
	case strings.HasPrefix(cfg.DSN, "postgres://"), strings.HasPrefix(cfg.DSN, "postgresql://"):
		db, pool, err = openPostgres(ctx, cfg)
	case strings.HasPrefix(cfg.DSN, "sqlite:"), strings.HasPrefix(cfg.DSN, "file:"), cfg.DSN == ":memory:":
		db, err = openSQLite(ctx, strings.TrimPrefix(cfg.DSN, "sqlite:"))
	default:
		return nil, common.NewAppError(common.CodeConfig, "unsupported cache dsn", fmt.Errorf("%q", redact(cfg.DSN)))
	}
	if err != nil {
		logger.Error("failed to open cache", "dsn", redact(cfg.DSN), "error", err)
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		if pool != nil {
			pool.Close()
		}
		return nil, fmt.Errorf("create cache table: %w", err)
	}
	logger.Debug("cache ready", "driver", db.DriverName())
	return &Store{db: db, pool: pool, logger: logger}, nil
}

func openPostgres(ctx context.Context, cfg common.CacheConfig) (*sqlx.DB, *pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("parse cache dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "docconv"

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	// Wrap pool as *sql.DB for sqlx
	return sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx"), pool, nil
}

func openSQLite(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; also keeps every caller on the same :memory: database
	db.SetMaxOpenConns(1)
	return db, nil
}

// redact drops the password from URL-style DSNs before logging.
func redact(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return dsn
	}
	user, _, _ := strings.Cut(creds, ":")
	return scheme + "://" + user + ":***@" + host
}
