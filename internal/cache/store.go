package cache

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/joseph-ayodele/docconv/internal/common"
)

// Store is a key/payload table.
type Store struct {
	db     *sqlx.DB
	pool   *pgxpool.Pool
	logger *slog.Logger
}

type entry struct {
	Key       string `db:"cache_key"`
	Payload   string `db:"payload"`
	CreatedAt string `db:"created_at"`
}

// Get returns the payload stored under key. found is false on a miss.
func (s *Store) Get(ctx context.Context, key string) (payload []byte, found bool, err error) {
	var e entry
	err = s.db.GetContext(ctx, &e,
		s.db.Rebind(`SELECT cache_key, payload, created_at FROM conversion_cache WHERE cache_key = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, common.WrapError(err, "read cache entry")
	}
	return []byte(e.Payload), true, nil
}

// Put upserts payload under key.
func (s *Store) Put(ctx context.Context, key string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO conversion_cache (cache_key, payload, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (cache_key) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`),
		key, string(payload), time.Now().UTC().Format(time.RFC3339))
	return common.WrapError(err, "write cache entry")
}

// Close closes the database connections gracefully
func (s *Store) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("failed to close cache db", "error", err)
	}
	if s.pool != nil {
		s.pool.Close()
	}
}
