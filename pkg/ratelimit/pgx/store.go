package pgx

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/lumen-atj/lumen/backend/pkg/logger"
	"github.com/lumen-atj/lumen/backend/pkg/ratelimit"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed migrations/*.sql
var migrations embed.FS

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// Store keeps rate limit counters in PostgreSQL so several server instances
// share one quota. Each Take runs in its own transaction holding advisory
// locks on the bucket keys.
type Store struct {
	conn pgxIConn
}

func New(conn pgxIConn) *Store {
	return &Store{conn: conn}
}

// Migrate applies the embedded schema to databaseURL.
func Migrate(databaseURL string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func (s *Store) Take(ctx context.Context, buckets []ratelimit.Bucket) (ratelimit.Decision, error) {
	keys := make([]string, len(buckets))
	for i, b := range buckets {
		keys[i] = sanitizeKey(b.Key)
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return ratelimit.Decision{}, err
	}
	defer tx.Rollback(ctx)

	// Lock in sorted order so concurrent takes over overlapping keys cannot deadlock.
	locked := slices.Clone(keys)
	slices.Sort(locked)
	for _, k := range slices.Compact(locked) {
		if _, err := tx.Exec(ctx, lockSQL, k); err != nil {
			return ratelimit.Decision{}, fmt.Errorf("failed to lock bucket: %w", err)
		}
	}

	current, err := readCounts(ctx, tx, keys)
	if err != nil {
		return ratelimit.Decision{}, err
	}

	counts := make([]int, len(buckets))
	for i, k := range keys {
		counts[i] = current[k]
	}
	for i, b := range buckets {
		if counts[i] >= b.Limit {
			return ratelimit.Decision{Allowed: false, Rejected: i, Counts: counts}, nil
		}
	}

	for i, b := range buckets {
		ttl := b.TTL.Milliseconds()
		if err := tx.QueryRow(ctx, incrementSQL, keys[i], ttl).Scan(&counts[i]); err != nil {
			return ratelimit.Decision{}, fmt.Errorf("failed to increment bucket: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return ratelimit.Decision{}, err
	}
	return ratelimit.Decision{Allowed: true, Rejected: -1, Counts: counts}, nil
}

func readCounts(ctx context.Context, tx pgxv5.Tx, keys []string) (map[string]int, error) {
	rows, err := tx.Query(ctx, selectSQL, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to read buckets: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int, len(keys))
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		out[key] = count
	}
	return out, rows.Err()
}

// Sweep deletes expired counters and returns how many were removed.
func (s *Store) Sweep(ctx context.Context) (int64, error) {
	tag, err := s.conn.Exec(ctx, sweepSQL)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				logger.Warn("[RateLimit] Failed to sweep expired counters", "err", err)
				continue
			}
			if n > 0 {
				logger.Debug("[RateLimit] Swept expired counters", "count", n)
			}
		}
	}
}

func sanitizeKey(value string) string {
	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}

const lockSQL = `SELECT pg_advisory_xact_lock(hashtext($1));`

const selectSQL = `
SELECT bucket_key, count
FROM rate_limit_counters
WHERE bucket_key = ANY($1) AND expires_at > now();
`

const incrementSQL = `
INSERT INTO rate_limit_counters (bucket_key, count, expires_at)
VALUES ($1, 1, now() + ($2::bigint * interval '1 millisecond'))
ON CONFLICT (bucket_key) DO UPDATE
SET count = CASE
        WHEN rate_limit_counters.expires_at > now() THEN rate_limit_counters.count + 1
        ELSE 1
    END,
    expires_at = CASE
        WHEN rate_limit_counters.expires_at > now() THEN rate_limit_counters.expires_at
        ELSE EXCLUDED.expires_at
    END
RETURNING count;
`

const sweepSQL = `
DELETE FROM rate_limit_counters
WHERE expires_at <= now();
`
