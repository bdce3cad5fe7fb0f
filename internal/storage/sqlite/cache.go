package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/qdoctor/agent/internal/core"
)

// CacheRepo is the persistent layer of the response cache. Values are the
// JSON-encoded FinalResponse so entries round-trip losslessly.
type CacheRepo struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func NewCacheRepo(db *sql.DB, ttl time.Duration) *CacheRepo {
	return &CacheRepo{db: db, ttl: ttl, now: time.Now}
}

func (r *CacheRepo) Get(ctx context.Context, key string) (core.FinalResponse, bool, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT response FROM response_cache WHERE key = ? AND (expires_at IS NULL OR expires_at > ?)`,
		key, r.now().UTC(),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return core.FinalResponse{}, false, nil
	}
	if err != nil {
		return core.FinalResponse{}, false, fmt.Errorf("%w: %v", core.ErrCacheUnavailable, err)
	}

	var resp core.FinalResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		// A corrupt row is treated as a miss, not a pipeline failure.
		return core.FinalResponse{}, false, fmt.Errorf("%w: decode entry: %v", core.ErrCacheUnavailable, err)
	}
	return resp, true, nil
}

func (r *CacheRepo) Set(ctx context.Context, key string, resp core.FinalResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}

	now := r.now().UTC()
	var expiresAt any
	if r.ttl > 0 {
		expiresAt = now.Add(r.ttl)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO response_cache (key, response, created_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET response = excluded.response,
		     created_at = excluded.created_at, expires_at = excluded.expires_at`,
		key, string(payload), now, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrCacheUnavailable, err)
	}

	// Opportunistic cleanup of expired rows.
	_, _ = r.db.ExecContext(ctx,
		`DELETE FROM response_cache WHERE expires_at IS NOT NULL AND expires_at <= ?`, now)

	return nil
}

func (r *CacheRepo) Invalidate(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM response_cache WHERE key = ?`, key); err != nil {
		return fmt.Errorf("%w: %v", core.ErrCacheUnavailable, err)
	}
	return nil
}

func (r *CacheRepo) Purge(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM response_cache`); err != nil {
		return fmt.Errorf("%w: %v", core.ErrCacheUnavailable, err)
	}
	return nil
}
