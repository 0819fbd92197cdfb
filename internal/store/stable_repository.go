package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yourusername/longshot/internal/models"
)

// StableRepository persists stable-tier cache entries so a restart does not
// discard months of low-volatility results. Snapshot drift checks still run
// on every read after reseeding, so reloading stale rows is safe.
type StableRepository struct {
	db *DB
}

// NewStableRepository creates a stable-tier repository
func NewStableRepository(db *DB) *StableRepository {
	return &StableRepository{db: db}
}

// Save upserts one stable-tier entry keyed by canonical key
func (r *StableRepository) Save(ctx context.Context, entry *models.CacheEntry) error {
	snapshot, err := json.Marshal(entry.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	estimate, err := json.Marshal(entry.Value)
	if err != nil {
		return fmt.Errorf("failed to marshal estimate: %w", err)
	}

	query := `
		INSERT INTO stable_estimates (key, created_at, calibration_signature, snapshot, estimate)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE SET
			created_at = EXCLUDED.created_at,
			calibration_signature = EXCLUDED.calibration_signature,
			snapshot = EXCLUDED.snapshot,
			estimate = EXCLUDED.estimate
	`

	var sig string
	if entry.Snapshot != nil {
		sig = entry.Snapshot.CalibrationSignature
	}

	if _, err := r.db.Pool().Exec(ctx, query, entry.Key, entry.CreatedAt, sig, snapshot, estimate); err != nil {
		return fmt.Errorf("failed to save stable estimate: %w", err)
	}
	return nil
}

// LoadAll returns every persisted stable entry, newest first
func (r *StableRepository) LoadAll(ctx context.Context, limit int) ([]*models.CacheEntry, error) {
	query := `
		SELECT key, created_at, snapshot, estimate
		FROM stable_estimates
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Pool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load stable estimates: %w", err)
	}
	defer rows.Close()

	var entries []*models.CacheEntry
	for rows.Next() {
		var (
			entry        models.CacheEntry
			snapshotJSON []byte
			estimateJSON []byte
		)
		if err := rows.Scan(&entry.Key, &entry.CreatedAt, &snapshotJSON, &estimateJSON); err != nil {
			return nil, fmt.Errorf("failed to scan stable estimate: %w", err)
		}
		if len(snapshotJSON) > 0 {
			var snap models.Snapshot
			if err := json.Unmarshal(snapshotJSON, &snap); err != nil {
				return nil, fmt.Errorf("failed to unmarshal snapshot for %s: %w", entry.Key, err)
			}
			entry.Snapshot = &snap
		}
		if err := json.Unmarshal(estimateJSON, &entry.Value); err != nil {
			return nil, fmt.Errorf("failed to unmarshal estimate for %s: %w", entry.Key, err)
		}
		entry.Tier = models.TierStable
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stable estimates: %w", err)
	}
	return entries, nil
}

// Delete removes one entry by key
func (r *StableRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.Pool().Exec(ctx, "DELETE FROM stable_estimates WHERE key = $1", key); err != nil {
		return fmt.Errorf("failed to delete stable estimate: %w", err)
	}
	return nil
}

// PruneOlderThan drops entries past the stable-tier TTL
func (r *StableRepository) PruneOlderThan(ctx context.Context, age time.Duration, now time.Time) (int64, error) {
	tag, err := r.db.Pool().Exec(ctx,
		"DELETE FROM stable_estimates WHERE created_at < $1", now.Add(-age))
	if err != nil {
		return 0, fmt.Errorf("failed to prune stable estimates: %w", err)
	}
	return tag.RowsAffected(), nil
}
