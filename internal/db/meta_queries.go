package db

import (
	"context"
	"fmt"
)

// IncrementReads adds n to the global read counter and returns the new total.
func (db *DB) IncrementReads(ctx context.Context, n int) (int64, error) {
	var total int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO system_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = value + excluded.value
		RETURNING value`,
		totalReadsKey, n,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to increment reads: %w", err)
	}
	return total, nil
}

// TotalReads returns the global read counter.
func (db *DB) TotalReads(ctx context.Context) (int64, error) {
	var total int64
	err := db.QueryRowContext(ctx,
		`SELECT COALESCE((SELECT value FROM system_meta WHERE key = ?), 0)`, totalReadsKey,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to read total reads: %w", err)
	}
	return total, nil
}
