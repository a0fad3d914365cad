package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/j-veylop/tower-battlelog/internal/models"
)

const dailyColumns = `date, total_coins, total_seconds, total_cells, total_reroll, version, updated_at`

// IncrementDaily atomically adds a delta to its day's totals, creating the row
// when the day is new.
func (db *DB) IncrementDaily(ctx context.Context, d models.DailyDelta) error {
	query := `
		INSERT INTO daily_stats (` + dailyColumns + `)
		VALUES (?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT(date) DO UPDATE SET
			total_coins = total_coins + excluded.total_coins,
			total_seconds = total_seconds + excluded.total_seconds,
			total_cells = total_cells + excluded.total_cells,
			total_reroll = total_reroll + excluded.total_reroll,
			version = version + 1,
			updated_at = excluded.updated_at
	`

	_, err := db.ExecContext(ctx, query,
		d.Date, d.Coins, d.Seconds, d.Cells, d.Reroll, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to increment daily stats: %w", err)
	}
	return nil
}

// GetDaily returns the aggregate for a date, or nil when none is stored.
func (db *DB) GetDaily(ctx context.Context, date string) (*models.DailyAggregate, error) {
	row := db.QueryRowContext(ctx, `SELECT `+dailyColumns+` FROM daily_stats WHERE date = ?`, date)

	a, err := scanDaily(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}
	return a, nil
}

// CompareAndSwapDaily writes next only if the stored version still equals
// expected. An expected version of zero means the row must not exist yet.
func (db *DB) CompareAndSwapDaily(ctx context.Context, next models.DailyAggregate, expected int64) (bool, error) {
	now := time.Now().UnixMilli()

	var (
		res sql.Result
		err error
	)
	if expected == 0 {
		res, err = db.ExecContext(ctx, `
			INSERT INTO daily_stats (`+dailyColumns+`)
			VALUES (?, ?, ?, ?, ?, 1, ?)
			ON CONFLICT(date) DO NOTHING`,
			next.Date, next.TotalCoins, next.TotalSeconds, next.TotalCells, next.TotalReroll, now)
	} else {
		res, err = db.ExecContext(ctx, `
			UPDATE daily_stats
			SET total_coins = ?, total_seconds = ?, total_cells = ?, total_reroll = ?,
				version = version + 1, updated_at = ?
			WHERE date = ? AND version = ?`,
			next.TotalCoins, next.TotalSeconds, next.TotalCells, next.TotalReroll, now,
			next.Date, expected)
	}
	if err != nil {
		return false, fmt.Errorf("failed to swap daily stats: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}

// ReplaceDaily makes the stored aggregates exactly equal to aggs. Days not in
// aggs are removed.
func (db *DB) ReplaceDaily(ctx context.Context, aggs []models.DailyAggregate) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin daily rebuild: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	keep := make(map[string]struct{}, len(aggs))
	now := time.Now().UnixMilli()
	for _, a := range aggs {
		keep[a.Date] = struct{}{}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO daily_stats (`+dailyColumns+`)
			VALUES (?, ?, ?, ?, ?, 1, ?)
			ON CONFLICT(date) DO UPDATE SET
				total_coins = excluded.total_coins,
				total_seconds = excluded.total_seconds,
				total_cells = excluded.total_cells,
				total_reroll = excluded.total_reroll,
				version = version + 1,
				updated_at = excluded.updated_at`,
			a.Date, a.TotalCoins, a.TotalSeconds, a.TotalCells, a.TotalReroll, now)
		if err != nil {
			return fmt.Errorf("failed to write daily stats for %s: %w", a.Date, err)
		}
	}

	rows, err := tx.QueryContext(ctx, `SELECT date FROM daily_stats`)
	if err != nil {
		return fmt.Errorf("failed to list daily stats: %w", err)
	}
	var stale []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			_ = rows.Close()
			return fmt.Errorf("failed to scan daily date: %w", err)
		}
		if _, ok := keep[date]; !ok {
			stale = append(stale, date)
		}
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate daily stats: %w", err)
	}

	for _, date := range stale {
		if _, err := tx.ExecContext(ctx, `DELETE FROM daily_stats WHERE date = ?`, date); err != nil {
			return fmt.Errorf("failed to remove stale day %s: %w", date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit daily rebuild: %w", err)
	}
	return nil
}

// ListDaily returns aggregates ordered by date descending. limit <= 0 returns all.
func (db *DB) ListDaily(ctx context.Context, limit int) ([]models.DailyAggregate, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+dailyColumns+` FROM daily_stats ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var aggs []models.DailyAggregate
	for rows.Next() {
		a, err := scanDaily(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily stats: %w", err)
		}
		aggs = append(aggs, *a)
	}

	return aggs, rows.Err()
}

func scanDaily(s rowScanner) (*models.DailyAggregate, error) {
	var (
		a         models.DailyAggregate
		updatedMs int64
	)
	err := s.Scan(
		&a.Date,
		&a.TotalCoins,
		&a.TotalSeconds,
		&a.TotalCells,
		&a.TotalReroll,
		&a.Version,
		&updatedMs,
	)
	if err != nil {
		return nil, err
	}
	a.UpdatedAt = time.UnixMilli(updatedMs)
	return &a, nil
}
