package db

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/j-veylop/tower-battlelog/internal/logger"
	"github.com/j-veylop/tower-battlelog/internal/models"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// goose keeps its configuration in package globals.
var gooseMu sync.Mutex

// gooseLogger routes migration output through the application logger.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (gooseLogger) Fatalf(format string, v ...any) {
	logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (db *DB) migrate() error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(gooseLogger{})

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(context.Background(), db.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to run goose migrations: %w", err)
	}

	return nil
}

// SchemaVersion returns the applied migration version.
func (db *DB) SchemaVersion(ctx context.Context) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	v, err := goose.GetDBVersionContext(ctx, db.DB)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

// MetaFunc derives the cached aggregation fields from a raw report.
type MetaFunc func(raw string) models.ReportMeta

// BackfillMeta re-derives cached meta for rows saved before the cells and
// reroll columns existed. It returns the number of rows rewritten.
func (db *DB) BackfillMeta(ctx context.Context, derive MetaFunc) (int, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, raw FROM reports WHERE meta_version < ?`, currentMetaVersion)
	if err != nil {
		return 0, fmt.Errorf("failed to query legacy reports: %w", err)
	}

	type legacy struct{ id, raw string }
	var pending []legacy
	for rows.Next() {
		var l legacy
		if err := rows.Scan(&l.id, &l.raw); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("failed to scan legacy report: %w", err)
		}
		pending = append(pending, l)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to iterate legacy reports: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin backfill: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, l := range pending {
		meta := derive(l.raw)
		_, err := tx.ExecContext(ctx, `
			UPDATE reports
			SET battle_date = ?, coins = ?, seconds = ?, cells = ?, reroll = ?, meta_version = ?
			WHERE id = ?`,
			nullString(meta.Date), meta.Coins, meta.Seconds, meta.Cells, meta.Reroll,
			currentMetaVersion, l.id,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to backfill report %s: %w", l.id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit backfill: %w", err)
	}

	logger.Info("backfilled report meta", "count", len(pending))
	return len(pending), nil
}
