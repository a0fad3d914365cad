package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/j-veylop/tower-battlelog/internal/logger"
	"github.com/j-veylop/tower-battlelog/internal/models"
)

// InsertReport stores a new report with its cached meta.
func (db *DB) InsertReport(ctx context.Context, r *models.Report) error {
	query := `
		INSERT INTO reports (
			id, raw, created_at, type, memo,
			battle_date, coins, seconds, cells, reroll, meta_version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	_, err := db.ExecContext(ctx, query,
		r.ID,
		r.Raw,
		r.CreatedAt.UnixMilli(),
		string(r.Type),
		r.Memo,
		nullString(r.Meta.Date),
		r.Meta.Coins,
		r.Meta.Seconds,
		r.Meta.Cells,
		r.Meta.Reroll,
		currentMetaVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	return nil
}

// GetReport returns a report by ID.
func (db *DB) GetReport(ctx context.Context, id string) (*models.Report, error) {
	row := db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = ?`, id)

	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrReportNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return r, nil
}

// ListReports returns one page of reports, newest first, starting after cursor.
func (db *DB) ListReports(
	ctx context.Context,
	filter models.ReportFilter,
	cursor *models.Cursor,
	limit int,
) (*models.ReportPage, error) {
	if limit <= 0 {
		limit = 10
	}

	var (
		where []string
		args  []any
	)

	switch {
	case filter.All:
	case filter.Other:
		placeholders := make([]string, len(models.ClassifiedReportTypes))
		for i, t := range models.ClassifiedReportTypes {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		where = append(where, "type NOT IN ("+strings.Join(placeholders, ", ")+")")
	default:
		where = append(where, "type = ?")
		args = append(args, string(filter.Type))
	}

	if cursor != nil {
		ms := cursor.CreatedAt.UnixMilli()
		where = append(where, "(created_at < ? OR (created_at = ? AND id < ?))")
		args = append(args, ms, ms, cursor.ID)
	}

	query := `SELECT ` + reportColumns + ` FROM reports`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit+1)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	page := &models.ReportPage{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		page.Reports = append(page.Reports, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}

	if len(page.Reports) > limit {
		page.Reports = page.Reports[:limit]
		page.HasMore = true
	}
	if page.HasMore {
		last := page.Reports[len(page.Reports)-1]
		page.Next = &models.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}

	return page, nil
}

// AllReports returns every stored report, oldest first.
func (db *DB) AllReports(ctx context.Context) ([]models.Report, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query all reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reports []models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *r)
	}

	return reports, rows.Err()
}

// CountReports returns the number of stored reports.
func (db *DB) CountReports(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return n, nil
}

// UpdateReportType changes a report's category.
func (db *DB) UpdateReportType(ctx context.Context, id string, t models.ReportType) error {
	res, err := db.ExecContext(ctx, `UPDATE reports SET type = ? WHERE id = ?`, string(t), id)
	if err != nil {
		return fmt.Errorf("failed to update report type: %w", err)
	}
	return requireRow(res, id)
}

// UpdateReportMemo replaces a report's memo.
func (db *DB) UpdateReportMemo(ctx context.Context, id, memo string) error {
	res, err := db.ExecContext(ctx, `UPDATE reports SET memo = ? WHERE id = ?`, memo, id)
	if err != nil {
		return fmt.Errorf("failed to update report memo: %w", err)
	}
	return requireRow(res, id)
}

// DeleteReport removes a report and returns what was deleted.
func (db *DB) DeleteReport(ctx context.Context, id string) (*models.Report, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	r, err := scanReport(tx.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrReportNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to delete report: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit delete: %w", err)
	}
	return r, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(s rowScanner) (*models.Report, error) {
	var (
		r         models.Report
		createdMs int64
		typ       string
	)
	err := s.Scan(
		&r.ID,
		&r.Raw,
		&createdMs,
		&typ,
		&r.Memo,
		&r.Meta.Date,
		&r.Meta.Coins,
		&r.Meta.Seconds,
		&r.Meta.Cells,
		&r.Meta.Reroll,
	)
	if err != nil {
		return nil, err
	}
	r.CreatedAt = time.UnixMilli(createdMs)
	r.Type = models.ReportType(typ)
	return &r, nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", models.ErrReportNotFound, id)
	}
	return nil
}

// nullString converts a string to sql.NullString.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
