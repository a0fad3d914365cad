package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/j-veylop/tower-battlelog/internal/models"
)

func insertTestReport(t *testing.T, db *DB, id string, created time.Time, typ models.ReportType) *models.Report {
	t.Helper()
	r := &models.Report{
		ID:        id,
		Raw:       "Battle Date Mar 10, 2024 08:00\nCoins earned\t1K",
		CreatedAt: created,
		Type:      typ,
		Meta: models.ReportMeta{
			Date:    "2024-03-10",
			Coins:   1000,
			Seconds: 60,
			Cells:   10,
			Reroll:  5,
		},
	}
	if err := db.InsertReport(context.Background(), r); err != nil {
		t.Fatalf("InsertReport failed: %v", err)
	}
	return r
}

func TestInsertAndGetReport(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	created := time.UnixMilli(time.Now().UnixMilli())
	insertTestReport(t, db, "r1", created, models.ReportTypeFarming)

	got, err := db.GetReport(ctx, "r1")
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if got.Type != models.ReportTypeFarming {
		t.Errorf("Expected type farming, got %s", got.Type)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("Expected created %v, got %v", created, got.CreatedAt)
	}
	if got.Meta.Date != "2024-03-10" || got.Meta.Coins != 1000 || got.Meta.Cells != 10 {
		t.Errorf("Unexpected meta: %+v", got.Meta)
	}
	if got.Memo != "" {
		t.Errorf("Expected empty memo, got %q", got.Memo)
	}
}

func TestGetReport_NotFound(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	_, err := db.GetReport(context.Background(), "missing")
	if !errors.Is(err, models.ErrReportNotFound) {
		t.Errorf("Expected ErrReportNotFound, got %v", err)
	}
}

func TestInsertReport_NoDateStoresNull(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	r := &models.Report{ID: "nodate", Raw: "x", Type: models.ReportTypeUnclassified}
	if err := db.InsertReport(ctx, r); err != nil {
		t.Fatalf("InsertReport failed: %v", err)
	}
	if r.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}

	var isNull bool
	err := db.QueryRowContext(ctx, `SELECT battle_date IS NULL FROM reports WHERE id = ?`, "nodate").Scan(&isNull)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if !isNull {
		t.Error("Expected battle_date to be NULL")
	}

	got, err := db.GetReport(ctx, "nodate")
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if got.Meta.Date != "" {
		t.Errorf("Expected empty date, got %q", got.Meta.Date)
	}
}

func TestListReports_Pagination(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	base := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	for i := range 25 {
		insertTestReport(t, db, fmt.Sprintf("r%02d", i), base.Add(time.Duration(i)*time.Minute), models.ReportTypeFarming)
	}

	var (
		seen   []string
		cursor *models.Cursor
		pages  int
	)
	for {
		page, err := db.ListReports(ctx, models.FilterAll, cursor, 10)
		if err != nil {
			t.Fatalf("ListReports failed: %v", err)
		}
		pages++
		for _, r := range page.Reports {
			seen = append(seen, r.ID)
		}
		if !page.HasMore {
			if page.Next != nil {
				t.Error("Expected nil cursor on last page")
			}
			break
		}
		cursor = page.Next
	}

	if pages != 3 {
		t.Errorf("Expected 3 pages, got %d", pages)
	}
	if len(seen) != 25 {
		t.Fatalf("Expected 25 reports, got %d", len(seen))
	}
	if seen[0] != "r24" || seen[24] != "r00" {
		t.Errorf("Expected newest first, got %s..%s", seen[0], seen[24])
	}
}

func TestListReports_SameTimestampTieBreak(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	ts := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	for _, id := range []string{"a", "b", "c"} {
		insertTestReport(t, db, id, ts, models.ReportTypeFarming)
	}

	first, err := db.ListReports(ctx, models.FilterAll, nil, 2)
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if len(first.Reports) != 2 || first.Reports[0].ID != "c" || first.Reports[1].ID != "b" {
		t.Fatalf("Unexpected first page: %+v", first.Reports)
	}

	second, err := db.ListReports(ctx, models.FilterAll, first.Next, 2)
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if len(second.Reports) != 1 || second.Reports[0].ID != "a" {
		t.Fatalf("Unexpected second page: %+v", second.Reports)
	}
	if second.HasMore {
		t.Error("Expected no more pages")
	}
}

func TestListReports_Filters(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	base := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	types := []models.ReportType{
		models.ReportTypeFarming,
		models.ReportTypeTournament,
		models.ReportTypeUnclassified,
		models.ReportType("legacy"),
		models.ReportTypeFarming,
	}
	for i, typ := range types {
		insertTestReport(t, db, fmt.Sprintf("r%d", i), base.Add(time.Duration(i)*time.Second), typ)
	}

	tests := []struct {
		name   string
		filter models.ReportFilter
		want   int
	}{
		{"All", models.FilterAll, 5},
		{"Farming", models.FilterByType(models.ReportTypeFarming), 2},
		{"Tournament", models.FilterByType(models.ReportTypeTournament), 1},
		{"Climb", models.FilterByType(models.ReportTypeClimb), 0},
		{"Other", models.FilterOther, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := db.ListReports(ctx, tt.filter, nil, 10)
			if err != nil {
				t.Fatalf("ListReports failed: %v", err)
			}
			if len(page.Reports) != tt.want {
				t.Errorf("Expected %d reports, got %d", tt.want, len(page.Reports))
			}
			for _, r := range page.Reports {
				if !tt.filter.Matches(r.Type) {
					t.Errorf("Report %s of type %s does not match filter %s", r.ID, r.Type, tt.filter)
				}
			}
		})
	}
}

func TestUpdateReportTypeAndMemo(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	insertTestReport(t, db, "r1", time.Now(), models.ReportTypeUnclassified)

	if err := db.UpdateReportType(ctx, "r1", models.ReportTypeClimb); err != nil {
		t.Fatalf("UpdateReportType failed: %v", err)
	}
	if err := db.UpdateReportMemo(ctx, "r1", "new personal best"); err != nil {
		t.Fatalf("UpdateReportMemo failed: %v", err)
	}

	got, err := db.GetReport(ctx, "r1")
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if got.Type != models.ReportTypeClimb {
		t.Errorf("Expected type climb, got %s", got.Type)
	}
	if got.Memo != "new personal best" {
		t.Errorf("Expected memo to be saved, got %q", got.Memo)
	}

	if err := db.UpdateReportType(ctx, "missing", models.ReportTypeClimb); !errors.Is(err, models.ErrReportNotFound) {
		t.Errorf("Expected ErrReportNotFound, got %v", err)
	}
	if err := db.UpdateReportMemo(ctx, "missing", "x"); !errors.Is(err, models.ErrReportNotFound) {
		t.Errorf("Expected ErrReportNotFound, got %v", err)
	}
}

func TestDeleteReport(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	insertTestReport(t, db, "r1", time.Now(), models.ReportTypeFarming)

	deleted, err := db.DeleteReport(ctx, "r1")
	if err != nil {
		t.Fatalf("DeleteReport failed: %v", err)
	}
	if deleted.ID != "r1" || deleted.Meta.Coins != 1000 {
		t.Errorf("Unexpected deleted report: %+v", deleted)
	}

	if _, err := db.GetReport(ctx, "r1"); !errors.Is(err, models.ErrReportNotFound) {
		t.Errorf("Expected report to be gone, got %v", err)
	}
	if _, err := db.DeleteReport(ctx, "r1"); !errors.Is(err, models.ErrReportNotFound) {
		t.Errorf("Expected ErrReportNotFound on second delete, got %v", err)
	}
}

func TestAllReportsAndCount(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	base := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	insertTestReport(t, db, "late", base.Add(time.Hour), models.ReportTypeFarming)
	insertTestReport(t, db, "early", base, models.ReportTypeFarming)

	all, err := db.AllReports(ctx)
	if err != nil {
		t.Fatalf("AllReports failed: %v", err)
	}
	if len(all) != 2 || all[0].ID != "early" {
		t.Errorf("Expected oldest first, got %+v", all)
	}

	n, err := db.CountReports(ctx)
	if err != nil {
		t.Fatalf("CountReports failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 reports, got %d", n)
	}
}

func TestBackfillMeta(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	insertTestReport(t, db, "legacy", time.Now(), models.ReportTypeFarming)
	insertTestReport(t, db, "current", time.Now(), models.ReportTypeFarming)

	if _, err := db.ExecContext(ctx,
		`UPDATE reports SET meta_version = 1, cells = 0, reroll = 0 WHERE id = ?`, "legacy"); err != nil {
		t.Fatalf("Failed to downgrade row: %v", err)
	}

	calls := 0
	n, err := db.BackfillMeta(ctx, func(raw string) models.ReportMeta {
		calls++
		return models.ReportMeta{Date: "2024-03-10", Coins: 1000, Seconds: 60, Cells: 42, Reroll: 7}
	})
	if err != nil {
		t.Fatalf("BackfillMeta failed: %v", err)
	}
	if n != 1 || calls != 1 {
		t.Errorf("Expected 1 row backfilled, got n=%d calls=%d", n, calls)
	}

	got, err := db.GetReport(ctx, "legacy")
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if got.Meta.Cells != 42 || got.Meta.Reroll != 7 {
		t.Errorf("Expected backfilled meta, got %+v", got.Meta)
	}

	n, err = db.BackfillMeta(ctx, func(string) models.ReportMeta {
		t.Error("Expected no rows on second run")
		return models.ReportMeta{}
	})
	if err != nil || n != 0 {
		t.Errorf("Expected idempotent backfill, got n=%d err=%v", n, err)
	}
}

func TestReads(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	total, err := db.TotalReads(ctx)
	if err != nil {
		t.Fatalf("TotalReads failed: %v", err)
	}
	if total != 0 {
		t.Errorf("Expected 0 reads, got %d", total)
	}

	if _, err := db.IncrementReads(ctx, 10); err != nil {
		t.Fatalf("IncrementReads failed: %v", err)
	}
	total, err = db.IncrementReads(ctx, 4)
	if err != nil {
		t.Fatalf("IncrementReads failed: %v", err)
	}
	if total != 14 {
		t.Errorf("Expected 14 reads, got %d", total)
	}
}
