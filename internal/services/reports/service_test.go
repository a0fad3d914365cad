package reports

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/j-veylop/tower-battlelog/internal/db"
	"github.com/j-veylop/tower-battlelog/internal/models"
)

const testReport = "Battle Report\n" +
	"Battle Date Mar 10, 2024 08:00\n" +
	"Real Time\t1h 0m 0s\n" +
	"Coins earned\t100000\n" +
	"Cells Earned\t5000\n" +
	"Damage Dealt\t1000000\n" +
	"Orb Damage\t600000\n"

func newTestService(t *testing.T, pageSize int) (*Service, *db.DB) {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return New(database, nil, pageSize), database
}

func TestSave(t *testing.T) {
	svc, database := newTestService(t, 0)
	ctx := context.Background()

	r, m, err := svc.Save(ctx, testReport, models.ReportTypeFarming)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if r.ID == "" {
		t.Error("Expected generated ID")
	}
	if m.ElapsedSeconds != 3600 {
		t.Errorf("Expected 3600 seconds, got %d", m.ElapsedSeconds)
	}

	stored, err := database.GetReport(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if stored.Raw != testReport || stored.Type != models.ReportTypeFarming || stored.Memo != "" {
		t.Errorf("Unexpected stored report: %+v", stored)
	}
	if stored.Meta.Date != "2024-03-10" || stored.Meta.Coins != 100000 || stored.Meta.Seconds != 3600 {
		t.Errorf("Unexpected stored meta: %+v", stored.Meta)
	}

	day, err := database.GetDaily(ctx, "2024-03-10")
	if err != nil || day == nil {
		t.Fatalf("GetDaily failed: %v", err)
	}
	if day.TotalCoins != 100000 || day.TotalSeconds != 3600 || day.TotalCells != 5000 {
		t.Errorf("Unexpected daily aggregate: %+v", day)
	}
}

func TestSave_Rejects(t *testing.T) {
	svc, database := newTestService(t, 0)
	ctx := context.Background()

	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"Empty", "", ErrEmptyReport},
		{"Whitespace", "  \n\t ", ErrEmptyReport},
		{"NoDate", "Coins earned\t1K", ErrNoBattleDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Save(ctx, tt.raw, models.ReportTypeFarming)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	n, err := database.CountReports(ctx)
	if err != nil {
		t.Fatalf("CountReports failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected nothing stored, got %d", n)
	}
}

func TestSave_DefaultType(t *testing.T) {
	svc, _ := newTestService(t, 0)

	r, _, err := svc.Save(context.Background(), testReport, "")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if r.Type != models.ReportTypeUnclassified {
		t.Errorf("Expected unclassified, got %s", r.Type)
	}
}

func TestList_PagesAndCountsReads(t *testing.T) {
	svc, _ := newTestService(t, 2)
	ctx := context.Background()

	for range 3 {
		if _, _, err := svc.Save(ctx, testReport, models.ReportTypeFarming); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	first, err := svc.List(ctx, models.FilterAll, nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(first.Reports) != 2 || !first.HasMore {
		t.Fatalf("Expected full first page, got %d (more=%v)", len(first.Reports), first.HasMore)
	}

	second, err := svc.List(ctx, models.FilterAll, first.Next)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(second.Reports) != 1 || second.HasMore {
		t.Fatalf("Expected last page of 1, got %d (more=%v)", len(second.Reports), second.HasMore)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalReads != 3 {
		t.Errorf("Expected 3 reads, got %d", stats.TotalReads)
	}
	if stats.ReportCount != 3 || stats.DayCount != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestDelete_SubtractsFromDay(t *testing.T) {
	svc, database := newTestService(t, 0)
	ctx := context.Background()

	keep, _, err := svc.Save(ctx, testReport, models.ReportTypeFarming)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	drop, _, err := svc.Save(ctx, testReport, models.ReportTypeFarming)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := svc.Delete(ctx, drop.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	day, err := database.GetDaily(ctx, "2024-03-10")
	if err != nil || day == nil {
		t.Fatalf("GetDaily failed: %v", err)
	}
	if day.TotalCoins != 100000 || day.TotalSeconds != 3600 {
		t.Errorf("Expected one report's totals, got %+v", day)
	}

	if _, err := svc.Get(ctx, keep.ID); err != nil {
		t.Errorf("Expected kept report, got %v", err)
	}
	if _, err := svc.Delete(ctx, drop.ID); !errors.Is(err, models.ErrReportNotFound) {
		t.Errorf("Expected ErrReportNotFound, got %v", err)
	}
}

func TestUpdateTypeAndMemo(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()

	r, _, err := svc.Save(ctx, testReport, models.ReportTypeUnclassified)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := svc.UpdateType(ctx, r.ID, models.ReportTypeTournament); err != nil {
		t.Fatalf("UpdateType failed: %v", err)
	}
	if err := svc.UpdateMemo(ctx, r.ID, "  wave record  "); err != nil {
		t.Fatalf("UpdateMemo failed: %v", err)
	}

	got, err := svc.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Type != models.ReportTypeTournament || got.Memo != "wave record" {
		t.Errorf("Unexpected report: %+v", got)
	}

	page, err := svc.List(ctx, models.FilterOther, nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page.Reports) != 0 {
		t.Errorf("Expected tournament report excluded from other, got %d", len(page.Reports))
	}
}

func TestRebuildDaily_MatchesIncremental(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()

	raws := []string{
		testReport,
		"Battle Date Mar 11, 2024 09:00\nReal Time\t2h 0m 0s\nCoins earned\t2M",
		"Battle Date Mar 10, 2024 22:00\nReal Time\t0h 10m 0s\nCoins earned\t5K",
	}
	for _, raw := range raws {
		if _, _, err := svc.Save(ctx, raw, models.ReportTypeFarming); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	before, err := svc.Daily(ctx, models.DayRangeAll)
	if err != nil {
		t.Fatalf("Daily failed: %v", err)
	}

	rebuilt, err := svc.RebuildDaily(ctx)
	if err != nil {
		t.Fatalf("RebuildDaily failed: %v", err)
	}

	if len(before) != len(rebuilt) {
		t.Fatalf("Expected %d days, got %d", len(rebuilt), len(before))
	}
	for i := range rebuilt {
		if before[i].Totals() != rebuilt[i].Totals() {
			t.Errorf("Day %s: incremental %+v != rebuilt %+v", rebuilt[i].Date, before[i].Totals(), rebuilt[i].Totals())
		}
	}
}

func TestSummary_Memoized(t *testing.T) {
	svc, _ := newTestService(t, 0)

	r := models.Report{ID: "x", Raw: testReport}
	first := svc.Summary(r)

	r.Raw = ""
	second := svc.Summary(r)
	if second.Coins != first.Coins || second.Coins != 100000 {
		t.Errorf("Expected cached summary, got %+v", second)
	}
}

func TestInit_BackfillsLegacyRows(t *testing.T) {
	svc, database := newTestService(t, 0)
	ctx := context.Background()

	r, _, err := svc.Save(ctx, testReport, models.ReportTypeFarming)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, err = database.ExecContext(ctx,
		`UPDATE reports SET meta_version = 1, cells = 0 WHERE id = ?`, r.ID)
	if err != nil {
		t.Fatalf("Failed to downgrade row: %v", err)
	}
	_, err = database.ExecContext(ctx, `UPDATE daily_stats SET total_cells = 0`)
	if err != nil {
		t.Fatalf("Failed to downgrade daily row: %v", err)
	}

	if err := svc.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	day, err := database.GetDaily(ctx, "2024-03-10")
	if err != nil || day == nil {
		t.Fatalf("GetDaily failed: %v", err)
	}
	if day.TotalCells != 5000 {
		t.Errorf("Expected backfilled cells 5000, got %v", day.TotalCells)
	}
}
