// Package daily maintains per-day totals across saved battle reports.
package daily

import (
	"context"
	"runtime"
	"slices"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/j-veylop/tower-battlelog/internal/models"
	"github.com/j-veylop/tower-battlelog/internal/report"
)

// Fold adds a delta to the previous aggregate for its day. A nil prev starts
// a fresh record. Storage bookkeeping is carried over unchanged.
func Fold(prev *models.DailyAggregate, d models.DailyDelta) models.DailyAggregate {
	if prev == nil {
		return models.DailyAggregate{
			Date:         d.Date,
			TotalCoins:   d.Coins,
			TotalSeconds: d.Seconds,
			TotalCells:   d.Cells,
			TotalReroll:  d.Reroll,
		}
	}

	next := *prev
	next.TotalCoins += d.Coins
	next.TotalSeconds += d.Seconds
	next.TotalCells += d.Cells
	next.TotalReroll += d.Reroll
	return next
}

// Rebuild recomputes every day's totals from scratch. Reports are parsed in
// parallel; those without a battle date are skipped. The result is ordered by
// date, newest first.
func Rebuild(ctx context.Context, parser *report.Parser, reports []models.Report) ([]models.DailyAggregate, error) {
	deltas := make([]models.DailyDelta, len(reports))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range reports {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			deltas[i] = parser.Delta(reports[i].Raw)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byDate := lo.GroupBy(
		lo.Filter(deltas, func(d models.DailyDelta, _ int) bool { return d.HasDate() }),
		func(d models.DailyDelta) string { return d.Date },
	)

	dates := lo.Keys(byDate)
	slices.Sort(dates)
	slices.Reverse(dates)

	aggs := make([]models.DailyAggregate, 0, len(dates))
	for _, date := range dates {
		var agg *models.DailyAggregate
		for _, d := range byDate[date] {
			next := Fold(agg, d)
			agg = &next
		}
		aggs = append(aggs, *agg)
	}
	return aggs, nil
}
