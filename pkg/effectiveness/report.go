package effectiveness

import (
	"context"
	"fmt"
	"time"

	"github.com/qmpulse/qmpulse/pkg/production"
	"github.com/qmpulse/qmpulse/pkg/window"
)

// WindowsReportStatus distinguishes a usable report from one that could not
// find enough data to compare anything.
type WindowsReportStatus string

const (
	StatusOK               WindowsReportStatus = "ok"
	StatusInsufficientData WindowsReportStatus = "insufficient_data"
)

// WindowsReport compares the adaptive baseline/current windows across the
// four headline metrics of a work-center selection.
type WindowsReport struct {
	Status      WindowsReportStatus
	Window      window.Window
	ScrapQty    Delta
	ScrapCost   Delta
	Oee         Delta
	Performance Delta
}

// WindowsOptions carries the report knobs; zero values fall back to the
// package defaults.
type WindowsOptions struct {
	RemoveSaturdays bool
	RemoveSundays   bool
	CurrentTarget   int
	BaselineCap     int
	SearchbackDays  int
	Currency        string
}

// ProjectWindows builds the adaptive baseline-vs-current comparison for a
// selection of work centers: aggregate daily, drop weekends if asked, bound
// the lookback, resolve windows over days-with-data, then average each
// metric inside each side.
func (s *ServiceImpl) ProjectWindows(ctx context.Context, workCenters []string, opts WindowsOptions) (WindowsReport, error) {
	resolverOpts := window.DefaultOptions()
	if opts.CurrentTarget > 0 {
		resolverOpts.CurrentTarget = opts.CurrentTarget
	}
	if opts.BaselineCap > 0 {
		resolverOpts.BaselineCap = opts.BaselineCap
	}
	searchback := opts.SearchbackDays
	if searchback == 0 {
		searchback = window.DefaultSearchbackDays
	}
	currency := opts.Currency
	if currency == "" {
		currency = production.DefaultCurrency
	}

	scrapRows, err := s.productionRepo.ListScrapDaily(ctx, workCenters, time.Time{}, time.Time{}, "")
	if err != nil {
		return WindowsReport{}, fmt.Errorf("failed to load scrap telemetry: %w", err)
	}
	kpiRows, err := s.productionRepo.ListKPIDaily(ctx, workCenters, time.Time{}, time.Time{})
	if err != nil {
		return WindowsReport{}, fmt.Errorf("failed to load KPI telemetry: %w", err)
	}

	scrapRows = production.FilterScrapWeekends(scrapRows, opts.RemoveSaturdays, opts.RemoveSundays)
	kpiRows = production.FilterKPIWeekends(kpiRows, opts.RemoveSaturdays, opts.RemoveSundays)

	scrapDaily := production.AggregateScrapDaily(scrapRows, currency)
	kpiDaily := production.AggregateKPIDaily(kpiRows)

	availableDays := unionDays(scrapDaily.Qty, scrapDaily.Cost, kpiDaily.Oee, kpiDaily.Performance)
	resolved, err := window.ResolveWithSearchback(availableDays, resolverOpts, searchback)
	if err != nil {
		return WindowsReport{}, err
	}
	if !resolved.IsValid() {
		return WindowsReport{Status: StatusInsufficientData}, nil
	}

	report := WindowsReport{Status: StatusOK, Window: resolved}
	report.ScrapQty = scrapMetricWindow(scrapDaily.Qty, resolved)
	report.ScrapCost = scrapMetricWindow(scrapDaily.Cost, resolved)
	report.Oee = kpiMetricWindow(kpiDaily.Oee, resolved)
	report.Performance = kpiMetricWindow(kpiDaily.Performance, resolved)
	return report, nil
}

// RangeOutcome compares the edges of an arbitrary calendar range: baseline
// from its beginning, "after" from its end, degrading to a midpoint split
// for short ranges. UsedHalves must be surfaced since the two modes do not
// mean the same thing statistically.
type RangeOutcome struct {
	Range       window.RangeWindow
	ScrapQty    Delta
	ScrapCost   Delta
	Oee         Delta
	Performance Delta
	Excluded    production.CurrencyTotals
}

func (s *ServiceImpl) RangeOutcome(ctx context.Context, workCenters []string, from, to time.Time, removeSat, removeSun bool) (RangeOutcome, error) {
	scrapRows, err := s.productionRepo.ListScrapDaily(ctx, workCenters, from, to, "")
	if err != nil {
		return RangeOutcome{}, fmt.Errorf("failed to load scrap telemetry: %w", err)
	}
	kpiRows, err := s.productionRepo.ListKPIDaily(ctx, workCenters, from, to)
	if err != nil {
		return RangeOutcome{}, fmt.Errorf("failed to load KPI telemetry: %w", err)
	}

	scrapRows = production.FilterScrapWeekends(scrapRows, removeSat, removeSun)
	kpiRows = production.FilterKPIWeekends(kpiRows, removeSat, removeSun)

	scrapDaily := production.AggregateScrapDaily(scrapRows, production.DefaultCurrency)
	kpiDaily := production.AggregateKPIDaily(kpiRows)

	bounds := window.Bounds(production.Day(from), production.Day(to))
	outcome := RangeOutcome{Range: bounds, Excluded: scrapDaily.Excluded}
	outcome.ScrapQty = scrapRangeWindow(scrapDaily.Qty, bounds)
	outcome.ScrapCost = scrapRangeWindow(scrapDaily.Cost, bounds)
	outcome.Oee = kpiRangeWindow(kpiDaily.Oee, bounds)
	outcome.Performance = kpiRangeWindow(kpiDaily.Performance, bounds)
	return outcome, nil
}

func scrapMetricWindow(series production.DailySeries, w window.Window) Delta {
	baseline := production.MeanForDays(series, w.BaselineDays)
	current := production.MeanForDays(series, w.CurrentDays)
	return ScrapDelta(current, baseline)
}

func kpiMetricWindow(series production.DailySeries, w window.Window) Delta {
	baseline := production.MeanForDays(series, w.BaselineDays)
	current := production.MeanForDays(series, w.CurrentDays)
	return KPIDelta(current, baseline)
}

func scrapRangeWindow(series production.DailySeries, bounds window.RangeWindow) Delta {
	baseline, _ := production.MeanBetween(series, bounds.BaselineFrom, bounds.BaselineTo)
	current, _ := production.MeanBetween(series, bounds.AfterFrom, bounds.AfterTo)
	return ScrapDelta(current, baseline)
}

func kpiRangeWindow(series production.DailySeries, bounds window.RangeWindow) Delta {
	baseline, _ := production.MeanBetween(series, bounds.BaselineFrom, bounds.BaselineTo)
	current, _ := production.MeanBetween(series, bounds.AfterFrom, bounds.AfterTo)
	return KPIDelta(current, baseline)
}

func unionDays(series ...production.DailySeries) []time.Time {
	seen := map[time.Time]bool{}
	var days []time.Time
	for _, s := range series {
		for day := range s {
			if !seen[day] {
				seen[day] = true
				days = append(days, day)
			}
		}
	}
	return days
}
