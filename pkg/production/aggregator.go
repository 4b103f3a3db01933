package production

import (
	"math"
	"sort"
	"time"

	"github.com/qmpulse/qmpulse/pkg/normalize"
)

// CurrencyTotals accumulates cost amounts per non-reporting currency that
// were excluded from a sum, so a report can show them instead of silently
// dropping or converting them.
type CurrencyTotals map[string]float64

// Currencies returns the sorted currency codes with excluded amounts.
func (c CurrencyTotals) Currencies() []string {
	codes := make([]string, 0, len(c))
	for code := range c {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// ScrapDaily holds the per-day aggregation of scrap telemetry.
type ScrapDaily struct {
	Qty      DailySeries
	Cost     DailySeries
	Excluded CurrencyTotals
}

// KpiDaily holds the per-day aggregation of KPI telemetry, one weighted
// series per percentage metric, plus scale-correction diagnostics.
type KpiDaily struct {
	Oee          DailySeries
	Performance  DailySeries
	Availability DailySeries
	Quality      DailySeries
	Scale        ScaleReport
}

// ScaleReport counts how many raw percent inputs were auto-corrected from a
// fractional encoding and how many were rejected as implausible.
type ScaleReport struct {
	Corrected int
	Rejected  int
}

// FilterScrapWeekends drops Saturday and/or Sunday rows before aggregation.
func FilterScrapWeekends(rows []ScrapRecord, removeSat, removeSun bool) []ScrapRecord {
	if !removeSat && !removeSun {
		return rows
	}
	filtered := make([]ScrapRecord, 0, len(rows))
	for _, row := range rows {
		if dropWeekend(row.Date, removeSat, removeSun) {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

// FilterKPIWeekends drops Saturday and/or Sunday rows before aggregation.
func FilterKPIWeekends(rows []KpiRecord, removeSat, removeSun bool) []KpiRecord {
	if !removeSat && !removeSun {
		return rows
	}
	filtered := make([]KpiRecord, 0, len(rows))
	for _, row := range rows {
		if dropWeekend(row.Date, removeSat, removeSun) {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

func dropWeekend(day time.Time, removeSat, removeSun bool) bool {
	weekday := day.Weekday()
	return (removeSat && weekday == time.Saturday) || (removeSun && weekday == time.Sunday)
}

// AggregateScrapDaily reduces raw scrap rows to one quantity sum and one cost
// sum per day. Quantity sums cross all work centers; per-row quantities are
// already integers rounded at import per (day, work center) group. Cost rows
// in a currency other than the requested one are excluded from the sum and
// accumulated per currency in Excluded.
func AggregateScrapDaily(rows []ScrapRecord, currency string) ScrapDaily {
	if currency == "" {
		currency = DefaultCurrency
	}
	result := ScrapDaily{
		Qty:      DailySeries{},
		Cost:     DailySeries{},
		Excluded: CurrencyTotals{},
	}
	for _, row := range rows {
		day := Day(row.Date)
		result.Qty[day] += float64(row.ScrapQty)
		if row.ScrapCost == nil {
			continue
		}
		rowCurrency := row.Currency
		if rowCurrency == "" {
			rowCurrency = DefaultCurrency
		}
		if rowCurrency == currency {
			result.Cost[day] += *row.ScrapCost
		} else {
			result.Excluded[rowCurrency] += *row.ScrapCost
		}
	}
	return result
}

// AggregateKPIDaily reduces raw KPI rows to one value per day and metric
// using a worktime-weighted mean. Percent values are scale-normalized first;
// rows whose value is absent or implausible contribute nothing, so a day with
// no usable values is absent from the series rather than zero.
func AggregateKPIDaily(rows []KpiRecord) KpiDaily {
	type accumulator struct {
		values  []float64
		weights []*float64
	}
	byMetric := map[string]map[time.Time]*accumulator{
		"oee":          {},
		"performance":  {},
		"availability": {},
		"quality":      {},
	}
	report := ScaleReport{}

	add := func(metric string, day time.Time, raw *float64, weight *float64) {
		if raw == nil {
			return
		}
		value := normalizePercent(*raw, &report)
		if value == nil {
			return
		}
		days := byMetric[metric]
		acc := days[day]
		if acc == nil {
			acc = &accumulator{}
			days[day] = acc
		}
		acc.values = append(acc.values, *value)
		acc.weights = append(acc.weights, weight)
	}

	for _, row := range rows {
		day := Day(row.Date)
		add("oee", day, row.OeePct, row.WorktimeMin)
		add("performance", day, row.PerformancePct, row.WorktimeMin)
		add("availability", day, row.AvailabilityPct, row.WorktimeMin)
		add("quality", day, row.QualityPct, row.WorktimeMin)
	}

	build := func(metric string) DailySeries {
		series := DailySeries{}
		for day, acc := range byMetric[metric] {
			if value := weightedOrMean(acc.values, acc.weights); value != nil {
				series[day] = *value
			}
		}
		return series
	}

	return KpiDaily{
		Oee:          build("oee"),
		Performance:  build("performance"),
		Availability: build("availability"),
		Quality:      build("quality"),
		Scale:        report,
	}
}

// weightedOrMean computes sum(v*w)/sum(w) over pairs with a positive weight,
// falling back to the unweighted arithmetic mean when no weight is usable.
func weightedOrMean(values []float64, weights []*float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var weightedSum, totalWeight float64
	for i, value := range values {
		weight := weights[i]
		if weight != nil && *weight > 0 {
			weightedSum += value * *weight
			totalWeight += *weight
		}
	}
	if totalWeight > 0 {
		mean := weightedSum / totalWeight
		return &mean
	}
	var sum float64
	for _, value := range values {
		sum += value
	}
	mean := sum / float64(len(values))
	return &mean
}

// MeanForDays averages a series over the given days, skipping days without
// data. Returns nil when none of the days carries a value.
func MeanForDays(series DailySeries, days []time.Time) *float64 {
	var sum float64
	count := 0
	for _, day := range days {
		if value, ok := series[day]; ok {
			sum += value
			count++
		}
	}
	if count == 0 {
		return nil
	}
	mean := sum / float64(count)
	return &mean
}

// MeanBetween averages a series over days inside [from, to] inclusive.
func MeanBetween(series DailySeries, from, to time.Time) (*float64, int) {
	var sum float64
	count := 0
	for day, value := range series {
		if day.Before(from) || day.After(to) {
			continue
		}
		sum += value
		count++
	}
	if count == 0 {
		return nil, 0
	}
	mean := sum / float64(count)
	return &mean, count
}

func normalizePercent(raw float64, report *ScaleReport) *float64 {
	if math.IsNaN(raw) {
		return nil
	}
	switch normalize.DetectScaleValue(raw) {
	case normalize.ScaleFraction:
		report.Corrected++
	case normalize.ScaleInvalid:
		report.Rejected++
	}
	return normalize.PercentValue(raw)
}
