package production

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultCurrency is the reporting currency. Costs in any other currency are
// never mixed into its sums; they are tracked as excluded subtotals.
const DefaultCurrency = "PLN"

// ScrapRecord is one raw scrap telemetry row: per day, per work center,
// per currency. Cost and currency travel together.
type ScrapRecord struct {
	Date       time.Time
	WorkCenter string
	ScrapQty   int
	ScrapCost  *float64
	Currency   string
}

// KpiRecord is one raw production KPI row. Percent fields may arrive as
// fractions, percentages, or malformed; nil means the value was absent
// or unparseable, which is distinct from zero.
type KpiRecord struct {
	Date            time.Time
	WorkCenter      string
	WorktimeMin     *float64
	OeePct          *float64
	PerformancePct  *float64
	AvailabilityPct *float64
	QualityPct      *float64
}

// DailyMetricPoint is one aggregated value of one metric on one day.
type DailyMetricPoint struct {
	Date  time.Time
	Value float64
}

// DailySeries maps a day to its aggregated metric value. A missing day means
// no data, never zero.
type DailySeries map[time.Time]float64

// Days returns the sorted distinct days present in the series.
func (s DailySeries) Days() []time.Time {
	days := make([]time.Time, 0, len(s))
	for day := range s {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// Points returns the series as an ordered sequence of points.
func (s DailySeries) Points() []DailyMetricPoint {
	points := make([]DailyMetricPoint, 0, len(s))
	for _, day := range s.Days() {
		points = append(points, DailyMetricPoint{Date: day, Value: s[day]})
	}
	return points
}

// Day truncates a timestamp to its calendar day in UTC, the canonical key
// for all daily series.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Fingerprint derives a stable cache key for a report request. Memoization
// is owned by callers; the aggregation itself stays pure.
func Fingerprint(workCenters []string, from, to time.Time, removeSat, removeSun bool) string {
	sorted := append([]string(nil), workCenters...)
	sort.Strings(sorted)
	var b strings.Builder
	b.WriteString(strings.Join(sorted, "|"))
	b.WriteString(";")
	b.WriteString(from.Format("2006-01-02"))
	b.WriteString(";")
	b.WriteString(to.Format("2006-01-02"))
	b.WriteString(";")
	b.WriteString(strconv.FormatBool(removeSat))
	b.WriteString(";")
	b.WriteString(strconv.FormatBool(removeSun))
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
