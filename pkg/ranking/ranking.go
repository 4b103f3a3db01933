package ranking

import (
	"errors"
	"sort"
	"time"
)

// Timeframe is the leaderboard lookback window.
type Timeframe string

const (
	Last90Days  Timeframe = "90d"
	Last180Days Timeframe = "180d"
	LastYear    Timeframe = "365d"
	Total       Timeframe = "total"
)

var ErrInvalidTimeframe = errors.New("invalid timeframe")

// ParseTimeframe maps a query value to a Timeframe, defaulting to 90 days.
func ParseTimeframe(raw string) (Timeframe, error) {
	switch Timeframe(raw) {
	case "":
		return Last90Days, nil
	case Last90Days, Last180Days, LastYear, Total:
		return Timeframe(raw), nil
	default:
		return "", ErrInvalidTimeframe
	}
}

// Bounds returns the [from, to] window ending today, or nil bounds for Total.
func (t Timeframe) Bounds(today time.Time) (*time.Time, *time.Time) {
	var days int
	switch t {
	case Last90Days:
		days = 90
	case Last180Days:
		days = 180
	case LastYear:
		days = 365
	default:
		return nil, nil
	}
	from := today.AddDate(0, 0, -days)
	return &from, &today
}

// Config holds the scoring weights, penalties and caps.
type Config struct {
	DeliveryWeight          float64
	ImpactWeight            float64
	OverduePenaltyPer       float64
	OverduePenaltyCap       float64
	OpenTolerance           int
	OpenPenaltyPer          float64
	OpenPenaltyCap          float64
	OnTimeBaseline          float64
	OnTimeBonusCap          float64
	TTCBaselineDays         float64
	TTCPenaltyPerDay        float64
	TTCPenaltyCap           float64
	MissingManualPenaltyPer float64
	MissingManualPenaltyCap float64
}

func DefaultConfig() Config {
	return Config{
		DeliveryWeight:          0.55,
		ImpactWeight:            0.45,
		OverduePenaltyPer:       5,
		OverduePenaltyCap:       40,
		OpenTolerance:           5,
		OpenPenaltyPer:          2,
		OpenPenaltyCap:          20,
		OnTimeBaseline:          0.70,
		OnTimeBonusCap:          20,
		TTCBaselineDays:         30,
		TTCPenaltyPerDay:        0.5,
		TTCPenaltyCap:           20,
		MissingManualPenaltyPer: 2,
		MissingManualPenaltyCap: 20,
	}
}

var (
	ErrInvalidWeights  = errors.New("delivery and impact weights must be non-negative and sum to 1")
	ErrNegativeConfig  = errors.New("penalties, caps and baselines must not be negative")
	ErrInvalidBaseline = errors.New("on-time baseline must be a rate between 0 and 1")
)

func (c Config) Validate() error {
	if c.DeliveryWeight < 0 || c.ImpactWeight < 0 || !nearlyOne(c.DeliveryWeight+c.ImpactWeight) {
		return ErrInvalidWeights
	}
	if c.OverduePenaltyPer < 0 || c.OverduePenaltyCap < 0 ||
		c.OpenTolerance < 0 || c.OpenPenaltyPer < 0 || c.OpenPenaltyCap < 0 ||
		c.OnTimeBonusCap < 0 || c.TTCBaselineDays < 0 || c.TTCPenaltyPerDay < 0 ||
		c.TTCPenaltyCap < 0 || c.MissingManualPenaltyPer < 0 || c.MissingManualPenaltyCap < 0 {
		return ErrNegativeConfig
	}
	if c.OnTimeBaseline < 0 || c.OnTimeBaseline > 1 {
		return ErrInvalidBaseline
	}
	return nil
}

func nearlyOne(sum float64) bool {
	return sum > 0.999 && sum < 1.001
}

// ChampionStat accumulates one champion's raw counters over a window. It is
// rebuilt from the action list on every run and never persisted.
type ChampionStat struct {
	OpenNow        int
	OverdueNow     int
	ClosedInWindow int
	ClosedOnTime   int
	Durations      []int
	ImpactPLN      float64
	ImpactEUR      float64
	MissingManual  int
	MissingScope   int
}

// HasActivity reports whether the champion appears on the leaderboard at all.
func (s *ChampionStat) HasActivity() bool {
	return s.OpenNow > 0 || s.OverdueNow > 0 || s.ClosedInWindow > 0
}

// OnTimeRate is the share of closed-in-window actions closed on time, zero
// when nothing closed.
func (s *ChampionStat) OnTimeRate() float64 {
	if s.ClosedInWindow == 0 {
		return 0
	}
	return float64(s.ClosedOnTime) / float64(s.ClosedInWindow)
}

// MedianTTC is the median time-to-close in days, nil when nothing closed.
func (s *ChampionStat) MedianTTC() *float64 {
	if len(s.Durations) == 0 {
		return nil
	}
	sorted := append([]int(nil), s.Durations...)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	var value float64
	if len(sorted)%2 == 0 {
		value = float64(sorted[mid-1]+sorted[mid]) / 2
	} else {
		value = float64(sorted[mid])
	}
	return &value
}

// LeaderboardRow is one scored champion.
type LeaderboardRow struct {
	Rank           int
	ChampionID     string
	ChampionName   string
	OpenNow        int
	OverdueNow     int
	ClosedInWindow int
	OnTimeRate     *float64
	MedianTTCDays  *float64
	ImpactPLN      float64
	ImpactEUR      float64
	MissingManual  int
	MissingScope   int
	DeliveryScore  float64
	ImpactScore    float64
	TotalScore     float64
}

// Summary is the overall KPI block across all counted champions.
type Summary struct {
	OpenNow        int
	OverdueNow     int
	ClosedInWindow int
	OnTimeRate     *float64
	MedianTTCDays  *float64
	ImpactPLN      float64
	ImpactEUR      float64
}

// Report is a complete leaderboard run.
type Report struct {
	Timeframe Timeframe
	From      *time.Time
	To        *time.Time
	Rows      []LeaderboardRow
	Summary   Summary
}
