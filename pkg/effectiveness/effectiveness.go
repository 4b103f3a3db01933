package effectiveness

import (
	"errors"
	"time"
)

// Classification is the categorical verdict on whether an action coincided
// with a metric improvement.
type Classification string

const (
	Effective        Classification = "effective"
	NoChange         Classification = "no_change"
	Worse            Classification = "worse"
	NoScrap          Classification = "no_scrap"
	InsufficientData Classification = "insufficient_data"
	Unknown          Classification = "unknown"
)

const (
	// MinWindowDays is the minimum days-with-data required on each side
	// before a classification other than insufficient_data is allowed.
	MinWindowDays = 5
	// ScrapChangeThresholdPct is the relative change (percent) beyond which
	// scrap is considered to have moved.
	ScrapChangeThresholdPct = 10.0
	// DefaultKPIThresholdPP is the absolute change in percentage points
	// beyond which a rate metric is considered to have moved.
	DefaultKPIThresholdPP = 5.0
)

var ErrNegativeThreshold = errors.New("threshold must not be negative")

// Result is one computed baseline-vs-after comparison for one metric.
// Results are never mutated; a recomputation produces a fresh Result with
// its own timestamp.
type Result struct {
	Metric       string
	BaselineFrom time.Time
	BaselineTo   time.Time
	AfterFrom    time.Time
	AfterTo      time.Time
	BaselineDays int
	AfterDays    int
	BaselineAvg  *float64
	AfterAvg     *float64
	Delta        *float64
	PctChange    *float64
	DeltaPP      *float64
	Class        Classification
	ComputedAt   time.Time
}

// ClassifyScrap classifies a scrap-like metric where lower is better.
// Relative thresholds: a 10% drop is effective, a 10% rise is worse. A
// baseline of exactly zero has dedicated branches since a relative change
// is undefined there: scrap appearing where there was none is always worse.
func ClassifyScrap(baselineAvg, afterAvg *float64, baselineDays, afterDays int) (Classification, *float64) {
	var pctChange *float64
	if baselineAvg != nil && afterAvg != nil && *baselineAvg != 0 {
		change := (*afterAvg - *baselineAvg) / *baselineAvg * 100
		pctChange = &change
	}
	if baselineDays < MinWindowDays || afterDays < MinWindowDays {
		return InsufficientData, pctChange
	}
	if baselineAvg == nil || afterAvg == nil {
		return Unknown, pctChange
	}
	if *baselineAvg == 0 {
		if *afterAvg == 0 {
			return NoScrap, nil
		}
		return Worse, nil
	}
	switch {
	case *pctChange <= -ScrapChangeThresholdPct:
		return Effective, pctChange
	case *pctChange < ScrapChangeThresholdPct:
		return NoChange, pctChange
	default:
		return Worse, pctChange
	}
}

// ClassifyKPI classifies a percentage-point metric where higher is better,
// comparing the delta against an absolute threshold in points. The
// asymmetry with ClassifyScrap is deliberate: scrap moves multiplicatively,
// rate metrics move additively.
func ClassifyKPI(baselineAvg, afterAvg *float64, baselineDays, afterDays int, thresholdPP float64) (Classification, *float64, error) {
	if thresholdPP < 0 {
		return Unknown, nil, ErrNegativeThreshold
	}
	var deltaPP *float64
	if baselineAvg != nil && afterAvg != nil {
		delta := *afterAvg - *baselineAvg
		deltaPP = &delta
	}
	if baselineDays < MinWindowDays || afterDays < MinWindowDays {
		return InsufficientData, deltaPP, nil
	}
	baselineMissing := baselineAvg == nil || *baselineAvg == 0
	if baselineMissing {
		if afterAvg == nil || *afterAvg == 0 {
			return NoChange, deltaPP, nil
		}
		return Effective, deltaPP, nil
	}
	if afterAvg == nil {
		return Unknown, deltaPP, nil
	}
	switch {
	case *deltaPP >= thresholdPP:
		return Effective, deltaPP, nil
	case *deltaPP <= -thresholdPP:
		return Worse, deltaPP, nil
	default:
		return NoChange, deltaPP, nil
	}
}

// Direction is the sign of a delta interpreted against the metric's polarity.
type Direction string

const (
	Improvement Direction = "improvement"
	Worsening   Direction = "worsening"
	Neutral     Direction = "neutral"
)

// Delta is a plain baseline/current comparison used by report rows.
type Delta struct {
	Current   *float64
	Baseline  *float64
	DeltaAbs  *float64
	DeltaPct  *float64
	DeltaPP   *float64
	Direction Direction
}

// ScrapDelta compares scrap-like values where a decrease is an improvement.
func ScrapDelta(current, baseline *float64) Delta {
	d := Delta{Current: current, Baseline: baseline, Direction: Neutral}
	if current != nil && baseline != nil {
		abs := *current - *baseline
		d.DeltaAbs = &abs
		if *baseline != 0 {
			pct := abs / *baseline * 100
			d.DeltaPct = &pct
		}
		d.Direction = direction(abs, true)
	}
	return d
}

// KPIDelta compares rate metrics where an increase is an improvement,
// expressed in percentage points.
func KPIDelta(current, baseline *float64) Delta {
	d := Delta{Current: current, Baseline: baseline, Direction: Neutral}
	if current != nil && baseline != nil {
		pp := *current - *baseline
		d.DeltaPP = &pp
		d.Direction = direction(pp, false)
	}
	return d
}

func direction(delta float64, improvementIsNegative bool) Direction {
	if delta == 0 {
		return Neutral
	}
	if improvementIsNegative == (delta < 0) {
		return Improvement
	}
	return Worsening
}
