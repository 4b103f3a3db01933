package window

import (
	"errors"
	"sort"
	"time"
)

const (
	// DefaultCurrentTarget is the preferred size of the current window in
	// days-with-data.
	DefaultCurrentTarget = 14
	// DefaultBaselineCap limits how many preceding days-with-data form the
	// baseline.
	DefaultBaselineCap = 90
	// DefaultSearchbackDays bounds how far back in calendar time available
	// days are considered at all.
	DefaultSearchbackDays = 180
	// MinAvailableDays is the minimum number of distinct days with data
	// required to resolve any window.
	MinAvailableDays = 8
	// halvesCutoffDays is the calendar span below which a date-range request
	// degrades to a straight midpoint split.
	halvesCutoffDays = 28
)

var (
	ErrInvalidTarget = errors.New("current window target must be positive")
	ErrInvalidCap    = errors.New("baseline cap must be positive")
)

// Window is a baseline/current partition of days-with-data. Both sides are
// contiguous blocks of available days, not calendar days. A zero-day side
// means the data was insufficient to compare anything.
type Window struct {
	BaselineFrom time.Time
	BaselineTo   time.Time
	CurrentFrom  time.Time
	CurrentTo    time.Time
	BaselineDays []time.Time
	CurrentDays  []time.Time
}

// IsValid reports whether both sides contain at least one day.
func (w Window) IsValid() bool {
	return len(w.BaselineDays) > 0 && len(w.CurrentDays) > 0
}

// BaselineDayCount returns the number of days-with-data in the baseline.
func (w Window) BaselineDayCount() int { return len(w.BaselineDays) }

// CurrentDayCount returns the number of days-with-data in the current window.
func (w Window) CurrentDayCount() int { return len(w.CurrentDays) }

// Options controls adaptive window sizing.
type Options struct {
	CurrentTarget int
	BaselineCap   int
}

// DefaultOptions returns the standard 14-day current / 90-day baseline setup.
func DefaultOptions() Options {
	return Options{CurrentTarget: DefaultCurrentTarget, BaselineCap: DefaultBaselineCap}
}

func (o Options) validate() error {
	if o.CurrentTarget <= 0 {
		return ErrInvalidTarget
	}
	if o.BaselineCap <= 0 {
		return ErrInvalidCap
	}
	return nil
}

// Resolve partitions a sorted set of available days into baseline and current
// windows, degrading gracefully when data is sparse:
//
//   - fewer than 8 days: insufficient, zero-length window
//   - at least 2x the target: last target days are current, the preceding
//     days (capped) are baseline
//   - 14..2x-1 days: the most recent 14 split 7/7
//   - 8..13 days: the most recent 8 split 4/4
func Resolve(availableDays []time.Time, opts Options) (Window, error) {
	if err := opts.validate(); err != nil {
		return Window{}, err
	}
	days := sortedCopy(availableDays)
	if len(days) < MinAvailableDays {
		return Window{}, nil
	}

	var baseline, current []time.Time
	switch {
	case len(days) >= opts.CurrentTarget*2:
		current = days[len(days)-opts.CurrentTarget:]
		pool := days[:len(days)-opts.CurrentTarget]
		capDays := opts.BaselineCap
		if capDays > len(pool) {
			capDays = len(pool)
		}
		baseline = pool[len(pool)-capDays:]
	case len(days) >= 14:
		recent := days[len(days)-14:]
		baseline, current = recent[:7], recent[7:]
	default:
		recent := days[len(days)-8:]
		baseline, current = recent[:4], recent[4:]
	}

	return Window{
		BaselineFrom: baseline[0],
		BaselineTo:   baseline[len(baseline)-1],
		CurrentFrom:  current[0],
		CurrentTo:    current[len(current)-1],
		BaselineDays: baseline,
		CurrentDays:  current,
	}, nil
}

// ResolveWithSearchback drops available days older than searchbackDays
// calendar days before the most recent one, then resolves as usual. A
// non-positive searchback disables the cutoff.
func ResolveWithSearchback(availableDays []time.Time, opts Options, searchbackDays int) (Window, error) {
	if searchbackDays <= 0 || len(availableDays) == 0 {
		return Resolve(availableDays, opts)
	}
	days := sortedCopy(availableDays)
	cutoff := days[len(days)-1].AddDate(0, 0, -(searchbackDays - 1))
	recent := make([]time.Time, 0, len(days))
	for _, day := range days {
		if !day.Before(cutoff) {
			recent = append(recent, day)
		}
	}
	return Resolve(recent, opts)
}

// RangeWindow is the calendar-date variant of Window used by date-range
// anchored reports. UsedHalves marks the degraded midpoint-split mode whose
// statistical meaning differs from the adaptive days-with-data mode.
type RangeWindow struct {
	BaselineFrom time.Time
	BaselineTo   time.Time
	AfterFrom    time.Time
	AfterTo      time.Time
	UsedHalves   bool
}

// Bounds partitions an arbitrary calendar range. Ranges spanning at least 28
// days take the first 14 days as baseline and the last 14 as after; shorter
// ranges are split at the midpoint and flagged.
func Bounds(from, to time.Time) RangeWindow {
	totalDays := int(to.Sub(from).Hours()/24) + 1
	if totalDays < halvesCutoffDays {
		mid := from.AddDate(0, 0, (totalDays-1)/2)
		return RangeWindow{
			BaselineFrom: from,
			BaselineTo:   mid,
			AfterFrom:    mid.AddDate(0, 0, 1),
			AfterTo:      to,
			UsedHalves:   true,
		}
	}
	return RangeWindow{
		BaselineFrom: from,
		BaselineTo:   from.AddDate(0, 0, 13),
		AfterFrom:    to.AddDate(0, 0, -13),
		AfterTo:      to,
	}
}

func sortedCopy(days []time.Time) []time.Time {
	copied := append([]time.Time(nil), days...)
	sort.Slice(copied, func(i, j int) bool { return copied[i].Before(copied[j]) })
	return copied
}
