package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/qmpulse/qmpulse/pkg/action"
)

var (
	today      = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	windowFrom = today.AddDate(0, 0, -90)
)

func strPtr(s string) *string          { return &s }
func floatPtr(f float64) *float64      { return &f }
func datePtr(t time.Time) *time.Time   { return &t }
func noRules() *action.RuleSet         { return action.NewRuleSet(nil) }
func window() (*time.Time, *time.Time) { return &windowFrom, &today }

func TestAccumulate_SkipsCancelledAndUnassigned(t *testing.T) {
	// given a cancelled action and an unassigned one
	from, to := window()
	actions := []action.Action{
		{ID: "a1", ChampionID: strPtr("c1"), Status: action.StatusCancelled, Created: today.AddDate(0, 0, -10)},
		{ID: "a2", Status: action.StatusOpen, Created: today.AddDate(0, 0, -10)},
	}

	// when
	stats := Accumulate(actions, noRules(), from, to, today, false)

	// then nothing is counted
	assert.Empty(t, stats)
}

func TestAccumulate_IncludeUnassigned(t *testing.T) {
	from, to := window()
	actions := []action.Action{
		{ID: "a1", Status: action.StatusOpen, Created: today.AddDate(0, 0, -10)},
	}

	stats := Accumulate(actions, noRules(), from, to, today, true)

	assert.Equal(t, 1, stats[UnassignedKey].OpenNow)
}

func TestAccumulate_OpenAndOverdue(t *testing.T) {
	// given two open actions, one of them past its due date
	from, to := window()
	actions := []action.Action{
		{
			ID: "a1", ChampionID: strPtr("c1"), Status: action.StatusOpen,
			Created: today.AddDate(0, 0, -10),
			Due:     datePtr(today.AddDate(0, 0, -2)),
		},
		{
			ID: "a2", ChampionID: strPtr("c1"), Status: action.StatusInProgress,
			Created: today.AddDate(0, 0, -5),
			Due:     datePtr(today.AddDate(0, 0, 5)),
		},
	}

	// when
	stats := Accumulate(actions, noRules(), from, to, today, false)

	// then
	assert.Equal(t, 2, stats["c1"].OpenNow)
	assert.Equal(t, 1, stats["c1"].OverdueNow)
}

func TestAccumulate_OpenCreatedBeforeWindowExcluded(t *testing.T) {
	from, to := window()
	actions := []action.Action{
		{ID: "a1", ChampionID: strPtr("c1"), Status: action.StatusOpen, Created: today.AddDate(0, 0, -120)},
	}

	stats := Accumulate(actions, noRules(), from, to, today, false)

	assert.Empty(t, stats)
}

func TestAccumulate_TotalTimeframeCountsAllOpen(t *testing.T) {
	// given no window bounds, every open action counts regardless of age
	actions := []action.Action{
		{ID: "a1", ChampionID: strPtr("c1"), Status: action.StatusOpen, Created: today.AddDate(0, 0, -400)},
	}

	stats := Accumulate(actions, noRules(), nil, nil, today, false)

	assert.Equal(t, 1, stats["c1"].OpenNow)
}

func TestAccumulate_ClosedOnTimeAndDurations(t *testing.T) {
	// given one on-time closure, one late one, and one with no due date
	from, to := window()
	closedAt := today.AddDate(0, 0, -10)
	actions := []action.Action{
		{
			ID: "a1", ChampionID: strPtr("c1"), Status: action.StatusDone,
			Created: closedAt.AddDate(0, 0, -20),
			Closed:  datePtr(closedAt),
			Due:     datePtr(closedAt.AddDate(0, 0, 1)),
		},
		{
			ID: "a2", ChampionID: strPtr("c1"), Status: action.StatusDone,
			Created: closedAt.AddDate(0, 0, -40),
			Closed:  datePtr(closedAt),
			Due:     datePtr(closedAt.AddDate(0, 0, -1)),
		},
		{
			ID: "a3", ChampionID: strPtr("c1"), Status: action.StatusDone,
			Created: closedAt.AddDate(0, 0, -30),
			Closed:  datePtr(closedAt),
		},
	}

	// when
	stats := Accumulate(actions, noRules(), from, to, today, false)

	// then the missing due date counts as on time
	assert.Equal(t, 3, stats["c1"].ClosedInWindow)
	assert.Equal(t, 2, stats["c1"].ClosedOnTime)
	assert.Equal(t, []int{20, 40, 30}, stats["c1"].Durations)
	assert.Equal(t, 30.0, *stats["c1"].MedianTTC())
}

func TestAccumulate_ClosedOutsideWindowExcluded(t *testing.T) {
	from, to := window()
	closedAt := today.AddDate(0, 0, -120)
	actions := []action.Action{
		{
			ID: "a1", ChampionID: strPtr("c1"), Status: action.StatusDone,
			Created: closedAt.AddDate(0, 0, -10),
			Closed:  datePtr(closedAt),
		},
	}

	stats := Accumulate(actions, noRules(), from, to, today, false)

	assert.Empty(t, stats)
}

func TestAccumulate_AutoScrapCostImpact(t *testing.T) {
	// given a closed action in a category attributed from the scrap-cost delta
	from, to := window()
	rules := action.NewRuleSet([]action.CategoryRule{
		{Category: "scrap reduction", SavingsModel: action.SavingsAutoScrapCost, Active: true},
	})
	closedAt := today.AddDate(0, 0, -10)
	actions := []action.Action{
		{
			ID: "a1", ChampionID: strPtr("c1"), Category: "scrap reduction",
			Status:  action.StatusDone,
			Created: closedAt.AddDate(0, 0, -20), Closed: datePtr(closedAt),
			EffectivenessMetric: strPtr("scrap_cost"),
			EffectivenessDelta:  floatPtr(-1500),
		},
		{
			ID: "a2", ChampionID: strPtr("c1"), Category: "scrap reduction",
			Status:  action.StatusDone,
			Created: closedAt.AddDate(0, 0, -20), Closed: datePtr(closedAt),
			EffectivenessMetric: strPtr("scrap_cost"),
			EffectivenessDelta:  floatPtr(200),
		},
		{
			ID: "a3", ChampionID: strPtr("c1"), Category: "scrap reduction",
			Status:  action.StatusDone,
			Created: closedAt.AddDate(0, 0, -20), Closed: datePtr(closedAt),
			EffectivenessMetric: strPtr("oee"),
			EffectivenessDelta:  floatPtr(-999),
		},
	}

	// when
	stats := Accumulate(actions, rules, from, to, today, false)

	// then only the negative scrap-cost delta becomes savings
	assert.Equal(t, 1500.0, stats["c1"].ImpactPLN)
	assert.Equal(t, 0, stats["c1"].MissingManual)
}

func TestAccumulate_ManualSavings(t *testing.T) {
	// given manual-savings actions in PLN, EUR, and with the amount missing
	from, to := window()
	rules := action.NewRuleSet([]action.CategoryRule{
		{Category: "process improvement", SavingsModel: action.SavingsManualRequired, Active: true},
	})
	closedAt := today.AddDate(0, 0, -10)
	base := action.Action{
		ChampionID: strPtr("c1"), Category: "process improvement",
		Status:  action.StatusDone,
		Created: closedAt.AddDate(0, 0, -20), Closed: datePtr(closedAt),
	}
	pln := base
	pln.ID = "a1"
	pln.ManualSavingsAmount = floatPtr(800)
	pln.ManualSavingsCurrency = strPtr("pln")
	eur := base
	eur.ID = "a2"
	eur.ManualSavingsAmount = floatPtr(300)
	eur.ManualSavingsCurrency = strPtr("EUR")
	missing := base
	missing.ID = "a3"

	// when
	stats := Accumulate([]action.Action{pln, eur, missing}, rules, from, to, today, false)

	// then currencies stay separate and the missing amount is flagged, not zeroed
	assert.Equal(t, 800.0, stats["c1"].ImpactPLN)
	assert.Equal(t, 300.0, stats["c1"].ImpactEUR)
	assert.Equal(t, 1, stats["c1"].MissingManual)
}

func TestAccumulate_MissingScopeLink(t *testing.T) {
	from, to := window()
	rules := action.NewRuleSet([]action.CategoryRule{
		{Category: "audit finding", SavingsModel: action.SavingsNone, RequiresScopeLink: true, Active: true},
	})
	actions := []action.Action{
		{
			ID: "a1", ChampionID: strPtr("c1"), Category: "audit finding",
			Status: action.StatusOpen, Created: today.AddDate(0, 0, -10),
		},
		{
			ID: "a2", ChampionID: strPtr("c1"), Category: "audit finding",
			Status: action.StatusOpen, Created: today.AddDate(0, 0, -10),
			ProjectID: strPtr("p1"),
		},
	}

	stats := Accumulate(actions, rules, from, to, today, false)

	assert.Equal(t, 1, stats["c1"].MissingScope)
}

func TestDeliveryScore_OverduePenaltyCapped(t *testing.T) {
	// given 10 overdue actions and an otherwise neutral profile: on-time rate
	// at the baseline and median time-to-close at the baseline
	stat := &ChampionStat{
		OpenNow:        3,
		OverdueNow:     10,
		ClosedInWindow: 10,
		ClosedOnTime:   7,
		Durations:      []int{30, 30, 30},
	}

	// when
	score := DeliveryScore(stat, DefaultConfig())

	// then 10 overdue would cost 50 but the penalty caps at 40, and 3 open
	// actions are within tolerance
	assert.Equal(t, 60.0, score)
}

func TestDeliveryScore_OpenPenaltyAboveTolerance(t *testing.T) {
	stat := &ChampionStat{
		OpenNow:        9,
		ClosedInWindow: 10,
		ClosedOnTime:   7,
		Durations:      []int{30},
	}

	score := DeliveryScore(stat, DefaultConfig())

	// 4 actions above tolerance cost 2 each
	assert.Equal(t, 92.0, score)
}

func TestDeliveryScore_OnTimeBonusAndTTCPenalty(t *testing.T) {
	// given a perfect on-time record but a slow 50-day median
	stat := &ChampionStat{
		ClosedInWindow: 10,
		ClosedOnTime:   10,
		Durations:      []int{50},
	}

	// when
	score := DeliveryScore(stat, DefaultConfig())

	// then bonus +20 and ttc penalty 10 would land at 110, clamped to 100
	assert.Equal(t, 100.0, score)
}

func TestDeliveryScore_NoClosuresTakesFullBonusPenalty(t *testing.T) {
	// given only open work, the on-time rate is zero and the bonus bottoms out
	stat := &ChampionStat{OpenNow: 1}

	score := DeliveryScore(stat, DefaultConfig())

	assert.Equal(t, 80.0, score)
}

func TestImpactScore(t *testing.T) {
	stat := &ChampionStat{ImpactPLN: 600, MissingManual: 2}

	score := ImpactScore(stat, 1000, DefaultConfig())

	// 100*(600/1000) - min(20, 2*2)
	assert.Equal(t, 56.0, score)
}

func TestImpactScore_NoSavingsAnywhere(t *testing.T) {
	stat := &ChampionStat{ClosedInWindow: 1}

	score := ImpactScore(stat, 0, DefaultConfig())

	assert.Equal(t, 0.0, score)
}

func TestBuildLeaderboard_WeightsAndOrdering(t *testing.T) {
	// given two champions, the second with more impact but worse delivery
	stats := map[string]*ChampionStat{
		"c1": {
			ClosedInWindow: 10, ClosedOnTime: 7, Durations: []int{30},
			ImpactPLN: 1000,
		},
		"c2": {
			OverdueNow: 10, OpenNow: 10, ClosedInWindow: 10, ClosedOnTime: 7,
			Durations: []int{30}, ImpactPLN: 1000,
		},
		"idle": {},
	}
	names := map[string]string{"c1": "Anna", "c2": "Piotr"}

	// when
	rows := BuildLeaderboard(stats, names, DefaultConfig())

	// then the idle champion is omitted and scores follow the 0.55/0.45 split
	assert.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, "Anna", rows[0].ChampionName)
	// c1: delivery 100, impact 100 -> 100.0
	assert.Equal(t, 100.0, rows[0].TotalScore)
	// c2: delivery 100-40-10 = 50, impact 100 -> 0.55*50 + 0.45*100 = 72.5
	assert.Equal(t, 72.5, rows[1].TotalScore)
	assert.Equal(t, 2, rows[1].Rank)
}

func TestBuildLeaderboard_WeightedComposite(t *testing.T) {
	// given a champion whose sub-scores land exactly on 80 and 60: no
	// closures in the window takes the full on-time penalty, and 600 PLN
	// against a 1000 PLN best
	stats := map[string]*ChampionStat{
		"best": {ClosedInWindow: 10, ClosedOnTime: 7, Durations: []int{30}, ImpactPLN: 1000},
		"mid":  {OpenNow: 1, ImpactPLN: 600},
	}

	// when
	rows := BuildLeaderboard(stats, map[string]string{}, DefaultConfig())

	// then total = round(0.55*80 + 0.45*60, 1)
	assert.Len(t, rows, 2)
	assert.Equal(t, "mid", rows[1].ChampionID)
	assert.Equal(t, 80.0, rows[1].DeliveryScore)
	assert.Equal(t, 60.0, rows[1].ImpactScore)
	assert.Equal(t, 71.0, rows[1].TotalScore)
}

func TestBuildLeaderboard_TieBrokenByChampionID(t *testing.T) {
	stats := map[string]*ChampionStat{
		"b": {OpenNow: 1},
		"a": {OpenNow: 1},
	}

	rows := BuildLeaderboard(stats, nil, DefaultConfig())

	assert.Equal(t, "a", rows[0].ChampionID)
	assert.Equal(t, "b", rows[1].ChampionID)
}

func TestSummarize(t *testing.T) {
	stats := map[string]*ChampionStat{
		"c1": {OpenNow: 2, OverdueNow: 1, ClosedInWindow: 4, ClosedOnTime: 3, Durations: []int{10, 20}, ImpactPLN: 500},
		"c2": {OpenNow: 1, ClosedInWindow: 2, ClosedOnTime: 1, Durations: []int{40}, ImpactEUR: 200},
	}

	summary := Summarize(stats)

	assert.Equal(t, 3, summary.OpenNow)
	assert.Equal(t, 1, summary.OverdueNow)
	assert.Equal(t, 6, summary.ClosedInWindow)
	assert.InDelta(t, 4.0/6.0, *summary.OnTimeRate, 0.0001)
	assert.Equal(t, 20.0, *summary.MedianTTCDays)
	assert.Equal(t, 500.0, summary.ImpactPLN)
	assert.Equal(t, 200.0, summary.ImpactEUR)
}

func TestMedianTTC_EvenCount(t *testing.T) {
	stat := &ChampionStat{Durations: []int{10, 40, 20, 30}}

	assert.Equal(t, 25.0, *stat.MedianTTC())
}

func TestParseTimeframe(t *testing.T) {
	tests := []struct {
		raw      string
		expected Timeframe
		wantErr  bool
	}{
		{"", Last90Days, false},
		{"90d", Last90Days, false},
		{"180d", Last180Days, false},
		{"365d", LastYear, false},
		{"total", Total, false},
		{"7d", "", true},
	}
	for _, tt := range tests {
		timeframe, err := ParseTimeframe(tt.raw)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidTimeframe, tt.raw)
			continue
		}
		assert.NoError(t, err, tt.raw)
		assert.Equal(t, tt.expected, timeframe, tt.raw)
	}
}

func TestTimeframeBounds(t *testing.T) {
	from, to := Last90Days.Bounds(today)
	assert.Equal(t, today.AddDate(0, 0, -90), *from)
	assert.Equal(t, today, *to)

	from, to = Total.Bounds(today)
	assert.Nil(t, from)
	assert.Nil(t, to)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	badWeights := DefaultConfig()
	badWeights.DeliveryWeight = 0.8
	assert.ErrorIs(t, badWeights.Validate(), ErrInvalidWeights)

	badBaseline := DefaultConfig()
	badBaseline.OnTimeBaseline = 1.5
	assert.ErrorIs(t, badBaseline.Validate(), ErrInvalidBaseline)

	negative := DefaultConfig()
	negative.TTCPenaltyPerDay = -1
	assert.ErrorIs(t, negative.Validate(), ErrNegativeConfig)
}
