package effectiveness

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/qmpulse/qmpulse/internal/utils"
	"github.com/qmpulse/qmpulse/pkg/action"
	"github.com/qmpulse/qmpulse/pkg/production"
)

func newTestService(actions *action.StubRepository, prod *production.StubRepository, results *StubRepository) *ServiceImpl {
	service := NewServiceImpl(actions, prod, results)
	service.clock = &utils.MockClock{FixedNow: time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)}
	return service
}

func seedScrap(prod *production.StubRepository, workCenter string, from time.Time, days int, qtyPerDay int) {
	for i := 0; i < days; i++ {
		prod.Scrap = append(prod.Scrap, production.ScrapRecord{
			Date:       from.AddDate(0, 0, i),
			WorkCenter: workCenter,
			ScrapQty:   qtyPerDay,
			Currency:   "PLN",
		})
	}
}

func TestComputeForAction_StepChangeIsEffective(t *testing.T) {
	// given an action closed in the middle of a clean step change: 10 units
	// of scrap per day before closure, 2 per day after
	ctx := context.Background()
	actions := action.NewStubRepository()
	prod := production.NewStubRepository()
	results := NewStubRepository()
	service := newTestService(actions, prod, results)

	closed := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	stored, err := actions.Store(ctx, action.Action{
		Title:      "Replace worn mold insert",
		Category:   "scrap reduction",
		Status:     action.StatusDone,
		WorkCenter: "PL01",
		Closed:     &closed,
	})
	assert.NoError(t, err)
	seedScrap(prod, "PL01", time.Date(2024, 2, 25, 0, 0, 0, 0, time.UTC), 14, 10)
	seedScrap(prod, "PL01", time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), 14, 2)

	// when
	result, err := service.ComputeForAction(ctx, stored.ID)

	// then
	assert.NoError(t, err)
	assert.Equal(t, Effective, result.Class)
	assert.Equal(t, 14, result.BaselineDays)
	assert.Equal(t, 14, result.AfterDays)
	assert.Equal(t, 10.0, *result.BaselineAvg)
	assert.Equal(t, 2.0, *result.AfterAvg)
	assert.Equal(t, -8.0, *result.Delta)
	assert.InDelta(t, -80.0, *result.PctChange, 0.001)
}

func TestComputeForAction_ClosureDayExcluded(t *testing.T) {
	// given scrap recorded only on the closure day itself
	ctx := context.Background()
	actions := action.NewStubRepository()
	prod := production.NewStubRepository()
	service := newTestService(actions, prod, NewStubRepository())

	closed := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	stored, _ := actions.Store(ctx, action.Action{
		Status:     action.StatusDone,
		WorkCenter: "PL01",
		Closed:     &closed,
	})
	seedScrap(prod, "PL01", closed, 1, 50)

	// when
	result, err := service.ComputeForAction(ctx, stored.ID)

	// then neither window saw the closure-day row
	assert.NoError(t, err)
	assert.Equal(t, 0, result.BaselineDays)
	assert.Equal(t, 0, result.AfterDays)
	assert.Equal(t, InsufficientData, result.Class)
}

func TestComputeForAction_SparseWindowsAreInsufficient(t *testing.T) {
	// given only 3 days of data on each side of the closure
	ctx := context.Background()
	actions := action.NewStubRepository()
	prod := production.NewStubRepository()
	service := newTestService(actions, prod, NewStubRepository())

	closed := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	stored, _ := actions.Store(ctx, action.Action{
		Status:     action.StatusDone,
		WorkCenter: "PL01",
		Closed:     &closed,
	})
	seedScrap(prod, "PL01", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), 3, 10)
	seedScrap(prod, "PL01", time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), 3, 2)

	// when
	result, err := service.ComputeForAction(ctx, stored.ID)

	// then
	assert.NoError(t, err)
	assert.Equal(t, InsufficientData, result.Class)
}

func TestComputeForAction_NoWorkCentersIsUnknown(t *testing.T) {
	// given a closed action with no work center attribution
	ctx := context.Background()
	actions := action.NewStubRepository()
	results := NewStubRepository()
	service := newTestService(actions, production.NewStubRepository(), results)

	closed := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	stored, _ := actions.Store(ctx, action.Action{Status: action.StatusDone, Closed: &closed})

	// when
	result, err := service.ComputeForAction(ctx, stored.ID)

	// then the unknown verdict is still persisted
	assert.NoError(t, err)
	assert.Equal(t, Unknown, result.Class)
	assert.Len(t, results.Results[stored.ID], 1)
}

func TestComputeForAction_NotClosed(t *testing.T) {
	ctx := context.Background()
	actions := action.NewStubRepository()
	service := newTestService(actions, production.NewStubRepository(), NewStubRepository())
	stored, _ := actions.Store(ctx, action.Action{Status: action.StatusOpen, WorkCenter: "PL01"})

	_, err := service.ComputeForAction(ctx, stored.ID)

	assert.ErrorIs(t, err, ErrActionNotClosed)
}

func TestComputeForAction_NotFound(t *testing.T) {
	ctx := context.Background()
	service := newTestService(action.NewStubRepository(), production.NewStubRepository(), NewStubRepository())

	_, err := service.ComputeForAction(ctx, "missing")

	assert.ErrorIs(t, err, ErrActionNotFound)
}

func TestComputeForAction_ResultsAreAppendOnly(t *testing.T) {
	// given one closed action computed twice
	ctx := context.Background()
	actions := action.NewStubRepository()
	prod := production.NewStubRepository()
	results := NewStubRepository()
	service := newTestService(actions, prod, results)

	closed := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	stored, _ := actions.Store(ctx, action.Action{
		Status:     action.StatusDone,
		WorkCenter: "PL01",
		Closed:     &closed,
	})
	seedScrap(prod, "PL01", time.Date(2024, 2, 25, 0, 0, 0, 0, time.UTC), 14, 10)
	seedScrap(prod, "PL01", time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), 14, 2)

	// when
	_, err := service.ComputeForAction(ctx, stored.ID)
	assert.NoError(t, err)
	_, err = service.ComputeForAction(ctx, stored.ID)
	assert.NoError(t, err)

	// then both rows survive
	assert.Len(t, results.Results[stored.ID], 2)
}

func TestRecomputeAll(t *testing.T) {
	// given two closed actions and one still open
	ctx := context.Background()
	actions := action.NewStubRepository()
	prod := production.NewStubRepository()
	results := NewStubRepository()
	service := newTestService(actions, prod, results)

	closed := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	first, _ := actions.Store(ctx, action.Action{Status: action.StatusDone, WorkCenter: "PL01", Closed: &closed})
	second, _ := actions.Store(ctx, action.Action{Status: action.StatusDone, WorkCenter: "PL02", Closed: &closed})
	actions.Store(ctx, action.Action{Status: action.StatusOpen, WorkCenter: "PL03"})

	// when
	count, err := service.RecomputeAll(ctx)

	// then
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, results.Results[first.ID], 1)
	assert.Len(t, results.Results[second.ID], 1)
}

func TestLatestForAction(t *testing.T) {
	ctx := context.Background()
	actions := action.NewStubRepository()
	prod := production.NewStubRepository()
	results := NewStubRepository()
	service := newTestService(actions, prod, results)

	closed := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	stored, _ := actions.Store(ctx, action.Action{Status: action.StatusDone, WorkCenter: "PL01", Closed: &closed})
	computed, err := service.ComputeForAction(ctx, stored.ID)
	assert.NoError(t, err)

	latest, err := service.LatestForAction(ctx, stored.ID)

	assert.NoError(t, err)
	assert.NotNil(t, latest)
	assert.Equal(t, computed.Class, latest.Class)
	assert.Equal(t, MetricScrapQty, latest.Metric)
}

func TestProjectWindows_AdaptiveComparison(t *testing.T) {
	// given 40 consecutive days of scrap, improving in the last two weeks
	ctx := context.Background()
	prod := production.NewStubRepository()
	service := newTestService(action.NewStubRepository(), prod, NewStubRepository())
	seedScrap(prod, "PL01", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 26, 10)
	seedScrap(prod, "PL01", time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC), 14, 4)

	// when
	report, err := service.ProjectWindows(ctx, []string{"PL01"}, WindowsOptions{})

	// then the last 14 days form the current window against a 26-day baseline
	assert.NoError(t, err)
	assert.Equal(t, StatusOK, report.Status)
	assert.Equal(t, 14, report.Window.CurrentDayCount())
	assert.Equal(t, 26, report.Window.BaselineDayCount())
	assert.Equal(t, 10.0, *report.ScrapQty.Baseline)
	assert.Equal(t, 4.0, *report.ScrapQty.Current)
	assert.Equal(t, Improvement, report.ScrapQty.Direction)
}

func TestProjectWindows_InsufficientData(t *testing.T) {
	// given fewer distinct days than any window can be built from
	ctx := context.Background()
	prod := production.NewStubRepository()
	service := newTestService(action.NewStubRepository(), prod, NewStubRepository())
	seedScrap(prod, "PL01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 5, 10)

	// when
	report, err := service.ProjectWindows(ctx, []string{"PL01"}, WindowsOptions{})

	// then
	assert.NoError(t, err)
	assert.Equal(t, StatusInsufficientData, report.Status)
}

func TestProjectWindows_WeekendFilter(t *testing.T) {
	// given data covering March 2024 with weekends removed, the resolver only
	// sees weekdays
	ctx := context.Background()
	prod := production.NewStubRepository()
	service := newTestService(action.NewStubRepository(), prod, NewStubRepository())
	seedScrap(prod, "PL01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 31, 10)

	// when
	report, err := service.ProjectWindows(ctx, []string{"PL01"}, WindowsOptions{
		RemoveSaturdays: true,
		RemoveSundays:   true,
	})

	// then March 2024 has 21 weekdays, so the most recent 14 split 7/7
	assert.NoError(t, err)
	assert.Equal(t, StatusOK, report.Status)
	assert.Equal(t, 7, report.Window.CurrentDayCount())
	assert.Equal(t, 7, report.Window.BaselineDayCount())
	for _, day := range report.Window.CurrentDays {
		assert.NotEqual(t, time.Saturday, day.Weekday())
		assert.NotEqual(t, time.Sunday, day.Weekday())
	}
}

func TestRangeOutcome_WideRange(t *testing.T) {
	// given a 40-day range with a step change at the end
	ctx := context.Background()
	prod := production.NewStubRepository()
	service := newTestService(action.NewStubRepository(), prod, NewStubRepository())
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	seedScrap(prod, "PL01", from, 26, 10)
	seedScrap(prod, "PL01", time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC), 14, 4)

	// when
	outcome, err := service.RangeOutcome(ctx, []string{"PL01"}, from, to, false, false)

	// then the first and last 14 calendar days are compared
	assert.NoError(t, err)
	assert.False(t, outcome.Range.UsedHalves)
	assert.Equal(t, 10.0, *outcome.ScrapQty.Baseline)
	assert.Equal(t, 4.0, *outcome.ScrapQty.Current)
	assert.Equal(t, Improvement, outcome.ScrapQty.Direction)
}

func TestRangeOutcome_ShortRangeUsesHalves(t *testing.T) {
	// given a 10-day range
	ctx := context.Background()
	prod := production.NewStubRepository()
	service := newTestService(action.NewStubRepository(), prod, NewStubRepository())
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	seedScrap(prod, "PL01", from, 10, 10)

	// when
	outcome, err := service.RangeOutcome(ctx, []string{"PL01"}, from, to, false, false)

	// then the midpoint split is flagged
	assert.NoError(t, err)
	assert.True(t, outcome.Range.UsedHalves)
	assert.Equal(t, 10.0, *outcome.ScrapQty.Baseline)
	assert.Equal(t, 10.0, *outcome.ScrapQty.Current)
}

func TestRangeOutcome_ForeignCurrencyExcluded(t *testing.T) {
	// given PLN and EUR scrap costs in the range
	ctx := context.Background()
	prod := production.NewStubRepository()
	service := newTestService(action.NewStubRepository(), prod, NewStubRepository())
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	seedScrap(prod, "PL01", from, 30, 10)
	cost := 120.0
	prod.Scrap = append(prod.Scrap, production.ScrapRecord{
		Date:       from,
		WorkCenter: "PL01",
		ScrapQty:   1,
		ScrapCost:  &cost,
		Currency:   "EUR",
	})

	// when
	outcome, err := service.RangeOutcome(ctx, []string{"PL01"}, from, to, false, false)

	// then the EUR cost lands in the excluded totals, not the series
	assert.NoError(t, err)
	assert.Equal(t, 120.0, outcome.Excluded["EUR"])
}
