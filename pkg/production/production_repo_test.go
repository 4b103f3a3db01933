package production

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/qmpulse/qmpulse/internal/test_utils"
)

func setupTestRepository(t *testing.T) (context.Context, *RepositoryImpl) {
	db := test_utils.SetupTestDB(t)
	return context.Background(), NewRepository(db)
}

func TestRepositoryImpl_UpsertAndListScrapDaily(t *testing.T) {
	// given
	ctx, repo := setupTestRepository(t)
	rows := []ScrapRecord{
		{Date: day(2024, 3, 1), WorkCenter: "PL01", ScrapQty: 10, ScrapCost: ptr(150.0)},
		{Date: day(2024, 3, 2), WorkCenter: "PL01", ScrapQty: 4, ScrapCost: ptr(60.0)},
		{Date: day(2024, 3, 1), WorkCenter: "PL02", ScrapQty: 7, ScrapCost: ptr(90.0), Currency: "EUR"},
	}
	assert.NoError(t, repo.UpsertScrapDaily(ctx, rows))

	// when
	all, err := repo.ListScrapDaily(ctx, nil, time.Time{}, time.Time{}, "")

	// then ordered by date then work center, default currency filled in
	assert.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, day(2024, 3, 1), all[0].Date)
	assert.Equal(t, "PL01", all[0].WorkCenter)
	assert.Equal(t, DefaultCurrency, all[0].Currency)
	assert.Equal(t, "EUR", all[1].Currency)
}

func TestRepositoryImpl_ListScrapDaily_Filters(t *testing.T) {
	// given
	ctx, repo := setupTestRepository(t)
	rows := []ScrapRecord{
		{Date: day(2024, 3, 1), WorkCenter: "PL01", ScrapQty: 10},
		{Date: day(2024, 3, 5), WorkCenter: "PL01", ScrapQty: 5},
		{Date: day(2024, 3, 5), WorkCenter: "PL02", ScrapQty: 3},
	}
	assert.NoError(t, repo.UpsertScrapDaily(ctx, rows))

	// when
	filtered, err := repo.ListScrapDaily(ctx, []string{"PL01"}, day(2024, 3, 2), day(2024, 3, 31), "")

	// then
	assert.NoError(t, err)
	assert.Len(t, filtered, 1)
	assert.Equal(t, day(2024, 3, 5), filtered[0].Date)
	assert.Equal(t, 5, filtered[0].ScrapQty)
}

func TestRepositoryImpl_UpsertScrapDaily_ReplacesOnConflict(t *testing.T) {
	// given an earlier import for the same day
	ctx, repo := setupTestRepository(t)
	assert.NoError(t, repo.UpsertScrapDaily(ctx, []ScrapRecord{
		{Date: day(2024, 3, 1), WorkCenter: "PL01", ScrapQty: 10, ScrapCost: ptr(150.0)},
	}))

	// when the day is imported again with corrected values
	assert.NoError(t, repo.UpsertScrapDaily(ctx, []ScrapRecord{
		{Date: day(2024, 3, 1), WorkCenter: "PL01", ScrapQty: 12, ScrapCost: ptr(180.0)},
	}))

	// then the corrected row wins
	all, err := repo.ListScrapDaily(ctx, nil, time.Time{}, time.Time{}, "")
	assert.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, 12, all[0].ScrapQty)
	assert.Equal(t, 180.0, *all[0].ScrapCost)
}

func TestRepositoryImpl_UpsertAndListKPIDaily(t *testing.T) {
	// given
	ctx, repo := setupTestRepository(t)
	rows := []KpiRecord{
		{Date: day(2024, 3, 1), WorkCenter: "PL01", WorktimeMin: ptr(480.0), OeePct: ptr(82.5), PerformancePct: ptr(90.0)},
		{Date: day(2024, 3, 2), WorkCenter: "PL01", WorktimeMin: ptr(480.0), OeePct: nil},
	}
	assert.NoError(t, repo.UpsertKPIDaily(ctx, rows))

	// when
	all, err := repo.ListKPIDaily(ctx, []string{"PL01"}, time.Time{}, time.Time{})

	// then absent percentages stay nil
	assert.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 82.5, *all[0].OeePct)
	assert.Nil(t, all[1].OeePct)
}

func TestRepositoryImpl_ListWorkCenters(t *testing.T) {
	// given telemetry spread over both tables
	ctx, repo := setupTestRepository(t)
	assert.NoError(t, repo.UpsertScrapDaily(ctx, []ScrapRecord{
		{Date: day(2024, 3, 1), WorkCenter: "PL02", ScrapQty: 1},
		{Date: day(2024, 3, 1), WorkCenter: "PL01", ScrapQty: 1},
	}))
	assert.NoError(t, repo.UpsertKPIDaily(ctx, []KpiRecord{
		{Date: day(2024, 3, 1), WorkCenter: "PL03"},
		{Date: day(2024, 3, 1), WorkCenter: "PL01"},
	}))

	// when
	workCenters, err := repo.ListWorkCenters(ctx)

	// then deduplicated and sorted
	assert.NoError(t, err)
	assert.Equal(t, []string{"PL01", "PL02", "PL03"}, workCenters)
}
