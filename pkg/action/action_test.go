package action

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAction_WorkCenters(t *testing.T) {
	a := Action{
		WorkCenter:         " PL01 ",
		RelatedWorkCenters: "M12, PL01;MTZ|M13\nM12",
	}

	assert.Equal(t, []string{"PL01", "M12", "MTZ", "M13"}, a.WorkCenters())
}

func TestAction_WorkCenters_Empty(t *testing.T) {
	assert.Empty(t, Action{}.WorkCenters())
}

func TestNormalizeWorkCenter(t *testing.T) {
	assert.Equal(t, "PL 01", NormalizeWorkCenter("PL  01 "))
	assert.Equal(t, "", NormalizeWorkCenter("   "))
}

func TestSuggestWorkCenters(t *testing.T) {
	candidates := []string{"PL01", "PL01A", "PL02", "M12", "XPL01X"}

	// exact match short-circuits
	assert.Equal(t, []string{"PL01"}, SuggestWorkCenters("PL01", candidates, 8))

	// prefix relations rank before substring containment
	suggestions := SuggestWorkCenters("PL0", candidates, 8)
	assert.Equal(t, "PL01", suggestions[0])
	assert.Contains(t, suggestions, "XPL01X")

	assert.Nil(t, SuggestWorkCenters("", candidates, 8))

	// limit applies
	assert.Len(t, SuggestWorkCenters("PL0", candidates, 2), 2)
}

func TestAction_IsTerminal(t *testing.T) {
	assert.True(t, Action{Status: StatusDone}.IsTerminal())
	assert.True(t, Action{Status: StatusCancelled}.IsTerminal())
	assert.False(t, Action{Status: StatusOpen}.IsTerminal())
	assert.False(t, Action{Status: StatusInProgress}.IsTerminal())
}

func TestRuleSet_Resolve(t *testing.T) {
	rules := NewRuleSet([]CategoryRule{
		{Category: "Scrap reduction", SavingsModel: SavingsAutoScrapCost, Active: true},
		{Category: "Kaizen", SavingsModel: SavingsManualRequired, RequiresScopeLink: true, Active: true},
		{Category: "Old rule", SavingsModel: SavingsManualRequired, Active: false},
	})

	assert.Equal(t, SavingsAutoScrapCost, rules.Resolve("scrap reduction").SavingsModel)
	assert.Equal(t, SavingsAutoScrapCost, rules.Resolve(" SCRAP  REDUCTION ").SavingsModel)
	assert.True(t, rules.Resolve("Kaizen").RequiresScopeLink)

	// inactive and unknown categories fall back to NONE
	assert.Equal(t, SavingsNone, rules.Resolve("Old rule").SavingsModel)
	assert.Equal(t, SavingsNone, rules.Resolve("whatever").SavingsModel)
}

func TestParseImpactAspects(t *testing.T) {
	assert.Equal(t,
		map[string]bool{"SCRAP": true, "OEE": true},
		ParseImpactAspects(`["scrap_cost", "OEE"]`))

	assert.Equal(t,
		map[string]bool{"PERFORMANCE": true, "DOWNTIMES": true},
		ParseImpactAspects("perf; downtime"))

	assert.Equal(t, map[string]bool{"SCRAP": true}, ParseImpactAspects(`"scraps"`))
	assert.Empty(t, ParseImpactAspects(""))
	assert.Empty(t, ParseImpactAspects("unrelated"))
}

func TestNormalizeImpactAspects_CanonicalOrder(t *testing.T) {
	assert.Equal(t,
		[]string{"SCRAP", "OEE", "DOWNTIMES"},
		NormalizeImpactAspects("downtime, oee, scrap"))
}

func TestStubRepository_CloseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewStubRepository()
	stored, err := repo.Store(ctx, Action{Title: "Fix fixture", Status: StatusOpen})
	assert.NoError(t, err)

	closedAt := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	ok, err := repo.Close(ctx, stored.ID, closedAt)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Close(ctx, stored.ID, closedAt.AddDate(0, 0, 1))
	assert.NoError(t, err)
	assert.False(t, ok)

	reloaded, err := repo.Get(ctx, stored.ID)
	assert.NoError(t, err)
	assert.Equal(t, closedAt, *reloaded.Closed)
	assert.Equal(t, StatusDone, reloaded.Status)
}
