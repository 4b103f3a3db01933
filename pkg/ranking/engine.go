package ranking

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/qmpulse/qmpulse/pkg/action"
)

// UnassignedKey groups actions without an owner when they are counted at all.
const UnassignedKey = "unassigned"

// scrapCostMetrics are the effectiveness metric labels whose delta is a PLN
// scrap-cost change usable for automatic impact attribution.
var scrapCostMetrics = map[string]bool{
	"scrap_cost":        true,
	"scrap_pln":         true,
	"scrap_cost_pln":    true,
	"scrap_cost_amount": true,
}

// Accumulate folds the filtered action list into per-champion counters.
// Cancelled actions are invisible; unassigned actions are counted under
// UnassignedKey only when asked. Open actions are bucketed by creation date,
// closed ones by closure date, so an action can contribute to a window it was
// closed in even if it was created before it.
func Accumulate(actions []action.Action, rules *action.RuleSet, from, to *time.Time, today time.Time, includeUnassigned bool) map[string]*ChampionStat {
	stats := map[string]*ChampionStat{}
	ensure := func(key string) *ChampionStat {
		if _, ok := stats[key]; !ok {
			stats[key] = &ChampionStat{}
		}
		return stats[key]
	}

	for _, act := range actions {
		if act.Status == action.StatusCancelled {
			continue
		}
		if act.ChampionID == nil && !includeUnassigned {
			continue
		}
		key := UnassignedKey
		if act.ChampionID != nil {
			key = *act.ChampionID
		}
		stat := ensure(key)

		rule := rules.Resolve(act.Category)
		if rule.RequiresScopeLink && act.ProjectID == nil {
			stat.MissingScope++
		}

		if openInWindow(act, from, to) {
			stat.OpenNow++
			if act.Due != nil && act.Due.Before(today) {
				stat.OverdueNow++
			}
		}

		if closedInWindow(act, from, to) {
			stat.ClosedInWindow++
			if act.Due == nil || !act.Closed.After(*act.Due) {
				stat.ClosedOnTime++
			}
			stat.Durations = append(stat.Durations, daysBetween(act.Created, *act.Closed))

			switch rule.SavingsModel {
			case action.SavingsAutoScrapCost:
				if delta := scrapCostDelta(act); delta != nil {
					stat.ImpactPLN += math.Max(0, -*delta)
				}
			case action.SavingsManualRequired:
				if act.ManualSavingsAmount == nil {
					stat.MissingManual++
					break
				}
				amount := math.Max(0, *act.ManualSavingsAmount)
				switch currencyOf(act) {
				case "PLN":
					stat.ImpactPLN += amount
				case "EUR":
					stat.ImpactEUR += amount
				}
			}
		}
	}
	return stats
}

func openInWindow(act action.Action, from, to *time.Time) bool {
	if act.IsTerminal() || act.Closed != nil {
		return false
	}
	if from != nil && act.Created.Before(*from) {
		return false
	}
	if to != nil && act.Created.After(*to) {
		return false
	}
	return true
}

func closedInWindow(act action.Action, from, to *time.Time) bool {
	if act.Closed == nil {
		return false
	}
	if from != nil && act.Closed.Before(*from) {
		return false
	}
	if to != nil && act.Closed.After(*to) {
		return false
	}
	return true
}

func scrapCostDelta(act action.Action) *float64 {
	if act.EffectivenessMetric == nil || !scrapCostMetrics[*act.EffectivenessMetric] {
		return nil
	}
	return act.EffectivenessDelta
}

func currencyOf(act action.Action) string {
	if act.ManualSavingsCurrency == nil {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(*act.ManualSavingsCurrency))
}

func daysBetween(from, to time.Time) int {
	return int(midnight(to).Sub(midnight(from)).Hours() / 24)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DeliveryScore grades how the champion runs their queue: overdue and
// oversized backlogs cost points, closing on time above the baseline rate
// earns them back, slow median time-to-close costs again.
func DeliveryScore(stat *ChampionStat, cfg Config) float64 {
	overduePenalty := math.Min(cfg.OverduePenaltyCap, float64(stat.OverdueNow)*cfg.OverduePenaltyPer)
	openPenalty := math.Min(cfg.OpenPenaltyCap, math.Max(0, float64(stat.OpenNow-cfg.OpenTolerance))*cfg.OpenPenaltyPer)
	onTimeBonus := clamp((stat.OnTimeRate()-cfg.OnTimeBaseline)*100, -cfg.OnTimeBonusCap, cfg.OnTimeBonusCap)
	ttc := 0.0
	if median := stat.MedianTTC(); median != nil {
		ttc = *median
	}
	ttcPenalty := clamp((ttc-cfg.TTCBaselineDays)*cfg.TTCPenaltyPerDay, 0, cfg.TTCPenaltyCap)
	return clamp(100-overduePenalty-openPenalty-ttcPenalty+onTimeBonus, 0, 100)
}

// ImpactScore grades PLN savings relative to the best champion in the run,
// minus a penalty for closed actions that should have carried a manual figure.
func ImpactScore(stat *ChampionStat, maxPLN float64, cfg Config) float64 {
	base := 0.0
	if maxPLN > 0 {
		base = 100 * (stat.ImpactPLN / maxPLN)
	}
	missingPenalty := math.Min(cfg.MissingManualPenaltyCap, float64(stat.MissingManual)*cfg.MissingManualPenaltyPer)
	return clamp(base-missingPenalty, 0, 100)
}

// BuildLeaderboard scores every champion with activity and ranks them by
// total score, champion ID breaking ties deterministically.
func BuildLeaderboard(stats map[string]*ChampionStat, names map[string]string, cfg Config) []LeaderboardRow {
	maxPLN := 0.0
	for _, stat := range stats {
		if stat.ImpactPLN > maxPLN {
			maxPLN = stat.ImpactPLN
		}
	}

	rows := make([]LeaderboardRow, 0, len(stats))
	for championID, stat := range stats {
		if !stat.HasActivity() {
			continue
		}
		delivery := DeliveryScore(stat, cfg)
		impact := ImpactScore(stat, maxPLN, cfg)
		row := LeaderboardRow{
			ChampionID:     championID,
			ChampionName:   displayName(championID, names),
			OpenNow:        stat.OpenNow,
			OverdueNow:     stat.OverdueNow,
			ClosedInWindow: stat.ClosedInWindow,
			MedianTTCDays:  stat.MedianTTC(),
			ImpactPLN:      round2(stat.ImpactPLN),
			ImpactEUR:      round2(stat.ImpactEUR),
			MissingManual:  stat.MissingManual,
			MissingScope:   stat.MissingScope,
			DeliveryScore:  round1(delivery),
			ImpactScore:    round1(impact),
			TotalScore:     round1(cfg.DeliveryWeight*delivery + cfg.ImpactWeight*impact),
		}
		if stat.ClosedInWindow > 0 {
			rate := stat.OnTimeRate()
			row.OnTimeRate = &rate
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalScore != rows[j].TotalScore {
			return rows[i].TotalScore > rows[j].TotalScore
		}
		return rows[i].ChampionID < rows[j].ChampionID
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// Summarize folds all counters into the overall KPI block.
func Summarize(stats map[string]*ChampionStat) Summary {
	var summary Summary
	var closedOnTime int
	var durations []int
	for _, stat := range stats {
		summary.OpenNow += stat.OpenNow
		summary.OverdueNow += stat.OverdueNow
		summary.ClosedInWindow += stat.ClosedInWindow
		closedOnTime += stat.ClosedOnTime
		durations = append(durations, stat.Durations...)
		summary.ImpactPLN += stat.ImpactPLN
		summary.ImpactEUR += stat.ImpactEUR
	}
	if summary.ClosedInWindow > 0 {
		rate := float64(closedOnTime) / float64(summary.ClosedInWindow)
		summary.OnTimeRate = &rate
	}
	total := ChampionStat{Durations: durations}
	summary.MedianTTCDays = total.MedianTTC()
	summary.ImpactPLN = round2(summary.ImpactPLN)
	summary.ImpactEUR = round2(summary.ImpactEUR)
	return summary
}

func displayName(championID string, names map[string]string) string {
	if championID == UnassignedKey {
		return "Unassigned"
	}
	if name, ok := names[championID]; ok {
		return name
	}
	return championID
}

func clamp(value, lower, upper float64) float64 {
	return math.Max(lower, math.Min(upper, value))
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
