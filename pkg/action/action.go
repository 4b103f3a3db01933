package action

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// Status values an action moves through. Cancelled actions are invisible to
// scoring and effectiveness.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusCancelled  = "cancelled"
)

// Action is one corrective/preventive action record as the scoring and
// effectiveness engines see it. Optional fields are pointers; zero is never
// reused to mean absent.
type Action struct {
	ID                    string
	Title                 string
	ProjectID             *string
	ProjectName           *string
	ChampionID            *string
	Category              string
	Status                string
	WorkCenter            string
	RelatedWorkCenters    string
	ImpactAspects         string
	Created               time.Time
	Closed                *time.Time
	Due                   *time.Time
	ManualSavingsAmount   *float64
	ManualSavingsCurrency *string
	EffectivenessMetric   *string
	EffectivenessDelta    *float64
}

// IsClosed reports whether the action has a closure date.
func (a Action) IsClosed() bool { return a.Closed != nil }

// IsTerminal reports whether the action can no longer be open.
func (a Action) IsTerminal() bool {
	return a.Status == StatusDone || a.Status == StatusCancelled
}

var (
	spaceRe   = regexp.MustCompile(`\s+`)
	wcSplitRe = regexp.MustCompile(`[,;|\n]+`)
)

// NormalizeWorkCenter squashes whitespace (NBSP included) in a work-center label.
func NormalizeWorkCenter(value string) string {
	cleaned := strings.ReplaceAll(value, "\u00A0", " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(cleaned, " "))
}

// WorkCenters merges the primary work center with the related-work-centers
// field (comma/semicolon/pipe/newline separated), normalized and deduplicated
// in input order.
func (a Action) WorkCenters() []string {
	var centers []string
	seen := map[string]bool{}
	add := func(raw string) {
		center := NormalizeWorkCenter(raw)
		if center != "" && !seen[center] {
			seen[center] = true
			centers = append(centers, center)
		}
	}
	add(a.WorkCenter)
	for _, token := range wcSplitRe.Split(a.RelatedWorkCenters, -1) {
		add(token)
	}
	return centers
}

// SuggestWorkCenters ranks candidate work centers by similarity to a target
// label: exact match short-circuits, then prefix relations, substring
// containment, and finally length distance. Used when editing an action whose
// imported work center does not match any telemetry label.
func SuggestWorkCenters(target string, candidates []string, limit int) []string {
	normalizedTarget := NormalizeWorkCenter(target)
	if normalizedTarget == "" {
		return nil
	}
	type scored struct {
		score      int
		lengthDiff int
		candidate  string
	}
	var ranked []scored
	for _, candidate := range candidates {
		normalized := NormalizeWorkCenter(candidate)
		if normalized == "" {
			continue
		}
		if normalized == normalizedTarget {
			return []string{candidate}
		}
		lengthDiff := len(normalized) - len(normalizedTarget)
		if lengthDiff < 0 {
			lengthDiff = -lengthDiff
		}
		var score int
		switch {
		case strings.HasPrefix(normalized, normalizedTarget) || strings.HasPrefix(normalizedTarget, normalized):
			score = 1
		case strings.Contains(normalized, normalizedTarget):
			score = 2
		default:
			score = 3 + lengthDiff
		}
		ranked = append(ranked, scored{score, lengthDiff, candidate})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score < ranked[j].score
		}
		if ranked[i].lengthDiff != ranked[j].lengthDiff {
			return ranked[i].lengthDiff < ranked[j].lengthDiff
		}
		return ranked[i].candidate < ranked[j].candidate
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	suggestions := make([]string, 0, len(ranked))
	for _, item := range ranked {
		suggestions = append(suggestions, item.candidate)
	}
	return suggestions
}
