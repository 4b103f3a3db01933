package action

import (
	"github.com/qmpulse/qmpulse/pkg/normalize"
)

// SavingsModel selects how a closed action's impact amount is attributed.
type SavingsModel string

const (
	// SavingsNone: the category carries no financial attribution.
	SavingsNone SavingsModel = "NONE"
	// SavingsAutoScrapCost: impact is the scrap-cost delta computed by the
	// effectiveness engine.
	SavingsAutoScrapCost SavingsModel = "AUTO_SCRAP_COST"
	// SavingsManualRequired: impact is a manually entered, currency-tagged
	// savings figure. A missing figure counts as missing, never as zero.
	SavingsManualRequired SavingsModel = "MANUAL_REQUIRED"
)

// CategoryRule is the per-category scoring policy.
type CategoryRule struct {
	Category          string
	SavingsModel      SavingsModel
	RequiresScopeLink bool
	Active            bool
}

// RuleSet resolves category rules case- and whitespace-insensitively.
type RuleSet struct {
	byKey map[string]CategoryRule
}

// NewRuleSet builds a RuleSet from active rules.
func NewRuleSet(rules []CategoryRule) *RuleSet {
	byKey := make(map[string]CategoryRule, len(rules))
	for _, rule := range rules {
		if rule.Active {
			byKey[normalize.Key(rule.Category)] = rule
		}
	}
	return &RuleSet{byKey: byKey}
}

// Resolve returns the rule for a category, defaulting to SavingsNone.
func (rs *RuleSet) Resolve(category string) CategoryRule {
	if rule, ok := rs.byKey[normalize.Key(category)]; ok {
		return rule
	}
	return CategoryRule{Category: category, SavingsModel: SavingsNone}
}
