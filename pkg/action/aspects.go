package action

import (
	"encoding/json"
	"strings"
)

// ImpactAspects is the canonical ordered list of production aspects an
// action can claim impact on.
var ImpactAspects = []string{"SCRAP", "OEE", "PERFORMANCE", "DLE", "DOWNTIMES"}

var aspectSynonyms = map[string]string{
	"SCRAP":       "SCRAP",
	"SCRAPS":      "SCRAP",
	"SCRAPQTY":    "SCRAP",
	"SCRAP_QTY":   "SCRAP",
	"SCRAPCOST":   "SCRAP",
	"SCRAP_COST":  "SCRAP",
	"OEE":         "OEE",
	"PERF":        "PERFORMANCE",
	"PERFORMANCE": "PERFORMANCE",
	"DLE":         "DLE",
	"DOWNTIME":    "DOWNTIMES",
	"DOWNTIMES":   "DOWNTIMES",
}

// ParseImpactAspects accepts a JSON array, a single string, or a comma/
// semicolon separated list and folds synonyms onto the canonical aspect set.
// Unknown tokens are dropped.
func ParseImpactAspects(value string) map[string]bool {
	if strings.TrimSpace(value) == "" {
		return map[string]bool{}
	}
	var tokens []string
	var parsed []string
	if err := json.Unmarshal([]byte(value), &parsed); err == nil {
		tokens = parsed
	} else {
		var single string
		if err := json.Unmarshal([]byte(value), &single); err == nil {
			tokens = []string{single}
		} else {
			for _, part := range strings.Split(strings.ReplaceAll(value, ";", ","), ",") {
				if trimmed := strings.TrimSpace(part); trimmed != "" {
					tokens = append(tokens, trimmed)
				}
			}
		}
	}
	aspects := map[string]bool{}
	for _, token := range tokens {
		key := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(token)), " ", "_")
		if canonical, ok := aspectSynonyms[key]; ok {
			aspects[canonical] = true
		}
	}
	return aspects
}

// NormalizeImpactAspects returns the canonical aspects present in the input,
// in canonical order.
func NormalizeImpactAspects(value string) []string {
	present := ParseImpactAspects(value)
	var ordered []string
	for _, aspect := range ImpactAspects {
		if present[aspect] {
			ordered = append(ordered, aspect)
		}
	}
	return ordered
}
