package workcenter

import (
	"regexp"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Area is the structural production area a work center belongs to.
type Area string

const (
	AreaAssemblyMain Area = "assembly_main"
	AreaAssemblyLine Area = "assembly_line"
	AreaSubgroup     Area = "subgroup"
	AreaInjection    Area = "injection"
	AreaMetalization Area = "metalization"
	AreaOther        Area = "other"
)

// AreaLabels maps areas to the display labels used across reports.
var AreaLabels = map[Area]string{
	AreaAssemblyMain: "Montaż (PLxx/P)",
	AreaAssemblyLine: "Montaż (PLxx)",
	AreaSubgroup:     "Podgrupa (PLxxA)",
	AreaInjection:    "Wtrysk (Mxx)",
	AreaMetalization: "Metalizacja (MTZ)",
	AreaOther:        "Inne",
}

var (
	injectionRe    = regexp.MustCompile(`(?i)M\d{2}`)
	assemblyMainRe = regexp.MustCompile(`(?i)PL\d{2}/P`)
	assemblyLineRe = regexp.MustCompile(`(?i)PL\d{2}`)
	subgroupRe     = regexp.MustCompile(`(?i)PL\d{2}[A-Z]`)
	metalizationRe = regexp.MustCompile(`(?i)MTZ`)
	spacesRe       = regexp.MustCompile(`\s+`)
)

// Classification is the resolved area plus normalized identifiers of a work center.
type Classification struct {
	Area            Area
	NormalizedLabel string
	Code            string
}

// Normalize upper-cases a raw work-center label and squashes whitespace,
// returning the display form and a space-free token used for matching.
func Normalize(raw string) (normalized string, token string) {
	cleaned := strings.ReplaceAll(raw, "\u00A0", " ")
	normalized = strings.ToUpper(strings.Join(strings.Fields(cleaned), " "))
	token = spacesRe.ReplaceAllString(normalized, "")
	return normalized, token
}

// ClassifyArea maps a raw work-center label to its area. Total: every
// input classifies, defaulting to AreaOther.
//
// Order matters: MTZ tokens can appear as a substring of anything and win
// outright, injection codes beat assembly codes, and the PLxx/P main-line
// pattern must be tried before the subgroup pattern, which in turn is
// stricter than the bare PLxx line pattern.
func ClassifyArea(raw string) Area {
	_, token := Normalize(raw)
	if token == "" {
		return AreaOther
	}
	switch {
	case metalizationRe.MatchString(token):
		return AreaMetalization
	case injectionRe.MatchString(token):
		return AreaInjection
	case assemblyMainRe.MatchString(token):
		return AreaAssemblyMain
	case subgroupRe.MatchString(token):
		return AreaSubgroup
	case assemblyLineRe.MatchString(token):
		return AreaAssemblyLine
	default:
		return AreaOther
	}
}

// Classify resolves the area and the matched machine/line code of a label.
func Classify(raw string) Classification {
	normalized, token := Normalize(raw)
	if token == "" {
		return Classification{Area: AreaOther, NormalizedLabel: normalized}
	}
	if metalizationRe.MatchString(token) {
		code := matchCode(metalizationRe, token)
		if code == "" {
			code = token
		}
		return Classification{Area: AreaMetalization, NormalizedLabel: normalized, Code: code}
	}
	if code := matchCode(injectionRe, token); code != "" {
		return Classification{Area: AreaInjection, NormalizedLabel: normalized, Code: code}
	}
	if code := matchCode(assemblyMainRe, token); code != "" {
		return Classification{Area: AreaAssemblyMain, NormalizedLabel: normalized, Code: code}
	}
	if code := matchCode(subgroupRe, token); code != "" {
		return Classification{Area: AreaSubgroup, NormalizedLabel: normalized, Code: code}
	}
	if code := matchCode(assemblyLineRe, token); code != "" {
		return Classification{Area: AreaAssemblyLine, NormalizedLabel: normalized, Code: code}
	}
	return Classification{Area: AreaOther, NormalizedLabel: normalized}
}

func matchCode(re *regexp.Regexp, token string) string {
	match := re.FindString(token)
	if match == "" {
		return ""
	}
	return strings.ToUpper(match)
}

// FilterByAreas keeps only labels whose classified area is in the allowed set.
// A nil or empty set means no filtering.
func FilterByAreas(labels []string, areas map[Area]bool) []string {
	if len(areas) == 0 {
		return labels
	}
	filtered := make([]string, 0, len(labels))
	for _, label := range labels {
		if areas[ClassifyArea(label)] {
			filtered = append(filtered, label)
		}
	}
	return filtered
}

// InjectionMachines enumerates the distinct normalized labels of injection
// machines found among the given work centers, sorted for stable drill-down lists.
func InjectionMachines(labels []string) []string {
	seen := map[string]bool{}
	for _, label := range labels {
		classification := Classify(label)
		if classification.Area == AreaInjection && classification.NormalizedLabel != "" {
			seen[classification.NormalizedLabel] = true
		}
	}
	machines := make([]string, 0, len(seen))
	for machine := range seen {
		machines = append(machines, machine)
	}
	sort.Strings(machines)
	return machines
}

// SanityCheck verifies the classifier against a fixed set of canonical labels
// and returns a description of every mismatch. Used at startup to catch
// pattern regressions before they corrupt a report.
func SanityCheck() []string {
	samples := []struct {
		label    string
		expected Area
	}{
		{"PL01/P", AreaAssemblyMain},
		{"PL01", AreaAssemblyLine},
		{"PL01A", AreaSubgroup},
		{"M12", AreaInjection},
		{"MTZ", AreaMetalization},
		{"", AreaOther},
	}
	var mismatches []string
	for _, sample := range samples {
		actual := ClassifyArea(sample.label)
		if actual != sample.expected {
			mismatches = append(mismatches,
				sample.label+" -> "+string(actual)+" (expected "+string(sample.expected)+")")
		}
	}
	if len(mismatches) > 0 {
		log.Warnf("work center classification sanity check failed: %v", mismatches)
	}
	return mismatches
}
