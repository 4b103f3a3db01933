package workcenter

import (
	"strings"

	"github.com/qmpulse/qmpulse/pkg/normalize"
)

// Canonical display areas used by report filters. Distinct from the
// structural Area constants: filters speak the plant's language.
const (
	DisplayAssembly     = "Montaż"
	DisplayInjection    = "Wtrysk"
	DisplayMetalization = "Metalizacja"
	DisplaySubgroup     = "Podgrupa"
	DisplayOther        = "Inne"
)

var areaAliases = map[string]string{
	"montaz":        DisplayAssembly,
	"montaz_main":   DisplayAssembly,
	"montaz_line":   DisplayAssembly,
	"assembly":      DisplayAssembly,
	"assembly_main": DisplayAssembly,
	"assembly_line": DisplayAssembly,
	"wtrysk":        DisplayInjection,
	"injection":     DisplayInjection,
	"metalizacja":   DisplayMetalization,
	"metalization":  DisplayMetalization,
	"metalisation":  DisplayMetalization,
	"podgrupa":      DisplaySubgroup,
	"podgrupy":      DisplaySubgroup,
	"subgroup":      DisplaySubgroup,
	"subgroups":     DisplaySubgroup,
	"inne":          DisplayOther,
	"other":         DisplayOther,
	"unknown":       DisplayOther,
}

// foldKey lowercases and strips the Polish diacritics that appear in area
// names, so "Montaż" and "montaz" resolve identically.
func foldKey(value string) string {
	key := normalize.Key(value)
	replacer := strings.NewReplacer(
		"ą", "a", "ć", "c", "ę", "e", "ł", "l",
		"ń", "n", "ó", "o", "ś", "s", "ź", "z", "ż", "z",
	)
	return replacer.Replace(key)
}

// NormalizeAreaName resolves any known alias or spelling of an area name to
// its canonical display form, defaulting to "Inne".
func NormalizeAreaName(value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return DisplayOther
	}
	key := foldKey(raw)
	if canonical, ok := areaAliases[key]; ok {
		return canonical
	}
	for _, canonical := range []string{
		DisplayAssembly, DisplayInjection, DisplayMetalization, DisplaySubgroup, DisplayOther,
	} {
		if raw == canonical || key == foldKey(canonical) {
			return canonical
		}
	}
	return DisplayOther
}

// ParseAreaFilter resolves a user-supplied area filter to the set of
// structural areas it covers. Structural values ("assembly_main") select a
// single area; display names and aliases in either language may fan out —
// "Montaż" covers both main-line and bare-line assembly. Unknown values
// return ok=false rather than silently matching nothing.
func ParseAreaFilter(value string) (map[Area]bool, bool) {
	key := foldKey(value)
	if key == "" {
		return nil, false
	}
	switch area := Area(key); area {
	case AreaAssemblyMain, AreaAssemblyLine, AreaSubgroup, AreaInjection, AreaMetalization, AreaOther:
		return map[Area]bool{area: true}, true
	}
	switch areaAliases[key] {
	case DisplayAssembly:
		return map[Area]bool{AreaAssemblyMain: true, AreaAssemblyLine: true}, true
	case DisplayInjection:
		return map[Area]bool{AreaInjection: true}, true
	case DisplayMetalization:
		return map[Area]bool{AreaMetalization: true}, true
	case DisplaySubgroup:
		return map[Area]bool{AreaSubgroup: true}, true
	case DisplayOther:
		return map[Area]bool{AreaOther: true}, true
	}
	return nil, false
}

// ScrapComponentAreas translates a scrap report component selection into the
// set of display areas it covers. Nil means no restriction (a total).
func ScrapComponentAreas(value string) map[string]bool {
	key := foldKey(value)
	if key == "" || strings.Contains(key, "total") || strings.Contains(key, "all") {
		return nil
	}
	hasAssembly := strings.Contains(key, "montaz")
	hasSubgroup := strings.Contains(key, "podgrup") || strings.Contains(key, "subgroup")
	switch {
	case hasAssembly && hasSubgroup:
		return map[string]bool{DisplayAssembly: true, DisplaySubgroup: true}
	case hasAssembly:
		return map[string]bool{DisplayAssembly: true}
	case hasSubgroup:
		return map[string]bool{DisplaySubgroup: true}
	case strings.Contains(key, "wtrysk"):
		return map[string]bool{DisplayInjection: true}
	case strings.Contains(key, "metalizacja"), strings.Contains(key, "mtz"), strings.Contains(key, "mzt"):
		return map[string]bool{DisplayMetalization: true}
	case strings.Contains(key, "inne"):
		return map[string]bool{DisplayOther: true}
	}
	return nil
}

// KPIComponentAreas translates a KPI report component selection into the set
// of display areas it covers. Unlike scrap components, assembly here never
// includes subgroups. Nil means no restriction.
func KPIComponentAreas(value string) map[string]bool {
	key := foldKey(value)
	if key == "" || strings.Contains(key, "total") || strings.Contains(key, "all") {
		return nil
	}
	switch {
	case strings.Contains(key, "montaz"):
		return map[string]bool{DisplayAssembly: true}
	case strings.Contains(key, "podgrup"), strings.Contains(key, "subgroup"):
		return map[string]bool{DisplaySubgroup: true}
	case strings.Contains(key, "wtrysk"):
		return map[string]bool{DisplayInjection: true}
	case strings.Contains(key, "metalizacja"), strings.Contains(key, "mtz"), strings.Contains(key, "mzt"):
		return map[string]bool{DisplayMetalization: true}
	case strings.Contains(key, "inne"):
		return map[string]bool{DisplayOther: true}
	}
	return nil
}
