package normalize

import (
	"strconv"
	"strings"
)

// Scale describes how a raw KPI value encodes a percentage.
type Scale string

const (
	ScaleFraction Scale = "fraction"
	ScalePercent  Scale = "percent"
	ScaleInvalid  Scale = "invalid"
	ScaleUnknown  Scale = "unknown"
)

const (
	// Values up to this bound are treated as fractional encodings (0.92 -> 92%).
	// Legitimate percentages essentially never fall in (1.0, 1.5].
	fractionUpperBound = 1.5
	// Values above this bound are implausible as percentages and rejected.
	percentUpperBound = 200.0
)

// ParseFloat parses a numeric string the way the production feeds write them:
// optional percent sign, comma or dot decimal separator, regular or no-break
// space digit grouping. Returns false for empty or unparseable input.
func ParseFloat(raw string) (float64, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return 0, false
	}
	text = strings.ReplaceAll(text, "\u00A0", "")
	text = strings.ReplaceAll(text, " ", "")
	text = strings.ReplaceAll(text, "%", "")
	if text == "" {
		return 0, false
	}
	if strings.Contains(text, ",") && !strings.Contains(text, ".") {
		text = strings.ReplaceAll(text, ",", ".")
	}
	number, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return number, true
}

// Percent normalizes a raw textual percentage to the 0..100 scale.
// "0,92", "92" and "92%" all normalize to 92.0. Returns nil for values
// that cannot be parsed or fall outside the plausible range.
func Percent(raw string) *float64 {
	number, ok := ParseFloat(raw)
	if !ok {
		return nil
	}
	return PercentValue(number)
}

// PercentValue normalizes an already-parsed number to the 0..100 scale.
func PercentValue(number float64) *float64 {
	if number >= 0 && number <= fractionUpperBound {
		scaled := number * 100
		return &scaled
	}
	if number > fractionUpperBound && number <= percentUpperBound {
		return &number
	}
	return nil
}

// DetectScale reports which encoding Percent would assume for a raw value,
// without performing the scaling. Used to count auto-corrected inputs.
func DetectScale(raw string) Scale {
	number, ok := ParseFloat(raw)
	if !ok {
		return ScaleUnknown
	}
	return DetectScaleValue(number)
}

// DetectScaleValue is DetectScale for an already-parsed number.
func DetectScaleValue(number float64) Scale {
	if number >= 0 && number <= fractionUpperBound {
		return ScaleFraction
	}
	if number > fractionUpperBound && number <= percentUpperBound {
		return ScalePercent
	}
	return ScaleInvalid
}

// Key squashes whitespace (including BOM and no-break spaces) and lowercases
// a label so that visually identical feed headers compare equal.
func Key(value string) string {
	cleaned := strings.ReplaceAll(value, "\uFEFF", "")
	cleaned = strings.ReplaceAll(cleaned, "\u00A0", " ")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return strings.ToLower(cleaned)
}
