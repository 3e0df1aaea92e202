package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"offer-service/internal/models"
)

// Missing is the canonical "no value" marker. It distinguishes "known absent"
// from "not yet processed" and is what the comparison UI renders for gaps.
const Missing = "-"

// Included marks presence-only features: any populated extracted value
// collapses to this marker, absence stays Missing.
const Included = "v"

// Unwrap flattens one raw extracted value into a display string. The
// extractor sometimes wraps scalars as {"value": x}, returns numbers where
// text is expected, or emits empty strings; all of that degrades here, never
// errors.
func Unwrap(v any) string {
	switch t := v.(type) {
	case nil:
		return Missing
	case map[string]any:
		if inner, ok := t["value"]; ok {
			return Unwrap(inner)
		}
		return Missing
	case float64:
		// FormatFloat with precision -1 drops the trailing ".0" so 1500.0
		// and 1500 render identically.
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return Missing
		}
		return s
	default:
		s := strings.TrimSpace(fmt.Sprintf("%v", t))
		if s == "" {
			return Missing
		}
		return s
	}
}

// IsMissing reports whether a coerced value carries no information.
func IsMissing(s string) bool {
	return s == "" || s == Missing
}

// CoerceFeatureValue unwraps a raw feature value and keeps only the first
// semicolon-separated segment. The extractor occasionally merges several
// facts into one field; first-wins is the deliberate lossy tie-break.
func CoerceFeatureValue(v any) string {
	s := Unwrap(v)
	if IsMissing(s) {
		return Missing
	}
	if idx := strings.IndexByte(s, ';'); idx >= 0 {
		s = strings.TrimSpace(s[:idx])
		if s == "" {
			return Missing
		}
	}
	return s
}

// CoerceBaseSum parses a raw insured-sum value into an integer via float
// truncation. Parse failure degrades to an absent value.
func CoerceBaseSum(v any) models.MaybeInt {
	s := Unwrap(v)
	if IsMissing(s) {
		return models.MaybeInt{}
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, " ", ""), 64)
	if err != nil {
		return models.MaybeInt{}
	}
	return models.KnownInt(int64(f))
}

// CoercePremium strips the literal "EUR" denomination from a raw premium.
// Values are assumed pre-denominated in EUR; no conversion happens here.
func CoercePremium(v any) string {
	s := Unwrap(v)
	if IsMissing(s) {
		return Missing
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, "EUR", ""))
	if s == "" {
		return Missing
	}
	return s
}

// PresenceToMark collapses any populated value down to the Included marker.
// Magnitude and detail are intentionally discarded: for these features the
// only reliable signal in the documents is included-or-not.
func PresenceToMark(v any) string {
	s := Unwrap(v)
	if IsMissing(s) {
		return Missing
	}
	return Included
}

// FormatEURSum renders a raw sum as "<int> EUR" for whole values and
// "<float> EUR" otherwise. Unparseable sums stay Missing.
func FormatEURSum(v any) string {
	s := Unwrap(v)
	if IsMissing(s) {
		return Missing
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, " ", ""), 64)
	if err != nil {
		return Missing
	}
	if f == math.Trunc(f) {
		return fmt.Sprintf("%d EUR", int64(f))
	}
	return strconv.FormatFloat(f, 'f', -1, 64) + " EUR"
}
