package scoring

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/noah-isme/literacy-tracker-api/internal/models"
)

// RawKind tags a parsed raw score value.
type RawKind int

const (
	RawUnparseable RawKind = iota
	RawNumeric
	RawLetter
)

// RawValue is the tagged decomposition of a raw score string. Non-numeric
// text is never coerced to zero; it stays RawUnparseable (or RawLetter for
// letter-level scales) and normalizes to nil.
type RawValue struct {
	Kind   RawKind
	Number float64
	Letter string
	Text   string
}

// readingLevelPoints maps guided reading levels (AA-T) onto the 0-100
// scale. The progression is deliberately non-linear: early levels are
// spaced wide, upper levels compress toward 100.
var readingLevelPoints = map[string]float64{
	"AA": 10, "A": 20, "B": 30, "C": 40, "D": 50, "E": 60, "F": 70,
	"G": 75, "H": 80, "I": 85, "J": 88, "K": 90, "L": 92, "M": 94,
	"N": 95, "O": 96, "P": 97, "Q": 98, "R": 99, "S": 100, "T": 100,
}

// stanineMidpoints maps a stanine (1-9) to the midpoint of its percentile
// band, which serves as the normalized value.
var stanineMidpoints = map[int]float64{
	1: 2.5, 2: 8, 3: 17.5, 4: 32, 5: 50.5, 6: 69, 7: 83.5, 8: 93, 9: 98,
}

var nonLetterPattern = regexp.MustCompile(`[^A-Z]`)

// ParseRaw decomposes a raw score string. Fractions ("14/15") and percent
// suffixes are resolved to numbers here; letter levels keep their text for
// scale-specific interpretation.
func ParseRaw(raw string) RawValue {
	text := strings.TrimSpace(raw)
	if text == "" {
		return RawValue{Kind: RawUnparseable, Text: raw}
	}

	numericText := strings.TrimSuffix(text, "%")
	numericText = strings.TrimSpace(numericText)

	if idx := strings.Index(numericText, "/"); idx > 0 {
		num, errN := strconv.ParseFloat(strings.TrimSpace(numericText[:idx]), 64)
		den, errD := strconv.ParseFloat(strings.TrimSpace(numericText[idx+1:]), 64)
		if errN == nil && errD == nil && den > 0 {
			return RawValue{Kind: RawNumeric, Number: num / den * 100, Text: raw}
		}
	} else if value, err := strconv.ParseFloat(numericText, 64); err == nil {
		return RawValue{Kind: RawNumeric, Number: value, Text: raw}
	}

	letters := nonLetterPattern.ReplaceAllString(strings.ToUpper(text), "")
	if letters != "" {
		return RawValue{Kind: RawLetter, Letter: letters, Text: raw}
	}
	return RawValue{Kind: RawUnparseable, Text: raw}
}

// ScaleContext carries the assessment attributes a scale may consult.
type ScaleContext struct {
	Subject    models.Subject
	GradeLevel *int
}

// Scale converts a parsed raw value into a normalized [0,100] score, or nil
// when the value cannot be interpreted under the scale.
type Scale interface {
	Normalize(value RawValue, ctx ScaleContext) *float64
}

// PercentScale accepts values already on (or convertible to) a 0-100
// scale: plain numbers, percent strings, fractions, and 0-1 ratios.
type PercentScale struct{}

func (PercentScale) Normalize(value RawValue, _ ScaleContext) *float64 {
	if value.Kind != RawNumeric {
		return nil
	}
	v := value.Number
	// A bare ratio like "0.85" means 85%.
	if v >= 0 && v <= 1 && strings.Contains(value.Text, ".") {
		v *= 100
	}
	if v < 0 || v > 100 {
		return nil
	}
	return &v
}

// OutOfScale rescales a count out of Max (e.g. sight words out of 200).
type OutOfScale struct {
	Max float64
}

func (s OutOfScale) Normalize(value RawValue, _ ScaleContext) *float64 {
	if value.Kind != RawNumeric || s.Max <= 0 {
		return nil
	}
	v := value.Number
	// Fraction inputs were already resolved to 0-100 by ParseRaw.
	if strings.Contains(value.Text, "/") || strings.HasSuffix(strings.TrimSpace(value.Text), "%") {
		if v < 0 || v > 100 {
			return nil
		}
		return &v
	}
	if v < 0 || v > s.Max {
		return nil
	}
	scaled := v / s.Max * 100
	return &scaled
}

// LetterLevelScale interprets guided reading levels. Ranges like "C/D" and
// modifiers like "J+" resolve to the leading plain level.
type LetterLevelScale struct{}

func (LetterLevelScale) Normalize(value RawValue, _ ScaleContext) *float64 {
	var letters string
	switch value.Kind {
	case RawLetter:
		letters = value.Letter
	case RawUnparseable, RawNumeric:
		return nil
	}
	// "C/D" style ranges keep the first level.
	if idx := strings.Index(value.Text, "/"); idx > 0 {
		letters = nonLetterPattern.ReplaceAllString(strings.ToUpper(value.Text[:idx]), "")
	}
	if points, ok := readingLevelPoints[letters]; ok {
		return &points
	}
	return nil
}

// StanineScale interprets stanines (1-9) via percentile-band midpoints.
type StanineScale struct{}

func (StanineScale) Normalize(value RawValue, _ ScaleContext) *float64 {
	if value.Kind != RawNumeric {
		return nil
	}
	stanine := int(value.Number)
	if float64(stanine) != value.Number {
		return nil
	}
	if midpoint, ok := stanineMidpoints[stanine]; ok {
		return &midpoint
	}
	return nil
}

// PercentileScale accepts percentile ranks 1-99 as-is.
type PercentileScale struct{}

func (PercentileScale) Normalize(value RawValue, _ ScaleContext) *float64 {
	if value.Kind != RawNumeric {
		return nil
	}
	v := value.Number
	if v < 1 || v > 99 {
		return nil
	}
	return &v
}

// Normalizer resolves assessment types to scales. The vocabulary is open:
// unregistered types fall back to the percent scale.
type Normalizer struct {
	scales   map[string]Scale
	fallback Scale
}

// NewNormalizer builds a normalizer preloaded with the known assessment
// type vocabulary.
func NewNormalizer() *Normalizer {
	n := &Normalizer{scales: make(map[string]Scale), fallback: PercentScale{}}

	n.Register("Reading_Level", LetterLevelScale{})
	n.Register("Sight_Words", OutOfScale{Max: 200})
	for _, t := range []string{"Benchmark", "Easy_CBM", "Spelling", "Spelling_Inventory", "Phonics_Survey"} {
		n.Register(t, PercentScale{})
	}
	for _, t := range []string{
		"ERB_Reading_Comp", "ERB_Vocabulary", "ERB_Writing_Mechanics",
		"ERB_Writing_Concepts", "ERB_Mathematics", "ERB_Verbal_Reasoning",
		"ERB_Quant_Reasoning",
	} {
		n.Register(t, StanineScale{})
	}
	for _, t := range []string{"Math_Computation", "Math_Concepts_Application", "Math_Composite"} {
		n.Register(t, PercentScale{})
	}
	return n
}

// Register binds an assessment type to a scale, replacing any previous
// binding.
func (n *Normalizer) Register(assessmentType string, scale Scale) {
	n.scales[assessmentType] = scale
}

// Normalize converts a raw score to the common 0-100 scale. Unknown or
// malformed values return nil; callers must treat nil as "unscored".
func (n *Normalizer) Normalize(assessmentType string, raw string, ctx ScaleContext) *float64 {
	scale, ok := n.scales[assessmentType]
	if !ok {
		scale = n.fallback
	}
	return scale.Normalize(ParseRaw(raw), ctx)
}
