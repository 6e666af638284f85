package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/literacy-tracker-api/internal/models"
)

func TestParseRawTagsValues(t *testing.T) {
	assert.Equal(t, RawNumeric, ParseRaw("85").Kind)
	assert.Equal(t, RawNumeric, ParseRaw(" 85.5 ").Kind)
	assert.Equal(t, RawNumeric, ParseRaw("85%").Kind)
	assert.Equal(t, RawNumeric, ParseRaw("14/15").Kind)
	assert.Equal(t, RawLetter, ParseRaw("M").Kind)
	assert.Equal(t, RawLetter, ParseRaw("c/d").Kind)
	assert.Equal(t, RawUnparseable, ParseRaw("").Kind)
	assert.Equal(t, RawUnparseable, ParseRaw("   ").Kind)
	assert.Equal(t, RawUnparseable, ParseRaw("--").Kind)
}

func TestParseRawResolvesFractions(t *testing.T) {
	value := ParseRaw("14/15")
	require.Equal(t, RawNumeric, value.Kind)
	assert.InDelta(t, 93.33, value.Number, 0.01)

	// Zero denominator is not a score.
	assert.NotEqual(t, RawNumeric, ParseRaw("14/0").Kind)
}

func TestReadingLevelNormalization(t *testing.T) {
	n := NewNormalizer()
	ctx := ScaleContext{Subject: models.SubjectReading}

	cases := map[string]float64{
		"M":   94,
		"m":   94,
		"AA":  10,
		"C/D": 40, // range keeps the leading level
		"J+":  88,
		"T":   100,
	}
	for raw, want := range cases {
		got := n.Normalize("Reading_Level", raw, ctx)
		require.NotNil(t, got, "raw=%q", raw)
		assert.Equal(t, want, *got, "raw=%q", raw)
	}

	assert.Nil(t, n.Normalize("Reading_Level", "ZZ", ctx))
	assert.Nil(t, n.Normalize("Reading_Level", "42", ctx))
	assert.Nil(t, n.Normalize("Reading_Level", "", ctx))
}

func TestPercentScaleBounds(t *testing.T) {
	n := NewNormalizer()
	ctx := ScaleContext{Subject: models.SubjectReading}

	got := n.Normalize("Benchmark", "85", ctx)
	require.NotNil(t, got)
	assert.Equal(t, 85.0, *got)

	got = n.Normalize("Benchmark", "0.85", ctx)
	require.NotNil(t, got)
	assert.Equal(t, 85.0, *got)

	got = n.Normalize("Spelling", "14/15", ctx)
	require.NotNil(t, got)
	assert.InDelta(t, 93.33, *got, 0.01)

	got = n.Normalize("Benchmark", "0", ctx)
	require.NotNil(t, got)
	assert.Equal(t, 0.0, *got) // a real zero survives

	assert.Nil(t, n.Normalize("Benchmark", "142", ctx))
	assert.Nil(t, n.Normalize("Benchmark", "-3", ctx))
	assert.Nil(t, n.Normalize("Benchmark", "absent", ctx))
}

func TestSightWordsOutOfScale(t *testing.T) {
	n := NewNormalizer()
	ctx := ScaleContext{Subject: models.SubjectReading}

	got := n.Normalize("Sight_Words", "150", ctx)
	require.NotNil(t, got)
	assert.Equal(t, 75.0, *got)

	got = n.Normalize("Sight_Words", "200", ctx)
	require.NotNil(t, got)
	assert.Equal(t, 100.0, *got)

	assert.Nil(t, n.Normalize("Sight_Words", "250", ctx))
}

func TestStanineScale(t *testing.T) {
	n := NewNormalizer()
	ctx := ScaleContext{Subject: models.SubjectMath}

	got := n.Normalize("ERB_Mathematics", "5", ctx)
	require.NotNil(t, got)
	assert.Equal(t, 50.5, *got)

	got = n.Normalize("ERB_Mathematics", "1", ctx)
	require.NotNil(t, got)
	assert.Equal(t, 2.5, *got)

	assert.Nil(t, n.Normalize("ERB_Mathematics", "0", ctx))
	assert.Nil(t, n.Normalize("ERB_Mathematics", "10", ctx))
	assert.Nil(t, n.Normalize("ERB_Mathematics", "5.5", ctx))
}

func TestUnknownTypeFallsBackToPercent(t *testing.T) {
	n := NewNormalizer()
	got := n.Normalize("Some_New_Assessment", "72", ScaleContext{})
	require.NotNil(t, got)
	assert.Equal(t, 72.0, *got)
}
