package rfq

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Range
	}{
		{"upper bound unicode", "≤0.17", Range{Max: fptr(0.17), Mid: fptr(0.085)}},
		{"upper bound ascii", "<=0.5", Range{Max: fptr(0.5), Mid: fptr(0.25)}},
		{"lower bound unicode", "≥235 MPa", Range{Min: fptr(235)}},
		{"lower bound ascii", ">=100", Range{Min: fptr(100)}},
		{"range with unit", "360-510 MPa", Range{Min: fptr(360), Max: fptr(510), Mid: fptr(435)}},
		{"range with en dash", "360–510", Range{Min: fptr(360), Max: fptr(510), Mid: fptr(435)}},
		{"single number", "0.17", Range{Mid: fptr(0.17)}},
		{"single number with unit", "40 %", Range{Mid: fptr(40)}},
		{"empty", "", Range{}},
		{"whitespace", "   ", Range{}},
		{"no numbers", "tbd", Range{}},
		{"dangling hyphen stays unparsed", "10-", Range{}},
		{"malformed number", "1.2.3", Range{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRange(tt.text)
			assertRangeEqual(t, tt.want, got)
		})
	}
}

func assertRangeEqual(t *testing.T, want, got Range) {
	t.Helper()
	assertFloatPtr(t, want.Min, got.Min, "min")
	assertFloatPtr(t, want.Max, got.Max, "max")
	assertFloatPtr(t, want.Mid, got.Mid, "mid")
}

func assertFloatPtr(t *testing.T, want, got *float64, label string) {
	t.Helper()
	if want == nil {
		assert.Nil(t, got, label)
		return
	}
	require.NotNil(t, got, label)
	assert.InDelta(t, *want, *got, 1e-9, label)
}

func TestParseProperties(t *testing.T) {
	records := []EnrichedRecord{
		{
			HasRef: true,
			Props: map[string]string{
				"Carbon (C)":            "≤0.17",
				"Tensile strength (Rm)": "360-510 MPa",
			},
		},
		{
			HasRef: true,
			Props: map[string]string{
				"Carbon (C)": "not a number",
			},
		},
		{},
	}

	ParseProperties(records, discardLogger())

	require.Contains(t, records[0].Ranges, "Carbon (C)")
	assert.InDelta(t, 0.085, *records[0].Ranges["Carbon (C)"].Mid, 1e-9)
	require.Contains(t, records[0].Ranges, "Tensile strength (Rm)")
	assert.InDelta(t, 435, *records[0].Ranges["Tensile strength (Rm)"].Mid, 1e-9)

	assert.NotContains(t, records[1].Ranges, "Carbon (C)")
	assert.Nil(t, records[2].Ranges)
}
