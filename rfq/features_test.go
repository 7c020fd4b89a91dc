package rfq

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalOverlapRatio(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name                   string
		min1, max1, min2, max2 float64
		want                   float64
	}{
		{"partial overlap", 0, 10, 5, 15, 5.0 / 15.0},
		{"identical intervals", 0, 10, 0, 10, 1.0},
		{"contained interval", 0, 10, 2, 4, 2.0 / 10.0},
		{"disjoint", 0, 1, 2, 3, 0.0},
		{"reversed bounds are normalized", 10, 0, 5, 15, 5.0 / 15.0},
		{"identical points have zero union", 5, 5, 5, 5, 0.0},
		{"nan input", nan, 10, 0, 10, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IntervalOverlapRatio(tt.min1, tt.max1, tt.min2, tt.max2)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCategoricalMatch(t *testing.T) {
	assert.Equal(t, 1.0, CategoricalMatch("ZINC", "ZINC"))
	assert.Equal(t, 0.0, CategoricalMatch("ZINC", "PAINTED"))
	assert.Equal(t, 0.0, CategoricalMatch("", "ZINC"))
	assert.Equal(t, 0.0, CategoricalMatch("ZINC", ""))
	assert.Equal(t, 0.0, CategoricalMatch("", ""))

	// Symmetry over a few value pairs.
	values := []string{"", "ZINC", "PAINTED", "UNKNOWN"}
	for _, a := range values {
		for _, b := range values {
			assert.Equal(t, CategoricalMatch(a, b), CategoricalMatch(b, a))
		}
	}
}

func TestEngineerIntervals(t *testing.T) {
	schema := map[string]bool{
		"thickness_min": true, "thickness_max": true,
		"length_min": true,
		"coating":    true,
	}
	records := []EnrichedRecord{
		{RFQRecord: RFQRecord{
			ID:   "R1",
			Dims: map[string]float64{"thickness_min": 2, "thickness_max": 4, "length_min": 1000},
			Cats: map[string]string{"coating": " zinc "},
		}},
		{RFQRecord: RFQRecord{
			ID:   "R2",
			Dims: map[string]float64{"thickness_min": 3},
		}},
		{RFQRecord: RFQRecord{ID: "R3"}},
	}

	e := NewFeatureEngineer(Config{}, discardLogger())
	fs := e.Engineer(records, schema)
	require.Len(t, fs.Vectors, 3)

	r1 := fs.Vectors[0]
	assert.Equal(t, Interval{Min: 2, Max: 4, Center: 3, Width: 2}, r1.Intervals["thickness"])
	// Length carries only a lower bound; it degrades to a point interval.
	assert.Equal(t, Interval{Min: 1000, Max: 1000, Center: 1000, Width: 0}, r1.Intervals["length"])
	assert.Equal(t, "ZINC", r1.Cats["coating"])

	// Missing upper bound falls back to the lower bound.
	r2 := fs.Vectors[1]
	assert.Equal(t, Interval{Min: 3, Max: 3, Center: 3, Width: 0}, r2.Intervals["thickness"])
	assert.Equal(t, UnknownCategory, r2.Cats["coating"])

	// No dimension data at all: no intervals.
	r3 := fs.Vectors[2]
	assert.Empty(t, r3.Intervals)
	assert.Equal(t, UnknownCategory, r3.Cats["coating"])

	assert.Equal(t, []string{"thickness", "length"}, fs.DimFeatures)
	assert.Equal(t, []string{"coating"}, fs.CatFeatures)
}

func TestEngineerCoverageFilter(t *testing.T) {
	const carbon = "Carbon (C)"
	const boron = "Boron (B)"

	// 20 records with a reference; carbon is parsed on 10 of them (50%),
	// boron on just 1 (5%).
	records := make([]EnrichedRecord, 20)
	for i := range records {
		records[i].ID = "R"
		records[i].HasRef = true
		records[i].Ranges = map[string]Range{}
		if i < 10 {
			records[i].Ranges[carbon] = Range{Mid: fptr(0.1 + float64(i)/100)}
		}
	}
	records[0].Ranges[boron] = Range{Mid: fptr(0.003)}

	e := NewFeatureEngineer(Config{}, discardLogger())
	fs := e.Engineer(records, map[string]bool{})

	assert.Contains(t, fs.MidFeatures, carbon)
	assert.NotContains(t, fs.MidFeatures, boron)

	// The dropped feature must not leak into any vector.
	for _, fv := range fs.Vectors {
		assert.NotContains(t, fv.Mids, boron)
	}
	assert.InDelta(t, 0.1, fs.Vectors[0].Mids[carbon], 1e-9)
}

func TestEngineerCoverageBoundary(t *testing.T) {
	const carbon = "Carbon (C)"

	// Exactly 10% coverage is kept.
	records := make([]EnrichedRecord, 10)
	for i := range records {
		records[i].HasRef = true
	}
	records[0].Ranges = map[string]Range{carbon: {Mid: fptr(0.2)}}

	e := NewFeatureEngineer(Config{}, discardLogger())
	fs := e.Engineer(records, map[string]bool{})
	assert.Contains(t, fs.MidFeatures, carbon)
}

func TestEngineerNoReferenceRecords(t *testing.T) {
	records := []EnrichedRecord{
		{RFQRecord: RFQRecord{ID: "R1"}, Ranges: map[string]Range{"Carbon (C)": {Mid: fptr(0.1)}}},
	}
	e := NewFeatureEngineer(Config{}, discardLogger())
	fs := e.Engineer(records, map[string]bool{})
	assert.Empty(t, fs.MidFeatures, "without any referenced record coverage is zero")
}
