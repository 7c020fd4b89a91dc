package rfq

import (
	"log/slog"
	"math"
	"strings"
)

// UnknownCategory is the fill value for missing categorical attributes.
const UnknownCategory = "UNKNOWN"

// IntervalOverlapRatio returns the Jaccard-style overlap of two numeric
// ranges: overlap length divided by union length. NaN inputs score 0, and
// so does a zero-width union — two identical point intervals deliberately
// count as non-overlapping rather than fully matching.
func IntervalOverlapRatio(min1, max1, min2, max2 float64) float64 {
	if math.IsNaN(min1) || math.IsNaN(max1) || math.IsNaN(min2) || math.IsNaN(max2) {
		return 0.0
	}
	if min1 > max1 {
		min1, max1 = max1, min1
	}
	if min2 > max2 {
		min2, max2 = max2, min2
	}
	overlap := math.Min(max1, max2) - math.Max(min1, min2)
	if overlap < 0 {
		overlap = 0
	}
	union := math.Max(max1, max2) - math.Min(min1, min2)
	if union <= 0 {
		return 0.0
	}
	return overlap / union
}

// CategoricalMatch returns 1 when both values are present and exactly
// equal, otherwise 0.
func CategoricalMatch(v1, v2 string) float64 {
	if v1 == "" || v2 == "" {
		return 0.0
	}
	if v1 == v2 {
		return 1.0
	}
	return 0.0
}

// FeatureEngineer derives the comparison-ready features from enriched
// records: dimension intervals, standardized categoricals and the
// coverage-filtered property midpoints.
type FeatureEngineer struct {
	cfg    Config
	logger *slog.Logger
}

// NewFeatureEngineer constructs an engineer for the given configuration.
func NewFeatureEngineer(cfg Config, logger *slog.Logger) *FeatureEngineer {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &FeatureEngineer{cfg: cfg, logger: logger}
}

// Engineer builds one feature vector per record and decides the run-wide
// feature lists. The schema set controls which dimension and categorical
// columns exist at all; per-record nullness is handled inside.
func (e *FeatureEngineer) Engineer(records []EnrichedRecord, schema map[string]bool) FeatureSet {
	fs := FeatureSet{Vectors: make([]FeatureVector, 0, len(records))}

	pairs := presentDimensionPairs(schema)
	catCols := presentCategoricalColumns(schema)
	for _, name := range engineDimensionFeatures() {
		for _, p := range pairs {
			if p.Name == name {
				fs.DimFeatures = append(fs.DimFeatures, name)
				break
			}
		}
	}
	fs.CatFeatures = catCols
	fs.MidFeatures = e.selectMidFeatures(records)

	for _, rec := range records {
		fv := FeatureVector{
			ID:        rec.ID,
			Grade:     rec.Grade,
			Intervals: make(map[string]Interval, len(pairs)),
			Cats:      make(map[string]string, len(catCols)),
			Mids:      make(map[string]float64, len(fs.MidFeatures)),
		}
		for _, p := range pairs {
			min, ok := rec.Dims[p.MinCol]
			if !ok {
				continue
			}
			max, ok := rec.Dims[p.MaxCol]
			if !ok {
				max = min
			}
			fv.Intervals[p.Name] = Interval{
				Min:    min,
				Max:    max,
				Center: (min + max) / 2,
				Width:  max - min,
			}
		}
		for _, col := range catCols {
			value, ok := rec.Cats[col]
			if !ok {
				fv.Cats[col] = UnknownCategory
				continue
			}
			fv.Cats[col] = strings.ToUpper(strings.TrimSpace(value))
		}
		for _, prop := range fs.MidFeatures {
			if rng, ok := rec.Ranges[prop]; ok && rng.Mid != nil {
				fv.Mids[prop] = *rng.Mid
			}
		}
		fs.Vectors = append(fs.Vectors, fv)
	}

	e.logger.Info("engineered features",
		"records", len(fs.Vectors),
		"interval_features", len(pairs),
		"categorical_features", len(fs.CatFeatures),
		"property_features", len(fs.MidFeatures))
	return fs
}

// selectMidFeatures applies the global coverage filter: a property midpoint
// survives only when it is populated for at least the configured share of
// records that have any grade reference at all. This is a run-wide decision,
// not a per-record one.
func (e *FeatureEngineer) selectMidFeatures(records []EnrichedRecord) []string {
	totalWithRef := 0
	for _, rec := range records {
		if rec.HasRef {
			totalWithRef++
		}
	}

	var kept []string
	for _, prop := range PropertyColumns() {
		nonNull := 0
		for _, rec := range records {
			if rng, ok := rec.Ranges[prop]; ok && rng.Mid != nil {
				nonNull++
			}
		}
		if nonNull == 0 {
			continue
		}
		coverage := 0.0
		if totalWithRef > 0 {
			coverage = float64(nonNull) / float64(totalWithRef)
		}
		if coverage >= e.cfg.MinCoverage {
			kept = append(kept, prop)
			e.logger.Info("property feature kept", "property", prop, "coverage", coverage)
		} else {
			e.logger.Info("property feature dropped", "property", prop, "coverage", coverage)
		}
	}
	return kept
}

func presentDimensionPairs(schema map[string]bool) []dimensionPair {
	var out []dimensionPair
	for _, p := range dimensionPairs() {
		if schema[p.MinCol] && schema[p.MaxCol] {
			out = append(out, p)
		}
	}
	return out
}

func presentCategoricalColumns(schema map[string]bool) []string {
	var out []string
	for _, col := range CategoricalColumns() {
		if schema[col] {
			out = append(out, col)
		}
	}
	return out
}
