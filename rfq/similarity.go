package rfq

import (
	"log/slog"
	"math"
	"sort"
)

// OverlapFunc scores two numeric intervals, 0..1.
type OverlapFunc func(min1, max1, min2, max2 float64) float64

// MatchFunc scores two categorical values, 0 or 1.
type MatchFunc func(v1, v2 string) float64

// Engine computes pairwise weighted similarity across all valid records and
// extracts the top-K ranked matches per record. The two scoring primitives
// are plain dependencies passed in at construction, not state attached to
// the data.
type Engine struct {
	cfg     Config
	overlap OverlapFunc
	match   MatchFunc
	logger  *slog.Logger
}

// NewEngine constructs an engine. Nil primitives fall back to
// IntervalOverlapRatio and CategoricalMatch.
func NewEngine(cfg Config, overlap OverlapFunc, match MatchFunc, logger *slog.Logger) *Engine {
	cfg.ApplyDefaults()
	if overlap == nil {
		overlap = IntervalOverlapRatio
	}
	if match == nil {
		match = CategoricalMatch
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, overlap: overlap, match: match, logger: logger}
}

// Rank scores every ordered pair of distinct valid records and returns, per
// source record, its top-K matches sorted by descending aggregate score.
// Ties keep scan order. Records with an empty or duplicated identifier are
// excluded from scoring entirely.
func (e *Engine) Rank(fs FeatureSet) []Match {
	valid := e.validVectors(fs.Vectors)
	ranges := propertyRanges(fs.Vectors, fs.MidFeatures)

	e.logger.Info("scoring pairwise similarity",
		"records", len(valid),
		"dimension_features", len(fs.DimFeatures),
		"categorical_features", len(fs.CatFeatures),
		"property_features", len(fs.MidFeatures))

	var results []Match
	for i := range valid {
		var candidates []Match
		for j := range valid {
			if i == j {
				continue
			}
			if isExactDuplicate(valid[i], valid[j]) {
				continue
			}
			dim := e.dimensionSimilarity(valid[i], valid[j], fs.DimFeatures)
			cat := e.categoricalSimilarity(valid[i], valid[j], fs.CatFeatures)
			prop := e.propertySimilarity(valid[i], valid[j], fs.MidFeatures, ranges)
			candidates = append(candidates, Match{
				RFQID:     valid[i].ID,
				MatchID:   valid[j].ID,
				Score:     e.cfg.Weights.Dimensions*dim + e.cfg.Weights.Categorical*cat + e.cfg.Weights.Properties*prop,
				DimScore:  dim,
				CatScore:  cat,
				PropScore: prop,
			})
		}
		sort.SliceStable(candidates, func(a, b int) bool {
			return candidates[a].Score > candidates[b].Score
		})
		if len(candidates) > e.cfg.TopK {
			candidates = candidates[:e.cfg.TopK]
		}
		results = append(results, candidates...)
	}

	e.logSummary(results)
	return results
}

// validVectors filters out records without a usable identity. The first
// occurrence of a duplicated id wins; later ones are dropped.
func (e *Engine) validVectors(vectors []FeatureVector) []FeatureVector {
	seen := make(map[string]struct{}, len(vectors))
	out := make([]FeatureVector, 0, len(vectors))
	for _, fv := range vectors {
		if fv.ID == "" {
			continue
		}
		if _, dup := seen[fv.ID]; dup {
			e.logger.Warn("dropping record with duplicate id", "id", fv.ID)
			continue
		}
		seen[fv.ID] = struct{}{}
		out = append(out, fv)
	}
	return out
}

// isExactDuplicate implements the duplicate-skip rule: same raw grade plus
// identical thickness and width centers. The rule intentionally looks at
// those two dimensions only.
func isExactDuplicate(a, b FeatureVector) bool {
	if a.Grade == "" || a.Grade != b.Grade {
		return false
	}
	return centersEqual(a, b, "thickness") && centersEqual(a, b, "width")
}

func centersEqual(a, b FeatureVector, feature string) bool {
	ia, okA := a.Intervals[feature]
	ib, okB := b.Intervals[feature]
	if !okA || !okB {
		return false
	}
	return ia.Center == ib.Center
}

func (e *Engine) dimensionSimilarity(a, b FeatureVector, features []string) float64 {
	if len(features) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, name := range features {
		ia, okA := a.Intervals[name]
		ib, okB := b.Intervals[name]
		if !okA || !okB {
			continue
		}
		sum += e.overlap(ia.Min, ia.Max, ib.Min, ib.Max)
	}
	return sum / float64(len(features))
}

func (e *Engine) categoricalSimilarity(a, b FeatureVector, features []string) float64 {
	if len(features) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, name := range features {
		sum += e.match(a.Cats[name], b.Cats[name])
	}
	return sum / float64(len(features))
}

// propertySimilarity averages 1 - |diff| / globalRange over the midpoint
// features present in both records. A feature whose global range is zero is
// inapplicable for the pair rather than a division by zero.
func (e *Engine) propertySimilarity(a, b FeatureVector, features []string, ranges map[string]float64) float64 {
	sum := 0.0
	n := 0
	for _, name := range features {
		va, okA := a.Mids[name]
		vb, okB := b.Mids[name]
		if !okA || !okB {
			continue
		}
		span := ranges[name]
		if span <= 0 {
			continue
		}
		sim := 1 - math.Abs(va-vb)/span
		if sim < 0 {
			sim = 0
		}
		sum += sim
		n++
	}
	if n == 0 {
		return 0.0
	}
	return sum / float64(n)
}

// propertyRanges computes the global (max - min) span per midpoint feature
// across all records, valid or not, once up front.
func propertyRanges(vectors []FeatureVector, features []string) map[string]float64 {
	out := make(map[string]float64, len(features))
	for _, name := range features {
		min := math.Inf(1)
		max := math.Inf(-1)
		found := false
		for _, fv := range vectors {
			v, ok := fv.Mids[name]
			if !ok {
				continue
			}
			found = true
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		if found {
			out[name] = max - min
		}
	}
	return out
}

func (e *Engine) logSummary(results []Match) {
	if len(results) == 0 {
		e.logger.Info("similarity scoring produced no pairs")
		return
	}
	sum := 0.0
	max := 0.0
	for _, m := range results {
		sum += m.Score
		if m.Score > max {
			max = m.Score
		}
	}
	e.logger.Info("similarity scoring complete",
		"pairs", len(results),
		"avg_score", sum/float64(len(results)),
		"max_score", max)
}
