package rfq

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

var dxFamilyPattern = regexp.MustCompile(`^DX\d{2}$`)

// CleanGrade normalizes a raw grade identifier into its comparison key.
// The second return value is false for empty input.
//
// Cleaning: uppercase and trim, strip delivery condition suffixes beginning
// at the first '+' (e.g. "+N", "+QT"), drop spaces and dashes, and expand
// the bare DX family alias (DX51 -> DX51D).
func CleanGrade(raw string) (string, bool) {
	grade := strings.ToUpper(NormalizeText(raw))
	if grade == "" {
		return "", false
	}
	if i := strings.Index(grade, "+"); i >= 0 {
		grade = grade[:i]
	}
	grade = strings.ReplaceAll(grade, " ", "")
	grade = strings.ReplaceAll(grade, "-", "")
	if dxFamilyPattern.MatchString(grade) {
		grade += "D"
	}
	if grade == "" {
		return "", false
	}
	return grade, true
}

// gradeMatcher is one strategy for resolving an RFQ grade key against the
// reference key set. Strategies are evaluated in fixed priority order.
type gradeMatcher interface {
	match(key string, refKeys []string) (string, bool)
}

type exactMatcher struct{}

func (exactMatcher) match(key string, refKeys []string) (string, bool) {
	for _, ref := range refKeys {
		if ref == key {
			return ref, true
		}
	}
	return "", false
}

// fuzzyMatcher picks the closest reference key by normalized edit distance
// and accepts it only above the configured threshold.
type fuzzyMatcher struct {
	threshold float64
	metric    *metrics.Levenshtein
}

func newFuzzyMatcher(threshold float64) fuzzyMatcher {
	return fuzzyMatcher{threshold: threshold, metric: metrics.NewLevenshtein()}
}

func (m fuzzyMatcher) match(key string, refKeys []string) (string, bool) {
	best := ""
	bestScore := 0.0
	for _, ref := range refKeys {
		score := strutil.Similarity(key, ref, m.metric)
		if score > bestScore {
			bestScore = score
			best = ref
		}
	}
	if best != "" && bestScore >= m.threshold {
		return best, true
	}
	return "", false
}

// substringMatcher accepts the first reference key containing, or contained
// in, the RFQ key. Short keys are rejected outright to guard against
// trivial false positives.
type substringMatcher struct {
	minLen int
}

func (m substringMatcher) match(key string, refKeys []string) (string, bool) {
	if len(key) < m.minLen {
		return "", false
	}
	for _, ref := range refKeys {
		if strings.Contains(ref, key) || strings.Contains(key, ref) {
			return ref, true
		}
	}
	return "", false
}

// GradeNormalizer cleans grade identifiers and joins RFQ records with their
// reference material via an exact -> fuzzy -> substring mapping.
type GradeNormalizer struct {
	matchers []gradeMatcher
	logger   *slog.Logger
}

// NewGradeNormalizer constructs a normalizer with the standard strategy order.
func NewGradeNormalizer(cfg Config, logger *slog.Logger) *GradeNormalizer {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &GradeNormalizer{
		matchers: []gradeMatcher{
			exactMatcher{},
			newFuzzyMatcher(cfg.FuzzyThreshold),
			substringMatcher{minLen: cfg.MinSubstringLen},
		},
		logger: logger,
	}
}

// Normalize cleans both grade sets, deduplicates the reference table, builds
// the grade mapping and left-joins the reference properties onto the RFQ
// records. The enriched slice always has exactly one entry per RFQ record.
func (n *GradeNormalizer) Normalize(rfqs Table, refs []ReferenceMaterial) ([]EnrichedRecord, GradeMapping) {
	refByKey, refKeys := DeduplicateReference(refs)

	rfqKeySet := make(map[string]struct{})
	for _, rec := range rfqs.Records {
		if key, ok := CleanGrade(rec.Grade); ok {
			rfqKeySet[key] = struct{}{}
		}
	}

	common := 0
	for key := range rfqKeySet {
		if _, ok := refByKey[key]; ok {
			common++
		}
	}
	n.logger.Info("grade analysis",
		"rfq_grades", len(rfqKeySet),
		"reference_grades", len(refKeys),
		"common", common,
		"rfq_missing_in_reference", len(rfqKeySet)-common)

	mapping := n.buildMapping(rfqKeySet, refKeys)

	enriched := make([]EnrichedRecord, 0, len(rfqs.Records))
	matched := 0
	for _, rec := range rfqs.Records {
		out := EnrichedRecord{RFQRecord: rec}
		if key, ok := CleanGrade(rec.Grade); ok {
			out.GradeKey = key
			if refKey, ok := mapping[key]; ok {
				ref := refByKey[refKey]
				out.RefGrade = refKey
				out.HasRef = true
				out.Props = ref.Props
				matched++
			}
		}
		enriched = append(enriched, out)
	}
	n.logger.Info("reference join",
		"rfq_records", len(rfqs.Records),
		"with_reference", matched,
		"without_reference", len(rfqs.Records)-matched)
	return enriched, mapping
}

// buildMapping resolves every distinct RFQ grade key with the first strategy
// that produces a match. Keys are scanned in sorted order so repeated runs
// produce identical mappings.
func (n *GradeNormalizer) buildMapping(rfqKeys map[string]struct{}, refKeys []string) GradeMapping {
	keys := make([]string, 0, len(rfqKeys))
	for key := range rfqKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	mapping := make(GradeMapping, len(keys))
	for _, key := range keys {
		for _, m := range n.matchers {
			if ref, ok := m.match(key, refKeys); ok {
				mapping[key] = ref
				break
			}
		}
	}
	n.logger.Info("grade mapping built", "mapped", len(mapping), "rfq_grades", len(keys))
	return mapping
}

// DeduplicateReference collapses reference rows that normalize to the same
// grade key. The retained row is the first whose original name, stripped of
// spaces and dashes and uppercased, equals the key exactly; failing that,
// the one with the shortest original name. Rows without a usable grade are
// dropped. The returned key slice is sorted.
func DeduplicateReference(refs []ReferenceMaterial) (map[string]ReferenceMaterial, []string) {
	groups := make(map[string][]ReferenceMaterial)
	for _, ref := range refs {
		key, ok := CleanGrade(ref.Grade)
		if !ok {
			continue
		}
		groups[key] = append(groups[key], ref)
	}

	out := make(map[string]ReferenceMaterial, len(groups))
	keys := make([]string, 0, len(groups))
	for key, group := range groups {
		out[key] = selectBestReference(key, group)
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return out, keys
}

func selectBestReference(key string, group []ReferenceMaterial) ReferenceMaterial {
	if len(group) == 1 {
		return group[0]
	}
	for _, ref := range group {
		stripped := strings.ToUpper(ref.Grade)
		stripped = strings.ReplaceAll(stripped, " ", "")
		stripped = strings.ReplaceAll(stripped, "-", "")
		if stripped == key {
			return ref
		}
	}
	best := group[0]
	for _, ref := range group[1:] {
		if len(ref.Grade) < len(best.Grade) {
			best = ref
		}
	}
	return best
}
