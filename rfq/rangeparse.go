package rfq

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

var (
	unitPattern   = regexp.MustCompile(`[A-Za-z%°]`)
	spacePattern  = regexp.MustCompile(`\s+`)
	numberPattern = regexp.MustCompile(`[\d.]+`)
)

// ParseRange converts a free-text property range into numeric bounds.
//
// Recognized shapes, in priority order:
//
//	"≤0.17"       -> (nil, 0.17, 0.085)
//	"≥235 MPa"    -> (235, nil, nil)
//	"360-510 MPa" -> (360, 510, 435)
//	"0.17"        -> (nil, nil, 0.17)
//
// An upper-bound constraint is treated as implicitly anchored at zero, which
// is why its midpoint is half the bound; a lower-bound constraint gets no
// midpoint at all. Anything unparseable yields the zero Range.
func ParseRange(text string) Range {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return Range{}
	}
	clean := unitPattern.ReplaceAllString(raw, "")
	clean = strings.TrimSpace(spacePattern.ReplaceAllString(clean, " "))
	tokens := numberPattern.FindAllString(clean, -1)

	switch {
	case strings.Contains(raw, "≤") || strings.Contains(raw, "<="):
		max, ok := firstNumber(tokens)
		if !ok {
			return Range{}
		}
		mid := max / 2
		return Range{Max: &max, Mid: &mid}

	case strings.Contains(raw, "≥") || strings.Contains(raw, ">="):
		min, ok := firstNumber(tokens)
		if !ok {
			return Range{}
		}
		return Range{Min: &min}

	case strings.Contains(clean, "-") || strings.Contains(clean, "–"):
		// A hyphen with fewer than two numbers is not demoted to the
		// single-number shape; it stays unparsed.
		if len(tokens) < 2 {
			return Range{}
		}
		min, okMin := parseNumber(tokens[0])
		max, okMax := parseNumber(tokens[1])
		if !okMin || !okMax {
			return Range{}
		}
		mid := (min + max) / 2
		return Range{Min: &min, Max: &max, Mid: &mid}

	default:
		mid, ok := firstNumber(tokens)
		if !ok {
			return Range{}
		}
		return Range{Mid: &mid}
	}
}

func firstNumber(tokens []string) (float64, bool) {
	if len(tokens) == 0 {
		return 0, false
	}
	return parseNumber(tokens[0])
}

func parseNumber(token string) (float64, bool) {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseProperties parses every configured reference property column on the
// enriched records in place and logs the per-property success rate. Parse
// failures are absorbed: the affected property is simply absent for that
// record.
func ParseProperties(records []EnrichedRecord, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, prop := range PropertyColumns() {
		available := 0
		parsed := 0
		for i := range records {
			raw, ok := records[i].Props[prop]
			if !ok || strings.TrimSpace(raw) == "" {
				continue
			}
			available++
			rng := ParseRange(raw)
			if rng.Min == nil && rng.Max == nil && rng.Mid == nil {
				continue
			}
			if records[i].Ranges == nil {
				records[i].Ranges = make(map[string]Range)
			}
			records[i].Ranges[prop] = rng
			if rng.Mid != nil {
				parsed++
			}
		}
		if available > 0 {
			logger.Info("parsed property ranges", "property", prop, "parsed", parsed, "available", available)
		}
	}
}
