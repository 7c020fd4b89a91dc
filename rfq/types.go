package rfq

// RFQRecord is one request-for-quote line item. Numeric and categorical
// cells that were empty in the source are simply absent from the maps, so
// map presence doubles as a null check.
type RFQRecord struct {
	ID    string
	Grade string
	Dims  map[string]float64
	Cats  map[string]string
}

// Table wraps parsed RFQ records together with the set of columns the source
// header actually carried. Schema presence is distinct from per-record
// nullness: a column can exist while being empty for most rows.
type Table struct {
	Records []RFQRecord
	Columns map[string]bool
}

// HasColumn reports whether the source header contained the given column.
func (t Table) HasColumn(name string) bool {
	return t.Columns[name]
}

// ReferenceMaterial is one row of the material grade reference table.
// Props holds the raw range text per property column (e.g. "≤0.17").
type ReferenceMaterial struct {
	Grade string
	Props map[string]string
}

// GradeMapping maps a normalized RFQ grade key to a normalized reference
// grade key. Built once per run, immutable afterwards; every RFQ key maps
// to at most one reference key.
type GradeMapping map[string]string

// Range is a parsed numeric property range. Nil components could not be
// derived from the source text.
type Range struct {
	Min *float64
	Max *float64
	Mid *float64
}

// EnrichedRecord is an RFQRecord left-joined with its mapped reference
// material. A record without a mapping keeps empty RefGrade, nil Props and
// nil Ranges; it still participates in the pipeline.
type EnrichedRecord struct {
	RFQRecord
	GradeKey string
	RefGrade string
	HasRef   bool
	Props    map[string]string
	Ranges   map[string]Range
}

// Interval is a derived dimension interval. A missing upper bound in the
// source degrades to a point interval (Max == Min, Width == 0).
type Interval struct {
	Min    float64
	Max    float64
	Center float64
	Width  float64
}

// FeatureVector holds the comparison-ready features of one record.
type FeatureVector struct {
	ID        string
	Grade     string
	Intervals map[string]Interval
	Cats      map[string]string
	Mids      map[string]float64
}

// FeatureSet is the output of feature engineering: one vector per enriched
// record plus the run-wide feature lists the engine iterates. The lists are
// an explicit value rather than something rediscovered per pair, so the
// coverage decision is made exactly once.
type FeatureSet struct {
	Vectors     []FeatureVector
	DimFeatures []string
	CatFeatures []string
	MidFeatures []string
}

// Match is one ranked similarity result.
type Match struct {
	RFQID     string
	MatchID   string
	Score     float64
	DimScore  float64
	CatScore  float64
	PropScore float64
}
