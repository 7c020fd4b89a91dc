package rfq

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Service orchestrates one pipeline run: grade normalization, range
// parsing, feature engineering and similarity ranking. Each run consumes
// the two raw tables and produces value-only derived data; nothing is
// shared between runs except the configuration.
type Service struct {
	cfgMu sync.RWMutex
	cfg   Config

	logger *slog.Logger
}

// RunResult is everything one pipeline run produced. Matches is the ranked
// deliverable; the intermediate stages are exposed for reporting and tests.
type RunResult struct {
	RunID    string
	Mapping  GradeMapping
	Enriched []EnrichedRecord
	Features FeatureSet
	Matches  []Match
}

// NewService constructs a service with the given configuration.
func NewService(cfg Config, logger *slog.Logger) *Service {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cfg: cfg, logger: logger}
}

// Config returns a copy of the current configuration.
func (s *Service) Config() Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg.Clone()
}

// UpdateConfig replaces the configuration for subsequent runs.
func (s *Service) UpdateConfig(cfg Config) {
	cfg.ApplyDefaults()
	s.cfgMu.Lock()
	s.cfg = cfg
	s.cfgMu.Unlock()
}

// Run executes the full pipeline over the given tables. The only error
// path is context cancellation between stages; the matching and parsing
// conditions inside the stages are absorbed into null features.
func (s *Service) Run(ctx context.Context, rfqs Table, refs []ReferenceMaterial) (RunResult, error) {
	cfg := s.Config()
	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID)
	logger.Info("starting pipeline run", "rfq_records", len(rfqs.Records), "reference_rows", len(refs))

	result := RunResult{RunID: runID}

	normalizer := NewGradeNormalizer(cfg, logger)
	result.Enriched, result.Mapping = normalizer.Normalize(rfqs, refs)
	if err := ctx.Err(); err != nil {
		return result, err
	}

	ParseProperties(result.Enriched, logger)
	if err := ctx.Err(); err != nil {
		return result, err
	}

	engineer := NewFeatureEngineer(cfg, logger)
	result.Features = engineer.Engineer(result.Enriched, rfqs.Columns)
	if err := ctx.Err(); err != nil {
		return result, err
	}

	engine := NewEngine(cfg, IntervalOverlapRatio, CategoricalMatch, logger)
	result.Matches = engine.Rank(result.Features)

	logger.Info("pipeline run complete", "match_rows", len(result.Matches))
	return result, nil
}
