package rfq

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfigFile = "config.json"

// Weights are the fixed blend weights for the three similarity groups.
type Weights struct {
	Dimensions  float64 `json:"dimensions"`
	Categorical float64 `json:"categorical"`
	Properties  float64 `json:"properties"`
}

// Config aggregates runtime settings persisted to config.json.
type Config struct {
	TopK            int     `json:"topK"`
	Weights         Weights `json:"weights"`
	FuzzyThreshold  float64 `json:"fuzzyThreshold"`
	MinSubstringLen int     `json:"minSubstringLen"`
	MinCoverage     float64 `json:"minCoverage"`
}

// Clone creates a deep copy of the configuration so callers can mutate safely.
func (c Config) Clone() Config {
	buf, _ := json.Marshal(c)
	var out Config
	_ = json.Unmarshal(buf, &out)
	return out
}

// ApplyDefaults populates zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.TopK <= 0 {
		c.TopK = 3
	}
	if c.Weights.Dimensions == 0 && c.Weights.Categorical == 0 && c.Weights.Properties == 0 {
		c.Weights = Weights{Dimensions: 0.50, Categorical: 0.20, Properties: 0.30}
	}
	if c.FuzzyThreshold == 0 {
		c.FuzzyThreshold = 0.8
	}
	if c.MinSubstringLen == 0 {
		c.MinSubstringLen = 4
	}
	if c.MinCoverage == 0 {
		c.MinCoverage = 0.10
	}
}

// LoadConfig loads configuration from the given path or the default config.json.
// A missing file is not an error; defaults are returned instead.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = defaultConfigFile
	}
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// SaveConfig persists configuration to disk.
func SaveConfig(path string, cfg Config) error {
	if path == "" {
		path = defaultConfigFile
	}
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	cfg.ApplyDefaults()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
