package rfq

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, Weights{Dimensions: 0.50, Categorical: 0.20, Properties: 0.30}, cfg.Weights)
	assert.Equal(t, 0.8, cfg.FuzzyThreshold)
	assert.Equal(t, 4, cfg.MinSubstringLen)
	assert.Equal(t, 0.10, cfg.MinCoverage)
}

func TestConfigApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{TopK: 5, FuzzyThreshold: 0.9}
	cfg.ApplyDefaults()
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, 0.9, cfg.FuzzyThreshold)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.TopK)
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	in := Config{TopK: 5, FuzzyThreshold: 0.85, MinSubstringLen: 5, MinCoverage: 0.2}
	require.NoError(t, SaveConfig(path, in))

	out, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, out.TopK)
	assert.Equal(t, 0.85, out.FuzzyThreshold)
	assert.Equal(t, 5, out.MinSubstringLen)
	assert.Equal(t, 0.2, out.MinCoverage)
	assert.Equal(t, Weights{Dimensions: 0.50, Categorical: 0.20, Properties: 0.30}, out.Weights)
}

func TestConfigClone(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	clone := cfg.Clone()
	clone.TopK = 99
	assert.Equal(t, 3, cfg.TopK)
}
