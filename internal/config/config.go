// Package config defines the engine configuration and loads it from a
// TOML file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// RankingConfig carries the numeric weights of the ranking model.
type RankingConfig struct {
	WFreq         float64 `toml:"w_freq"`
	MaxFreqBoost  float64 `toml:"max_freq_boost"`
	WRecency      float64 `toml:"w_recency"`
	RecencyLambda float64 `toml:"recency_lambda"`
	WSameDir      float64 `toml:"w_same_dir"`
	WParentDir    float64 `toml:"w_parent_dir"`
	WExt          float64 `toml:"w_ext"`
	WExtQuery     float64 `toml:"w_ext_query"`
	WExact        float64 `toml:"w_exact"`
	WPrefix       float64 `toml:"w_prefix"`
	WContains     float64 `toml:"w_contains"`
	WDir          float64 `toml:"w_dir"`

	// AutoRecordUsage controls whether Search automatically records
	// usage of its top result. Default true; set false to record usage
	// only through explicit RecordPathUsage calls.
	AutoRecordUsage bool `toml:"auto_record_usage"`
}

// DefaultRankingConfig returns the reference weights tuned for
// interactive path completion.
func DefaultRankingConfig() RankingConfig {
	return RankingConfig{
		WFreq:           0.05,
		MaxFreqBoost:    0.5,
		WRecency:        0.3,
		RecencyLambda:   0.01,
		WSameDir:        0.2,
		WParentDir:      0.1,
		WExt:            0.3,
		WExtQuery:       0.1,
		WExact:          0.6,
		WPrefix:         0.4,
		WContains:       0.2,
		WDir:            0.1,
		AutoRecordUsage: true,
	}
}

// EngineConfig holds every tunable the engine recognizes.
type EngineConfig struct {
	MaxResults           int           `toml:"max_results"`
	CacheSize            int           `toml:"cache_size"`
	CacheTTL             time.Duration `toml:"cache_ttl"`
	PreferredExtensions  []string      `toml:"preferred_extensions"`
	ExcludedPatterns     []string      `toml:"excluded_patterns"`
	Ranking              RankingConfig `toml:"ranking"`
	CurrentDirectory     string        `toml:"current_directory"`
	Enabled              bool          `toml:"enabled"`
	CacheJanitorInterval time.Duration `toml:"cache_janitor_interval"`
	WatchDebounce        time.Duration `toml:"watch_debounce"`
}

// DefaultEngineConfig returns sane defaults for an interactive path
// autocomplete engine.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxResults:           20,
		CacheSize:            256,
		CacheTTL:             5 * time.Second,
		PreferredExtensions:  nil,
		ExcludedPatterns:     []string{"node_modules", ".git"},
		Ranking:              DefaultRankingConfig(),
		Enabled:              true,
		CacheJanitorInterval: 0,
		WatchDebounce:        150 * time.Millisecond,
	}
}

// Load reads and parses an EngineConfig from a TOML file at path,
// starting from DefaultEngineConfig and overlaying whatever fields the
// file sets.
func Load(path string) (EngineConfig, error) {
	cfg := DefaultEngineConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
