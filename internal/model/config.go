package model

import "runtime"

// Config holds all application configuration.
type Config struct {
	Framebook   FramebookConfig   `yaml:"framebook" mapstructure:"framebook"`
	Analysis    AnalysisConfig    `yaml:"analysis" mapstructure:"analysis"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// FramebookConfig locates the pattern configuration.
type FramebookConfig struct {
	Path    string `yaml:"path" mapstructure:"path"`
	Overlay string `yaml:"overlay" mapstructure:"overlay"` // optional project overlay
}

// AnalysisConfig holds engine settings.
type AnalysisConfig struct {
	Language string `yaml:"language" mapstructure:"language"` // default language code
	TopN     int    `yaml:"top_n" mapstructure:"top_n"`       // ranked-list cutoff
}

// ConcurrencyConfig holds batch settings.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// CacheConfig controls the per-document report cache.
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir      string `yaml:"dir" mapstructure:"dir"` // disk layer location, empty disables it
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Framebook: FramebookConfig{
			Path: "framebook.yaml",
		},
		Analysis: AnalysisConfig{
			Language: "en",
			TopN:     5,
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		Cache: CacheConfig{
			Enabled:  true,
			TTLHours: 24,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
