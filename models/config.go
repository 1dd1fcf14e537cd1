// Package models defines data structures for configuration, conversion and classification.
package models

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate when a threshold is out of range.
var ErrInvalidConfig = errors.New("invalid config")

// DefaultPlaceholderWords are tokens that fill a cell without saying anything.
var DefaultPlaceholderWords = []string{
	"draft", "tbd", "tba", "yes", "no", "none", "n/a", "na", "todo", "pending",
	"ok", "done", "wip", "placeholder", "example", "sample", "test", "tmp", "temp",
	"xxx", "yyy", "zzz", "abc", "status",
	"high", "low", "medium", "medium-high", "medium-low", "high-medium", "low-medium",
	"high-low", "low-high",
}

// DefaultDecorationMacros are box macros whose body is kept and whose frame is discarded.
var DefaultDecorationMacros = []string{"info", "note", "tip", "warning", "success", "error"}

// Config holds the thresholds and word lists used by conversion and classification.
// A Config is treated as immutable once it has been passed to a constructor.
type Config struct {
	OutsideWordThreshold    int `yaml:"outside_word_threshold"`
	MeaningfulWordThreshold int `yaml:"meaningful_word_threshold"`
	RichCellWords           int `yaml:"rich_cell_words"`

	PlaceholderWords []string `yaml:"placeholder_words"`
	DecorationMacros []string `yaml:"decoration_macros"`

	MacroParamPreview int `yaml:"macro_param_preview"`
	MacroValueMax     int `yaml:"macro_value_max"`
	MacroBodyPreview  int `yaml:"macro_body_preview"`

	Workers  int    `yaml:"workers"`
	CacheDir string `yaml:"cache_dir"`
	CacheTTL string `yaml:"cache_ttl"`
}

// DefaultConfig returns the canonical threshold set.
func DefaultConfig() Config {
	return Config{
		OutsideWordThreshold:    30,
		MeaningfulWordThreshold: 3,
		RichCellWords:           5,
		PlaceholderWords:        append([]string(nil), DefaultPlaceholderWords...),
		DecorationMacros:        append([]string(nil), DefaultDecorationMacros...),
		MacroParamPreview:       3,
		MacroValueMax:           80,
		MacroBodyPreview:        60,
		Workers:                 4,
		CacheDir:                ".wiki-triage-cache",
		CacheTTL:                "24h",
	}
}

// LoadConfig reads a YAML file and overlays it on DefaultConfig.
// Unknown keys are rejected so typos don't silently fall back to defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that every threshold is usable.
func (c Config) Validate() error {
	switch {
	case c.OutsideWordThreshold <= 0:
		return fmt.Errorf("%w: outside_word_threshold must be positive", ErrInvalidConfig)
	case c.MeaningfulWordThreshold <= 0:
		return fmt.Errorf("%w: meaningful_word_threshold must be positive", ErrInvalidConfig)
	case c.RichCellWords <= 0:
		return fmt.Errorf("%w: rich_cell_words must be positive", ErrInvalidConfig)
	case c.MacroParamPreview < 0 || c.MacroValueMax < 0 || c.MacroBodyPreview < 0:
		return fmt.Errorf("%w: macro preview limits must not be negative", ErrInvalidConfig)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	if _, err := c.TTL(); err != nil {
		return fmt.Errorf("%w: cache_ttl: %v", ErrInvalidConfig, err)
	}
	return nil
}

// TTL parses CacheTTL. An empty value disables expiry.
func (c Config) TTL() (time.Duration, error) {
	if c.CacheTTL == "" {
		return 0, nil
	}
	return time.ParseDuration(c.CacheTTL)
}
