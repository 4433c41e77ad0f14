// Package config defines generator configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config holding every default.
// - Load layers a YAML (or JSON) file and MARKERGEN_* env vars on top.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// BaseURL is the report API root, e.g. "https://cn.fflogs.com/v1".
	BaseURL string `koanf:"base_url"`

	// APIKey is the public API key sent with every request.
	APIKey string `koanf:"api_key"`

	// ReportID is the report code and FightID the pull inside it.
	ReportID string `koanf:"report_id"`
	FightID  int    `koanf:"fight_id"`

	// OutputFile receives the combined marker document.
	OutputFile string `koanf:"output_file"`

	// MetricsFile, when set, receives a Prometheus textfile after the run.
	MetricsFile string `koanf:"metrics_file"`

	// RequestTimeout bounds each report API request.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// CastNames and DamageNames are the ability allow-lists per stream.
	CastNames   []string `koanf:"cast_names"`
	DamageNames []string `koanf:"damage_names"`

	// Translations maps ability names to marker labels.
	Translations map[string]string `koanf:"translations"`

	// Packing and dedup windows, in milliseconds.
	MinGapMS           int64 `koanf:"min_gap_ms"`
	CastIgnoreWindowMS int64 `koanf:"cast_ignore_window_ms"`
	EchoWindowMS       int64 `koanf:"echo_window_ms"`
	SplashWindowMS     int64 `koanf:"splash_window_ms"`

	// Labels of the untargetable track markers.
	NotTargetableLabel string `koanf:"not_targetable_label"`
	TargetableLabel    string `koanf:"targetable_label"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		BaseURL:            "https://cn.fflogs.com/v1",
		OutputFile:         "output.txt",
		RequestTimeout:     30 * time.Second,
		CastNames:          []string{},
		DamageNames:        []string{},
		Translations:       map[string]string{},
		MinGapMS:           5000,
		CastIgnoreWindowMS: 100,
		EchoWindowMS:       1000,
		SplashWindowMS:     1000,
		NotTargetableLabel: "not targetable",
		TargetableLabel:    "targetable",
	}
}

// Validate checks the fields a run cannot do without. Load only checks the
// fields that have defaults, so flags can still fill these in afterwards.
func (c *Config) Validate() error {
	switch {
	case c.APIKey == "":
		return fmt.Errorf("%w: api_key must not be empty", ErrInvalidConfig)
	case c.ReportID == "":
		return fmt.Errorf("%w: report_id must not be empty", ErrInvalidConfig)
	case c.FightID < 0:
		return fmt.Errorf("%w: fight_id must not be negative", ErrInvalidConfig)
	}
	return nil
}
