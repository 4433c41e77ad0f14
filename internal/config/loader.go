package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	EnvPrefix     = "MARKERGEN_"
	EnvConfigPath = EnvPrefix + "CONFIG"
)

// listKeys are the settings read from env as comma separated lists.
var listKeys = map[string]struct{}{
	"cast_names":   {},
	"damage_names": {},
}

func splitList(value string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// legacyKeys maps the upper-case keys of config.txt files written for the
// earlier script to the current keys.
var legacyKeys = map[string]string{
	"CAST_NAME_LIST":   "cast_names",
	"DAMAGE_NAME_LIST": "damage_names",
	"CONVERT_DIC":      "translations",
	"LOGS_ID":          "report_id",
	"FIGHT_ID":         "fight_id",
	"API_KEY":          "api_key",
	"FILE_NAME":        "output_file",
}

// loadFile parses path and merges it into k, renaming legacy keys. A current
// key wins over its legacy spelling when a file carries both.
func loadFile(k *koanf.Koanf, path string) error {
	fk := koanf.New(".")
	if err := fk.Load(file.Provider(path), yaml.Parser()); err != nil {
		return err
	}
	for legacy, key := range legacyKeys {
		if !fk.Exists(legacy) {
			continue
		}
		if !fk.Exists(key) {
			if err := fk.Set(key, fk.Get(legacy)); err != nil {
				return err
			}
		}
		fk.Delete(legacy)
	}
	return k.Merge(fk)
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML, which also accepts JSON) if MARKERGEN_CONFIG is set;
//     config.txt keys such as LOGS_ID and CONVERT_DIC are accepted
//  3. env (prefix MARKERGEN_)
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, "")
}

// LoadFrom is Load with an explicit config file path. An empty path falls
// back to MARKERGEN_CONFIG.
func LoadFrom(_ context.Context, path string) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := loadFile(k, path); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Map env keys like MARKERGEN_FIGHT_ID -> fight_id (flat keys).
	// List settings take comma separated values.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if _, ok := listKeys[key]; ok {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The config path itself is not a setting.
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// check validates fields that always carry a value.
func (c *Config) check() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base_url must not be empty", ErrInvalidConfig)
	case c.OutputFile == "":
		return fmt.Errorf("%w: output_file must not be empty", ErrInvalidConfig)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("%w: request_timeout must be positive", ErrInvalidConfig)
	case c.MinGapMS < 0, c.CastIgnoreWindowMS < 0, c.EchoWindowMS < 0, c.SplashWindowMS < 0:
		return fmt.Errorf("%w: windows must not be negative", ErrInvalidConfig)
	}
	return nil
}
