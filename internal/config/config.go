// Package config loads the TOML configuration surface of §6: the engine's
// row counts, predefined-value overrides, custom generator bindings, and
// output settings. It follows the teacher's own loadConfig/MigrationConfig
// shape in config.go — a flat struct with defaults applied before
// unmarshal, then field validation returning wrapped errors.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Config is the full TOML-driven generation configuration (§6's
// "Configuration surface" table).
type Config struct {
	Schema string `toml:"schema" validate:"required"`

	NumRows         int            `toml:"num_rows" validate:"gt=0"`
	NumRowsPerTable map[string]int `toml:"num_rows_per_table"`

	// PredefinedValues and ColumnTypeMappings stay untyped at the TOML
	// layer, since their inner shape varies per caller-defined table and
	// column; BuildSynthOptions decodes them into typed, synth-ready form
	// with mapstructure. Table and column names are not checked against
	// the schema.
	PredefinedValues    map[string]map[string]any `toml:"predefined_values"`
	ColumnTypeMappings  map[string]map[string]any `toml:"column_type_mappings"`

	MaxRowsPerInsert int    `toml:"max_rows_per_insert" validate:"gt=0"`
	RunRepair        bool   `toml:"run_repair"`
	Workers          int    `toml:"workers" validate:"gt=0"`
	OutputFormat     string `toml:"output_format" validate:"oneof=sql csv json"`
	OutputDir        string `toml:"output_dir"`

	// configDir is the directory containing the TOML file, used to
	// resolve the schema path when it's relative.
	configDir string
}

// Load reads a TOML config file at path, applies defaults, and validates
// the result. Mirrors the teacher's loadConfig exactly in structure.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Config{
		NumRows:          100,
		MaxRowsPerInsert: 1000,
		RunRepair:        true,
		Workers:          defaultWorkers(),
		OutputFormat:     "sql",
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	cfg.configDir = filepath.Dir(absPath)
	cfg.Schema = strings.TrimSpace(cfg.Schema)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// ResolvePath resolves p relative to the config file's own directory,
// exactly as the teacher's resolvePath does for SQL file paths.
func (c *Config) ResolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.configDir, p)
}

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	if n > 8 {
		return 8
	}
	return n
}
