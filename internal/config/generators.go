package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/dbfiller/dbfiller/internal/synth"
	"github.com/dbfiller/dbfiller/internal/value"
)

// columnMapping is the typed shape a table-form column_type_mappings[T][col]
// entry (one with an explicit "generator" key) decodes into via
// mapstructure's weakly-typed-input mode. A bare generator name (TOML
// string) is taken directly by decodeGeneratorName without this struct.
type columnMapping struct {
	Generator string `mapstructure:"generator"`
}

// BuildSynthOptions decodes the config's free-form predefined_values and
// column_type_mappings sections into a synth.Options, the shape
// internal/synth actually consumes. The "global" key of predefined_values
// is reserved for cross-table defaults, per §6.
func (c *Config) BuildSynthOptions() (synth.Options, error) {
	opts := synth.Options{
		PredefinedGlobal:       map[string][]value.Value{},
		PredefinedTable:        map[synth.ColumnKey][]value.Value{},
		NamedGeneratorOverride: map[synth.ColumnKey]string{},
	}

	for table, cols := range c.PredefinedValues {
		for col, raw := range cols {
			var items []any
			if err := mapstructure.Decode(raw, &items); err != nil {
				return opts, fmt.Errorf("predefined_values[%s][%s]: %w", table, col, err)
			}
			values := make([]value.Value, 0, len(items))
			for _, it := range items {
				values = append(values, toValue(it))
			}
			if table == "global" {
				opts.PredefinedGlobal[col] = values
			} else {
				opts.PredefinedTable[synth.ColumnKey{Table: table, Column: col}] = values
			}
		}
	}

	for table, cols := range c.ColumnTypeMappings {
		for col, raw := range cols {
			name, err := decodeGeneratorName(raw)
			if err != nil {
				return opts, fmt.Errorf("column_type_mappings[%s][%s]: %w", table, col, err)
			}
			if name != "" {
				opts.NamedGeneratorOverride[synth.ColumnKey{Table: table, Column: col}] = name
			}
		}
	}

	return opts, nil
}

// decodeGeneratorName accepts either a bare string ("email") or a
// {generator = "email"} table for column_type_mappings entries.
func decodeGeneratorName(raw any) (string, error) {
	if s, ok := raw.(string); ok {
		return strings.ToLower(s), nil
	}
	var cm columnMapping
	cfg := &mapstructure.DecoderConfig{WeaklyTypedInput: true, Result: &cm}
	dec, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return "", err
	}
	if err := dec.Decode(raw); err != nil {
		return "", err
	}
	return strings.ToLower(cm.Generator), nil
}

// toValue coerces one decoded TOML scalar into a value.Value by its
// dynamic Go type, matching the kinds toml.Decode itself produces
// (int64, float64, bool, string, time.Time).
func toValue(raw any) value.Value {
	switch v := raw.(type) {
	case int64:
		return value.NewInt(v)
	case int:
		return value.NewInt(int64(v))
	case float64:
		return value.NewReal(v)
	case bool:
		return value.NewBool(v)
	case time.Time:
		return value.NewDateTime(v)
	case string:
		return value.NewText(v)
	default:
		return value.NewText(fmt.Sprintf("%v", v))
	}
}
