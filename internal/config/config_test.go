package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbfiller/dbfiller/internal/synth"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "dbfiller.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, `schema = "schema.sql"`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 100, cfg.NumRows)
	require.Equal(t, 1000, cfg.MaxRowsPerInsert)
	require.True(t, cfg.RunRepair)
	require.Equal(t, "sql", cfg.OutputFormat)
}

func TestLoadRejectsMissingSchema(t *testing.T) {
	path := writeTempConfig(t, `num_rows = 10`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsBadOutputFormat(t *testing.T) {
	path := writeTempConfig(t, `
schema = "schema.sql"
output_format = "xml"
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestResolvePathJoinsConfigDir(t *testing.T) {
	path := writeTempConfig(t, `schema = "schema.sql"`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(filepath.Dir(path), "schema.sql"), cfg.ResolvePath("schema.sql"))
	require.Equal(t, "/abs/schema.sql", cfg.ResolvePath("/abs/schema.sql"))
}

func TestBuildSynthOptionsDecodesPredefinedAndGenerators(t *testing.T) {
	path := writeTempConfig(t, `
schema = "schema.sql"

[predefined_values.global]
country = ["US", "CA"]

[predefined_values.users]
role = ["admin", "member"]

[column_type_mappings.users]
email = "email"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	opts, err := cfg.BuildSynthOptions()
	require.NoError(t, err)
	require.Len(t, opts.PredefinedGlobal["country"], 2)
	require.Len(t, opts.PredefinedTable[synth.ColumnKey{Table: "users", Column: "role"}], 2)
	require.Equal(t, "email", opts.NamedGeneratorOverride[synth.ColumnKey{Table: "users", Column: "email"}])
}
