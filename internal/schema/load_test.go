package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
  "tables": [
    {
      "name": "users",
      "columns": [
        {"name": "id", "sql_type": "INT", "is_auto_increment": true},
        {"name": "email", "sql_type": "VARCHAR(100)", "constraints": [{"kind": "NOT NULL"}]}
      ],
      "primary_key": ["id"],
      "unique_constraints": [["email"]]
    },
    {
      "name": "orders",
      "columns": [
        {"name": "id", "sql_type": "INT"},
        {"name": "user_id", "sql_type": "INT"},
        {"name": "total", "sql_type": "DECIMAL(10,2)", "constraints": [{"kind": "CHECK", "value": "total >= 0"}]}
      ],
      "primary_key": ["id"],
      "foreign_keys": [{"columns": ["user_id"], "ref_table": "users", "ref_columns": ["id"]}]
    }
  ]
}`

func TestLoadFileParsesDocumentAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, s.Tables, 2)
	require.Equal(t, []string{"id"}, s.Tables["orders"].PrimaryKey)

	email, ok := s.Tables["users"].Column("email")
	require.True(t, ok)
	require.True(t, email.HasConstraint(NotNull))
}

func TestLoadFileRejectsUnknownRefTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	body := `{"tables": [{"name": "orders", "columns": [{"name": "id", "sql_type": "INT"}],
		"foreign_keys": [{"columns": ["id"], "ref_table": "missing", "ref_columns": ["id"]}]}]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
}
