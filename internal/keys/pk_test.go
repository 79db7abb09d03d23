package keys

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbfiller/dbfiller/internal/rng"
	"github.com/dbfiller/dbfiller/internal/schema"
	"github.com/dbfiller/dbfiller/internal/synth"
	"github.com/dbfiller/dbfiller/internal/value"
)

func TestAllocatePKNoPrimaryKey(t *testing.T) {
	tbl := &schema.Table{Name: "T"}
	rows, err := AllocatePK(tbl, 3, NewManager(), synth.New(synth.Options{}, nil), rng.NewMaster(1), nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Empty(t, rows[0])
}

func TestAllocatePKScalarIntegerContiguous(t *testing.T) {
	tbl := &schema.Table{
		Name:       "A",
		Columns:    []schema.Column{{Name: "id", SQLType: "SERIAL"}},
		PrimaryKey: []string{"id"},
	}
	rows, err := AllocatePK(tbl, 5, NewManager(), synth.New(synth.Options{}, nil), rng.NewMaster(1), nil)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	for i, row := range rows {
		require.Equal(t, int64(i+1), row["id"].I)
	}
}

func TestAllocatePKScalarCounterAdvancesAcrossCalls(t *testing.T) {
	tbl := &schema.Table{
		Name:       "A",
		Columns:    []schema.Column{{Name: "id", SQLType: "INT"}},
		PrimaryKey: []string{"id"},
	}
	mgr := NewManager()
	s := synth.New(synth.Options{}, nil)
	first, err := AllocatePK(tbl, 3, mgr, s, rng.NewMaster(1), nil)
	require.NoError(t, err)
	second, err := AllocatePK(tbl, 2, mgr, s, rng.NewMaster(1), nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), first[0]["id"].I)
	require.Equal(t, int64(4), second[0]["id"].I)
}

func TestAllocatePKCompositeDedupAndCapacityWarning(t *testing.T) {
	tbl := &schema.Table{
		Name: "Link",
		Columns: []schema.Column{
			{Name: "a", SQLType: "INT"},
			{Name: "b", SQLType: "INT"},
		},
		PrimaryKey: []string{"a", "b"},
	}
	mgr := NewManager()
	s := synth.New(synth.Options{
		PredefinedTable: map[synth.ColumnKey][]value.Value{
			{Table: "Link", Column: "a"}: {value.NewInt(1), value.NewInt(2)},
			{Table: "Link", Column: "b"}: {value.NewInt(1), value.NewInt(2)},
		},
	}, nil)
	rows, err := AllocatePK(tbl, 10, mgr, s, rng.NewMaster(1), nil)
	require.Error(t, err)
	var capErr *CapacityWarning
	require.ErrorAs(t, err, &capErr)
	require.LessOrEqual(t, len(rows), 4)

	seen := map[string]bool{}
	for _, row := range rows {
		key := tupleKey([]value.Value{row["a"], row["b"]})
		require.False(t, seen[key], "duplicate composite PK tuple")
		seen[key] = true
	}
}

func TestAllocatePKCompositeFKColumnUsesParentPool(t *testing.T) {
	tbl := &schema.Table{
		Name: "Enroll",
		Columns: []schema.Column{
			{Name: "student_id", SQLType: "INT"},
			{Name: "course_id", SQLType: "INT"},
		},
		PrimaryKey: []string{"student_id", "course_id"},
		ForeignKeys: []schema.ForeignKey{
			{Columns: []string{"student_id"}, RefTable: "Student", RefColumns: []string{"id"}},
		},
	}
	parentPool := func(refTable, refColumn string) []value.Value {
		require.Equal(t, "Student", refTable)
		require.Equal(t, "id", refColumn)
		return []value.Value{value.NewInt(1), value.NewInt(2), value.NewInt(3)}
	}
	rows, err := AllocatePK(tbl, 3, NewManager(), synth.New(synth.Options{}, nil), rng.NewMaster(1), parentPool)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		require.Contains(t, []int64{1, 2, 3}, row["student_id"].I)
	}
}

func TestUniqueIndexContainsAndInsert(t *testing.T) {
	mgr := NewManager()
	cols := []string{"email"}
	vals := []value.Value{value.NewText("a@b.com")}
	require.False(t, mgr.Contains("T", cols, vals))
	mgr.Insert("T", cols, vals)
	require.True(t, mgr.Contains("T", cols, vals))
	mgr.Remove("T", cols, vals)
	require.False(t, mgr.Contains("T", cols, vals))
}
