package rowgen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbfiller/dbfiller/internal/expr"
	"github.com/dbfiller/dbfiller/internal/keys"
	"github.com/dbfiller/dbfiller/internal/schema"
	"github.com/dbfiller/dbfiller/internal/value"
)

func TestRepairDropsRowFailingCheck(t *testing.T) {
	tbl := &schema.Table{
		Name:             "orders",
		Columns:          []schema.Column{{Name: "amount", SQLType: "INT"}},
		CheckConstraints: []string{"amount > 0"},
	}
	sch := schema.New([]*schema.Table{tbl})
	ds := &Dataset{Tables: map[string][]Row{
		"orders": {
			{"amount": value.NewInt(5)},
			{"amount": value.NewInt(-1)},
		},
	}}
	Repair(sch, ds, expr.DefaultCache, keys.NewManager())
	require.Len(t, ds.Tables["orders"], 1)
	require.Equal(t, int64(5), ds.Tables["orders"][0]["amount"].I)
}

func TestRepairCascadesDeleteToChildren(t *testing.T) {
	parent := &schema.Table{
		Name:       "parents",
		Columns:    []schema.Column{{Name: "id", SQLType: "INT"}, {Name: "amount", SQLType: "INT"}},
		PrimaryKey: []string{"id"},
		CheckConstraints: []string{
			"amount > 0",
		},
	}
	child := &schema.Table{
		Name:    "children",
		Columns: []schema.Column{{Name: "parent_id", SQLType: "INT"}},
		ForeignKeys: []schema.ForeignKey{
			{Columns: []string{"parent_id"}, RefTable: "parents", RefColumns: []string{"id"}},
		},
	}
	sch := schema.New([]*schema.Table{parent, child})
	ds := &Dataset{Tables: map[string][]Row{
		"parents": {
			{"id": value.NewInt(1), "amount": value.NewInt(10)},
			{"id": value.NewInt(2), "amount": value.NewInt(-5)},
		},
		"children": {
			{"parent_id": value.NewInt(1)},
			{"parent_id": value.NewInt(2)},
		},
	}}
	Repair(sch, ds, expr.DefaultCache, keys.NewManager())
	require.Len(t, ds.Tables["parents"], 1)
	require.Len(t, ds.Tables["children"], 1)
	require.Equal(t, int64(1), ds.Tables["children"][0]["parent_id"].I)
}

func TestRepairRemovesDuplicateUniqueTuplesKeepingFirst(t *testing.T) {
	tbl := &schema.Table{
		Name:              "users",
		Columns:           []schema.Column{{Name: "email", SQLType: "VARCHAR(50)"}},
		UniqueConstraints: [][]string{{"email"}},
	}
	sch := schema.New([]*schema.Table{tbl})
	ds := &Dataset{Tables: map[string][]Row{
		"users": {
			{"email": value.NewText("a@b.com")},
			{"email": value.NewText("a@b.com")},
			{"email": value.NewText("c@d.com")},
		},
	}}
	Repair(sch, ds, expr.DefaultCache, keys.NewManager())
	require.Len(t, ds.Tables["users"], 2)
}
