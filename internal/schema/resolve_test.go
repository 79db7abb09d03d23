package schema

import "testing"

func tbl(name string, fks ...ForeignKey) *Table {
	return &Table{Name: name, ForeignKeys: fks}
}

func TestResolveOrderSimpleChain(t *testing.T) {
	a := tbl("A")
	b := tbl("B", ForeignKey{Columns: []string{"a_id"}, RefTable: "A", RefColumns: []string{"id"}})
	c := tbl("C", ForeignKey{Columns: []string{"b_id"}, RefTable: "B", RefColumns: []string{"id"}})
	s := New([]*Table{c, a, b}) // deliberately out of dependency order

	levels, err := s.ResolveOrder()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := FlatOrder(levels)
	want := []string{"A", "B", "C"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestResolveOrderParallelLevel(t *testing.T) {
	a := tbl("A")
	b := tbl("B")
	c := tbl("C", ForeignKey{Columns: []string{"a_id"}, RefTable: "A", RefColumns: []string{"id"}})
	s := New([]*Table{a, b, c})

	levels, err := s.ResolveOrder()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(levels) != 2 {
		t.Fatalf("expected 2 levels, got %d: %v", len(levels), levels)
	}
	if len(levels[0]) != 2 {
		t.Fatalf("expected level 0 to contain A and B, got %v", levels[0])
	}
}

func TestResolveOrderCircularDependency(t *testing.T) {
	a := tbl("A", ForeignKey{Columns: []string{"b_id"}, RefTable: "B", RefColumns: []string{"id"}})
	b := tbl("B", ForeignKey{Columns: []string{"a_id"}, RefTable: "A", RefColumns: []string{"id"}})
	s := New([]*Table{a, b})

	_, err := s.ResolveOrder()
	if err == nil {
		t.Fatal("expected circular dependency error")
	}
	se, ok := err.(*Error)
	if !ok || se.Kind != CircularDependency {
		t.Fatalf("expected CircularDependency SchemaError, got %v", err)
	}
}

func TestResolveOrderSelfReferenceIsNotCircular(t *testing.T) {
	a := tbl("A", ForeignKey{Columns: []string{"manager_id"}, RefTable: "A", RefColumns: []string{"id"}})
	s := New([]*Table{a})

	levels, err := s.ResolveOrder()
	if err != nil {
		t.Fatalf("self-referencing FK should not be treated as circular: %v", err)
	}
	if len(levels) != 1 || len(levels[0]) != 1 || levels[0][0] != "A" {
		t.Fatalf("unexpected levels: %v", levels)
	}
}

func TestValidateUnknownRefTable(t *testing.T) {
	a := tbl("A", ForeignKey{Columns: []string{"b_id"}, RefTable: "Ghost", RefColumns: []string{"id"}})
	s := New([]*Table{a})

	err := s.Validate()
	if err == nil {
		t.Fatal("expected UnknownRefTable error")
	}
	se, ok := err.(*Error)
	if !ok || se.Kind != UnknownRefTable {
		t.Fatalf("expected UnknownRefTable SchemaError, got %v", err)
	}
}
