// Package schema holds the relational schema model consumed by the
// generation engine (§3) and the dependency resolver that orders tables
// for safe generation (§4.E). The schema is produced by an external DDL
// parser; this package never lexes SQL DDL itself.
package schema

import (
	"encoding/json"
	"fmt"
)

// ConstraintKind enumerates the column-level constraint kinds in §3.
type ConstraintKind int

const (
	NotNull ConstraintKind = iota
	Unique
	PrimaryKey
	Check
)

func (k ConstraintKind) jsonName() string {
	switch k {
	case NotNull:
		return "NOT NULL"
	case Unique:
		return "UNIQUE"
	case PrimaryKey:
		return "PRIMARY KEY"
	case Check:
		return "CHECK"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON renders a ConstraintKind the way an external DDL-introspection
// tool would naturally name it, rather than as an opaque integer.
func (k ConstraintKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.jsonName())
}

func (k *ConstraintKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "NOT NULL":
		*k = NotNull
	case "UNIQUE":
		*k = Unique
	case "PRIMARY KEY":
		*k = PrimaryKey
	case "CHECK":
		*k = Check
	default:
		return fmt.Errorf("schema: unknown constraint kind %q", s)
	}
	return nil
}

// ColumnConstraint is one constraint attached to a column. Value holds the
// CHECK expression text when Kind == Check; it is empty otherwise.
type ColumnConstraint struct {
	Kind  ConstraintKind `json:"kind"`
	Value string         `json:"value,omitempty"`
}

// Column describes a single table column.
type Column struct {
	Name            string             `json:"name"`
	SQLType         string             `json:"sql_type"` // raw textual SQL type, e.g. "VARCHAR(50)", "DECIMAL(10,2)"
	Constraints     []ColumnConstraint `json:"constraints,omitempty"`
	IsAutoIncrement bool               `json:"is_auto_increment,omitempty"`
}

// HasConstraint reports whether the column carries a constraint of kind k.
func (c Column) HasConstraint(k ConstraintKind) bool {
	for _, cons := range c.Constraints {
		if cons.Kind == k {
			return true
		}
	}
	return false
}

// ForeignKey is a `{columns} REFERENCES ref_table(ref_columns)` constraint.
// len(Columns) == len(RefColumns) is a schema invariant (§3).
type ForeignKey struct {
	Name       string   `json:"name,omitempty"`
	Columns    []string `json:"columns"`
	RefTable   string   `json:"ref_table"`
	RefColumns []string `json:"ref_columns"`
}

// Table holds the full schema definition of one table, in the shape §3
// specifies: ordered columns, primary key, unique constraints, table-level
// (or hoisted column-level) CHECK expressions, and foreign keys.
type Table struct {
	Name              string       `json:"name"`
	Columns           []Column     `json:"columns"`
	PrimaryKey        []string     `json:"primary_key,omitempty"`
	UniqueConstraints [][]string   `json:"unique_constraints,omitempty"`
	CheckConstraints  []string     `json:"check_constraints,omitempty"`
	ForeignKeys       []ForeignKey `json:"foreign_keys,omitempty"`
}

// Column looks up a column by name, returning ok=false if absent.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Schema is the full set of tables, keyed by name but also carrying
// insertion order (the source of the dependency resolver's tie-break).
type Schema struct {
	Tables       map[string]*Table
	insertOrder  []string
}

// New builds a Schema from tables in the order given; that order is the
// tie-break insertion order used by the dependency resolver (§4.E).
func New(tables []*Table) *Schema {
	s := &Schema{Tables: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		s.Tables[t.Name] = t
		s.insertOrder = append(s.insertOrder, t.Name)
	}
	return s
}

// InsertOrder returns table names in the order they were added to the
// schema.
func (s *Schema) InsertOrder() []string {
	out := make([]string, len(s.insertOrder))
	copy(out, s.insertOrder)
	return out
}

// ChildFK is one entry of the derived parent→children back-map described
// in §9 (see BuildFKBackMap): built once after the schema is known, never
// mutated during generation.
type ChildFK struct {
	ChildTable    string
	ParentColumns []string
	ChildColumns  []string
}

// BuildFKBackMap returns, for each table that is referenced by at least one
// foreign key, the list of child foreign keys pointing at it. Used by the
// repair pass (§4.H) for cascading delete.
func (s *Schema) BuildFKBackMap() map[string][]ChildFK {
	back := make(map[string][]ChildFK)
	for _, name := range s.insertOrder {
		t := s.Tables[name]
		for _, fk := range t.ForeignKeys {
			back[fk.RefTable] = append(back[fk.RefTable], ChildFK{
				ChildTable:    t.Name,
				ParentColumns: fk.RefColumns,
				ChildColumns:  fk.Columns,
			})
		}
	}
	return back
}
