package schema

// Level is a maximal set of tables with no remaining dependencies after
// prior levels are processed (GLOSSARY: Level). Tables within a level are
// candidates for parallel processing (§5); levels themselves are strictly
// ordered.
type Level []string

// ResolveOrder computes the dependency-respecting processing order of
// §4.E: deps[T] is the set of ref_tables of T's foreign keys that are
// themselves part of the schema. Repeatedly peel off the zero-dependency
// set as a level, remove it from every remaining table's dependency set,
// and append it to the order. A non-empty residual with no zero-dependency
// table is a circular FK graph (SchemaError::CircularDependency).
//
// Tie-break within a level is stable by schema insertion order, matching
// the iteration order the teacher's own map-building code relies on
// throughout (model.go's ordered slices).
func (s *Schema) ResolveOrder() ([]Level, error) {
	deps := make(map[string]map[string]bool, len(s.Tables))
	for _, name := range s.insertOrder {
		t := s.Tables[name]
		set := make(map[string]bool)
		for _, fk := range t.ForeignKeys {
			if fk.RefTable == name {
				// self-referencing FK: not a cross-table ordering dependency
				continue
			}
			if _, ok := s.Tables[fk.RefTable]; ok {
				set[fk.RefTable] = true
			}
		}
		deps[name] = set
	}

	var levels []Level
	remaining := make(map[string]bool, len(s.insertOrder))
	for _, name := range s.insertOrder {
		remaining[name] = true
	}

	for len(remaining) > 0 {
		var level Level
		for _, name := range s.insertOrder {
			if !remaining[name] {
				continue
			}
			if len(deps[name]) == 0 {
				level = append(level, name)
			}
		}
		if len(level) == 0 {
			return nil, &Error{Kind: CircularDependency, Table: firstRemaining(s.insertOrder, remaining), Detail: "circular dependency detected among tables"}
		}
		for _, name := range level {
			delete(remaining, name)
			for other := range remaining {
				delete(deps[other], name)
			}
		}
		levels = append(levels, level)
	}
	return levels, nil
}

// FlatOrder flattens ResolveOrder's levels into a single processing order,
// for callers that don't need the level structure (e.g. §4.H's repair
// pass, which the spec only requires to run "in dependency order").
func FlatOrder(levels []Level) []string {
	var out []string
	for _, l := range levels {
		out = append(out, l...)
	}
	return out
}

func firstRemaining(order []string, remaining map[string]bool) string {
	for _, name := range order {
		if remaining[name] {
			return name
		}
	}
	return ""
}
