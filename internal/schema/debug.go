package schema

import "github.com/k0kubun/pp/v3"

// Dump pretty-prints the resolved schema for --debug output, the way
// sqldef's own debug tooling dumps parsed DDL structures.
func (s *Schema) Dump() string {
	return pp.Sprint(s)
}
