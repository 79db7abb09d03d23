package schema

import (
	"encoding/json"
	"fmt"
	"os"
)

// document is the on-disk shape a schema file decodes from: the structure
// of §3, as an external DDL-introspection tool would emit it. This engine
// never lexes SQL DDL itself (§1's explicit non-goal) — it only consumes
// this already-structured form.
type document struct {
	Tables []*Table `json:"tables"`
}

// LoadFile reads a JSON schema document from path and validates it,
// returning a ready-to-resolve Schema.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schema file: %w", err)
	}
	if len(doc.Tables) == 0 {
		return nil, fmt.Errorf("schema file %s declares no tables", path)
	}
	s := New(doc.Tables)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
