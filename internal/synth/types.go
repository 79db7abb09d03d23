package synth

import (
	"regexp"
	"strconv"
	"strings"
)

// Family classifies a raw SQL type string into the type-default branches of
// §4.D item 6. Unknown types fall back to Text, matching §6's "the engine
// treats unknown SQL types as opaque text columns."
type Family int

const (
	FamilyInt Family = iota
	FamilyDecimal
	FamilyFloat
	FamilyBool
	FamilyDate
	FamilyDateTime
	FamilyTime
	FamilyUUID
	FamilyText
)

// TypeInfo is the parsed shape of a column's raw SQL type.
type TypeInfo struct {
	Family    Family
	Length    int // character types
	Precision int // decimal types
	Scale     int
	Unsigned  bool
}

var parenArgs = regexp.MustCompile(`\(([^)]*)\)`)

// ParseType classifies a raw SQL type string (e.g. "VARCHAR(50)",
// "DECIMAL(10,2)", "INT UNSIGNED", "SERIAL", "UUID") into a TypeInfo.
func ParseType(raw string) TypeInfo {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	unsigned := strings.Contains(upper, "UNSIGNED")
	base := upper
	var args string
	if m := parenArgs.FindStringSubmatch(upper); m != nil {
		args = m[1]
		base = strings.TrimSpace(upper[:strings.Index(upper, "(")])
	} else if idx := strings.IndexByte(upper, ' '); idx >= 0 {
		base = upper[:idx]
	}
	base = strings.TrimSpace(base)

	switch {
	case containsAny(base, "SERIAL", "BIGSERIAL", "SMALLSERIAL", "INT", "INTEGER", "TINYINT", "SMALLINT", "MEDIUMINT", "BIGINT"):
		return TypeInfo{Family: FamilyInt, Unsigned: unsigned}

	case containsAny(base, "DECIMAL", "NUMERIC"):
		p, s := parsePrecisionScale(args)
		return TypeInfo{Family: FamilyDecimal, Precision: p, Scale: s, Unsigned: unsigned}

	case containsAny(base, "FLOAT", "DOUBLE", "REAL"):
		return TypeInfo{Family: FamilyFloat, Unsigned: unsigned}

	case containsAny(base, "BOOL", "BOOLEAN"):
		return TypeInfo{Family: FamilyBool}

	case containsAny(base, "TIMESTAMP", "DATETIME"):
		return TypeInfo{Family: FamilyDateTime}

	case base == "DATE":
		return TypeInfo{Family: FamilyDate}

	case base == "TIME":
		return TypeInfo{Family: FamilyTime}

	case containsAny(base, "UUID", "UNIQUEIDENTIFIER"):
		return TypeInfo{Family: FamilyUUID}

	case containsAny(base, "CHAR", "VARCHAR", "TEXT", "CLOB", "STRING"):
		length := 255
		if args != "" {
			if n, err := strconv.Atoi(strings.TrimSpace(args)); err == nil {
				length = n
			}
		} else if base == "TEXT" || base == "CLOB" {
			length = 1000
		}
		return TypeInfo{Family: FamilyText, Length: length}
	}

	return TypeInfo{Family: FamilyText, Length: 255}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func parsePrecisionScale(args string) (int, int) {
	if args == "" {
		return 10, 0
	}
	parts := strings.Split(args, ",")
	p, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
	s := 0
	if len(parts) > 1 {
		s, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
	}
	if p == 0 {
		p = 10
	}
	return p, s
}
