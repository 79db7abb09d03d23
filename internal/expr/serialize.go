package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// Serialize renders an AST back to a parseable source string. It is not
// meant to reproduce the original formatting, only to round-trip: for any
// valid CHECK source s, Parse(Serialize(Parse(s))) must describe the same
// condition as Parse(s) (§8, "Round-trip / idempotence").
func Serialize(n Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case *Literal:
		switch v.Kind {
		case NumLiteral:
			b.WriteString(strconv.FormatFloat(v.Num, 'g', -1, 64))
		case StrLiteral:
			b.WriteByte('\'')
			b.WriteString(strings.ReplaceAll(v.Str, "'", "\\'"))
			b.WriteByte('\'')
		case BoolLiteral:
			if v.Bool {
				b.WriteString("TRUE")
			} else {
				b.WriteString("FALSE")
			}
		}
	case *Ident:
		b.WriteString(v.Name)
	case *BinOp:
		b.WriteByte('(')
		writeNode(b, v.L)
		fmt.Fprintf(b, " %s ", v.Op)
		writeNode(b, v.R)
		b.WriteByte(')')
	case *UnaryNot:
		b.WriteString("NOT ")
		writeNode(b, v.E)
	case *Between:
		writeNode(b, v.V)
		b.WriteString(" BETWEEN ")
		writeNode(b, v.Lo)
		b.WriteString(" AND ")
		writeNode(b, v.Hi)
	case *InList:
		writeNode(b, v.V)
		if v.Negate {
			b.WriteString(" NOT IN (")
		} else {
			b.WriteString(" IN (")
		}
		for i, item := range v.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			writeNode(b, item)
		}
		b.WriteByte(')')
	case *Like:
		writeNode(b, v.V)
		if v.Negate {
			b.WriteString(" NOT LIKE '")
		} else {
			b.WriteString(" LIKE '")
		}
		b.WriteString(strings.ReplaceAll(v.Pattern, "'", "\\'"))
		b.WriteByte('\'')
	case *IsNull:
		writeNode(b, v.V)
		if v.Negate {
			b.WriteString(" IS NOT NULL")
		} else {
			b.WriteString(" IS NULL")
		}
	case *Func:
		b.WriteString(v.Name)
		b.WriteByte('(')
		for i, a := range v.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			writeNode(b, a)
		}
		b.WriteByte(')')
	case *Extract:
		b.WriteString("EXTRACT(")
		b.WriteString(v.Field)
		b.WriteString(" FROM ")
		writeNode(b, v.Source)
		b.WriteByte(')')
	case *DateFn:
		b.WriteString("DATE(")
		writeNode(b, v.Arg)
		b.WriteByte(')')
	}
}
