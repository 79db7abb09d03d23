package hints

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbfiller/dbfiller/internal/expr"
)

func parse(t *testing.T, src string) expr.Node {
	t.Helper()
	n, err := expr.Parse(src)
	require.NoError(t, err)
	return n
}

func TestExtractSimpleComparison(t *testing.T) {
	s := Extract(parse(t, "x > 0"))
	require.Len(t, s["x"], 1)
	require.Equal(t, ">", s["x"][0].Operator)
}

func TestExtractBetween(t *testing.T) {
	s := Extract(parse(t, "v BETWEEN 1 AND 10"))
	require.Len(t, s["v"], 2)
	ops := []string{s["v"][0].Operator, s["v"][1].Operator}
	require.ElementsMatch(t, []string{">=", "<="}, ops)
}

func TestExtractInList(t *testing.T) {
	s := Extract(parse(t, "status IN ('a', 'b', 'c')"))
	require.Len(t, s["status"], 1)
	require.Equal(t, "IN", s["status"][0].Operator)
	require.Len(t, s["status"][0].Items, 3)
}

func TestExtractNotPrefixesOperator(t *testing.T) {
	s := Extract(parse(t, "NOT x > 0"))
	require.Equal(t, "NOT >", s["x"][0].Operator)
}

func TestExtractAndUnion(t *testing.T) {
	s := Extract(parse(t, "x > 0 AND y < 10"))
	require.Len(t, s["x"], 1)
	require.Len(t, s["y"], 1)
}

func TestExtractCrossColumnHintKeepsNodeUnevaluated(t *testing.T) {
	s := Extract(parse(t, "x < y"))
	require.Len(t, s["x"], 1)
	_, isIdent := s["x"][0].Items[0].(*expr.Ident)
	require.True(t, isIdent)
}

func TestRegexHintFound(t *testing.T) {
	pat, ok := RegexHint(parse(t, "REGEXP_LIKE(email, '^[^@]+@[^@]+$')"), "email")
	require.True(t, ok)
	require.Equal(t, "^[^@]+@[^@]+$", pat)
}

func TestRegexHintNotFoundForOtherColumn(t *testing.T) {
	_, ok := RegexHint(parse(t, "REGEXP_LIKE(email, '^[^@]+@[^@]+$')"), "phone")
	require.False(t, ok)
}
