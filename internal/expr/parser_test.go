package expr

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"
)

func TestParseComparison(t *testing.T) {
	n, err := Parse("x > 0")
	require.NoError(t, err)
	bo, ok := n.(*BinOp)
	require.True(t, ok)
	require.Equal(t, ">", bo.Op)
	require.Equal(t, "x", bo.L.(*Ident).Name)
	require.Equal(t, 0.0, bo.R.(*Literal).Num)
}

func TestParseBetween(t *testing.T) {
	n, err := Parse("v BETWEEN 1 AND 10")
	require.NoError(t, err)
	bt, ok := n.(*Between)
	require.True(t, ok)
	require.Equal(t, "v", bt.V.(*Ident).Name)
	require.Equal(t, 1.0, bt.Lo.(*Literal).Num)
	require.Equal(t, 10.0, bt.Hi.(*Literal).Num)
}

func TestParseAndOrPrecedence(t *testing.T) {
	// AND binds tighter than OR: a OR b AND c == a OR (b AND c)
	n, err := Parse("a = 1 OR b = 2 AND c = 3")
	require.NoError(t, err)
	top, ok := n.(*BinOp)
	require.True(t, ok)
	require.Equal(t, "OR", top.Op)
	right, ok := top.R.(*BinOp)
	require.True(t, ok)
	require.Equal(t, "AND", right.Op)
}

func TestParseNotPrecedence(t *testing.T) {
	n, err := Parse("NOT x = 1 AND y = 2")
	require.NoError(t, err)
	top, ok := n.(*BinOp)
	require.True(t, ok)
	require.Equal(t, "AND", top.Op)
	_, ok = top.L.(*UnaryNot)
	require.True(t, ok)
}

func TestParseInList(t *testing.T) {
	n, err := Parse("status IN ('a', 'b', 'c')")
	require.NoError(t, err)
	il, ok := n.(*InList)
	require.True(t, ok)
	require.False(t, il.Negate)
	require.Len(t, il.Items, 3)
}

func TestParseNotInList(t *testing.T) {
	n, err := Parse("status NOT IN ('a', 'b')")
	require.NoError(t, err)
	il, ok := n.(*InList)
	require.True(t, ok)
	require.True(t, il.Negate)
}

func TestParseLikeAndNotLike(t *testing.T) {
	n, err := Parse("email LIKE '%@%'")
	require.NoError(t, err)
	lk, ok := n.(*Like)
	require.True(t, ok)
	require.Equal(t, "%@%", lk.Pattern)
	require.False(t, lk.Negate)

	n2, err := Parse("email NOT LIKE '%spam%'")
	require.NoError(t, err)
	lk2 := n2.(*Like)
	require.True(t, lk2.Negate)
}

func TestParseIsNull(t *testing.T) {
	n, err := Parse("x IS NULL")
	require.NoError(t, err)
	isn, ok := n.(*IsNull)
	require.True(t, ok)
	require.False(t, isn.Negate)

	n2, err := Parse("x IS NOT NULL")
	require.NoError(t, err)
	require.True(t, n2.(*IsNull).Negate)
}

func TestParseExtractAndDate(t *testing.T) {
	n, err := Parse("EXTRACT(YEAR FROM d) = 2020")
	require.NoError(t, err)
	bo := n.(*BinOp)
	ex, ok := bo.L.(*Extract)
	require.True(t, ok)
	require.Equal(t, "YEAR", ex.Field)

	n2, err := Parse("d >= DATE('2020-01-01')")
	require.NoError(t, err)
	bo2 := n2.(*BinOp)
	_, ok = bo2.R.(*DateFn)
	require.True(t, ok)
}

func TestParseFuncCall(t *testing.T) {
	n, err := Parse("REGEXP_LIKE(email, '^[^@]+@[^@]+$')")
	require.NoError(t, err)
	fn, ok := n.(*Func)
	require.True(t, ok)
	require.Equal(t, "REGEXP_LIKE", fn.Name)
	require.Len(t, fn.Args, 2)
}

func TestParseArithmeticPrecedence(t *testing.T) {
	n, err := Parse("x = 1 + 2 * 3")
	require.NoError(t, err)
	bo := n.(*BinOp)
	add, ok := bo.R.(*BinOp)
	require.True(t, ok)
	require.Equal(t, "+", add.Op)
	mul, ok := add.R.(*BinOp)
	require.True(t, ok)
	require.Equal(t, "*", mul.Op)
}

func TestParseParentheses(t *testing.T) {
	n, err := Parse("(x > 0)")
	require.NoError(t, err)
	_, ok := n.(*BinOp)
	require.True(t, ok)
}

func TestParseUnknownCharacterError(t *testing.T) {
	_, err := Parse("x ~ 1")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestParseTrailingGarbageError(t *testing.T) {
	_, err := Parse("x > 0 extra")
	require.Error(t, err)
}

// TestRoundTripProperty implements §8's round-trip property: parsing a CHECK
// string, serializing its AST, and re-parsing it yields an equivalent AST.
// On mismatch, a unified diff of the two serialized forms is produced via
// go-difflib to make the discrepancy legible.
func TestRoundTripProperty(t *testing.T) {
	exprs := []string{
		"x > 0",
		"v BETWEEN 1 AND 10",
		"status IN ('a', 'b', 'c')",
		"status NOT IN ('a', 'b')",
		"email LIKE '%@%'",
		"email NOT LIKE '%spam%'",
		"x IS NULL",
		"x IS NOT NULL",
		"EXTRACT(YEAR FROM d) = 2020",
		"d >= DATE('2020-01-01') AND d < DATE('2021-01-01')",
		"REGEXP_LIKE(email, '^[^@]+@[^@]+$')",
		"x > 0 AND y > 0 OR z = 1",
		"NOT (x = 1 AND y = 2)",
		"x = 1 + 2 * 3 - 4 / 2",
	}

	for _, src := range exprs {
		src := src
		t.Run(src, func(t *testing.T) {
			first, err := Parse(src)
			require.NoError(t, err)

			serialized := Serialize(first)
			second, err := Parse(serialized)
			require.NoError(t, err)

			reserialized := Serialize(second)
			if serialized != reserialized {
				diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
					A:        difflib.SplitLines(serialized),
					B:        difflib.SplitLines(reserialized),
					FromFile: "first-pass",
					ToFile:   "second-pass",
					Context:  2,
				})
				t.Fatalf("round-trip mismatch for %q:\n%s", src, diff)
			}
		})
	}
}
