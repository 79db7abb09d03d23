package value

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUnifyPrefersDateOverNumeric(t *testing.T) {
	u := Unify(NewText("2024-01-02"), NewText("2024-03-04"))
	require.Equal(t, "date", u.Mode)
	require.True(t, u.LDate.Before(u.RDate))
}

func TestUnifyFallsBackToNumeric(t *testing.T) {
	u := Unify(NewInt(3), NewReal(4.5))
	require.Equal(t, "numeric", u.Mode)
	require.Equal(t, 3.0, u.LNum)
	require.Equal(t, 4.5, u.RNum)
}

func TestUnifyFallsBackToRaw(t *testing.T) {
	u := Unify(NewText("abc"), NewText("abd"))
	require.Equal(t, "raw", u.Mode)
}

func TestCompareOrdersByMode(t *testing.T) {
	c, ok := Compare(NewInt(1), NewInt(2))
	require.True(t, ok)
	require.Equal(t, -1, c)

	c, ok = Compare(NewText("b"), NewText("a"))
	require.True(t, ok)
	require.Equal(t, 1, c)
}

func TestEqualTreatsNullAsOnlyEqualToNull(t *testing.T) {
	require.True(t, Equal(NewNull(), NewNull()))
	require.False(t, Equal(NewNull(), NewInt(0)))
	require.False(t, Equal(NewInt(0), NewNull()))
	require.True(t, Equal(NewInt(5), NewReal(5)))
}

func TestFormatDateTimeLayouts(t *testing.T) {
	ts := time.Date(2024, 6, 7, 8, 9, 10, 0, time.UTC)
	require.Equal(t, "2024-06-07", FormatDate(ts))
	require.Equal(t, "2024-06-07 08:09:10", FormatDateTime(ts))
	require.Equal(t, "08:09:10", FormatTime(ts))
}

func TestStringRendersPerKind(t *testing.T) {
	require.Equal(t, "NULL", NewNull().String())
	require.Equal(t, "TRUE", NewBool(true).String())
	require.Equal(t, "FALSE", NewBool(false).String())
	require.Equal(t, "42", NewInt(42).String())
	require.Equal(t, "hello", NewText("hello").String())
}

func TestAsNumericCoercesTextDigits(t *testing.T) {
	f, ok := AsNumeric(NewText("12.5"))
	require.True(t, ok)
	require.Equal(t, 12.5, f)

	_, ok = AsNumeric(NewText("not-a-number"))
	require.False(t, ok)
}
