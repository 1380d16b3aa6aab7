package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound2_HalfUp(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"10.005", "10.01"},
		{"10.004", "10"},
		{"0.125", "0.13"},
		{"1799.995", "1800"},
		{"0", "0"},
	}
	for _, c := range cases {
		got := Round2(decimal.RequireFromString(c.in))
		assert.True(t, got.Equal(decimal.RequireFromString(c.want)), "Round2(%s) = %s, want %s", c.in, got, c.want)
	}
}

func TestPercent(t *testing.T) {
	assert.True(t, Percent(MustParse("15000"), MustParse("12")).Equal(MustParse("1800")))
	assert.True(t, Percent(MustParse("20000"), MustParse("0.75")).Equal(MustParse("150")))
	assert.True(t, Percent(MustParse("333.33"), MustParse("3.25")).Equal(MustParse("10.83")))
	assert.True(t, Percent(decimal.Zero, MustParse("12")).IsZero())
}

func TestSumAndNonNegative(t *testing.T) {
	total := Sum(MustParse("0.10"), MustParse("0.20"), MustParse("0.30"))
	assert.Equal(t, "0.6", total.String())
	assert.True(t, NonNegative(MustParse("-5")).IsZero())
	assert.True(t, NonNegative(MustParse("5")).Equal(MustParse("5")))
}

func TestParse(t *testing.T) {
	d, err := Parse("1234.567")
	require.NoError(t, err)
	assert.Equal(t, "1234.57", d.StringFixed(2))

	_, err = Parse("12,00")
	assert.Error(t, err)
}
