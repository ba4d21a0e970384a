package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	t.Run("plain number", func(t *testing.T) {
		amt, err := ParseAmount("3000")
		require.NoError(t, err)
		assert.True(t, amt.Equal(decimal.NewFromInt(3000)))
	})

	t.Run("indian grouping with rupee prefix", func(t *testing.T) {
		amt, err := ParseAmount("Rs. 1,23,456.50")
		require.NoError(t, err)
		assert.Equal(t, "123456.5", amt.String())
	})

	t.Run("trailing slash notation", func(t *testing.T) {
		amt, err := ParseAmount("3000/-")
		require.NoError(t, err)
		assert.True(t, amt.Equal(decimal.NewFromInt(3000)))
	})

	t.Run("no digits at all", func(t *testing.T) {
		_, err := ParseAmount("not a number")
		assert.ErrorIs(t, err, ErrNotNumeric)
	})

	t.Run("empty string", func(t *testing.T) {
		_, err := ParseAmount("")
		assert.ErrorIs(t, err, ErrNotNumeric)
	})

	t.Run("multiple decimal points fail", func(t *testing.T) {
		_, err := ParseAmount("1.2.3")
		assert.ErrorIs(t, err, ErrNotNumeric)
	})
}

func TestFormat(t *testing.T) {
	t.Run("renders INR with two minor units", func(t *testing.T) {
		out := Format(decimal.NewFromInt(4500), INR)
		assert.Contains(t, out, "4,500.00")
	})

	t.Run("unknown currency falls back to INR", func(t *testing.T) {
		out := Format(decimal.NewFromInt(100), "NOPE")
		assert.Contains(t, out, "100.00")
	})

	t.Run("rounds fractional paise", func(t *testing.T) {
		amt := decimal.RequireFromString("12.345")
		out := Format(amt, INR)
		assert.Contains(t, out, "12.35")
	})
}

func TestParseFormatRoundTrip(t *testing.T) {
	amt, err := ParseAmount(Format(decimal.RequireFromString("9876.50"), INR))
	require.NoError(t, err)
	assert.Equal(t, "9876.5", amt.String())
}
