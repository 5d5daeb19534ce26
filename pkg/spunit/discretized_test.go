package spunit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDefaultFeeLevels checks the first levels of the default table and the
// rounding of raw fees to them.
func TestDefaultFeeLevels(t *testing.T) {
	t.Parallel()

	levels := DefaultFeeLevels

	// Powers of 1.5 rounded to two significant digits, with 2.25 -> 2
	// dropped as a repeat of 1.5 -> 2.
	testCases := []struct {
		raw      Amount
		expected Amount
	}{
		{raw: 0, expected: 0},
		{raw: 1, expected: 1},
		{raw: 2, expected: 2},
		{raw: 3, expected: 3},
		{raw: 4, expected: 5},
		{raw: 6, expected: 8},
		{raw: 9, expected: 11},
		{raw: 12, expected: 17},
		{raw: MaxAmount, expected: MaxAmount},
		{raw: MaxAmount - 1, expected: MaxAmount},
	}

	for _, tc := range testCases {
		require.Equal(t, tc.expected, levels.RoundUp(tc.raw),
			"raw fee %d", tc.raw)
	}

	// The zero fee is the zero encoding.
	require.Equal(t, DiscretizedFee(0), levels.Discretize(0))

	// The invalid encoding has no value.
	_, ok := levels.Value(math.MaxUint8)
	require.False(t, ok)
}

// TestFeeLevelsMonotonic checks that a discretized fee never undercuts the
// raw fee and that the table is increasing.
func TestFeeLevelsMonotonic(t *testing.T) {
	t.Parallel()

	levels, err := NewFeeLevels(2, 1)
	require.NoError(t, err)
	require.Greater(t, levels.NumLevels(), 2)

	for i := 1; i < len(levels.values); i++ {
		require.Greater(t, levels.values[i], levels.values[i-1])
	}

	for raw := Amount(0); raw < 10_000; raw += 7 {
		require.GreaterOrEqual(t, levels.RoundUp(raw), raw)
	}
}

// TestNewFeeLevelsInvalid checks that bad parameters are rejected.
func TestNewFeeLevelsInvalid(t *testing.T) {
	t.Parallel()

	_, err := NewFeeLevels(0, 2)
	require.ErrorIs(t, err, ErrInvalidFeeLevels)

	_, err = NewFeeLevels(1.5, 0)
	require.ErrorIs(t, err, ErrInvalidFeeLevels)

	// A factor this close to one needs far more levels than fit in a
	// single byte.
	_, err = NewFeeLevels(1.01, 6)
	require.ErrorIs(t, err, ErrInvalidFeeLevels)
}
