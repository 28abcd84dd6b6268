package swap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSmallestUnit(t *testing.T) {
	tests := []struct {
		amount   string
		decimals int32
		want     string
	}{
		{"1", 6, "1000000"},
		{"1.5", 6, "1500000"},
		{"0.000001", 6, "1"},
		{"1", 18, "1000000000000000000"},
		{"0.25", 8, "25000000"},
		{"0", 18, "0"},
		// Dust beyond the token's precision truncates.
		{"0.0000019", 6, "1"},
	}

	for _, tc := range tests {
		got, err := ToSmallestUnit(tc.amount, tc.decimals)
		require.NoError(t, err, "amount %s", tc.amount)
		assert.Equal(t, tc.want, got.String(), "amount %s at %d decimals", tc.amount, tc.decimals)
	}
}

func TestToSmallestUnitRejectsBadInput(t *testing.T) {
	for _, amount := range []string{"", "abc", "1.2.3", "-1"} {
		_, err := ToSmallestUnit(amount, 18)
		assert.Error(t, err, "amount %q", amount)
	}
}

func TestRoundTrip(t *testing.T) {
	amounts := []string{"1", "1.5", "0.000001", "123456.789", "0.00000001"}
	for _, decimals := range []int32{6, 8, 18} {
		for _, amount := range amounts {
			smallest, err := ToSmallestUnit(amount, decimals)
			require.NoError(t, err)
			if smallest.Sign() == 0 {
				// Below the token's precision; nothing to round-trip.
				continue
			}

			human, err := FromSmallestUnit(smallest.String(), decimals)
			require.NoError(t, err)

			back, err := ToSmallestUnit(human, decimals)
			require.NoError(t, err)
			assert.Equal(t, smallest.String(), back.String(),
				"round trip of %s at %d decimals", amount, decimals)
		}
	}
}

func TestFromSmallestUnit(t *testing.T) {
	human, err := FromSmallestUnit("2500000", 6)
	require.NoError(t, err)
	assert.Equal(t, "2.5", human)

	human, err = FromSmallestUnit("1000000000000000000", 18)
	require.NoError(t, err)
	assert.Equal(t, "1", human)

	_, err = FromSmallestUnit("not-a-number", 6)
	assert.Error(t, err)
}
