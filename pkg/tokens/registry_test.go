package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupBySymbol(t *testing.T) {
	for _, symbol := range []string{"usdc", "USDC", "Usdc", " usdc "} {
		token, err := LookupBySymbol(symbol)
		require.NoError(t, err, "symbol %q", symbol)
		assert.Equal(t, "USDC", token.Symbol)
		assert.Equal(t, int32(6), token.Decimals)
	}

	_, err := LookupBySymbol("DOGE")
	assert.Error(t, err)
}

func TestLookupByAddress(t *testing.T) {
	usdc, err := LookupBySymbol("usdc")
	require.NoError(t, err)

	// Address lookup must not depend on hex casing.
	token, err := LookupByAddress("0XF817257FED379853CDE0FA4F97AB987181B1E5EA")
	require.NoError(t, err)
	assert.Equal(t, usdc, token)

	_, err = LookupByAddress("0x0000000000000000000000000000000000000000")
	assert.Error(t, err)
}

func TestListOrderAndNative(t *testing.T) {
	list := List()
	require.NotEmpty(t, list)

	// The native asset leads the table and is the only native entry.
	assert.Equal(t, "MON", list[0].Symbol)
	assert.True(t, list[0].IsNative())
	for _, token := range list[1:] {
		assert.False(t, token.IsNative(), "token %s", token.Symbol)
	}
}

func TestListIsACopy(t *testing.T) {
	list := List()
	list[0].Symbol = "MUTATED"

	fresh := List()
	assert.Equal(t, "MON", fresh[0].Symbol)
}
