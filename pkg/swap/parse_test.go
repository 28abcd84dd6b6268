package swap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTradeCommand(t *testing.T) {
	tests := []struct {
		command    string
		sellSymbol string
		buySymbol  string
		amount     string
	}{
		{"1 MON to USDC", "MON", "USDC", "1"},
		{"swap 1 MON to USDC", "MON", "USDC", "1"},
		{"1.5 weth to wmon", "WETH", "WMON", "1.5"},
		{"100.25 USDC to MON", "USDC", "MON", "100.25"},
		{"  0.01 WBTC TO USDT  ", "WBTC", "USDT", "0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			intent, err := ParseTradeCommand(tt.command)
			require.NoError(t, err)
			assert.Equal(t, tt.sellSymbol, intent.SellToken.Symbol)
			assert.Equal(t, tt.buySymbol, intent.BuyToken.Symbol)
			assert.Equal(t, tt.amount, intent.SellAmount)
			assert.Equal(t, DirectionSell, intent.Direction)
		})
	}
}

func TestParseTradeCommandRejects(t *testing.T) {
	tests := []struct {
		name    string
		command string
	}{
		{"empty", ""},
		{"missing amount", "MON to USDC"},
		{"missing buy side", "1 MON to"},
		{"unknown token", "1 DOGE to USDC"},
		{"same token", "1 USDC to USDC"},
		{"negative amount", "-1 MON to USDC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTradeCommand(tt.command)
			assert.Error(t, err)
		})
	}
}
