package swap

import (
	"fmt"
	"regexp"
	"strings"

	"monad-swap/pkg/tokens"
)

// Pattern: <amount> <sell_symbol> TO <buy_symbol>
// Matches: "1 MON TO USDC", "1.5 WETH TO WMON", "100.25 USDC TO MON"
var commandPattern = regexp.MustCompile(`^(\d+\.?\d*)\s+([A-Z0-9]+)\s+TO\s+([A-Z0-9]+)$`)

// ParseTradeCommand parses a natural language trade command
// Examples:
//   - "swap 1 MON to USDC"
//   - "1.5 WETH to WMON"
//   - "100 USDC to MON"
func ParseTradeCommand(command string) (TradeIntent, error) {
	// Normalize the command
	command = strings.TrimSpace(strings.ToUpper(command))
	command = strings.TrimPrefix(command, "SWAP ")

	matches := commandPattern.FindStringSubmatch(command)
	if matches == nil {
		return TradeIntent{}, fmt.Errorf("invalid trade format. Expected: '<amount> <token> to <token>' (e.g., '1 MON to USDC')")
	}

	sellToken, err := tokens.LookupBySymbol(matches[2])
	if err != nil {
		return TradeIntent{}, err
	}
	buyToken, err := tokens.LookupBySymbol(matches[3])
	if err != nil {
		return TradeIntent{}, err
	}
	if sellToken.Address == buyToken.Address {
		return TradeIntent{}, fmt.Errorf("cannot swap %s for itself", sellToken.Symbol)
	}

	return TradeIntent{
		SellToken:  sellToken,
		BuyToken:   buyToken,
		SellAmount: matches[1],
		Direction:  DirectionSell,
	}, nil
}
