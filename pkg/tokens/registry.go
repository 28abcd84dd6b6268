package tokens

import (
	"fmt"
	"strings"
)

// NativeTokenAddress is the sentinel address the swap API uses for the
// chain's native asset. Selling it requires no ERC-20 allowance and its
// balance is read from the account, not a token contract.
const NativeTokenAddress = "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"

// Token describes one tradeable asset on the target chain
type Token struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Address  string `json:"address"`
	Decimals int32  `json:"decimals"`
	ChainID  int64  `json:"chainId"`
	LogoURI  string `json:"logoURI"`
}

// IsNative reports whether the token is the chain's native asset.
func (t Token) IsNative() bool {
	return strings.EqualFold(t.Address, NativeTokenAddress)
}

// monadTokens is the static token table for Monad testnet. Addresses come
// from docs.monad.xyz.
var monadTokens = []Token{
	{
		ChainID:  10143,
		Name:     "Monad",
		Symbol:   "MON",
		Decimals: 18,
		Address:  NativeTokenAddress,
		LogoURI:  "https://assets.coingecko.com/coins/images/34503/small/monad.jpg",
	},
	{
		ChainID:  10143,
		Name:     "Wrapped Monad",
		Symbol:   "WMON",
		Decimals: 18,
		Address:  "0x760afe86e5de5fa0ee542fc7b7b713e1c5425701",
		LogoURI:  "https://assets.coingecko.com/coins/images/34503/small/monad.jpg",
	},
	{
		ChainID:  10143,
		Name:     "USD Coin",
		Symbol:   "USDC",
		Decimals: 6,
		Address:  "0xf817257fed379853cDe0fa4F97AB987181B1E5Ea",
		LogoURI:  "https://raw.githubusercontent.com/trustwallet/assets/master/blockchains/ethereum/assets/0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48/logo.png",
	},
	{
		ChainID:  10143,
		Name:     "Wrapped Ethereum",
		Symbol:   "WETH",
		Decimals: 18,
		Address:  "0xB5a30b0FDc5EA94A52fDc42e3E9760Cb8449Fb37",
		LogoURI:  "https://raw.githubusercontent.com/trustwallet/assets/master/blockchains/ethereum/assets/0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2/logo.png",
	},
	{
		ChainID:  10143,
		Name:     "Tether USD",
		Symbol:   "USDT",
		Decimals: 6,
		Address:  "0x88b8E2161DEDC77EF4ab7585569D2415a1C1055D",
		LogoURI:  "https://raw.githubusercontent.com/trustwallet/assets/master/blockchains/ethereum/assets/0xdAC17F958D2ee523a2206206994597C13D831ec7/logo.png",
	},
	{
		ChainID:  10143,
		Name:     "Wrapped Bitcoin",
		Symbol:   "WBTC",
		Decimals: 8,
		Address:  "0xcf5a6076cfa32686c0Df13aBaDa2b40dec133F1d",
		LogoURI:  "https://raw.githubusercontent.com/trustwallet/assets/master/blockchains/ethereum/assets/0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599/logo.png",
	},
}

var (
	tokensBySymbol  map[string]Token
	tokensByAddress map[string]Token
)

func init() {
	tokensBySymbol = make(map[string]Token, len(monadTokens))
	tokensByAddress = make(map[string]Token, len(monadTokens))
	for _, token := range monadTokens {
		tokensBySymbol[strings.ToLower(token.Symbol)] = token
		tokensByAddress[strings.ToLower(token.Address)] = token
	}
}

// List returns all known tokens in declaration order
func List() []Token {
	out := make([]Token, len(monadTokens))
	copy(out, monadTokens)
	return out
}

// LookupBySymbol finds a token by its symbol, case-insensitively
func LookupBySymbol(symbol string) (Token, error) {
	token, ok := tokensBySymbol[strings.ToLower(strings.TrimSpace(symbol))]
	if !ok {
		return Token{}, fmt.Errorf("token '%s' not found", symbol)
	}
	return token, nil
}

// LookupByAddress finds a token by its chain address, case-insensitively
func LookupByAddress(address string) (Token, error) {
	token, ok := tokensByAddress[strings.ToLower(strings.TrimSpace(address))]
	if !ok {
		return Token{}, fmt.Errorf("no token at address '%s'", address)
	}
	return token, nil
}
