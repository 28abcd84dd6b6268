package zeroex

import "encoding/json"

// The payload shapes below mirror the 0x swap/permit2 API v2 and are treated
// as a fixed external contract.

// AllowanceIssue reports that the taker's current allowance for the
// settlement spender does not cover the sell amount.
type AllowanceIssue struct {
	Actual  string `json:"actual"`
	Spender string `json:"spender"`
}

// BalanceIssue reports that the taker's balance does not cover the sell amount.
type BalanceIssue struct {
	Token    string `json:"token"`
	Actual   string `json:"actual"`
	Expected string `json:"expected"`
}

// Issues carries the problems the upstream detected with a trade. Either
// field may be null.
type Issues struct {
	Allowance *AllowanceIssue `json:"allowance"`
	Balance   *BalanceIssue   `json:"balance"`
}

// TokenTax holds per-token transfer taxes in basis points
type TokenTax struct {
	BuyTaxBps  string `json:"buyTaxBps"`
	SellTaxBps string `json:"sellTaxBps"`
}

// TokenMetadata carries tax information for both sides of the trade
type TokenMetadata struct {
	BuyToken  TokenTax `json:"buyToken"`
	SellToken TokenTax `json:"sellToken"`
}

// ValidationError is a field-level rejection embedded in an otherwise
// successful response.
type ValidationError struct {
	Field  string `json:"field"`
	Code   int    `json:"code"`
	Reason string `json:"reason"`
}

// PriceResponse is the indicative price returned by /swap/permit2/price
type PriceResponse struct {
	SellToken        string            `json:"sellToken"`
	BuyToken         string            `json:"buyToken"`
	SellAmount       string            `json:"sellAmount"`
	BuyAmount        string            `json:"buyAmount"`
	Issues           Issues            `json:"issues"`
	TokenMetadata    TokenMetadata     `json:"tokenMetadata"`
	ValidationErrors []ValidationError `json:"validationErrors,omitempty"`
}

// Transaction is the ready-to-send call a firm quote settles through
type Transaction struct {
	To       string `json:"to"`
	Data     string `json:"data"`
	Gas      string `json:"gas"`
	GasPrice string `json:"gasPrice"`
	Value    string `json:"value"`
}

// Permit2 carries the typed-data message the taker must sign off-chain. The
// EIP-712 payload is kept raw: it is signed exactly as received, never
// rebuilt.
type Permit2 struct {
	Type   string          `json:"type"`
	Hash   string          `json:"hash"`
	EIP712 json.RawMessage `json:"eip712"`
}

// QuoteResponse is the firm quote returned by /swap/permit2/quote. It extends
// the price shape with executable transaction data.
type QuoteResponse struct {
	PriceResponse
	Transaction Transaction `json:"transaction"`
	Permit2     *Permit2    `json:"permit2,omitempty"`
}

// SwapParams is the query parameter set shared by price and quote requests
type SwapParams struct {
	ChainID               string
	SellToken             string
	BuyToken              string
	SellAmount            string
	Taker                 string
	SwapFeeRecipient      string
	SwapFeeBps            string
	SwapFeeToken          string
	TradeSurplusRecipient string
}
