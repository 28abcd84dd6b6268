package swap

import (
	"math/big"

	"monad-swap/pkg/tokens"
	"monad-swap/pkg/zeroex"
)

// State is the orchestrator's position in the swap lifecycle
type State string

const (
	StateIdle         State = "idle"          // no complete trade intent
	StatePriceLoading State = "price_loading" // debounce armed or price fetch in flight
	StatePriceReady   State = "price_ready"   // indicative price displayed
	StateApproving    State = "approving"     // allowance approval transaction in flight
	StateQuoteLoading State = "quote_loading" // trade finalized, firm quote in flight
	StateQuoteReady   State = "quote_ready"   // firm quote ready to sign and send
	StateQuoteFailed  State = "quote_failed"  // firm quote fetch failed; back returns to price
	StateSubmitting   State = "submitting"    // swap transaction being signed and broadcast
	StateConfirming   State = "confirming"    // transaction broadcast, waiting for the receipt
	StateConfirmed    State = "confirmed"     // transaction mined successfully
)

// Finalized reports whether the user has locked in the displayed price and
// the flow is working with (or towards) a firm quote.
func (s State) Finalized() bool {
	return s == StateQuoteLoading || s == StateQuoteReady || s == StateQuoteFailed
}

// TradeDirection names which side of the trade the user is editing
type TradeDirection string

const (
	DirectionSell TradeDirection = "sell" // user edits the sell amount; buy amount is derived
	DirectionBuy  TradeDirection = "buy"  // reserved; the permit2 surface is sell-denominated
)

// TradeIntent is the user's current trade input. The amount on the side
// opposite to Direction is derived from the price, never edited directly.
type TradeIntent struct {
	SellToken  tokens.Token
	BuyToken   tokens.Token
	SellAmount string
	Direction  TradeDirection
}

// Action is the single enabled control for the current state
type Action string

const (
	ActionNone    Action = ""             // nothing actionable (loading, terminal, or blocked)
	ActionApprove Action = "approve"      // grant the settlement contract an allowance
	ActionReview  Action = "review_trade" // finalize the displayed price
	ActionPlace   Action = "place_order"  // sign and broadcast the firm quote
	ActionBack    Action = "back"         // leave the finalized flow after a quote failure
)

// Snapshot is an immutable view of the orchestrator for rendering. All
// derived values (buy amount, gates, next action) are computed at snapshot
// time from the single source of truth.
type Snapshot struct {
	State  State
	Intent TradeIntent

	// Price display
	BuyAmount    string // human units, empty while loading or on error
	BuyTokenTax  zeroex.TokenTax
	SellTokenTax zeroex.TokenTax

	// Gates
	InsufficientBalance bool
	BalanceKnown        bool
	NeedsApproval       bool

	// The one action currently available, ActionNone if the UI should only
	// render state.
	NextAction Action

	Errors     []string
	QuoteError string

	TxHash string // set once broadcast
}

// priceView is the internal result of a completed price fetch, kept together
// so a stale fetch can be dropped atomically.
type priceView struct {
	price        *zeroex.PriceResponse
	buyAmount    string
	buyTokenTax  zeroex.TokenTax
	sellTokenTax zeroex.TokenTax
	sellBalance  *big.Int // nil when the balance read failed
	allowance    *big.Int // nil when not applicable or unread
}

var zeroTax = zeroex.TokenTax{BuyTaxBps: "0", SellTaxBps: "0"}
