package swap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	"monad-swap/pkg/tokens"
	"monad-swap/pkg/wallet"
	"monad-swap/pkg/zeroex"
)

// DefaultDebounce is the pause between an intent edit and the price fetch.
const DefaultDebounce = 500 * time.Millisecond

// QuoteClient fetches indicative prices and firm quotes
type QuoteClient interface {
	GetPrice(ctx context.Context, params zeroex.SwapParams) (*zeroex.PriceResponse, error)
	GetQuote(ctx context.Context, params zeroex.SwapParams) (*zeroex.QuoteResponse, error)
}

// Signer is the wallet-integration layer the orchestrator drives. It is
// satisfied by wallet.Wallet.
type Signer interface {
	Address() common.Address
	NativeBalance(ctx context.Context) (*big.Int, error)
	TokenBalance(ctx context.Context, token common.Address) (*big.Int, error)
	Allowance(ctx context.Context, token, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (common.Hash, error)
	SignTypedData(raw json.RawMessage) ([]byte, error)
	SendSwap(ctx context.Context, to common.Address, callData []byte, gas uint64, value *big.Int) (common.Hash, error)
	WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Options configures the orchestrator's fixed request parameters
type Options struct {
	ChainID      int64
	FeeRecipient string
	FeeBps       string
	Debounce     time.Duration
}

// Orchestrator drives one trade through the swap lifecycle: debounced price
// fetches, the allowance/approval decision, firm-quote finalization, permit
// signing, and transaction submission. It is the single source of truth for
// the flow; views render Snapshot and never hold derived state.
type Orchestrator struct {
	client QuoteClient
	signer Signer
	opts   Options
	logger zerolog.Logger

	mu     sync.Mutex
	state  State
	intent TradeIntent

	view       priceView
	quote      *zeroex.QuoteResponse
	frozen     *zeroex.PriceResponse // snapshot the firm quote was requested for
	errs       []string
	quoteError string
	txHash     common.Hash

	// generation counts intent edits. A fetch result may only be applied
	// while the generation it was issued under is still current; this is the
	// stale-write guard in place of locking across suspension points.
	generation  uint64
	debounce    *time.Timer
	cancelFetch context.CancelFunc

	onChange func(Snapshot)
}

// NewOrchestrator creates an orchestrator for one account and token pair
// selection.
func NewOrchestrator(client QuoteClient, signer Signer, opts Options, logger zerolog.Logger) *Orchestrator {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Orchestrator{
		client: client,
		signer: signer,
		opts:   opts,
		logger: logger,
		state:  StateIdle,
		intent: TradeIntent{Direction: DirectionSell},
		view:   priceView{buyTokenTax: zeroTax, sellTokenTax: zeroTax},
	}
}

// OnChange registers a callback invoked after every state change. The
// callback runs outside the orchestrator's lock.
func (o *Orchestrator) OnChange(fn func(Snapshot)) {
	o.mu.Lock()
	o.onChange = fn
	o.mu.Unlock()
}

// SetSellToken updates the sell side of the trade intent
func (o *Orchestrator) SetSellToken(token tokens.Token) {
	o.edit(func() { o.intent.SellToken = token })
}

// SetBuyToken updates the buy side of the trade intent
func (o *Orchestrator) SetBuyToken(token tokens.Token) {
	o.edit(func() { o.intent.BuyToken = token })
}

// SetSellAmount updates the human-readable sell amount
func (o *Orchestrator) SetSellAmount(amount string) {
	o.edit(func() {
		o.intent.SellAmount = amount
		o.intent.Direction = DirectionSell
	})
}

// edit applies an intent mutation, invalidates everything derived from the
// previous intent, and re-arms the debounce timer.
func (o *Orchestrator) edit(mutate func()) {
	o.mu.Lock()

	// Once a transaction is broadcast the flow cannot be redirected; edits
	// after confirmation start a fresh trade.
	if o.state == StateSubmitting || o.state == StateConfirming {
		o.mu.Unlock()
		return
	}

	mutate()
	o.invalidateLocked()

	if !o.intentCompleteLocked() {
		o.state = StateIdle
		snap := o.snapshotLocked()
		o.mu.Unlock()
		o.emit(snap)
		return
	}

	o.state = StatePriceLoading
	gen := o.generation
	o.debounce = time.AfterFunc(o.opts.Debounce, func() {
		o.firePriceFetch(gen)
	})

	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.emit(snap)
}

// invalidateLocked cancels in-flight work and clears every value derived
// from the previous intent. Callers hold the lock.
func (o *Orchestrator) invalidateLocked() {
	o.generation++
	if o.debounce != nil {
		o.debounce.Stop()
		o.debounce = nil
	}
	if o.cancelFetch != nil {
		o.cancelFetch()
		o.cancelFetch = nil
	}
	o.view = priceView{buyTokenTax: zeroTax, sellTokenTax: zeroTax}
	o.quote = nil
	o.frozen = nil
	o.errs = nil
	o.quoteError = ""
	o.txHash = common.Hash{}
}

func (o *Orchestrator) intentCompleteLocked() bool {
	return o.intent.SellToken.Symbol != "" &&
		o.intent.BuyToken.Symbol != "" &&
		o.intent.SellAmount != "" &&
		o.intent.Direction == DirectionSell &&
		o.signer.Address() != (common.Address{})
}

// firePriceFetch runs at debounce expiry and issues the price request for
// the values current at fire time.
func (o *Orchestrator) firePriceFetch(gen uint64) {
	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return
	}

	sellAmount, err := ToSmallestUnit(o.intent.SellAmount, o.intent.SellToken.Decimals)
	if err != nil {
		o.state = StateIdle
		o.errs = []string{err.Error()}
		snap := o.snapshotLocked()
		o.mu.Unlock()
		o.emit(snap)
		return
	}

	params := o.paramsLocked(sellAmount.String())
	sellToken := o.intent.SellToken
	buyToken := o.intent.BuyToken

	ctx, cancel := context.WithCancel(context.Background())
	o.cancelFetch = cancel
	o.mu.Unlock()

	go o.fetchPrice(ctx, gen, params, sellToken, buyToken)
}

func (o *Orchestrator) paramsLocked(sellAmount string) zeroex.SwapParams {
	return zeroex.SwapParams{
		ChainID:               strconv.FormatInt(o.opts.ChainID, 10),
		SellToken:             o.intent.SellToken.Address,
		BuyToken:              o.intent.BuyToken.Address,
		SellAmount:            sellAmount,
		Taker:                 o.signer.Address().Hex(),
		SwapFeeRecipient:      o.opts.FeeRecipient,
		SwapFeeBps:            o.opts.FeeBps,
		SwapFeeToken:          o.intent.BuyToken.Address,
		TradeSurplusRecipient: o.opts.FeeRecipient,
	}
}

// fetchPrice performs the price request plus the balance and allowance reads
// that hang off it, then applies the result if it is still current.
func (o *Orchestrator) fetchPrice(ctx context.Context, gen uint64, params zeroex.SwapParams, sellToken, buyToken tokens.Token) {
	price, err := o.client.GetPrice(ctx, params)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return // superseded by a newer edit, not an error
		}
		o.applyPriceError(gen, err)
		return
	}

	if len(price.ValidationErrors) > 0 {
		msgs := make([]string, 0, len(price.ValidationErrors))
		for _, ve := range price.ValidationErrors {
			msgs = append(msgs, ve.Reason)
		}
		o.applyPriceErrors(gen, msgs)
		return
	}

	buyAmount, err := FromSmallestUnit(price.BuyAmount, buyToken.Decimals)
	if err != nil {
		o.applyPriceError(gen, fmt.Errorf("malformed buy amount in price: %w", err))
		return
	}

	view := priceView{
		price:        price,
		buyAmount:    buyAmount,
		buyTokenTax:  taxOrZero(price.TokenMetadata.BuyToken),
		sellTokenTax: taxOrZero(price.TokenMetadata.SellToken),
	}

	// Balance gates the review/approve action. A failed read leaves the
	// balance unknown, which keeps the action disabled.
	if balance, err := o.sellBalance(ctx, sellToken); err == nil {
		view.sellBalance = balance
	} else if !errors.Is(err, context.Canceled) {
		o.logger.Warn().Err(err).Msg("balance read failed")
	}

	// The native asset never needs an allowance; otherwise read it for the
	// spender the price named.
	if !sellToken.IsNative() && price.Issues.Allowance != nil {
		spender := common.HexToAddress(price.Issues.Allowance.Spender)
		if allowance, err := o.signer.Allowance(ctx, common.HexToAddress(sellToken.Address), spender); err == nil {
			view.allowance = allowance
		} else if !errors.Is(err, context.Canceled) {
			o.logger.Warn().Err(err).Msg("allowance read failed")
		}
	}

	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return
	}
	o.view = view
	o.errs = nil
	o.state = StatePriceReady
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.emit(snap)
}

func (o *Orchestrator) sellBalance(ctx context.Context, sellToken tokens.Token) (*big.Int, error) {
	if sellToken.IsNative() {
		return o.signer.NativeBalance(ctx)
	}
	return o.signer.TokenBalance(ctx, common.HexToAddress(sellToken.Address))
}

func (o *Orchestrator) applyPriceError(gen uint64, err error) {
	o.applyPriceErrors(gen, []string{err.Error()})
}

func (o *Orchestrator) applyPriceErrors(gen uint64, msgs []string) {
	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return
	}
	o.view = priceView{buyTokenTax: zeroTax, sellTokenTax: zeroTax}
	o.errs = msgs
	o.state = StateIdle
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.emit(snap)
}

// Approve grants the settlement spender an effectively-unlimited allowance,
// waits for the approval to mine, and re-reads the allowance. It blocks
// until done.
func (o *Orchestrator) Approve(ctx context.Context) error {
	o.mu.Lock()
	if o.state != StatePriceReady {
		o.mu.Unlock()
		return fmt.Errorf("nothing to approve in state %s", o.state)
	}
	snap := o.snapshotLocked()
	if !snap.NeedsApproval {
		o.mu.Unlock()
		return fmt.Errorf("no approval required")
	}
	gen := o.generation
	sellToken := common.HexToAddress(o.intent.SellToken.Address)
	spender := common.HexToAddress(o.view.price.Issues.Allowance.Spender)
	o.state = StateApproving
	snap = o.snapshotLocked()
	o.mu.Unlock()
	o.emit(snap)

	err := o.runApproval(ctx, gen, sellToken, spender)

	o.mu.Lock()
	if gen != o.generation {
		// The user edited the trade while approving; the new intent owns
		// the state now.
		o.mu.Unlock()
		return err
	}
	o.state = StatePriceReady
	if err != nil {
		o.errs = append(o.errs, err.Error())
	}
	snap = o.snapshotLocked()
	o.mu.Unlock()
	o.emit(snap)
	return err
}

func (o *Orchestrator) runApproval(ctx context.Context, gen uint64, token, spender common.Address) error {
	hash, err := o.signer.Approve(ctx, token, spender, wallet.MaxAllowance)
	if err != nil {
		return fmt.Errorf("approval failed: %w", err)
	}

	if _, err := o.signer.WaitMined(ctx, hash); err != nil {
		return fmt.Errorf("approval not confirmed: %w", err)
	}

	allowance, err := o.signer.Allowance(ctx, token, spender)
	if err != nil {
		return fmt.Errorf("failed to re-read allowance: %w", err)
	}

	o.mu.Lock()
	if gen == o.generation {
		o.view.allowance = allowance
	}
	o.mu.Unlock()
	return nil
}

// Finalize locks in the displayed price and requests a firm quote for
// exactly that snapshot. Live form state is not consulted again; an edit
// while the quote is loading discards it.
func (o *Orchestrator) Finalize() error {
	o.mu.Lock()
	if o.state != StatePriceReady || o.view.price == nil {
		o.mu.Unlock()
		return fmt.Errorf("no price to finalize")
	}
	snap := o.snapshotLocked()
	if snap.NextAction != ActionReview {
		o.mu.Unlock()
		return fmt.Errorf("trade is not ready to review")
	}

	frozen := o.view.price
	o.frozen = frozen
	o.quoteError = ""
	o.state = StateQuoteLoading
	gen := o.generation

	params := zeroex.SwapParams{
		ChainID:               strconv.FormatInt(o.opts.ChainID, 10),
		SellToken:             frozen.SellToken,
		BuyToken:              frozen.BuyToken,
		SellAmount:            frozen.SellAmount,
		Taker:                 o.signer.Address().Hex(),
		SwapFeeRecipient:      o.opts.FeeRecipient,
		SwapFeeBps:            o.opts.FeeBps,
		SwapFeeToken:          frozen.BuyToken,
		TradeSurplusRecipient: o.opts.FeeRecipient,
	}

	ctx, cancel := context.WithCancel(context.Background())
	o.cancelFetch = cancel

	snap = o.snapshotLocked()
	o.mu.Unlock()
	o.emit(snap)

	go o.fetchQuote(ctx, gen, params)
	return nil
}

func (o *Orchestrator) fetchQuote(ctx context.Context, gen uint64, params zeroex.SwapParams) {
	quote, err := o.client.GetQuote(ctx, params)

	o.mu.Lock()
	if gen != o.generation || !o.state.Finalized() {
		o.mu.Unlock()
		return
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			o.mu.Unlock()
			return
		}
		o.quoteError = err.Error()
		o.state = StateQuoteFailed
	} else {
		o.quote = quote
		o.state = StateQuoteReady
	}
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.emit(snap)
}

// Back leaves the finalized flow and returns to the price display,
// discarding any firm quote.
func (o *Orchestrator) Back() {
	o.mu.Lock()
	if !o.state.Finalized() {
		o.mu.Unlock()
		return
	}
	o.generation++ // drop any in-flight quote
	if o.cancelFetch != nil {
		o.cancelFetch()
		o.cancelFetch = nil
	}
	o.quote = nil
	o.frozen = nil
	o.quoteError = ""
	o.state = StatePriceReady
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.emit(snap)
}

// Submit signs the permit message when the firm quote requires one, appends
// the signature to the call data, broadcasts the transaction, and waits for
// it to mine. A signing failure aborts before anything is sent.
func (o *Orchestrator) Submit(ctx context.Context) (common.Hash, error) {
	o.mu.Lock()
	if o.state != StateQuoteReady || o.quote == nil {
		o.mu.Unlock()
		return common.Hash{}, fmt.Errorf("no firm quote to submit")
	}
	quote := o.quote
	gen := o.generation
	o.mu.Unlock()

	callData, err := wallet.DecodeCallData(quote.Transaction.Data)
	if err != nil {
		return common.Hash{}, err
	}

	// The transaction must never go out unsigned when a permit is required:
	// a failed signature aborts the whole attempt and the quote stays ready
	// for a retry.
	if quote.Permit2 != nil && len(quote.Permit2.EIP712) > 0 {
		signature, err := o.signer.SignTypedData(quote.Permit2.EIP712)
		if err != nil {
			return common.Hash{}, fmt.Errorf("permit signing failed: %w", err)
		}
		callData = AppendSignature(callData, signature)
	}

	gas := cast.ToUint64(quote.Transaction.Gas) // zero falls back to estimation
	value := parseValue(quote.Transaction.Value)

	if !o.transition(gen, StateQuoteReady, StateSubmitting) {
		return common.Hash{}, fmt.Errorf("trade changed during submission")
	}

	hash, err := o.signer.SendSwap(ctx, common.HexToAddress(quote.Transaction.To), callData, gas, value)
	if err != nil {
		o.transition(gen, StateSubmitting, StateQuoteReady)
		return common.Hash{}, fmt.Errorf("failed to submit swap: %w", err)
	}

	o.mu.Lock()
	o.txHash = hash
	o.state = StateConfirming
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.emit(snap)

	if _, err := o.signer.WaitMined(ctx, hash); err != nil {
		// The transaction is out; confirmation state is whatever the chain
		// says. Leave the flow in Confirming so the caller can keep
		// checking by hash.
		return hash, fmt.Errorf("swap %s: %w", hash.Hex(), err)
	}

	o.mu.Lock()
	o.state = StateConfirmed
	snap = o.snapshotLocked()
	o.mu.Unlock()
	o.emit(snap)
	return hash, nil
}

// transition moves from one state to another iff the generation and source
// state still hold.
func (o *Orchestrator) transition(gen uint64, from, to State) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation || o.state != from {
		return false
	}
	o.state = to
	return true
}

// Snapshot returns the current view of the flow
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// snapshotLocked recomputes every derived value from the current state.
func (o *Orchestrator) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:        o.state,
		Intent:       o.intent,
		BuyAmount:    o.view.buyAmount,
		BuyTokenTax:  o.view.buyTokenTax,
		SellTokenTax: o.view.sellTokenTax,
		Errors:       append([]string(nil), o.errs...),
		QuoteError:   o.quoteError,
	}
	if o.txHash != (common.Hash{}) {
		snap.TxHash = o.txHash.Hex()
	}

	snap.BalanceKnown = o.view.sellBalance != nil
	if o.view.price != nil {
		required, err := ToSmallestUnit(o.intent.SellAmount, o.intent.SellToken.Decimals)
		if err != nil || !snap.BalanceKnown {
			snap.InsufficientBalance = true
		} else {
			snap.InsufficientBalance = required.Cmp(o.view.sellBalance) > 0
		}
	}

	snap.NeedsApproval = o.needsApprovalLocked()
	snap.NextAction = o.nextActionLocked(snap)
	return snap
}

func (o *Orchestrator) needsApprovalLocked() bool {
	if o.intent.SellToken.IsNative() {
		return false
	}
	if o.view.price == nil || o.view.price.Issues.Allowance == nil {
		return false
	}
	return o.view.allowance != nil && o.view.allowance.Sign() == 0
}

func (o *Orchestrator) nextActionLocked(snap Snapshot) Action {
	switch o.state {
	case StatePriceReady:
		if o.view.price == nil || snap.InsufficientBalance {
			return ActionNone
		}
		if snap.NeedsApproval {
			return ActionApprove
		}
		return ActionReview
	case StateQuoteReady:
		return ActionPlace
	case StateQuoteFailed:
		return ActionBack
	default:
		return ActionNone
	}
}

func (o *Orchestrator) emit(snap Snapshot) {
	o.mu.Lock()
	fn := o.onChange
	o.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

func taxOrZero(tax zeroex.TokenTax) zeroex.TokenTax {
	if tax.BuyTaxBps == "" {
		tax.BuyTaxBps = "0"
	}
	if tax.SellTaxBps == "" {
		tax.SellTaxBps = "0"
	}
	return tax
}

func parseValue(value string) *big.Int {
	if value == "" {
		return nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok || parsed.Sign() == 0 {
		return nil
	}
	return parsed
}
