package cmd

import (
	"bufio"
	"context"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"monad-swap/config"
	"monad-swap/pkg/chain"
	"monad-swap/pkg/swap"
	"monad-swap/pkg/wallet"
	"monad-swap/pkg/zeroex"
)

var noConfirm bool

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <sell-token> to <buy-token>",
	Short: "Swap tokens on Monad testnet",
	Long: `Swap tokens on Monad testnet through the 0x Swap API permit2 flow.

The flow mirrors the full trade lifecycle: indicative price, allowance
approval when the sell token needs one, a firm quote, an EIP-712 permit
signature, and the swap transaction itself.

Requires a configured private key and the local proxy (monad-swap serve).

Examples:
  monad-swap swap 1 MON to USDC
  monad-swap swap 100 USDC to WETH

  # Skip all confirmations
  monad-swap swap 1 MON to USDC --yes`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompts")
}

func runSwap(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")

	intent, err := swap.ParseTradeCommand(strings.Join(args, " "))
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if err := cfg.RequireSigner(); err != nil {
		printError(err)
		os.Exit(1)
	}

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	w, err := wallet.New(cfg.RPCURL, cfg.PrivateKey, cfg.ChainID, logger)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	ctx := context.Background()

	// The wallet must be on the chain this tool trades on before anything
	// is signed or sent.
	reconnect := &reconnector{cfg: cfg, logger: logger, wallet: w}
	gate := chain.NewGate(reconnect, reconnect, cfg.ChainID, logger)
	if _, err := gate.Ensure(ctx); err != nil {
		printError(err)
		os.Exit(1)
	}
	w = reconnect.wallet
	defer w.Close()

	orch := swap.NewOrchestrator(zeroex.NewClient(cfg.ProxyURL), w, swap.Options{
		ChainID:      cfg.ChainID,
		FeeRecipient: cfg.FeeRecipient,
		FeeBps:       cfg.FeeBps,
		Debounce:     cfg.Debounce,
	}, logger)

	updates := make(chan swap.Snapshot, 16)
	orch.OnChange(func(snap swap.Snapshot) {
		select {
		case updates <- snap:
		default:
		}
	})

	// Stage 1: indicative price.
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Fetching price..."
	s.Start()

	orch.SetSellToken(intent.SellToken)
	orch.SetBuyToken(intent.BuyToken)
	orch.SetSellAmount(intent.SellAmount)

	snap, err := awaitSnapshot(updates, func(snap swap.Snapshot) bool {
		return snap.State == swap.StatePriceReady ||
			(snap.State == swap.StateIdle && len(snap.Errors) > 0)
	})
	s.Stop()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if snap.State != swap.StatePriceReady {
		printError(fmt.Errorf("%s", strings.Join(snap.Errors, "; ")))
		os.Exit(1)
	}

	displayPrice(snap)

	if snap.InsufficientBalance {
		if !snap.BalanceKnown {
			printError(fmt.Errorf("could not read your %s balance", intent.SellToken.Symbol))
		} else {
			printError(fmt.Errorf("insufficient %s balance for this trade", intent.SellToken.Symbol))
		}
		os.Exit(1)
	}

	// Stage 2: allowance approval when required.
	if snap.NeedsApproval {
		if !noConfirm && !confirm(fmt.Sprintf("Approve %s for trading?", intent.SellToken.Symbol)) {
			fmt.Println("\nSwap cancelled.")
			os.Exit(0)
		}

		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = fmt.Sprintf(" Approving %s...", intent.SellToken.Symbol)
		s.Start()
		err = orch.Approve(ctx)
		s.Stop()
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		color.Green("\n✓ %s approved", intent.SellToken.Symbol)
	}

	// Stage 3: firm quote.
	if !noConfirm && !confirm("Request a firm quote?") {
		fmt.Println("\nSwap cancelled.")
		os.Exit(0)
	}

	s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Fetching firm quote..."
	s.Start()
	err = orch.Finalize()
	if err != nil {
		s.Stop()
		printError(err)
		os.Exit(1)
	}
	snap, err = awaitSnapshot(updates, func(snap swap.Snapshot) bool {
		return snap.State == swap.StateQuoteReady || snap.State == swap.StateQuoteFailed
	})
	s.Stop()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if snap.State == swap.StateQuoteFailed {
		printError(fmt.Errorf("quote failed: %s", snap.QuoteError))
		os.Exit(1)
	}

	// Stage 4: sign and place the order.
	if !noConfirm && !confirm("Place order?") {
		fmt.Println("\nSwap cancelled.")
		os.Exit(0)
	}

	s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Placing order..."
	s.Start()
	hash, err := orch.Submit(ctx)
	s.Stop()
	if err != nil {
		if hash != (common.Hash{}) {
			// Broadcast but not confirmed; point at the status command.
			color.Yellow("\nTransaction sent but not yet confirmed: %v", err)
			fmt.Println("\nCheck it with:")
			color.Cyan("  monad-swap status %s\n", hash.Hex())
			os.Exit(1)
		}
		printError(err)
		os.Exit(1)
	}

	color.Green("\n✓ Swap confirmed!")
	fmt.Printf("  Transaction: %s\n", color.CyanString(hash.Hex()))
	fmt.Printf("  Explorer:    %s/tx/%s\n", cfg.ExplorerURL, hash.Hex())
	printSuccess(fmt.Sprintf("Swapped %s %s for ~%s %s",
		intent.SellAmount, intent.SellToken.Symbol, snap.BuyAmount, intent.BuyToken.Symbol))
}

// awaitSnapshot drains orchestrator updates until one satisfies the
// predicate.
func awaitSnapshot(updates <-chan swap.Snapshot, done func(swap.Snapshot) bool) (swap.Snapshot, error) {
	timeout := time.After(60 * time.Second)
	for {
		select {
		case snap := <-updates:
			if done(snap) {
				return snap, nil
			}
		case <-timeout:
			return swap.Snapshot{}, fmt.Errorf("timed out waiting for the swap service")
		}
	}
}

// reconnector is the chain gate's view of the wallet connection. Switching
// means redialing the default network RPC after the user agrees.
type reconnector struct {
	cfg    *config.Config
	logger zerolog.Logger
	wallet *wallet.Wallet
}

func (r *reconnector) ChainID(ctx context.Context) (*big.Int, error) {
	return r.wallet.ChainID(ctx)
}

func (r *reconnector) SwitchChain(ctx context.Context, chainID *big.Int) error {
	if r.cfg.RPCURL == config.DefaultRPCURL {
		return fmt.Errorf("the default RPC endpoint serves the wrong chain")
	}
	if !noConfirm && !confirm(fmt.Sprintf("Reconnect to the default RPC (%s)?", config.DefaultRPCURL)) {
		return fmt.Errorf("declined by user")
	}

	replacement, err := wallet.New(config.DefaultRPCURL, r.cfg.PrivateKey, chainID.Int64(), r.logger)
	if err != nil {
		return err
	}
	r.wallet.Close()
	r.wallet = replacement
	return nil
}

func displayPrice(snap swap.Snapshot) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     SWAP PRICE")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Sell:  %s %s\n", snap.Intent.SellAmount, color.YellowString(snap.Intent.SellToken.Symbol))
	fmt.Printf("  Buy:   ~%s %s\n", snap.BuyAmount, color.YellowString(snap.Intent.BuyToken.Symbol))

	if bps := snap.BuyTokenTax.BuyTaxBps; bps != "" && bps != "0" {
		fmt.Printf("  Buy Token Tax:  %s%%\n", formatBps(bps))
	}
	if bps := snap.SellTokenTax.SellTaxBps; bps != "" && bps != "0" {
		fmt.Printf("  Sell Token Tax: %s%%\n", formatBps(bps))
	}
	if snap.NeedsApproval {
		fmt.Printf("\n  %s\n", color.YellowString("Approval required before this token can be sold."))
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
}

func confirm(question string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("\n%s (y/N): ", question)

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
