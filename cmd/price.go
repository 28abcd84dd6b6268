package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"monad-swap/config"
	"monad-swap/pkg/swap"
	"monad-swap/pkg/zeroex"
)

var priceTaker string

var priceCmd = &cobra.Command{
	Use:   "price <amount> <sell-token> to <buy-token>",
	Short: "Fetch an indicative price",
	Long: `Fetch an indicative price for a swap without committing to anything.
The price goes through the local proxy, so run 'monad-swap serve' first.

Examples:
  monad-swap price 1 MON to USDC
  monad-swap price 100 USDC to WETH --taker 0x1234...abcd`,
	Args: cobra.MinimumNArgs(1),
	Run:  runPrice,
}

func init() {
	rootCmd.AddCommand(priceCmd)

	priceCmd.Flags().StringVar(&priceTaker, "taker", "", "Taker address to price for (optional)")
}

func runPrice(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

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

	sellAmount, err := swap.ToSmallestUnit(intent.SellAmount, intent.SellToken.Decimals)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	params := zeroex.SwapParams{
		ChainID:               strconv.FormatInt(cfg.ChainID, 10),
		SellToken:             intent.SellToken.Address,
		BuyToken:              intent.BuyToken.Address,
		SellAmount:            sellAmount.String(),
		Taker:                 priceTaker,
		SwapFeeRecipient:      cfg.FeeRecipient,
		SwapFeeBps:            cfg.FeeBps,
		SwapFeeToken:          intent.BuyToken.Address,
		TradeSurplusRecipient: cfg.FeeRecipient,
	}

	apiClient := zeroex.NewClient(cfg.ProxyURL)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching price..."
		s.Start()
	}

	price, err := apiClient.GetPrice(context.Background(), params)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if len(price.ValidationErrors) > 0 {
		for _, ve := range price.ValidationErrors {
			printError(fmt.Errorf("%s: %s", ve.Field, ve.Reason))
		}
		os.Exit(1)
	}

	buyAmount, err := swap.FromSmallestUnit(price.BuyAmount, intent.BuyToken.Decimals)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		output := map[string]interface{}{
			"sell_amount": intent.SellAmount,
			"sell_token":  intent.SellToken.Symbol,
			"buy_amount":  buyAmount,
			"buy_token":   intent.BuyToken.Symbol,
			"chain_id":    cfg.ChainID,
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                  INDICATIVE PRICE")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\n  Sell:  %s %s\n", intent.SellAmount, color.YellowString(intent.SellToken.Symbol))
	fmt.Printf("  Buy:   ~%s %s\n", buyAmount, color.YellowString(intent.BuyToken.Symbol))
	printTaxes(price)
	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

// printTaxes renders buy/sell token taxes when either is non-zero.
func printTaxes(price *zeroex.PriceResponse) {
	if bps := price.TokenMetadata.BuyToken.BuyTaxBps; bps != "" && bps != "0" {
		fmt.Printf("  Buy Token Tax:  %s%%\n", formatBps(bps))
	}
	if bps := price.TokenMetadata.SellToken.SellTaxBps; bps != "" && bps != "0" {
		fmt.Printf("  Sell Token Tax: %s%%\n", formatBps(bps))
	}
}

func formatBps(bps string) string {
	parsed, err := strconv.ParseFloat(bps, 64)
	if err != nil {
		return bps
	}
	return strconv.FormatFloat(parsed/100, 'f', -1, 64)
}
