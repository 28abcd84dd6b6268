package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"monad-swap/pkg/tokens"
)

var filterSymbol string

var tokensCmd = &cobra.Command{
	Use:     "list-tokens",
	Aliases: []string{"tokens", "ls"},
	Short:   "List the supported tokens",
	Long: `List the tokens tradable on Monad testnet.

Examples:
  monad-swap list-tokens
  monad-swap list-tokens --symbol USD`,
	Run: runListTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVar(&filterSymbol, "symbol", "", "Filter by token symbol")
}

func runListTokens(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	list := tokens.List()

	// Apply the symbol filter
	if filterSymbol != "" {
		var temp []tokens.Token
		for _, token := range list {
			if strings.Contains(strings.ToUpper(token.Symbol), strings.ToUpper(filterSymbol)) {
				temp = append(temp, token)
			}
		}
		list = temp
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(list, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	displayTokens(list)
}

func displayTokens(list []tokens.Token) {
	if len(list) == 0 {
		fmt.Println("\nNo tokens found matching the criteria.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	color.Green("                        SUPPORTED TOKENS")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	for _, token := range list {
		kind := "ERC-20"
		if token.IsNative() {
			kind = "native"
		}
		fmt.Printf("  %-6s  %-22s  %2d decimals  %-8s  %s\n",
			color.YellowString(token.Symbol),
			token.Name,
			token.Decimals,
			kind,
			color.HiBlackString(token.Address))
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Printf("\nTotal: %d tokens on Monad testnet\n\n", len(list))
}
