package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "monad-swap",
	Short: "A CLI for token swaps on Monad testnet via the 0x Swap API",
	Long: `monad-swap is a command-line tool for swapping tokens on the Monad testnet
through the 0x Swap API (permit2 flow). Check an indicative price, review a
firm quote, sign the permit, and place the order from your terminal.

Examples:
  monad-swap price 1 MON to USDC
  monad-swap swap 1 MON to USDC
  monad-swap list-tokens
  monad-swap status <tx-hash>
  monad-swap serve`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}
