package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"monad-swap/config"
	"monad-swap/pkg/wallet"
)

var (
	watchStatus   bool
	watchInterval int
)

var statusCmd = &cobra.Command{
	Use:   "status <tx-hash>",
	Short: "Check the status of a swap transaction",
	Long: `Check the confirmation status of a swap transaction by its hash.

Examples:
  monad-swap status 0x1234...abcd
  monad-swap status 0x1234...abcd --watch
  monad-swap status 0x1234...abcd --watch --interval 10`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates continuously")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 5, "Polling interval in seconds (when watching)")
}

func runStatus(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if !strings.HasPrefix(args[0], "0x") || len(args[0]) != 66 {
		printError(fmt.Errorf("invalid transaction hash: %s", args[0]))
		os.Exit(1)
	}
	hash := common.HexToHash(args[0])

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	observer, err := wallet.NewObserver(cfg.RPCURL)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer observer.Close()

	if watchStatus {
		watchTransaction(observer, cfg, hash, jsonOutput)
	} else {
		checkTransaction(observer, cfg, hash, jsonOutput)
	}
}

func checkTransaction(observer *wallet.Observer, cfg *config.Config, hash common.Hash, jsonOutput bool) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking transaction status..."
		s.Start()
	}

	status, err := observer.TransactionStatus(context.Background(), hash)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		output := map[string]interface{}{
			"hash":    status.Hash.Hex(),
			"pending": status.Pending,
		}
		if !status.Pending {
			output["succeeded"] = status.Succeeded
			output["block_number"] = status.BlockNumber
			output["gas_used"] = status.GasUsed
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	displayTransaction(status, cfg)
}

func watchTransaction(observer *wallet.Observer, cfg *config.Config, hash common.Hash, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
		os.Exit(1)
	}

	fmt.Printf("\nWatching transaction %s\n", color.CyanString(hash.Hex()))
	fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n", watchInterval)

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	// Check immediately first
	if checkAndDisplay(observer, cfg, hash) {
		return
	}

	// Then check periodically until the transaction leaves the pool
	for range ticker.C {
		if checkAndDisplay(observer, cfg, hash) {
			return
		}
	}
}

func checkAndDisplay(observer *wallet.Observer, cfg *config.Config, hash common.Hash) bool {
	status, err := observer.TransactionStatus(context.Background(), hash)
	if err != nil {
		color.Red("Error: %v", err)
		return false
	}

	displayTransaction(status, cfg)
	return !status.Pending
}

func displayTransaction(status *wallet.TransactionStatus, cfg *config.Config) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                     TRANSACTION STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Hash:     %s\n", color.CyanString(status.Hash.Hex()))
	fmt.Printf("  Status:   %s\n", coloredStatus(status))

	if !status.Pending {
		fmt.Printf("  Block:    %d\n", status.BlockNumber)
		fmt.Printf("  Gas Used: %d\n", status.GasUsed)
	}
	fmt.Printf("  Explorer: %s/tx/%s\n", cfg.ExplorerURL, status.Hash.Hex())

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func coloredStatus(status *wallet.TransactionStatus) string {
	switch {
	case status.Pending:
		return color.YellowString("PENDING")
	case status.Succeeded:
		return color.GreenString("CONFIRMED")
	default:
		return color.RedString("REVERTED")
	}
}
