package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"monad-swap/config"
	"monad-swap/pkg/proxy"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the price/quote proxy server",
	Long: `Run the HTTP proxy that forwards price and quote requests to the 0x Swap
API. The proxy injects the API credential server-side so clients never see it.

Endpoints:
  GET /api/price  - indicative price
  GET /api/quote  - firm quote

Examples:
  monad-swap serve
  monad-swap serve --listen :9090`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	if cfg.APIKey == "" {
		logger.Warn().Msg("no API key configured; upstream requests will fail until MONAD_SWAP_API_KEY is set")
	}

	addr := cfg.ListenAddr
	if listenAddr != "" {
		addr = listenAddr
	}

	server := proxy.NewServer(cfg, logger)
	logger.Info().Str("addr", addr).Msg("starting swap proxy")
	if err := server.Start(addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
