package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Defaults for the Monad testnet deployment. The chain id, native token
// sentinel, and explorer URL are fixed properties of the target network.
const (
	DefaultChainID     = 10143
	DefaultAPIURL      = "https://api.0x.org"
	DefaultRPCURL      = "https://testnet-rpc.monad.xyz"
	DefaultProxyURL    = "http://localhost:8080"
	DefaultListenAddr  = ":8080"
	DefaultExplorerURL = "https://testnet.monadexplorer.com"

	// DefaultFeeBps is the affiliate fee attached to every price and quote
	// request, in basis points (100 = 1%).
	DefaultFeeBps = "100"
)

// Config holds the application configuration
type Config struct {
	// Upstream swap API
	APIKey string
	APIURL string

	// Proxy server
	ListenAddr   string
	PriceTimeout time.Duration
	QuoteTimeout time.Duration

	// Client side
	ProxyURL    string
	RPCURL      string
	ChainID     int64
	PrivateKey  string
	ExplorerURL string

	// Affiliate fee parameters sent with every price/quote request
	FeeRecipient string
	FeeBps       string

	// Debounce delay applied between an intent edit and the price fetch
	Debounce time.Duration
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".monad-swap")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("api_url", DefaultAPIURL)
	viper.SetDefault("rpc_url", DefaultRPCURL)
	viper.SetDefault("proxy_url", DefaultProxyURL)
	viper.SetDefault("listen_addr", DefaultListenAddr)
	viper.SetDefault("explorer_url", DefaultExplorerURL)
	viper.SetDefault("chain_id", DefaultChainID)
	viper.SetDefault("fee_bps", DefaultFeeBps)
	viper.SetDefault("price_timeout", 10*time.Second)
	viper.SetDefault("quote_timeout", 15*time.Second)
	viper.SetDefault("debounce", 500*time.Millisecond)

	// Read from environment variables
	viper.SetEnvPrefix("MONAD_SWAP")
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		APIKey:       viper.GetString("api_key"),
		APIURL:       viper.GetString("api_url"),
		ListenAddr:   viper.GetString("listen_addr"),
		PriceTimeout: viper.GetDuration("price_timeout"),
		QuoteTimeout: viper.GetDuration("quote_timeout"),
		ProxyURL:     viper.GetString("proxy_url"),
		RPCURL:       viper.GetString("rpc_url"),
		ChainID:      viper.GetInt64("chain_id"),
		PrivateKey:   viper.GetString("private_key"),
		ExplorerURL:  viper.GetString("explorer_url"),
		FeeRecipient: viper.GetString("fee_recipient"),
		FeeBps:       viper.GetString("fee_bps"),
		Debounce:     viper.GetDuration("debounce"),
	}

	// A missing API key is deliberately not an error here: the proxy reports
	// it per request so the server can start without the credential and the
	// client commands never need it at all.
	globalConfig = cfg
	return cfg, nil
}

// RequireSigner validates the settings the swap command needs to sign and
// broadcast transactions.
func (c *Config) RequireSigner() error {
	if c.PrivateKey == "" {
		return fmt.Errorf("private key not found. Please set MONAD_SWAP_PRIVATE_KEY or add private_key to your .monad-swap.yaml config file")
	}
	if c.RPCURL == "" {
		return fmt.Errorf("RPC URL not configured. Please set MONAD_SWAP_RPC_URL")
	}
	return nil
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}
