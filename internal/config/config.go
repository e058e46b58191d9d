package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Mainnet deployments of the marketplace contracts and the Uniswap V3 position manager.
const (
	DefaultPositionManager = "0xC36442b4a4522E871399CD717aBDD847Ab11FE88"
	DefaultRentalContract  = "0xC1a7CFb1e1D5eBD1881ef18Dc7a01cfD638DbD7e"
	DefaultSaleContract    = "0x0F8528a14e2417EeEcccb298Df3f8BBA8b3F1B4d"
	DefaultAuctionContract = "0x7873dED9A53f8e41C56A0B7DEf5b6Cc1D8F7C0B7"
	DefaultOptionContract  = "0x99b2C122defe27780cDA8c921c4C55d9280F3e86"
	DefaultSwapContract    = "0xAB3aD342Be98eA316460431179aDB40A872749b2"

	DefaultSubgraphURL  = "https://api.thegraph.com/subgraphs/name/uniswap/uniswap-v3"
	DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"
)

// Contracts holds the marketplace contract address of each variant.
type Contracts struct {
	Rental  string
	Sale    string
	Auction string
	Option  string
	Swap    string
}

// Config holds configuration values loaded from .env, flags, env, or config file.
type Config struct {
	RPCURL          string
	SubgraphURL     string
	CoinGeckoURL    string
	PrivateKey      string
	PositionManager string
	Contracts       Contracts
	Variants        []string
	Concurrency     int
	LogLevel        string
	LogFile         string
	Listen          string
	PGDSN           string
	Out             string
	RefreshInterval time.Duration
}

// Load merges .env, config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("LPMARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("subgraph-url", DefaultSubgraphURL)
	v.SetDefault("coingecko-url", DefaultCoinGeckoURL)
	v.SetDefault("position-manager", DefaultPositionManager)
	v.SetDefault("rental-contract", DefaultRentalContract)
	v.SetDefault("sale-contract", DefaultSaleContract)
	v.SetDefault("auction-contract", DefaultAuctionContract)
	v.SetDefault("option-contract", DefaultOptionContract)
	v.SetDefault("swap-contract", DefaultSwapContract)
	v.SetDefault("concurrency", 0)
	v.SetDefault("log-level", "info")
	v.SetDefault("listen", ":8080")
	v.SetDefault("out", "./data/listings.jsonl")
	v.SetDefault("refresh-interval", 5*time.Minute)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:          v.GetString("rpc"),
		SubgraphURL:     v.GetString("subgraph-url"),
		CoinGeckoURL:    v.GetString("coingecko-url"),
		PrivateKey:      v.GetString("private-key"),
		PositionManager: v.GetString("position-manager"),
		Contracts: Contracts{
			Rental:  v.GetString("rental-contract"),
			Sale:    v.GetString("sale-contract"),
			Auction: v.GetString("auction-contract"),
			Option:  v.GetString("option-contract"),
			Swap:    v.GetString("swap-contract"),
		},
		Variants:        getStringSlice(v, "variants"),
		Concurrency:     v.GetInt("concurrency"),
		LogLevel:        v.GetString("log-level"),
		LogFile:         v.GetString("log-file"),
		Listen:          v.GetString("listen"),
		PGDSN:           v.GetString("pg-dsn"),
		Out:             v.GetString("out"),
		RefreshInterval: v.GetDuration("refresh-interval"),
	}
	if cfg.Concurrency < 0 {
		return Config{}, fmt.Errorf("concurrency must not be negative, got %d", cfg.Concurrency)
	}

	return cfg, nil
}

// Address returns the configured contract of a variant by lowercase name.
func (c Contracts) Address(variant string) (string, bool) {
	switch strings.ToLower(variant) {
	case "rental":
		return c.Rental, true
	case "sale":
		return c.Sale, true
	case "auction":
		return c.Auction, true
	case "option":
		return c.Option, true
	case "swap":
		return c.Swap, true
	default:
		return "", false
	}
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
