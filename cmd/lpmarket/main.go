package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	root := &cobra.Command{
		Use:          "lpmarket",
		Short:        "Uniswap V3 position marketplace client",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file path")
	flags.String("rpc", "", "Ethereum RPC URL")
	flags.String("subgraph-url", "", "Uniswap V3 subgraph endpoint")
	flags.String("coingecko-url", "", "CoinGecko API base URL")
	flags.String("private-key", "", "hex private key for writes (empty means read-only)")
	flags.String("position-manager", "", "NonfungiblePositionManager address")
	flags.String("rental-contract", "", "rental marketplace address")
	flags.String("sale-contract", "", "sale marketplace address")
	flags.String("auction-contract", "", "auction marketplace address")
	flags.String("option-contract", "", "option marketplace address")
	flags.String("swap-contract", "", "swap marketplace address")
	flags.Int("concurrency", 0, "max concurrent listing assemblies (0 means no cap)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "also write logs to this rotating file")

	root.AddCommand(
		listingsCmd(),
		listingCmd(),
		resolveCmd(),
		searchCmd(),
		swapsCmd(),
		poolCmd(),
		priceCmd(),
		imageCmd(),
		txCmd(),
		snapshotCmd(),
		serveCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level, file string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	if file == "" {
		return logger, nil
	}

	rotator := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(cfg.EncoderConfig), zapcore.AddSync(rotator), cfg.Level)
	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	})), nil
}
