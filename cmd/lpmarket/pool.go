package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lpmarket/internal/chain"
	"lpmarket/internal/dex"
	"lpmarket/internal/format"
	"lpmarket/internal/model"
	"lpmarket/internal/subgraph"
)

func swapsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swaps <pool>",
		Short: "Print recent swaps of a pool as a price series",
		Args:  cobra.ExactArgs(1),
		RunE:  runSwaps,
	}
	cmd.Flags().Int("days", 0, "all swaps of the last N days (paginated)")
	cmd.Flags().Int("last", 1000, "the last N swaps, used when --days is 0")
	cmd.Flags().String("source", "subgraph", "swap source (subgraph, chain)")
	cmd.Flags().Uint64("blocks", 7200, "trailing block window for --source chain")
	cmd.Flags().Uint64("batch-size", 2000, "blocks per eth_getLogs request for --source chain")
	cmd.Flags().Bool("raw", false, "print swaps instead of the price series")
	return cmd
}

func runSwaps(cmd *cobra.Command, args []string) error {
	pool := args[0]
	if !common.IsHexAddress(pool) {
		return fmt.Errorf("invalid pool address %q", pool)
	}
	flags := cmd.Flags()
	source, _ := flags.GetString("source")
	days, _ := flags.GetInt("days")
	last, _ := flags.GetInt("last")
	raw, _ := flags.GetBool("raw")

	a, err := newApp(cmd, source == "chain")
	if err != nil {
		return err
	}
	defer a.Close()

	var swaps []model.Swap
	switch source {
	case "subgraph":
		if days > 0 {
			swaps, err = a.subgraph.SwapsSince(a.ctx, pool, days, time.Now())
		} else {
			swaps, err = a.subgraph.LastSwaps(a.ctx, pool, last)
		}
	case "chain":
		window, _ := flags.GetUint64("blocks")
		batchSize, _ := flags.GetUint64("batch-size")
		swaps, err = chainSwaps(a, common.HexToAddress(pool), window, batchSize)
	default:
		return fmt.Errorf("unknown swap source %q", source)
	}
	if err != nil {
		return err
	}

	a.logger.Info("swaps loaded", zap.String("pool", pool), zap.String("source", source), zap.Int("swaps", len(swaps)))
	if raw {
		return printJSON(swaps)
	}
	return printJSON(subgraph.PriceSeries(swaps))
}

func chainSwaps(a *app, pool common.Address, window, batchSize uint64) ([]model.Swap, error) {
	head, err := a.chain.LatestBlockNumber(a.ctx)
	if err != nil {
		return nil, fmt.Errorf("latest block: %w", err)
	}
	r, err := chain.TrailingRange(head, window)
	if err != nil {
		return nil, err
	}
	reader := dex.NewSwapReader(a.chain, a.chain, a.tokens, batchSize, a.logger)
	return reader.FetchPoolSwaps(a.ctx, pool, r.From, r.To)
}

func poolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool <pool>",
		Short: "Show pool info, daily volume and optional tick range or fee tier data",
		Args:  cobra.ExactArgs(1),
		RunE:  runPool,
	}
	cmd.Flags().Int("days", 30, "days of pool day data")
	cmd.Flags().Int32("tick-lower", 0, "lower tick for tick range info")
	cmd.Flags().Int32("tick-upper", 0, "upper tick for tick range info")
	cmd.Flags().String("token0", "", "token0 address, with --token1 adds the pair's fee tier distribution")
	cmd.Flags().String("token1", "", "token1 address")
	return cmd
}

func runPool(cmd *cobra.Command, args []string) error {
	pool := strings.ToLower(args[0])
	flags := cmd.Flags()
	days, _ := flags.GetInt("days")
	lower, _ := flags.GetInt32("tick-lower")
	upper, _ := flags.GetInt32("tick-upper")
	token0, _ := flags.GetString("token0")
	token1, _ := flags.GetString("token1")

	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	info, err := a.subgraph.PoolInfo(a.ctx, pool)
	if err != nil {
		return err
	}
	dayData, err := a.subgraph.PoolDayData(a.ctx, pool, days)
	if err != nil {
		return err
	}
	out := map[string]interface{}{
		"pool":   info,
		"volume": subgraph.VolumeSeries(dayData),
	}
	if upper > lower {
		ticks, err := a.subgraph.TickRangeInfo(a.ctx, pool, lower, upper)
		if err != nil {
			return err
		}
		out["ticks"] = ticks
	}
	if token0 != "" && token1 != "" {
		dist, err := a.subgraph.FeeTierDistribution(a.ctx, token0, token1)
		if err != nil {
			return err
		}
		out["fee_tiers"] = dist
	}
	return printJSON(out)
}

func priceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "price",
		Short: "Print the ETH price in USD",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			price, err := a.fiat.EthUSD(a.ctx)
			if err != nil {
				return err
			}
			fmt.Printf("ETH %s\n", format.FormatUSD(price))
			return nil
		},
	}
}

func imageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "image <token-id>",
		Short: "Print the SVG image data URI of a position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid token id %q: %w", args[0], err)
			}
			a, err := newApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.Close()

			image, err := a.positions.Image(a.ctx, id)
			if err != nil {
				return err
			}
			fmt.Println(image)
			return nil
		},
	}
}
