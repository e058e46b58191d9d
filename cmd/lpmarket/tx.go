package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lpmarket/internal/format"
	"lpmarket/internal/market"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx <" + variantNames() + "> <op> [token-id]",
		Short: "Sign and send a marketplace transaction",
		Long: "Operations: create, remove, accept, settle, list-for-sale, offer, accept-offer,\n" +
			"withdraw-fees, return, withdraw. Each variant accepts a subset; create approves\n" +
			"the marketplace on the position manager first.",
		Args: cobra.RangeArgs(2, 3),
		RunE: runTx,
	}
	cmd.Flags().Float64("price", 0, "price, minimum bid, premium or payment in ETH")
	cmd.Flags().Int64("duration", 0, "duration in seconds")
	cmd.Flags().Int64("percentage", 100, "option percentage in (0, 100]")
	cmd.Flags().String("token-long", "", "token address an option goes long on")
	cmd.Flags().Uint64("offer-id", 0, "token id offered in a swap")
	cmd.Flags().Float64("protocol-fee", 0, "protocol fee fraction to report for the price (e.g. 0.01)")
	return cmd
}

func runTx(cmd *cobra.Command, args []string) error {
	op, err := market.ParseOp(args[1])
	if err != nil {
		return err
	}
	var tokenID uint64
	if len(args) == 3 {
		tokenID, err = strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid token id %q: %w", args[2], err)
		}
	} else if op != market.OpWithdraw {
		return fmt.Errorf("%s requires a token id", op)
	}

	flags := cmd.Flags()
	params := market.TxParams{TokenID: tokenID}
	params.PriceEther, _ = flags.GetFloat64("price")
	params.DurationSeconds, _ = flags.GetInt64("duration")
	params.Percentage, _ = flags.GetInt64("percentage")
	params.TokenLong, _ = flags.GetString("token-long")
	params.OfferTokenID, _ = flags.GetUint64("offer-id")
	feeFraction, _ := flags.GetFloat64("protocol-fee")

	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.session.RequestAccess(); err != nil {
		return fmt.Errorf("%s %s: %w", args[0], op, err)
	}
	c, err := a.client(args[0])
	if err != nil {
		return err
	}

	if op == market.OpWithdraw {
		owner, err := c.IsMarketplaceOwner(a.ctx)
		if err != nil {
			return err
		}
		if !owner {
			return fmt.Errorf("withdraw is restricted to the marketplace owner")
		}
	}
	if feeFraction > 0 && params.PriceEther > 0 {
		fee := market.ProtocolFee(params.PriceEther, feeFraction)
		fmt.Printf("protocol fee: %s ETH\n", format.FormatPrice(fee))
	}

	a.logger.Info("tx start",
		zap.String("variant", c.Variant().Name()),
		zap.String("op", string(op)),
		zap.Uint64("token_id", tokenID),
		zap.String("account", a.session.Account()),
	)
	if !c.Variant().Supports(op) {
		return fmt.Errorf("%w: %s %s (supported: %s)", market.ErrUnsupportedOp, args[0], op, supportedOps(c.Variant()))
	}
	hash, ok := c.Execute(a.ctx, op, params)
	if !ok {
		return fmt.Errorf("%s %s failed", args[0], op)
	}
	fmt.Println(hash.Hex())
	return nil
}

func supportedOps(v market.Variant) string {
	ops := v.Ops()
	names := make([]string, 0, len(ops))
	for _, op := range ops {
		names = append(names, string(op))
	}
	return strings.Join(names, ", ")
}
