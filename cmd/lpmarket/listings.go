package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lpmarket/internal/format"
	"lpmarket/internal/market"
	"lpmarket/internal/model"
	"lpmarket/internal/search"
)

func listingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listings <" + variantNames() + ">",
		Short: "List every record of a marketplace",
		Args:  cobra.ExactArgs(1),
		RunE:  runListings,
	}
	cmd.Flags().String("owner", "", "only listings owned by this address (\"me\" for the session account)")
	cmd.Flags().String("renter", "", "only listings rented by this address (\"me\" for the session account)")
	cmd.Flags().Bool("available", false, "only listings a visitor can take")
	cmd.Flags().String("format", "json", "output format (json, text)")
	return cmd
}

func runListings(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := a.client(args[0])
	if err != nil {
		return err
	}
	owner, _ := cmd.Flags().GetString("owner")
	renter, _ := cmd.Flags().GetString("renter")
	available, _ := cmd.Flags().GetBool("available")

	a.logger.Info("listings start", zap.String("variant", c.Variant().Name()))

	var listings []model.Listing
	switch {
	case owner != "":
		listings = c.ByOwner(a.ctx, meOrAddress(owner))
	case renter != "":
		listings = c.ByRenter(a.ctx, meOrAddress(renter))
	case available && c.Type() == model.ListingRental:
		listings = c.RentalListings(a.ctx)
	case available && c.Type() == model.ListingOption:
		listings = c.ListingsForSale(a.ctx)
	case available:
		listings = c.Available(a.ctx)
	default:
		listings = c.AllListings(a.ctx)
	}
	return printListings(cmd, listings)
}

// meOrAddress maps "me" to the empty address, which means the session account.
func meOrAddress(value string) string {
	if value == "me" {
		return ""
	}
	return value
}

func printListings(cmd *cobra.Command, listings []model.Listing) error {
	out, _ := cmd.Flags().GetString("format")
	switch out {
	case "json":
		if listings == nil {
			listings = []model.Listing{}
		}
		return printJSON(listings)
	case "text":
		return printListingTable(listings, time.Now())
	default:
		return fmt.Errorf("unknown format %q", out)
	}
}

func printListingTable(listings []model.Listing, now time.Time) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tTOKEN\tPAIR\tFEE\tRANGE\tPRICE\tDURATION\tEXPIRES")
	for _, l := range listings {
		if model.IsPlaceholder(l) {
			fmt.Fprintf(w, "%s\t%d\t-\t-\t-\t-\t-\tunavailable\n", l.Kind(), l.ID())
			continue
		}
		pair := "-"
		if p := model.PairingOf(l); len(p) == 2 {
			pair = p[0].Symbol + "/" + p[1].Symbol
		}
		pos := model.PositionOf(l)
		fee, span := "-", "-"
		if pos != nil {
			fee = strconv.FormatFloat(pos.Fee, 'f', -1, 64) + "%"
			span = format.PositionPrice(pos, true, true) + " - " + format.PositionPrice(pos, true, false)
		}
		price := "-"
		if info := model.InfoOf(l); info != nil && l.Kind() != model.ListingSwap {
			price = format.FormatPrice(info.PriceInEther) + " ETH"
		}
		if o, ok := l.(*model.OptionInfo); ok {
			price = format.FormatPrice(o.Premium) + " ETH, strike " + format.StrikePrice(o)
		}
		duration := "-"
		if d, ok := model.DurationOf(l); ok && d >= 0 {
			duration = format.FormatDuration(float64(d), 2)
		}
		expires := "-"
		if e := model.ExpiryOf(l); e != nil {
			expires = format.TimeUntil(*e, now, 2)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n", l.Kind(), l.ID(), pair, fee, span, price, duration, expires)
	}
	return w.Flush()
}

func listingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listing <" + variantNames() + "> <token-id>",
		Short: "Show one listing, optionally with its pool detail",
		Args:  cobra.ExactArgs(2),
		RunE:  runListing,
	}
	cmd.Flags().Bool("detail", false, "include fee tiers, pool info, price and volume series and the image")
	return cmd
}

func runListing(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid token id %q: %w", args[1], err)
	}
	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := a.client(args[0])
	if err != nil {
		return err
	}
	listing, err := c.AssembleListing(a.ctx, id)
	if err != nil {
		return err
	}
	detail, _ := cmd.Flags().GetBool("detail")
	if !detail {
		return printJSON(listing)
	}
	return printJSON(market.LoadDetail(a.ctx, a.subgraph, a.positions, listing, a.logger))
}

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <token-id>",
		Short: "Find the marketplace holding a token, trying rental then sale",
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

			resolver := market.NewResolver(a.logger, a.clients[model.ListingRental], a.clients[model.ListingSale])
			kind, listing := resolver.Resolve(a.ctx, id)
			if kind == model.ListingNull {
				return printJSON(map[string]interface{}{"type": kind, "listing": nil})
			}
			return printJSON(market.LoadDetail(a.ctx, a.subgraph, a.positions, listing, a.logger))
		},
	}
}

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <" + variantNames() + ">",
		Short: "Filter a marketplace by pair, fee, price, duration and token id",
		Args:  cobra.ExactArgs(1),
		RunE:  runSearch,
	}
	defaults := search.DefaultCriteria()
	cmd.Flags().String("token0", "", "token0 symbol substring")
	cmd.Flags().String("token1", "", "token1 symbol substring")
	cmd.Flags().String("fee", defaults.Fee, "fee tier in percent, compared exactly")
	cmd.Flags().String("price-op", string(defaults.PriceOp), "price operator (<, =, >)")
	cmd.Flags().String("price", "", "price bound in ETH")
	cmd.Flags().String("duration-op", string(defaults.DurationOp), "duration operator (<, =, >)")
	cmd.Flags().String("duration", "", "duration bound, rentals only")
	cmd.Flags().String("unit", defaults.DurationUnit, "duration unit (s, m, h, d, w)")
	cmd.Flags().String("token-id", "", "token id substring")
	cmd.Flags().String("format", "json", "output format (json, text)")
	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	str := func(name string) string {
		v, _ := flags.GetString(name)
		return v
	}
	criteria := search.Criteria{
		Token0:       str("token0"),
		Token1:       str("token1"),
		Fee:          str("fee"),
		PriceOp:      search.Operator(str("price-op")),
		Price:        str("price"),
		DurationOp:   search.Operator(str("duration-op")),
		Duration:     str("duration"),
		DurationUnit: str("unit"),
		TokenID:      str("token-id"),
	}
	if err := criteria.Validate(); err != nil {
		return err
	}

	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := a.client(args[0])
	if err != nil {
		return err
	}
	var listings []model.Listing
	switch c.Type() {
	case model.ListingRental:
		criteria.MatchDuration = true
		listings = c.RentalListings(a.ctx)
	case model.ListingOption:
		listings = c.ListingsForSale(a.ctx)
	default:
		listings = c.AllListings(a.ctx)
	}
	return printListings(cmd, search.Filter(listings, criteria))
}
