package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lpmarket/internal/chain"
	"lpmarket/internal/config"
	"lpmarket/internal/dex"
	"lpmarket/internal/fiat"
	"lpmarket/internal/market"
	"lpmarket/internal/metrics"
	"lpmarket/internal/model"
	"lpmarket/internal/subgraph"
	"lpmarket/internal/wallet"
)

// app holds the boundaries shared by every command.
type app struct {
	ctx      context.Context
	cfg      config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	subgraph *subgraph.Client
	fiat     *fiat.Client

	// Set only when the command needs the chain.
	chain     *chain.Client
	session   *wallet.Session
	tokens    *dex.TokenResolver
	cache     *dex.TokenMetaCache
	positions *dex.PositionManager
	clients   map[model.ListingType]*market.Client

	closers []func()
}

func newApp(cmd *cobra.Command, needChain bool) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a := &app{
		ctx:      ctx,
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		fiat:     fiat.NewClient(cfg.CoinGeckoURL),
		closers:  []func(){func() { _ = logger.Sync() }, stop},
	}

	a.metrics, err = metrics.New(a.registry)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.subgraph = subgraph.NewClient(cfg.SubgraphURL, subgraph.WithLogger(logger), subgraph.WithMetrics(a.metrics))

	if needChain {
		if err := a.connect(); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) connect() error {
	if a.cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	client, err := chain.NewClient(a.ctx, a.cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	a.chain = client
	a.closers = append(a.closers, client.Close)

	chainID, err := client.ChainID(a.ctx)
	if err != nil {
		return fmt.Errorf("chain id: %w", err)
	}
	a.session, err = wallet.NewSession(a.cfg.PrivateKey, chainID)
	if err != nil {
		return err
	}

	a.cache, err = dex.NewTokenMetaCache()
	if err != nil {
		return err
	}
	a.closers = append(a.closers, a.cache.Close)
	a.tokens = dex.NewTokenResolver(client, a.cache, a.logger)

	manager, err := config.ParseAddress("position-manager", a.cfg.PositionManager)
	if err != nil {
		return err
	}
	contracts, err := a.cfg.Contracts.ContractAddresses()
	if err != nil {
		return err
	}
	a.positions = dex.NewPositionManager(client, manager)

	a.clients = make(map[model.ListingType]*market.Client, len(market.Variants))
	for _, v := range market.Variants {
		address := contracts[v.Name()]
		sender, approver, err := market.BindContracts(client.Backend(), address, manager, v)
		if err != nil {
			return err
		}
		a.clients[v.Type] = market.NewClient(v, market.Deps{
			Reader:      market.NewContractReader(client, address, v),
			Tokens:      a.tokens,
			Positions:   a.positions,
			Deposits:    a.subgraph,
			Sender:      sender,
			Approver:    approver,
			Receipts:    client.Receipts(),
			Signer:      a.session,
			Address:     address,
			Concurrency: a.cfg.Concurrency,
			Logger:      a.logger,
			Metrics:     a.metrics,
		})
	}

	a.logger.Info("connected",
		zap.String("rpc", a.cfg.RPCURL),
		zap.String("chain_id", chainID.String()),
		zap.String("account", a.session.Account()),
		zap.Int("concurrency", a.cfg.Concurrency),
	)
	return nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// client returns the marketplace client named by a variant argument.
func (a *app) client(name string) (*market.Client, error) {
	t, err := model.ParseListingType(name)
	if err != nil {
		return nil, err
	}
	c, ok := a.clients[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", market.ErrUnknownVariant, t)
	}
	return c, nil
}

// selected returns the clients of the configured variants, all by default.
func (a *app) selected() ([]*market.Client, error) {
	if len(a.cfg.Variants) == 0 {
		out := make([]*market.Client, 0, len(market.Variants))
		for _, v := range market.Variants {
			out = append(out, a.clients[v.Type])
		}
		return out, nil
	}
	out := make([]*market.Client, 0, len(a.cfg.Variants))
	for _, name := range a.cfg.Variants {
		c, err := a.client(name)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func variantNames() string {
	names := make([]string, 0, len(market.Variants))
	for _, v := range market.Variants {
		names = append(names, v.Name())
	}
	return strings.Join(names, "|")
}
