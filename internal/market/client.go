package market

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lpmarket/internal/dex"
	"lpmarket/internal/metrics"
	"lpmarket/internal/model"
	"lpmarket/internal/subgraph"
)

// ErrNotListed is returned for an item id whose record is empty.
var ErrNotListed = errors.New("item is not listed")

// TokenResolver loads ERC-20 metadata, typically through a session cache.
type TokenResolver interface {
	Resolve(ctx context.Context, address string) (model.ERC20Token, error)
}

// PositionSource reads the position registry.
type PositionSource interface {
	Position(ctx context.Context, tokenID uint64) (dex.RawPosition, error)
}

// DepositSource reads subgraph deposit data for a position.
type DepositSource interface {
	Position(ctx context.Context, tokenID uint64) (subgraph.Position, error)
}

// TxSender sends a contract method call; bind.BoundContract implements it.
type TxSender interface {
	Transact(opts *bind.TransactOpts, method string, params ...interface{}) (*types.Transaction, error)
}

// Signer builds transaction options for the session account.
type Signer interface {
	Transactor(ctx context.Context, value *big.Int) (*bind.TransactOpts, error)
	Account() string
}

// Deps wires a Client to its boundaries. Only Reader is required for reads.
type Deps struct {
	Reader    ContractReader
	Tokens    TokenResolver
	Positions PositionSource
	Deposits  DepositSource
	Sender    TxSender
	Approver  TxSender
	// Receipts confirms approvals before a create is sent.
	Receipts bind.DeployBackend
	Signer   Signer
	// Address is the marketplace contract, the spender of approvals.
	Address common.Address
	// Concurrency caps bulk assembly; zero means no cap.
	Concurrency int
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
}

// Client reads and writes one marketplace variant.
type Client struct {
	variant     Variant
	reader      ContractReader
	tokens      TokenResolver
	positions   PositionSource
	deposits    DepositSource
	sender      TxSender
	approver    TxSender
	receipts    bind.DeployBackend
	signer      Signer
	address     common.Address
	concurrency int
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

func NewClient(variant Variant, deps Deps) *Client {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		variant:     variant,
		reader:      deps.Reader,
		tokens:      deps.Tokens,
		positions:   deps.Positions,
		deposits:    deps.Deposits,
		sender:      deps.Sender,
		approver:    deps.Approver,
		receipts:    deps.Receipts,
		signer:      deps.Signer,
		address:     deps.Address,
		concurrency: deps.Concurrency,
		logger:      logger.With(zap.String("variant", variant.Name())),
		metrics:     deps.Metrics,
	}
}

// Variant returns the marketplace this client serves.
func (c *Client) Variant() Variant {
	return c.variant
}

// Type returns the listing type this client assembles.
func (c *Client) Type() model.ListingType {
	return c.variant.Type
}

// AssembleListing loads one record and joins its pairing and position.
// Only a failed or empty record is an error; pairing, position and
// enrichment failures leave those fields empty.
func (c *Client) AssembleListing(ctx context.Context, id uint64) (listing model.Listing, err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveAssemble(c.variant.Name(), err == nil, time.Since(start))
	}()

	if c.reader == nil {
		return nil, fmt.Errorf("%s: no contract reader configured", c.variant.Name())
	}
	values, err := c.reader.Record(ctx, c.variant.InfoMethod, id)
	if err != nil {
		return nil, fmt.Errorf("%s(%d): %w", c.variant.InfoMethod, id, err)
	}
	rec := record{method: c.variant.InfoMethod, values: values}
	tokenID, err := rec.uint64("tokenId")
	if err != nil {
		return nil, err
	}
	if tokenID == 0 {
		return nil, fmt.Errorf("%s(%d): %w", c.variant.InfoMethod, id, ErrNotListed)
	}

	pairing, err := c.pairing(ctx, tokenID)
	if err != nil {
		c.logger.Warn("pairing unavailable", zap.Uint64("token_id", tokenID), zap.Error(err))
		pairing = nil
	}

	var pos *model.Position
	if len(pairing) == 2 && c.positions != nil {
		raw, err := c.positions.Position(ctx, tokenID)
		if err != nil {
			c.logger.Warn("position unavailable", zap.Uint64("token_id", tokenID), zap.Error(err))
		} else {
			pos = buildPosition(raw, pairing)
		}
	}

	if pos != nil && c.variant.Enrich && c.deposits != nil {
		sg, err := c.deposits.Position(ctx, tokenID)
		if err != nil {
			c.logger.Warn("position enrichment unavailable", zap.Uint64("token_id", tokenID), zap.Error(err))
		} else {
			enrich(pos, sg)
		}
	}

	return c.variant.decode(rec, pairing, pos)
}

// pairing resolves both tokens of an item concurrently.
func (c *Client) pairing(ctx context.Context, tokenID uint64) ([]model.ERC20Token, error) {
	if c.tokens == nil {
		return nil, fmt.Errorf("no token resolver configured")
	}
	addrs, err := c.reader.TokenAddrs(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	pairing := make([]model.ERC20Token, 2)
	g, gctx := errgroup.WithContext(ctx)
	for i := range addrs {
		i := i
		g.Go(func() error {
			token, err := c.tokens.Resolve(gctx, addrs[i].Hex())
			if err != nil {
				return fmt.Errorf("token%d %s: %w", i, addrs[i].Hex(), err)
			}
			pairing[i] = token
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pairing, nil
}

// AllListings assembles every enumerated item in enumeration order. A
// failed item becomes a placeholder; a failed enumeration yields nil.
func (c *Client) AllListings(ctx context.Context) []model.Listing {
	if c.reader == nil {
		c.logger.Warn("listing enumeration failed", zap.Error(errors.New("no contract reader configured")))
		return nil
	}
	ids, err := c.reader.ItemIDs(ctx)
	if err != nil {
		c.logger.Warn("listing enumeration failed", zap.Error(err))
		return nil
	}

	out := make([]model.Listing, len(ids))
	var g errgroup.Group
	if c.concurrency > 0 {
		g.SetLimit(c.concurrency)
	}
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			listing, err := c.AssembleListing(ctx, id)
			if err != nil {
				c.logger.Warn("listing assembly failed", zap.Uint64("token_id", id), zap.Error(err))
				listing = &model.Placeholder{Type: c.variant.Type, TokenID: id, Reason: err.Error()}
			}
			out[i] = listing
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Available returns the listings a visitor can take: unrented rentals,
// options listed for sale and every other live listing.
func (c *Client) Available(ctx context.Context) []model.Listing {
	return FilterAvailable(c.AllListings(ctx))
}

// RentalListings returns rentals without a renter.
func (c *Client) RentalListings(ctx context.Context) []model.Listing {
	return FilterRentable(c.AllListings(ctx))
}

// ListingsForSale returns options listed for sale.
func (c *Client) ListingsForSale(ctx context.Context) []model.Listing {
	return FilterForSale(c.AllListings(ctx))
}

// ByOwner returns listings whose seller is owner; empty means the session account.
func (c *Client) ByOwner(ctx context.Context, owner string) []model.Listing {
	if owner == "" {
		owner = c.account()
	}
	return FilterByOwner(c.AllListings(ctx), owner)
}

// ByRenter returns listings whose buyer is renter; empty means the session account.
func (c *Client) ByRenter(ctx context.Context, renter string) []model.Listing {
	if renter == "" {
		renter = c.account()
	}
	return FilterByRenter(c.AllListings(ctx), renter)
}

func (c *Client) account() string {
	if c.signer == nil {
		return ""
	}
	return c.signer.Account()
}

// IsMarketplaceOwner reports whether the session account owns the contract.
func (c *Client) IsMarketplaceOwner(ctx context.Context) (bool, error) {
	account := c.account()
	if account == "" || c.reader == nil {
		return false, nil
	}
	owner, err := c.reader.Owner(ctx)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(owner.Hex(), account), nil
}
