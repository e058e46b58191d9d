package dex

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgraph-io/ristretto"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"lpmarket/internal/chain"
	"lpmarket/internal/model"
)

// TokenMetaCache keeps ERC-20 metadata for the lifetime of the process.
type TokenMetaCache struct {
	cache *ristretto.Cache
}

// NewTokenMetaCache sizes the cache for a few thousand tokens.
func NewTokenMetaCache() (*TokenMetaCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 40000,
		MaxCost:     4000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create token cache: %w", err)
	}
	return &TokenMetaCache{cache: cache}, nil
}

func cacheKey(address common.Address) string {
	return strings.ToLower(address.Hex())
}

func (c *TokenMetaCache) Get(address common.Address) (model.ERC20Token, bool) {
	if c == nil {
		return model.ERC20Token{}, false
	}
	value, ok := c.cache.Get(cacheKey(address))
	if !ok {
		return model.ERC20Token{}, false
	}
	token, ok := value.(model.ERC20Token)
	return token, ok
}

func (c *TokenMetaCache) Set(address common.Address, token model.ERC20Token) {
	if c == nil {
		return
	}
	c.cache.Set(cacheKey(address), token, 1)
}

// Wait blocks until buffered writes are visible to Get.
func (c *TokenMetaCache) Wait() {
	if c != nil {
		c.cache.Wait()
	}
}

func (c *TokenMetaCache) Close() {
	if c != nil {
		c.cache.Close()
	}
}

// TokenResolver looks up pairing tokens, reading through the cache.
type TokenResolver struct {
	caller chain.Caller
	cache  *TokenMetaCache
	logger *zap.Logger
}

func NewTokenResolver(caller chain.Caller, cache *TokenMetaCache, logger *zap.Logger) *TokenResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenResolver{caller: caller, cache: cache, logger: logger}
}

// Resolve returns the metadata of the ERC-20 at address.
func (r *TokenResolver) Resolve(ctx context.Context, address string) (model.ERC20Token, error) {
	if !common.IsHexAddress(address) {
		return model.ERC20Token{Address: address}, fmt.Errorf("invalid token address %q", address)
	}
	token := common.HexToAddress(address)
	if cached, ok := r.cache.Get(token); ok {
		return cached, nil
	}

	meta, err := FetchTokenMeta(ctx, r.caller, token, r.logger)
	if err != nil {
		return meta, err
	}
	r.cache.Set(token, meta)
	return meta, nil
}

// FetchTokenMeta loads token metadata via ERC20 calls. Decimals are required;
// symbol and name fall back to bytes32 encodings and stay empty on failure.
func FetchTokenMeta(ctx context.Context, caller chain.Caller, token common.Address, logger *zap.Logger) (model.ERC20Token, error) {
	meta := model.ERC20Token{Address: token.Hex()}
	if caller == nil {
		return meta, fmt.Errorf("chain client is nil")
	}

	stringABI, err := erc20ABIString.Get()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := erc20ABIBytes32.Get()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	call := func(method string, parsed abi.ABI) ([]interface{}, error) {
		return Call(ctx, caller, token, parsed, method)
	}

	values, err := call("decimals", stringABI)
	if err != nil {
		return meta, err
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return meta, &model.ShapeError{Method: "decimals", Field: "0", Err: err}
	}
	meta.Decimals = decimals

	if values, err := call("symbol", stringABI); err == nil {
		if symbol, ok := values[0].(string); ok {
			meta.Symbol = symbol
		}
	} else if values, err := call("symbol", bytes32ABI); err == nil {
		if symbol, ok := bytes32ToString(values[0]); ok {
			meta.Symbol = symbol
		}
	} else if logger != nil {
		logger.Debug("symbol call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	if values, err := call("name", stringABI); err == nil {
		if name, ok := values[0].(string); ok {
			meta.Name = name
		}
	} else if values, err := call("name", bytes32ABI); err == nil {
		if name, ok := bytes32ToString(values[0]); ok {
			meta.Name = name
		}
	} else if logger != nil {
		logger.Debug("name call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	return meta, nil
}
