package dex

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"lpmarket/internal/chain"
	"lpmarket/internal/model"
)

// TokenURIPrefix introduces the base64 JSON metadata returned by tokenURI.
const TokenURIPrefix = "data:application/json;base64,"

// RawPosition is the on-chain state of a position NFT.
type RawPosition struct {
	Token0      common.Address
	Token1      common.Address
	Fee         uint32
	TickLower   int32
	TickUpper   int32
	Liquidity   *big.Int
	FeeGrowth0  *big.Int
	FeeGrowth1  *big.Int
	TokensOwed0 *big.Int
	TokensOwed1 *big.Int
}

// PositionManager reads the Uniswap V3 NonfungiblePositionManager.
type PositionManager struct {
	caller  chain.Caller
	address common.Address
}

func NewPositionManager(caller chain.Caller, address common.Address) *PositionManager {
	return &PositionManager{caller: caller, address: address}
}

// Address returns the registry contract address.
func (m *PositionManager) Address() common.Address {
	return m.address
}

// Position loads positions(tokenId).
func (m *PositionManager) Position(ctx context.Context, tokenID uint64) (RawPosition, error) {
	parsed, err := PositionManagerABI()
	if err != nil {
		return RawPosition{}, fmt.Errorf("parse position manager abi: %w", err)
	}
	values, err := Call(ctx, m.caller, m.address, parsed, "positions", new(big.Int).SetUint64(tokenID))
	if err != nil {
		return RawPosition{}, err
	}
	return decodePosition(values)
}

func decodePosition(values []interface{}) (RawPosition, error) {
	const method = "positions"
	if len(values) != 12 {
		return RawPosition{}, &model.ShapeError{Method: method, Field: "outputs", Err: fmt.Errorf("got %d values", len(values))}
	}

	var (
		pos RawPosition
		err error
	)
	if pos.Token0, err = AsAddress(values[2]); err != nil {
		return RawPosition{}, &model.ShapeError{Method: method, Field: "token0", Err: err}
	}
	if pos.Token1, err = AsAddress(values[3]); err != nil {
		return RawPosition{}, &model.ShapeError{Method: method, Field: "token1", Err: err}
	}
	fee, err := AsBigInt(values[4])
	if err != nil {
		return RawPosition{}, &model.ShapeError{Method: method, Field: "fee", Err: err}
	}
	pos.Fee = uint32(fee.Uint64())

	tickLower, err := AsBigInt(values[5])
	if err == nil {
		pos.TickLower, err = int24FromBig(tickLower)
	}
	if err != nil {
		return RawPosition{}, &model.ShapeError{Method: method, Field: "tickLower", Err: err}
	}
	tickUpper, err := AsBigInt(values[6])
	if err == nil {
		pos.TickUpper, err = int24FromBig(tickUpper)
	}
	if err != nil {
		return RawPosition{}, &model.ShapeError{Method: method, Field: "tickUpper", Err: err}
	}

	bigFields := []struct {
		name   string
		index  int
		target **big.Int
	}{
		{"liquidity", 7, &pos.Liquidity},
		{"feeGrowthInside0LastX128", 8, &pos.FeeGrowth0},
		{"feeGrowthInside1LastX128", 9, &pos.FeeGrowth1},
		{"tokensOwed0", 10, &pos.TokensOwed0},
		{"tokensOwed1", 11, &pos.TokensOwed1},
	}
	for _, field := range bigFields {
		v, err := AsBigInt(values[field.index])
		if err != nil {
			return RawPosition{}, &model.ShapeError{Method: method, Field: field.name, Err: err}
		}
		*field.target = v
	}
	return pos, nil
}

// TokenURI loads the raw metadata URI of a position.
func (m *PositionManager) TokenURI(ctx context.Context, tokenID uint64) (string, error) {
	parsed, err := PositionManagerABI()
	if err != nil {
		return "", fmt.Errorf("parse position manager abi: %w", err)
	}
	values, err := Call(ctx, m.caller, m.address, parsed, "tokenURI", new(big.Int).SetUint64(tokenID))
	if err != nil {
		return "", err
	}
	uri, ok := values[0].(string)
	if !ok {
		return "", &model.ShapeError{Method: "tokenURI", Field: "0", Err: fmt.Errorf("unexpected type %T", values[0])}
	}
	return uri, nil
}

// Image returns the image field of a position's metadata, an SVG data URI.
func (m *PositionManager) Image(ctx context.Context, tokenID uint64) (string, error) {
	uri, err := m.TokenURI(ctx, tokenID)
	if err != nil {
		return "", err
	}
	return DecodeTokenImage(uri)
}

// DecodeTokenImage extracts the image field from a base64 JSON data URI.
func DecodeTokenImage(uri string) (string, error) {
	if !strings.HasPrefix(uri, TokenURIPrefix) {
		return "", fmt.Errorf("token uri: missing %q prefix", TokenURIPrefix)
	}
	raw, err := base64.StdEncoding.DecodeString(uri[len(TokenURIPrefix):])
	if err != nil {
		return "", fmt.Errorf("token uri: %w", err)
	}
	var meta struct {
		Image *string `json:"image"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return "", fmt.Errorf("token uri: %w", err)
	}
	if meta.Image == nil {
		return "", &model.ShapeError{Method: "tokenURI", Field: "image"}
	}
	return *meta.Image, nil
}
