package dex

import (
	"context"
	"encoding/base64"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"lpmarket/internal/model"
)

func TestPositionManagerPosition(t *testing.T) {
	manager := common.HexToAddress("0xC36442b4a4522E871399CD717aBDD847Ab11FE88")
	token0 := common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	token1 := common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")

	parsed, err := PositionManagerABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	caller := newFakeCaller()
	caller.set(t, manager, parsed, "positions",
		big.NewInt(0),
		common.Address{},
		token0,
		token1,
		big.NewInt(3000),
		big.NewInt(-887220),
		big.NewInt(887220),
		big.NewInt(123456789),
		big.NewInt(11),
		big.NewInt(22),
		big.NewInt(33),
		big.NewInt(44),
	)

	pos, err := NewPositionManager(caller, manager).Position(context.Background(), 8302)
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if pos.Token0 != token0 || pos.Token1 != token1 {
		t.Fatalf("token mismatch: %+v", pos)
	}
	if pos.Fee != 3000 || pos.TickLower != -887220 || pos.TickUpper != 887220 {
		t.Fatalf("fee/tick mismatch: %+v", pos)
	}
	if pos.Liquidity.String() != "123456789" || pos.TokensOwed1.Int64() != 44 {
		t.Fatalf("amount mismatch: %+v", pos)
	}
}

func TestDecodePositionShape(t *testing.T) {
	_, err := decodePosition([]interface{}{big.NewInt(1)})
	if !errors.Is(err, model.ErrUnexpectedShape) {
		t.Fatalf("expected shape error, got %v", err)
	}
}

func TestDecodeTokenImage(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte(`{"name":"Uniswap - 0.3%","image":"data:image/svg+xml;base64,PHN2Zz4="}`))
	image, err := DecodeTokenImage(TokenURIPrefix + payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if image != "data:image/svg+xml;base64,PHN2Zz4=" {
		t.Fatalf("image mismatch: %s", image)
	}

	if _, err := DecodeTokenImage("ipfs://whatever"); err == nil {
		t.Fatalf("expected error for non data uri")
	}

	noImage := base64.StdEncoding.EncodeToString([]byte(`{"name":"x"}`))
	if _, err := DecodeTokenImage(TokenURIPrefix + noImage); !errors.Is(err, model.ErrUnexpectedShape) {
		t.Fatalf("expected shape error, got %v", err)
	}
}
