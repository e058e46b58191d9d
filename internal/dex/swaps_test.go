package dex

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

func TestSwapReaderFetchPoolSwaps(t *testing.T) {
	poolABI, err := V3PoolABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	pool := common.HexToAddress("0x1111111111111111111111111111111111111111")
	token0 := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	token1 := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")

	caller := newFakeCaller()
	caller.set(t, pool, poolABI, "token0", token0)
	caller.set(t, pool, poolABI, "token1", token1)
	caller.setToken(t, token0, "USDC", "USD Coin", 6)
	caller.setToken(t, token1, "WETH", "Wrapped Ether", 18)

	data, err := poolABI.Events["Swap"].Inputs.NonIndexed().Pack(
		big.NewInt(-2500000000),
		big.NewInt(1000000000000000000),
		big.NewInt(123456789),
		big.NewInt(987654321),
		big.NewInt(-15),
	)
	if err != nil {
		t.Fatalf("pack swap: %v", err)
	}

	logs := &fakeLogSource{
		logs: []types.Log{
			{Address: pool, BlockNumber: 101, Data: data, Topics: []common.Hash{poolABI.Events["Swap"].ID}},
			{Address: pool, BlockNumber: 104, Data: data, Topics: []common.Hash{poolABI.Events["Swap"].ID}, Removed: true},
			{Address: pool, BlockNumber: 105, Data: []byte{0x01}, Topics: []common.Hash{poolABI.Events["Swap"].ID}},
		},
		timestamps: map[uint64]uint64{101: 1700000000, 105: 1700000060},
	}

	reader := NewSwapReader(logs, caller, NewTokenResolver(caller, nil, nil), 2, zap.NewNop())
	swaps, err := reader.FetchPoolSwaps(context.Background(), pool, 100, 105)
	if err != nil {
		t.Fatalf("fetch swaps: %v", err)
	}

	if logs.queries != 3 {
		t.Fatalf("expected 3 batched queries, got %d", logs.queries)
	}
	if len(swaps) != 1 {
		t.Fatalf("expected one decodable swap, got %d", len(swaps))
	}
	swap := swaps[0]
	if swap.Amount0 != "-2500.000000" || swap.Amount1 != "1.000000000000000000" {
		t.Fatalf("amounts mismatch: %+v", swap)
	}
	if swap.Tick != "-15" || swap.Timestamp != "1700000000" {
		t.Fatalf("tick/timestamp mismatch: %+v", swap)
	}
}
