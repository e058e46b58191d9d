package dex

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

type fakeCaller struct {
	responses map[string][]byte
	calls     atomic.Int64
}

func newFakeCaller() *fakeCaller {
	return &fakeCaller{responses: make(map[string][]byte)}
}

func callKey(to common.Address, selector []byte) string {
	return strings.ToLower(to.Hex()) + ":" + hexutil.Encode(selector)
}

func (f *fakeCaller) set(t *testing.T, to common.Address, parsed abi.ABI, method string, outputs ...interface{}) {
	t.Helper()
	m, ok := parsed.Methods[method]
	if !ok {
		t.Fatalf("method %s not in abi", method)
	}
	data, err := m.Outputs.Pack(outputs...)
	if err != nil {
		t.Fatalf("pack %s: %v", method, err)
	}
	f.responses[callKey(to, m.ID)] = data
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls.Add(1)
	if msg.To == nil || len(msg.Data) < 4 {
		return nil, fmt.Errorf("bad call")
	}
	resp, ok := f.responses[callKey(*msg.To, msg.Data[:4])]
	if !ok {
		return nil, fmt.Errorf("execution reverted")
	}
	return resp, nil
}

func (f *fakeCaller) setToken(t *testing.T, token common.Address, symbol, name string, decimals uint8) {
	t.Helper()
	parsed, err := erc20ABIString.Get()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	f.set(t, token, parsed, "decimals", decimals)
	f.set(t, token, parsed, "symbol", symbol)
	f.set(t, token, parsed, "name", name)
}

type fakeLogSource struct {
	logs       []types.Log
	timestamps map[uint64]uint64
	queries    int
}

func (f *fakeLogSource) LatestBlockNumber(context.Context) (uint64, error) {
	var head uint64
	for _, lg := range f.logs {
		if lg.BlockNumber > head {
			head = lg.BlockNumber
		}
	}
	return head, nil
}

func (f *fakeLogSource) FilterLogs(_ context.Context, from, to uint64, _ []common.Address, _ []common.Hash) ([]types.Log, error) {
	f.queries++
	out := make([]types.Log, 0)
	for _, lg := range f.logs {
		if lg.BlockNumber >= from && lg.BlockNumber <= to {
			out = append(out, lg)
		}
	}
	return out, nil
}

func (f *fakeLogSource) BlockTimestamp(_ context.Context, number uint64) (uint64, error) {
	ts, ok := f.timestamps[number]
	if !ok {
		return 0, fmt.Errorf("unknown block %d", number)
	}
	return ts, nil
}
