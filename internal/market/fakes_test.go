package market

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"lpmarket/internal/dex"
	"lpmarket/internal/model"
	"lpmarket/internal/subgraph"
)

var (
	weth  = model.ERC20Token{Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", Symbol: "WETH", Name: "Wrapped Ether", Decimals: 18}
	usdc  = model.ERC20Token{Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Symbol: "USDC", Name: "USD Coin", Decimals: 6}
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func wei(ether string) *big.Int {
	n, ok := new(big.Int).SetString(ether, 10)
	if !ok {
		panic("bad integer " + ether)
	}
	return n
}

type fakeReader struct {
	ids     []uint64
	idsErr  error
	records map[uint64]map[string]interface{}
	addrs   map[uint64][2]common.Address
	owner   common.Address
}

func (f *fakeReader) ItemIDs(context.Context) ([]uint64, error) {
	return f.ids, f.idsErr
}

func (f *fakeReader) Record(_ context.Context, _ string, id uint64) (map[string]interface{}, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return rec, nil
}

func (f *fakeReader) TokenAddrs(_ context.Context, id uint64) ([2]common.Address, error) {
	addrs, ok := f.addrs[id]
	if !ok {
		return [2]common.Address{}, errors.New("execution reverted")
	}
	return addrs, nil
}

func (f *fakeReader) Owner(context.Context) (common.Address, error) {
	return f.owner, nil
}

type fakeTokens map[string]model.ERC20Token

func (f fakeTokens) Resolve(_ context.Context, address string) (model.ERC20Token, error) {
	token, ok := f[strings.ToLower(address)]
	if !ok {
		return model.ERC20Token{}, errors.New("decimals reverted")
	}
	return token, nil
}

func defaultTokens() fakeTokens {
	return fakeTokens{
		strings.ToLower(weth.Address): weth,
		strings.ToLower(usdc.Address): usdc,
	}
}

type fakePositions map[uint64]dex.RawPosition

func (f fakePositions) Position(_ context.Context, id uint64) (dex.RawPosition, error) {
	pos, ok := f[id]
	if !ok {
		return dex.RawPosition{}, errors.New("invalid token id")
	}
	return pos, nil
}

type fakeDeposits struct {
	err error
}

func (f fakeDeposits) Position(_ context.Context, id uint64) (subgraph.Position, error) {
	if f.err != nil {
		return subgraph.Position{}, f.err
	}
	return subgraph.Position{
		Pool:            &subgraph.EntityRef{ID: "0x88e6a0c2ddd26feeb64f039a2c41296fcb3f5640"},
		DepositedToken0: "1500.5",
		DepositedToken1: "0.75",
	}, nil
}

type sentTx struct {
	method string
	params []interface{}
	value  *big.Int
}

type fakeSender struct {
	mu    sync.Mutex
	calls []sentTx
	err   error
}

func (f *fakeSender) Transact(opts *bind.TransactOpts, method string, params ...interface{}) (*types.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, sentTx{method: method, params: params, value: opts.Value})
	return types.NewTx(&types.LegacyTx{Nonce: uint64(len(f.calls))}), nil
}

type fakeReceipts struct {
	mu     sync.Mutex
	status uint64
	waited []common.Hash
}

func (f *fakeReceipts) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waited = append(f.waited, hash)
	return &types.Receipt{TxHash: hash, Status: f.status}, nil
}

func (f *fakeReceipts) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return nil, nil
}

type fakeSigner struct {
	account string
}

func (f fakeSigner) Transactor(ctx context.Context, value *big.Int) (*bind.TransactOpts, error) {
	if f.account == "" {
		return nil, errors.New("no account")
	}
	return &bind.TransactOpts{From: common.HexToAddress(f.account), Context: ctx, Value: value}, nil
}

func (f fakeSigner) Account() string {
	return f.account
}

func rentRecord(tokenID int64, renter common.Address, priceWei *big.Int, expiry int64) map[string]interface{} {
	return map[string]interface{}{
		"originalOwner": alice,
		"renter":        renter,
		"tokenId":       big.NewInt(tokenID),
		"price":         priceWei,
		"duration":      big.NewInt(86400),
		"expiryDate":    big.NewInt(expiry),
	}
}

func rawPosition() dex.RawPosition {
	return dex.RawPosition{
		Token0:      common.HexToAddress(weth.Address),
		Token1:      common.HexToAddress(usdc.Address),
		Fee:         3000,
		TickLower:   -200,
		TickUpper:   200,
		Liquidity:   big.NewInt(123456),
		FeeGrowth0:  big.NewInt(1),
		FeeGrowth1:  big.NewInt(2),
		TokensOwed0: big.NewInt(0),
		TokensOwed1: nil,
	}
}

func pairAddrs() [2]common.Address {
	return [2]common.Address{common.HexToAddress(weth.Address), common.HexToAddress(usdc.Address)}
}
