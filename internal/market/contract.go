package market

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"lpmarket/internal/chain"
	"lpmarket/internal/dex"
	"lpmarket/internal/model"
)

// ContractReader is the read surface of a marketplace contract.
type ContractReader interface {
	ItemIDs(ctx context.Context) ([]uint64, error)
	// Record returns the named outputs of a per-item info method.
	Record(ctx context.Context, method string, id uint64) (map[string]interface{}, error)
	TokenAddrs(ctx context.Context, id uint64) ([2]common.Address, error)
	Owner(ctx context.Context) (common.Address, error)
}

type chainReader struct {
	caller  chain.Caller
	address common.Address
	abi     *dex.LazyABI
}

// NewContractReader reads a variant's marketplace contract at address.
func NewContractReader(caller chain.Caller, address common.Address, variant Variant) ContractReader {
	return &chainReader{caller: caller, address: address, abi: variant.abi}
}

func (r *chainReader) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	parsed, err := r.abi.Get()
	if err != nil {
		return nil, fmt.Errorf("parse marketplace abi: %w", err)
	}
	return dex.Call(ctx, r.caller, r.address, parsed, method, args...)
}

func (r *chainReader) ItemIDs(ctx context.Context) ([]uint64, error) {
	const method = "getAllItemIds"
	values, err := r.call(ctx, method)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, &model.ShapeError{Method: method, Field: "outputs", Err: fmt.Errorf("got %d values", len(values))}
	}
	raw, ok := values[0].([]*big.Int)
	if !ok {
		return nil, &model.ShapeError{Method: method, Field: "0", Err: fmt.Errorf("unexpected type %T", values[0])}
	}
	ids := make([]uint64, 0, len(raw))
	for _, id := range raw {
		if id == nil || !id.IsUint64() {
			return nil, &model.ShapeError{Method: method, Field: "0", Err: fmt.Errorf("item id %v out of range", id)}
		}
		ids = append(ids, id.Uint64())
	}
	return ids, nil
}

func (r *chainReader) Record(ctx context.Context, method string, id uint64) (map[string]interface{}, error) {
	parsed, err := r.abi.Get()
	if err != nil {
		return nil, fmt.Errorf("parse marketplace abi: %w", err)
	}
	data, err := parsed.Pack(method, new(big.Int).SetUint64(id))
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	resp, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &r.address, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	out := make(map[string]interface{})
	if err := parsed.UnpackIntoMap(out, method, resp); err != nil {
		return nil, &model.ShapeError{Method: method, Field: "outputs", Err: err}
	}
	return out, nil
}

func (r *chainReader) TokenAddrs(ctx context.Context, id uint64) ([2]common.Address, error) {
	const method = "itemIdToTokenAddrs"
	var out [2]common.Address
	values, err := r.call(ctx, method, new(big.Int).SetUint64(id))
	if err != nil {
		return out, err
	}
	if len(values) != 2 {
		return out, &model.ShapeError{Method: method, Field: "outputs", Err: fmt.Errorf("got %d values", len(values))}
	}
	for i, field := range []string{"token0Addr", "token1Addr"} {
		addr, err := dex.AsAddress(values[i])
		if err != nil {
			return out, &model.ShapeError{Method: method, Field: field, Err: err}
		}
		out[i] = addr
	}
	return out, nil
}

func (r *chainReader) Owner(ctx context.Context) (common.Address, error) {
	const method = "_owner"
	values, err := r.call(ctx, method)
	if err != nil {
		return common.Address{}, err
	}
	if len(values) != 1 {
		return common.Address{}, &model.ShapeError{Method: method, Field: "outputs", Err: fmt.Errorf("got %d values", len(values))}
	}
	addr, err := dex.AsAddress(values[0])
	if err != nil {
		return common.Address{}, &model.ShapeError{Method: method, Field: "0", Err: err}
	}
	return addr, nil
}

// BindContracts returns transactors for the marketplace and the position manager.
func BindContracts(backend bind.ContractBackend, marketplace, positionManager common.Address, variant Variant) (*bind.BoundContract, *bind.BoundContract, error) {
	marketABI, err := variant.abi.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("parse marketplace abi: %w", err)
	}
	managerABI, err := dex.PositionManagerABI()
	if err != nil {
		return nil, nil, fmt.Errorf("parse position manager abi: %w", err)
	}
	market := bind.NewBoundContract(marketplace, marketABI, backend, backend, backend)
	manager := bind.NewBoundContract(positionManager, managerABI, backend, backend, backend)
	return market, manager, nil
}
