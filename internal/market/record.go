package market

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"lpmarket/internal/dex"
	"lpmarket/internal/model"
)

// record is one decoded contract struct, keyed by output name.
type record struct {
	method string
	values map[string]interface{}
}

func (r record) field(name string) (interface{}, error) {
	v, ok := r.values[name]
	if !ok || v == nil {
		return nil, &model.ShapeError{Method: r.method, Field: name}
	}
	return v, nil
}

func (r record) address(name string) (common.Address, error) {
	v, err := r.field(name)
	if err != nil {
		return common.Address{}, err
	}
	addr, err := dex.AsAddress(v)
	if err != nil {
		return common.Address{}, &model.ShapeError{Method: r.method, Field: name, Err: err}
	}
	return addr, nil
}

// optionalAddress maps the zero address to nil.
func (r record) optionalAddress(name string) (*string, error) {
	addr, err := r.address(name)
	if err != nil {
		return nil, err
	}
	if addr == (common.Address{}) {
		return nil, nil
	}
	hex := addr.Hex()
	return &hex, nil
}

func (r record) bigInt(name string) (*big.Int, error) {
	v, err := r.field(name)
	if err != nil {
		return nil, err
	}
	n, err := dex.AsBigInt(v)
	if err != nil {
		return nil, &model.ShapeError{Method: r.method, Field: name, Err: err}
	}
	return n, nil
}

func (r record) uint64(name string) (uint64, error) {
	n, err := r.bigInt(name)
	if err != nil {
		return 0, err
	}
	if n.Sign() < 0 || !n.IsUint64() {
		return 0, &model.ShapeError{Method: r.method, Field: name, Err: fmt.Errorf("%s out of range", n)}
	}
	return n.Uint64(), nil
}

func (r record) int64(name string) (int64, error) {
	n, err := r.bigInt(name)
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() {
		return 0, &model.ShapeError{Method: r.method, Field: name, Err: fmt.Errorf("%s out of range", n)}
	}
	return n.Int64(), nil
}

func (r record) ether(name string) (float64, error) {
	n, err := r.bigInt(name)
	if err != nil {
		return 0, err
	}
	return FromWei(n), nil
}

func (r record) boolean(name string) (bool, error) {
	v, err := r.field(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, &model.ShapeError{Method: r.method, Field: name, Err: fmt.Errorf("unexpected type %T", v)}
	}
	return b, nil
}

// expiry maps an on-chain timestamp of zero to nil.
func (r record) expiry(name string) (*time.Time, error) {
	ts, err := r.int64(name)
	if err != nil {
		return nil, err
	}
	if ts == 0 {
		return nil, nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t, nil
}

// decodeErr keeps the first error of a chain of field reads.
type decodeErr struct{ err error }

func (d *decodeErr) check(err error) {
	if d.err == nil {
		d.err = err
	}
}
