package market

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// Op names a marketplace write independent of the variant's method name.
type Op string

const (
	OpCreate       Op = "create"
	OpRemove       Op = "remove"
	OpAccept       Op = "accept"
	OpSettle       Op = "settle"
	OpListForSale  Op = "list-for-sale"
	OpOffer        Op = "offer"
	OpAcceptOffer  Op = "accept-offer"
	OpWithdrawFees Op = "withdraw-fees"
	OpReturn       Op = "return"
	OpWithdraw     Op = "withdraw"
)

var allOps = []Op{
	OpCreate, OpRemove, OpAccept, OpSettle, OpListForSale,
	OpOffer, OpAcceptOffer, OpWithdrawFees, OpReturn, OpWithdraw,
}

// ErrUnsupportedOp is returned when a variant has no method for an op.
var ErrUnsupportedOp = errors.New("operation not supported by variant")

// TxParams carries the user inputs of a write. Unused fields are ignored.
type TxParams struct {
	TokenID         uint64
	OfferTokenID    uint64
	PriceEther      float64
	DurationSeconds int64
	Percentage      int64
	TokenLong       string
}

type opSpec struct {
	method  string
	args    func(TxParams) ([]interface{}, error)
	payable bool
	// approve grants the marketplace the position NFT first.
	approve bool
}

func withCommonOps(ops map[Op]opSpec) map[Op]opSpec {
	ops[OpWithdrawFees] = opSpec{method: "withdrawFees", args: argsToken}
	ops[OpWithdraw] = opSpec{method: "withdraw", args: argsNone}
	return ops
}

func tokenArg(id uint64) *big.Int {
	return new(big.Int).SetUint64(id)
}

func argsNone(TxParams) ([]interface{}, error) {
	return nil, nil
}

func argsToken(p TxParams) ([]interface{}, error) {
	return []interface{}{tokenArg(p.TokenID)}, nil
}

func durationArg(p TxParams) (*big.Int, error) {
	if p.DurationSeconds <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %d", p.DurationSeconds)
	}
	return big.NewInt(p.DurationSeconds), nil
}

func priceArg(p TxParams) (*big.Int, error) {
	if p.PriceEther < 0 {
		return nil, fmt.Errorf("price must not be negative, got %v", p.PriceEther)
	}
	return ToWei(p.PriceEther), nil
}

func argsTokenPrice(p TxParams) ([]interface{}, error) {
	price, err := priceArg(p)
	if err != nil {
		return nil, err
	}
	return []interface{}{tokenArg(p.TokenID), price}, nil
}

func argsTokenDuration(p TxParams) ([]interface{}, error) {
	duration, err := durationArg(p)
	if err != nil {
		return nil, err
	}
	return []interface{}{tokenArg(p.TokenID), duration}, nil
}

func argsTokenPriceDuration(p TxParams) ([]interface{}, error) {
	price, err := priceArg(p)
	if err != nil {
		return nil, err
	}
	duration, err := durationArg(p)
	if err != nil {
		return nil, err
	}
	return []interface{}{tokenArg(p.TokenID), price, duration}, nil
}

func argsLongOption(p TxParams) ([]interface{}, error) {
	premium, err := priceArg(p)
	if err != nil {
		return nil, err
	}
	duration, err := durationArg(p)
	if err != nil {
		return nil, err
	}
	if p.Percentage <= 0 || p.Percentage > 100 {
		return nil, fmt.Errorf("percentage must be within 1..100, got %d", p.Percentage)
	}
	if !common.IsHexAddress(p.TokenLong) {
		return nil, fmt.Errorf("invalid long token address %q", p.TokenLong)
	}
	return []interface{}{
		tokenArg(p.TokenID),
		premium,
		duration,
		big.NewInt(p.Percentage),
		common.HexToAddress(p.TokenLong),
	}, nil
}

func argsSwapPair(p TxParams) ([]interface{}, error) {
	if p.OfferTokenID == 0 {
		return nil, fmt.Errorf("offer token id is required")
	}
	return []interface{}{tokenArg(p.TokenID), tokenArg(p.OfferTokenID)}, nil
}

// ErrApprovalFailed is returned when the approval preceding a create
// is mined but reverted.
var ErrApprovalFailed = errors.New("approval reverted")

// Submit signs and sends one write. Create operations approve the
// marketplace on the position manager first, wait for the approval to be
// mined, and stop if it fails. Gas for the create is estimated against
// the latest block, so the approval has to be there already.
func (c *Client) Submit(ctx context.Context, op Op, p TxParams) (*types.Transaction, error) {
	spec, ok := c.variant.ops[op]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrUnsupportedOp, c.variant.Name(), op)
	}
	if c.sender == nil || c.signer == nil {
		return nil, fmt.Errorf("%s %s: no transaction sender configured", c.variant.Name(), op)
	}
	args, err := spec.args(p)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", c.variant.Name(), op, err)
	}

	if spec.approve {
		if c.approver == nil || c.receipts == nil {
			return nil, fmt.Errorf("%s %s: no position manager configured", c.variant.Name(), op)
		}
		opts, err := c.signer.Transactor(ctx, nil)
		if err != nil {
			return nil, err
		}
		approval, err := c.approver.Transact(opts, "approve", c.address, tokenArg(p.TokenID))
		if err != nil {
			return nil, fmt.Errorf("approve %d: %w", p.TokenID, err)
		}
		c.logger.Info("approval sent",
			zap.String("variant", c.variant.Name()),
			zap.Uint64("token_id", p.TokenID),
			zap.String("tx", approval.Hash().Hex()),
		)
		receipt, err := bind.WaitMined(ctx, c.receipts, approval)
		if err != nil {
			return nil, fmt.Errorf("approve %d: wait mined: %w", p.TokenID, err)
		}
		if receipt.Status != types.ReceiptStatusSuccessful {
			return nil, fmt.Errorf("approve %d: %w (tx %s)", p.TokenID, ErrApprovalFailed, approval.Hash().Hex())
		}
	}

	var value *big.Int
	if spec.payable {
		value = ToWei(p.PriceEther)
	}
	opts, err := c.signer.Transactor(ctx, value)
	if err != nil {
		return nil, err
	}
	tx, err := c.sender.Transact(opts, spec.method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.method, err)
	}
	return tx, nil
}

// Execute runs Submit and reports success, logging the failure. The hash
// is zero when the write was not sent.
func (c *Client) Execute(ctx context.Context, op Op, p TxParams) (common.Hash, bool) {
	tx, err := c.Submit(ctx, op, p)
	c.metrics.ObserveTransaction(c.variant.Name(), string(op), err == nil)
	if err != nil {
		c.logger.Warn("transaction failed",
			zap.String("variant", c.variant.Name()),
			zap.String("op", string(op)),
			zap.Uint64("token_id", p.TokenID),
			zap.Error(err),
		)
		return common.Hash{}, false
	}
	c.logger.Info("transaction sent",
		zap.String("variant", c.variant.Name()),
		zap.String("op", string(op)),
		zap.Uint64("token_id", p.TokenID),
		zap.String("tx", tx.Hash().Hex()),
	)
	return tx.Hash(), true
}

// ParseOp accepts an op name as printed by Ops.
func ParseOp(value string) (Op, error) {
	for _, op := range allOps {
		if string(op) == value {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown operation %q", value)
}
