package market

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

var marketAddress = common.HexToAddress("0xC1a7CFb1e1D5eBD1881ef18Dc7a01cfD638DbD7e")

func newWriteClient(v Variant, sender, approver *fakeSender) *Client {
	return newWriteClientWithReceipts(v, sender, approver, &fakeReceipts{status: types.ReceiptStatusSuccessful})
}

func newWriteClientWithReceipts(v Variant, sender, approver *fakeSender, receipts *fakeReceipts) *Client {
	return NewClient(v, Deps{
		Sender:   sender,
		Approver: approver,
		Receipts: receipts,
		Signer:   fakeSigner{account: alice.Hex()},
		Address:  marketAddress,
	})
}

func executed(c *Client, op Op, p TxParams) bool {
	_, ok := c.Execute(context.Background(), op, p)
	return ok
}

func TestCreateApprovesBeforeListing(t *testing.T) {
	sender, approver := &fakeSender{}, &fakeSender{}
	c := newWriteClient(Rental, sender, approver)

	tx, err := c.Submit(context.Background(), OpCreate, TxParams{TokenID: 11, PriceEther: 0.5, DurationSeconds: 3600})
	require.NoError(t, err)
	require.NotNil(t, tx)

	require.Len(t, approver.calls, 1)
	require.Equal(t, "approve", approver.calls[0].method)
	require.Equal(t, []interface{}{marketAddress, big.NewInt(11)}, approver.calls[0].params)

	require.Len(t, sender.calls, 1)
	call := sender.calls[0]
	require.Equal(t, "putUpNFTForRent", call.method)
	require.Equal(t, []interface{}{big.NewInt(11), wei("500000000000000000"), big.NewInt(3600)}, call.params)
	require.Nil(t, call.value)
}

func TestApprovalFailureAbortsCreate(t *testing.T) {
	sender, approver := &fakeSender{}, &fakeSender{err: errors.New("user rejected")}
	c := newWriteClient(Sale, sender, approver)

	require.False(t, executed(c, OpCreate, TxParams{TokenID: 11, PriceEther: 1}))
	require.Empty(t, sender.calls)
}

func TestRevertedApprovalBlocksCreate(t *testing.T) {
	sender, approver := &fakeSender{}, &fakeSender{}
	receipts := &fakeReceipts{status: types.ReceiptStatusFailed}
	c := newWriteClientWithReceipts(Rental, sender, approver, receipts)

	_, err := c.Submit(context.Background(), OpCreate, TxParams{TokenID: 11, PriceEther: 0.5, DurationSeconds: 3600})
	require.ErrorIs(t, err, ErrApprovalFailed)
	require.Len(t, approver.calls, 1)
	require.Len(t, receipts.waited, 1)
	require.Empty(t, sender.calls)
}

func TestCreateWaitsForApproval(t *testing.T) {
	sender, approver := &fakeSender{}, &fakeSender{}
	receipts := &fakeReceipts{status: types.ReceiptStatusSuccessful}
	c := newWriteClientWithReceipts(Swap, sender, approver, receipts)

	hash, ok := c.Execute(context.Background(), OpCreate, TxParams{TokenID: 5, DurationSeconds: 60})
	require.True(t, ok)
	require.NotEqual(t, common.Hash{}, hash)
	require.Len(t, receipts.waited, 1)
	require.Len(t, sender.calls, 1)
	require.Equal(t, "putUpNFTForSwap", sender.calls[0].method)
}

func TestNonCreateSkipsApproval(t *testing.T) {
	receipts := &fakeReceipts{status: types.ReceiptStatusSuccessful}
	approver := &fakeSender{}
	c := newWriteClientWithReceipts(Sale, &fakeSender{}, approver, receipts)

	require.True(t, executed(c, OpRemove, TxParams{TokenID: 2}))
	require.Empty(t, approver.calls)
	require.Empty(t, receipts.waited)
}

func TestVariantSupports(t *testing.T) {
	require.True(t, Auction.Supports(OpSettle))
	require.False(t, Sale.Supports(OpSettle))
}

func TestPayableOpCarriesValue(t *testing.T) {
	sender := &fakeSender{}
	c := newWriteClient(Auction, sender, &fakeSender{})

	require.True(t, executed(c, OpAccept, TxParams{TokenID: 3, PriceEther: 1.25}))
	require.Len(t, sender.calls, 1)
	require.Equal(t, "bidOnNFT", sender.calls[0].method)
	require.Equal(t, wei("1250000000000000000"), sender.calls[0].value)
}

func TestSwapOffer(t *testing.T) {
	sender := &fakeSender{}
	c := newWriteClient(Swap, sender, &fakeSender{})

	require.True(t, executed(c, OpOffer, TxParams{TokenID: 3, OfferTokenID: 4}))
	require.Equal(t, []interface{}{big.NewInt(3), big.NewInt(4)}, sender.calls[0].params)

	require.False(t, executed(c, OpOffer, TxParams{TokenID: 3}))
}

func TestCreateLongOption(t *testing.T) {
	sender := &fakeSender{}
	c := newWriteClient(Option, sender, &fakeSender{})

	_, err := c.Submit(context.Background(), OpCreate, TxParams{
		TokenID:         8,
		PriceEther:      0.1,
		DurationSeconds: 604800,
		Percentage:      50,
		TokenLong:       weth.Address,
	})
	require.NoError(t, err)
	require.Equal(t, "createLongOption", sender.calls[0].method)
	require.Equal(t, common.HexToAddress(weth.Address), sender.calls[0].params[4])

	_, err = c.Submit(context.Background(), OpCreate, TxParams{TokenID: 8, DurationSeconds: 1, TokenLong: "nope"})
	require.Error(t, err)
}

func TestUnsupportedOp(t *testing.T) {
	c := newWriteClient(Sale, &fakeSender{}, &fakeSender{})
	_, err := c.Submit(context.Background(), OpSettle, TxParams{TokenID: 1})
	require.ErrorIs(t, err, ErrUnsupportedOp)
}

func TestReadOnlySessionCannotWrite(t *testing.T) {
	sender := &fakeSender{}
	c := NewClient(Rental, Deps{Sender: sender, Approver: &fakeSender{}, Signer: fakeSigner{}})
	require.False(t, executed(c, OpWithdraw, TxParams{}))
	require.Empty(t, sender.calls)
}

func TestCommonOpsOnEveryVariant(t *testing.T) {
	for _, v := range Variants {
		ops := v.Ops()
		require.Contains(t, ops, OpWithdrawFees, v.Name())
		require.Contains(t, ops, OpWithdraw, v.Name())
		require.Contains(t, ops, OpCreate, v.Name())
	}
}

func TestParseOp(t *testing.T) {
	op, err := ParseOp("accept-offer")
	require.NoError(t, err)
	require.Equal(t, OpAcceptOffer, op)

	_, err = ParseOp("burn")
	require.Error(t, err)
}
