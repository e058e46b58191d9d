package market

import (
	"errors"
	"fmt"
	"strings"

	"lpmarket/internal/dex"
	"lpmarket/internal/model"
)

// ErrUnknownVariant is returned for a listing type without a marketplace contract.
var ErrUnknownVariant = errors.New("unknown marketplace variant")

type decodeFunc func(r record, pairing []model.ERC20Token, pos *model.Position) (model.Listing, error)

// Variant describes one marketplace contract: its ABI, the method that
// returns a listing record, how to decode it and which writes it accepts.
type Variant struct {
	Type       model.ListingType
	InfoMethod string
	// Enrich attaches subgraph deposit data to positions.
	Enrich bool

	abi    *dex.LazyABI
	decode decodeFunc
	ops    map[Op]opSpec
}

// Name is the lowercase variant name used in logs and metrics.
func (v Variant) Name() string {
	return strings.ToLower(string(v.Type))
}

// Ops lists the write operations the variant accepts.
func (v Variant) Ops() []Op {
	out := make([]Op, 0, len(v.ops))
	for _, op := range allOps {
		if _, ok := v.ops[op]; ok {
			out = append(out, op)
		}
	}
	return out
}

// Supports reports whether the variant has a method for op.
func (v Variant) Supports(op Op) bool {
	_, ok := v.ops[op]
	return ok
}

var (
	Rental = Variant{
		Type:       model.ListingRental,
		InfoMethod: "itemIdToRentInfo",
		Enrich:     true,
		abi:        rentalABI,
		decode:     decodeRent,
		ops: withCommonOps(map[Op]opSpec{
			OpCreate: {method: "putUpNFTForRent", args: argsTokenPriceDuration, approve: true},
			OpRemove: {method: "removeNFTForRent", args: argsToken},
			OpAccept: {method: "rentNFT", args: argsToken, payable: true},
			OpReturn: {method: "returnNFTToOwner", args: argsToken},
		}),
	}
	Sale = Variant{
		Type:       model.ListingSale,
		InfoMethod: "itemIdToSaleInfo",
		Enrich:     true,
		abi:        saleABI,
		decode:     decodeSale,
		ops: withCommonOps(map[Op]opSpec{
			OpCreate: {method: "putUpNFTForSale", args: argsTokenPrice, approve: true},
			OpRemove: {method: "removeNFTForSale", args: argsToken},
			OpAccept: {method: "buyNFT", args: argsToken, payable: true},
			OpReturn: {method: "returnNFTToOwner", args: argsToken},
		}),
	}
	Auction = Variant{
		Type:       model.ListingAuction,
		InfoMethod: "itemIdToAuctionInfo",
		abi:        auctionABI,
		decode:     decodeAuction,
		ops: withCommonOps(map[Op]opSpec{
			OpCreate: {method: "putUpNFTForAuction", args: argsTokenPriceDuration, approve: true},
			OpRemove: {method: "removeNFTForAuction", args: argsToken},
			OpAccept: {method: "bidOnNFT", args: argsToken, payable: true},
			OpSettle: {method: "sendNFTToHighestBidder", args: argsToken},
			OpReturn: {method: "returnNFTToOwner", args: argsToken},
		}),
	}
	Option = Variant{
		Type:       model.ListingOption,
		InfoMethod: "itemIdToOptionInfo",
		abi:        optionABI,
		decode:     decodeOption,
		ops: withCommonOps(map[Op]opSpec{
			OpCreate:      {method: "createLongOption", args: argsLongOption, approve: true},
			OpListForSale: {method: "putUpOptionForSale", args: argsToken},
			OpAccept:      {method: "buyOption", args: argsToken, payable: true},
			OpSettle:      {method: "exerciseOption", args: argsToken},
			OpReturn:      {method: "returnToOriginalOwner", args: argsToken},
		}),
	}
	Swap = Variant{
		Type:       model.ListingSwap,
		InfoMethod: "itemIdToSwapInfo",
		abi:        swapABI,
		decode:     decodeSwap,
		ops: withCommonOps(map[Op]opSpec{
			OpCreate:      {method: "putUpNFTForSwap", args: argsTokenDuration, approve: true},
			OpRemove:      {method: "removeNFTForSwap", args: argsToken},
			OpOffer:       {method: "offerSwap", args: argsSwapPair},
			OpAcceptOffer: {method: "acceptSwap", args: argsSwapPair},
			OpReturn:      {method: "returnNFTToOwner", args: argsToken},
		}),
	}
)

// Variants lists every marketplace in display order.
var Variants = []Variant{Rental, Sale, Auction, Option, Swap}

// VariantFor returns the variant of a listing type.
func VariantFor(t model.ListingType) (Variant, error) {
	for _, v := range Variants {
		if v.Type == t {
			return v, nil
		}
	}
	return Variant{}, fmt.Errorf("%w: %s", ErrUnknownVariant, t)
}

func listingInfo(r record, pairing []model.ERC20Token, pos *model.Position, sellerField string) (model.ListingInfo, *decodeErr) {
	var (
		d    decodeErr
		info = model.ListingInfo{Pairing: pairing, Position: pos}
	)
	id, err := r.uint64("tokenId")
	d.check(err)
	info.TokenID = id
	seller, err := r.address(sellerField)
	d.check(err)
	info.Seller = seller.Hex()
	return info, &d
}

func decodeRent(r record, pairing []model.ERC20Token, pos *model.Position) (model.Listing, error) {
	info, d := listingInfo(r, pairing, pos, "originalOwner")
	out := &model.RentInfo{ListingInfo: info}
	var err error
	out.Buyer, err = r.optionalAddress("renter")
	d.check(err)
	out.PriceInEther, err = r.ether("price")
	d.check(err)
	out.DurationInSeconds, err = r.int64("duration")
	d.check(err)
	out.ExpiryDate, err = r.expiry("expiryDate")
	d.check(err)
	if d.err != nil {
		return nil, d.err
	}
	return out, nil
}

func decodeSale(r record, pairing []model.ERC20Token, pos *model.Position) (model.Listing, error) {
	info, d := listingInfo(r, pairing, pos, "originalOwner")
	out := &model.SaleInfo{ListingInfo: info, DurationInSeconds: -1}
	var err error
	out.PriceInEther, err = r.ether("price")
	d.check(err)
	if d.err != nil {
		return nil, d.err
	}
	return out, nil
}

func decodeAuction(r record, pairing []model.ERC20Token, pos *model.Position) (model.Listing, error) {
	info, d := listingInfo(r, pairing, pos, "originalOwner")
	out := &model.AuctionInfo{ListingInfo: info}
	var err error
	out.HighestBidder, err = r.optionalAddress("highestBidder")
	d.check(err)
	out.MinBid, err = r.ether("minBidInEther")
	d.check(err)
	out.PriceInEther = out.MinBid
	out.DurationInSeconds, err = r.int64("duration")
	d.check(err)
	out.ExpiryDate, err = r.expiry("expiryDate")
	d.check(err)
	if d.err != nil {
		return nil, d.err
	}
	return out, nil
}

func decodeSwap(r record, pairing []model.ERC20Token, pos *model.Position) (model.Listing, error) {
	info, d := listingInfo(r, pairing, pos, "originalOwner")
	out := &model.SwapInfo{ListingInfo: info}
	var err error
	out.Buyer, err = r.optionalAddress("renter")
	d.check(err)
	out.DurationInSeconds, err = r.int64("duration")
	d.check(err)
	out.ExpiryDate, err = r.expiry("expiryDate")
	d.check(err)
	if d.err != nil {
		return nil, d.err
	}
	return out, nil
}

func decodeOption(r record, pairing []model.ERC20Token, pos *model.Position) (model.Listing, error) {
	var d decodeErr
	out := &model.OptionInfo{Pairing: pairing, Position: pos}

	id, err := r.uint64("tokenId")
	d.check(err)
	out.TokenID = id
	owner, err := r.address("currentOwner")
	d.check(err)
	out.CurrentOwner = owner.Hex()
	out.Premium, err = r.ether("premium")
	d.check(err)
	for _, f := range []struct {
		name   string
		target *string
	}{
		{"costToExercise", &out.CostToExercise},
		{"optionPayout", &out.OptionPayout},
		{"amountToReturn", &out.AmountToReturn},
	} {
		n, err := r.bigInt(f.name)
		d.check(err)
		if n != nil {
			*f.target = n.String()
		}
	}
	long, err := r.address("tokenLong")
	d.check(err)
	payment, err := r.address("paymentToken")
	d.check(err)
	out.ForSale, err = r.boolean("forSale")
	d.check(err)
	out.ExpiryDate, err = r.expiry("expiryDate")
	d.check(err)
	if d.err != nil {
		return nil, d.err
	}

	out.LongToken = matchToken(pairing, long.Hex())
	out.PaymentToken = matchToken(pairing, payment.Hex())
	if len(pairing) > 0 && !pairing[0].SameAddress(payment.Hex()) {
		out.PairingIndex = 1
	}
	return out, nil
}

func matchToken(pairing []model.ERC20Token, address string) *model.ERC20Token {
	for i := range pairing {
		if pairing[i].SameAddress(address) {
			token := pairing[i]
			return &token
		}
	}
	return nil
}
