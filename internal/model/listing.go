package model

import (
	"fmt"
	"strings"
	"time"
)

// ListingType names a marketplace variant.
type ListingType string

const (
	ListingRental  ListingType = "RENTAL"
	ListingSale    ListingType = "SALE"
	ListingAuction ListingType = "AUCTION"
	ListingOption  ListingType = "OPTION"
	ListingSwap    ListingType = "SWAP"
	ListingNull    ListingType = "NULL"
)

// ListingTypes lists the variants in display order.
var ListingTypes = []ListingType{ListingRental, ListingSale, ListingAuction, ListingOption, ListingSwap}

// ParseListingType accepts a variant name in any case.
func ParseListingType(value string) (ListingType, error) {
	candidate := ListingType(strings.ToUpper(strings.TrimSpace(value)))
	for _, t := range ListingTypes {
		if t == candidate {
			return t, nil
		}
	}
	return ListingNull, fmt.Errorf("unknown listing type %q", value)
}

// Listing is implemented by every record a marketplace variant produces.
type Listing interface {
	Kind() ListingType
	ID() uint64
}

// ListingInfo holds the fields shared by rental, sale, auction and swap records.
type ListingInfo struct {
	TokenID      uint64       `json:"token_id"`
	Seller       string       `json:"seller"`
	Buyer        *string      `json:"buyer"`
	PriceInEther float64      `json:"price_in_ether"`
	Pairing      []ERC20Token `json:"pairing"`
	Position     *Position    `json:"position"`
}

func (l *ListingInfo) ID() uint64 { return l.TokenID }

// Info exposes the shared fields to filters.
func (l *ListingInfo) Info() *ListingInfo { return l }

// RentInfo is a rental listing. Buyer is the current renter.
type RentInfo struct {
	ListingInfo
	DurationInSeconds int64      `json:"duration_in_seconds"`
	ExpiryDate        *time.Time `json:"expiry_date"`
}

func (*RentInfo) Kind() ListingType { return ListingRental }

// SaleInfo is a fixed-price sale listing. DurationInSeconds is always -1.
type SaleInfo struct {
	ListingInfo
	DurationInSeconds int64      `json:"duration_in_seconds"`
	ExpiryDate        *time.Time `json:"expiry_date"`
}

func (*SaleInfo) Kind() ListingType { return ListingSale }

// AuctionInfo is an auction listing. PriceInEther mirrors MinBid.
type AuctionInfo struct {
	ListingInfo
	HighestBidder     *string    `json:"highest_bidder"`
	MinBid            float64    `json:"min_bid"`
	DurationInSeconds int64      `json:"duration_in_seconds"`
	ExpiryDate        *time.Time `json:"expiry_date"`
}

func (*AuctionInfo) Kind() ListingType { return ListingAuction }

// SwapInfo is a position-for-position swap listing; it carries no price.
type SwapInfo struct {
	ListingInfo
	DurationInSeconds int64      `json:"duration_in_seconds"`
	ExpiryDate        *time.Time `json:"expiry_date"`
}

func (*SwapInfo) Kind() ListingType { return ListingSwap }

// OptionInfo is a covered option written against a position.
// CostToExercise, OptionPayout and AmountToReturn are raw base-unit amounts.
type OptionInfo struct {
	TokenID        uint64       `json:"token_id"`
	Premium        float64      `json:"premium"`
	CurrentOwner   string       `json:"current_owner"`
	CostToExercise string       `json:"cost_to_exercise"`
	OptionPayout   string       `json:"option_payout"`
	AmountToReturn string       `json:"amount_to_return"`
	LongToken      *ERC20Token  `json:"long_token"`
	PaymentToken   *ERC20Token  `json:"payment_token"`
	ForSale        bool         `json:"for_sale"`
	ExpiryDate     *time.Time   `json:"expiry_date"`
	Pairing        []ERC20Token `json:"pairing"`
	Position       *Position    `json:"position"`
	PairingIndex   int          `json:"pairing_index"`
}

func (*OptionInfo) Kind() ListingType { return ListingOption }
func (o *OptionInfo) ID() uint64      { return o.TokenID }

// Placeholder stands in for a record whose assembly failed.
type Placeholder struct {
	Type    ListingType `json:"type"`
	TokenID uint64      `json:"token_id"`
	Reason  string      `json:"reason,omitempty"`
}

func (p *Placeholder) Kind() ListingType { return p.Type }
func (p *Placeholder) ID() uint64        { return p.TokenID }

// IsPlaceholder reports whether l is missing or a failed-assembly stand-in.
func IsPlaceholder(l Listing) bool {
	if l == nil {
		return true
	}
	_, ok := l.(*Placeholder)
	return ok
}

// InfoOf returns the shared listing fields, or nil for options and placeholders.
func InfoOf(l Listing) *ListingInfo {
	if carrier, ok := l.(interface{ Info() *ListingInfo }); ok {
		return carrier.Info()
	}
	return nil
}

// DurationOf returns the listing duration in seconds when the variant has one.
func DurationOf(l Listing) (int64, bool) {
	switch v := l.(type) {
	case *RentInfo:
		return v.DurationInSeconds, true
	case *SaleInfo:
		return v.DurationInSeconds, true
	case *AuctionInfo:
		return v.DurationInSeconds, true
	case *SwapInfo:
		return v.DurationInSeconds, true
	default:
		return 0, false
	}
}

// PositionOf returns the position of any non-placeholder listing.
func PositionOf(l Listing) *Position {
	if o, ok := l.(*OptionInfo); ok {
		return o.Position
	}
	if info := InfoOf(l); info != nil {
		return info.Position
	}
	return nil
}

// PairingOf returns the token pairing of any non-placeholder listing.
func PairingOf(l Listing) []ERC20Token {
	if o, ok := l.(*OptionInfo); ok {
		return o.Pairing
	}
	if info := InfoOf(l); info != nil {
		return info.Pairing
	}
	return nil
}

// ExpiryOf returns the expiry of listings that have one.
func ExpiryOf(l Listing) *time.Time {
	switch v := l.(type) {
	case *RentInfo:
		return v.ExpiryDate
	case *SaleInfo:
		return v.ExpiryDate
	case *AuctionInfo:
		return v.ExpiryDate
	case *SwapInfo:
		return v.ExpiryDate
	case *OptionInfo:
		return v.ExpiryDate
	default:
		return nil
	}
}
