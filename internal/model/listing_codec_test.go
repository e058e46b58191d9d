package model

import (
	"reflect"
	"testing"
	"time"
)

func TestListingCodecKeepsVariant(t *testing.T) {
	renter := "0x2222222222222222222222222222222222222222"
	expiry := time.Unix(1700000000, 0).UTC()
	original := &RentInfo{
		ListingInfo: ListingInfo{
			TokenID:      8302,
			Seller:       "0x1111111111111111111111111111111111111111",
			Buyer:        &renter,
			PriceInEther: 0.25,
			Pairing: []ERC20Token{
				{Address: "0xaaaa", Symbol: "USDC", Name: "USD Coin", Decimals: 6},
				{Address: "0xbbbb", Symbol: "WETH", Name: "Wrapped Ether", Decimals: 18},
			},
			Position: &Position{TickLower: -200, TickUpper: 200, Fee: 0.3, RangeToShow: 1},
		},
		DurationInSeconds: 86400,
		ExpiryDate:        &expiry,
	}

	data, err := EncodeListing(original)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := DecodeListing(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	rent, ok := decoded.(*RentInfo)
	if !ok {
		t.Fatalf("decoded type mismatch: %T", decoded)
	}
	if !reflect.DeepEqual(original, rent) {
		t.Fatalf("round-trip mismatch: %+v != %+v", original, rent)
	}
}

func TestListingCodecPlaceholder(t *testing.T) {
	data, err := EncodeListing(&Placeholder{Type: ListingOption, TokenID: 42, Reason: "boom"})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := DecodeListing(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !IsPlaceholder(decoded) {
		t.Fatalf("expected placeholder, got %T", decoded)
	}
	if decoded.Kind() != ListingOption || decoded.ID() != 42 {
		t.Fatalf("placeholder mismatch: %+v", decoded)
	}
}

func TestParseListingType(t *testing.T) {
	got, err := ParseListingType(" auction ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != ListingAuction {
		t.Fatalf("type mismatch: %s", got)
	}
	if _, err := ParseListingType("lease"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
