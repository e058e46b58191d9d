package model

import (
	"encoding/json"
	"fmt"
)

type listingEnvelope struct {
	Type        ListingType     `json:"type"`
	Placeholder bool            `json:"placeholder,omitempty"`
	Listing     json.RawMessage `json:"listing"`
}

// EncodeListing wraps a listing with its type tag so it can be decoded later.
func EncodeListing(l Listing) ([]byte, error) {
	if l == nil {
		return nil, fmt.Errorf("nil listing")
	}
	body, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return json.Marshal(listingEnvelope{
		Type:        l.Kind(),
		Placeholder: IsPlaceholder(l),
		Listing:     body,
	})
}

// DecodeListing reverses EncodeListing.
func DecodeListing(data []byte) (Listing, error) {
	var env listingEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	var target Listing
	switch {
	case env.Placeholder:
		target = &Placeholder{}
	case env.Type == ListingRental:
		target = &RentInfo{}
	case env.Type == ListingSale:
		target = &SaleInfo{}
	case env.Type == ListingAuction:
		target = &AuctionInfo{}
	case env.Type == ListingOption:
		target = &OptionInfo{}
	case env.Type == ListingSwap:
		target = &SwapInfo{}
	default:
		return nil, fmt.Errorf("decode listing: unknown type %q", env.Type)
	}

	if err := json.Unmarshal(env.Listing, target); err != nil {
		return nil, fmt.Errorf("decode %s listing: %w", env.Type, err)
	}
	return target, nil
}
