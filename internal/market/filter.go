package market

import (
	"strings"

	"lpmarket/internal/model"
)

func filter(listings []model.Listing, keep func(model.Listing) bool) []model.Listing {
	out := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if model.IsPlaceholder(l) || !keep(l) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// FilterAvailable keeps rentals without a renter, options for sale and
// every other live listing.
func FilterAvailable(listings []model.Listing) []model.Listing {
	return filter(listings, func(l model.Listing) bool {
		switch v := l.(type) {
		case *model.RentInfo:
			return v.Buyer == nil
		case *model.OptionInfo:
			return v.ForSale
		default:
			return true
		}
	})
}

// FilterRentable keeps rentals without a renter.
func FilterRentable(listings []model.Listing) []model.Listing {
	return filter(listings, func(l model.Listing) bool {
		v, ok := l.(*model.RentInfo)
		return ok && v.Buyer == nil
	})
}

// FilterForSale keeps options listed for sale.
func FilterForSale(listings []model.Listing) []model.Listing {
	return filter(listings, func(l model.Listing) bool {
		v, ok := l.(*model.OptionInfo)
		return ok && v.ForSale
	})
}

// FilterByOwner matches the seller, or the current owner of an option.
func FilterByOwner(listings []model.Listing, owner string) []model.Listing {
	return filter(listings, func(l model.Listing) bool {
		if owner == "" {
			return false
		}
		if o, ok := l.(*model.OptionInfo); ok {
			return strings.EqualFold(o.CurrentOwner, owner)
		}
		info := model.InfoOf(l)
		return info != nil && strings.EqualFold(info.Seller, owner)
	})
}

// FilterByRenter matches the buyer.
func FilterByRenter(listings []model.Listing, renter string) []model.Listing {
	return filter(listings, func(l model.Listing) bool {
		if renter == "" {
			return false
		}
		info := model.InfoOf(l)
		return info != nil && info.Buyer != nil && strings.EqualFold(*info.Buyer, renter)
	})
}
