package model

import "time"

// Snapshot is one refresh generation of every marketplace variant.
type Snapshot struct {
	BatchID    string                    `json:"batch_id"`
	Generation uint64                    `json:"generation"`
	TakenAt    time.Time                 `json:"taken_at"`
	Listings   map[ListingType][]Listing `json:"-"`
}

// Count returns the number of records across all variants.
func (s Snapshot) Count() int {
	total := 0
	for _, listings := range s.Listings {
		total += len(listings)
	}
	return total
}
