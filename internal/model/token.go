package model

import "strings"

// ERC20Token captures the metadata shown for one side of a position's pairing.
type ERC20Token struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}

// SameAddress compares token addresses case-insensitively.
func (t ERC20Token) SameAddress(address string) bool {
	return address != "" && strings.EqualFold(t.Address, address)
}
