package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ParseAddress converts a configured address into common.Address.
func ParseAddress(key, input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid %s address: %q", key, input)
	}
	return common.HexToAddress(input), nil
}

// ContractAddresses parses the marketplace address of every variant, keyed
// by lowercase variant name.
func (c Contracts) ContractAddresses() (map[string]common.Address, error) {
	out := make(map[string]common.Address, 5)
	for _, name := range []string{"rental", "sale", "auction", "option", "swap"} {
		raw, _ := c.Address(name)
		addr, err := ParseAddress(name+"-contract", raw)
		if err != nil {
			return nil, err
		}
		out[name] = addr
	}
	return out, nil
}
