package market

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// EtherDecimals is the scale of wei to ether.
const EtherDecimals = 18

// FromWei converts a wei amount to ether.
func FromWei(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	f, _ := decimal.NewFromBigInt(wei, -EtherDecimals).Float64()
	return f
}

// ToWei converts an ether amount to wei, truncating below one wei.
func ToWei(ether float64) *big.Int {
	return decimal.NewFromFloat(ether).Shift(EtherDecimals).BigInt()
}

// ProtocolFee returns percent * price, the fee the marketplace keeps.
func ProtocolFee(price, percent float64) float64 {
	f, _ := decimal.NewFromFloat(percent).Mul(decimal.NewFromFloat(price)).Float64()
	return f
}
