package utils

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// FormatBigInt renders amount scaled down by 10^decimals, exactly and with
// trailing fractional zeros removed.
// Example: amount=1500000000, decimals=9 => "1.5"
func FormatBigInt(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).String()
}

// FormatNano renders a nano-unit amount as whole MAS.
func FormatNano(amount *big.Int) string {
	return FormatBigInt(amount, 9)
}

// ParseUnits is the inverse of FormatBigInt. It fails when s carries more
// fractional digits than decimals allows.
func ParseUnits(s string, decimals uint8) (*big.Int, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, false
	}
	shifted := d.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return nil, false
	}
	return shifted.BigInt(), true
}
