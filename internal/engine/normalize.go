package engine

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// defaultDecimals is substituted when a token's decimals lookup fails.
const defaultDecimals = 18

// NormalizeAmount shifts the decimal point of a raw integer amount left by
// decimals places. The conversion is exact for any 256-bit amount at up to
// 255 decimal places, trims trailing fractional zeros without going below
// the ones place, and never uses scientific notation.
func NormalizeAmount(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return "0"
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).String()
}
