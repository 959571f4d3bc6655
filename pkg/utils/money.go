package utils

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ApplyRate multiplies an amount in minor units by a percentage rate
// (30 = 30%) and rounds half away from zero back to minor units.
func ApplyRate(amountMinor int64, ratePct decimal.Decimal) int64 {
	if amountMinor == 0 || ratePct.IsZero() {
		return 0
	}
	return decimal.NewFromInt(amountMinor).
		Mul(ratePct).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// FormatMinor renders 1999 as "19.99 USD".
func FormatMinor(amountMinor int64, currency string) string {
	return fmt.Sprintf("%s %s", decimal.New(amountMinor, -2).StringFixed(2), currency)
}
