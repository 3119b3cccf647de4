package domain

import "github.com/shopspring/decimal"

// Money is stored and summed as int64 paise. Decimals appear only inside
// interest and penalty arithmetic; RoundPaise is the single place a decimal
// result becomes a stored amount.

var paisePerRupee = decimal.NewFromInt(100)

// RoundPaise converts a rupee decimal into paise, rounding half away from
// zero at the paisa.
func RoundPaise(rupees decimal.Decimal) int64 {
	return rupees.Mul(paisePerRupee).Round(0).IntPart()
}

// PaiseToDecimal converts stored paise back into a rupee decimal for
// calculation or display. Trailing zeros are not preserved, so String()
// yields "2000" rather than "2000.00".
func PaiseToDecimal(paise int64) decimal.Decimal {
	return decimal.NewFromInt(paise).Div(paisePerRupee)
}

// FormatPaise renders paise as a fixed two-decimal rupee string.
func FormatPaise(paise int64) string {
	return PaiseToDecimal(paise).StringFixed(2)
}
