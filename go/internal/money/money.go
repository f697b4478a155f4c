// Package money holds the salary arithmetic of the league. Salaries are whole
// dollar units; percentages are exact decimals so 10% and 20% never drift.
package money

import "github.com/shopspring/decimal"

// Pct parses a percentage literal such as "0.2". It panics on malformed input and is meant for constants.
func Pct(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CeilPct returns ceil(amount * pct).
func CeilPct(amount int, pct decimal.Decimal) int {
	return int(decimal.NewFromInt(int64(amount)).Mul(pct).Ceil().IntPart())
}

// Increase raises amount by pct, rounding the raise up to the next whole unit.
//
//	Increase(4, 0.2)  == 5
//	Increase(11, 0.2) == 14
//	Increase(25, 0.2) == 30
func Increase(amount int, pct decimal.Decimal) int {
	return amount + CeilPct(amount, pct)
}

// Discount lowers amount by ceil(amount * pct) but never below 1.
//
//	Discount(30, 0.1) == 27
//	Discount(11, 0.1) == 9
//	Discount(33, 0.2) == 26
func Discount(amount int, pct decimal.Decimal) int {
	return max(1, amount-CeilPct(amount, pct))
}
