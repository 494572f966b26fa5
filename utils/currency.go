package utils

import (
	"fmt"
	"math"
)

// Cents rounds a monetary amount to two decimals. All money math in the
// order workflow goes through this so totals reconcile to the cent.
func Cents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// SameAmount compares two monetary amounts at cent precision.
func SameAmount(a, b float64) bool {
	return math.Abs(Cents(a)-Cents(b)) < 0.005
}

// FormatAmount renders an amount for receipts and pick lists.
// Example: 15000.5 -> "$15,000.50"
func FormatAmount(amount float64) string {
	neg := amount < 0
	amount = math.Abs(Cents(amount))
	integer := int64(amount)
	cents := int64(math.Round((amount - float64(integer)) * 100))

	integerStr := fmt.Sprintf("%d", integer)
	out := ""
	for len(integerStr) > 3 {
		out = "," + integerStr[len(integerStr)-3:] + out
		integerStr = integerStr[:len(integerStr)-3]
	}
	out = integerStr + out

	if neg {
		return fmt.Sprintf("-$%s.%02d", out, cents)
	}
	return fmt.Sprintf("$%s.%02d", out, cents)
}
