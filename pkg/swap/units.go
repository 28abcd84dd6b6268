package swap

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ToSmallestUnit converts a human-readable amount ("1.5") into the token's
// smallest unit ("1500000" at 6 decimals). Fractional dust beyond the
// token's precision is truncated.
func ToSmallestUnit(amount string, decimals int32) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("amount must not be negative: %s", amount)
	}
	return d.Shift(decimals).Truncate(0).BigInt(), nil
}

// FromSmallestUnit converts a smallest-unit amount back into human units,
// with trailing zeros trimmed.
func FromSmallestUnit(amount string, decimals int32) (string, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return d.Shift(-decimals).String(), nil
}
