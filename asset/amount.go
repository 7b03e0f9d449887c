package asset

import (
	"fmt"
	"math/big"

	"github.com/atelier-labs/atelier/ledger"
	"github.com/shopspring/decimal"
)

// DefaultScale is the number of decimal places one integer unit
// represents when amounts cross the human boundary.
const DefaultScale = 8

// ParseAmount converts a decimal string into integer units at the
// given scale. Fractions below one unit are rejected, not rounded.
func ParseAmount(s string, scale int32) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, ledger.ErrInvalidInput)
	}
	if d.Sign() < 0 {
		return 0, fmt.Errorf("negative amount %q: %w", s, ledger.ErrInvalidInput)
	}
	units := d.Shift(scale)
	if !units.IsInteger() {
		return 0, fmt.Errorf("amount %q below unit scale %d: %w", s, scale, ledger.ErrInvalidInput)
	}
	u := units.BigInt()
	if !u.IsUint64() {
		return 0, fmt.Errorf("amount %q overflows: %w", s, ledger.ErrInvalidInput)
	}
	return u.Uint64(), nil
}

// FormatAmount renders integer units as a decimal string.
func FormatAmount(units uint64, scale int32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(units), -scale).String()
}
