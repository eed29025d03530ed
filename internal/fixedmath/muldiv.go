package fixedmath

import (
	"fmt"
	"math/bits"
)

// MulDiv computes x * y / d through a 128-bit intermediate.
//
// RoundUp adds d - 1 to the product before dividing, so an exact multiple
// returns the same quotient in both modes. A quotient wider than 64 bits is
// reported as ErrArithmeticOverflow, never truncated.
//
// d == 0 fails with ErrArithmeticUnderflow for RoundUp (d - 1 wraps) and with
// ErrDivisionByZero for RoundDown.
func MulDiv(x, y, d uint64, rounding Rounding) (uint64, error) {
	hi, lo := bits.Mul64(x, y)

	if rounding == RoundUp {
		if d == 0 {
			return 0, fmt.Errorf("%w: rounding bias with zero denominator", ErrArithmeticUnderflow)
		}
		// x*y + d-1 <= (2^64-1)^2 + 2^64-2 < 2^128, the carry cannot leave hi
		var carry uint64
		lo, carry = bits.Add64(lo, d-1, 0)
		hi += carry
	}

	if d == 0 {
		return 0, ErrDivisionByZero
	}
	if hi >= d {
		return 0, fmt.Errorf("%w: %d * %d / %d exceeds 64 bits", ErrArithmeticOverflow, x, y, d)
	}

	quo, _ := bits.Div64(hi, lo, d)
	return quo, nil
}
