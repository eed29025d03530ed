package fixedmath

import (
	"fmt"
	"math/big"
	"strings"

	ag_binary "github.com/gagliardetto/binary"
	"github.com/holiman/uint256"
)

var one256 = uint256.NewInt(1)

// U128 builds an unsigned 128-bit value from its halves.
func U128(hi, lo uint64) ag_binary.Uint128 {
	return ag_binary.Uint128{Lo: lo, Hi: hi}
}

// U128FromUint64 widens n to 128 bits.
func U128FromUint64(n uint64) ag_binary.Uint128 {
	return ag_binary.Uint128{Lo: n}
}

// NarrowUint64 returns v as uint64, or ErrArithmeticOverflow when the high half is set.
func NarrowUint64(v ag_binary.Uint128) (uint64, error) {
	if v.Hi != 0 {
		return 0, fmt.Errorf("%w: %s does not fit 64 bits", ErrArithmeticOverflow, v.BigInt())
	}
	return v.Lo, nil
}

// ParseUint128 parses a base-10 unsigned integer of at most 128 bits.
func ParseUint128(s string) (ag_binary.Uint128, error) {
	b, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return ag_binary.Uint128{}, fmt.Errorf("invalid u128 %q", s)
	}
	if b.Sign() < 0 {
		return ag_binary.Uint128{}, fmt.Errorf("%w: %s is negative", ErrArithmeticUnderflow, s)
	}
	if b.BitLen() > 128 {
		return ag_binary.Uint128{}, fmt.Errorf("%w: %s exceeds 128 bits", ErrArithmeticOverflow, s)
	}
	v, _ := uint256.FromBig(b)
	return fromWord(v), nil
}

func toWord(v ag_binary.Uint128) uint256.Int {
	return uint256.Int{v.Lo, v.Hi, 0, 0}
}

func fromWord(v *uint256.Int) ag_binary.Uint128 {
	return ag_binary.Uint128{Lo: v[0], Hi: v[1]}
}

func narrow128(v *uint256.Int) (ag_binary.Uint128, error) {
	if v.BitLen() > 128 {
		return ag_binary.Uint128{}, fmt.Errorf("%w: %s exceeds 128 bits", ErrArithmeticOverflow, v.ToBig())
	}
	return fromWord(v), nil
}

// WideMul returns the exact 256-bit product of two 128-bit values.
func WideMul(a, b ag_binary.Uint128) uint256.Int {
	x, y := toWord(a), toWord(b)
	var z uint256.Int
	z.Mul(&x, &y)
	return z
}

// MulDiv128 is MulDiv at width 128: x * y / d through a 256-bit intermediate,
// with the same rounding and error contract.
func MulDiv128(x, y, d ag_binary.Uint128, rounding Rounding) (ag_binary.Uint128, error) {
	num := WideMul(x, y)
	den := toWord(d)

	if rounding == RoundUp {
		if den.IsZero() {
			return ag_binary.Uint128{}, fmt.Errorf("%w: rounding bias with zero denominator", ErrArithmeticUnderflow)
		}
		// x*y < 2^256 - 2^129, adding d-1 < 2^128 cannot wrap
		var bias uint256.Int
		bias.Sub(&den, one256)
		num.Add(&num, &bias)
	}

	if den.IsZero() {
		return ag_binary.Uint128{}, ErrDivisionByZero
	}

	var quo uint256.Int
	quo.Div(&num, &den)
	return narrow128(&quo)
}
