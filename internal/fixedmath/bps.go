package fixedmath

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/aman-zulfiqar/leverage-sdk/internal/constants"
)

// Unsigned is the set of integer widths a basis-point value can be narrowed to.
type Unsigned interface {
	~uint16 | ~uint32 | ~uint64
}

var bpsScale = uint256.NewInt(constants.PercentScale)

// FromBps converts a basis-point integer (1_000_000 = 100%) to fixed point.
//
// The quotient is truncated, so the result is at most one unit in the last
// fractional place (2^-F) below bps / 1_000_000.
func FromBps[F Frac](bps uint64) Fixed[F] {
	return fromBps[F](bps, bpsScale)
}

// FromBpsScaled is FromBps for a program configured with another percentage
// scale (scale = 100%).
func FromBpsScaled[F Frac](bps, scale uint64) (Fixed[F], error) {
	if scale == 0 {
		return Fixed[F]{}, ErrDivisionByZero
	}
	return fromBps[F](bps, uint256.NewInt(scale)), nil
}

// bps < 2^64 shifted by at most 64 bits stays below 2^128 for any scale >= 1
func fromBps[F Frac](bps uint64, scale *uint256.Int) Fixed[F] {
	var z uint256.Int
	z.Lsh(uint256.NewInt(bps), fracBits[F]())
	z.Div(&z, scale)
	return Fixed[F]{raw: z}
}

// ToBps converts v to basis points, rounding half up to the nearest integer,
// and narrows the result to T.
func ToBps[T Unsigned, F Frac](v Fixed[F]) (T, error) {
	return toBps[T](v, bpsScale)
}

// ToBpsScaled is ToBps against an arbitrary percentage scale.
func ToBpsScaled[T Unsigned, F Frac](v Fixed[F], scale uint64) (T, error) {
	return toBps[T](v, uint256.NewInt(scale))
}

func toBps[T Unsigned, F Frac](v Fixed[F], scale *uint256.Int) (T, error) {
	frac := fracBits[F]()

	var z, half uint256.Int
	z.Mul(&v.raw, scale)
	half.Lsh(one256, frac-1)
	z.Add(&z, &half)
	z.Rsh(&z, frac)

	limit := ^T(0)
	if !z.IsUint64() || z.Uint64() > uint64(limit) {
		return 0, fmt.Errorf("%w: %s bps does not fit %T", ErrArithmeticOverflow, z.ToBig(), limit)
	}
	return T(z.Uint64()), nil
}
