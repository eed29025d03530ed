package fixedmath

import (
	"fmt"

	ag_binary "github.com/gagliardetto/binary"
	"github.com/holiman/uint256"

	"github.com/aman-zulfiqar/leverage-sdk/internal/constants"
)

// Frac fixes the number of fractional bits of a Fixed layout.
type Frac interface {
	FracBits() uint
}

// Bits60 is the 68.60 layout used for ratios, fee rates and multipliers.
type Bits60 struct{}

func (Bits60) FracBits() uint { return constants.FractionBits }

// Bits64 is the 64.64 layout used for sqrt prices and prices.
type Bits64 struct{}

func (Bits64) FracBits() uint { return constants.PriceFracBits }

// Fixed is an unsigned 128-bit fixed-point number with F fractional bits.
//
// Values of different layouts are different types; converting between them
// goes through Rescale. The zero value is 0.
type Fixed[F Frac] struct {
	raw uint256.Int // bit length <= 128
}

type (
	U68F60 = Fixed[Bits60]
	U64F64 = Fixed[Bits64]
)

func fracBits[F Frac]() uint {
	var f F
	return f.FracBits()
}

func fit[F Frac](v *uint256.Int) (Fixed[F], error) {
	if v.BitLen() > constants.FixedWidth {
		return Fixed[F]{}, fmt.Errorf("%w: fixed-point value exceeds %d bits", ErrArithmeticOverflow, constants.FixedWidth)
	}
	return Fixed[F]{raw: *v}, nil
}

// shr shifts v right by n bits. RoundUp bumps the result when any shifted-out bit was set.
func shr(v *uint256.Int, n uint, rounding Rounding) uint256.Int {
	var q uint256.Int
	q.Rsh(v, n)
	if rounding == RoundUp && n > 0 {
		var back uint256.Int
		back.Lsh(&q, n)
		if !back.Eq(v) {
			q.Add(&q, one256)
		}
	}
	return q
}

func Zero[F Frac]() Fixed[F] {
	return Fixed[F]{}
}

func One[F Frac]() Fixed[F] {
	var v Fixed[F]
	v.raw.Lsh(one256, fracBits[F]())
	return v
}

// FromInt returns n as a fixed-point value. Every uint64 fits both layouts.
func FromInt[F Frac](n uint64) Fixed[F] {
	var v Fixed[F]
	v.raw.Lsh(uint256.NewInt(n), fracBits[F]())
	return v
}

// FromRaw reinterprets a 128-bit pattern as a fixed-point value.
func FromRaw[F Frac](hi, lo uint64) Fixed[F] {
	return Fixed[F]{raw: uint256.Int{lo, hi, 0, 0}}
}

// FromUint128 reinterprets a decoded u128 account field as a fixed-point value.
func FromUint128[F Frac](v ag_binary.Uint128) Fixed[F] {
	return Fixed[F]{raw: toWord(v)}
}

// FromRatio returns num / den.
func FromRatio[F Frac](num, den uint64, rounding Rounding) (Fixed[F], error) {
	return FromInt[F](num).Div(FromInt[F](den), rounding)
}

// Rescale converts v to another fractional-bit layout. Dropping bits rounds per
// rounding; adding bits fails if the integer part no longer fits.
func Rescale[To, From Frac](v Fixed[From], rounding Rounding) (Fixed[To], error) {
	from, to := fracBits[From](), fracBits[To]()
	if to >= from {
		var z uint256.Int
		z.Lsh(&v.raw, to-from)
		return fit[To](&z)
	}
	z := shr(&v.raw, from-to, rounding)
	return Fixed[To]{raw: z}, nil
}

// Raw returns the underlying bit pattern.
func (a Fixed[F]) Raw() ag_binary.Uint128 {
	return fromWord(&a.raw)
}

func (a Fixed[F]) FracBits() uint {
	return fracBits[F]()
}

func (a Fixed[F]) IsZero() bool {
	return a.raw.IsZero()
}

// Cmp returns -1, 0 or +1.
func (a Fixed[F]) Cmp(b Fixed[F]) int {
	return a.raw.Cmp(&b.raw)
}

func (a Fixed[F]) Equal(b Fixed[F]) bool       { return a.raw.Eq(&b.raw) }
func (a Fixed[F]) LessThan(b Fixed[F]) bool    { return a.raw.Lt(&b.raw) }
func (a Fixed[F]) GreaterThan(b Fixed[F]) bool { return a.raw.Gt(&b.raw) }

func (a Fixed[F]) Add(b Fixed[F]) (Fixed[F], error) {
	var z uint256.Int
	z.Add(&a.raw, &b.raw)
	return fit[F](&z)
}

func (a Fixed[F]) Sub(b Fixed[F]) (Fixed[F], error) {
	if a.raw.Lt(&b.raw) {
		return Fixed[F]{}, fmt.Errorf("%w: %s - %s", ErrArithmeticUnderflow, a, b)
	}
	var z uint256.Int
	z.Sub(&a.raw, &b.raw)
	return Fixed[F]{raw: z}, nil
}

// Mul returns a * b. The 256-bit product is shifted back by F bits.
func (a Fixed[F]) Mul(b Fixed[F], rounding Rounding) (Fixed[F], error) {
	var prod uint256.Int
	prod.Mul(&a.raw, &b.raw)
	z := shr(&prod, fracBits[F](), rounding)
	return fit[F](&z)
}

// Div returns a / b. The dividend is widened by F bits before dividing.
func (a Fixed[F]) Div(b Fixed[F], rounding Rounding) (Fixed[F], error) {
	if b.raw.IsZero() {
		return Fixed[F]{}, ErrDivisionByZero
	}

	var num, quo, rem uint256.Int
	num.Lsh(&a.raw, fracBits[F]())
	quo.Div(&num, &b.raw)
	if rounding == RoundUp {
		rem.Mod(&num, &b.raw)
		if !rem.IsZero() {
			quo.Add(&quo, one256)
		}
	}
	return fit[F](&quo)
}

// MulUint64 applies a to a token amount: n * a, narrowed to uint64.
func (a Fixed[F]) MulUint64(n uint64, rounding Rounding) (uint64, error) {
	var prod uint256.Int
	prod.Mul(&a.raw, uint256.NewInt(n))
	z := shr(&prod, fracBits[F](), rounding)
	if !z.IsUint64() {
		return 0, fmt.Errorf("%w: %d * %s exceeds 64 bits", ErrArithmeticOverflow, n, a)
	}
	return z.Uint64(), nil
}

// Floor returns the integer part of a.
func (a Fixed[F]) Floor() ag_binary.Uint128 {
	var z uint256.Int
	z.Rsh(&a.raw, fracBits[F]())
	return fromWord(&z)
}

// Must unwraps the result of an operation whose domain the caller already bounded.
// It panics on error.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(fmt.Errorf("fixedmath: %w", err))
	}
	return v
}
