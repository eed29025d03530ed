package fixedmath

import (
	"fmt"
	"math"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/aman-zulfiqar/leverage-sdk/internal/constants"
)

// roundCompensation is half a display unit (0.00005) in F fractional bits, truncated.
func roundCompensation[F Frac]() uint256.Int {
	var z uint256.Int
	z.Lsh(one256, fracBits[F]())
	z.Div(&z, uint256.NewInt(2*constants.DisplayScale))
	return z
}

// String renders a with exactly four fractional digits.
//
// Half a display unit is added before truncating, so the fourth digit rounds
// half up. Both the compensation and FromBps truncate, so an exact decimal tie
// such as FromBps(50) (0.00005) lands just below the midpoint and renders 0.0000.
func (a Fixed[F]) String() string {
	frac := fracBits[F]()
	comp := roundCompensation[F]()

	var rounded, intPart, fracPart uint256.Int
	rounded.Add(&a.raw, &comp)
	intPart.Rsh(&rounded, frac)

	fracPart.Lsh(&intPart, frac)
	fracPart.Sub(&rounded, &fracPart)
	fracPart.Mul(&fracPart, uint256.NewInt(constants.DisplayScale))
	fracPart.Rsh(&fracPart, frac)

	return fmt.Sprintf("%s.%0*d", intPart.ToBig(), constants.DisplayDecimals, fracPart.Uint64())
}

// Decimal returns the exact decimal value of a: raw * 5^F * 10^-F.
func (a Fixed[F]) Decimal() decimal.Decimal {
	frac := fracBits[F]()
	pow5 := new(big.Int).Exp(big.NewInt(5), big.NewInt(int64(frac)), nil)
	coeff := new(big.Int).Mul(a.raw.ToBig(), pow5)
	return decimal.NewFromBigInt(coeff, -int32(frac))
}

// Float64 is informational only and must not feed back into on-chain amounts.
func (a Fixed[F]) Float64() float64 {
	f, _ := new(big.Float).SetInt(a.raw.ToBig()).Float64()
	return math.Ldexp(f, -int(fracBits[F]()))
}
