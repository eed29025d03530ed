package price

import (
	"fmt"

	ag_binary "github.com/gagliardetto/binary"
	"github.com/shopspring/decimal"

	"github.com/aman-zulfiqar/leverage-sdk/internal/fixedmath"
)

// SqrtPriceToPrice converts a Q64.64 sqrt price into a 68.60 price.
//
// The sqrt price is first rescaled to 60 fractional bits (the 4 dropped bits
// are truncated) and then squared. Fails with ErrArithmeticOverflow when the
// square needs more than 68 integer bits, i.e. sqrtPriceX64 >= 2^98.
func SqrtPriceToPrice(sqrtPriceX64 ag_binary.Uint128) (fixedmath.U68F60, error) {
	sqrt, err := fixedmath.Rescale[fixedmath.Bits60](
		fixedmath.FromUint128[fixedmath.Bits64](sqrtPriceX64),
		fixedmath.RoundDown,
	)
	if err != nil {
		return fixedmath.U68F60{}, err
	}

	p, err := sqrt.Mul(sqrt, fixedmath.RoundDown)
	if err != nil {
		return fixedmath.U68F60{}, fmt.Errorf("square sqrt price %s: %w", sqrtPriceX64.BigInt(), err)
	}
	return p, nil
}

// SqrtPriceToPriceX64 reinterprets a Q64.64 sqrt price as U64F64 and squares it.
//
// Keeps all 64 fractional bits at the cost of integer range: fails with
// ErrArithmeticOverflow when sqrtPriceX64 >= 2^96.
func SqrtPriceToPriceX64(sqrtPriceX64 ag_binary.Uint128) (fixedmath.U64F64, error) {
	sqrt := fixedmath.FromUint128[fixedmath.Bits64](sqrtPriceX64)

	p, err := sqrt.Mul(sqrt, fixedmath.RoundDown)
	if err != nil {
		return fixedmath.U64F64{}, fmt.Errorf("square sqrt price %s: %w", sqrtPriceX64.BigInt(), err)
	}
	return p, nil
}

// SqrtPriceFromUint64 widens a 64-bit sqrt price field.
func SqrtPriceFromUint64(sqrtPriceX64 uint64) ag_binary.Uint128 {
	return fixedmath.U128FromUint64(sqrtPriceX64)
}

// UIPrice scales a raw token-B-per-token-A price to human units:
//
// price * 10^(decimalsA - decimalsB)
//
// Informational only.
func UIPrice(p fixedmath.U64F64, decimalsA, decimalsB uint8) decimal.Decimal {
	return p.Decimal().Shift(int32(decimalsA) - int32(decimalsB))
}
