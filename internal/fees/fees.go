package fees

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/aman-zulfiqar/leverage-sdk/internal/constants"
	"github.com/aman-zulfiqar/leverage-sdk/internal/fixedmath"
)

var ErrInvalidRate = errors.New("invalid fee rate")

// Calculator applies basis-point fee rates to token amounts. scale is the
// rate denominator (1_000_000 = 100% on mainnet).
type Calculator struct {
	scale uint64
}

func NewCalculator(scale uint64) (*Calculator, error) {
	if scale == 0 {
		return nil, fmt.Errorf("%w: scale must be > 0", ErrInvalidRate)
	}
	return &Calculator{scale: scale}, nil
}

// Default returns a calculator using the program's percentage scale.
func Default() *Calculator {
	return &Calculator{scale: constants.PercentScale}
}

func (c *Calculator) Scale() uint64 {
	return c.scale
}

// ValidateRate rejects rates above 100%.
func (c *Calculator) ValidateRate(rateBps uint64) error {
	if rateBps > c.scale {
		return fmt.Errorf("%w: %d bps exceeds %d", ErrInvalidRate, rateBps, c.scale)
	}
	return nil
}

// a rate of 100% would zero the amount (or divide by zero on the reverse path)
func (c *Calculator) validateDeductible(rateBps uint64) error {
	if rateBps >= c.scale {
		return fmt.Errorf("%w: %d bps must be below %d", ErrInvalidRate, rateBps, c.scale)
	}
	return nil
}

// ApplyFee returns the amount left after deducting rateBps:
//
// amount * (scale - rate) / scale
func (c *Calculator) ApplyFee(amount, rateBps uint64, rounding fixedmath.Rounding) (uint64, error) {
	if err := c.validateDeductible(rateBps); err != nil {
		return 0, err
	}
	return fixedmath.MulDiv(amount, c.scale-rateBps, c.scale, rounding)
}

// ReverseApplyFee returns the gross amount that nets to amount after the fee:
//
// amount * scale / (scale - rate)
//
// With RoundUp, ApplyFee(ReverseApplyFee(x, r, RoundUp), r, RoundDown) == x.
func (c *Calculator) ReverseApplyFee(amount, rateBps uint64, rounding fixedmath.Rounding) (uint64, error) {
	if err := c.validateDeductible(rateBps); err != nil {
		return 0, err
	}
	return fixedmath.MulDiv(amount, c.scale, c.scale-rateBps, rounding)
}

// FeeAmount returns the fee deducted from amount, rounded per rounding. It is
// amount minus the net amount rounded the opposite way, so fee + net == amount.
func (c *Calculator) FeeAmount(amount, rateBps uint64, rounding fixedmath.Rounding) (uint64, error) {
	net, err := c.ApplyFee(amount, rateBps, rounding.Opposite())
	if err != nil {
		return 0, err
	}
	return amount - net, nil
}

// BlendedFee returns the protocol fee charged on a leveraged position:
//
// (collateral * rateOnCollateral + borrow * rate) / scale
//
// Both products and their sum are held in a 256-bit intermediate; the final
// division truncates.
func (c *Calculator) BlendedFee(collateral, borrow, rateOnCollateralBps, rateBps uint64) (uint64, error) {
	if err := c.ValidateRate(rateOnCollateralBps); err != nil {
		return 0, fmt.Errorf("collateral rate: %w", err)
	}
	if err := c.ValidateRate(rateBps); err != nil {
		return 0, fmt.Errorf("borrow rate: %w", err)
	}

	var onCollateral, onBorrow, total uint256.Int
	onCollateral.Mul(uint256.NewInt(collateral), uint256.NewInt(rateOnCollateralBps))
	onBorrow.Mul(uint256.NewInt(borrow), uint256.NewInt(rateBps))
	total.Add(&onCollateral, &onBorrow)
	total.Div(&total, uint256.NewInt(c.scale))

	if !total.IsUint64() {
		return 0, fmt.Errorf("%w: blended fee %s exceeds 64 bits", fixedmath.ErrArithmeticOverflow, total.ToBig())
	}
	return total.Uint64(), nil
}
