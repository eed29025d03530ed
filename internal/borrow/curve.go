package borrow

import (
	"errors"
	"fmt"

	"github.com/aman-zulfiqar/leverage-sdk/internal/constants"
	"github.com/aman-zulfiqar/leverage-sdk/internal/fixedmath"
)

var ErrInvalidParams = errors.New("invalid borrow curve params")

// Params are the protocol parameters of the borrow curve, in basis points of
// the program's percentage scale (scale = 1.0).
type Params struct {
	TargetUtilizationBps uint64 `yaml:"target_utilization_bps"`
	MaxMultiplierBps     uint64 `yaml:"max_multiplier_bps"`
}

// DefaultParams returns the program's curve on the default 1_000_000 scale:
// kink at 90% utilization, multiplier between 0.25x and 4x.
func DefaultParams() Params {
	return Params{
		TargetUtilizationBps: constants.TargetUtilizationBps,
		MaxMultiplierBps:     constants.MaxBorrowMultiplierBps,
	}
}

// Validate checks p against the percentage scale the bps values are read in.
func (p Params) Validate(scale uint64) error {
	if scale == 0 {
		return fmt.Errorf("%w: percentage scale must be > 0", ErrInvalidParams)
	}
	if p.TargetUtilizationBps == 0 || p.TargetUtilizationBps >= scale {
		return fmt.Errorf("%w: target utilization %d bps must be in (0, %d)",
			ErrInvalidParams, p.TargetUtilizationBps, scale)
	}
	if p.MaxMultiplierBps < scale {
		return fmt.Errorf("%w: max multiplier %d bps must be >= %d",
			ErrInvalidParams, p.MaxMultiplierBps, scale)
	}
	return nil
}

// Curve maps vault utilization to a borrow-rate multiplier. It is piecewise
// linear with three regions:
//
//	u > 1:          max
//	target < u <= 1: (u - target) / (1 - target) * (max - 1) + 1
//	u <= target:     1 - (target - u) / target * (1 - 1/max)
//
// Sample and SampleFloat read the same breakpoints, so the fixed-point and
// floating variants cannot drift apart. A Curve is immutable and safe for
// concurrent use.
type Curve struct {
	params Params
	scale  uint64

	target     fixedmath.U68F60
	max        fixedmath.U68F60
	floor      fixedmath.U68F60 // 1 / max
	floorSpan  fixedmath.U68F60 // 1 - floor
	aboveSpan  fixedmath.U68F60 // 1 - target
	growthSpan fixedmath.U68F60 // max - 1

	targetF, maxF, floorF, floorSpanF float64
}

// NewCurve builds a curve whose params are expressed in basis points of scale.
func NewCurve(p Params, scale uint64) (*Curve, error) {
	if err := p.Validate(scale); err != nil {
		return nil, err
	}

	one := fixedmath.One[fixedmath.Bits60]()
	c := &Curve{params: p, scale: scale}

	var err error
	if c.target, err = fixedmath.FromBpsScaled[fixedmath.Bits60](p.TargetUtilizationBps, scale); err != nil {
		return nil, fmt.Errorf("curve target: %w", err)
	}
	if c.max, err = fixedmath.FromBpsScaled[fixedmath.Bits60](p.MaxMultiplierBps, scale); err != nil {
		return nil, fmt.Errorf("curve max: %w", err)
	}
	if c.floor, err = one.Div(c.max, fixedmath.RoundDown); err != nil {
		return nil, fmt.Errorf("curve floor: %w", err)
	}
	if c.floorSpan, err = one.Sub(c.floor); err != nil {
		return nil, fmt.Errorf("curve floor span: %w", err)
	}
	if c.aboveSpan, err = one.Sub(c.target); err != nil {
		return nil, fmt.Errorf("curve span above target: %w", err)
	}
	if c.growthSpan, err = c.max.Sub(one); err != nil {
		return nil, fmt.Errorf("curve growth span: %w", err)
	}

	c.targetF = c.target.Float64()
	c.maxF = c.max.Float64()
	c.floorF = c.floor.Float64()
	c.floorSpanF = c.floorSpan.Float64()

	return c, nil
}

func (c *Curve) Params() Params                 { return c.params }
func (c *Curve) Scale() uint64                  { return c.scale }
func (c *Curve) Target() fixedmath.U68F60       { return c.target }
func (c *Curve) MaxMultiplier() fixedmath.U68F60 { return c.max }
func (c *Curve) MinMultiplier() fixedmath.U68F60 { return c.floor }

// Sample returns the multiplier for utilization u. Every division truncates.
//
// Utilization is unsigned, so there is no separate u <= 0 case: at u == 0 the
// ratio (target - 0) / target is exactly 1 and the result is exactly the floor.
func (c *Curve) Sample(u fixedmath.U68F60) (fixedmath.U68F60, error) {
	one := fixedmath.One[fixedmath.Bits60]()

	switch {
	case u.GreaterThan(one):
		return c.max, nil

	case u.GreaterThan(c.target):
		excess, err := u.Sub(c.target)
		if err != nil {
			return fixedmath.U68F60{}, err
		}
		ratio, err := excess.Div(c.aboveSpan, fixedmath.RoundDown)
		if err != nil {
			return fixedmath.U68F60{}, err
		}
		growth, err := ratio.Mul(c.growthSpan, fixedmath.RoundDown)
		if err != nil {
			return fixedmath.U68F60{}, err
		}
		return growth.Add(one)

	default:
		slack, err := c.target.Sub(u)
		if err != nil {
			return fixedmath.U68F60{}, err
		}
		ratio, err := slack.Div(c.target, fixedmath.RoundDown)
		if err != nil {
			return fixedmath.U68F60{}, err
		}
		discount, err := ratio.Mul(c.floorSpan, fixedmath.RoundDown)
		if err != nil {
			return fixedmath.U68F60{}, err
		}
		return one.Sub(discount)
	}
}

// SampleFloat is the informational floating-point variant of Sample.
//
// Unlike the unsigned fixed-point input, u may be negative here; u <= 0
// returns the floor directly instead of extrapolating below it.
func (c *Curve) SampleFloat(u float64) float64 {
	switch {
	case u > 1:
		return c.maxF
	case u > c.targetF:
		return (u-c.targetF)/(1-c.targetF)*(c.maxF-1) + 1
	case u <= 0:
		return c.floorF
	default:
		return 1 - (c.targetF-u)/c.targetF*c.floorSpanF
	}
}

// UtilizationFromBps reads a utilization given in basis points of the curve's scale.
func (c *Curve) UtilizationFromBps(bps uint64) (fixedmath.U68F60, error) {
	return fixedmath.FromBpsScaled[fixedmath.Bits60](bps, c.scale)
}

// MultiplierBps converts a sampled multiplier to basis points of the curve's scale.
func (c *Curve) MultiplierBps(m fixedmath.U68F60) (uint64, error) {
	return fixedmath.ToBpsScaled[uint64](m, c.scale)
}

// Utilization returns borrowed / total. An empty vault has zero utilization.
func Utilization(borrowed, total uint64) (fixedmath.U68F60, error) {
	if total == 0 {
		return fixedmath.Zero[fixedmath.Bits60](), nil
	}
	return fixedmath.FromRatio[fixedmath.Bits60](borrowed, total, fixedmath.RoundDown)
}
