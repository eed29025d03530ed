package quote

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/leverage-sdk/internal/borrow"
	"github.com/aman-zulfiqar/leverage-sdk/internal/config"
	"github.com/aman-zulfiqar/leverage-sdk/internal/fees"
	"github.com/aman-zulfiqar/leverage-sdk/internal/fixedmath"
	"github.com/aman-zulfiqar/leverage-sdk/internal/price"
)

var ErrNotConfigured = errors.New("quote service not configured")

// Deps are the collaborators of a Service.
type Deps struct {
	Curve              *borrow.Curve
	Fees               *fees.Calculator
	DefaultSlippageBps uint64
	Logger             *logrus.Logger
}

// Service composes the borrow curve, price conversion and fee math into
// position quotes. It holds no mutable state.
type Service struct {
	curve           *borrow.Curve
	fees            *fees.Calculator
	defaultSlippage uint64
	logger          *logrus.Logger
}

func NewService(deps Deps) (*Service, error) {
	if deps.Curve == nil || deps.Fees == nil {
		return nil, ErrNotConfigured
	}
	// slippage is deducted with ApplyFee, which needs rate < scale
	if deps.DefaultSlippageBps >= deps.Fees.Scale() {
		return nil, fmt.Errorf("%w: default slippage %d bps must be below %d",
			ErrNotConfigured, deps.DefaultSlippageBps, deps.Fees.Scale())
	}
	if deps.Curve.Scale() != deps.Fees.Scale() {
		return nil, fmt.Errorf("%w: curve scale %d does not match fee scale %d",
			ErrNotConfigured, deps.Curve.Scale(), deps.Fees.Scale())
	}

	logger := deps.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Service{
		curve:           deps.Curve,
		fees:            deps.Fees,
		defaultSlippage: deps.DefaultSlippageBps,
		logger:          logger,
	}, nil
}

// NewFromParams builds a Service from protocol parameters.
func NewFromParams(p config.ProtocolParams, logger *logrus.Logger) (*Service, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotConfigured, err)
	}
	curve, err := borrow.NewCurve(p.Borrow, p.PercentScale)
	if err != nil {
		return nil, err
	}
	calc, err := fees.NewCalculator(p.PercentScale)
	if err != nil {
		return nil, err
	}
	return NewService(Deps{
		Curve:              curve,
		Fees:               calc,
		DefaultSlippageBps: p.DefaultSlippageBps,
		Logger:             logger,
	})
}

func (s *Service) Curve() *borrow.Curve       { return s.curve }
func (s *Service) Fees() *fees.Calculator     { return s.fees }
func (s *Service) DefaultSlippageBps() uint64 { return s.defaultSlippage }

// ValidateRates rejects rates the fee math cannot apply. Swap fee and
// slippage are deducted from an amount, so they must stay below 100%.
func (s *Service) ValidateRates(req Request) error {
	if req.SwapFeeBps >= s.fees.Scale() {
		return fmt.Errorf("%w: swap fee %d bps", fees.ErrInvalidRate, req.SwapFeeBps)
	}
	if req.SlippageBps != nil && *req.SlippageBps >= s.fees.Scale() {
		return fmt.Errorf("%w: slippage %d bps", fees.ErrInvalidRate, *req.SlippageBps)
	}
	if err := s.fees.ValidateRate(req.CollateralFeeBps); err != nil {
		return fmt.Errorf("collateral fee: %w", err)
	}
	if err := s.fees.ValidateRate(req.BorrowFeeBps); err != nil {
		return fmt.Errorf("borrow fee: %w", err)
	}
	return nil
}

func (s *Service) Quote(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ValidateRates(req); err != nil {
		return nil, err
	}

	slippage := s.defaultSlippage
	if req.SlippageBps != nil {
		slippage = *req.SlippageBps
	}

	multiplier, err := s.curve.Sample(req.Utilization)
	if err != nil {
		return nil, fmt.Errorf("borrow multiplier: %w", err)
	}

	p, err := price.SqrtPriceToPriceX64(req.SqrtPriceX64)
	if err != nil {
		return nil, fmt.Errorf("pool price: %w", err)
	}

	gross, err := convert(req.AmountIn, p, req.AToB)
	if err != nil {
		return nil, fmt.Errorf("swap amount: %w", err)
	}

	net, err := s.fees.ApplyFee(gross, req.SwapFeeBps, fixedmath.RoundDown)
	if err != nil {
		return nil, fmt.Errorf("swap fee: %w", err)
	}

	minOut, err := s.fees.ApplyFee(net, slippage, fixedmath.RoundDown)
	if err != nil {
		return nil, fmt.Errorf("slippage: %w", err)
	}

	protocolFee, err := s.fees.BlendedFee(req.Collateral, req.Borrow, req.CollateralFeeBps, req.BorrowFeeBps)
	if err != nil {
		return nil, fmt.Errorf("protocol fee: %w", err)
	}

	res := &Result{
		Vault:            req.Vault,
		Pool:             req.Pool,
		BorrowMultiplier: multiplier,
		Price:            p,
		AmountIn:         req.AmountIn,
		GrossOut:         gross,
		SwapFee:          gross - net,
		NetOut:           net,
		MinAmountOut:     minOut,
		ProtocolFee:      protocolFee,
		SlippageBps:      slippage,
	}

	s.logger.WithFields(logrus.Fields{
		"vault":       req.Vault.String(),
		"pool":        req.Pool.String(),
		"a_to_b":      req.AToB,
		"utilization": req.Utilization.String(),
		"multiplier":  multiplier.String(),
		"price":       p.String(),
		"amount_in":   req.AmountIn,
		"net_out":     net,
		"min_out":     minOut,
	}).Debug("quote computed")

	return res, nil
}

// convert prices amount at p (A to B) or 1/p (B to A), truncating.
func convert(amount uint64, p fixedmath.U64F64, aToB bool) (uint64, error) {
	if aToB {
		return p.MulUint64(amount, fixedmath.RoundDown)
	}
	// amount * 2^64 / raw keeps full precision instead of inverting the price first
	out, err := fixedmath.MulDiv128(
		fixedmath.U128FromUint64(amount),
		fixedmath.U128(1, 0),
		p.Raw(),
		fixedmath.RoundDown,
	)
	if err != nil {
		return 0, err
	}
	return fixedmath.NarrowUint64(out)
}
