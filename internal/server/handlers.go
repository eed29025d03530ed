package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/leverage-sdk/internal/borrow"
	"github.com/aman-zulfiqar/leverage-sdk/internal/fees"
	"github.com/aman-zulfiqar/leverage-sdk/internal/fixedmath"
	"github.com/aman-zulfiqar/leverage-sdk/internal/price"
	"github.com/aman-zulfiqar/leverage-sdk/internal/quote"
)

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Quotes  *quote.Service // Curve, fee calculator and quote composition
	DevMode bool           // Enable detailed error responses in development
	Logger  *logrus.Logger // Structured logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// mathErr maps arithmetic and validation failures to a status code.
func (h *Handlers) mathErr(c echo.Context, msg string, err error) error {
	details := map[string]any{"err": err.Error()}
	switch {
	case errors.Is(err, fees.ErrInvalidRate), errors.Is(err, borrow.ErrInvalidParams):
		return h.err(c, http.StatusBadRequest, msg, details)
	case errors.Is(err, fixedmath.ErrArithmeticOverflow), errors.Is(err, fixedmath.ErrArithmeticUnderflow):
		return h.err(c, http.StatusUnprocessableEntity, msg, details)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return h.err(c, http.StatusServiceUnavailable, msg, details)
	}
	h.Logger.WithError(err).Error(msg)
	return h.err(c, http.StatusInternalServerError, msg, nil)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}

// parseRounding reads an optional rounding mode, falling back to def.
func parseRounding(s string, def fixedmath.Rounding) (fixedmath.Rounding, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	return fixedmath.ParseRounding(strings.ToLower(strings.TrimSpace(s)))
}

func parseUintQuery(c echo.Context, name string, bits int) (uint64, bool, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.ParseUint(v, 10, bits)
	return n, true, err
}

// FeesApply deducts a fee from an amount. Defaults to rounding down.
func (h *Handlers) FeesApply(c echo.Context) error {
	var req FeeRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	rounding, err := parseRounding(req.Rounding, fixedmath.RoundDown)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid rounding", map[string]any{"rounding": "must be down or up"})
	}

	calc := h.Quotes.Fees()
	net, err := calc.ApplyFee(req.Amount, req.RateBps, rounding)
	if err != nil {
		return h.mathErr(c, "failed to apply fee", err)
	}
	return c.JSON(http.StatusOK, FeeResponse{Amount: net, Fee: req.Amount - net, Rounding: rounding.String()})
}

// FeesReverse returns the gross amount that nets to the given amount.
// Defaults to rounding up.
func (h *Handlers) FeesReverse(c echo.Context) error {
	var req FeeRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	rounding, err := parseRounding(req.Rounding, fixedmath.RoundUp)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid rounding", map[string]any{"rounding": "must be down or up"})
	}

	calc := h.Quotes.Fees()
	gross, err := calc.ReverseApplyFee(req.Amount, req.RateBps, rounding)
	if err != nil {
		return h.mathErr(c, "failed to reverse fee", err)
	}
	return c.JSON(http.StatusOK, FeeResponse{Amount: gross, Fee: gross - req.Amount, Rounding: rounding.String()})
}

// FeesBlended returns the protocol fee on a leveraged position
func (h *Handlers) FeesBlended(c echo.Context) error {
	var req BlendedFeeRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	fee, err := h.Quotes.Fees().BlendedFee(req.Collateral, req.Borrow, req.CollateralRateBps, req.BorrowRateBps)
	if err != nil {
		return h.mathErr(c, "failed to compute blended fee", err)
	}
	return c.JSON(http.StatusOK, BlendedFeeResponse{Fee: fee})
}

// Price converts a pool sqrt price into a price
// Accepts format=fixed (68.60, default) or format=x64 (64.64). The x64 format
// also returns a UI price when decimals_a and decimals_b are given.
func (h *Handlers) Price(c echo.Context) error {
	sqrtStr := strings.TrimSpace(c.QueryParam("sqrt_price_x64"))
	if sqrtStr == "" {
		return h.err(c, http.StatusBadRequest, "invalid sqrt_price_x64", map[string]any{"sqrt_price_x64": "required"})
	}
	sqrt, err := fixedmath.ParseUint128(sqrtStr)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid sqrt_price_x64", map[string]any{"sqrt_price_x64": "must be u128"})
	}

	format := strings.ToLower(strings.TrimSpace(c.QueryParam("format")))
	if format == "" {
		format = "fixed"
	}

	resp := PriceResponse{SqrtPriceX64: sqrt.BigInt().String(), Format: format}
	switch format {
	case "fixed":
		p, err := price.SqrtPriceToPrice(sqrt)
		if err != nil {
			return h.mathErr(c, "failed to convert price", err)
		}
		resp.Price = p.String()
		resp.Raw = p.Raw().BigInt().String()

	case "x64":
		p, err := price.SqrtPriceToPriceX64(sqrt)
		if err != nil {
			return h.mathErr(c, "failed to convert price", err)
		}
		resp.Price = p.String()
		resp.Raw = p.Raw().BigInt().String()

		decA, okA, errA := parseUintQuery(c, "decimals_a", 8)
		decB, okB, errB := parseUintQuery(c, "decimals_b", 8)
		if errA != nil || errB != nil {
			return h.err(c, http.StatusBadRequest, "invalid decimals", map[string]any{"decimals": "must be uint8"})
		}
		if okA && okB {
			resp.UIPrice = price.UIPrice(p, uint8(decA), uint8(decB)).String()
		}

	default:
		return h.err(c, http.StatusBadRequest, "invalid format", map[string]any{"format": "must be fixed or x64"})
	}

	return c.JSON(http.StatusOK, resp)
}

// BorrowMultiplier samples the borrow curve at a utilization given in bps
func (h *Handlers) BorrowMultiplier(c echo.Context) error {
	u, ok, err := parseUintQuery(c, "utilization_bps", 64)
	if !ok {
		return h.err(c, http.StatusBadRequest, "invalid utilization_bps", map[string]any{"utilization_bps": "required"})
	}
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid utilization_bps", map[string]any{"utilization_bps": "must be uint64"})
	}

	curve := h.Quotes.Curve()
	utilization, err := curve.UtilizationFromBps(u)
	if err != nil {
		return h.mathErr(c, "failed to sample borrow curve", err)
	}
	m, err := curve.Sample(utilization)
	if err != nil {
		return h.mathErr(c, "failed to sample borrow curve", err)
	}
	mBps, err := curve.MultiplierBps(m)
	if err != nil {
		return h.mathErr(c, "failed to sample borrow curve", err)
	}

	return c.JSON(http.StatusOK, MultiplierResponse{
		UtilizationBps:  u,
		Multiplier:      m.String(),
		MultiplierBps:   mBps,
		MultiplierFloat: curve.SampleFloat(utilization.Float64()),
	})
}

// Quote computes a leveraged swap quote against a caller-supplied snapshot
func (h *Handlers) Quote(c echo.Context) error {
	var req QuoteRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	vault, err := solana.PublicKeyFromBase58(strings.TrimSpace(req.Vault))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid vault", map[string]any{"vault": "must be base58 pubkey"})
	}
	pool, err := solana.PublicKeyFromBase58(strings.TrimSpace(req.Pool))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid pool", map[string]any{"pool": "must be base58 pubkey"})
	}
	sqrt, err := fixedmath.ParseUint128(req.SqrtPriceX64)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid sqrt_price_x64", map[string]any{"sqrt_price_x64": "must be u128"})
	}

	utilization, err := h.Quotes.Curve().UtilizationFromBps(req.UtilizationBps)
	if err != nil {
		return h.mathErr(c, "quote failed", err)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	res, err := h.Quotes.Quote(ctx, quote.Request{
		Snapshot: quote.Snapshot{
			Vault:        vault,
			Pool:         pool,
			Utilization:  utilization,
			SqrtPriceX64: sqrt,
		},
		AmountIn:         req.AmountIn,
		Collateral:       req.Collateral,
		Borrow:           req.Borrow,
		SwapFeeBps:       req.SwapFeeBps,
		CollateralFeeBps: req.CollateralFeeBps,
		BorrowFeeBps:     req.BorrowFeeBps,
		SlippageBps:      req.SlippageBps,
		AToB:             req.AToB,
	})
	if err != nil {
		return h.mathErr(c, "quote failed", err)
	}

	return c.JSON(http.StatusOK, QuoteResponse{
		Vault:            res.Vault.String(),
		Pool:             res.Pool.String(),
		BorrowMultiplier: res.BorrowMultiplier.String(),
		Price:            res.Price.String(),
		AmountIn:         res.AmountIn,
		GrossOut:         res.GrossOut,
		SwapFee:          res.SwapFee,
		NetOut:           res.NetOut,
		MinAmountOut:     res.MinAmountOut,
		ProtocolFee:      res.ProtocolFee,
		SlippageBps:      res.SlippageBps,
	})
}
