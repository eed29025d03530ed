package server

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK bool `json:"ok"` // Service health status
}

// FeeRequest applies or reverses a fee on a token amount
type FeeRequest struct {
	Amount   uint64 `json:"amount"`
	RateBps  uint64 `json:"rate_bps"`
	Rounding string `json:"rounding"` // "down" | "up"; empty picks the protocol-favoring side
}

// FeeResponse carries the resulting amount
type FeeResponse struct {
	Amount   uint64 `json:"amount"`
	Fee      uint64 `json:"fee"`
	Rounding string `json:"rounding"`
}

// BlendedFeeRequest describes a leveraged position's fee inputs
type BlendedFeeRequest struct {
	Collateral        uint64 `json:"collateral"`
	Borrow            uint64 `json:"borrow"`
	CollateralRateBps uint64 `json:"collateral_rate_bps"`
	BorrowRateBps     uint64 `json:"borrow_rate_bps"`
}

// BlendedFeeResponse carries the protocol fee
type BlendedFeeResponse struct {
	Fee uint64 `json:"fee"`
}

// PriceResponse represents a price converted from a pool sqrt price
type PriceResponse struct {
	SqrtPriceX64 string `json:"sqrt_price_x64"`
	Format       string `json:"format"`             // "fixed" (68.60) | "x64" (64.64)
	Price        string `json:"price"`              // 4-decimal display
	Raw          string `json:"raw"`                // raw fixed-point bits
	UIPrice      string `json:"ui_price,omitempty"` // decimal-adjusted, x64 only
}

// MultiplierResponse represents a borrow curve sample
type MultiplierResponse struct {
	UtilizationBps  uint64  `json:"utilization_bps"`
	Multiplier      string  `json:"multiplier"`
	MultiplierBps   uint64  `json:"multiplier_bps"`
	MultiplierFloat float64 `json:"multiplier_float"`
}

// QuoteRequest represents a leveraged swap quote request
type QuoteRequest struct {
	Vault            string  `json:"vault"` // base58 vault address
	Pool             string  `json:"pool"`  // base58 pool address
	UtilizationBps   uint64  `json:"utilization_bps"`
	SqrtPriceX64     string  `json:"sqrt_price_x64"` // decimal u128
	AmountIn         uint64  `json:"amount_in"`
	Collateral       uint64  `json:"collateral"`
	Borrow           uint64  `json:"borrow"`
	SwapFeeBps       uint64  `json:"swap_fee_bps"`
	CollateralFeeBps uint64  `json:"collateral_fee_bps"`
	BorrowFeeBps     uint64  `json:"borrow_fee_bps"`
	SlippageBps      *uint64 `json:"slippage_bps,omitempty"`
	AToB             bool    `json:"a_to_b"`
}

// QuoteResponse represents instruction-ready quote amounts
type QuoteResponse struct {
	Vault            string `json:"vault"`
	Pool             string `json:"pool"`
	BorrowMultiplier string `json:"borrow_multiplier"`
	Price            string `json:"price"`
	AmountIn         uint64 `json:"amount_in"`
	GrossOut         uint64 `json:"gross_out"`
	SwapFee          uint64 `json:"swap_fee"`
	NetOut           uint64 `json:"net_out"`
	MinAmountOut     uint64 `json:"min_amount_out"`
	ProtocolFee      uint64 `json:"protocol_fee"`
	SlippageBps      uint64 `json:"slippage_bps"`
}
