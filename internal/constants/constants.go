package constants

// Rate scale
const (
	// PercentScale is the basis-point denominator used by the lending program: 1_000_000 = 100%.
	PercentScale = 1_000_000
)

// Borrow curve defaults
const (
	TargetUtilizationBps   = 900_000   // 90%
	MaxBorrowMultiplierBps = 4_000_000 // 4.0x, floor is 1/4
)

// Quote defaults
const (
	DefaultSlippageBps = 10_000 // 1%
)

// Display
const (
	DisplayDecimals = 4
	DisplayScale    = 10_000 // 10^DisplayDecimals
)

// Fixed-point layouts
const (
	FixedWidth    = 128
	FractionBits  = 60 // U68F60, ratios and multipliers
	PriceFracBits = 64 // U64F64, sqrt price and price
)
