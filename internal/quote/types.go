package quote

import (
	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/aman-zulfiqar/leverage-sdk/internal/fixedmath"
)

// Snapshot is the on-chain state a quote is computed against.
type Snapshot struct {
	Vault        solana.PublicKey
	Pool         solana.PublicKey
	Utilization  fixedmath.U68F60  // vault borrowed / total
	SqrtPriceX64 ag_binary.Uint128 // pool sqrt price, Q64.64
}

// Request describes one leveraged swap. Rates are in the protocol's
// percentage scale (1_000_000 = 100%).
type Request struct {
	Snapshot

	AmountIn   uint64
	Collateral uint64
	Borrow     uint64

	SwapFeeBps       uint64
	CollateralFeeBps uint64
	BorrowFeeBps     uint64
	SlippageBps      *uint64 // nil uses the protocol default

	// AToB swaps token A for token B at the pool price; otherwise at 1/price.
	AToB bool
}

// Result holds instruction-ready amounts. All amount rounding favors the protocol.
type Result struct {
	Vault solana.PublicKey
	Pool  solana.PublicKey

	BorrowMultiplier fixedmath.U68F60
	Price            fixedmath.U64F64

	AmountIn     uint64
	GrossOut     uint64
	SwapFee      uint64
	NetOut       uint64
	MinAmountOut uint64
	ProtocolFee  uint64
	SlippageBps  uint64
}
