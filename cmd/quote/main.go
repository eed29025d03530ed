package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/leverage-sdk/internal/config"
	"github.com/aman-zulfiqar/leverage-sdk/internal/fixedmath"
	"github.com/aman-zulfiqar/leverage-sdk/internal/price"
	"github.com/aman-zulfiqar/leverage-sdk/internal/quote"
)

func loadEnv() {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))
}

func main() {
	loadEnv()

	vaultStr := flag.String("vault", "", "vault address (base58)")
	poolStr := flag.String("pool", "", "pool address (base58)")
	utilBps := flag.Uint64("utilization-bps", 0, "vault utilization in bps of the protocol percent scale (1000000 = 100% by default)")
	sqrtStr := flag.String("sqrt-price-x64", "", "pool sqrt price, Q64.64 decimal u128")
	amountIn := flag.Uint64("amount-in", 0, "input amount in raw token units")
	collateral := flag.Uint64("collateral", 0, "position collateral in raw units")
	borrowAmt := flag.Uint64("borrow", 0, "position borrow in raw units")
	swapFee := flag.Uint64("swap-fee-bps", 0, "pool swap fee in bps")
	collateralFee := flag.Uint64("collateral-fee-bps", 0, "protocol fee on collateral in bps")
	borrowFee := flag.Uint64("borrow-fee-bps", 0, "protocol fee on borrow in bps")
	slippage := flag.Int64("slippage-bps", -1, "slippage in bps (-1 uses the protocol default)")
	aToB := flag.Bool("a-to-b", true, "swap token A for token B")
	decimalsA := flag.Uint("decimals-a", 0, "token A decimals, for the UI price")
	decimalsB := flag.Uint("decimals-b", 0, "token B decimals, for the UI price")
	paramsFile := flag.String("params", os.Getenv("PROTOCOL_PARAMS_FILE"), "protocol params YAML file")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	vault, err := solana.PublicKeyFromBase58(*vaultStr)
	if err != nil {
		fmt.Println("invalid -vault:", err)
		os.Exit(2)
	}
	pool, err := solana.PublicKeyFromBase58(*poolStr)
	if err != nil {
		fmt.Println("invalid -pool:", err)
		os.Exit(2)
	}
	sqrt, err := fixedmath.ParseUint128(*sqrtStr)
	if err != nil {
		fmt.Println("invalid -sqrt-price-x64:", err)
		os.Exit(2)
	}
	if *decimalsA > 255 || *decimalsB > 255 {
		fmt.Println("invalid -decimals-a/-decimals-b (must be <= 255)")
		os.Exit(2)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	params, err := config.LoadProtocolParams(*paramsFile)
	if err != nil {
		fmt.Println("failed to load protocol params:", err)
		os.Exit(1)
	}
	svc, err := quote.NewFromParams(params, logger)
	if err != nil {
		fmt.Println("failed to init quote service:", err)
		os.Exit(1)
	}

	utilization, err := svc.Curve().UtilizationFromBps(*utilBps)
	if err != nil {
		fmt.Println("invalid -utilization-bps:", err)
		os.Exit(2)
	}

	req := quote.Request{
		Snapshot: quote.Snapshot{
			Vault:        vault,
			Pool:         pool,
			Utilization:  utilization,
			SqrtPriceX64: sqrt,
		},
		AmountIn:         *amountIn,
		Collateral:       *collateral,
		Borrow:           *borrowAmt,
		SwapFeeBps:       *swapFee,
		CollateralFeeBps: *collateralFee,
		BorrowFeeBps:     *borrowFee,
		AToB:             *aToB,
	}
	if *slippage >= 0 {
		s := uint64(*slippage)
		req.SlippageBps = &s
	}

	q, err := svc.Quote(ctx, req)
	if err != nil {
		fmt.Println("quote failed:", err)
		os.Exit(1)
	}

	fmt.Printf("vault=%s pool=%s multiplier=%s price=%s ui_price=%s\n",
		q.Vault, q.Pool, q.BorrowMultiplier, q.Price,
		price.UIPrice(q.Price, uint8(*decimalsA), uint8(*decimalsB)).StringFixed(6))
	fmt.Printf("amount_in=%d gross_out=%d swap_fee=%d net_out=%d min_out=%d slippage_bps=%d protocol_fee=%d\n",
		q.AmountIn, q.GrossOut, q.SwapFee, q.NetOut, q.MinAmountOut, q.SlippageBps, q.ProtocolFee)
}
