package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/leverage-sdk/internal/borrow"
	"github.com/aman-zulfiqar/leverage-sdk/internal/config"
	"github.com/aman-zulfiqar/leverage-sdk/internal/quote"
)

const (
	testVault = "So11111111111111111111111111111111111111112"
	testPool  = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

	sqrtPriceTwo = "36893488147419103232" // 2 << 64
)

func newTestServer(t *testing.T, cfg ServerConfig) *Server {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc, err := quote.NewFromParams(config.DefaultProtocolParams(), logger)
	require.NoError(t, err)

	cfg.DevMode = true
	srv, err := NewServer(ServerDeps{
		Handlers: &Handlers{Quotes: svc, DevMode: true, Logger: logger},
		Config:   cfg,
	})
	require.NoError(t, err)
	return srv
}

func do(t *testing.T, srv *Server, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, ServerConfig{})

	rec := do(t, srv, http.MethodGet, "/v1/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[HealthResponse](t, rec).OK)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t, ServerConfig{})

	rec := do(t, srv, http.MethodGet, "/v1/nope", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, decode[ErrorResponse](t, rec).Code)
}

func TestFees(t *testing.T) {
	srv := newTestServer(t, ServerConfig{})

	rec := do(t, srv, http.MethodPost, "/v1/fees/apply", FeeRequest{Amount: 1_000_000, RateBps: 3_000}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	applied := decode[FeeResponse](t, rec)
	assert.Equal(t, uint64(997_000), applied.Amount)
	assert.Equal(t, uint64(3_000), applied.Fee)
	assert.Equal(t, "down", applied.Rounding)

	rec = do(t, srv, http.MethodPost, "/v1/fees/reverse", FeeRequest{Amount: 997_000, RateBps: 3_000}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reversed := decode[FeeResponse](t, rec)
	assert.Equal(t, uint64(1_000_000), reversed.Amount)
	assert.Equal(t, "up", reversed.Rounding)

	rec = do(t, srv, http.MethodPost, "/v1/fees/apply", FeeRequest{Amount: 7, RateBps: 300_000, Rounding: "UP"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, uint64(5), decode[FeeResponse](t, rec).Amount)

	rec = do(t, srv, http.MethodPost, "/v1/fees/blended", BlendedFeeRequest{
		Collateral: 1_000, Borrow: 4_000, CollateralRateBps: 5_000, BorrowRateBps: 10_000,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, uint64(45), decode[BlendedFeeResponse](t, rec).Fee)
}

func TestFees_Errors(t *testing.T) {
	srv := newTestServer(t, ServerConfig{})

	tests := []struct {
		name string
		path string
		body any
		code int
	}{
		{"full rate", "/v1/fees/apply", FeeRequest{Amount: 1, RateBps: 1_000_000}, http.StatusBadRequest},
		{"bad rounding", "/v1/fees/apply", FeeRequest{Amount: 1, Rounding: "sideways"}, http.StatusBadRequest},
		{"reverse overflow", "/v1/fees/reverse", FeeRequest{Amount: ^uint64(0), RateBps: 500_000}, http.StatusUnprocessableEntity},
		{"blended rate", "/v1/fees/blended", BlendedFeeRequest{CollateralRateBps: 2_000_000}, http.StatusBadRequest},
		{"blended overflow", "/v1/fees/blended", BlendedFeeRequest{
			Collateral: ^uint64(0), Borrow: ^uint64(0), CollateralRateBps: 1_000_000, BorrowRateBps: 1_000_000,
		}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, tt.path, tt.body, nil)
			require.Equal(t, tt.code, rec.Code, rec.Body.String())
			resp := decode[ErrorResponse](t, rec)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}

	rec := do(t, srv, http.MethodPost, "/v1/fees/apply", "not an object", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPrice(t *testing.T) {
	srv := newTestServer(t, ServerConfig{})

	rec := do(t, srv, http.MethodGet, "/v1/price?sqrt_price_x64="+sqrtPriceTwo, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decode[PriceResponse](t, rec)
	assert.Equal(t, "fixed", p.Format)
	assert.Equal(t, "4.0000", p.Price)
	assert.Equal(t, "4611686018427387904", p.Raw) // 4 << 60
	assert.Empty(t, p.UIPrice)

	rec = do(t, srv, http.MethodGet, "/v1/price?format=x64&decimals_a=9&decimals_b=6&sqrt_price_x64="+sqrtPriceTwo, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p = decode[PriceResponse](t, rec)
	assert.Equal(t, "4.0000", p.Price)
	assert.Equal(t, "73786976294838206464", p.Raw) // 4 << 64
	assert.Equal(t, "4000", p.UIPrice)
}

func TestPrice_Errors(t *testing.T) {
	srv := newTestServer(t, ServerConfig{})

	tests := []struct {
		name  string
		query string
		code  int
	}{
		{"missing", "", http.StatusBadRequest},
		{"not a number", "?sqrt_price_x64=abc", http.StatusBadRequest},
		{"negative", "?sqrt_price_x64=-1", http.StatusBadRequest},
		{"bad format", "?format=float&sqrt_price_x64=1", http.StatusBadRequest},
		{"bad decimals", "?format=x64&decimals_a=300&decimals_b=6&sqrt_price_x64=1", http.StatusBadRequest},
		{"fixed overflow", "?sqrt_price_x64=316912650057057350374175801344", http.StatusUnprocessableEntity}, // 2^98
		{"x64 overflow", "?format=x64&sqrt_price_x64=79228162514264337593543950336", http.StatusUnprocessableEntity}, // 2^96
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, "/v1/price"+tt.query, nil, nil)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestBorrowMultiplier(t *testing.T) {
	srv := newTestServer(t, ServerConfig{})

	rec := do(t, srv, http.MethodGet, "/v1/borrow/multiplier?utilization_bps=950000", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	m := decode[MultiplierResponse](t, rec)
	assert.Equal(t, uint64(950_000), m.UtilizationBps)
	assert.Equal(t, "2.5000", m.Multiplier)
	assert.Equal(t, uint64(2_500_000), m.MultiplierBps)
	assert.InDelta(t, 2.5, m.MultiplierFloat, 1e-12)

	rec = do(t, srv, http.MethodGet, "/v1/borrow/multiplier?utilization_bps=0", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, uint64(250_000), decode[MultiplierResponse](t, rec).MultiplierBps)

	rec = do(t, srv, http.MethodGet, "/v1/borrow/multiplier", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/v1/borrow/multiplier?utilization_bps=-5", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func quoteBody() QuoteRequest {
	return QuoteRequest{
		Vault:            testVault,
		Pool:             testPool,
		UtilizationBps:   900_000,
		SqrtPriceX64:     "18446744073709551616", // 1 << 64
		AmountIn:         1_000_000,
		Collateral:       1_000,
		Borrow:           4_000,
		SwapFeeBps:       3_000,
		CollateralFeeBps: 5_000,
		BorrowFeeBps:     10_000,
		AToB:             true,
	}
}

func TestQuote(t *testing.T) {
	srv := newTestServer(t, ServerConfig{})

	rec := do(t, srv, http.MethodPost, "/v1/quote", quoteBody(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	q := decode[QuoteResponse](t, rec)
	assert.Equal(t, testVault, q.Vault)
	assert.Equal(t, testPool, q.Pool)
	assert.Equal(t, "1.0000", q.BorrowMultiplier)
	assert.Equal(t, "1.0000", q.Price)
	assert.Equal(t, uint64(997_000), q.NetOut)
	assert.Equal(t, uint64(3_000), q.SwapFee)
	assert.Equal(t, uint64(987_030), q.MinAmountOut)
	assert.Equal(t, uint64(45), q.ProtocolFee)
	assert.Equal(t, uint64(10_000), q.SlippageBps)
}

func TestQuote_Errors(t *testing.T) {
	srv := newTestServer(t, ServerConfig{})

	badVault := quoteBody()
	badVault.Vault = "not-a-key"

	badSqrt := quoteBody()
	badSqrt.SqrtPriceX64 = "1.5"

	badSlippage := quoteBody()
	slippage := uint64(1_000_000)
	badSlippage.SlippageBps = &slippage

	inverseOfZero := quoteBody()
	inverseOfZero.SqrtPriceX64 = "0"
	inverseOfZero.AToB = false

	tests := []struct {
		name string
		body QuoteRequest
		code int
	}{
		{"bad vault", badVault, http.StatusBadRequest},
		{"bad sqrt price", badSqrt, http.StatusBadRequest},
		{"slippage at 100%", badSlippage, http.StatusBadRequest},
		{"zero price inverse", inverseOfZero, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/v1/quote", tt.body, nil)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestQuote_RateLimited(t *testing.T) {
	srv := newTestServer(t, ServerConfig{RateLimitRPS: 0.001, RateLimitBurst: 1})

	rec := do(t, srv, http.MethodPost, "/v1/quote", quoteBody(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, srv, http.MethodPost, "/v1/quote", quoteBody(), nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// other routes are not limited
	rec = do(t, srv, http.MethodGet, "/v1/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKey(t *testing.T) {
	srv := newTestServer(t, ServerConfig{APIKey: "test-api-key"})

	rec := do(t, srv, http.MethodGet, "/v1/health", nil, nil)
	assert.NotEqual(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/v1/health", nil, map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, srv, http.MethodGet, "/v1/health", nil, map[string]string{"X-API-Key": "test-api-key"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewServer_RequiresQuotes(t *testing.T) {
	_, err := NewServer(ServerDeps{Handlers: &Handlers{}})
	assert.Error(t, err)
}

func TestBorrowMultiplier_OtherScale(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc, err := quote.NewFromParams(config.ProtocolParams{
		PercentScale:       10_000,
		Borrow:             borrow.Params{TargetUtilizationBps: 9_000, MaxMultiplierBps: 40_000},
		DefaultSlippageBps: 100,
	}, logger)
	require.NoError(t, err)

	srv, err := NewServer(ServerDeps{Handlers: &Handlers{Quotes: svc, Logger: logger}})
	require.NoError(t, err)

	rec := do(t, srv, http.MethodGet, "/v1/borrow/multiplier?utilization_bps=9500", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	m := decode[MultiplierResponse](t, rec)
	assert.Equal(t, "2.5000", m.Multiplier)
	assert.Equal(t, uint64(25_000), m.MultiplierBps)
}
