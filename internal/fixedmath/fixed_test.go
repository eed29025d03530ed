package fixedmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixed_OneAndFromInt(t *testing.T) {
	assert.Equal(t, U128(0, 1<<60), One[Bits60]().Raw())
	assert.Equal(t, U128(1, 0), One[Bits64]().Raw())
	assert.Equal(t, U128(0, 3<<60), FromInt[Bits60](3).Raw())
	assert.Equal(t, U128(math.MaxUint64, 0), FromInt[Bits64](math.MaxUint64).Raw())
	assert.True(t, Zero[Bits60]().IsZero())
	assert.Equal(t, uint(60), U68F60{}.FracBits())
	assert.Equal(t, uint(64), U64F64{}.FracBits())
}

func TestFixed_AddSub(t *testing.T) {
	a, b := FromInt[Bits60](5), FromInt[Bits60](3)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Equal(FromInt[Bits60](8)))

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.True(t, diff.Equal(FromInt[Bits60](2)))

	_, err = b.Sub(a)
	assert.ErrorIs(t, err, ErrArithmeticUnderflow)

	top := FromRaw[Bits60](math.MaxUint64, math.MaxUint64)
	_, err = top.Add(FromRaw[Bits60](0, 1))
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestFixed_MulDiv(t *testing.T) {
	half := FromBps[Bits60](500_000)
	three := FromInt[Bits60](3)

	got, err := three.Mul(half, RoundDown)
	require.NoError(t, err)
	assert.Equal(t, "1.5000", got.String())

	got, err = three.Div(FromInt[Bits60](2), RoundDown)
	require.NoError(t, err)
	assert.True(t, got.Equal(Must(FromInt[Bits60](3).Mul(half, RoundDown))))

	// 1/3 is inexact: the two rounding modes differ by exactly one ulp
	down, err := One[Bits60]().Div(three, RoundDown)
	require.NoError(t, err)
	up, err := One[Bits60]().Div(three, RoundUp)
	require.NoError(t, err)
	ulp := FromRaw[Bits60](0, 1)
	assert.True(t, Must(down.Add(ulp)).Equal(up))

	// smallest values: 1 ulp * 1 ulp truncates to zero, rounds up to one ulp
	tiny, err := ulp.Mul(ulp, RoundDown)
	require.NoError(t, err)
	assert.True(t, tiny.IsZero())
	tiny, err = ulp.Mul(ulp, RoundUp)
	require.NoError(t, err)
	assert.True(t, tiny.Equal(ulp))

	_, err = three.Div(Zero[Bits60](), RoundDown)
	assert.ErrorIs(t, err, ErrDivisionByZero)

	big := FromInt[Bits60](1 << 40)
	_, err = big.Mul(big, RoundDown)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestFixed_Compare(t *testing.T) {
	a, b := FromBps[Bits60](100), FromBps[Bits60](200)
	assert.Equal(t, -1, a.Cmp(b))
	assert.Equal(t, 1, b.Cmp(a))
	assert.Equal(t, 0, a.Cmp(a))
	assert.True(t, a.LessThan(b))
	assert.True(t, b.GreaterThan(a))
	assert.False(t, a.Equal(b))
}

func TestFixed_FromRatio(t *testing.T) {
	u, err := FromRatio[Bits60](9, 10, RoundDown)
	require.NoError(t, err)
	assert.Equal(t, "0.9000", u.String())
	assert.True(t, u.Equal(FromBps[Bits60](900_000)))

	_, err = FromRatio[Bits60](1, 0, RoundDown)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestFixed_MulUint64(t *testing.T) {
	rate := FromBps[Bits64](997_000)

	got, err := rate.MulUint64(1_000_000, RoundDown)
	require.NoError(t, err)
	assert.Equal(t, uint64(996_999), got) // FromBps truncated below 0.997

	got, err = rate.MulUint64(1_000_000, RoundUp)
	require.NoError(t, err)
	assert.Equal(t, uint64(997_000), got)

	got, err = FromInt[Bits64](2).MulUint64(21, RoundDown)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got)

	_, err = FromInt[Bits64](2).MulUint64(math.MaxUint64, RoundDown)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestRescale(t *testing.T) {
	sqrtX64 := FromRaw[Bits64](1, 1<<63|0xF) // 1.5 + 15 * 2^-64

	down, err := Rescale[Bits60](sqrtX64, RoundDown)
	require.NoError(t, err)
	assert.True(t, down.Equal(FromBps[Bits60](1_500_000)))

	up, err := Rescale[Bits60](sqrtX64, RoundUp)
	require.NoError(t, err)
	assert.True(t, up.Equal(Must(down.Add(FromRaw[Bits60](0, 1)))))

	back, err := Rescale[Bits64](down, RoundDown)
	require.NoError(t, err)
	assert.True(t, back.Equal(FromRaw[Bits64](1, 1<<63)))

	// 68 integer bits do not fit in 64
	_, err = Rescale[Bits64](FromRaw[Bits60](1<<63, 0), RoundDown)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestMust(t *testing.T) {
	assert.NotPanics(t, func() { Must(FromInt[Bits60](1).Add(FromInt[Bits60](1))) })
	assert.Panics(t, func() { Must(FromInt[Bits60](1).Sub(FromInt[Bits60](2))) })
}
