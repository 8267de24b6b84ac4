package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-insight/internal/dto"
)

func mkSeries(closes ...float64) []dto.PricePoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]dto.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = dto.PricePoint{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			Close:  c,
			High:   c + 1,
			Low:    c - 1,
			Volume: 10000,
		}
	}
	return points
}

func risingSeries(n int, start, step float64) []dto.PricePoint {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + float64(i)*step
	}
	return mkSeries(closes...)
}

func TestComputeSMAEqualsTrailingMean(t *testing.T) {
	series := risingSeries(40, 10, 0.5)
	out := Compute(series)

	require.Len(t, out, 40)

	for i := range out {
		if i < 4 {
			assert.Nil(t, out[i].MA5, "ma5 defined too early at %d", i)
			continue
		}
		var sum float64
		for j := i - 4; j <= i; j++ {
			sum += series[j].Close
		}
		require.NotNil(t, out[i].MA5)
		assert.InDelta(t, sum/5, *out[i].MA5, 1e-9)
	}

	assert.Nil(t, out[28].MA30)
	require.NotNil(t, out[29].MA30)
}

func TestComputeRSIBounds(t *testing.T) {
	closes := []float64{
		50, 51, 49, 52, 48, 53, 47, 54, 46, 55,
		45, 56, 44, 57, 43, 58, 42, 59, 41, 60,
		40, 61, 39, 62, 38, 63, 37, 64, 36, 65,
		35, 66, 34, 67, 33, 68, 32, 69, 31, 70,
	}
	out := Compute(mkSeries(closes...))

	for i, p := range out {
		if i < 14 {
			assert.Nil(t, p.RSI, "rsi defined too early at %d", i)
			continue
		}
		require.NotNil(t, p.RSI)
		assert.GreaterOrEqual(t, *p.RSI, 0.0)
		assert.LessOrEqual(t, *p.RSI, 100.0)
	}
}

func TestComputeRSIAllGainsIsHundred(t *testing.T) {
	out := Compute(risingSeries(20, 10, 1))
	require.NotNil(t, out[19].RSI)
	assert.Equal(t, 100.0, *out[19].RSI)
}

func TestComputeRSIFlatSeriesUndefined(t *testing.T) {
	out := Compute(risingSeries(20, 10, 0))
	assert.Nil(t, out[19].RSI)
}

func TestComputeMACDHistogramIdentity(t *testing.T) {
	out := Compute(risingSeries(50, 100, 0.7))

	for i, p := range out {
		require.NotNil(t, p.MACD, "macd nil at %d", i)
		require.NotNil(t, p.MACDSignal)
		require.NotNil(t, p.MACDHistogram)
		assert.InDelta(t, *p.MACD-*p.MACDSignal, *p.MACDHistogram, 1e-9)
	}
}

func TestComputeBollingerBandsAroundMiddle(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		if i%2 == 0 {
			closes[i] = 100
		} else {
			closes[i] = 110
		}
	}
	out := Compute(mkSeries(closes...))

	assert.Nil(t, out[18].BollingerMiddle)
	require.NotNil(t, out[19].BollingerMiddle)
	require.NotNil(t, out[19].BollingerUpper)
	require.NotNil(t, out[19].BollingerLower)

	mid := *out[19].BollingerMiddle
	assert.InDelta(t, 105, mid, 1e-9)
	assert.Greater(t, *out[19].BollingerUpper, mid)
	assert.Less(t, *out[19].BollingerLower, mid)
	assert.InDelta(t, mid-*out[19].BollingerLower, *out[19].BollingerUpper-mid, 1e-9)
}

func TestComputeIdempotent(t *testing.T) {
	series := risingSeries(70, 20, 0.3)
	first := Compute(series)
	second := Compute(series)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].PricePoint, second[i].PricePoint)
		assertSamePointer(t, first[i].MA5, second[i].MA5)
		assertSamePointer(t, first[i].RSI, second[i].RSI)
		assertSamePointer(t, first[i].MACD, second[i].MACD)
		assertSamePointer(t, first[i].BollingerUpper, second[i].BollingerUpper)
	}
}

func TestComputeEmptyAndShortSeries(t *testing.T) {
	assert.Empty(t, Compute(nil))

	out := Compute(risingSeries(3, 10, 1))
	require.Len(t, out, 3)
	assert.Nil(t, out[2].MA5)
	assert.Nil(t, out[2].RSI)
	require.NotNil(t, out[2].MACD)
}

func assertSamePointer(t *testing.T, a, b *float64) {
	t.Helper()
	if a == nil {
		assert.Nil(t, b)
		return
	}
	require.NotNil(t, b)
	assert.Equal(t, *a, *b)
}
