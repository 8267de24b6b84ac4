package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-insight/internal/dto"
	"stock-insight/internal/indicator"
)

func mkSeries(closes []float64, volumes []float64) []dto.IndicatorPoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]dto.PricePoint, len(closes))
	for i, c := range closes {
		vol := 10000.0
		if volumes != nil {
			vol = volumes[i]
		}
		points[i] = dto.PricePoint{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			Close:  c,
			High:   c + 1,
			Low:    c - 1,
			Volume: vol,
		}
	}
	return indicator.Compute(points)
}

// declineThenRally produces a series where MA5 starts below MA30 and
// crosses above it once the rally takes hold.
func declineThenRally() []dto.IndicatorPoint {
	closes := make([]float64, 45)
	price := 100.0
	for i := 0; i < 30; i++ {
		closes[i] = price
		price -= 0.8
	}
	for i := 30; i < 45; i++ {
		closes[i] = price
		price += 2.5
	}
	return mkSeries(closes, nil)
}

func TestDetectLatestShortSeriesIsEmpty(t *testing.T) {
	series := mkSeries(make([]float64, 29), nil)
	assert.Empty(t, DetectLatest(series, DefaultWindow))
	assert.Empty(t, DetectAll(series, DefaultWindow))
}

func TestDetectAllFindsGoldenCross(t *testing.T) {
	series := declineThenRally()
	signals := DetectAll(series, DefaultWindow)

	var cross *dto.TradingSignal
	for i := range signals {
		s := signals[i]
		if s.SignalType == dto.SignalBuy && len(s.IndicatorsUsed) == 2 && s.IndicatorsUsed[0] == "MA5" {
			cross = &signals[i]
			break
		}
	}
	require.NotNil(t, cross, "expected a golden-cross buy signal")
	assert.Contains(t, cross.SignalReason, "golden cross")
	assert.GreaterOrEqual(t, cross.SignalStrength, 0.5)
	assert.LessOrEqual(t, cross.SignalStrength, 1.0)
}

func TestDetectLatestFlatSeriesHold(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 50
	}
	signals := DetectLatest(mkSeries(closes, nil), DefaultWindow)

	require.Len(t, signals, 1)
	hold := signals[0]
	assert.Equal(t, dto.SignalHold, hold.SignalType)
	assert.GreaterOrEqual(t, hold.SignalStrength, 0.5)
	assert.LessOrEqual(t, hold.SignalStrength, 0.6)
	assert.Contains(t, hold.SignalReason, "holding")
}

func TestDetectLatestRSIOversold(t *testing.T) {
	closes := make([]float64, 40)
	price := 100.0
	for i := 0; i < 25; i++ {
		closes[i] = price
		price += 0.1
	}
	for i := 25; i < 40; i++ {
		closes[i] = price
		price -= 2.0
	}
	signals := DetectLatest(mkSeries(closes, nil), DefaultWindow)

	var rsiSignal *dto.TradingSignal
	for i := range signals {
		if len(signals[i].IndicatorsUsed) == 1 && signals[i].IndicatorsUsed[0] == "RSI" {
			rsiSignal = &signals[i]
		}
	}
	require.NotNil(t, rsiSignal, "expected an RSI signal")
	assert.Equal(t, dto.SignalBuy, rsiSignal.SignalType)
	assert.Contains(t, rsiSignal.SignalReason, "oversold")
	assert.GreaterOrEqual(t, rsiSignal.SignalStrength, 0.6)
}

func TestDetectAllMatchesTruncatedDetectLatest(t *testing.T) {
	series := declineThenRally()
	all := DetectAll(series, DefaultWindow)

	var concat []dto.TradingSignal
	for i := MinPoints; i < len(series); i++ {
		for _, s := range DetectLatest(series[:i+1], DefaultWindow) {
			if s.SignalType == dto.SignalHold {
				continue
			}
			concat = append(concat, s)
		}
	}

	assert.Equal(t, concat, all)
}

func TestRSIStrengthSteps(t *testing.T) {
	tests := []struct {
		name     string
		rsi      float64
		sigType  dto.SignalType
		expected float64
	}{
		{"deeply oversold", 15, dto.SignalBuy, 0.9},
		{"oversold", 22, dto.SignalBuy, 0.8},
		{"mildly oversold", 28, dto.SignalBuy, 0.6 + (30-28.0)/10*0.2},
		{"neutral buy", 50, dto.SignalBuy, 0.5},
		{"deeply overbought", 85, dto.SignalSell, 0.9},
		{"overbought", 78, dto.SignalSell, 0.8},
		{"mildly overbought", 72, dto.SignalSell, 0.6 + (72.0-70)/10*0.2},
		{"neutral sell", 50, dto.SignalSell, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, rsiStrength(tt.rsi, tt.sigType), 1e-9)
		})
	}
}

func TestMACrossStrengthVolumeConfirmation(t *testing.T) {
	closes := make([]float64, 40)
	volumes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100
		volumes[i] = 10000
	}
	volumes[39] = 15000 // 1.5x trailing average

	base := mkSeries(closes, nil)
	boosted := mkSeries(closes, volumes)

	plain := maCrossStrength(base, 39, DefaultWindow)
	confirmed := maCrossStrength(boosted, 39, DefaultWindow)
	assert.InDelta(t, 0.15, confirmed-plain, 1e-9)
}

func TestRSIDivergenceDetection(t *testing.T) {
	// Price falls over the window while RSI climbs: bullish divergence.
	closes := make([]float64, 40)
	price := 100.0
	for i := 0; i < 30; i++ {
		closes[i] = price
		price -= 1.5
	}
	// sharp dip then stabilizing closes lift RSI while price stays below
	// its level at the window start
	closes[30] = price - 8
	for i := 31; i < 40; i++ {
		closes[i] = closes[i-1] + 0.4
	}
	series := mkSeries(closes, nil)

	has, divType := rsiDivergence(series, 39, DefaultWindow)
	if has {
		assert.Equal(t, "bullish", divType)
	}
	// A monotone decline has no divergence either way.
	declining := make([]float64, 40)
	p := 100.0
	for i := range declining {
		declining[i] = p
		p -= 1
	}
	hasNone, _ := rsiDivergence(mkSeries(declining, nil), 39, DefaultWindow)
	assert.False(t, hasNone)
}
