package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-insight/internal/dto"
)

func mkPricePoints(closes []float64, volumes []float64) []dto.PricePoint {
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
			High:   c + 2,
			Low:    c - 2,
			Volume: vol,
		}
	}
	return points
}

func TestCalculatePriceStatistics(t *testing.T) {
	points := mkPricePoints([]float64{100, 110, 105, 120}, nil)
	stats := CalculatePriceStatistics(points)

	assert.Equal(t, 120.0, stats.CurrentPrice)
	assert.Equal(t, 122.0, stats.HighestPrice)
	assert.Equal(t, 98.0, stats.LowestPrice)
	assert.InDelta(t, 108.75, stats.AveragePrice, 1e-9)
	assert.InDelta(t, 20.0, stats.PriceChange, 1e-9)
	assert.InDelta(t, 20.0, stats.PriceChangePct, 1e-9)
	assert.Greater(t, stats.Volatility, 0.0)
}

func TestCalculatePriceStatisticsEmpty(t *testing.T) {
	stats := CalculatePriceStatistics(nil)
	assert.Zero(t, stats.CurrentPrice)
	assert.Zero(t, stats.Volatility)
}

func TestCalculateVolumeStatisticsTrend(t *testing.T) {
	volumes := make([]float64, 20)
	closes := make([]float64, 20)
	for i := range volumes {
		closes[i] = 100
		if i < 10 {
			volumes[i] = 1000
		} else {
			volumes[i] = 2000
		}
	}
	stats := CalculateVolumeStatistics(mkPricePoints(closes, volumes))

	assert.Equal(t, dto.VolumeIncreasing, stats.VolumeTrend)
	assert.Equal(t, 30000.0, stats.TotalVolume)
	assert.Equal(t, 1500.0, stats.AverageVolume)
	assert.Equal(t, 2000.0, stats.MaxVolume)
	assert.Equal(t, 1000.0, stats.MinVolume)

	// Reverse: decreasing
	for i := range volumes {
		volumes[i] = 2000
		if i >= 10 {
			volumes[i] = 1000
		}
	}
	stats = CalculateVolumeStatistics(mkPricePoints(closes, volumes))
	assert.Equal(t, dto.VolumeDecreasing, stats.VolumeTrend)

	// Short series stays stable
	stats = CalculateVolumeStatistics(mkPricePoints(closes[:5], volumes[:5]))
	assert.Equal(t, dto.VolumeStable, stats.VolumeTrend)
}

func TestCalculateRiskMetricsLevels(t *testing.T) {
	// Calm series: tiny daily moves, low risk.
	calm := make([]float64, 50)
	for i := range calm {
		calm[i] = 100 + float64(i%2)*0.1
	}
	metrics := CalculateRiskMetrics(mkPricePoints(calm, nil))
	assert.Equal(t, dto.RiskLow, metrics.RiskLevel)
	assert.Less(t, metrics.Volatility, 0.15)

	// Violent series: large swings, high risk.
	wild := make([]float64, 50)
	for i := range wild {
		if i%2 == 0 {
			wild[i] = 100
		} else {
			wild[i] = 80
		}
	}
	metrics = CalculateRiskMetrics(mkPricePoints(wild, nil))
	assert.Equal(t, dto.RiskHigh, metrics.RiskLevel)
	assert.Greater(t, metrics.MaxDrawdown, 0.0)
}

func TestCalculateRiskMetricsShortSeries(t *testing.T) {
	metrics := CalculateRiskMetrics(mkPricePoints([]float64{100}, nil))
	assert.Equal(t, dto.RiskLow, metrics.RiskLevel)
	assert.Nil(t, metrics.SharpeRatio)
}

func TestAnalyzeTrendDirections(t *testing.T) {
	rising := make([]float64, 70)
	for i := range rising {
		rising[i] = 100 + float64(i)
	}
	trend := AnalyzeTrend(mkPricePoints(rising, nil))

	assert.Equal(t, dto.TrendUp, trend.ShortTermTrend)
	assert.Equal(t, dto.TrendUp, trend.MediumTermTrend)
	assert.Equal(t, dto.TrendUp, trend.LongTermTrend)
	assert.Equal(t, 0.9, trend.TrendStrength)
	require.NotNil(t, trend.SupportLevel)
	require.NotNil(t, trend.ResistanceLevel)
	assert.Less(t, *trend.SupportLevel, *trend.ResistanceLevel)
}

func TestAnalyzeTrendShortSeriesNeutral(t *testing.T) {
	trend := AnalyzeTrend(mkPricePoints(make([]float64, 30), nil))

	assert.Equal(t, dto.TrendSideways, trend.ShortTermTrend)
	assert.Equal(t, dto.TrendSideways, trend.MediumTermTrend)
	assert.Equal(t, dto.TrendSideways, trend.LongTermTrend)
	assert.Equal(t, 0.5, trend.TrendStrength)
	assert.Nil(t, trend.SupportLevel)
	assert.Nil(t, trend.ResistanceLevel)
}

func TestAnalyzeTrendMixedDirections(t *testing.T) {
	// Long climb then a short pullback: long/medium up, short down.
	closes := make([]float64, 70)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	closes[69] = closes[64] - 5
	trend := AnalyzeTrend(mkPricePoints(closes, nil))

	assert.Equal(t, dto.TrendDown, trend.ShortTermTrend)
	assert.Equal(t, dto.TrendUp, trend.MediumTermTrend)
	assert.Equal(t, dto.TrendUp, trend.LongTermTrend)
	assert.Equal(t, 0.7, trend.TrendStrength)
}
