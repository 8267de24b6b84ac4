package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stock-insight/internal/dto"
	"stock-insight/pkg/utils"
)

func baseAnalysis() *dto.AnalysisResult {
	return &dto.AnalysisResult{
		StockCode: "000001",
		PriceStats: dto.PriceStatistics{
			CurrentPrice:   100,
			PriceChangePct: 0,
		},
		TrendAnalysis: dto.TrendAnalysis{
			ShortTermTrend: dto.TrendSideways,
			TrendStrength:  0.5,
		},
		RiskMetrics: dto.RiskMetrics{RiskLevel: dto.RiskHigh},
	}
}

func TestRecommendationScoreNeutralBaseline(t *testing.T) {
	// Flat price, neutral trend, high risk, no signals, no RSI:
	// 0.5 + 0 + 0 + 0 - 0.05 = 0.45
	assert.InDelta(t, 0.45, recommendationScore(baseAnalysis()), 1e-9)
}

func TestRecommendationScorePriceBands(t *testing.T) {
	cases := []struct {
		changePct float64
		delta     float64
	}{
		{12, 0.15},
		{7, 0.1},
		{2, 0.05},
		{-12, -0.1},
		{-7, -0.05},
		{-2, 0},
	}
	for _, tc := range cases {
		analysis := baseAnalysis()
		analysis.PriceStats.PriceChangePct = tc.changePct
		assert.InDelta(t, 0.45+tc.delta, recommendationScore(analysis), 1e-9,
			"change pct %.1f", tc.changePct)
	}
}

func TestRecommendationScoreSignals(t *testing.T) {
	analysis := baseAnalysis()
	analysis.TradingSignals = []dto.TradingSignal{
		{SignalType: dto.SignalBuy, SignalStrength: 0.8},
		{SignalType: dto.SignalBuy, SignalStrength: 0.6},
		{SignalType: dto.SignalSell, SignalStrength: 0.5},
	}
	// avg buy 0.7 -> +0.105; avg sell 0.5 -> -0.05
	assert.InDelta(t, 0.45+0.105-0.05, recommendationScore(analysis), 1e-9)
}

func TestRecommendationScoreTrendAndRisk(t *testing.T) {
	analysis := baseAnalysis()
	analysis.TrendAnalysis = dto.TrendAnalysis{
		ShortTermTrend: dto.TrendUp,
		TrendStrength:  0.9,
	}
	analysis.RiskMetrics.RiskLevel = dto.RiskLow
	// 0.5 + 0.1 (strong up) + 0.04 (strength bonus) + 0.1 (low risk)
	assert.InDelta(t, 0.74, recommendationScore(analysis), 1e-9)

	analysis.TrendAnalysis.ShortTermTrend = dto.TrendDown
	// 0.5 - 0.05 + 0.04 + 0.1
	assert.InDelta(t, 0.59, recommendationScore(analysis), 1e-9)
}

func TestRecommendationScoreRSIBands(t *testing.T) {
	analysis := baseAnalysis()
	analysis.TechnicalIndicators.RSI = utils.ToPointer(50.0)
	assert.InDelta(t, 0.50, recommendationScore(analysis), 1e-9)

	analysis.TechnicalIndicators.RSI = utils.ToPointer(25.0)
	assert.InDelta(t, 0.48, recommendationScore(analysis), 1e-9)

	analysis.TechnicalIndicators.RSI = utils.ToPointer(80.0)
	assert.InDelta(t, 0.45, recommendationScore(analysis), 1e-9)
}

func TestRecommendationScoreClamped(t *testing.T) {
	analysis := baseAnalysis()
	analysis.PriceStats.PriceChangePct = 50
	analysis.TradingSignals = []dto.TradingSignal{{SignalType: dto.SignalBuy, SignalStrength: 1.0}}
	analysis.TrendAnalysis = dto.TrendAnalysis{ShortTermTrend: dto.TrendUp, TrendStrength: 0.9}
	analysis.RiskMetrics.RiskLevel = dto.RiskLow
	analysis.TechnicalIndicators.RSI = utils.ToPointer(50.0)

	score := recommendationScore(analysis)
	assert.LessOrEqual(t, score, 1.0)
	assert.GreaterOrEqual(t, score, 0.0)
}

func TestKeyHighlights(t *testing.T) {
	analysis := baseAnalysis()
	analysis.PriceStats.PriceChangePct = 8
	analysis.TrendAnalysis.TrendStrength = 0.9
	analysis.RiskMetrics.RiskLevel = dto.RiskLow
	analysis.TradingSignals = []dto.TradingSignal{
		{SignalType: dto.SignalBuy, SignalStrength: 0.7},
		{SignalType: dto.SignalBuy, SignalStrength: 0.8},
	}

	highlights := keyHighlights(analysis)
	assert.Len(t, highlights, 4)
	assert.Contains(t, highlights, "low risk")
	assert.Contains(t, highlights, "2 buy signal(s)")

	assert.Empty(t, keyHighlights(baseAnalysis()))
}
