package service

import (
	"math"

	"stock-insight/internal/dto"
	"stock-insight/pkg/utils"
)

// Pure statistic functions over the raw OHLCV series. Each returns neutral
// defaults instead of an error when the series is too short.

func CalculatePriceStatistics(points []dto.PricePoint) dto.PriceStatistics {
	if len(points) == 0 {
		return dto.PriceStatistics{}
	}

	current := points[len(points)-1].Close
	start := points[0].Close
	highest := points[0].High
	lowest := points[0].Low
	var closeSum float64
	for _, p := range points {
		if p.High > highest {
			highest = p.High
		}
		if p.Low < lowest {
			lowest = p.Low
		}
		closeSum += p.Close
	}

	change := current - start
	changePct := 0.0
	if start > 0 {
		changePct = change / start * 100
	}

	return dto.PriceStatistics{
		CurrentPrice:   current,
		HighestPrice:   highest,
		LowestPrice:    lowest,
		AveragePrice:   closeSum / float64(len(points)),
		PriceChange:    change,
		PriceChangePct: changePct,
		Volatility:     sampleStd(closes(points)),
	}
}

func CalculateVolumeStatistics(points []dto.PricePoint) dto.VolumeStatistics {
	if len(points) == 0 {
		return dto.VolumeStatistics{VolumeTrend: dto.VolumeStable}
	}

	var total float64
	maxVol := points[0].Volume
	minVol := points[0].Volume
	for _, p := range points {
		total += p.Volume
		if p.Volume > maxVol {
			maxVol = p.Volume
		}
		if p.Volume < minVol {
			minVol = p.Volume
		}
	}

	trend := dto.VolumeStable
	if len(points) >= 10 {
		var earlier, recent float64
		for i := 0; i < 10; i++ {
			earlier += points[i].Volume
			recent += points[len(points)-10+i].Volume
		}
		earlier /= 10
		recent /= 10
		switch {
		case recent > earlier*1.1:
			trend = dto.VolumeIncreasing
		case recent < earlier*0.9:
			trend = dto.VolumeDecreasing
		}
	}

	return dto.VolumeStatistics{
		TotalVolume:   total,
		AverageVolume: total / float64(len(points)),
		MaxVolume:     maxVol,
		MinVolume:     minVol,
		VolumeTrend:   trend,
	}
}

// CalculateRiskMetrics derives annualized volatility, max drawdown on
// cumulative daily returns and a simplified Sharpe ratio (risk-free rate
// zero).
func CalculateRiskMetrics(points []dto.PricePoint) dto.RiskMetrics {
	if len(points) < 2 {
		return dto.RiskMetrics{RiskLevel: dto.RiskLow}
	}

	returns := dailyReturns(points)
	std := sampleStd(returns)
	volatility := std * math.Sqrt(252)

	cumulative := 1.0
	peak := 0.0
	maxDD := 0.0
	for i, r := range returns {
		cumulative *= 1 + r
		if i == 0 || cumulative > peak {
			peak = cumulative
		}
		if peak != 0 {
			dd := (peak - cumulative) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	maxDrawdown := math.Abs(maxDD) * 100

	var sharpe *float64
	if len(returns) > 0 && std > 0 {
		sharpe = utils.ToPointer(mean(returns) * 252 / (std * math.Sqrt(252)))
	}

	level := dto.RiskLow
	switch {
	case volatility > 0.3 || maxDrawdown > 30:
		level = dto.RiskHigh
	case volatility > 0.15 || maxDrawdown > 15:
		level = dto.RiskMedium
	}

	return dto.RiskMetrics{
		Volatility:  volatility,
		MaxDrawdown: maxDrawdown,
		SharpeRatio: sharpe,
		RiskLevel:   level,
	}
}

// AnalyzeTrend classifies short/medium/long direction and scores their
// agreement. Fewer than 60 points yields an all-sideways neutral result.
func AnalyzeTrend(points []dto.PricePoint) dto.TrendAnalysis {
	if len(points) < 60 {
		return dto.TrendAnalysis{
			ShortTermTrend:  dto.TrendSideways,
			MediumTermTrend: dto.TrendSideways,
			LongTermTrend:   dto.TrendSideways,
			TrendStrength:   0.5,
		}
	}

	n := len(points)
	latest := points[n-1].Close
	direction := func(lookback int) dto.TrendDirection {
		if latest > points[n-lookback].Close {
			return dto.TrendUp
		}
		return dto.TrendDown
	}

	short := direction(5)
	medium := direction(20)
	long := direction(60)

	ups := 0
	downs := 0
	for _, t := range []dto.TrendDirection{short, medium, long} {
		if t == dto.TrendUp {
			ups++
		} else {
			downs++
		}
	}
	strength := 0.5
	switch {
	case ups == 3 || downs == 3:
		strength = 0.9
	case ups == 2 || downs == 2:
		strength = 0.7
	}

	support := points[n-20].Low
	resistance := points[n-20].High
	for _, p := range points[n-20:] {
		if p.Low < support {
			support = p.Low
		}
		if p.High > resistance {
			resistance = p.High
		}
	}

	return dto.TrendAnalysis{
		ShortTermTrend:  short,
		MediumTermTrend: medium,
		LongTermTrend:   long,
		TrendStrength:   strength,
		SupportLevel:    utils.ToPointer(support),
		ResistanceLevel: utils.ToPointer(resistance),
	}
}

// LatestIndicators snapshots the indicator values of the final day.
func LatestIndicators(series []dto.IndicatorPoint) dto.TechnicalIndicators {
	if len(series) == 0 {
		return dto.TechnicalIndicators{}
	}
	last := series[len(series)-1]
	return dto.TechnicalIndicators{
		MA5:             last.MA5,
		MA10:            last.MA10,
		MA20:            last.MA20,
		MA30:            last.MA30,
		MA60:            last.MA60,
		RSI:             last.RSI,
		MACD:            last.MACD,
		MACDSignal:      last.MACDSignal,
		MACDHistogram:   last.MACDHistogram,
		BollingerUpper:  last.BollingerUpper,
		BollingerMiddle: last.BollingerMiddle,
		BollingerLower:  last.BollingerLower,
	}
}

func closes(points []dto.PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Close
	}
	return out
}

func dailyReturns(points []dto.PricePoint) []float64 {
	out := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		prev := points[i-1].Close
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (points[i].Close-prev)/prev)
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStd is the standard deviation with n-1 denominator.
func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var variance float64
	for _, v := range values {
		d := v - m
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)-1))
}
