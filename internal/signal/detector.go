package signal

import (
	"fmt"
	"math"

	"stock-insight/internal/dto"
	"stock-insight/pkg/utils"
)

const (
	// MinPoints is the minimum series length before any signal fires.
	MinPoints = 30
	// DefaultWindow is the lookback used for volume confirmation, trend
	// magnitude and divergence checks.
	DefaultWindow = 5
)

// DetectLatest evaluates the rule set against the final day of the series.
// When no rule fires it synthesizes a single hold signal. Series shorter
// than MinPoints yield no signals at all.
func DetectLatest(series []dto.IndicatorPoint, window int) []dto.TradingSignal {
	if len(series) < MinPoints {
		return nil
	}
	return detectDay(series, len(series)-1, window, true)
}

// DetectAll replays DetectLatest over every day from index MinPoints
// onward, accumulating the fired signals in date order. Hold fallbacks are
// not emitted in scan mode.
func DetectAll(series []dto.IndicatorPoint, window int) []dto.TradingSignal {
	if len(series) < MinPoints {
		return nil
	}
	var all []dto.TradingSignal
	for i := MinPoints; i < len(series); i++ {
		all = append(all, detectDay(series, i, window, false)...)
	}
	return all
}

// detectDay runs every rule against day i using only data up to and
// including i.
func detectDay(series []dto.IndicatorPoint, i, window int, includeHold bool) []dto.TradingSignal {
	latest := series[i]
	prev := latest
	if i > 0 {
		prev = series[i-1]
	}
	date := utils.FormatDate(latest.Date)

	var signals []dto.TradingSignal

	// MA5/MA30 cross
	if latest.MA5 != nil && latest.MA30 != nil && prev.MA5 != nil && prev.MA30 != nil {
		goldenCross := *latest.MA5 > *latest.MA30 && *prev.MA5 <= *prev.MA30
		deathCross := *latest.MA5 < *latest.MA30 && *prev.MA5 >= *prev.MA30

		if goldenCross || deathCross {
			strength := (0.6 + maCrossStrength(series, i, window)) / 2

			reason := "MA5 crossed above MA30 (golden cross)"
			sigType := dto.SignalBuy
			if deathCross {
				reason = "MA5 crossed below MA30 (death cross)"
				sigType = dto.SignalSell
			}
			if avg, ok := trailingVolumeAverage(series, i, window); ok && latest.Volume > avg*1.2 {
				reason += ", volume surge"
			}

			signals = append(signals, dto.TradingSignal{
				SignalType:     sigType,
				SignalStrength: strength,
				SignalReason:   reason,
				SignalDate:     date,
				IndicatorsUsed: []string{"MA5", "MA30"},
			})
		}
	}

	// RSI oversold/overbought with divergence boost
	if latest.RSI != nil {
		rsi := *latest.RSI
		hasDivergence, divType := rsiDivergence(series, i, window)

		if rsi < 30 {
			strength := rsiStrength(rsi, dto.SignalBuy)
			if hasDivergence && divType == "bullish" {
				strength = math.Min(strength+0.15, 1.0)
			}
			reason := fmt.Sprintf("RSI oversold (%.1f)", rsi)
			if hasDivergence {
				reason += ", bullish divergence"
			}
			signals = append(signals, dto.TradingSignal{
				SignalType:     dto.SignalBuy,
				SignalStrength: strength,
				SignalReason:   reason,
				SignalDate:     date,
				IndicatorsUsed: []string{"RSI"},
			})
		} else if rsi > 70 {
			strength := rsiStrength(rsi, dto.SignalSell)
			if hasDivergence && divType == "bearish" {
				strength = math.Min(strength+0.15, 1.0)
			}
			reason := fmt.Sprintf("RSI overbought (%.1f)", rsi)
			if hasDivergence {
				reason += ", bearish divergence"
			}
			signals = append(signals, dto.TradingSignal{
				SignalType:     dto.SignalSell,
				SignalStrength: strength,
				SignalReason:   reason,
				SignalDate:     date,
				IndicatorsUsed: []string{"RSI"},
			})
		}
	}

	// MACD/signal-line cross with histogram confirmation
	if latest.MACD != nil && latest.MACDSignal != nil && prev.MACD != nil && prev.MACDSignal != nil {
		crossUp := *latest.MACD > *latest.MACDSignal && *prev.MACD <= *prev.MACDSignal
		crossDown := *latest.MACD < *latest.MACDSignal && *prev.MACD >= *prev.MACDSignal

		if crossUp {
			strength := 0.6
			reason := "MACD crossed above signal line"
			if latest.MACDHistogram != nil {
				if *latest.MACDHistogram > 0 {
					strength += 0.1
					reason += ", histogram turned positive"
				}
				if i > 0 && prev.MACDHistogram != nil && *latest.MACDHistogram > *prev.MACDHistogram {
					strength += 0.1
				}
			}
			signals = append(signals, dto.TradingSignal{
				SignalType:     dto.SignalBuy,
				SignalStrength: math.Min(strength, 1.0),
				SignalReason:   reason,
				SignalDate:     date,
				IndicatorsUsed: []string{"MACD"},
			})
		} else if crossDown {
			strength := 0.6
			reason := "MACD crossed below signal line"
			if latest.MACDHistogram != nil {
				if *latest.MACDHistogram < 0 {
					strength += 0.1
					reason += ", histogram turned negative"
				}
				if i > 0 && prev.MACDHistogram != nil && *latest.MACDHistogram < *prev.MACDHistogram {
					strength += 0.1
				}
			}
			signals = append(signals, dto.TradingSignal{
				SignalType:     dto.SignalSell,
				SignalStrength: math.Min(strength, 1.0),
				SignalReason:   reason,
				SignalDate:     date,
				IndicatorsUsed: []string{"MACD"},
			})
		}
	}

	if includeHold && len(signals) == 0 {
		signals = append(signals, holdSignal(series, i, date))
	}

	return signals
}

// maCrossStrength scores cross quality from volume confirmation, recent
// price-trend magnitude and MA separation. Base 0.5, capped at 1.0.
func maCrossStrength(series []dto.IndicatorPoint, i, window int) float64 {
	if i+1 < window+1 {
		return 0.5
	}
	latest := series[i]
	strength := 0.5

	if avg, ok := trailingVolumeAverage(series, i, window); ok {
		switch {
		case latest.Volume > avg*1.2:
			strength += 0.15
		case latest.Volume > avg*1.1:
			strength += 0.1
		}
	}

	if window >= 3 {
		base := series[i-window].Close
		if base != 0 {
			priceTrend := (latest.Close - base) / base
			if math.Abs(priceTrend) > 0.02 {
				strength += 0.1
			}
		}
	}

	if latest.MA5 != nil && latest.MA30 != nil && *latest.MA30 != 0 {
		separation := math.Abs(*latest.MA5-*latest.MA30) / *latest.MA30
		switch {
		case separation > 0.05:
			strength += 0.1
		case separation > 0.03:
			strength += 0.05
		}
	}

	return math.Min(strength, 1.0)
}

// trailingVolumeAverage averages volume over the window days before i,
// excluding day i itself.
func trailingVolumeAverage(series []dto.IndicatorPoint, i, window int) (float64, bool) {
	start := i - window
	if start < 0 {
		start = 0
	}
	if start >= i {
		return 0, false
	}
	var sum float64
	for j := start; j < i; j++ {
		sum += series[j].Volume
	}
	return sum / float64(i-start), true
}

// rsiDivergence reports whether price and RSI moved in opposite directions
// over the lookback window ending at i.
func rsiDivergence(series []dto.IndicatorPoint, i, window int) (bool, string) {
	if i+1 < window+1 {
		return false, ""
	}
	first := series[i-window]
	latest := series[i]
	if first.RSI == nil || latest.RSI == nil || first.Close == 0 {
		return false, ""
	}

	priceChange := (latest.Close - first.Close) / first.Close
	rsiChange := *latest.RSI - *first.RSI

	// Bullish divergence: price down but RSI up
	if priceChange < -0.02 && rsiChange > 5 {
		return true, "bullish"
	}
	// Bearish divergence: price up but RSI down
	if priceChange > 0.02 && rsiChange < -5 {
		return true, "bearish"
	}
	return false, ""
}

// holdSignal rates market indecision when no rule fired. Later checks
// overwrite the strength of earlier ones.
func holdSignal(series []dto.IndicatorPoint, i int, date string) dto.TradingSignal {
	latest := series[i]
	strength := 0.5
	var parts []string

	if latest.MA5 != nil && latest.MA30 != nil && *latest.MA30 != 0 {
		separation := math.Abs(*latest.MA5-*latest.MA30) / *latest.MA30
		if separation < 0.02 {
			strength = 0.6
			parts = append(parts, "MA lines converging, direction unclear")
		} else if *latest.MA5 > *latest.MA30 {
			parts = append(parts, "price above moving averages")
		} else {
			parts = append(parts, "price below moving averages")
		}
	}

	if latest.RSI != nil && *latest.RSI >= 30 && *latest.RSI <= 70 {
		strength = 0.55
		parts = append(parts, "RSI in neutral range")
	}

	if i+1 >= 20 {
		shortUp := latest.Close > series[i-4].Close
		mediumUp := latest.Close > series[i-19].Close
		if shortUp != mediumUp {
			strength = 0.6
			parts = append(parts, "short-term and medium-term trends disagree")
		}
	}

	reason := "No clear trading signal, suggest holding"
	if len(parts) > 0 {
		reason = fmt.Sprintf("No clear trading signal, suggest holding (%s)", joinParts(parts))
	}

	return dto.TradingSignal{
		SignalType:     dto.SignalHold,
		SignalStrength: strength,
		SignalReason:   reason,
		SignalDate:     date,
		IndicatorsUsed: []string{"composite"},
	}
}

func joinParts(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}

// rsiStrength steps signal strength by how deep the RSI breached its
// threshold.
func rsiStrength(rsi float64, sigType dto.SignalType) float64 {
	switch sigType {
	case dto.SignalBuy:
		switch {
		case rsi < 20:
			return 0.9
		case rsi < 25:
			return 0.8
		case rsi < 30:
			return 0.6 + (30-rsi)/10*0.2
		}
	case dto.SignalSell:
		switch {
		case rsi > 80:
			return 0.9
		case rsi > 75:
			return 0.8
		case rsi > 70:
			return 0.6 + (rsi-70)/10*0.2
		}
	}
	return 0.5
}
