package indicator

import (
	"math"

	"stock-insight/internal/dto"
	"stock-insight/pkg/utils"
)

const (
	rsiPeriod       = 14
	macdFastSpan    = 12
	macdSlowSpan    = 26
	macdSignalSpan  = 9
	bollingerPeriod = 20
	bollingerWidth  = 2.0
)

var maWindows = []int{5, 10, 20, 30, 60}

// Compute derives the full indicator set from an ascending OHLCV series.
// The result has the same length as the input; derived fields stay nil until
// enough trailing history exists. Pure function of the series, no look-ahead.
func Compute(points []dto.PricePoint) []dto.IndicatorPoint {
	n := len(points)
	out := make([]dto.IndicatorPoint, n)
	for i := range points {
		out[i].PricePoint = points[i]
	}
	if n == 0 {
		return out
	}

	closes := make([]float64, n)
	for i, p := range points {
		closes[i] = p.Close
	}

	for _, w := range maWindows {
		ma := rollingMean(closes, w)
		for i := range out {
			switch w {
			case 5:
				out[i].MA5 = ma[i]
			case 10:
				out[i].MA10 = ma[i]
			case 20:
				out[i].MA20 = ma[i]
			case 30:
				out[i].MA30 = ma[i]
			case 60:
				out[i].MA60 = ma[i]
			}
		}
	}

	rsi := computeRSI(closes)
	macd, signal, histogram := computeMACD(closes)
	middle, upper, lower := computeBollinger(closes)

	for i := range out {
		out[i].RSI = rsi[i]
		out[i].MACD = utils.ToPointer(macd[i])
		out[i].MACDSignal = utils.ToPointer(signal[i])
		out[i].MACDHistogram = utils.ToPointer(histogram[i])
		out[i].BollingerMiddle = middle[i]
		out[i].BollingerUpper = upper[i]
		out[i].BollingerLower = lower[i]
	}

	return out
}

// rollingMean returns the trailing mean per index, nil for the first
// window-1 positions.
func rollingMean(values []float64, window int) []*float64 {
	out := make([]*float64, len(values))
	if window <= 0 {
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = utils.ToPointer(sum / float64(window))
		}
	}
	return out
}

// computeRSI uses a simple rolling mean of gains and losses over the period.
// The first defined value appears at index rsiPeriod since the first delta
// only exists at index 1. A window with zero average loss yields 100 when
// gains exist and stays undefined for a perfectly flat window.
func computeRSI(closes []float64) []*float64 {
	n := len(closes)
	out := make([]*float64, n)
	if n < rsiPeriod+1 {
		return out
	}

	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	var gainSum, lossSum float64
	for i := 1; i < n; i++ {
		gainSum += gains[i]
		lossSum += losses[i]
		if i > rsiPeriod {
			gainSum -= gains[i-rsiPeriod]
			lossSum -= losses[i-rsiPeriod]
		}
		if i < rsiPeriod {
			continue
		}

		avgGain := gainSum / float64(rsiPeriod)
		avgLoss := lossSum / float64(rsiPeriod)
		if avgLoss == 0 {
			if avgGain > 0 {
				out[i] = utils.ToPointer(100.0)
			}
			continue
		}
		rs := avgGain / avgLoss
		out[i] = utils.ToPointer(100 - 100/(1+rs))
	}
	return out
}

// computeMACD uses recursive exponential smoothing seeded with the first
// observation, so every index is defined.
func computeMACD(closes []float64) (macd, signal, histogram []float64) {
	n := len(closes)
	macd = make([]float64, n)
	signal = make([]float64, n)
	histogram = make([]float64, n)

	fast := ema(closes, macdFastSpan)
	slow := ema(closes, macdSlowSpan)
	for i := 0; i < n; i++ {
		macd[i] = fast[i] - slow[i]
	}
	signal = ema(macd, macdSignalSpan)
	for i := 0; i < n; i++ {
		histogram[i] = macd[i] - signal[i]
	}
	return macd, signal, histogram
}

func ema(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

func computeBollinger(closes []float64) (middle, upper, lower []*float64) {
	n := len(closes)
	middle = rollingMean(closes, bollingerPeriod)
	upper = make([]*float64, n)
	lower = make([]*float64, n)

	for i := bollingerPeriod - 1; i < n; i++ {
		mean := *middle[i]
		var variance float64
		for j := i - bollingerPeriod + 1; j <= i; j++ {
			d := closes[j] - mean
			variance += d * d
		}
		std := math.Sqrt(variance / float64(bollingerPeriod))
		upper[i] = utils.ToPointer(mean + bollingerWidth*std)
		lower[i] = utils.ToPointer(mean - bollingerWidth*std)
	}
	return middle, upper, lower
}
