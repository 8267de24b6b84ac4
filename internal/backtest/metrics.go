package backtest

import (
	"math"
	"time"

	"stock-insight/internal/dto"
	"stock-insight/pkg/utils"
)

const (
	tradingDaysPerYear = 252.0
	riskFreeRate       = 0.03
)

func emptyMetrics(initialCapital float64) dto.BacktestMetrics {
	return dto.BacktestMetrics{
		InitialCapital: initialCapital,
		FinalCapital:   initialCapital,
	}
}

// equityCurve replays the trades' entry and exit cash flows over every
// calendar day in [start, end]. Capital only changes on trade dates.
func equityCurve(trades []dto.BacktestTrade, initialCapital float64, start, end time.Time) []dto.EquityCurvePoint {
	if end.Before(start) {
		return nil
	}

	type dayFlow struct {
		buys  []dto.BacktestTrade
		sells []dto.BacktestTrade
	}
	flows := make(map[string]*dayFlow)
	flowFor := func(date string) *dayFlow {
		f, ok := flows[date]
		if !ok {
			f = &dayFlow{}
			flows[date] = f
		}
		return f
	}
	for _, t := range trades {
		flowFor(t.BuyDate).buys = append(flowFor(t.BuyDate).buys, t)
		flowFor(t.SellDate).sells = append(flowFor(t.SellDate).sells, t)
	}

	var curve []dto.EquityCurvePoint
	capital := initialCapital
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := utils.FormatDate(d)
		if f, ok := flows[date]; ok {
			for _, t := range f.buys {
				capital -= t.BuyPrice * float64(t.Shares)
			}
			for _, t := range f.sells {
				capital += t.SellPrice * float64(t.Shares)
			}
		}
		curve = append(curve, dto.EquityCurvePoint{Date: date, Capital: capital})
	}
	return curve
}

func maxDrawdown(curve []dto.EquityCurvePoint) float64 {
	if len(curve) < 2 {
		return 0
	}
	peak := curve[0].Capital
	maxDD := 0.0
	for _, p := range curve {
		if p.Capital > peak {
			peak = p.Capital
		}
		if peak > 0 {
			dd := (peak - p.Capital) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD * 100
}

// sharpeRatio annualizes per-trade percentage returns by the average hold
// duration. Undefined with fewer than two trades or zero variance.
func sharpeRatio(trades []dto.BacktestTrade) *float64 {
	if len(trades) < 2 {
		return nil
	}

	var sum, holdSum float64
	for _, t := range trades {
		sum += t.ReturnRate
		holdSum += float64(t.HoldDays)
	}
	mean := sum / float64(len(trades))
	avgHold := holdSum / float64(len(trades))
	if avgHold == 0 {
		return nil
	}

	var variance float64
	for _, t := range trades {
		d := t.ReturnRate - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(trades)))
	if std == 0 {
		return nil
	}

	annualizedReturn := mean * (tradingDaysPerYear / avgHold)
	annualizedStd := std * math.Sqrt(tradingDaysPerYear/avgHold)
	if annualizedStd == 0 {
		return nil
	}

	sharpe := (annualizedReturn - riskFreeRate) / annualizedStd
	return utils.ToPointer(sharpe)
}

func calculateMetrics(trades []dto.BacktestTrade, initialCapital float64, curve []dto.EquityCurvePoint, start, end time.Time) dto.BacktestMetrics {
	if len(trades) == 0 {
		return emptyMetrics(initialCapital)
	}

	var totalProfit float64
	for _, t := range trades {
		totalProfit += t.Profit
	}
	finalCapital := initialCapital + totalProfit
	totalReturn := finalCapital - initialCapital

	totalReturnRate := 0.0
	if initialCapital > 0 {
		totalReturnRate = totalReturn / initialCapital * 100
	}

	var annualized *float64
	days := utils.DaysBetween(start, end)
	years := 1.0
	if days > 0 {
		years = float64(days) / 365.25
	}
	if initialCapital > 0 && finalCapital > 0 {
		annualized = utils.ToPointer((math.Pow(finalCapital/initialCapital, 1/years) - 1) * 100)
	}

	successful := 0
	profits := make([]float64, len(trades))
	for i, t := range trades {
		profits[i] = t.Profit
		if t.Profit > 0 {
			successful++
		}
	}

	var profitSum, maxProfit, maxLoss float64
	maxProfit = profits[0]
	maxLoss = profits[0]
	for _, p := range profits {
		profitSum += p
		if p > maxProfit {
			maxProfit = p
		}
		if p < maxLoss {
			maxLoss = p
		}
	}

	var grossProfit, grossLoss float64
	for _, p := range profits {
		if p > 0 {
			grossProfit += p
		} else if p < 0 {
			grossLoss += -p
		}
	}
	var profitFactor *float64
	if grossLoss > 0 {
		profitFactor = utils.ToPointer(grossProfit / grossLoss)
	}

	return dto.BacktestMetrics{
		InitialCapital:       initialCapital,
		FinalCapital:         finalCapital,
		TotalReturn:          totalReturn,
		TotalReturnRate:      totalReturnRate,
		AnnualizedReturnRate: annualized,
		TotalTrades:          len(trades),
		SuccessfulTrades:     successful,
		FailedTrades:         len(trades) - successful,
		WinRate:              float64(successful) / float64(len(trades)),
		AverageProfit:        profitSum / float64(len(trades)),
		MaxProfit:            maxProfit,
		MaxLoss:              maxLoss,
		MaxDrawdown:          maxDrawdown(curve),
		SharpeRatio:          sharpeRatio(trades),
		ProfitFactor:         profitFactor,
	}
}
