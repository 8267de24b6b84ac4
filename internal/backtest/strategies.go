package backtest

import (
	"fmt"

	"stock-insight/internal/dto"
)

// The rule strategies re-derive their trigger conditions directly from the
// indicator series, independent of the signal detector. Days with undefined
// required indicators are skipped entirely, including the hold-days check.

func (r *run) runMACross(req dto.BacktestRequest, series []dto.IndicatorPoint) {
	for i := 1; i < len(series); i++ {
		cur := series[i]
		prev := series[i-1]
		if cur.MA5 == nil || cur.MA30 == nil || prev.MA5 == nil || prev.MA30 == nil {
			continue
		}

		if *cur.MA5 > *cur.MA30 && *prev.MA5 <= *prev.MA30 && r.pos == nil {
			r.openPosition(req, cur.Date, cur.Close, "MA golden cross")
		} else if *cur.MA5 < *cur.MA30 && *prev.MA5 >= *prev.MA30 && r.pos != nil {
			r.closePosition(cur.Date, cur.Close, "MA death cross")
		}

		r.checkHoldDays(cur.Date, cur.Close, func(*position) string {
			return "MA golden cross (hold_days)"
		})
	}

	r.closeAtEnd(series, func(*position) string {
		return "MA golden cross (end)"
	})
}

func (r *run) runRSI(req dto.BacktestRequest, series []dto.IndicatorPoint) {
	const (
		oversold   = 30.0
		overbought = 70.0
	)

	var entryRSI float64
	for i := range series {
		cur := series[i]
		if cur.RSI == nil {
			continue
		}
		rsi := *cur.RSI

		if rsi < oversold && r.pos == nil {
			r.openPosition(req, cur.Date, cur.Close, "RSI oversold")
			if r.pos != nil {
				entryRSI = rsi
			}
		} else if rsi > overbought && r.pos != nil {
			r.closePosition(cur.Date, cur.Close, fmt.Sprintf("RSI overbought (%.1f)", rsi))
		}

		r.checkHoldDays(cur.Date, cur.Close, func(*position) string {
			return fmt.Sprintf("RSI oversold (hold_days, RSI: %.1f)", entryRSI)
		})
	}

	r.closeAtEnd(series, func(*position) string {
		last := series[len(series)-1]
		if last.RSI != nil {
			return fmt.Sprintf("RSI oversold (end, RSI: %.1f)", *last.RSI)
		}
		return "RSI oversold (end)"
	})
}

func (r *run) runMACD(req dto.BacktestRequest, series []dto.IndicatorPoint) {
	var entryMACD float64
	for i := 1; i < len(series); i++ {
		cur := series[i]
		prev := series[i-1]
		if cur.MACD == nil || cur.MACDSignal == nil || prev.MACD == nil || prev.MACDSignal == nil {
			continue
		}

		if *cur.MACD > *cur.MACDSignal && *prev.MACD <= *prev.MACDSignal && r.pos == nil {
			r.openPosition(req, cur.Date, cur.Close, "MACD golden cross")
			if r.pos != nil {
				entryMACD = *cur.MACD
			}
		} else if *cur.MACD < *cur.MACDSignal && *prev.MACD >= *prev.MACDSignal && r.pos != nil {
			r.closePosition(cur.Date, cur.Close, fmt.Sprintf("MACD death cross (MACD: %.4f)", *cur.MACD))
		}

		r.checkHoldDays(cur.Date, cur.Close, func(*position) string {
			return fmt.Sprintf("MACD golden cross (hold_days, MACD: %.4f)", entryMACD)
		})
	}

	r.closeAtEnd(series, func(*position) string {
		last := series[len(series)-1]
		if last.MACD != nil {
			return fmt.Sprintf("MACD golden cross (end, MACD: %.4f)", *last.MACD)
		}
		return "MACD golden cross (end)"
	})
}
