package backtest

import (
	"fmt"
	"time"

	"stock-insight/internal/dto"
	"stock-insight/pkg/utils"
)

// MinPoints is the minimum series length for a meaningful backtest run.
const MinPoints = 30

const lotSize = 100

// position is the transient state of the single open trade. Exactly one
// may exist at a time within a run.
type position struct {
	buyDate    time.Time
	buyPrice   float64
	shares     int
	entryLabel string
}

// run owns all mutable state for one backtest execution.
type run struct {
	capital  float64
	pos      *position
	trades   []dto.BacktestTrade
	holdDays *int
}

// Engine replays a strategy day-by-day against a capital ledger.
// Stateless; all per-run state lives in the run struct.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Run executes the requested strategy over the indicator series. Signals
// are only consumed by the signal_based strategy; the rule strategies
// re-derive their own conditions from the series. A series shorter than
// MinPoints produces an empty result, not an error.
func (e *Engine) Run(req dto.BacktestRequest, series []dto.IndicatorPoint, signals []dto.TradingSignal) *dto.BacktestResult {
	req.ApplyDefaults()

	start, end := requestRange(req, series)
	result := &dto.BacktestResult{
		StockCode:         req.StockCode,
		BacktestPeriod:    fmt.Sprintf("%s to %s", req.StartDate, req.EndDate),
		StrategyType:      req.StrategyType,
		BacktestTimestamp: time.Now(),
	}

	if len(series) < MinPoints {
		result.Metrics = emptyMetrics(req.InitialCapital)
		return result
	}

	r := &run{capital: req.InitialCapital, holdDays: req.HoldDays}

	switch req.StrategyType {
	case dto.StrategyMACross:
		r.runMACross(req, series)
	case dto.StrategyRSI:
		r.runRSI(req, series)
	case dto.StrategyMACD:
		r.runMACD(req, series)
	default:
		if len(signals) == 0 {
			result.Metrics = emptyMetrics(req.InitialCapital)
			return result
		}
		r.runSignalBased(req, series, signals)
	}

	result.Trades = r.trades
	result.EquityCurve = equityCurve(r.trades, req.InitialCapital, start, end)
	result.Metrics = calculateMetrics(r.trades, req.InitialCapital, result.EquityCurve, start, end)
	return result
}

// runSignalBased matches pre-detected signals to simulation days by exact
// date. Buys are ignored while a position is open, sells while none is.
func (r *run) runSignalBased(req dto.BacktestRequest, series []dto.IndicatorPoint, signals []dto.TradingSignal) {
	typeFilter := req.SignalTypes
	if len(typeFilter) == 0 {
		typeFilter = []string{string(dto.SignalBuy), string(dto.SignalSell)}
	}

	eligible := make(map[string][]dto.TradingSignal)
	for _, s := range signals {
		if !utils.ContainsString(typeFilter, string(s.SignalType)) {
			continue
		}
		if s.SignalStrength < req.MinSignalStrength {
			continue
		}
		eligible[s.SignalDate] = append(eligible[s.SignalDate], s)
	}

	for i := range series {
		day := series[i]
		date := day.Date
		price := day.Close

		daySignals := eligible[utils.FormatDate(date)]
		if len(daySignals) == 0 {
			continue
		}

		for _, s := range daySignals {
			switch s.SignalType {
			case dto.SignalBuy:
				if r.pos == nil {
					r.openPosition(req, date, price, s.SignalReason)
				}
			case dto.SignalSell:
				if r.pos != nil {
					r.closePosition(date, price, r.pos.entryLabel)
				}
			}
		}

		r.checkHoldDays(date, price, func(p *position) string {
			return p.entryLabel + " (hold_days)"
		})
	}

	r.closeAtEnd(series, func(p *position) string {
		return p.entryLabel + " (end)"
	})
}

// openPosition accepts a buy only when capital covers the rounded lot.
func (r *run) openPosition(req dto.BacktestRequest, date time.Time, price float64, label string) {
	shares := (req.SharesPerTrade / lotSize) * lotSize
	cost := price * float64(shares)
	if shares <= 0 || r.capital < cost {
		return
	}
	r.pos = &position{
		buyDate:    date,
		buyPrice:   price,
		shares:     shares,
		entryLabel: label,
	}
	r.capital -= cost
}

// closePosition credits the proceeds and appends the trade record.
func (r *run) closePosition(sellDate time.Time, sellPrice float64, label string) {
	p := r.pos
	proceeds := sellPrice * float64(p.shares)
	profit := (sellPrice - p.buyPrice) * float64(p.shares)
	r.capital += proceeds

	returnRate := 0.0
	if p.buyPrice > 0 {
		returnRate = (sellPrice - p.buyPrice) / p.buyPrice
	}

	r.trades = append(r.trades, dto.BacktestTrade{
		TradeID:    len(r.trades) + 1,
		BuyDate:    utils.FormatDate(p.buyDate),
		BuyPrice:   p.buyPrice,
		SellDate:   utils.FormatDate(sellDate),
		SellPrice:  sellPrice,
		Shares:     p.shares,
		Profit:     profit,
		ReturnRate: returnRate * 100,
		SignalType: label,
		HoldDays:   utils.DaysBetween(p.buyDate, sellDate),
	})
	r.pos = nil
}

// checkHoldDays force-closes the open position once the configured maximum
// hold duration has elapsed.
func (r *run) checkHoldDays(date time.Time, price float64, label func(*position) string) {
	if r.pos == nil || r.holdDays == nil {
		return
	}
	if utils.DaysBetween(r.pos.buyDate, date) >= *r.holdDays {
		r.closePosition(date, price, label(r.pos))
	}
}

// closeAtEnd force-closes any still-open position at the final price.
func (r *run) closeAtEnd(series []dto.IndicatorPoint, label func(*position) string) {
	if r.pos == nil || len(series) == 0 {
		return
	}
	last := series[len(series)-1]
	r.closePosition(last.Date, last.Close, label(r.pos))
}

// requestRange resolves the simulation date range, falling back to the
// series bounds when the request dates do not parse.
func requestRange(req dto.BacktestRequest, series []dto.IndicatorPoint) (time.Time, time.Time) {
	start, errStart := utils.ParseDate(req.StartDate)
	end, errEnd := utils.ParseDate(req.EndDate)
	if (errStart != nil || errEnd != nil) && len(series) > 0 {
		return series[0].Date, series[len(series)-1].Date
	}
	return start, end
}
