package dto

import "time"

type BacktestRequest struct {
	StockCode         string       `json:"stock_code" validate:"required"`
	StartDate         string       `json:"start_date" validate:"required"`
	EndDate           string       `json:"end_date" validate:"required"`
	InitialCapital    float64      `json:"initial_capital" validate:"omitempty,gt=0"`
	StrategyType      StrategyType `json:"strategy_type" validate:"omitempty,oneof=signal_based ma_cross rsi macd"`
	SharesPerTrade    int          `json:"shares_per_trade" validate:"omitempty,min=100"`
	HoldDays          *int         `json:"hold_days" validate:"omitempty,gt=0"`
	MinSignalStrength float64      `json:"min_signal_strength" validate:"omitempty,min=0,max=1"`
	SignalTypes       []string     `json:"signal_types" validate:"omitempty,dive,oneof=buy sell hold"`
}

// ApplyDefaults fills unset request fields the way the public API documents
// them.
func (r *BacktestRequest) ApplyDefaults() {
	if r.InitialCapital == 0 {
		r.InitialCapital = 100000
	}
	if r.StrategyType == "" {
		r.StrategyType = StrategySignalBased
	}
	if r.SharesPerTrade == 0 {
		r.SharesPerTrade = 100
	}
	if r.MinSignalStrength == 0 {
		r.MinSignalStrength = 0.5
	}
}

type BacktestTrade struct {
	TradeID    int     `json:"trade_id"`
	BuyDate    string  `json:"buy_date"`
	BuyPrice   float64 `json:"buy_price"`
	SellDate   string  `json:"sell_date"`
	SellPrice  float64 `json:"sell_price"`
	Shares     int     `json:"shares"`
	Profit     float64 `json:"profit"`
	ReturnRate float64 `json:"return_rate"`
	SignalType string  `json:"signal_type"`
	HoldDays   int     `json:"hold_days"`
}

type BacktestMetrics struct {
	InitialCapital       float64  `json:"initial_capital"`
	FinalCapital         float64  `json:"final_capital"`
	TotalReturn          float64  `json:"total_return"`
	TotalReturnRate      float64  `json:"total_return_rate"`
	AnnualizedReturnRate *float64 `json:"annualized_return_rate,omitempty"`
	TotalTrades          int      `json:"total_trades"`
	SuccessfulTrades     int      `json:"successful_trades"`
	FailedTrades         int      `json:"failed_trades"`
	WinRate              float64  `json:"win_rate"`
	AverageProfit        float64  `json:"average_profit"`
	MaxProfit            float64  `json:"max_profit"`
	MaxLoss              float64  `json:"max_loss"`
	MaxDrawdown          float64  `json:"max_drawdown"`
	SharpeRatio          *float64 `json:"sharpe_ratio,omitempty"`
	ProfitFactor         *float64 `json:"profit_factor,omitempty"`
}

type EquityCurvePoint struct {
	Date    string  `json:"date"`
	Capital float64 `json:"capital"`
}

type BacktestResult struct {
	StockCode         string             `json:"stock_code"`
	BacktestPeriod    string             `json:"backtest_period"`
	StrategyType      StrategyType       `json:"strategy_type"`
	Metrics           BacktestMetrics    `json:"metrics"`
	Trades            []BacktestTrade    `json:"trades"`
	EquityCurve       []EquityCurvePoint `json:"equity_curve,omitempty"`
	BacktestTimestamp time.Time          `json:"backtest_timestamp"`
}
