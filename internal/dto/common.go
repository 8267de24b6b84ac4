package dto

import "errors"

var (
	// ErrDataUnavailable means the market-data provider returned nothing
	// usable for the requested symbol and range.
	ErrDataUnavailable = errors.New("market data unavailable")
	// ErrInsufficientHistory means the series is too short for the
	// requested computation.
	ErrInsufficientHistory = errors.New("insufficient price history")
	// ErrTaskNotFound means no task record exists for the given ID.
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskNotCancellable means the task already reached a terminal
	// status.
	ErrTaskNotCancellable = errors.New("task already finished")
)

type SignalType string

const (
	SignalBuy  SignalType = "buy"
	SignalSell SignalType = "sell"
	SignalHold SignalType = "hold"
)

type StrategyType string

const (
	StrategySignalBased StrategyType = "signal_based"
	StrategyMACross     StrategyType = "ma_cross"
	StrategyRSI         StrategyType = "rsi"
	StrategyMACD        StrategyType = "macd"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

type TrendDirection string

const (
	TrendUp       TrendDirection = "up"
	TrendDown     TrendDirection = "down"
	TrendSideways TrendDirection = "sideways"
)

type VolumeTrend string

const (
	VolumeIncreasing VolumeTrend = "increasing"
	VolumeDecreasing VolumeTrend = "decreasing"
	VolumeStable     VolumeTrend = "stable"
)
