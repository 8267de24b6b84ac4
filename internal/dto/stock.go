package dto

import "time"

// PricePoint is one trading day of raw OHLCV data, ordered ascending by
// date and unique per date.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	Close  float64   `json:"close"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Volume float64   `json:"volume"`
}

// IndicatorPoint is a PricePoint extended with derived indicator values.
// Derived fields are nil until enough trailing history exists; they never
// depend on future data.
type IndicatorPoint struct {
	PricePoint
	MA5             *float64 `json:"ma5,omitempty"`
	MA10            *float64 `json:"ma10,omitempty"`
	MA20            *float64 `json:"ma20,omitempty"`
	MA30            *float64 `json:"ma30,omitempty"`
	MA60            *float64 `json:"ma60,omitempty"`
	RSI             *float64 `json:"rsi,omitempty"`
	MACD            *float64 `json:"macd,omitempty"`
	MACDSignal      *float64 `json:"macd_signal,omitempty"`
	MACDHistogram   *float64 `json:"macd_histogram,omitempty"`
	BollingerUpper  *float64 `json:"bollinger_upper,omitempty"`
	BollingerMiddle *float64 `json:"bollinger_middle,omitempty"`
	BollingerLower  *float64 `json:"bollinger_lower,omitempty"`
}

type TradingSignal struct {
	SignalType     SignalType `json:"signal_type"`
	SignalStrength float64    `json:"signal_strength"`
	SignalReason   string     `json:"signal_reason"`
	SignalDate     string     `json:"signal_date,omitempty"`
	IndicatorsUsed []string   `json:"indicators_used"`
}

type PriceStatistics struct {
	CurrentPrice   float64 `json:"current_price"`
	HighestPrice   float64 `json:"highest_price"`
	LowestPrice    float64 `json:"lowest_price"`
	AveragePrice   float64 `json:"average_price"`
	PriceChange    float64 `json:"price_change"`
	PriceChangePct float64 `json:"price_change_pct"`
	Volatility     float64 `json:"volatility"`
}

type VolumeStatistics struct {
	TotalVolume   float64     `json:"total_volume"`
	AverageVolume float64     `json:"average_volume"`
	MaxVolume     float64     `json:"max_volume"`
	MinVolume     float64     `json:"min_volume"`
	VolumeTrend   VolumeTrend `json:"volume_trend"`
}

// TechnicalIndicators is the latest-day snapshot of the indicator set.
type TechnicalIndicators struct {
	MA5             *float64 `json:"ma5,omitempty"`
	MA10            *float64 `json:"ma10,omitempty"`
	MA20            *float64 `json:"ma20,omitempty"`
	MA30            *float64 `json:"ma30,omitempty"`
	MA60            *float64 `json:"ma60,omitempty"`
	RSI             *float64 `json:"rsi,omitempty"`
	MACD            *float64 `json:"macd,omitempty"`
	MACDSignal      *float64 `json:"macd_signal,omitempty"`
	MACDHistogram   *float64 `json:"macd_histogram,omitempty"`
	BollingerUpper  *float64 `json:"bollinger_upper,omitempty"`
	BollingerMiddle *float64 `json:"bollinger_middle,omitempty"`
	BollingerLower  *float64 `json:"bollinger_lower,omitempty"`
}

type RiskMetrics struct {
	Volatility  float64   `json:"volatility"`
	MaxDrawdown float64   `json:"max_drawdown"`
	SharpeRatio *float64  `json:"sharpe_ratio,omitempty"`
	RiskLevel   RiskLevel `json:"risk_level"`
}

type TrendAnalysis struct {
	ShortTermTrend  TrendDirection `json:"short_term_trend"`
	MediumTermTrend TrendDirection `json:"medium_term_trend"`
	LongTermTrend   TrendDirection `json:"long_term_trend"`
	TrendStrength   float64        `json:"trend_strength"`
	SupportLevel    *float64       `json:"support_level,omitempty"`
	ResistanceLevel *float64       `json:"resistance_level,omitempty"`
}

type AnalysisRequest struct {
	StockCode string `json:"stock_code" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

type AnalysisResult struct {
	StockCode           string              `json:"stock_code"`
	AnalysisPeriod      string              `json:"analysis_period"`
	StartDate           string              `json:"start_date"`
	EndDate             string              `json:"end_date"`
	DataPoints          int                 `json:"data_points"`
	HistoricalData      []IndicatorPoint    `json:"historical_data"`
	PriceStats          PriceStatistics     `json:"price_stats"`
	VolumeStats         VolumeStatistics    `json:"volume_stats"`
	TechnicalIndicators TechnicalIndicators `json:"technical_indicators"`
	TradingSignals      []TradingSignal     `json:"trading_signals"`
	RiskMetrics         RiskMetrics         `json:"risk_metrics"`
	TrendAnalysis       TrendAnalysis       `json:"trend_analysis"`
	OverallAssessment   string              `json:"overall_assessment"`
	ConfidenceScore     float64             `json:"confidence_score"`
	AnalysisTimestamp   time.Time           `json:"analysis_timestamp"`
}

type RecommendationRequest struct {
	StockCodes  []string `json:"stock_codes" validate:"required,min=1,dive,required"`
	MaxStocks   int      `json:"max_stocks" validate:"omitempty,min=1,max=50"`
	StartDate   string   `json:"start_date" validate:"required"`
	EndDate     string   `json:"end_date" validate:"required"`
	MinScore    float64  `json:"min_recommendation_score" validate:"omitempty,min=0,max=1"`
	FocusSector string   `json:"focus_sector"`
}

type StockRecommendation struct {
	Rank            int             `json:"rank"`
	StockCode       string          `json:"stock_code"`
	Score           float64         `json:"recommendation_score"`
	Reason          string          `json:"recommendation_reason"`
	CurrentPrice    float64         `json:"current_price"`
	PriceChangePct  float64         `json:"price_change_pct"`
	RiskLevel       RiskLevel       `json:"risk_level"`
	TrendDirection  TrendDirection  `json:"trend_direction"`
	KeyHighlights   []string        `json:"key_highlights"`
	AnalysisSummary *AnalysisResult `json:"analysis_summary,omitempty"`
}

type RecommendationResult struct {
	Recommendations   []StockRecommendation `json:"recommendations"`
	TotalAnalyzed     int                   `json:"total_analyzed"`
	AnalysisPeriod    string                `json:"analysis_period"`
	ComparisonSummary string                `json:"comparison_summary"`
	Timestamp         time.Time             `json:"recommendation_timestamp"`
}
