package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"stock-insight/config"
	"stock-insight/internal/dto"
	"stock-insight/internal/indicator"
	"stock-insight/internal/repository"
	"stock-insight/internal/signal"
	"stock-insight/pkg/logger"
	"stock-insight/pkg/utils"
)

type AnalysisService interface {
	AnalyzeStock(ctx context.Context, req dto.AnalysisRequest) (*dto.AnalysisResult, error)
	BatchAnalyze(ctx context.Context, stockCodes []string, startDate, endDate string) (map[string]*dto.AnalysisResult, error)
}

type analysisService struct {
	cfg   *config.Config
	log   *logger.Logger
	repos *repository.Repositories
}

func NewAnalysisService(cfg *config.Config, log *logger.Logger, repos *repository.Repositories) AnalysisService {
	return &analysisService{cfg: cfg, log: log, repos: repos}
}

// AnalyzeStock runs the full pipeline for one symbol: fetch bars, compute
// indicators, derive statistics and signals, then ask the model for an
// overall assessment. A model failure degrades to a template assessment
// instead of failing the analysis.
func (s *analysisService) AnalyzeStock(ctx context.Context, req dto.AnalysisRequest) (*dto.AnalysisResult, error) {
	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date: %w", err)
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end_date: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end_date must not precede start_date")
	}

	points, err := s.repos.MarketData.GetDailyBars(ctx, req.StockCode, start, end)
	if err != nil {
		return nil, err
	}

	series := indicator.Compute(points)
	signals := signal.DetectLatest(series, signal.DefaultWindow)

	result := &dto.AnalysisResult{
		StockCode:           req.StockCode,
		AnalysisPeriod:      fmt.Sprintf("%s to %s", req.StartDate, req.EndDate),
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		DataPoints:          len(points),
		HistoricalData:      series,
		PriceStats:          CalculatePriceStatistics(points),
		VolumeStats:         CalculateVolumeStatistics(points),
		TechnicalIndicators: LatestIndicators(series),
		TradingSignals:      signals,
		RiskMetrics:         CalculateRiskMetrics(points),
		TrendAnalysis:       AnalyzeTrend(points),
		AnalysisTimestamp:   time.Now(),
	}

	result.OverallAssessment, result.ConfidenceScore = s.assess(ctx, result)

	s.log.InfoContext(ctx, "stock analysis completed",
		logger.StringField("stock_code", req.StockCode),
		logger.IntField("data_points", result.DataPoints),
		logger.IntField("signals", len(signals)))
	return result, nil
}

// BatchAnalyze runs AnalyzeStock for each symbol with bounded concurrency.
// Individual failures are logged and dropped; the remaining results are
// still returned.
func (s *analysisService) BatchAnalyze(ctx context.Context, stockCodes []string, startDate, endDate string) (map[string]*dto.AnalysisResult, error) {
	sem := semaphore.NewWeighted(int64(s.cfg.Analyzer.MaxConcurrency))

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]*dto.AnalysisResult, len(stockCodes))
	)

	for _, stockCode := range stockCodes {
		if !utils.ShouldContinue(ctx, s.log) {
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}

		wg.Add(1)
		stockCode := stockCode
		utils.GoSafe(func() {
			defer wg.Done()
			defer sem.Release(1)

			res, err := s.AnalyzeStock(ctx, dto.AnalysisRequest{
				StockCode: stockCode,
				StartDate: startDate,
				EndDate:   endDate,
			})
			if err != nil {
				s.log.WarnContext(ctx, "batch analysis item failed",
					logger.StringField("stock_code", stockCode),
					logger.ErrorField(err))
				return
			}

			mu.Lock()
			results[stockCode] = res
			mu.Unlock()
		})
	}

	wg.Wait()
	return results, nil
}

// assess asks the model for a narrative assessment. Confidence starts at
// 0.7 and grows with the amount of evidence available; a model failure
// falls back to a template with confidence 0.6.
func (s *analysisService) assess(ctx context.Context, result *dto.AnalysisResult) (string, float64) {
	confidence := 0.7
	ind := result.TechnicalIndicators
	if ind.MA5 != nil && ind.MA30 != nil {
		confidence += 0.1
	}
	if ind.RSI != nil {
		confidence += 0.1
	}
	if len(result.TradingSignals) > 0 {
		confidence += 0.1
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	assessment, err := s.repos.AI.GenerateText(ctx, buildAssessmentPrompt(result))
	if err != nil {
		s.log.WarnContext(ctx, "assessment generation failed, using fallback",
			logger.StringField("stock_code", result.StockCode),
			logger.ErrorField(err))
		return fallbackAssessment(result), 0.6
	}

	return strings.TrimSpace(assessment), confidence
}

func buildAssessmentPrompt(result *dto.AnalysisResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an experienced equity analyst. Write a concise overall assessment (3-5 sentences) of stock %s based on the following analysis for %s.\n\n", result.StockCode, result.AnalysisPeriod)
	fmt.Fprintf(&sb, "Price: current %.2f, change %.2f%% over the period, volatility %.2f\n",
		result.PriceStats.CurrentPrice, result.PriceStats.PriceChangePct, result.PriceStats.Volatility)
	fmt.Fprintf(&sb, "Trend: short-term %s, medium-term %s, long-term %s (strength %.2f)\n",
		result.TrendAnalysis.ShortTermTrend, result.TrendAnalysis.MediumTermTrend,
		result.TrendAnalysis.LongTermTrend, result.TrendAnalysis.TrendStrength)
	fmt.Fprintf(&sb, "Risk: level %s, annualized volatility %.2f, max drawdown %.2f%%\n",
		result.RiskMetrics.RiskLevel, result.RiskMetrics.Volatility, result.RiskMetrics.MaxDrawdown)
	fmt.Fprintf(&sb, "Volume trend: %s\n", result.VolumeStats.VolumeTrend)
	if result.TechnicalIndicators.RSI != nil {
		fmt.Fprintf(&sb, "RSI: %.1f\n", *result.TechnicalIndicators.RSI)
	}
	if len(result.TradingSignals) > 0 {
		sb.WriteString("Latest signals:\n")
		for _, sig := range result.TradingSignals {
			fmt.Fprintf(&sb, "- %s (strength %.2f): %s\n", sig.SignalType, sig.SignalStrength, sig.SignalReason)
		}
	} else {
		sb.WriteString("No trading signals on the latest day.\n")
	}
	sb.WriteString("\nRespond with plain text only, no markdown.")
	return sb.String()
}

func fallbackAssessment(result *dto.AnalysisResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s closed at %.2f, moving %.2f%% over %s. ",
		result.StockCode, result.PriceStats.CurrentPrice,
		result.PriceStats.PriceChangePct, result.AnalysisPeriod)
	fmt.Fprintf(&sb, "The short-term trend is %s with %s risk. ",
		result.TrendAnalysis.ShortTermTrend, result.RiskMetrics.RiskLevel)
	if len(result.TradingSignals) > 0 {
		sig := result.TradingSignals[0]
		fmt.Fprintf(&sb, "Latest signal: %s (%s).", sig.SignalType, sig.SignalReason)
	} else {
		sb.WriteString("No actionable signal on the latest trading day.")
	}
	return sb.String()
}
