package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"stock-insight/config"
	"stock-insight/internal/dto"
	"stock-insight/internal/repository"
	"stock-insight/pkg/logger"
)

const (
	defaultMaxStocks = 10
	defaultMinScore  = 0.5
)

type RecommendationService interface {
	Recommend(ctx context.Context, req dto.RecommendationRequest) (*dto.RecommendationResult, error)
}

type recommendationService struct {
	cfg      *config.Config
	log      *logger.Logger
	repos    *repository.Repositories
	analysis AnalysisService
}

func NewRecommendationService(cfg *config.Config, log *logger.Logger, repos *repository.Repositories, analysis AnalysisService) RecommendationService {
	return &recommendationService{cfg: cfg, log: log, repos: repos, analysis: analysis}
}

// Recommend scores each analyzable symbol, filters by the minimum score,
// and returns the top candidates ranked by score.
func (s *recommendationService) Recommend(ctx context.Context, req dto.RecommendationRequest) (*dto.RecommendationResult, error) {
	maxStocks := req.MaxStocks
	if maxStocks <= 0 {
		maxStocks = defaultMaxStocks
	}
	minScore := req.MinScore
	if minScore <= 0 {
		minScore = defaultMinScore
	}

	analyses, err := s.analysis.BatchAnalyze(ctx, req.StockCodes, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if len(analyses) == 0 {
		return nil, fmt.Errorf("%w: none of the requested symbols could be analyzed", dto.ErrDataUnavailable)
	}

	var candidates []dto.StockRecommendation
	for _, stockCode := range req.StockCodes {
		analysis, ok := analyses[stockCode]
		if !ok {
			continue
		}

		score := recommendationScore(analysis)
		if score < minScore {
			continue
		}

		candidates = append(candidates, dto.StockRecommendation{
			StockCode:       stockCode,
			Score:           score,
			CurrentPrice:    analysis.PriceStats.CurrentPrice,
			PriceChangePct:  analysis.PriceStats.PriceChangePct,
			RiskLevel:       analysis.RiskMetrics.RiskLevel,
			TrendDirection:  analysis.TrendAnalysis.ShortTermTrend,
			KeyHighlights:   keyHighlights(analysis),
			AnalysisSummary: analysis,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > maxStocks {
		candidates = candidates[:maxStocks]
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
		candidates[i].Reason = s.recommendationReason(ctx, candidates[i])
	}

	result := &dto.RecommendationResult{
		Recommendations:   candidates,
		TotalAnalyzed:     len(analyses),
		AnalysisPeriod:    fmt.Sprintf("%s to %s", req.StartDate, req.EndDate),
		ComparisonSummary: s.comparisonSummary(ctx, candidates),
		Timestamp:         time.Now(),
	}

	s.log.InfoContext(ctx, "recommendation completed",
		logger.IntField("analyzed", result.TotalAnalyzed),
		logger.IntField("recommended", len(candidates)))
	return result, nil
}

// recommendationScore weighs price performance, signals, trend, risk and
// RSI into a single [0, 1] score starting from a neutral 0.5.
func recommendationScore(analysis *dto.AnalysisResult) float64 {
	score := 0.5

	changePct := analysis.PriceStats.PriceChangePct
	switch {
	case changePct > 10:
		score += 0.15
	case changePct > 5:
		score += 0.1
	case changePct > 0:
		score += 0.05
	case changePct < -10:
		score -= 0.1
	case changePct < -5:
		score -= 0.05
	}

	var buySum, sellSum float64
	var buyCount, sellCount int
	for _, sig := range analysis.TradingSignals {
		switch sig.SignalType {
		case dto.SignalBuy:
			buySum += sig.SignalStrength
			buyCount++
		case dto.SignalSell:
			sellSum += sig.SignalStrength
			sellCount++
		}
	}
	if buyCount > 0 {
		score += buySum / float64(buyCount) * 0.15
	}
	if sellCount > 0 {
		score -= sellSum / float64(sellCount) * 0.1
	}

	trend := analysis.TrendAnalysis
	if trend.TrendStrength > 0.7 {
		if trend.ShortTermTrend == dto.TrendUp {
			score += 0.1
		} else if trend.ShortTermTrend == dto.TrendDown {
			score -= 0.05
		}
	}
	score += (trend.TrendStrength - 0.5) * 0.1

	switch analysis.RiskMetrics.RiskLevel {
	case dto.RiskLow:
		score += 0.1
	case dto.RiskMedium:
		score += 0.05
	default:
		score -= 0.05
	}

	if rsi := analysis.TechnicalIndicators.RSI; rsi != nil {
		if *rsi > 30 && *rsi < 70 {
			score += 0.05
		} else if *rsi < 30 {
			score += 0.03
		}
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func keyHighlights(analysis *dto.AnalysisResult) []string {
	var highlights []string
	if analysis.PriceStats.PriceChangePct > 5 {
		highlights = append(highlights, fmt.Sprintf("gained %.2f%% over the period", analysis.PriceStats.PriceChangePct))
	}
	if analysis.TrendAnalysis.TrendStrength > 0.7 {
		highlights = append(highlights, fmt.Sprintf("trend strength %.2f", analysis.TrendAnalysis.TrendStrength))
	}
	if analysis.RiskMetrics.RiskLevel == dto.RiskLow {
		highlights = append(highlights, "low risk")
	}
	buyCount := 0
	for _, sig := range analysis.TradingSignals {
		if sig.SignalType == dto.SignalBuy {
			buyCount++
		}
	}
	if buyCount > 0 {
		highlights = append(highlights, fmt.Sprintf("%d buy signal(s)", buyCount))
	}
	return highlights
}

func (s *recommendationService) recommendationReason(ctx context.Context, rec dto.StockRecommendation) string {
	prompt := buildReasonPrompt(rec)
	reason, err := s.repos.AI.GenerateText(ctx, prompt)
	if err != nil {
		s.log.WarnContext(ctx, "recommendation reason generation failed, using fallback",
			logger.StringField("stock_code", rec.StockCode),
			logger.ErrorField(err))
		return fmt.Sprintf("Technical analysis gives %s a recommendation score of %.2f. "+
			"The current price is %.2f with a %.2f%% change over the period and %s risk. "+
			"Size any position according to your own risk tolerance.",
			rec.StockCode, rec.Score, rec.CurrentPrice, rec.PriceChangePct, rec.RiskLevel)
	}
	return strings.TrimSpace(reason)
}

func buildReasonPrompt(rec dto.StockRecommendation) string {
	var sb strings.Builder
	sb.WriteString("You are a professional financial analyst. Based on the technical analysis data below, write an objective recommendation rationale (150-250 words) covering the stock's core strengths, main risks, suitable investor profile, and a closing suggestion. Plain text only.\n\n")
	fmt.Fprintf(&sb, "Stock code: %s\n", rec.StockCode)
	fmt.Fprintf(&sb, "Current price: %.2f\n", rec.CurrentPrice)
	fmt.Fprintf(&sb, "Price change: %.2f%%\n", rec.PriceChangePct)
	fmt.Fprintf(&sb, "Risk level: %s\n", rec.RiskLevel)
	fmt.Fprintf(&sb, "Trend direction: %s\n", rec.TrendDirection)
	fmt.Fprintf(&sb, "Recommendation score: %.2f\n", rec.Score)

	if analysis := rec.AnalysisSummary; analysis != nil {
		ind := analysis.TechnicalIndicators
		fmt.Fprintf(&sb, "MA5: %s, MA30: %s, RSI: %s\n",
			formatIndicator(ind.MA5), formatIndicator(ind.MA30), formatIndicator(ind.RSI))
		for i, sig := range analysis.TradingSignals {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&sb, "Signal: %s - %s (strength %.2f)\n", sig.SignalType, sig.SignalReason, sig.SignalStrength)
		}
	}
	return sb.String()
}

func (s *recommendationService) comparisonSummary(ctx context.Context, recs []dto.StockRecommendation) string {
	if len(recs) == 0 {
		return "No stocks met the recommendation criteria."
	}

	var sb strings.Builder
	sb.WriteString("You are a professional financial analyst. Based on the ranked stock list below, write a comparison analysis (200-300 words) covering the overall market tone, common traits of the picks, how they differ, and a portfolio suggestion. Plain text only.\n\n")
	for _, rec := range recs {
		fmt.Fprintf(&sb, "%d. %s: score %.2f, price %.2f, change %.2f%%, risk %s, trend %s",
			rec.Rank, rec.StockCode, rec.Score, rec.CurrentPrice, rec.PriceChangePct, rec.RiskLevel, rec.TrendDirection)
		if len(rec.KeyHighlights) > 0 {
			fmt.Fprintf(&sb, ", highlights: %s", strings.Join(rec.KeyHighlights, ", "))
		}
		sb.WriteString("\n")
	}

	summary, err := s.repos.AI.GenerateText(ctx, sb.String())
	if err != nil {
		s.log.WarnContext(ctx, "comparison summary generation failed, using fallback",
			logger.ErrorField(err))
		top := recs[0]
		return fmt.Sprintf("%d stock(s) recommended. Top pick %s scores %.2f with %s risk and a %s short-term trend.",
			len(recs), top.StockCode, top.Score, top.RiskLevel, top.TrendDirection)
	}
	return strings.TrimSpace(summary)
}

func formatIndicator(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}
