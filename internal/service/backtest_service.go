package service

import (
	"context"
	"fmt"

	"stock-insight/config"
	"stock-insight/internal/backtest"
	"stock-insight/internal/dto"
	"stock-insight/internal/indicator"
	"stock-insight/internal/repository"
	"stock-insight/internal/signal"
	"stock-insight/pkg/logger"
	"stock-insight/pkg/utils"
)

type BacktestService interface {
	RunBacktest(ctx context.Context, req dto.BacktestRequest) (*dto.BacktestResult, error)
}

type backtestService struct {
	cfg    *config.Config
	log    *logger.Logger
	repos  *repository.Repositories
	engine *backtest.Engine
}

func NewBacktestService(cfg *config.Config, log *logger.Logger, repos *repository.Repositories) BacktestService {
	return &backtestService{cfg: cfg, log: log, repos: repos, engine: backtest.NewEngine()}
}

// RunBacktest replays the requested strategy over the historical series.
// The signal_based strategy feeds the engine every historical detector
// signal; the rule strategies derive their own triggers.
func (s *backtestService) RunBacktest(ctx context.Context, req dto.BacktestRequest) (*dto.BacktestResult, error) {
	req.ApplyDefaults()

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

	var signals []dto.TradingSignal
	if req.StrategyType == dto.StrategySignalBased {
		signals = signal.DetectAll(series, signal.DefaultWindow)
	}

	result := s.engine.Run(req, series, signals)

	s.log.InfoContext(ctx, "backtest completed",
		logger.StringField("stock_code", req.StockCode),
		logger.StringField("strategy", string(req.StrategyType)),
		logger.IntField("trades", len(result.Trades)))
	return result, nil
}
