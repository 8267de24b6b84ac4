package service

import (
	"stock-insight/config"
	"stock-insight/internal/repository"
	"stock-insight/internal/taskstore"
	"stock-insight/pkg/logger"
)

// Services bundles the business layer handed to the HTTP delivery.
type Services struct {
	Analysis       AnalysisService
	Recommendation RecommendationService
	Backtest       BacktestService
	Trace          TraceService
	Tools          ToolsService
	Task           TaskService
}

func New(cfg *config.Config, log *logger.Logger, repos *repository.Repositories, tasks taskstore.Store) *Services {
	analysis := NewAnalysisService(cfg, log, repos)
	return &Services{
		Analysis:       analysis,
		Recommendation: NewRecommendationService(cfg, log, repos, analysis),
		Backtest:       NewBacktestService(cfg, log, repos),
		Trace:          NewTraceService(cfg, log, repos),
		Tools:          NewToolsService(cfg, log, repos),
		Task:           NewTaskService(cfg, log, tasks),
	}
}
