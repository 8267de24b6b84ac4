package repository

import (
	"stock-insight/config"
	"stock-insight/pkg/cache"
	"stock-insight/pkg/logger"
)

// Repositories bundles the external data access layer.
type Repositories struct {
	MarketData MarketDataRepository
	AI         AIRepository
	Search     SearchRepository
	Scraper    ScraperRepository
}

func New(cfg *config.Config, log *logger.Logger, cacheStore cache.Cache) (*Repositories, error) {
	aiRepo, err := NewGeminiAIRepository(cfg, log)
	if err != nil {
		return nil, err
	}

	return &Repositories{
		MarketData: NewMarketDataRepository(cfg, log, cacheStore),
		AI:         aiRepo,
		Search:     NewSerperRepository(cfg, log),
		Scraper:    NewScraperRepository(cfg, log),
	}, nil
}
