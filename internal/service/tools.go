package service

import (
	"context"

	"stock-insight/config"
	"stock-insight/internal/dto"
	"stock-insight/internal/repository"
	"stock-insight/pkg/logger"
)

// ToolsService exposes the raw search and scrape tools over the API.
type ToolsService interface {
	Search(ctx context.Context, req dto.SearchRequest) ([]dto.SearchResult, error)
	Scrape(ctx context.Context, req dto.ScrapeRequest) (*dto.ScrapedPage, error)
}

type toolsService struct {
	cfg   *config.Config
	log   *logger.Logger
	repos *repository.Repositories
}

func NewToolsService(cfg *config.Config, log *logger.Logger, repos *repository.Repositories) ToolsService {
	return &toolsService{cfg: cfg, log: log, repos: repos}
}

func (s *toolsService) Search(ctx context.Context, req dto.SearchRequest) ([]dto.SearchResult, error) {
	return s.repos.Search.Search(ctx, req.Query, req.NumResults)
}

func (s *toolsService) Scrape(ctx context.Context, req dto.ScrapeRequest) (*dto.ScrapedPage, error) {
	return s.repos.Scraper.Scrape(ctx, req.URL)
}
