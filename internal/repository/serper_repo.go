package repository

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"stock-insight/config"
	"stock-insight/internal/dto"
	"stock-insight/pkg/httpclient"
	"stock-insight/pkg/logger"
)

const defaultSearchResults = 10

type SearchRepository interface {
	Search(ctx context.Context, query string, numResults int) ([]dto.SearchResult, error)
}

type serperRepository struct {
	cfg     *config.Config
	log     *logger.Logger
	client  httpclient.HTTPClient
	limiter *rate.Limiter
}

func NewSerperRepository(cfg *config.Config, log *logger.Logger) SearchRepository {
	return &serperRepository{
		cfg:     cfg,
		log:     log,
		client:  httpclient.New(cfg.Serper.BaseURL, cfg.Serper.BaseTimeout),
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.Serper.MaxRequestPerMin)), 1),
	}
}

type serperSearchResponse struct {
	Organic []struct {
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
		Position int    `json:"position"`
	} `json:"organic"`
}

func (r *serperRepository) Search(ctx context.Context, query string, numResults int) ([]dto.SearchResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if numResults <= 0 {
		numResults = defaultSearchResults
	}

	body := map[string]interface{}{
		"q":   query,
		"num": numResults,
	}
	headers := map[string]string{
		"X-API-KEY":    r.cfg.Serper.APIKey,
		"Content-Type": "application/json",
	}

	var searchResp serperSearchResponse
	resp, err := r.client.Post(ctx, "/search", body, headers, &searchResp)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	results := make([]dto.SearchResult, 0, len(searchResp.Organic))
	for _, item := range searchResp.Organic {
		results = append(results, dto.SearchResult{
			Title:    item.Title,
			Link:     item.Link,
			Snippet:  item.Snippet,
			Position: item.Position,
		})
	}

	r.log.InfoContext(ctx, "search completed",
		logger.StringField("query", query),
		logger.IntField("results", len(results)))
	return results, nil
}
