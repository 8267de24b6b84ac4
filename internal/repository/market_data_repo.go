package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"stock-insight/config"
	"stock-insight/internal/dto"
	"stock-insight/pkg/cache"
	"stock-insight/pkg/httpclient"
	"stock-insight/pkg/logger"
	"stock-insight/pkg/utils"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type MarketDataRepository interface {
	GetDailyBars(ctx context.Context, stockCode string, start, end time.Time) ([]dto.PricePoint, error)
}

type marketDataRepository struct {
	cfg     *config.Config
	log     *logger.Logger
	client  httpclient.HTTPClient
	cache   cache.Cache
	limiter *rate.Limiter
}

func NewMarketDataRepository(cfg *config.Config, log *logger.Logger, cacheStore cache.Cache) MarketDataRepository {
	return &marketDataRepository{
		cfg:     cfg,
		log:     log,
		client:  httpclient.New(cfg.MarketData.BaseURL, cfg.MarketData.BaseTimeout),
		cache:   cacheStore,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.MarketData.MaxRequestPerMin)), 1),
	}
}

// GetDailyBars fetches daily OHLCV bars for [start, end], newest last.
// Results are cached per symbol and range.
func (r *marketDataRepository) GetDailyBars(ctx context.Context, stockCode string, start, end time.Time) ([]dto.PricePoint, error) {
	cacheKey := fmt.Sprintf("market_data:%s:%s:%s", stockCode, utils.FormatDate(start), utils.FormatDate(end))
	if cached, found := cache.GetTyped[[]dto.PricePoint](r.cache, cacheKey); found {
		r.log.DebugContext(ctx, "market data cache hit", logger.StringField("stock_code", stockCode))
		return cached, nil
	}

	var lastErr error
	for attempt := 0; attempt <= r.cfg.MarketData.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			r.log.WarnContext(ctx, "retrying market data fetch",
				logger.StringField("stock_code", stockCode),
				logger.IntField("attempt", attempt),
				logger.ErrorField(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		points, err := r.fetch(ctx, stockCode, start, end)
		if err == nil {
			r.cache.Set(cacheKey, points, r.cfg.MarketData.CacheExpiration)
			return points, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: %s: %v", dto.ErrDataUnavailable, stockCode, lastErr)
}

func (r *marketDataRepository) fetch(ctx context.Context, stockCode string, start, end time.Time) ([]dto.PricePoint, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	// period2 is exclusive upstream, push it one day past the requested end.
	queryParams := map[string]string{
		"period1":  strconv.FormatInt(start.Unix(), 10),
		"period2":  strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10),
		"interval": "1d",
		"events":   "history",
	}
	headers := map[string]string{
		"User-Agent": browserUserAgent,
		"Accept":     "application/json",
	}

	var chartResp dto.YahooChartResponse
	resp, err := r.client.Get(ctx, "/v8/finance/chart/"+stockCode, queryParams, headers, &chartResp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("chart endpoint returned status %d", resp.StatusCode)
	}
	if chartResp.Chart.Error != nil {
		return nil, fmt.Errorf("chart endpoint error: %s", chartResp.Chart.Error.Description)
	}

	points := parseChartResult(chartResp.Chart.Result)
	if len(points) == 0 {
		return nil, fmt.Errorf("no usable rows for %s", stockCode)
	}

	r.log.InfoContext(ctx, "fetched market data",
		logger.StringField("stock_code", stockCode),
		logger.IntField("rows", len(points)))
	return points, nil
}

// parseChartResult flattens the parallel quote arrays, skipping rows with
// missing or zero closes (suspended trading days).
func parseChartResult(results []dto.YahooChartResult) []dto.PricePoint {
	if len(results) == 0 || len(results[0].Indicators.Quote) == 0 {
		return nil
	}

	result := results[0]
	quote := result.Indicators.Quote[0]

	var points []dto.PricePoint
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil || *quote.Close[i] == 0 {
			continue
		}
		p := dto.PricePoint{
			Date:  time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Close: *quote.Close[i],
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			p.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			p.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			p.Low = *quote.Low[i]
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			p.Volume = *quote.Volume[i]
		}
		points = append(points, p)
	}
	return points
}
