package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/basfactory/stock-analyzer/internal/domain/models"
	"github.com/basfactory/stock-analyzer/pkg/cache"
	"github.com/basfactory/stock-analyzer/pkg/logger"
	"github.com/basfactory/stock-analyzer/pkg/metrics"
)

const seriesCacheName = "price_series"

// Cache memoizes price series per (symbol, period) for the process lifetime,
// bounded by an LRU cap. Range queries are never memoized.
type Cache struct {
	provider Provider
	series   *cache.Store[models.PriceSeries]
	logger   *logger.Logger
	metrics  metrics.Metrics
}

func NewCache(provider Provider, maxEntries int, log *logger.Logger, m metrics.Metrics) *Cache {
	if log == nil {
		log = logger.Nop()
	}
	if m == nil {
		m = metrics.Noop{}
	}
	return &Cache{
		provider: provider,
		series:   cache.New(cache.WithMaxEntries[models.PriceSeries](maxEntries)),
		logger:   log,
		metrics:  m,
	}
}

// GetSeries returns the price series for (symbol, period), fetching from the
// provider on cache miss. An empty provider result yields ErrNoData and is
// not cached; a provider fault yields *DataUnavailableError and is not cached.
func (c *Cache) GetSeries(ctx context.Context, symbol string, period models.Period) (models.PriceSeries, error) {
	symbol, err := models.NormalizeSymbol(symbol)
	if err != nil {
		return models.PriceSeries{}, err
	}
	if !period.Valid() {
		return models.PriceSeries{}, fmt.Errorf("invalid period %q", period)
	}

	key := cache.Key("series", symbol, period)
	if series, _, ok := c.series.Get(key); ok {
		c.metrics.RecordCacheHit(seriesCacheName)
		return series, nil
	}
	c.metrics.RecordCacheMiss(seriesCacheName)

	bars, err := c.provider.History(ctx, symbol, period)
	if err != nil {
		c.logger.Warn("price history fetch failed",
			logger.String("symbol", symbol),
			logger.String("period", string(period)),
			logger.Error(err))
		return models.PriceSeries{}, &DataUnavailableError{Symbol: symbol, Err: err}
	}
	if len(bars) == 0 {
		return models.PriceSeries{}, ErrNoData
	}

	series := models.PriceSeries{Symbol: symbol, Bars: bars}
	c.series.Put(key, series)
	c.logger.Debug("price series cached",
		logger.String("symbol", symbol),
		logger.String("period", string(period)),
		logger.Int("bars", len(bars)))
	return series, nil
}

// GetSeriesRange fetches bars for an explicit date range. Always goes to the
// provider; range queries are not memoized.
func (c *Cache) GetSeriesRange(ctx context.Context, symbol string, start, end time.Time) (models.PriceSeries, error) {
	symbol, err := models.NormalizeSymbol(symbol)
	if err != nil {
		return models.PriceSeries{}, err
	}

	bars, err := c.provider.HistoryRange(ctx, symbol, start, end)
	if err != nil {
		c.logger.Warn("price range fetch failed",
			logger.String("symbol", symbol),
			logger.Error(err))
		return models.PriceSeries{}, &DataUnavailableError{Symbol: symbol, Err: err}
	}
	if len(bars) == 0 {
		return models.PriceSeries{}, ErrNoData
	}
	return models.PriceSeries{Symbol: symbol, Bars: bars}, nil
}

// CompanyInfo fetches display metadata. It never fails outward: on any
// provider fault the result degrades to the raw symbol with USD currency.
func (c *Cache) CompanyInfo(ctx context.Context, symbol string) models.CompanyInfo {
	normalized, err := models.NormalizeSymbol(symbol)
	if err != nil {
		normalized = symbol
	}

	info, err := c.provider.Info(ctx, normalized)
	if err != nil {
		c.logger.Warn("company info fetch failed, using defaults",
			logger.String("symbol", normalized),
			logger.Error(err))
		return models.CompanyInfo{
			Symbol:    normalized,
			ShortName: normalized,
			LongName:  normalized,
			Currency:  "USD",
			Exchange:  "Unknown",
		}
	}

	if info.Symbol == "" {
		info.Symbol = normalized
	}
	if info.ShortName == "" {
		info.ShortName = normalized
	}
	if info.LongName == "" {
		info.LongName = info.ShortName
	}
	if info.Currency == "" {
		info.Currency = "USD"
	}
	if info.Exchange == "" {
		info.Exchange = "Unknown"
	}
	return info
}

// ValidateSymbol reports whether a minimal one-day history fetch returns at
// least one bar. Provider faults count as invalid, not as errors.
func (c *Cache) ValidateSymbol(ctx context.Context, symbol string) bool {
	symbol, err := models.NormalizeSymbol(symbol)
	if err != nil {
		return false
	}
	bars, err := c.provider.History(ctx, symbol, models.Period1D)
	if err != nil {
		return false
	}
	return len(bars) > 0
}
