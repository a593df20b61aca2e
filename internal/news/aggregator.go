package news

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/basfactory/stock-analyzer/internal/domain/models"
	"github.com/basfactory/stock-analyzer/pkg/cache"
	"github.com/basfactory/stock-analyzer/pkg/logger"
	"github.com/basfactory/stock-analyzer/pkg/metrics"
)

const (
	newsCacheName = "news"

	// DefaultTTL is the freshness window for cached per-symbol article lists.
	DefaultTTL = 5 * time.Minute

	// fetchConcurrency bounds parallel provider calls within one batch.
	fetchConcurrency = 4

	// jstDateFormat renders article timestamps for the dashboard.
	jstDateFormat = "2006年01月02日 15:04"
)

// Japan does not observe DST, so a fixed UTC+9 zone is an exact conversion.
var jst = time.FixedZone("JST", 9*60*60)

// FavoriteSource supplies the current favorite symbol set.
type FavoriteSource interface {
	Symbols(ctx context.Context) []string
}

// SymbolFailure describes one symbol whose fetch degraded within a batch.
type SymbolFailure struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// AggregateResult is the favorites-news summary.
type AggregateResult struct {
	OK       bool                 `json:"ok"`
	Message  string               `json:"message"`
	Symbols  []string             `json:"symbols,omitempty"`
	Articles []models.NewsArticle `json:"articles"`
	Failures []SymbolFailure      `json:"failures,omitempty"`
}

// Aggregator fetches, caches, and merges per-symbol news. Per-symbol article
// lists are cached under (symbol, language, pageSize) with a freshness TTL;
// an optional shared bytes cache (Redis) sits behind the in-process one.
type Aggregator struct {
	client  Client
	queries *QueryBuilder
	cache   *cache.Store[[]models.NewsArticle]
	shared  cache.BytesCache
	ttl     time.Duration
	logger  *logger.Logger
	metrics metrics.Metrics
	now     func() time.Time
}

type AggregatorOption func(*Aggregator)

// WithSharedCache adds a second-level bytes cache shared across processes.
func WithSharedCache(shared cache.BytesCache) AggregatorOption {
	return func(a *Aggregator) { a.shared = shared }
}

// WithTTL overrides the cache freshness window.
func WithTTL(ttl time.Duration) AggregatorOption {
	return func(a *Aggregator) { a.ttl = ttl }
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) { a.now = now }
}

func NewAggregator(client Client, queries *QueryBuilder, log *logger.Logger, m metrics.Metrics, opts ...AggregatorOption) *Aggregator {
	if log == nil {
		log = logger.Nop()
	}
	if m == nil {
		m = metrics.Noop{}
	}
	a := &Aggregator{
		client:  client,
		queries: queries,
		ttl:     DefaultTTL,
		logger:  log,
		metrics: m,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.cache = cache.New[[]models.NewsArticle](
		cache.WithClock[[]models.NewsArticle](func() time.Time { return a.now() }),
	)
	return a
}

// FetchForSymbols returns the merged article list for the given symbols,
// sorted by published timestamp descending. One failing symbol never blanks
// the batch: transport faults yield a placeholder article for that symbol and
// an entry in the returned failure list.
func (a *Aggregator) FetchForSymbols(ctx context.Context, symbols []string, language string, pageSize int) ([]models.NewsArticle, []SymbolFailure) {
	if !a.client.HasCredential() {
		return []models.NewsArticle{a.credentialMissingArticle()}, nil
	}

	perSymbol := make([][]models.NewsArticle, len(symbols))
	perSymbolErr := make([]error, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	normalized := make([]string, len(symbols))
	for i, raw := range symbols {
		symbol, err := models.NormalizeSymbol(raw)
		if err != nil {
			continue
		}
		normalized[i] = symbol

		key := cache.Key(newsCacheName, symbol, language, pageSize)
		if articles, ok := a.lookup(ctx, key); ok {
			a.metrics.RecordCacheHit(newsCacheName)
			perSymbol[i] = articles
			continue
		}
		a.metrics.RecordCacheMiss(newsCacheName)

		g.Go(func() error {
			perSymbol[i], perSymbolErr[i] = a.fetchSymbol(gctx, symbol, language, pageSize, key)
			return nil
		})
	}
	_ = g.Wait()

	merged := make([]models.NewsArticle, 0)
	failures := make([]SymbolFailure, 0)
	for i, articles := range perSymbol {
		merged = append(merged, articles...)
		if perSymbolErr[i] != nil {
			failures = append(failures, SymbolFailure{Symbol: normalized[i], Reason: perSymbolErr[i].Error()})
		}
	}

	// most recent first; missing timestamps sort last
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedAt > merged[j].PublishedAt
	})
	return merged, failures
}

// FetchForFavorites fetches news for the current favorite symbol set.
func (a *Aggregator) FetchForFavorites(ctx context.Context, favorites FavoriteSource, language string, pageSize int) AggregateResult {
	symbols := favorites.Symbols(ctx)
	if len(symbols) == 0 {
		return AggregateResult{
			Message:  "no favorites registered",
			Articles: []models.NewsArticle{},
		}
	}

	articles, failures := a.FetchForSymbols(ctx, symbols, language, pageSize)
	return AggregateResult{
		OK:       true,
		Message:  fmt.Sprintf("fetched %d articles for %d symbols", len(articles), len(symbols)),
		Symbols:  symbols,
		Articles: articles,
		Failures: failures,
	}
}

// lookup consults the in-process cache, then the shared cache if configured.
func (a *Aggregator) lookup(ctx context.Context, key string) ([]models.NewsArticle, bool) {
	if articles, ok := a.cache.GetFresh(key, a.ttl); ok {
		return articles, true
	}
	if a.shared == nil {
		return nil, false
	}

	b, ok, err := a.shared.GetBytes(ctx, key)
	if err != nil {
		a.logger.Warn("shared news cache lookup failed", logger.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var articles []models.NewsArticle
	if err := json.Unmarshal(b, &articles); err != nil {
		a.logger.Warn("shared news cache entry corrupt", logger.Error(err))
		return nil, false
	}
	return articles, true
}

// fetchSymbol calls the provider and caches the annotated result. On a
// transport fault the returned slice holds a single placeholder article and
// the error is reported for the batch failure list.
func (a *Aggregator) fetchSymbol(ctx context.Context, symbol, language string, pageSize int, key string) ([]models.NewsArticle, error) {
	query := a.queries.Build(symbol)
	raw, err := a.client.Search(ctx, query, language, pageSize)
	if err != nil {
		a.logger.Warn("news fetch failed",
			logger.String("symbol", symbol),
			logger.Error(err))
		return []models.NewsArticle{a.failureArticle(symbol, err)}, err
	}

	articles := make([]models.NewsArticle, len(raw))
	for i, r := range raw {
		articles[i] = models.NewsArticle{
			Title:         r.Title,
			Description:   r.Description,
			PublishedAt:   r.PublishedAt,
			URL:           r.URL,
			Symbol:        symbol,
			FormattedDate: a.formatDate(r.PublishedAt),
		}
	}

	a.cache.Put(key, articles)
	if a.shared != nil {
		if b, err := json.Marshal(articles); err == nil {
			if err := a.shared.SetBytes(ctx, key, b, a.ttl); err != nil {
				a.logger.Warn("shared news cache store failed", logger.Error(err))
			}
		}
	}

	a.logger.Debug("news fetched",
		logger.String("symbol", symbol),
		logger.Int("articles", len(articles)))
	return articles, nil
}

// formatDate renders a provider ISO-8601 timestamp in Japan time. Unparseable
// input falls back to the current wall clock.
func (a *Aggregator) formatDate(publishedAt string) string {
	t, err := time.Parse(time.RFC3339, publishedAt)
	if err != nil {
		return a.now().In(jst).Format(jstDateFormat)
	}
	return t.In(jst).Format(jstDateFormat)
}

func (a *Aggregator) failureArticle(symbol string, err error) models.NewsArticle {
	now := a.now()
	return models.NewsArticle{
		Title:         fmt.Sprintf("news for %s is temporarily unavailable", symbol),
		Description:   fmt.Sprintf("fetch failed: %v", err),
		PublishedAt:   now.UTC().Format(time.RFC3339),
		URL:           "",
		Symbol:        symbol,
		FormattedDate: now.In(jst).Format(jstDateFormat),
	}
}

func (a *Aggregator) credentialMissingArticle() models.NewsArticle {
	now := a.now()
	return models.NewsArticle{
		Title:         "news provider API key is not configured",
		Description:   "set NEWS_APIKEY in the environment or news.api_key in the config file",
		PublishedAt:   now.UTC().Format(time.RFC3339),
		Symbol:        "ERROR",
		FormattedDate: now.In(jst).Format(jstDateFormat),
	}
}
