// Package news aggregates provider articles per instrument symbol with a
// TTL cache and search-query synthesis.
package news

import (
	"context"
	"strconv"
	"time"

	xhttp "github.com/basfactory/stock-analyzer/pkg/http"
	"github.com/basfactory/stock-analyzer/pkg/logger"
	"github.com/basfactory/stock-analyzer/pkg/metrics"
)

// maxPageSize is the provider hard cap on articles per request.
const maxPageSize = 20

// placeholderAPIKey is the unconfigured template value shipped in sample
// env files; it must be treated the same as an absent key.
const placeholderAPIKey = "your_news_api_key_here"

// ProviderArticle is a raw article as returned by the news provider.
type ProviderArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PublishedAt string `json:"publishedAt"`
	URL         string `json:"url"`
}

// Client is the news provider contract. Search returns zero articles (not an
// error) when the provider reports an error status; transport faults are
// returned as errors.
type Client interface {
	Search(ctx context.Context, query, language string, pageSize int) ([]ProviderArticle, error)
	HasCredential() bool
}

// APIClient implements Client against the NewsAPI "everything" endpoint.
type APIClient struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
	logger  *logger.Logger
	metrics metrics.Metrics
}

func NewAPIClient(baseURL, apiKey string, timeout time.Duration, log *logger.Logger, m metrics.Metrics) *APIClient {
	if log == nil {
		log = logger.Nop()
	}
	if m == nil {
		m = metrics.Noop{}
	}
	return &APIClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		logger:  log,
		metrics: m,
	}
}

func (c *APIClient) HasCredential() bool {
	return c.apiKey != "" && c.apiKey != placeholderAPIKey
}

type searchResponse struct {
	Status   string            `json:"status"`
	Message  string            `json:"message"`
	Articles []ProviderArticle `json:"articles"`
}

func (c *APIClient) Search(ctx context.Context, query, language string, pageSize int) ([]ProviderArticle, error) {
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	c.metrics.RecordProviderRequest("newsapi")

	var resp searchResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/everything",
		QueryParams: map[string]string{
			"q":        query,
			"language": language,
			"sortBy":   "publishedAt",
			"pageSize": strconv.Itoa(pageSize),
			"apiKey":   c.apiKey,
		},
	}, &resp)
	if err != nil {
		c.metrics.RecordProviderError("newsapi")
		return nil, err
	}

	if resp.Status != "ok" {
		// provider-reported error, e.g. rate limit; zero articles, not a fault
		c.logger.Warn("news provider error status",
			logger.String("status", resp.Status),
			logger.String("message", resp.Message))
		return nil, nil
	}
	return resp.Articles, nil
}

var _ Client = (*APIClient)(nil)
