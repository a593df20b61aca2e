package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/basfactory/stock-analyzer/internal/domain/models"
	xhttp "github.com/basfactory/stock-analyzer/pkg/http"
	"github.com/basfactory/stock-analyzer/pkg/metrics"
)

// YahooClient implements Provider against the Yahoo Finance chart and quote
// HTTP API. A circuit breaker keeps a flapping upstream from being hammered.
type YahooClient struct {
	baseURL string
	client  *xhttp.Client
	breaker *gobreaker.CircuitBreaker
	metrics metrics.Metrics
}

func NewYahooClient(baseURL string, timeout time.Duration, m metrics.Metrics) *YahooClient {
	if m == nil {
		m = metrics.Noop{}
	}
	return &YahooClient{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "yahoo",
			MaxRequests: 3,
			Interval:    30 * time.Second,
			Timeout:     60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
			},
		}),
		metrics: m,
	}
}

// yahooChart is the response structure of the chart API. Bars with price
// gaps come back as JSON nulls, hence interface{} columns.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type yahooQuote struct {
	QuoteResponse struct {
		Result []struct {
			ShortName        string `json:"shortName"`
			LongName         string `json:"longName"`
			Currency         string `json:"currency"`
			FullExchangeName string `json:"fullExchangeName"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func (c *YahooClient) History(ctx context.Context, symbol string, period models.Period) ([]models.PriceBar, error) {
	return c.fetchChart(ctx, symbol, map[string]string{
		"interval": "1d",
		"range":    string(period),
	})
}

func (c *YahooClient) HistoryRange(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error) {
	return c.fetchChart(ctx, symbol, map[string]string{
		"interval": "1d",
		"period1":  strconv.FormatInt(start.Unix(), 10),
		"period2":  strconv.FormatInt(end.Unix(), 10),
	})
}

func (c *YahooClient) fetchChart(ctx context.Context, symbol string, params map[string]string) ([]models.PriceBar, error) {
	c.metrics.RecordProviderRequest("yahoo")

	res, err := c.breaker.Execute(func() (interface{}, error) {
		var chart yahooChart
		err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:      xhttp.MethodGet,
			URL:         fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, url.PathEscape(symbol)),
			Headers:     map[string]string{"User-Agent": "Mozilla/5.0"},
			QueryParams: params,
		}, &chart)
		if err != nil {
			return nil, err
		}
		if chart.Chart.Error != nil {
			return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
		}
		return &chart, nil
	})
	if err != nil {
		c.metrics.RecordProviderError("yahoo")
		return nil, fmt.Errorf("yahoo fetch %s: %w", symbol, err)
	}

	chart := res.(*yahooChart)
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]models.PriceBar, 0, len(result.Timestamp))

	n := len(result.Timestamp)
	for _, col := range [][]interface{}{quote.Open, quote.High, quote.Low, quote.Close, quote.Volume} {
		if len(col) < n {
			n = len(col)
		}
	}

	for i, ts := range result.Timestamp[:n] {
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		cl := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && cl == 0 {
			continue // null bars (holidays etc.)
		}
		bars = append(bars, models.PriceBar{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      o,
			High:      h,
			Low:       l,
			Close:     cl,
			Volume:    toFloat(quote.Volume[i]),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars, nil
}

func (c *YahooClient) Info(ctx context.Context, symbol string) (models.CompanyInfo, error) {
	c.metrics.RecordProviderRequest("yahoo")

	res, err := c.breaker.Execute(func() (interface{}, error) {
		var quote yahooQuote
		err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:      xhttp.MethodGet,
			URL:         fmt.Sprintf("%s/v7/finance/quote", c.baseURL),
			Headers:     map[string]string{"User-Agent": "Mozilla/5.0"},
			QueryParams: map[string]string{"symbols": symbol},
		}, &quote)
		if err != nil {
			return nil, err
		}
		return &quote, nil
	})
	if err != nil {
		c.metrics.RecordProviderError("yahoo")
		return models.CompanyInfo{}, fmt.Errorf("yahoo info %s: %w", symbol, err)
	}

	quote := res.(*yahooQuote)
	if len(quote.QuoteResponse.Result) == 0 {
		return models.CompanyInfo{}, fmt.Errorf("yahoo info %s: empty result", symbol)
	}

	r := quote.QuoteResponse.Result[0]
	info := models.CompanyInfo{
		Symbol:    symbol,
		ShortName: r.ShortName,
		LongName:  r.LongName,
		Currency:  r.Currency,
		Exchange:  r.FullExchangeName,
	}
	return info, nil
}
