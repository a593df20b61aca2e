package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basfactory/stock-analyzer/internal/domain/models"
)

const chartBody = `{
  "chart": {
    "result": [{
      "timestamp": [1735819200, 1735905600, 1735992000],
      "indicators": {
        "quote": [{
          "open":   [100.0, null, 102.0],
          "high":   [101.0, null, 103.0],
          "low":    [99.0,  null, 101.0],
          "close":  [100.5, null, 102.5],
          "volume": [1000,  null, 1200]
        }]
      }
    }],
    "error": null
  }
}`

func TestYahooHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.URL.Path, "/v8/finance/chart/AAPL"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "1y", r.URL.Query().Get("range"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	c := NewYahooClient(srv.URL, 5*time.Second, nil)
	bars, err := c.History(context.Background(), "AAPL", models.Period1Y)
	require.NoError(t, err)

	// null bar dropped, remaining sorted ascending
	require.Len(t, bars, 2)
	assert.Equal(t, 100.5, bars[0].Close)
	assert.Equal(t, 102.5, bars[1].Close)
	assert.True(t, bars[0].Timestamp.Before(bars[1].Timestamp))
}

func TestYahooHistoryRangeParams(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1735689600", r.URL.Query().Get("period1"))
		assert.Equal(t, "1738368000", r.URL.Query().Get("period2"))
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	c := NewYahooClient(srv.URL, 5*time.Second, nil)
	_, err := c.HistoryRange(context.Background(), "AAPL", start, end)
	require.NoError(t, err)
}

func TestYahooHistoryAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	c := NewYahooClient(srv.URL, 5*time.Second, nil)
	_, err := c.History(context.Background(), "NOPE", models.Period1D)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")
}

func TestYahooHistoryEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	}))
	defer srv.Close()

	c := NewYahooClient(srv.URL, 5*time.Second, nil)
	bars, err := c.History(context.Background(), "EMPTY", models.Period1D)
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestYahooInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v7/finance/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbols"))
		_, _ = w.Write([]byte(`{"quoteResponse":{"result":[{"shortName":"Apple Inc.","longName":"Apple Inc.","currency":"USD","fullExchangeName":"NasdaqGS"}]}}`))
	}))
	defer srv.Close()

	c := NewYahooClient(srv.URL, 5*time.Second, nil)
	info, err := c.Info(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", info.ShortName)
	assert.Equal(t, "NasdaqGS", info.Exchange)
}
