package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basfactory/stock-analyzer/internal/domain/models"
	"github.com/basfactory/stock-analyzer/internal/favorites"
	"github.com/basfactory/stock-analyzer/internal/marketdata"
	"github.com/basfactory/stock-analyzer/internal/news"
)

type stubProvider struct {
	bars map[string][]models.PriceBar
	info map[string]models.CompanyInfo
}

func (s *stubProvider) History(_ context.Context, symbol string, _ models.Period) ([]models.PriceBar, error) {
	return s.bars[symbol], nil
}

func (s *stubProvider) HistoryRange(_ context.Context, symbol string, _, _ time.Time) ([]models.PriceBar, error) {
	return s.bars[symbol], nil
}

func (s *stubProvider) Info(_ context.Context, symbol string) (models.CompanyInfo, error) {
	return s.info[symbol], nil
}

type stubFavStore struct {
	entries []models.FavoriteEntry
	addErr  error
}

func (s *stubFavStore) Add(_ context.Context, symbol, companyName string) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.entries = append(s.entries, models.FavoriteEntry{Symbol: symbol, CompanyName: companyName})
	return nil
}

func (s *stubFavStore) Remove(_ context.Context, symbol string) error {
	for i, e := range s.entries {
		if e.Symbol == symbol {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return favorites.ErrNotFound
}

func (s *stubFavStore) List(_ context.Context) ([]models.FavoriteEntry, error) {
	return s.entries, nil
}

func (s *stubFavStore) Contains(_ context.Context, symbol string) (bool, error) {
	for _, e := range s.entries {
		if e.Symbol == symbol {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubFavStore) Count(_ context.Context) (int, error) {
	return len(s.entries), nil
}

type stubNewsClient struct{}

func (stubNewsClient) Search(_ context.Context, query, _ string, _ int) ([]news.ProviderArticle, error) {
	return []news.ProviderArticle{{Title: "article for " + query, PublishedAt: "2025-03-01T10:00:00Z"}}, nil
}

func (stubNewsClient) HasCredential() bool { return true }

func newTestHandler(provider marketdata.Provider, store favorites.Store) *DashboardHandler {
	market := marketdata.NewCache(provider, 16, nil, nil)
	favs := favorites.NewService(store, nil)
	agg := news.NewAggregator(stubNewsClient{}, news.NewQueryBuilder(nil, nil), nil, nil)
	return NewDashboardHandler(nil, market, favs, agg)
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doRequest(t *testing.T, h *DashboardHandler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func barsFor(closes ...float64) []models.PriceBar {
	bars := make([]models.PriceBar, len(closes))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = models.PriceBar{Timestamp: base.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c}
	}
	return bars
}

func TestChartPartialSuccess(t *testing.T) {
	provider := &stubProvider{
		bars: map[string][]models.PriceBar{"AAPL": barsFor(1, 2, 3, 4, 5)},
		info: map[string]models.CompanyInfo{"AAPL": {Symbol: "AAPL", ShortName: "Apple Inc."}},
	}
	h := newTestHandler(provider, &stubFavStore{})

	_, env := doRequest(t, h, http.MethodGet, "/api/chart?symbols=AAPL,MISSING&period=1mo&ma=3", "")
	assert.Equal(t, http.StatusOK, env.Status)

	var resp ChartResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))

	assert.Equal(t, 2, resp.Requested)
	assert.Equal(t, 1, resp.Succeeded)
	require.Len(t, resp.Results, 1)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, "MISSING", resp.Failures[0].Symbol)

	got := resp.Results[0]
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Len(t, got.Bars, 5)
	require.NotNil(t, got.SMA)
	if diff := cmp.Diff([]float64{2, 3, 4}, got.SMA.Values); diff != "" {
		t.Errorf("sma values mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, got.SMA.Start)
	assert.Nil(t, got.Bollinger)
}

func TestChartBollingerOverlay(t *testing.T) {
	provider := &stubProvider{bars: map[string][]models.PriceBar{"AAPL": barsFor(1, 2, 3, 4)}}
	h := newTestHandler(provider, &stubFavStore{})

	_, env := doRequest(t, h, http.MethodGet, "/api/chart?symbols=AAPL&period=1mo&bb=3", "")

	var resp ChartResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.Len(t, resp.Results, 1)
	bands := resp.Results[0].Bollinger
	require.NotNil(t, bands)
	require.Len(t, bands.Middle.Values, 2)
	for i := range bands.Middle.Values {
		assert.GreaterOrEqual(t, bands.Upper.Values[i], bands.Middle.Values[i])
		assert.GreaterOrEqual(t, bands.Middle.Values[i], bands.Lower.Values[i])
	}
}

func TestChartRejectsBadPeriod(t *testing.T) {
	h := newTestHandler(&stubProvider{}, &stubFavStore{})

	_, env := doRequest(t, h, http.MethodGet, "/api/chart?symbols=AAPL&period=7y", "")
	assert.Equal(t, http.StatusBadRequest, env.Status)
}

func TestAddFavorite(t *testing.T) {
	provider := &stubProvider{
		bars: map[string][]models.PriceBar{"AAPL": barsFor(1)},
		info: map[string]models.CompanyInfo{"AAPL": {Symbol: "AAPL", ShortName: "Apple Inc."}},
	}
	store := &stubFavStore{}
	h := newTestHandler(provider, store)

	_, env := doRequest(t, h, http.MethodPost, "/api/favorites", `{"symbol":"aapl"}`)
	assert.Equal(t, http.StatusCreated, env.Status)

	require.Len(t, store.entries, 1)
	assert.Equal(t, "AAPL", store.entries[0].Symbol, "symbol normalized before persisting")
	assert.Equal(t, "Apple Inc.", store.entries[0].CompanyName, "company name backfilled from provider info")
}

func TestAddFavoriteUnknownSymbol(t *testing.T) {
	h := newTestHandler(&stubProvider{}, &stubFavStore{})

	_, env := doRequest(t, h, http.MethodPost, "/api/favorites", `{"symbol":"NOPE"}`)
	assert.Equal(t, http.StatusBadRequest, env.Status)
}

func TestAddFavoriteDuplicate(t *testing.T) {
	provider := &stubProvider{bars: map[string][]models.PriceBar{"AAPL": barsFor(1)}}
	h := newTestHandler(provider, &stubFavStore{addErr: favorites.ErrAlreadyExists})

	_, env := doRequest(t, h, http.MethodPost, "/api/favorites", `{"symbol":"AAPL"}`)
	assert.Equal(t, http.StatusConflict, env.Status)
}

func TestAddFavoriteCapacity(t *testing.T) {
	provider := &stubProvider{bars: map[string][]models.PriceBar{"AAPL": barsFor(1)}}
	h := newTestHandler(provider, &stubFavStore{addErr: favorites.ErrCapacityExceeded})

	_, env := doRequest(t, h, http.MethodPost, "/api/favorites", `{"symbol":"AAPL"}`)
	assert.Equal(t, http.StatusConflict, env.Status)
}

func TestRemoveFavorite(t *testing.T) {
	store := &stubFavStore{entries: []models.FavoriteEntry{{Symbol: "AAPL"}}}
	h := newTestHandler(&stubProvider{}, store)

	_, env := doRequest(t, h, http.MethodDelete, "/api/favorites/AAPL", "")
	assert.Equal(t, http.StatusOK, env.Status)
	assert.Empty(t, store.entries)

	_, env = doRequest(t, h, http.MethodDelete, "/api/favorites/AAPL", "")
	assert.Equal(t, http.StatusNotFound, env.Status)
}

func TestListFavorites(t *testing.T) {
	store := &stubFavStore{entries: []models.FavoriteEntry{{Symbol: "AAPL"}, {Symbol: "GOOGL"}}}
	h := newTestHandler(&stubProvider{}, store)

	_, env := doRequest(t, h, http.MethodGet, "/api/favorites", "")
	assert.Equal(t, http.StatusOK, env.Status)

	var resp struct {
		Count    int `json:"count"`
		Capacity int `json:"capacity"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, favorites.Capacity, resp.Capacity)
}

func TestNewsRequiresSymbols(t *testing.T) {
	h := newTestHandler(&stubProvider{}, &stubFavStore{})

	_, env := doRequest(t, h, http.MethodGet, "/api/news", "")
	assert.Equal(t, http.StatusBadRequest, env.Status)
}

func TestNewsBySymbols(t *testing.T) {
	h := newTestHandler(&stubProvider{}, &stubFavStore{})

	_, env := doRequest(t, h, http.MethodGet, "/api/news?symbols=AAPL,GOOGL", "")
	assert.Equal(t, http.StatusOK, env.Status)

	var resp news.AggregateResult
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	if diff := cmp.Diff([]string{"AAPL", "GOOGL"}, resp.Symbols); diff != "" {
		t.Errorf("symbols mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, resp.Articles, 2)
}

func TestFavoritesNewsEmptyWatchlist(t *testing.T) {
	h := newTestHandler(&stubProvider{}, &stubFavStore{})

	_, env := doRequest(t, h, http.MethodGet, "/api/news/favorites", "")
	assert.Equal(t, http.StatusOK, env.Status)

	var resp news.AggregateResult
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, "no favorites registered", resp.Message)
}
