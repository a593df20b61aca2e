package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basfactory/stock-analyzer/internal/domain/models"
)

type fakeProvider struct {
	bars      map[string][]models.PriceBar
	info      map[string]models.CompanyInfo
	err       error
	histCalls int
}

func (f *fakeProvider) History(_ context.Context, symbol string, _ models.Period) ([]models.PriceBar, error) {
	f.histCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.bars[symbol], nil
}

func (f *fakeProvider) HistoryRange(_ context.Context, symbol string, _, _ time.Time) ([]models.PriceBar, error) {
	f.histCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.bars[symbol], nil
}

func (f *fakeProvider) Info(_ context.Context, symbol string) (models.CompanyInfo, error) {
	if f.err != nil {
		return models.CompanyInfo{}, f.err
	}
	return f.info[symbol], nil
}

func someBars(n int) []models.PriceBar {
	bars := make([]models.PriceBar, n)
	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = models.PriceBar{
			Timestamp: base.AddDate(0, 0, i),
			Open:      100 + float64(i),
			High:      101 + float64(i),
			Low:       99 + float64(i),
			Close:     100.5 + float64(i),
			Volume:    1000,
		}
	}
	return bars
}

func TestGetSeriesCachesSecondCall(t *testing.T) {
	p := &fakeProvider{bars: map[string][]models.PriceBar{"AAPL": someBars(5)}}
	c := NewCache(p, 16, nil, nil)

	first, err := c.GetSeries(context.Background(), "aapl", models.Period1Y)
	require.NoError(t, err)
	second, err := c.GetSeries(context.Background(), "AAPL", models.Period1Y)
	require.NoError(t, err)

	assert.Equal(t, first.Bars, second.Bars)
	assert.Equal(t, 1, p.histCalls, "second call must be served from cache")
}

func TestGetSeriesEmptyIsNoDataAndNotCached(t *testing.T) {
	p := &fakeProvider{bars: map[string][]models.PriceBar{}}
	c := NewCache(p, 16, nil, nil)

	_, err := c.GetSeries(context.Background(), "ZZZZ", models.Period1M)
	require.ErrorIs(t, err, ErrNoData)

	_, err = c.GetSeries(context.Background(), "ZZZZ", models.Period1M)
	require.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, 2, p.histCalls, "empty results must not be cached")
}

func TestGetSeriesProviderFault(t *testing.T) {
	p := &fakeProvider{err: errors.New("connection refused")}
	c := NewCache(p, 16, nil, nil)

	_, err := c.GetSeries(context.Background(), "AAPL", models.Period1Y)

	var unavailable *DataUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "AAPL", unavailable.Symbol)
}

func TestGetSeriesInvalidPeriod(t *testing.T) {
	c := NewCache(&fakeProvider{}, 16, nil, nil)
	_, err := c.GetSeries(context.Background(), "AAPL", "7w")
	require.Error(t, err)
}

func TestGetSeriesRangeBypassesCache(t *testing.T) {
	p := &fakeProvider{bars: map[string][]models.PriceBar{"AAPL": someBars(3)}}
	c := NewCache(p, 16, nil, nil)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	_, err := c.GetSeriesRange(context.Background(), "AAPL", start, end)
	require.NoError(t, err)
	_, err = c.GetSeriesRange(context.Background(), "AAPL", start, end)
	require.NoError(t, err)
	assert.Equal(t, 2, p.histCalls)
}

func TestCompanyInfoDegradesOnFault(t *testing.T) {
	p := &fakeProvider{err: errors.New("timeout")}
	c := NewCache(p, 16, nil, nil)

	info := c.CompanyInfo(context.Background(), "aapl")
	assert.Equal(t, "AAPL", info.ShortName)
	assert.Equal(t, "USD", info.Currency)
	assert.Equal(t, "Unknown", info.Exchange)
}

func TestCompanyInfoFillsMissingFields(t *testing.T) {
	p := &fakeProvider{info: map[string]models.CompanyInfo{
		"AAPL": {ShortName: "Apple Inc."},
	}}
	c := NewCache(p, 16, nil, nil)

	info := c.CompanyInfo(context.Background(), "AAPL")
	assert.Equal(t, "Apple Inc.", info.ShortName)
	assert.Equal(t, "Apple Inc.", info.LongName)
	assert.Equal(t, "USD", info.Currency)
}

func TestValidateSymbol(t *testing.T) {
	p := &fakeProvider{bars: map[string][]models.PriceBar{"AAPL": someBars(1)}}
	c := NewCache(p, 16, nil, nil)

	assert.True(t, c.ValidateSymbol(context.Background(), "AAPL"))
	assert.False(t, c.ValidateSymbol(context.Background(), "NOPE"))
	assert.False(t, c.ValidateSymbol(context.Background(), "  "))

	p.err = errors.New("unreachable")
	assert.False(t, c.ValidateSymbol(context.Background(), "AAPL"), "provider fault must read as invalid")
}
