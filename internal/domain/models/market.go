package models

import (
	"fmt"
	"strings"
	"time"
)

// Period is a relative time window accepted by the market-data provider.
type Period string

const (
	Period1D  Period = "1d"
	Period5D  Period = "5d"
	Period1M  Period = "1mo"
	Period3M  Period = "3mo"
	Period6M  Period = "6mo"
	Period1Y  Period = "1y"
	Period2Y  Period = "2y"
	Period5Y  Period = "5y"
	Period10Y Period = "10y"
	PeriodYTD Period = "ytd"
	PeriodMax Period = "max"
)

var validPeriods = map[Period]bool{
	Period1D: true, Period5D: true, Period1M: true, Period3M: true,
	Period6M: true, Period1Y: true, Period2Y: true, Period5Y: true,
	Period10Y: true, PeriodYTD: true, PeriodMax: true,
}

// Valid reports whether p is one of the enumerated provider periods.
func (p Period) Valid() bool {
	return validPeriods[p]
}

// NormalizeSymbol trims and upper-cases an instrument identifier.
// Exchange suffixes such as ".T" are preserved.
func NormalizeSymbol(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", fmt.Errorf("symbol is empty")
	}
	return s, nil
}

// PriceBar is a single OHLCV record.
type PriceBar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// PriceSeries is an ordered bar sequence, timestamps ascending.
type PriceSeries struct {
	Symbol string     `json:"symbol"`
	Bars   []PriceBar `json:"bars"`
}

// Closes extracts the close-price column.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// CompanyInfo is display metadata for an instrument.
type CompanyInfo struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"short_name"`
	LongName  string `json:"long_name"`
	Currency  string `json:"currency"`
	Exchange  string `json:"exchange"`
}
