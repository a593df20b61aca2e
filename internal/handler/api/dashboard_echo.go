// Package api exposes the aggregation core over an Echo HTTP surface.
package api

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/basfactory/stock-analyzer/internal/domain/models"
	"github.com/basfactory/stock-analyzer/internal/favorites"
	"github.com/basfactory/stock-analyzer/internal/indicator"
	"github.com/basfactory/stock-analyzer/internal/marketdata"
	"github.com/basfactory/stock-analyzer/internal/news"
	xhttp "github.com/basfactory/stock-analyzer/pkg/http"
	xlogger "github.com/basfactory/stock-analyzer/pkg/logger"
)

// maxFailureReasons bounds the failure list on multi-symbol responses.
const maxFailureReasons = 10

// SymbolIssue reports one symbol that could not be fully served.
type SymbolIssue struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// ChartSymbolResult is the per-symbol payload of the chart endpoint.
type ChartSymbolResult struct {
	Symbol    string             `json:"symbol"`
	Period    string             `json:"period"`
	Bars      []models.PriceBar  `json:"bars"`
	SMA       *indicator.Line    `json:"sma,omitempty"`
	Bollinger *indicator.Bands   `json:"bollinger,omitempty"`
	Info      models.CompanyInfo `json:"info"`
}

// ChartResponse reports per-symbol partial success: one unavailable symbol
// never fails the batch.
type ChartResponse struct {
	Requested int                 `json:"requested"`
	Succeeded int                 `json:"succeeded"`
	Results   []ChartSymbolResult `json:"results"`
	Failures  []SymbolIssue       `json:"failures,omitempty"`
}

// DashboardHandler implements Echo-based HTTP handlers over the market-data
// cache, the favorites service, and the news aggregator.
type DashboardHandler struct {
	logger *xlogger.Logger
	market *marketdata.Cache
	favs   *favorites.Service
	news   *news.Aggregator
}

func NewDashboardHandler(logger *xlogger.Logger, market *marketdata.Cache, favs *favorites.Service, agg *news.Aggregator) *DashboardHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &DashboardHandler{logger: logger, market: market, favs: favs, news: agg}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/chart", h.Chart)
	g.GET("/favorites", h.ListFavorites)
	g.POST("/favorites", h.AddFavorite)
	g.DELETE("/favorites/:symbol", h.RemoveFavorite)
	g.GET("/news", h.News)
	g.GET("/news/favorites", h.FavoritesNews)
}

func (h *DashboardHandler) Chart(c echo.Context) error {
	req := &models.ChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	symbols := splitSymbols(req.Symbols)
	if len(symbols) == 0 {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code: "ERR_REQUIRED", Field: "symbols", Message: "symbols must name at least one instrument",
		}})
	}

	resp := ChartResponse{
		Requested: len(symbols),
		Results:   make([]ChartSymbolResult, 0, len(symbols)),
	}
	for _, symbol := range symbols {
		result, err := h.chartSymbol(c.Request().Context(), symbol, req)
		if err != nil {
			h.logger.Warn("chart symbol failed",
				xlogger.String("symbol", symbol),
				xlogger.Error(err))
			if len(resp.Failures) < maxFailureReasons {
				resp.Failures = append(resp.Failures, SymbolIssue{Symbol: symbol, Reason: err.Error()})
			}
			continue
		}
		resp.Succeeded++
		resp.Results = append(resp.Results, result)
	}
	return xhttp.SuccessResponse(c, resp)
}

func (h *DashboardHandler) chartSymbol(ctx context.Context, symbol string, req *models.ChartRequest) (ChartSymbolResult, error) {
	series, err := h.market.GetSeries(ctx, symbol, models.Period(req.Period))
	if err != nil {
		return ChartSymbolResult{}, err
	}

	result := ChartSymbolResult{
		Symbol: series.Symbol,
		Period: req.Period,
		Bars:   series.Bars,
		Info:   h.market.CompanyInfo(ctx, series.Symbol),
	}

	closes := series.Closes()
	if req.MAWindow > 0 {
		line, err := indicator.SMA(closes, req.MAWindow)
		if err != nil {
			return ChartSymbolResult{}, err
		}
		result.SMA = &line
	}
	if req.BBWindow > 0 {
		bands, err := indicator.Bollinger(closes, req.BBWindow, req.BBK)
		if err != nil {
			return ChartSymbolResult{}, err
		}
		result.Bollinger = &bands
	}
	return result, nil
}

func (h *DashboardHandler) ListFavorites(c echo.Context) error {
	entries := h.favs.List(c.Request().Context())
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"favorites": entries,
		"count":     len(entries),
		"capacity":  favorites.Capacity,
	})
}

func (h *DashboardHandler) AddFavorite(c echo.Context) error {
	req := &models.AddFavoriteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	symbol, err := models.NormalizeSymbol(req.Symbol)
	if err != nil {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code: "ERR_REQUIRED", Field: "symbol", Message: "symbol must not be empty",
		}})
	}

	ctx := c.Request().Context()
	if !h.market.ValidateSymbol(ctx, symbol) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("symbol has no price data: "+symbol))
	}

	companyName := req.CompanyName
	if companyName == "" {
		info := h.market.CompanyInfo(ctx, symbol)
		companyName = info.ShortName
	}

	result := h.favs.Add(ctx, symbol, companyName)
	switch result.Code {
	case favorites.CodeOK:
		return xhttp.CreatedResponse(c, result)
	case favorites.CodeAlreadyExists:
		return xhttp.AppErrorResponse(c, xhttp.ConflictError("ERR_ALREADY_EXISTS", result.Message))
	case favorites.CodeCapacityExceeded:
		return xhttp.AppErrorResponse(c, xhttp.ConflictError("ERR_CAPACITY_EXCEEDED", result.Message))
	default:
		// backing store unavailable; report the degraded outcome, not a fault
		return xhttp.SuccessResponse(c, result)
	}
}

func (h *DashboardHandler) RemoveFavorite(c echo.Context) error {
	symbol, err := models.NormalizeSymbol(c.Param("symbol"))
	if err != nil {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code: "ERR_REQUIRED", Field: "symbol", Message: "symbol must not be empty",
		}})
	}

	result := h.favs.Remove(c.Request().Context(), symbol)
	switch result.Code {
	case favorites.CodeOK:
		return xhttp.SuccessResponse(c, result)
	case favorites.CodeNotFound:
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("%s is not on the watchlist", symbol))
	default:
		return xhttp.SuccessResponse(c, result)
	}
}

func (h *DashboardHandler) News(c echo.Context) error {
	req := &models.NewsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	symbols := splitSymbols(req.Symbols)
	if len(symbols) == 0 {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code: "ERR_REQUIRED", Field: "symbols", Message: "symbols must name at least one instrument",
		}})
	}

	articles, failures := h.news.FetchForSymbols(c.Request().Context(), symbols, req.Language, req.PageSize)
	return xhttp.SuccessResponse(c, news.AggregateResult{
		OK:       true,
		Symbols:  symbols,
		Articles: articles,
		Failures: failures,
	})
}

func (h *DashboardHandler) FavoritesNews(c echo.Context) error {
	req := &models.FavoritesNewsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	result := h.news.FetchForFavorites(c.Request().Context(), h.favs, req.Language, req.PageSize)
	return xhttp.SuccessResponse(c, result)
}

// splitSymbols parses the comma-separated symbols query parameter.
func splitSymbols(raw string) []string {
	parts := strings.Split(raw, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		symbol, err := models.NormalizeSymbol(p)
		if err != nil {
			continue
		}
		symbols = append(symbols, symbol)
	}
	return symbols
}
