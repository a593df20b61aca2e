package models

// ChartRequest selects price history and optional indicator overlays for one
// or more comma-separated symbols.
type ChartRequest struct {
	Symbols  string  `query:"symbols" json:"symbols" validate:"required"`
	Period   string  `query:"period" json:"period" default:"1y" validate:"oneof=1d 5d 1mo 3mo 6mo 1y 2y 5y 10y ytd max"`
	MAWindow int     `query:"ma" json:"ma" validate:"gte=0,lte=500"`
	BBWindow int     `query:"bb" json:"bb" validate:"gte=0,lte=500"`
	BBK      float64 `query:"bb_k" json:"bb_k" default:"2" validate:"gte=0"`
}

// AddFavoriteRequest registers a symbol on the watchlist.
type AddFavoriteRequest struct {
	Symbol      string `json:"symbol" validate:"required"`
	CompanyName string `json:"company_name"`
}

// NewsRequest fetches recent articles for comma-separated symbols.
type NewsRequest struct {
	Symbols  string `query:"symbols" json:"symbols" validate:"required"`
	Language string `query:"language" json:"language" default:"ja" validate:"oneof=ja en"`
	PageSize int    `query:"page_size" json:"page_size" default:"10" validate:"gte=1,lte=100"`
}

// FavoritesNewsRequest fetches recent articles for the current watchlist.
type FavoritesNewsRequest struct {
	Language string `query:"language" json:"language" default:"ja" validate:"oneof=ja en"`
	PageSize int    `query:"page_size" json:"page_size" default:"10" validate:"gte=1,lte=100"`
}
