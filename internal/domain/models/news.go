package models

import "time"

// FavoriteEntry is a bookmarked instrument. Entries are immutable once
// created; symbol is unique across the store.
type FavoriteEntry struct {
	Symbol      string    `json:"symbol"`
	CompanyName string    `json:"company_name,omitempty"`
	AddedAt     time.Time `json:"added_at"`
}

// NewsArticle is a single merged news item. PublishedAt keeps the provider's
// raw ISO-8601 string because merged sorting is defined over it; the parsed,
// timezone-adjusted rendering lives in FormattedDate.
type NewsArticle struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	PublishedAt   string `json:"published_at"`
	URL           string `json:"url"`
	Symbol        string `json:"symbol"`
	FormattedDate string `json:"formatted_date"`
}
