package news

import (
	"fmt"
	"strings"
)

// marketSuffix marks Tokyo-listed instruments ("7203.T").
const marketSuffix = ".T"

// Raw ticker symbols alone give poor full-text recall from a general news
// index, so queries are widened with curated display names where known.

// defaultMarketCodes maps suffix-stripped Tokyo exchange codes to display
// names used in news coverage.
var defaultMarketCodes = map[string]string{
	"7203": "トヨタ自動車",
	"9984": "ソフトバンクグループ",
	"6758": "ソニーグループ",
	"8035": "東京エレクトロン",
	"4689": "LINEヤフー",
	"6861": "キーエンス",
	"9434": "Softbank",
	"4502": "武田薬品工業",
	"8058": "三菱商事",
	"9432": "NTT",
}

// defaultSymbolNames maps well-known suffix-less tickers to company names.
var defaultSymbolNames = map[string]string{
	"AAPL":  "Apple",
	"GOOGL": "Google",
	"MSFT":  "Microsoft",
	"AMZN":  "Amazon",
	"TSLA":  "Tesla",
	"META":  "Meta",
	"NFLX":  "Netflix",
	"NVDA":  "NVIDIA",
}

// QueryBuilder synthesizes provider search queries from symbols. Extra
// entries from configuration are merged over the built-in tables.
type QueryBuilder struct {
	marketCodes map[string]string
	symbolNames map[string]string
}

func NewQueryBuilder(extraNames, extraCodes map[string]string) *QueryBuilder {
	qb := &QueryBuilder{
		marketCodes: make(map[string]string, len(defaultMarketCodes)+len(extraCodes)),
		symbolNames: make(map[string]string, len(defaultSymbolNames)+len(extraNames)),
	}
	for k, v := range defaultMarketCodes {
		qb.marketCodes[k] = v
	}
	for k, v := range extraCodes {
		qb.marketCodes[k] = v
	}
	for k, v := range defaultSymbolNames {
		qb.symbolNames[k] = v
	}
	for k, v := range extraNames {
		qb.symbolNames[k] = v
	}
	return qb
}

// Build returns the disjunctive search query for a symbol.
func (qb *QueryBuilder) Build(symbol string) string {
	if strings.HasSuffix(symbol, marketSuffix) {
		base := strings.TrimSuffix(symbol, marketSuffix)
		if name, ok := qb.marketCodes[base]; ok {
			return fmt.Sprintf("%q OR %q OR %q", name, symbol, base)
		}
		return fmt.Sprintf("%q OR %q OR %q", symbol, base, "銘柄コード "+base)
	}

	if name, ok := qb.symbolNames[symbol]; ok {
		return fmt.Sprintf("%q OR %q", name, symbol)
	}
	return fmt.Sprintf("%q", symbol)
}
