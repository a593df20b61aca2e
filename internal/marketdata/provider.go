package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/basfactory/stock-analyzer/internal/domain/models"
)

// ErrNoData means the provider answered but has no bars for the request.
// It is a negative result, not a fault.
var ErrNoData = errors.New("marketdata: no data for request")

// DataUnavailableError is an upstream fault while fetching price data.
type DataUnavailableError struct {
	Symbol string
	Err    error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("marketdata: data unavailable for %s: %v", e.Symbol, e.Err)
}

func (e *DataUnavailableError) Unwrap() error {
	return e.Err
}

// Provider fetches historical bars and display metadata from the external
// market-data source. Implementations must bound every call with a timeout.
type Provider interface {
	History(ctx context.Context, symbol string, period models.Period) ([]models.PriceBar, error)
	HistoryRange(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error)
	Info(ctx context.Context, symbol string) (models.CompanyInfo, error)
}
