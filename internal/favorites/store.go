// Package favorites persists the capacity-bounded, symbol-unique list of
// bookmarked instruments.
package favorites

import (
	"context"
	"errors"

	"github.com/basfactory/stock-analyzer/internal/domain/models"
)

// Capacity is the maximum number of favorite entries.
const Capacity = 10

var (
	// ErrCapacityExceeded means the store already holds Capacity entries.
	ErrCapacityExceeded = errors.New("favorites: capacity exceeded")
	// ErrAlreadyExists means the symbol is already bookmarked.
	ErrAlreadyExists = errors.New("favorites: symbol already exists")
	// ErrNotFound means no entry exists for the symbol.
	ErrNotFound = errors.New("favorites: symbol not found")
)

// Store is the persistence contract. Policy violations come back as the
// sentinel errors above; anything else is an infrastructure fault.
type Store interface {
	Add(ctx context.Context, symbol, companyName string) error
	Remove(ctx context.Context, symbol string) error
	List(ctx context.Context) ([]models.FavoriteEntry, error)
	Contains(ctx context.Context, symbol string) (bool, error)
	Count(ctx context.Context) (int, error)
}
