package favorites

import (
	"context"
	"errors"
	"fmt"

	"github.com/basfactory/stock-analyzer/internal/domain/models"
	"github.com/basfactory/stock-analyzer/pkg/logger"
)

// Result codes for add/remove outcomes.
const (
	CodeOK               = "ok"
	CodeCapacityExceeded = "capacity_exceeded"
	CodeAlreadyExists    = "already_exists"
	CodeNotFound         = "not_found"
	CodeInvalidSymbol    = "invalid_symbol"
	CodeUnavailable      = "unavailable"
)

// Result is the user-facing outcome of a mutation.
type Result struct {
	OK      bool   `json:"ok"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Service wraps a Store with the availability-over-consistency policy: policy
// violations surface as negative results, and backing-store faults degrade to
// no-effect/empty/false outcomes with a logged warning instead of propagating
// to the caller.
type Service struct {
	store  Store
	logger *logger.Logger
}

func NewService(store Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{store: store, logger: log}
}

func (s *Service) Add(ctx context.Context, symbol, companyName string) Result {
	normalized, err := models.NormalizeSymbol(symbol)
	if err != nil {
		return Result{Code: CodeInvalidSymbol, Message: "symbol must not be empty"}
	}

	switch err := s.store.Add(ctx, normalized, companyName); {
	case err == nil:
		s.logger.Info("favorite added", logger.String("symbol", normalized))
		return Result{OK: true, Code: CodeOK, Message: fmt.Sprintf("added %s to favorites", normalized)}
	case errors.Is(err, ErrCapacityExceeded):
		return Result{Code: CodeCapacityExceeded, Message: fmt.Sprintf("favorites are limited to %d symbols", Capacity)}
	case errors.Is(err, ErrAlreadyExists):
		return Result{Code: CodeAlreadyExists, Message: fmt.Sprintf("%s is already a favorite", normalized)}
	default:
		s.logger.Warn("favorite add degraded", logger.String("symbol", normalized), logger.Error(err))
		return Result{Code: CodeUnavailable, Message: fmt.Sprintf("could not add %s", normalized)}
	}
}

func (s *Service) Remove(ctx context.Context, symbol string) Result {
	normalized, err := models.NormalizeSymbol(symbol)
	if err != nil {
		return Result{Code: CodeInvalidSymbol, Message: "symbol must not be empty"}
	}

	switch err := s.store.Remove(ctx, normalized); {
	case err == nil:
		s.logger.Info("favorite removed", logger.String("symbol", normalized))
		return Result{OK: true, Code: CodeOK, Message: fmt.Sprintf("removed %s from favorites", normalized)}
	case errors.Is(err, ErrNotFound):
		return Result{Code: CodeNotFound, Message: fmt.Sprintf("%s is not a favorite", normalized)}
	default:
		s.logger.Warn("favorite remove degraded", logger.String("symbol", normalized), logger.Error(err))
		return Result{Code: CodeUnavailable, Message: fmt.Sprintf("could not remove %s", normalized)}
	}
}

// List returns entries ordered by added_date ascending; empty on store fault.
func (s *Service) List(ctx context.Context) []models.FavoriteEntry {
	entries, err := s.store.List(ctx)
	if err != nil {
		s.logger.Warn("favorite list degraded", logger.Error(err))
		return []models.FavoriteEntry{}
	}
	return entries
}

// Symbols returns the favorite symbols in list order.
func (s *Service) Symbols(ctx context.Context) []string {
	entries := s.List(ctx)
	symbols := make([]string, len(entries))
	for i, e := range entries {
		symbols[i] = e.Symbol
	}
	return symbols
}

func (s *Service) Contains(ctx context.Context, symbol string) bool {
	ok, err := s.store.Contains(ctx, symbol)
	if err != nil {
		s.logger.Warn("favorite contains degraded", logger.String("symbol", symbol), logger.Error(err))
		return false
	}
	return ok
}

func (s *Service) Count(ctx context.Context) int {
	count, err := s.store.Count(ctx)
	if err != nil {
		s.logger.Warn("favorite count degraded", logger.Error(err))
		return 0
	}
	return count
}
