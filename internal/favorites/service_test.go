package favorites

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/basfactory/stock-analyzer/internal/domain/models"
)

type fakeStore struct {
	entries []models.FavoriteEntry
	addErr  error
	err     error
}

func (f *fakeStore) Add(_ context.Context, symbol, companyName string) error {
	if f.addErr != nil {
		return f.addErr
	}
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, models.FavoriteEntry{
		Symbol: symbol, CompanyName: companyName, AddedAt: time.Now(),
	})
	return nil
}

func (f *fakeStore) Remove(_ context.Context, symbol string) error {
	if f.err != nil {
		return f.err
	}
	for i, e := range f.entries {
		if e.Symbol == symbol {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeStore) List(_ context.Context) ([]models.FavoriteEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

func (f *fakeStore) Contains(_ context.Context, symbol string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, e := range f.entries {
		if e.Symbol == symbol {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Count(_ context.Context) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return len(f.entries), nil
}

func TestServiceAddResultCodes(t *testing.T) {
	tests := []struct {
		name     string
		symbol   string
		addErr   error
		wantOK   bool
		wantCode string
	}{
		{"success", "AAPL", nil, true, CodeOK},
		{"capacity", "AAPL", ErrCapacityExceeded, false, CodeCapacityExceeded},
		{"duplicate", "AAPL", ErrAlreadyExists, false, CodeAlreadyExists},
		{"infra fault degrades", "AAPL", errors.New("connection refused"), false, CodeUnavailable},
		{"empty symbol", "   ", nil, false, CodeInvalidSymbol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&fakeStore{addErr: tt.addErr}, nil)
			res := svc.Add(context.Background(), tt.symbol, "")
			assert.Equal(t, tt.wantOK, res.OK)
			assert.Equal(t, tt.wantCode, res.Code)
		})
	}
}

func TestServiceRemoveNotFound(t *testing.T) {
	svc := NewService(&fakeStore{}, nil)
	res := svc.Remove(context.Background(), "GOOGL")
	assert.False(t, res.OK)
	assert.Equal(t, CodeNotFound, res.Code)
}

func TestServiceDegradesOnStoreFault(t *testing.T) {
	svc := NewService(&fakeStore{err: errors.New("connection refused")}, nil)
	ctx := context.Background()

	assert.Empty(t, svc.List(ctx))
	assert.Empty(t, svc.Symbols(ctx))
	assert.False(t, svc.Contains(ctx, "AAPL"))
	assert.Zero(t, svc.Count(ctx))

	res := svc.Remove(ctx, "AAPL")
	assert.False(t, res.OK)
	assert.Equal(t, CodeUnavailable, res.Code)
}

func TestServiceSymbolsPreservesOrder(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, nil)
	ctx := context.Background()

	svc.Add(ctx, "AAPL", "Apple")
	svc.Add(ctx, "GOOGL", "Google")

	assert.Equal(t, []string{"AAPL", "GOOGL"}, svc.Symbols(ctx))
}
