package favorites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/basfactory/stock-analyzer/internal/domain/models"
)

// advisoryLockID serializes concurrent capacity checks. Any process-wide
// constant works as long as all writers share it.
const advisoryLockID int64 = 7421339

const pgUniqueViolation = "23505"

// PostgresStore implements Store on the favorite_stocks table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the favorites table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const query = `
CREATE TABLE IF NOT EXISTS favorite_stocks (
    id SERIAL PRIMARY KEY,
    symbol VARCHAR(20) NOT NULL UNIQUE,
    company_name VARCHAR(100),
    added_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("EnsureSchema: %w", err)
	}
	return nil
}

// Add inserts a new favorite. The capacity check and the insert run in one
// transaction serialized by an advisory lock, so two racing adds at count
// Capacity-1 cannot both succeed.
func (s *PostgresStore) Add(ctx context.Context, symbol, companyName string) error {
	symbol, err := models.NormalizeSymbol(symbol)
	if err != nil {
		return fmt.Errorf("Add: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Add: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryLockID); err != nil {
		return fmt.Errorf("Add: lock: %w", err)
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorite_stocks`).Scan(&count); err != nil {
		return fmt.Errorf("Add: count: %w", err)
	}
	if count >= Capacity {
		return ErrCapacityExceeded
	}

	var name sql.NullString
	if companyName != "" {
		name = sql.NullString{String: companyName, Valid: true}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO favorite_stocks (symbol, company_name) VALUES ($1, $2)`,
		symbol, name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrAlreadyExists
		}
		return fmt.Errorf("Add: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Add: commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, symbol string) error {
	symbol, err := models.NormalizeSymbol(symbol)
	if err != nil {
		return fmt.Errorf("Remove: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM favorite_stocks WHERE symbol = $1`, symbol)
	if err != nil {
		return fmt.Errorf("Remove: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Remove: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.FavoriteEntry, error) {
	const query = `
SELECT symbol, company_name, added_date
FROM favorite_stocks
ORDER BY added_date ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]models.FavoriteEntry, 0, Capacity)
	for rows.Next() {
		var e models.FavoriteEntry
		var name sql.NullString
		if err := rows.Scan(&e.Symbol, &name, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		e.CompanyName = name.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) Contains(ctx context.Context, symbol string) (bool, error) {
	symbol, err := models.NormalizeSymbol(symbol)
	if err != nil {
		return false, nil
	}

	var exists bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM favorite_stocks WHERE symbol = $1)`, symbol).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("Contains: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorite_stocks`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

var _ Store = (*PostgresStore)(nil)
