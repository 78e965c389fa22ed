package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/altamimi/custody-ledger/internal/domain/entity"
	"github.com/altamimi/custody-ledger/pkg/database"
	"go.uber.org/zap"
)

// SQLiteStore persists each collection as a single JSON document row.
type SQLiteStore struct {
	db     *database.DB
	logger *zap.Logger
}

// NewSQLiteStore creates the store and ensures its schema exists.
func NewSQLiteStore(db *database.DB, logger *zap.Logger) (*SQLiteStore, error) {
	schema := `
		CREATE TABLE IF NOT EXISTS collections (
			key        TEXT PRIMARY KEY,
			body       TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create collections table: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

// LoadEmployees returns the Employees collection, initializing it with the
// seed records when absent. Read or parse failures fall back to the seed
// set without overwriting whatever is persisted.
func (s *SQLiteStore) LoadEmployees(ctx context.Context) []entity.Employee {
	body, err := s.read(ctx, KeyEmployees)
	if err == sql.ErrNoRows {
		seed := SeedEmployees()
		if saveErr := s.SaveEmployees(ctx, seed); saveErr != nil {
			s.logger.Error("Failed to persist seed employees", zap.Error(saveErr))
		}
		return seed
	}
	if err != nil {
		s.logger.Error("Failed to read employees collection", zap.Error(err))
		return SeedEmployees()
	}

	var employees []entity.Employee
	if err := json.Unmarshal([]byte(body), &employees); err != nil {
		s.logger.Error("Failed to parse employees collection", zap.Error(err))
		return SeedEmployees()
	}
	return employees
}

// LoadExpenses returns the Expenses collection, or an empty list when
// absent or unreadable.
func (s *SQLiteStore) LoadExpenses(ctx context.Context) []entity.Expense {
	body, err := s.read(ctx, KeyExpenses)
	if err == sql.ErrNoRows {
		if saveErr := s.SaveExpenses(ctx, []entity.Expense{}); saveErr != nil {
			s.logger.Error("Failed to initialize expenses collection", zap.Error(saveErr))
		}
		return []entity.Expense{}
	}
	if err != nil {
		s.logger.Error("Failed to read expenses collection", zap.Error(err))
		return []entity.Expense{}
	}

	var expenses []entity.Expense
	if err := json.Unmarshal([]byte(body), &expenses); err != nil {
		s.logger.Error("Failed to parse expenses collection", zap.Error(err))
		return []entity.Expense{}
	}
	return expenses
}

// SaveEmployees replaces the persisted Employees collection.
func (s *SQLiteStore) SaveEmployees(ctx context.Context, employees []entity.Employee) error {
	return s.write(ctx, KeyEmployees, employees)
}

// SaveExpenses replaces the persisted Expenses collection.
func (s *SQLiteStore) SaveExpenses(ctx context.Context, expenses []entity.Expense) error {
	return s.write(ctx, KeyExpenses, expenses)
}

func (s *SQLiteStore) read(ctx context.Context, key string) (string, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM collections WHERE key = ?", key).Scan(&body)
	return body, err
}

func (s *SQLiteStore) write(ctx context.Context, key string, collection interface{}) error {
	body, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	return s.db.WithTransaction(func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO collections (key, body, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET
				body = excluded.body,
				updated_at = excluded.updated_at
		`, key, string(body))
		if err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
		return nil
	})
}
