package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/altamimi/custody-ledger/internal/domain/entity"
)

// MemoryStore keeps both collections in memory behind the same snapshot
// contract as SQLiteStore. It round-trips records through JSON so callers
// never share backing slices with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	// SaveErr, when set, is returned by every save. Lets tests exercise
	// the unreachable-store paths of the ledger service.
	SaveErr error
}

// NewMemoryStore creates an empty in-memory store; the first LoadEmployees
// call seeds it like a fresh on-disk store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) LoadEmployees(ctx context.Context) []entity.Employee {
	m.mu.RLock()
	body, ok := m.data[KeyEmployees]
	m.mu.RUnlock()
	if !ok {
		seed := SeedEmployees()
		_ = m.SaveEmployees(ctx, seed)
		return seed
	}

	var employees []entity.Employee
	if err := json.Unmarshal(body, &employees); err != nil {
		return SeedEmployees()
	}
	return employees
}

func (m *MemoryStore) LoadExpenses(_ context.Context) []entity.Expense {
	m.mu.RLock()
	body, ok := m.data[KeyExpenses]
	m.mu.RUnlock()
	if !ok {
		return []entity.Expense{}
	}

	var expenses []entity.Expense
	if err := json.Unmarshal(body, &expenses); err != nil {
		return []entity.Expense{}
	}
	return expenses
}

func (m *MemoryStore) SaveEmployees(_ context.Context, employees []entity.Employee) error {
	return m.save(KeyEmployees, employees)
}

func (m *MemoryStore) SaveExpenses(_ context.Context, expenses []entity.Expense) error {
	return m.save(KeyExpenses, expenses)
}

func (m *MemoryStore) save(key string, collection interface{}) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	body, err := json.Marshal(collection)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = body
	m.mu.Unlock()
	return nil
}
