package engine

import (
	"context"
	"sync"

	"ledger/internal/core"
	"ledger/internal/storage"
)

// memStore is an in-memory Store for engine tests. Batch operations
// mirror the real store's atomicity so the engine's contracts can be
// asserted without SQLite.
type memStore struct {
	mu         sync.Mutex
	nextID     int64
	accounts   map[int64]core.Account
	txs        []core.Transaction
	failInsert bool // when set, InsertTransactions fails without writing
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, accounts: map[int64]core.Account{}}
}

func (m *memStore) addAccount(userID int64, name string) core.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := core.Account{ID: m.nextID, UserID: userID, Name: name}
	m.nextID++
	m.accounts[a.ID] = a
	return a
}

func (m *memStore) GetAccount(_ context.Context, id int64) (core.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return core.Account{}, storage.ErrNotFound
	}
	return a, nil
}

func (m *memStore) GetAccountByName(_ context.Context, userID int64, name string) (core.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.UserID == userID && a.Name == name {
			return a, nil
		}
	}
	return core.Account{}, storage.ErrNotFound
}

func (m *memStore) ListAccounts(_ context.Context, userID int64) ([]core.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Account
	for id := int64(0); id < m.nextID; id++ {
		if a, ok := m.accounts[id]; ok && a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) CreateAccount(_ context.Context, userID int64, name string) (core.Account, error) {
	return m.addAccount(userID, name), nil
}

func (m *memStore) RenameAccount(_ context.Context, id int64, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return storage.ErrNotFound
	}
	a.Name = name
	m.accounts[id] = a
	return nil
}

func (m *memStore) DeleteAccount(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.accounts, id)
	kept := m.txs[:0]
	for _, t := range m.txs {
		if t.AccountID != id {
			kept = append(kept, t)
		}
	}
	m.txs = kept
	return nil
}

func (m *memStore) ListTransactions(_ context.Context, accountID int64) ([]core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Transaction
	for _, t := range m.txs {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) InsertTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.nextID
	m.nextID++
	m.txs = append(m.txs, t)
	return t, nil
}

func (m *memStore) InsertTransactions(ctx context.Context, accountID int64, txs []core.Transaction) (int, error) {
	m.mu.Lock()
	failing := m.failInsert
	m.mu.Unlock()
	if failing {
		return 0, context.DeadlineExceeded
	}
	for _, t := range txs {
		t.AccountID = accountID
		if _, err := m.InsertTransaction(ctx, t); err != nil {
			return 0, err
		}
	}
	return len(txs), nil
}

func (m *memStore) DeleteTransactionsByAccount(_ context.Context, accountID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.txs[:0]
	for _, t := range m.txs {
		if t.AccountID != accountID {
			kept = append(kept, t)
		}
	}
	m.txs = kept
	return nil
}
