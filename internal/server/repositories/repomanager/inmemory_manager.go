package repomanager

import (
	"context"

	"github.com/dmitrijs2005/verikeep/internal/server/repositories/accounts"
)

// InMemoryRepositoryManager serves repositories from an accounts.MemoryStore.
// Used when no database DSN is configured.
type InMemoryRepositoryManager struct {
	store *accounts.MemoryStore
}

func NewInMemoryRepositoryManager() RepositoryManager {
	return &InMemoryRepositoryManager{store: accounts.NewMemoryStore()}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Accounts() accounts.Repository {
	return m.store.Repository()
}

func (m *InMemoryRepositoryManager) InTx(ctx context.Context, fn TxFunc) error {
	return m.store.InTx(ctx, fn)
}

func (m *InMemoryRepositoryManager) Close() error { return nil }
