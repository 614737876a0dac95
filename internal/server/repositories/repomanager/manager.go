package repomanager

import (
	"context"

	"github.com/dmitrijs2005/verikeep/internal/server/repositories/accounts"
)

// TxFunc is a unit of work executed against a transactional repository.
type TxFunc func(ctx context.Context, repo accounts.Repository) error

// RepositoryManager vends account repositories, runs units of work inside a
// single store transaction and prepares the schema.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	// Accounts returns a repository outside of any transaction.
	Accounts() accounts.Repository
	// InTx commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn TxFunc) error
	Close() error
}
