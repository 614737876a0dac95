package accounts

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/verikeep/internal/common"
	"github.com/dmitrijs2005/verikeep/internal/server/models"
)

// MemoryStore keeps accounts in process memory. Transactions are serialized
// and work on a private copy that replaces the live data only on success.
type MemoryStore struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data map[string]*models.Account
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]*models.Account)}
}

// InTx runs fn against a snapshot of the store. The snapshot is committed
// when fn returns nil and discarded otherwise, including on panic.
func (s *MemoryStore) InTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := make(map[string]*models.Account, len(s.data))
	for id, a := range s.data {
		snapshot[id] = a
	}
	s.mu.RUnlock()

	repo := &memoryRepository{data: snapshot}
	if err := fn(ctx, repo); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = snapshot
	s.mu.Unlock()
	return nil
}

// Repository returns a Repository whose every call is its own transaction.
func (s *MemoryStore) Repository() Repository {
	return &autoCommitRepository{store: s}
}

// memoryRepository operates on a transaction snapshot. Stored values are
// never mutated in place: writes replace the map entry with a fresh clone, so
// the live map shared before commit stays intact.
type memoryRepository struct {
	data map[string]*models.Account
}

func (r *memoryRepository) Create(_ context.Context, account *models.Account) (*models.Account, error) {
	if _, ok := r.data[account.ID]; ok {
		return nil, fmt.Errorf("duplicate account id %s", account.ID)
	}
	if r.findByEmail(account.Email) != nil {
		return nil, common.ErrorDuplicateEmail
	}
	r.data[account.ID] = account.Clone()
	return account, nil
}

func (r *memoryRepository) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	a := r.findByEmail(email)
	if a == nil {
		return nil, common.ErrorNotFound
	}
	return a.Clone(), nil
}

func (r *memoryRepository) GetByEmailForUpdate(ctx context.Context, email string) (*models.Account, error) {
	return r.GetByEmail(ctx, email)
}

func (r *memoryRepository) GetByID(_ context.Context, id string) (*models.Account, error) {
	a, ok := r.data[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a.Clone(), nil
}

func (r *memoryRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Account, error) {
	return r.GetByID(ctx, id)
}

func (r *memoryRepository) Update(_ context.Context, account *models.Account) error {
	cur, ok := r.data[account.ID]
	if !ok {
		return common.ErrorNotFound
	}
	next := account.Clone()
	next.Email = cur.Email
	next.CreatedAt = cur.CreatedAt
	r.data[account.ID] = next
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	if _, ok := r.data[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *memoryRepository) Count(_ context.Context, filter models.Filter) (int64, error) {
	var n int64
	for _, a := range r.data {
		if filter.Verified == nil || a.IsVerified == *filter.Verified {
			n++
		}
	}
	return n, nil
}

func (r *memoryRepository) findByEmail(email string) *models.Account {
	for _, a := range r.data {
		if a.Email == email {
			return a
		}
	}
	return nil
}

type autoCommitRepository struct {
	store *MemoryStore
}

func (r *autoCommitRepository) Create(ctx context.Context, account *models.Account) (created *models.Account, err error) {
	err = r.store.InTx(ctx, func(ctx context.Context, repo Repository) error {
		created, err = repo.Create(ctx, account)
		return err
	})
	return created, err
}

func (r *autoCommitRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return (&memoryRepository{data: r.store.data}).GetByEmail(ctx, email)
}

func (r *autoCommitRepository) GetByEmailForUpdate(ctx context.Context, email string) (*models.Account, error) {
	return r.GetByEmail(ctx, email)
}

func (r *autoCommitRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return (&memoryRepository{data: r.store.data}).GetByID(ctx, id)
}

func (r *autoCommitRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Account, error) {
	return r.GetByID(ctx, id)
}

func (r *autoCommitRepository) Update(ctx context.Context, account *models.Account) error {
	return r.store.InTx(ctx, func(ctx context.Context, repo Repository) error {
		return repo.Update(ctx, account)
	})
}

func (r *autoCommitRepository) Delete(ctx context.Context, id string) error {
	return r.store.InTx(ctx, func(ctx context.Context, repo Repository) error {
		return repo.Delete(ctx, id)
	})
}

func (r *autoCommitRepository) Count(ctx context.Context, filter models.Filter) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return (&memoryRepository{data: r.store.data}).Count(ctx, filter)
}
