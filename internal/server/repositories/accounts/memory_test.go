package accounts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/verikeep/internal/common"
	"github.com/dmitrijs2005/verikeep/internal/server/models"
)

func TestMemoryStore_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Repository()

	a := pendingAccount()
	_, err := repo.Create(ctx, a)
	require.NoError(t, err)

	dup := pendingAccount()
	dup.ID = "other"
	_, err = repo.Create(ctx, dup)
	assert.ErrorIs(t, err, common.ErrorDuplicateEmail)

	got, err := repo.GetByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	got.MarkVerified(ts)
	require.NoError(t, repo.Update(ctx, got))

	byID, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, byID.IsVerified)
	assert.False(t, byID.HasPendingCode())

	require.NoError(t, repo.Delete(ctx, a.ID))
	_, err = repo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, a.ID), common.ErrorNotFound)
	assert.ErrorIs(t, repo.Update(ctx, a), common.ErrorNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Repository()

	_, err := repo.Create(ctx, pendingAccount())
	require.NoError(t, err)

	got, err := repo.GetByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	got.SetCode("999999", ts)

	again, err := repo.GetByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, "123456", *again.VerificationCode)
}

func TestMemoryStore_InTxRollsBack(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, err := store.Repository().Create(ctx, pendingAccount())
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.InTx(ctx, func(ctx context.Context, repo Repository) error {
		a, err := repo.GetByEmailForUpdate(ctx, "ann@x.com")
		require.NoError(t, err)
		a.MarkVerified(ts)
		require.NoError(t, repo.Update(ctx, a))

		n := &models.Account{ID: "b", Email: "bob@x.com"}
		_, err = repo.Create(ctx, n)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	a, err := store.Repository().GetByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.False(t, a.IsVerified)
	assert.True(t, a.HasPendingCode())

	_, err = store.Repository().GetByEmail(ctx, "bob@x.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryStore_InTxRollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.Panics(t, func() {
		_ = store.InTx(ctx, func(ctx context.Context, repo Repository) error {
			_, _ = repo.Create(ctx, pendingAccount())
			panic("kaput")
		})
	})

	n, err := store.Repository().Count(ctx, models.Filter{})
	require.NoError(t, err)
	assert.Zero(t, n)

	// the store is still usable after a panic
	_, err = store.Repository().Create(ctx, pendingAccount())
	require.NoError(t, err)
}

func TestMemoryStore_Count(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Repository()

	for i, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		a := &models.Account{ID: email, Email: email, IsVerified: i == 0}
		_, err := repo.Create(ctx, a)
		require.NoError(t, err)
	}

	yes, no := true, false
	total, _ := repo.Count(ctx, models.Filter{})
	verified, _ := repo.Count(ctx, models.Filter{Verified: &yes})
	pending, _ := repo.Count(ctx, models.Filter{Verified: &no})

	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(1), verified)
	assert.Equal(t, int64(2), pending)
}

func TestMemoryStore_ConcurrentTransactions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, err := store.Repository().Create(ctx, pendingAccount())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.InTx(ctx, func(ctx context.Context, repo Repository) error {
				a, err := repo.GetByEmailForUpdate(ctx, "ann@x.com")
				if err != nil {
					return err
				}
				a.SetCode("000000", ts.Add(time.Duration(i)*time.Second))
				return repo.Update(ctx, a)
			})
		}(i)
	}
	wg.Wait()

	a, err := store.Repository().GetByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	require.True(t, a.HasPendingCode())
	assert.Equal(t, "000000", *a.VerificationCode)
}
