// Package accounts is the Account Store: create, look up, update, delete and
// count account records keyed by normalized email, with a uniqueness
// constraint on email.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/verikeep/internal/server/models"
)

type Repository interface {
	// Create inserts a new account. A taken email yields common.ErrorDuplicateEmail.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	// GetByEmailForUpdate reads the account and locks it until the surrounding
	// transaction ends.
	GetByEmailForUpdate(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByIDForUpdate(ctx context.Context, id string) (*models.Account, error)
	// Update writes every mutable column. A missing account yields common.ErrorNotFound.
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, filter models.Filter) (int64, error)
}
