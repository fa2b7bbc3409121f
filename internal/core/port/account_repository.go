package port

import (
	"context"

	"github.com/filipal/graph-platform-iam/internal/core/domain"
)

// AccountRepository persists accounts and resolves them by identifier.
type AccountRepository interface {
	// Create inserts the account and returns the store-assigned id. A
	// duplicate username or email yields repository.ErrConflict; the store's
	// uniqueness constraints decide concurrent races, so exactly one of two
	// simultaneous duplicate registrations wins.
	Create(ctx context.Context, account domain.Account) (int64, error)
	// GetByID retrieves an account by id.
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	// GetByIdentifier retrieves an account whose username or email equals
	// the identifier, matched case-sensitively.
	GetByIdentifier(ctx context.Context, identifier string) (*domain.Account, error)
}
