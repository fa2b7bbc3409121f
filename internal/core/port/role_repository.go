package port

import (
	"context"

	"github.com/filipal/graph-platform-iam/internal/core/domain"
)

// RoleRepository persists the one-to-one account to role mapping.
type RoleRepository interface {
	// Assign creates the role assignment for an account. It fails with
	// repository.ErrConflict when the account already holds a role and with
	// repository.ErrNotFound when the account does not exist.
	Assign(ctx context.Context, accountID int64, role domain.Role) error
	// Get returns the role held by the account or repository.ErrNotFound.
	Get(ctx context.Context, accountID int64) (domain.Role, error)
	// Update replaces the account's role assignment, failing with
	// repository.ErrNotFound when no assignment exists.
	Update(ctx context.Context, accountID int64, role domain.Role) error
}
