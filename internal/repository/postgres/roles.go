package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/filipal/graph-platform-iam/internal/core/domain"
	"github.com/filipal/graph-platform-iam/internal/core/port"
	"github.com/filipal/graph-platform-iam/internal/repository"
)

// RoleRepository implements port.RoleRepository using PostgreSQL. The
// account_roles table keys on account_id, so the schema itself enforces the
// one-role-per-account invariant.
type RoleRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewRoleRepository constructs a PostgreSQL-backed role repository.
func NewRoleRepository(exec pgExecutor) *RoleRepository {
	return &RoleRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Assign creates the role assignment for an account. A duplicate assignment
// surfaces as ErrConflict; a dangling account reference as ErrNotFound.
func (r *RoleRepository) Assign(ctx context.Context, accountID int64, role domain.Role) error {
	stmt, args, err := r.builder.Insert("iam.account_roles").
		Columns("account_id", "role", "assigned_at").
		Values(accountID, role, time.Now().UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert role assignment sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		switch pgErrorCode(err) {
		case pgUniqueViolation:
			return repository.ErrConflict
		case pgForeignKeyViolation:
			return repository.ErrNotFound
		}
		return fmt.Errorf("insert role assignment: %w", err)
	}

	return nil
}

// Get returns the role held by the account.
func (r *RoleRepository) Get(ctx context.Context, accountID int64) (domain.Role, error) {
	stmt, args, err := r.builder.Select("role").
		From("iam.account_roles").
		Where(squirrel.Eq{"account_id": accountID}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build select role sql: %w", err)
	}

	var raw string
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("scan role: %w", err)
	}

	role, err := domain.ParseRole(raw)
	if err != nil {
		return "", fmt.Errorf("stored role invalid: %w", err)
	}

	return role, nil
}

// Update replaces the account's role assignment.
func (r *RoleRepository) Update(ctx context.Context, accountID int64, role domain.Role) error {
	stmt, args, err := r.builder.Update("iam.account_roles").
		Set("role", role).
		Where(squirrel.Eq{"account_id": accountID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update role sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.RoleRepository = (*RoleRepository)(nil)
