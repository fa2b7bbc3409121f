package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/filipal/graph-platform-iam/internal/core/domain"
	"github.com/filipal/graph-platform-iam/internal/core/port"
	"github.com/filipal/graph-platform-iam/internal/repository"
)

// AccountRepository implements port.AccountRepository using PostgreSQL.
type AccountRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAccountRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewAccountRepository(exec pgExecutor) *AccountRepository {
	return &AccountRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new account row and returns the database-assigned id.
// Duplicate usernames and emails are rejected by the table's unique
// constraints; the resulting unique violation is mapped to ErrConflict so a
// concurrent duplicate registration has exactly one winner.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (int64, error) {
	stmt, args, err := r.builder.Insert("iam.accounts").
		Columns("username", "email", "password_hash", "created_at").
		Values(account.Username, account.Email, account.PasswordHash, account.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert account sql: %w", err)
	}

	var id int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&id); err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return 0, repository.ErrConflict
		}
		return 0, fmt.Errorf("insert account: %w", err)
	}

	return id, nil
}

// GetByID retrieves an account by identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	stmt, args, err := r.builder.
		Select("id", "username", "email", "password_hash", "created_at").
		From("iam.accounts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account sql: %w", err)
	}

	return r.scanAccount(ctx, stmt, args)
}

// GetByIdentifier retrieves an account by username or email. Matching is
// case-sensitive; the uniqueness invariants guarantee at most one row.
func (r *AccountRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.Account, error) {
	stmt, args, err := r.builder.
		Select("id", "username", "email", "password_hash", "created_at").
		From("iam.accounts").
		Where(squirrel.Or{
			squirrel.Eq{"username": identifier},
			squirrel.Eq{"email": identifier},
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account by identifier sql: %w", err)
	}

	return r.scanAccount(ctx, stmt, args)
}

func (r *AccountRepository) scanAccount(ctx context.Context, stmt string, args []any) (*domain.Account, error) {
	row := r.exec.QueryRow(ctx, stmt, args...)

	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	return &account, nil
}

var _ port.AccountRepository = (*AccountRepository)(nil)
