package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres error codes the repositories translate into sentinel errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Accounts *AccountRepository
	Roles    *RoleRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Accounts: NewAccountRepository(pool),
		Roles:    NewRoleRepository(pool),
	}
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
