package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/filipal/graph-platform-iam/internal/core/domain"
	"github.com/filipal/graph-platform-iam/internal/core/port"
	"github.com/filipal/graph-platform-iam/internal/infra/security"
	"github.com/filipal/graph-platform-iam/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the provided identifier or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRoleMissing indicates the account has no role assignment. This is an
	// authorization failure, not a cue for a default role.
	ErrRoleMissing = errors.New("account has no role assignment")
)

// LoginResult carries the issued token and the authenticated account state.
type LoginResult struct {
	AccessToken string
	Account     domain.Account
	Role        domain.Role
	ExpiresIn   int
}

// AuthService coordinates credential verification and token issuance.
type AuthService struct {
	accounts port.AccountRepository
	roles    port.RoleRepository
	tokens   *security.TokenService
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(accounts port.AccountRepository, roles port.RoleRepository, tokens *security.TokenService) (*AuthService, error) {
	if tokens == nil {
		return nil, fmt.Errorf("token service is required")
	}
	return &AuthService{
		accounts: accounts,
		roles:    roles,
		tokens:   tokens,
	}, nil
}

// Authenticate validates credentials and issues an access token embedding
// the account's current role snapshot. An unknown identifier and a wrong
// password are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (LoginResult, error) {
	if identifier == "" {
		return LoginResult{}, fmt.Errorf("identifier is required")
	}
	if password == "" {
		return LoginResult{}, fmt.Errorf("password is required")
	}

	account, err := s.accounts.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("lookup account: %w", err)
	}

	ok, err := security.VerifyPassword(password, account.PasswordHash)
	if err != nil || !ok {
		return LoginResult{}, ErrInvalidCredentials
	}

	role, err := s.roles.Get(ctx, account.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginResult{}, ErrRoleMissing
		}
		return LoginResult{}, fmt.Errorf("lookup role: %w", err)
	}

	token, err := s.tokens.Issue(account.ID, role, 0)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	sanitized := *account
	sanitized.PasswordHash = ""

	return LoginResult{
		AccessToken: token,
		Account:     sanitized,
		Role:        role,
		ExpiresIn:   int(s.tokens.TTL() / time.Second),
	}, nil
}

// VerifyToken validates an access token and returns the asserted identity.
// It is the only constructor of domain.Identity used by the transport layer.
func (s *AuthService) VerifyToken(token string) (domain.Identity, error) {
	return s.tokens.Verify(token)
}

// Profile resolves the account behind a verified identity. The role comes
// from the store, so a caller can observe a pending role change before their
// token reflects it.
func (s *AuthService) Profile(ctx context.Context, identity domain.Identity) (domain.Account, domain.Role, error) {
	account, err := s.accounts.GetByID(ctx, identity.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// A valid token for a vanished account no longer authenticates.
			return domain.Account{}, "", ErrAccountUnknown
		}
		return domain.Account{}, "", fmt.Errorf("lookup account: %w", err)
	}

	role, err := s.roles.Get(ctx, identity.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Account{}, "", ErrRoleMissing
		}
		return domain.Account{}, "", fmt.Errorf("lookup role: %w", err)
	}

	sanitized := *account
	sanitized.PasswordHash = ""
	return sanitized, role, nil
}
