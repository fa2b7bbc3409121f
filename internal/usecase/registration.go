package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/filipal/graph-platform-iam/internal/core/domain"
	"github.com/filipal/graph-platform-iam/internal/core/port"
	"github.com/filipal/graph-platform-iam/internal/infra/logger"
	"github.com/filipal/graph-platform-iam/internal/infra/security"
	"github.com/filipal/graph-platform-iam/internal/repository"
)

var (
	// ErrDuplicateIdentity indicates the username or email is already taken.
	ErrDuplicateIdentity = errors.New("username or email already registered")
	// ErrPasswordPolicyViolation indicates the password does not satisfy the policy.
	ErrPasswordPolicyViolation = errors.New("password does not meet complexity requirements")
)

// RegistrationService handles new account onboarding. Every account it
// creates receives the least-privileged role; elevation happens only through
// the administrative path in RoleService.
type RegistrationService struct {
	accounts          port.AccountRepository
	roles             port.RoleRepository
	events            port.EventPublisher
	passwordValidator *security.PasswordValidator
	logger            *zap.Logger
}

// NewRegistrationService constructs a registration service. A nil validator
// falls back to an unconfigured policy that accepts any non-empty password.
func NewRegistrationService(accounts port.AccountRepository, roles port.RoleRepository, events port.EventPublisher, validator *security.PasswordValidator) *RegistrationService {
	if validator == nil {
		validator = security.NewPasswordValidator()
	}
	return &RegistrationService{
		accounts:          accounts,
		roles:             roles,
		events:            events,
		passwordValidator: validator,
		logger:            zap.NewNop(),
	}
}

// WithLogger attaches a logger used for event publication failures.
func (s *RegistrationService) WithLogger(log *zap.Logger) *RegistrationService {
	if log != nil {
		s.logger = log
	}
	return s
}

// Register creates an account and its viewer role assignment as one logical
// operation. Duplicate usernames or emails surface as ErrDuplicateIdentity;
// the store's uniqueness constraints arbitrate concurrent duplicates, so no
// check-then-write race exists here.
func (s *RegistrationService) Register(ctx context.Context, username, email, password string) (domain.Account, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return domain.Account{}, fmt.Errorf("username is required")
	}
	if email == "" {
		return domain.Account{}, fmt.Errorf("email is required")
	}
	if password == "" {
		return domain.Account{}, fmt.Errorf("password is required")
	}

	if err := s.passwordValidator.Validate(password); err != nil {
		return domain.Account{}, fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	// Hashing is deliberately expensive; it runs before any store call and
	// never under a store lock.
	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	account := domain.Account{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}

	id, err := s.accounts.Create(ctx, account)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.Account{}, ErrDuplicateIdentity
		}
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}
	account.ID = id

	if err := s.roles.Assign(ctx, id, domain.RoleViewer); err != nil {
		// Account exists without a role: the gate treats that as an
		// authorization failure until repaired, never as a default role.
		return domain.Account{}, fmt.Errorf("assign default role: %w", err)
	}

	s.publishRegistered(ctx, account)

	account.PasswordHash = ""
	return account, nil
}

func (s *RegistrationService) publishRegistered(ctx context.Context, account domain.Account) {
	if s.events == nil {
		return
	}

	event := domain.AccountRegisteredEvent{
		EventID:      uuid.NewString(),
		AccountID:    account.ID,
		Username:     account.Username,
		Email:        logger.MaskEmail(account.Email),
		Role:         domain.RoleViewer,
		RegisteredAt: account.CreatedAt,
	}

	if err := s.events.PublishAccountRegistered(ctx, event); err != nil {
		s.logger.Warn("publish account registered event failed",
			zap.Int64("account_id", account.ID),
			zap.Error(err),
		)
	}
}
