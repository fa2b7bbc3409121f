package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/filipal/graph-platform-iam/internal/core/domain"
	"github.com/filipal/graph-platform-iam/internal/core/port"
	"github.com/filipal/graph-platform-iam/internal/repository"
)

// ErrAccountUnknown indicates the targeted account or its role assignment does not exist.
var ErrAccountUnknown = errors.New("account unknown")

// RoleService implements the administrative role elevation path. Callers are
// expected to pass it only identities already admitted by the admin gate.
type RoleService struct {
	accounts port.AccountRepository
	roles    port.RoleRepository
	events   port.EventPublisher
	logger   *zap.Logger
}

// NewRoleService constructs a RoleService.
func NewRoleService(accounts port.AccountRepository, roles port.RoleRepository, events port.EventPublisher, log *zap.Logger) *RoleService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RoleService{
		accounts: accounts,
		roles:    roles,
		events:   events,
		logger:   log,
	}
}

// ChangeRole replaces the target account's role. Outstanding tokens keep
// their issued role snapshot until they expire; only new logins observe the
// change.
func (s *RoleService) ChangeRole(ctx context.Context, actor domain.Identity, accountID int64, role domain.Role) error {
	if accountID <= 0 {
		return fmt.Errorf("account id is required")
	}
	if _, err := domain.ParseRole(role.String()); err != nil {
		return err
	}

	previous, err := s.roles.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountUnknown
		}
		return fmt.Errorf("lookup current role: %w", err)
	}

	if previous == role {
		return nil
	}

	if err := s.roles.Update(ctx, accountID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountUnknown
		}
		return fmt.Errorf("update role: %w", err)
	}

	s.publishRoleChanged(ctx, actor, accountID, previous, role)

	return nil
}

// GetRole returns the account's current stored role.
func (s *RoleService) GetRole(ctx context.Context, accountID int64) (domain.Role, error) {
	role, err := s.roles.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrAccountUnknown
		}
		return "", fmt.Errorf("lookup role: %w", err)
	}
	return role, nil
}

func (s *RoleService) publishRoleChanged(ctx context.Context, actor domain.Identity, accountID int64, previous, next domain.Role) {
	if s.events == nil {
		return
	}

	event := domain.RoleChangedEvent{
		EventID:      uuid.NewString(),
		AccountID:    accountID,
		PreviousRole: previous,
		NewRole:      next,
		ChangedBy:    actor.AccountID,
		ChangedAt:    time.Now().UTC(),
	}

	if err := s.events.PublishRoleChanged(ctx, event); err != nil {
		s.logger.Warn("publish role changed event failed",
			zap.Int64("account_id", accountID),
			zap.Error(err),
		)
	}
}
