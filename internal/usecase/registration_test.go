package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/filipal/graph-platform-iam/internal/core/domain"
	"github.com/filipal/graph-platform-iam/internal/core/port"
	"github.com/filipal/graph-platform-iam/internal/infra/security"
	"github.com/filipal/graph-platform-iam/internal/repository"
)

const strongTestPassword = "Sup3r!SecurePass#7890"

type mockAccountRepository struct {
	createErr      error
	createCalls    int
	createdAccount domain.Account
	nextID         int64

	getByIDResult *domain.Account
	getByIDErr    error
	getByIDCalls  int
	getByIDLastID int64

	getByIdentifierResult *domain.Account
	getByIdentifierErr    error
	getByIdentifierCalls  int
	getByIdentifierLast   string
}

func (m *mockAccountRepository) Create(_ context.Context, account domain.Account) (int64, error) {
	m.createCalls++
	m.createdAccount = account
	if m.createErr != nil {
		return 0, m.createErr
	}
	if m.nextID == 0 {
		m.nextID = 1
	}
	return m.nextID, nil
}

func (m *mockAccountRepository) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	m.getByIDCalls++
	m.getByIDLastID = id
	if m.getByIDResult != nil {
		account := *m.getByIDResult
		return &account, m.getByIDErr
	}
	return nil, m.getByIDErr
}

func (m *mockAccountRepository) GetByIdentifier(_ context.Context, identifier string) (*domain.Account, error) {
	m.getByIdentifierCalls++
	m.getByIdentifierLast = identifier
	if m.getByIdentifierResult != nil {
		account := *m.getByIdentifierResult
		return &account, m.getByIdentifierErr
	}
	return nil, m.getByIdentifierErr
}

type mockRoleRepository struct {
	assignErr    error
	assignCalls  int
	assignedID   int64
	assignedRole domain.Role
	getResult    domain.Role
	getErr       error
	getCalls     int
	getLastID    int64
	updateErr    error
	updateCalls  int
	updatedID    int64
	updatedRole  domain.Role
}

func (m *mockRoleRepository) Assign(_ context.Context, accountID int64, role domain.Role) error {
	m.assignCalls++
	m.assignedID = accountID
	m.assignedRole = role
	return m.assignErr
}

func (m *mockRoleRepository) Get(_ context.Context, accountID int64) (domain.Role, error) {
	m.getCalls++
	m.getLastID = accountID
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.getResult, nil
}

func (m *mockRoleRepository) Update(_ context.Context, accountID int64, role domain.Role) error {
	m.updateCalls++
	m.updatedID = accountID
	m.updatedRole = role
	return m.updateErr
}

type mockEventPublisher struct {
	registeredCalls int
	registeredEvent domain.AccountRegisteredEvent
	registeredErr   error

	roleChangedCalls int
	roleChangedEvent domain.RoleChangedEvent
	roleChangedErr   error
}

func (m *mockEventPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	m.registeredCalls++
	m.registeredEvent = event
	return m.registeredErr
}

func (m *mockEventPublisher) PublishRoleChanged(_ context.Context, event domain.RoleChangedEvent) error {
	m.roleChangedCalls++
	m.roleChangedEvent = event
	return m.roleChangedErr
}

func newTestRegistrationService(accounts *mockAccountRepository, roles *mockRoleRepository, events *mockEventPublisher) *RegistrationService {
	// Avoid wrapping a typed nil in the interface: the service's nil check
	// only works against a true nil interface value.
	var publisher port.EventPublisher
	if events != nil {
		publisher = events
	}
	return NewRegistrationService(accounts, roles, publisher, nil)
}

func TestRegistrationService_Register(t *testing.T) {
	accounts := &mockAccountRepository{nextID: 42}
	roles := &mockRoleRepository{}
	events := &mockEventPublisher{}

	service := newTestRegistrationService(accounts, roles, events)

	account, err := service.Register(context.Background(), "alice", "alice@example.com", strongTestPassword)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if account.ID != 42 {
		t.Fatalf("expected account id 42, got %d", account.ID)
	}
	if account.PasswordHash != "" {
		t.Fatalf("expected password hash to be cleared in the returned account")
	}

	if accounts.createCalls != 1 {
		t.Fatalf("expected Create to be called once, got %d", accounts.createCalls)
	}
	if accounts.createdAccount.PasswordHash == "" {
		t.Fatalf("expected password hash to be stored")
	}
	if ok, err := security.VerifyPassword(strongTestPassword, accounts.createdAccount.PasswordHash); err != nil || !ok {
		t.Fatalf("expected stored hash to match original password")
	}

	if roles.assignCalls != 1 {
		t.Fatalf("expected Assign to be called once, got %d", roles.assignCalls)
	}
	if roles.assignedID != 42 {
		t.Fatalf("expected role assignment for account 42, got %d", roles.assignedID)
	}
	if roles.assignedRole != domain.RoleViewer {
		t.Fatalf("expected new accounts to receive the viewer role, got %s", roles.assignedRole)
	}

	if events.registeredCalls != 1 {
		t.Fatalf("expected registration event to be published once, got %d", events.registeredCalls)
	}
	if events.registeredEvent.AccountID != 42 {
		t.Fatalf("expected event account id 42, got %d", events.registeredEvent.AccountID)
	}
	if events.registeredEvent.Role != domain.RoleViewer {
		t.Fatalf("expected event role viewer, got %s", events.registeredEvent.Role)
	}
}

func TestRegistrationService_Register_Duplicate(t *testing.T) {
	accounts := &mockAccountRepository{createErr: repository.ErrConflict}
	roles := &mockRoleRepository{}

	service := newTestRegistrationService(accounts, roles, nil)

	_, err := service.Register(context.Background(), "alice", "alice@example.com", strongTestPassword)
	if !errors.Is(err, ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}

	if roles.assignCalls != 0 {
		t.Fatalf("expected no role assignment after a failed create, got %d", roles.assignCalls)
	}
}

func TestRegistrationService_Register_ShortPasswordWithoutPolicy(t *testing.T) {
	accounts := &mockAccountRepository{nextID: 3}
	roles := &mockRoleRepository{}

	// No policy configured: any non-empty password registers.
	service := newTestRegistrationService(accounts, roles, nil)

	account, err := service.Register(context.Background(), "alice", "alice@example.com", "pw1")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if account.ID != 3 {
		t.Fatalf("expected account id 3, got %d", account.ID)
	}
	if roles.assignedRole != domain.RoleViewer {
		t.Fatalf("expected viewer role, got %s", roles.assignedRole)
	}
}

func TestRegistrationService_Register_WeakPassword(t *testing.T) {
	accounts := &mockAccountRepository{}
	service := NewRegistrationService(accounts, &mockRoleRepository{}, nil, security.PasswordPolicy(8, 2))

	_, err := service.Register(context.Background(), "alice", "alice@example.com", "short")
	if !errors.Is(err, ErrPasswordPolicyViolation) {
		t.Fatalf("expected ErrPasswordPolicyViolation, got %v", err)
	}

	if accounts.createCalls != 0 {
		t.Fatalf("expected no create attempt for rejected password, got %d", accounts.createCalls)
	}
}

func TestRegistrationService_Register_MissingFields(t *testing.T) {
	service := newTestRegistrationService(&mockAccountRepository{}, &mockRoleRepository{}, nil)

	cases := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"no username", "", "alice@example.com", strongTestPassword},
		{"no email", "alice", "", strongTestPassword},
		{"no password", "alice", "alice@example.com", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.Register(context.Background(), tc.username, tc.email, tc.password); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}

func TestRegistrationService_Register_RoleAssignFailure(t *testing.T) {
	accounts := &mockAccountRepository{nextID: 7}
	roles := &mockRoleRepository{assignErr: errors.New("boom")}
	events := &mockEventPublisher{}

	service := newTestRegistrationService(accounts, roles, events)

	_, err := service.Register(context.Background(), "alice", "alice@example.com", strongTestPassword)
	if err == nil {
		t.Fatalf("expected error when role assignment fails")
	}

	if events.registeredCalls != 0 {
		t.Fatalf("expected no event for an account without a role, got %d", events.registeredCalls)
	}
}
