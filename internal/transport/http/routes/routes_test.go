package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/filipal/graph-platform-iam/internal/core/domain"
	"github.com/filipal/graph-platform-iam/internal/infra/config"
	"github.com/filipal/graph-platform-iam/internal/infra/security"
	"github.com/filipal/graph-platform-iam/internal/repository"
	httproutes "github.com/filipal/graph-platform-iam/internal/transport/http/routes"
	"github.com/filipal/graph-platform-iam/internal/usecase"
)

type memoryStore struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]domain.Account
	roles    map[int64]domain.Role
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		nextID:   1,
		accounts: make(map[int64]domain.Account),
		roles:    make(map[int64]domain.Role),
	}
}

func (s *memoryStore) Create(_ context.Context, account domain.Account) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.accounts {
		if existing.Username == account.Username || existing.Email == account.Email {
			return 0, repository.ErrConflict
		}
	}

	id := s.nextID
	s.nextID++
	account.ID = id
	s.accounts[id] = account
	return id, nil
}

func (s *memoryStore) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &account, nil
}

func (s *memoryStore) GetByIdentifier(_ context.Context, identifier string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, account := range s.accounts {
		if account.Username == identifier || account.Email == identifier {
			found := account
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memoryStore) Assign(_ context.Context, accountID int64, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[accountID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := s.roles[accountID]; ok {
		return repository.ErrConflict
	}
	s.roles[accountID] = role
	return nil
}

func (s *memoryStore) Get(_ context.Context, accountID int64) (domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	role, ok := s.roles[accountID]
	if !ok {
		return "", repository.ErrNotFound
	}
	return role, nil
}

func (s *memoryStore) Update(_ context.Context, accountID int64, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roles[accountID]; !ok {
		return repository.ErrNotFound
	}
	s.roles[accountID] = role
	return nil
}

type testHarness struct {
	router *gin.Engine
	store  *memoryStore
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemoryStore()
	logger := zaptest.NewLogger(t)

	tokens, err := security.NewTokenService("routes-test-secret-at-least-32-b", "iam-test", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenService returned error: %v", err)
	}

	auth, err := usecase.NewAuthService(store, store, tokens)
	if err != nil {
		t.Fatalf("NewAuthService returned error: %v", err)
	}

	registration := usecase.NewRegistrationService(store, store, nil, nil).
		WithLogger(logger)
	roles := usecase.NewRoleService(store, store, nil, logger)

	cfg := &config.AppConfig{App: config.AppSettings{Env: "test", Name: "iam-test"}}

	router := httproutes.Register(httproutes.Dependencies{
		Config: cfg,
		Logger: logger,
		Services: httproutes.ServiceSet{
			Auth:         auth,
			Registration: registration,
			Roles:        roles,
		},
	})

	return &testHarness{router: router, store: store}
}

func (h *testHarness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *testHarness) register(t *testing.T, username, email, password string) int64 {
	t.Helper()

	w := h.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Account struct {
			ID int64 `json:"id"`
		} `json:"account"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return resp.Account.ID
}

func (h *testHarness) login(t *testing.T, identifier, password string) string {
	t.Helper()

	w := h.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"identifier": identifier,
		"password":   password,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("login: expected a non-empty access token")
	}
	return resp.AccessToken
}

const testPassword = "C0rrect!Horse#Battery9"

func TestHealthEndpoint(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestRegisterLoginAndViewerAccess(t *testing.T) {
	h := newHarness(t)

	h.register(t, "alice", "alice@example.com", testPassword)
	token := h.login(t, "alice", testPassword)

	if w := h.do(t, http.MethodGet, "/api/v1/download", token, nil); w.Code != http.StatusOK {
		t.Fatalf("download: expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	// New accounts always start as viewer: the admin surface stays closed.
	if w := h.do(t, http.MethodGet, "/api/v1/admin-area", token, nil); w.Code != http.StatusForbidden {
		t.Fatalf("admin-area: expected status 403, got %d: %s", w.Code, w.Body.String())
	}
	if w := h.do(t, http.MethodDelete, "/api/v1/items/1", token, nil); w.Code != http.StatusForbidden {
		t.Fatalf("delete item: expected status 403, got %d", w.Code)
	}
}

func TestRegisterShortPassword(t *testing.T) {
	h := newHarness(t)

	// Without a configured password policy even "pw1" registers.
	h.register(t, "alice", "alice@x.com", "pw1")
	token := h.login(t, "alice", "pw1")

	if w := h.do(t, http.MethodGet, "/api/v1/download", token, nil); w.Code != http.StatusOK {
		t.Fatalf("download: expected status 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginByEmail(t *testing.T) {
	h := newHarness(t)

	h.register(t, "alice", "alice@example.com", testPassword)
	h.login(t, "alice@example.com", testPassword)
}

func TestRegisterDuplicate(t *testing.T) {
	h := newHarness(t)

	h.register(t, "alice", "alice@example.com", testPassword)

	w := h.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": testPassword,
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	h := newHarness(t)

	h.register(t, "alice", "alice@example.com", testPassword)

	unknown := h.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"identifier": "ghost",
		"password":   testPassword,
	})
	wrongPassword := h.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"identifier": "alice",
		"password":   "Wrong!Password#123456",
	})

	if unknown.Code != http.StatusUnauthorized || wrongPassword.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for both failures, got %d and %d", unknown.Code, wrongPassword.Code)
	}

	var a, b struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(unknown.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if err := json.Unmarshal(wrongPassword.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if a.Error != b.Error {
		t.Fatalf("expected identical error messages, got %q and %q", a.Error, b.Error)
	}
}

func TestRoleElevationGrantsAdminAccess(t *testing.T) {
	h := newHarness(t)

	adminID := h.register(t, "root", "root@example.com", testPassword)
	h.store.roles[adminID] = domain.RoleAdmin

	targetID := h.register(t, "alice", "alice@example.com", testPassword)

	adminToken := h.login(t, "root", testPassword)
	viewerToken := h.login(t, "alice", testPassword)

	// A viewer cannot reach the role management surface.
	w := h.do(t, http.MethodPut, fmt.Sprintf("/api/v1/roles/%d", targetID), viewerToken, map[string]string{"role": "admin"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 for viewer, got %d", w.Code)
	}

	w = h.do(t, http.MethodPut, fmt.Sprintf("/api/v1/roles/%d", targetID), adminToken, map[string]string{"role": "admin"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 for admin, got %d: %s", w.Code, w.Body.String())
	}

	// The old token keeps its issued role snapshot.
	if w := h.do(t, http.MethodGet, "/api/v1/admin-area", viewerToken, nil); w.Code != http.StatusForbidden {
		t.Fatalf("expected stale token to stay viewer, got %d", w.Code)
	}

	// A fresh login picks up the new role.
	elevatedToken := h.login(t, "alice", testPassword)
	if w := h.do(t, http.MethodGet, "/api/v1/admin-area", elevatedToken, nil); w.Code != http.StatusOK {
		t.Fatalf("expected fresh token to grant admin access, got %d: %s", w.Code, w.Body.String())
	}
	if w := h.do(t, http.MethodPut, "/api/v1/items/7", elevatedToken, map[string]string{"name": "renamed"}); w.Code != http.StatusOK {
		t.Fatalf("expected edit item 200, got %d", w.Code)
	}
}

func TestRoleChangeUnknownAccount(t *testing.T) {
	h := newHarness(t)

	adminID := h.register(t, "root", "root@example.com", testPassword)
	h.store.roles[adminID] = domain.RoleAdmin
	adminToken := h.login(t, "root", testPassword)

	w := h.do(t, http.MethodPut, "/api/v1/roles/999", adminToken, map[string]string{"role": "admin"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMeEndpoint(t *testing.T) {
	h := newHarness(t)

	id := h.register(t, "alice", "alice@example.com", testPassword)
	token := h.login(t, "alice", testPassword)

	w := h.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		ID   int64  `json:"id"`
		Role string `json:"role"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != id {
		t.Fatalf("expected account id %d, got %d", id, resp.ID)
	}
	if resp.Role != "viewer" {
		t.Fatalf("expected role viewer, got %s", resp.Role)
	}
}

func TestMeAfterAccountRemoval(t *testing.T) {
	h := newHarness(t)

	id := h.register(t, "alice", "alice@example.com", testPassword)
	token := h.login(t, "alice", testPassword)

	h.store.mu.Lock()
	delete(h.store.accounts, id)
	h.store.mu.Unlock()

	// The token is still cryptographically valid, but it no longer
	// authenticates anyone.
	w := h.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProtectedEndpointsRejectAnonymous(t *testing.T) {
	h := newHarness(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/download"},
		{http.MethodGet, "/api/v1/admin-area"},
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodDelete, "/api/v1/items/1"},
		{http.MethodPut, "/api/v1/roles/1"},
	}

	for _, p := range paths {
		if w := h.do(t, p.method, p.path, "", nil); w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected status 401, got %d", p.method, p.path, w.Code)
		}
	}
}
