package authpw

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"taskboard/api/internal/apperr"
	"taskboard/api/internal/store"
)

// mockUserStore is a mock implementation of UserStore for testing
type mockUserStore struct {
	byUsername map[string]store.User
	emails     map[string]bool
	nextID     int64
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{
		byUsername: make(map[string]store.User),
		emails:     make(map[string]bool),
	}
}

func (m *mockUserStore) CreateUser(_ context.Context, user store.User) (store.User, error) {
	if _, ok := m.byUsername[user.Username]; ok {
		return store.User{}, apperr.Conflict("user", "username", "username already registered")
	}
	if m.emails[user.Email] {
		return store.User{}, apperr.Conflict("user", "email", "email already registered")
	}
	m.nextID++
	user.ID = m.nextID
	m.byUsername[user.Username] = user
	m.emails[user.Email] = true
	return user, nil
}

func (m *mockUserStore) GetUserByUsername(_ context.Context, username string) (store.User, error) {
	if user, ok := m.byUsername[username]; ok {
		return user, nil
	}
	return store.User{}, apperr.NotFound("user", 0)
}

func newTestService() (*Service, *mockUserStore) {
	users := newMockUserStore()
	svc := NewService(users)
	svc.cost = bcrypt.MinCost
	return svc, users
}

func TestRegister(t *testing.T) {
	svc, users := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Username: " alice ", Email: "alice@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.ID == 0 || user.Username != "alice" {
		t.Fatalf("unexpected user %+v", user)
	}
	if user.PasswordHash == "password123" || users.byUsername["alice"].PasswordHash == "" {
		t.Fatal("expected password to be stored hashed")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name  string
		req   RegisterRequest
		field string
	}{
		{name: "missing username", req: RegisterRequest{Email: "a@example.com", Password: "password123"}, field: "username"},
		{name: "missing email", req: RegisterRequest{Username: "a", Password: "password123"}, field: "email"},
		{name: "missing password", req: RegisterRequest{Username: "a", Email: "a@example.com"}, field: "password"},
		{name: "short password", req: RegisterRequest{Username: "a", Email: "a@example.com", Password: "short"}, field: "password"},
		{name: "bad email", req: RegisterRequest{Username: "a", Email: "not-an-email", Password: "password123"}, field: "email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.req)
			appErr, ok := err.(*apperr.Error)
			if !ok || appErr.Kind != apperr.KindValidation || appErr.Field != tc.field {
				t.Fatalf("expected validation error on %s, got %v", tc.field, err)
			}
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "password123"}); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "other@example.com", Password: "password123"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict for duplicate username, got %v", err)
	}
	_, err = svc.Register(ctx, RegisterRequest{Username: "bob", Email: "alice@example.com", Password: "password123"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, err := svc.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("expected user %d, got %d", registered.ID, user.ID)
	}

	if _, err := svc.Login(ctx, "alice", "wrongpassword"); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for wrong password, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "password123"); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for unknown user, got %v", err)
	}
	if _, err := svc.Login(ctx, "", "password123"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for empty username, got %v", err)
	}
}
