// Package authpw provides username/password registration and login.
package authpw

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"taskboard/api/internal/apperr"
	"taskboard/api/internal/store"
)

const minPasswordLength = 8

// Service provides username/password authentication
type Service struct {
	store UserStore
	cost  int
}

// UserStore defines the storage interface for auth
type UserStore interface {
	CreateUser(ctx context.Context, user store.User) (store.User, error)
	GetUserByUsername(ctx context.Context, username string) (store.User, error)
}

func NewService(store UserStore) *Service {
	return &Service{store: store, cost: bcrypt.DefaultCost}
}

// RegisterRequest contains registration parameters
type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

// Register creates a user account. Duplicate usernames or emails come back
// from the store as a conflict naming the field.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (store.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	switch {
	case username == "":
		return store.User{}, apperr.Validation("username", "username is required")
	case email == "":
		return store.User{}, apperr.Validation("email", "email is required")
	case req.Password == "":
		return store.User{}, apperr.Validation("password", "password is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return store.User{}, apperr.Validation("email", "email is not a valid address")
	}
	if len(req.Password) < minPasswordLength {
		return store.User{}, apperr.Validation("password", "password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return store.User{}, fmt.Errorf("hash password: %w", err)
	}

	return s.store.CreateUser(ctx, store.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	})
}

// Login authenticates by username and password. Unknown users and wrong
// passwords fail the same way.
func (s *Service) Login(ctx context.Context, username, password string) (store.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return store.User{}, apperr.Validation("username", "username is required")
	}
	if password == "" {
		return store.User{}, apperr.Validation("password", "password is required")
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if apperr.Is(err, apperr.KindNotFound) {
		return store.User{}, apperr.Unauthorized("bad username or password")
	}
	if err != nil {
		return store.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return store.User{}, apperr.Unauthorized("bad username or password")
	}
	return user, nil
}
