package domain

import (
	"context"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles registration and credential checks.
type UserService struct{ st Store }

func NewUserService(st Store) UserService { return UserService{st: st} }

// Register creates a new account. Emails are stored lowercased and must be
// unique case-insensitively.
func (s UserService) Register(ctx context.Context, name, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, &ValidationError{Field: "name"}
	}
	if email == "" {
		return nil, &ValidationError{Field: "email"}
	}
	if password == "" {
		return nil, &ValidationError{Field: "password"}
	}

	existing, err := s.st.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.st.InsertUser(ctx, u); err != nil {
		return nil, err
	}
	log.WithField("user", u.ID).Debug("user registered")
	return &u, nil
}

// Authenticate checks credentials and returns the matching user. Every
// failure mode collapses into ErrInvalidCredentials.
func (s UserService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, &ValidationError{Field: "email"}
	}
	if password == "" {
		return nil, &ValidationError{Field: "password"}
	}
	u, err := s.st.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Lookup returns the user for an id, or nil when the record is gone.
func (s UserService) Lookup(ctx context.Context, id string) (*User, error) {
	return s.st.GetUserByID(ctx, id)
}
