package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrUnauthorized is returned for any failed login. The same error covers
// unknown emails and wrong passwords so callers cannot tell them apart.
var ErrUnauthorized = errors.New("unauthorized")

const (
	defaultRegisterLabel = "Default Token"
	defaultLoginLabel    = "Login Token"
	adminTokenLabel      = "Default Admin"
)

// Service provides registration, login, and token resolution.
type Service struct {
	repo       Repository
	bcryptCost int
}

// NewService creates a new auth Service.
func NewService(repo Repository, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
	}
}

// NormalizeEmail applies the canonical form used for uniqueness: trimmed
// and lowercased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user and its first bearer token atomically. The email
// must already be validated; it is normalized here before storage.
func (s *Service) Register(ctx context.Context, email, password, label string) (*Credentials, error) {
	email = NormalizeEmail(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
	}
	token := s.mintToken(user.ID, label, defaultRegisterLabel)

	if err := s.repo.CreateUserWithToken(ctx, user, token); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return &Credentials{Token: token.Value, UserID: user.ID}, nil
}

// Login verifies the password for the given email and mints a fresh bearer
// token. Tokens accumulate across logins; none are invalidated here.
func (s *Service) Login(ctx context.Context, email, password, label string) (*Credentials, error) {
	email = NormalizeEmail(email)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrUnauthorized
	}

	token := s.mintToken(user.ID, label, defaultLoginLabel)
	if err := s.repo.CreateToken(ctx, token); err != nil {
		return nil, fmt.Errorf("creating token: %w", err)
	}

	return &Credentials{Token: token.Value, UserID: user.ID}, nil
}

// ResolveToken looks up a bearer token by its secret value.
func (s *Service) ResolveToken(ctx context.Context, value string) (*Token, error) {
	return s.repo.GetTokenByValue(ctx, value)
}

// EnsureAdminToken seeds an ownerless bearer token with the given value if
// none exists. It is an idempotent bootstrap step invoked once at startup.
func (s *Service) EnsureAdminToken(ctx context.Context, value string) error {
	_, err := s.repo.GetTokenByValue(ctx, value)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrTokenNotFound) {
		return fmt.Errorf("looking up admin token: %w", err)
	}

	token := &Token{
		ID:    uuid.New(),
		Label: adminTokenLabel,
		Value: value,
	}
	if err := s.repo.CreateToken(ctx, token); err != nil {
		return fmt.Errorf("seeding admin token: %w", err)
	}

	slog.Info("seeded default admin token", "tokenId", token.ID)

	return nil
}

// mintToken builds a fresh bearer token bound to the given user. The value
// is an opaque random UUID string.
func (s *Service) mintToken(userID uuid.UUID, label, fallbackLabel string) *Token {
	if strings.TrimSpace(label) == "" {
		label = fallbackLabel
	}
	return &Token{
		ID:     uuid.New(),
		Label:  label,
		Value:  uuid.NewString(),
		UserID: &userID,
	}
}
