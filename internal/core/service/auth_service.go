package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/ledgerly/budget-api/internal/core/domain"
	"github.com/ledgerly/budget-api/internal/core/ports"
)

const (
	msgMissingSignupFields = "Provide email, password, and name."
	msgInvalidEmail        = "Provide a valid email address."
	msgWeakPassword        = "Password must have at least 6 characters and contain at least one number, one lowercase and one uppercase letter."
	msgMissingLoginFields  = "Provide email and password."

	minPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)

// AuthService implements signup and login.
type AuthService struct {
	users    ports.UserRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenService
	tokenTTL time.Duration
	log      zerolog.Logger
}

// NewAuthService wires the credential store, hasher and token service.
// A non-positive tokenTTL falls back to domain.SessionTTL.
func NewAuthService(users ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenService, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = domain.SessionTTL
	}
	return &AuthService{users: users, hasher: hasher, tokens: tokens, tokenTTL: tokenTTL, log: log}
}

// Signup validates the credentials in order (presence, email shape, password
// strength), rejects registered emails and stores the new user.
func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (*domain.PublicUser, error) {
	if in.Email == "" || in.Password == "" || in.Name == "" {
		return nil, domain.NewValidationError(msgMissingSignupFields)
	}

	email := domain.NormalizeEmail(in.Email)
	if !emailPattern.MatchString(email) {
		return nil, domain.NewValidationError(msgInvalidEmail)
	}
	if !strongPassword(in.Password) {
		return nil, domain.NewValidationError(msgWeakPassword)
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, domain.ErrDuplicateIdentity
	case !errors.Is(err, domain.ErrNotRegistered):
		return nil, fmt.Errorf("signup: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	created, err := s.users.Create(ctx, &domain.User{
		Email:        email,
		Name:         in.Name,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Msg("user signed up")
	return created.Public(), nil
}

// Login verifies the credentials and returns a session token valid for the
// configured TTL.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", domain.NewValidationError(msgMissingLoginFields)
	}

	user, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotRegistered) {
			return "", domain.ErrNotRegistered
		}
		return "", fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Identity(), s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("login: issue token: %w", err)
	}
	return token, nil
}

// strongPassword requires minPasswordLength characters including an ASCII
// digit, lowercase and uppercase letter.
func strongPassword(p string) bool {
	if utf8.RuneCountInString(p) < minPasswordLength {
		return false
	}
	return strings.ContainsAny(p, "0123456789") &&
		strings.ContainsAny(p, "abcdefghijklmnopqrstuvwxyz") &&
		strings.ContainsAny(p, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
}
