// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/chronoshop/chronoshop/internal/auth"
	"github.com/chronoshop/chronoshop/internal/metrics"
	"github.com/chronoshop/chronoshop/internal/model"
	"github.com/chronoshop/chronoshop/internal/repository"
)

// Auth service errors.
var (
	ErrUserExists         = errors.New("username or email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserDisabled       = errors.New("user account is disabled")
	ErrInvalidUsername    = errors.New("invalid username format")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password does not meet strength requirements")
)

// Username validation regex: 3-50 chars, alphanumeric + underscore.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)

// emailRegex keeps validation deliberately loose; the authoritative check
// is delivery, not parsing.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit
	maxEmailLength    = 255
)

// AuthService handles registration and authentication.
type AuthService struct {
	repo    *repository.Repository
	hasher  *auth.PasswordHasher
	signer  *auth.TokenSigner
	metrics metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *repository.Repository, hasher *auth.PasswordHasher, signer *auth.TokenSigner, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		repo:    repo,
		hasher:  hasher,
		signer:  signer,
		metrics: recorder,
	}
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if !usernameRegex.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	if len(email) > maxEmailLength || !emailRegex.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if err := validatePasswordStrength(input.Password); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          email,
		FullName:       strings.TrimSpace(input.FullName),
		HashedPassword: hashed,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()

	return user, nil
}

// LoginInput defines input for authenticating a user.
type LoginInput struct {
	Username string
	Password string
}

// LoginOutput carries the issued token alongside the user.
type LoginOutput struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

// Login verifies credentials and issues an access token.
// Unknown user, wrong password and disabled account all map to the same
// error so responses do not leak which part failed.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	user, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLoginAttempt("failed")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := s.hasher.Verify(user.HashedPassword, input.Password); err != nil {
		if errors.Is(err, auth.ErrMismatchedPassword) {
			s.metrics.IncLoginAttempt("failed")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	if !user.CanLogin() {
		s.metrics.IncLoginAttempt("disabled")
		return nil, ErrInvalidCredentials
	}

	token, err := s.signer.Sign(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.metrics.IncLoginAttempt("success")

	return &LoginOutput{
		User:      user,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(s.signer.TTL()),
	}, nil
}

// GetCurrentUser loads the authenticated user's profile.
func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserDisabled
	}
	return user, nil
}

// validatePasswordStrength requires at least one uppercase letter, one
// lowercase letter and one digit.
func validatePasswordStrength(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return ErrWeakPassword
	}

	hasUpper := false
	hasLower := false
	hasNumber := false
	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		}
		if unicode.IsLower(char) {
			hasLower = true
		}
		if unicode.IsNumber(char) {
			hasNumber = true
		}
		if hasUpper && hasLower && hasNumber {
			return nil
		}
	}
	return ErrWeakPassword
}
