// Package auth verifies credentials and issues session tokens. The hub
// consumes it only through ResolveToken; everything else serves the REST
// account API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/adskoe96/adsk-chat/internal/store"
)

var (
	// ErrInvalidCredentials is returned when username/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountExists is returned when registering an existing username.
	ErrAccountExists = errors.New("account already exists")
	// ErrInvalidUsername is returned when the username doesn't meet constraints.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword is returned when the password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrInvalidToken is returned for absent, malformed, or expired tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// Service provides authentication operations.
type Service struct {
	store     store.AccountStore
	jwtConfig *JWTConfig
}

// NewService creates a new authentication service.
func NewService(accounts store.AccountStore, jwtConfig *JWTConfig) *Service {
	return &Service{
		store:     accounts,
		jwtConfig: jwtConfig,
	}
}

// Register creates an account with a hashed password and returns a token.
func (s *Service) Register(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 32 {
		return "", ErrInvalidUsername
	}
	if len(password) < 6 {
		return "", ErrInvalidPassword
	}

	if existing, err := s.store.GetAccountByUsername(ctx, username); err == nil && existing != nil {
		return "", ErrAccountExists
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	acc, err := s.store.CreateAccount(ctx, username, hashedPassword)
	if err != nil {
		return "", fmt.Errorf("create account: %w", err)
	}

	token, err := GenerateToken(s.jwtConfig, acc.ID, acc.Username)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	return token, nil
}

// Login validates credentials and returns a token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	acc, err := s.store.GetAccountByUsername(ctx, username)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if errPwd := ComparePassword(acc.PasswordHash, password); errPwd != nil {
		return "", ErrInvalidCredentials
	}

	token, err := GenerateToken(s.jwtConfig, acc.ID, acc.Username)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	return token, nil
}

// ValidateToken validates a token and returns its claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims, err := ValidateToken(s.jwtConfig, tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}

// ResolveToken validates a token and loads the account it names. This is the
// credential-verification collaborator the hub handshake consumes.
func (s *Service) ResolveToken(ctx context.Context, tokenString string) (*store.Account, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	acc, err := s.store.GetAccountByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	return acc, nil
}
