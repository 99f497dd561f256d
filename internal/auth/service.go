package auth

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/shadesync/shadesync-core/internal/infrastructure/config"
	"github.com/shadesync/shadesync-core/internal/infrastructure/logging"
)

// Service implements signup, login, and password reset on top of the
// user repository.
type Service struct {
	users UserRepository
	cfg   config.JWTConfig
	log   *logging.Logger
}

// NewService creates an auth service.
func NewService(users UserRepository, cfg config.JWTConfig, log *logging.Logger) *Service {
	return &Service{users: users, cfg: cfg, log: log}
}

// Signup creates a new account and returns the stored user.
func (s *Service) Signup(ctx context.Context, email, password, displayName string) (*User, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user signed up", "user_id", user.ID)

	return user, nil
}

// Login verifies credentials and returns a session with a signed access
// token. Unknown email and wrong password both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Burn a hash comparison so unknown emails take as long as
		// wrong passwords.
		_, _ = VerifyPassword(password, dummyHash) //nolint:errcheck // timing equalisation only
		return nil, ErrInvalidCredentials
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrUserDisabled
	}

	token, expiresAt, err := GenerateAccessToken(user, s.cfg.Secret, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	s.log.Info("user logged in", "user_id", user.ID)

	return &Session{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

// ResetPassword replaces the password for an authenticated user after
// verifying their current one.
func (s *Service) ResetPassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := VerifyPassword(currentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verifying current password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing new password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.log.Info("password reset", "user_id", userID)

	return nil
}

// dummyHash is a valid Argon2id PHC string of a throwaway password, used
// to equalise login timing when the email is unknown.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=1$AAAAAAAAAAAAAAAAAAAAAA$m5jZ2J0ZXN0aGFzaDAwMDAwMDAwMDAwMDAwMDAwMDA"
