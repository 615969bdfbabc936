package services

import (
	"context"
	"log"
	"strings"

	"matchflix/internal/auth"
	"matchflix/internal/config"
	"matchflix/internal/errs"
	"matchflix/internal/models"
	"matchflix/internal/storage"
)

// AuthService handles registration and login.
type AuthService interface {
	// Register creates the account with an empty profile and returns a signed
	// token for it.
	Register(ctx context.Context, email, password, name string) (*models.User, string, error)
	// Login verifies the credentials and returns a signed token.
	Login(ctx context.Context, email, password string) (*models.User, string, error)
}

type authService struct {
	userRepo storage.UserRepository
	authCfg  config.AuthConfig
}

// NewAuthService creates an AuthService.
func NewAuthService(userRepo storage.UserRepository, authCfg config.AuthConfig) AuthService {
	return &authService{userRepo: userRepo, authCfg: authCfg}
}

func (s *authService) Register(ctx context.Context, email, password, name string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", errs.Errorf(errs.EINVALID, "a valid email is required")
	}
	if len(password) < 8 {
		return nil, "", errs.Errorf(errs.EINVALID, "password must be at least 8 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, "", errs.Errorf(errs.EINVALID, "name is required")
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", errs.Errorf(errs.ECONFLICT, "email is already registered")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Profile:      &models.Profile{Name: strings.TrimSpace(name)},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}
	log.Printf("[auth] registered user %s", user.ID)

	token, err := auth.GenerateToken(user.ID, user.Email, s.authCfg)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	// Same response for unknown email and wrong password.
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", errs.Errorf(errs.EUNAUTHORIZED, "invalid email or password")
	}

	token, err := auth.GenerateToken(user.ID, user.Email, s.authCfg)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
