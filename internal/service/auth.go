package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type AuthService struct {
	Repo             *repo.GormRepo
	Tokens           *tokens.Authority
	Events           mykafka.Publisher
	AllowAdminSignup bool
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Signup(ctx context.Context, req transport.SignupRequest) (*transport.AuthResult, error) {
	l := logging.FromContext(ctx).With("service", "auth_signup")

	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}
	if len(req.Password) > hash.MaxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, hash.MaxPasswordBytes)
	}

	role := models.RoleCustomer
	if strings.TrimSpace(req.Role) != "" {
		r, err := models.ParseRole(req.Role)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		role = r
	}
	if role == models.RoleAdmin && !s.AllowAdminSignup {
		return nil, fmt.Errorf("%w: admin signup is disabled", ErrForbidden)
	}

	taken, err := s.Repo.EmailTaken(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if errors.Is(err, hash.ErrPasswordTooLong) {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Address:      req.Address,
		Phone:        req.Phone,
		Role:         role,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.Tokens.Issue(tokens.Identity{ID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, err
	}

	l.Info("user_registered", "user_id", user.ID, "role", user.Role)
	publish(ctx, s.Events, mykafka.TopicUsers, fmt.Sprint(user.ID), "user_registered", transport.NewUserView(user))

	return &transport.AuthResult{Token: token, User: transport.NewUserView(user)}, nil
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*transport.AuthResult, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user not found", ErrUnauthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return nil, fmt.Errorf("%w: wrong password", ErrUnauthenticated)
	}

	if strings.TrimSpace(req.Role) != "" {
		want, err := models.ParseRole(req.Role)
		if err != nil || want != user.Role {
			return nil, fmt.Errorf("%w: role mismatch", ErrUnauthenticated)
		}
	}

	token, err := s.Tokens.Issue(tokens.Identity{ID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, err
	}
	return &transport.AuthResult{Token: token, User: transport.NewUserView(user)}, nil
}

func (s *AuthService) Logout(ctx context.Context, authorizationHeader string) error {
	return s.Tokens.Revoke(ctx, authorizationHeader)
}
