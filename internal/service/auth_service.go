package service

import (
	"context"
	"errors"
	"fmt"

	"catalog/internal/auth"
	apperrors "catalog/internal/errors"
	"catalog/internal/logging"
	"catalog/internal/model"
)

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (accessToken, refreshToken string, user *model.User, err error)
	Refresh(ctx context.Context, claims *auth.Claims) (accessToken string, err error)
	Authenticate(ctx context.Context, claims *auth.Claims) (*model.User, error)
}

type authService struct {
	users  UserService
	tokens auth.TokenIssuer
}

// NewAuthService creates a new authentication service.
func NewAuthService(users UserService, tokens auth.TokenIssuer) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
	}
}

// Register creates a regular user. Public registration never grants admin.
func (s *authService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	user, err := s.users.Create(ctx, username, email, password, model.RoleUser)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login verifies credentials and returns an access/refresh token pair.
func (s *authService) Login(ctx context.Context, username, password string) (accessToken, refreshToken string, user *model.User, err error) {
	user, err = s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return "", "", nil, apperrors.ErrInvalidCredentials
		}
		return "", "", nil, err
	}

	if !s.users.Verify(user, password) {
		return "", "", nil, apperrors.ErrInvalidCredentials
	}

	accessToken, err = s.tokens.IssueAccess(user.Username)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err = s.tokens.IssueRefresh(user.Username)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return accessToken, refreshToken, user, nil
}

// Refresh mints a new access token for the identity of a verified refresh token.
func (s *authService) Refresh(ctx context.Context, claims *auth.Claims) (string, error) {
	if claims == nil || claims.Type != auth.KindRefresh {
		return "", apperrors.ErrRefreshTokenRequired
	}
	accessToken, err := s.tokens.IssueAccess(claims.Identity())
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Authenticate loads the current user named by verified access claims.
func (s *authService) Authenticate(ctx context.Context, claims *auth.Claims) (*model.User, error) {
	if claims == nil {
		return nil, apperrors.ErrTokenMissing
	}
	user, err := s.users.FindByUsername(ctx, claims.Identity())
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrActorNotFound
		}
		return nil, err
	}
	return user, nil
}
