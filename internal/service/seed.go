package service

import (
	"context"
	"errors"

	apperrors "catalog/internal/errors"
	"catalog/internal/model"
)

// SeedAdmin creates the bootstrap admin unless a user with that username
// already exists. It reports whether a user was created.
func SeedAdmin(ctx context.Context, users UserService, username, email, password string) (bool, error) {
	_, err := users.FindByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return false, err
	}

	if _, err := users.Create(ctx, username, email, password, model.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}
