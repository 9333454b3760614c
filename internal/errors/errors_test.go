package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"missing field", Required("username"), http.StatusBadRequest, "username is required"},
		{"wrapped validation", fmt.Errorf("create: %w", Invalid("price", "price must be a non-negative number")), http.StatusBadRequest, "price must be a non-negative number"},
		{"duplicate username", ErrUsernameExists, http.StatusBadRequest, "Username already exists"},
		{"duplicate email", ErrEmailExists, http.StatusBadRequest, "Email already registered"},
		{"duplicate from storage", fmt.Errorf("create user: %w", ErrDuplicateCredential), http.StatusBadRequest, "Username or email already exists"},
		{"bad login", ErrInvalidCredentials, http.StatusUnauthorized, "Invalid username or password"},
		{"no token", ErrTokenMissing, http.StatusUnauthorized, "Missing Authorization Header"},
		{"expired", ErrTokenExpired, http.StatusUnauthorized, "Token has expired"},
		{"refresh used as access", ErrAccessTokenRequired, http.StatusUnauthorized, "Only access tokens are allowed"},
		{"bad signature", fmt.Errorf("%w: signature is invalid", ErrTokenInvalid), http.StatusUnauthorized, "Invalid token"},
		{"update forbidden", ErrUpdateForbidden, http.StatusForbidden, "Not authorized to update this product"},
		{"delete forbidden", ErrDeleteForbidden, http.StatusForbidden, "Not authorized to delete this product"},
		{"role forbidden", ErrInsufficientRole, http.StatusForbidden, "Insufficient permissions"},
		{"product missing", ErrProductNotFound, http.StatusNotFound, "Product not found"},
		{"unexpected", errors.New("dial tcp: connection refused"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantMsg, httpErr.ToErrorResponse().Msg)
		})
	}
}

func TestDuplicateFlavoursShareRoot(t *testing.T) {
	assert.ErrorIs(t, ErrUsernameExists, ErrDuplicateCredential)
	assert.ErrorIs(t, ErrEmailExists, ErrDuplicateCredential)
	assert.ErrorIs(t, ErrTokenExpired, ErrUnauthenticated)
	assert.ErrorIs(t, ErrDeleteForbidden, ErrForbidden)
}
