package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrProductNotFound is returned when a product id does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrUserNotFound is returned when a user id or username does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateCredential is returned when a username or email is already taken.
	ErrDuplicateCredential = errors.New("duplicate credential")
	// ErrUsernameExists is the username flavour of ErrDuplicateCredential.
	ErrUsernameExists = fmt.Errorf("username already exists: %w", ErrDuplicateCredential)
	// ErrEmailExists is the email flavour of ErrDuplicateCredential.
	ErrEmailExists = fmt.Errorf("email already registered: %w", ErrDuplicateCredential)

	// ErrUnauthenticated is the root of every 401 failure.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidCredentials is returned when username or password is incorrect.
	ErrInvalidCredentials = fmt.Errorf("invalid username or password: %w", ErrUnauthenticated)
	// ErrTokenMissing is returned when a required bearer token is absent.
	ErrTokenMissing = fmt.Errorf("missing authorization header: %w", ErrUnauthenticated)
	// ErrTokenInvalid is returned for malformed tokens or bad signatures.
	ErrTokenInvalid = fmt.Errorf("invalid token: %w", ErrUnauthenticated)
	// ErrTokenExpired is returned when the token exp claim is in the past.
	ErrTokenExpired = fmt.Errorf("token has expired: %w", ErrUnauthenticated)
	// ErrAccessTokenRequired is returned when a refresh token is presented to a resource endpoint.
	ErrAccessTokenRequired = fmt.Errorf("only access tokens are allowed: %w", ErrUnauthenticated)
	// ErrRefreshTokenRequired is returned when an access token is presented to the refresh endpoint.
	ErrRefreshTokenRequired = fmt.Errorf("only refresh tokens are allowed: %w", ErrUnauthenticated)
	// ErrActorNotFound is returned when a valid token names a user that no longer exists.
	ErrActorNotFound = fmt.Errorf("token subject not found: %w", ErrUnauthenticated)

	// ErrForbidden is the root of every 403 failure.
	ErrForbidden = errors.New("forbidden")
	// ErrUpdateForbidden is returned when the actor may not update the product.
	ErrUpdateForbidden = fmt.Errorf("not authorized to update this product: %w", ErrForbidden)
	// ErrDeleteForbidden is returned when the actor may not delete the product.
	ErrDeleteForbidden = fmt.Errorf("not authorized to delete this product: %w", ErrForbidden)
	// ErrInsufficientRole is returned when a route requires a role the actor lacks.
	ErrInsufficientRole = fmt.Errorf("insufficient permissions: %w", ErrForbidden)

	// ErrInvalidRole is returned when a role name is not admin or user.
	ErrInvalidRole = errors.New("invalid role")
)

// ValidationError reports missing or malformed caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Required builds the "<field> is required" validation error.
func Required(field string) *ValidationError {
	return &ValidationError{Field: field, Message: field + " is required"}
}

// Invalid builds a validation error with a custom message.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Msg  string `json:"msg"`
	Code string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Msg:  e.Message,
		Code: e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return NewHTTPError(http.StatusBadRequest, verr.Message, "VALIDATION_ERROR")
	}

	switch {
	case errors.Is(err, ErrUsernameExists):
		return NewHTTPError(http.StatusBadRequest, "Username already exists", "USERNAME_EXISTS")
	case errors.Is(err, ErrEmailExists):
		return NewHTTPError(http.StatusBadRequest, "Email already registered", "EMAIL_EXISTS")
	case errors.Is(err, ErrDuplicateCredential):
		return NewHTTPError(http.StatusBadRequest, "Username or email already exists", "DUPLICATE_CREDENTIAL")
	case errors.Is(err, ErrInvalidRole):
		return NewHTTPError(http.StatusBadRequest, "role must be one of: admin, user", "INVALID_ROLE")

	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, "Invalid username or password", "INVALID_CREDENTIALS")
	case errors.Is(err, ErrTokenMissing):
		return NewHTTPError(http.StatusUnauthorized, "Missing Authorization Header", "TOKEN_MISSING")
	case errors.Is(err, ErrTokenExpired):
		return NewHTTPError(http.StatusUnauthorized, "Token has expired", "TOKEN_EXPIRED")
	case errors.Is(err, ErrAccessTokenRequired):
		return NewHTTPError(http.StatusUnauthorized, "Only access tokens are allowed", "WRONG_TOKEN_TYPE")
	case errors.Is(err, ErrRefreshTokenRequired):
		return NewHTTPError(http.StatusUnauthorized, "Only refresh tokens are allowed", "WRONG_TOKEN_TYPE")
	case errors.Is(err, ErrActorNotFound):
		return NewHTTPError(http.StatusUnauthorized, "User not found", "USER_NOT_FOUND")
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, "Invalid token", "TOKEN_INVALID")

	case errors.Is(err, ErrUpdateForbidden):
		return NewHTTPError(http.StatusForbidden, "Not authorized to update this product", "FORBIDDEN")
	case errors.Is(err, ErrDeleteForbidden):
		return NewHTTPError(http.StatusForbidden, "Not authorized to delete this product", "FORBIDDEN")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, "Insufficient permissions", "FORBIDDEN")

	case errors.Is(err, ErrProductNotFound):
		return NewHTTPError(http.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, "User not found", "USER_NOT_FOUND")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
