package middleware

import (
	"errors"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"catalog/internal/auth"
	apperrors "catalog/internal/errors"
	"catalog/internal/logging"
	"catalog/internal/model"
	"catalog/internal/service"
)

const (
	// ClaimsContextKey holds the verified *auth.Claims.
	ClaimsContextKey = "claims"
	// ActorContextKey holds the *model.User loaded for the claims.
	ActorContextKey = "actor"

	tokenLookup = "header:" + echo.HeaderAuthorization + ":Bearer "
)

// Authenticator builds the per-route authentication stages:
// verify token, then load the acting user, then optionally check a role.
type Authenticator struct {
	tokens  auth.TokenIssuer
	authSvc service.AuthService
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(tokens auth.TokenIssuer, authSvc service.AuthService) *Authenticator {
	return &Authenticator{tokens: tokens, authSvc: authSvc}
}

func (a *Authenticator) parser(kind auth.TokenKind) func(c echo.Context, token string) (interface{}, error) {
	return func(c echo.Context, token string) (interface{}, error) {
		return a.tokens.Verify(token, kind)
	}
}

// Require rejects requests without a valid token of the given kind with 401.
func (a *Authenticator) Require(kind auth.TokenKind) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:     ClaimsContextKey,
		TokenLookup:    tokenLookup,
		ParseTokenFunc: a.parser(kind),
		ErrorHandler: func(c echo.Context, err error) error {
			return toHTTPError(authFailure(err))
		},
	})
}

// Optional accepts a valid access token or none at all. An invalid or
// expired token is treated as anonymous.
func (a *Authenticator) Optional() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:             ClaimsContextKey,
		TokenLookup:            tokenLookup,
		ParseTokenFunc:         a.parser(auth.KindAccess),
		ContinueOnIgnoredError: true,
		ErrorHandler: func(c echo.Context, err error) error {
			if errors.Is(err, apperrors.ErrUnauthenticated) {
				logging.FromContext(c.Request().Context()).Debug("ignoring bad optional token", "error", err)
			}
			return nil
		},
	})
}

// LoadActor resolves the verified claims to the current stored user.
// It must run after Require(auth.KindAccess).
func (a *Authenticator) LoadActor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := a.authSvc.Authenticate(c.Request().Context(), ClaimsFrom(c))
		if err != nil {
			return toHTTPError(err)
		}
		c.Set(ActorContextKey, user)
		return next(c)
	}
}

// RequireRole rejects actors without role with 403. It must run after LoadActor.
func RequireRole(role model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := ActorFrom(c)
			if actor == nil {
				return toHTTPError(apperrors.ErrTokenMissing)
			}
			if actor.Role != role {
				return toHTTPError(apperrors.ErrInsufficientRole)
			}
			return next(c)
		}
	}
}

// ClaimsFrom returns the verified claims, or nil for anonymous requests.
func ClaimsFrom(c echo.Context) *auth.Claims {
	claims, _ := c.Get(ClaimsContextKey).(*auth.Claims)
	return claims
}

// ActorFrom returns the loaded acting user, or nil.
func ActorFrom(c echo.Context) *model.User {
	user, _ := c.Get(ActorContextKey).(*model.User)
	return user
}

// authFailure normalizes echo-jwt errors. Token parse errors already belong
// to the unauthenticated family; anything else came from header extraction.
func authFailure(err error) error {
	if errors.Is(err, apperrors.ErrUnauthenticated) {
		return err
	}
	return apperrors.ErrTokenMissing
}

func toHTTPError(err error) *echo.HTTPError {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}
