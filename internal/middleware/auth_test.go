package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"catalog/internal/auth"
	apperrors "catalog/internal/errors"
	"catalog/internal/model"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	args := m.Called(ctx, username, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, string, *model.User, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.String(1), nil, args.Error(3)
}

func (m *MockAuthService) Refresh(ctx context.Context, claims *auth.Claims) (string, error) {
	args := m.Called(ctx, claims)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, claims *auth.Claims) (*model.User, error) {
	args := m.Called(ctx, claims)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

const testSecret = "middleware-test-secret"

func serve(t *testing.T, mw []echo.MiddlewareFunc, header string) (echo.Context, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	h := func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	}
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	err := h(c)
	return c, reached, err
}

func assertHTTPError(t *testing.T, err error, status int, msg string) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T", err)
	assert.Equal(t, status, he.Code)
	body, ok := he.Message.(apperrors.ErrorResponse)
	require.True(t, ok)
	assert.Equal(t, msg, body.Msg)
}

func TestAuthenticator_Require(t *testing.T) {
	tokens := auth.NewJWTService(testSecret, time.Hour, 0)
	expired := auth.NewJWTService(testSecret, -time.Minute, 0)
	authn := NewAuthenticator(tokens, new(MockAuthService))

	access, err := tokens.IssueAccess("alice")
	require.NoError(t, err)
	refresh, err := tokens.IssueRefresh("alice")
	require.NoError(t, err)
	stale, err := expired.IssueAccess("alice")
	require.NoError(t, err)

	tests := []struct {
		name   string
		kind   auth.TokenKind
		header string
		msg    string
	}{
		{name: "missing header", kind: auth.KindAccess, header: "", msg: "Missing Authorization Header"},
		{name: "refresh token on resource route", kind: auth.KindAccess, header: "Bearer " + refresh, msg: "Only access tokens are allowed"},
		{name: "access token on refresh route", kind: auth.KindRefresh, header: "Bearer " + access, msg: "Only refresh tokens are allowed"},
		{name: "expired", kind: auth.KindAccess, header: "Bearer " + stale, msg: "Token has expired"},
		{name: "garbage", kind: auth.KindAccess, header: "Bearer not.a.jwt", msg: "Invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, reached, err := serve(t, []echo.MiddlewareFunc{authn.Require(tt.kind)}, tt.header)
			assert.False(t, reached)
			assertHTTPError(t, err, http.StatusUnauthorized, tt.msg)
		})
	}

	t.Run("valid access token", func(t *testing.T) {
		c, reached, err := serve(t, []echo.MiddlewareFunc{authn.Require(auth.KindAccess)}, "Bearer "+access)
		require.NoError(t, err)
		assert.True(t, reached)
		require.NotNil(t, ClaimsFrom(c))
		assert.Equal(t, "alice", ClaimsFrom(c).Identity())
	})
}

func TestAuthenticator_Optional(t *testing.T) {
	tokens := auth.NewJWTService(testSecret, time.Hour, 0)
	authn := NewAuthenticator(tokens, new(MockAuthService))
	access, err := tokens.IssueAccess("alice")
	require.NoError(t, err)

	for _, header := range []string{"", "Bearer not.a.jwt"} {
		c, reached, err := serve(t, []echo.MiddlewareFunc{authn.Optional()}, header)
		require.NoError(t, err)
		assert.True(t, reached)
		assert.Nil(t, ClaimsFrom(c))
	}

	c, reached, err := serve(t, []echo.MiddlewareFunc{authn.Optional()}, "Bearer "+access)
	require.NoError(t, err)
	assert.True(t, reached)
	require.NotNil(t, ClaimsFrom(c))
}

func TestAuthenticator_LoadActorAndRole(t *testing.T) {
	tokens := auth.NewJWTService(testSecret, time.Hour, 0)
	authSvc := new(MockAuthService)
	authn := NewAuthenticator(tokens, authSvc)

	alice := &model.User{ID: 1, Username: "alice", Role: model.RoleUser}
	root := &model.User{ID: 2, Username: "root", Role: model.RoleAdmin}
	authSvc.On("Authenticate", mock.Anything, mock.MatchedBy(func(c *auth.Claims) bool { return c.Identity() == "alice" })).Return(alice, nil)
	authSvc.On("Authenticate", mock.Anything, mock.MatchedBy(func(c *auth.Claims) bool { return c.Identity() == "root" })).Return(root, nil)
	authSvc.On("Authenticate", mock.Anything, mock.MatchedBy(func(c *auth.Claims) bool { return c.Identity() == "ghost" })).Return(nil, apperrors.ErrActorNotFound)

	bearer := func(name string) string {
		token, err := tokens.IssueAccess(name)
		require.NoError(t, err)
		return "Bearer " + token
	}
	adminOnly := []echo.MiddlewareFunc{authn.Require(auth.KindAccess), authn.LoadActor, RequireRole(model.RoleAdmin)}

	c, reached, err := serve(t, []echo.MiddlewareFunc{authn.Require(auth.KindAccess), authn.LoadActor}, bearer("alice"))
	require.NoError(t, err)
	assert.True(t, reached)
	assert.Equal(t, alice, ActorFrom(c))

	_, reached, err = serve(t, []echo.MiddlewareFunc{authn.Require(auth.KindAccess), authn.LoadActor}, bearer("ghost"))
	assert.False(t, reached)
	assertHTTPError(t, err, http.StatusUnauthorized, "User not found")

	_, reached, err = serve(t, adminOnly, bearer("alice"))
	assert.False(t, reached)
	assertHTTPError(t, err, http.StatusForbidden, "Insufficient permissions")

	_, reached, err = serve(t, adminOnly, bearer("root"))
	require.NoError(t, err)
	assert.True(t, reached)
}
