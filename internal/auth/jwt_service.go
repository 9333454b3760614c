package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	apperrors "catalog/internal/errors"
)

const (
	// AccessTokenExpiry is the default lifetime of access tokens.
	AccessTokenExpiry = time.Hour
	// RefreshTokenExpiry is the default lifetime of refresh tokens.
	RefreshTokenExpiry = 30 * 24 * time.Hour
)

// TokenKind distinguishes access tokens from refresh tokens.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims represents JWT claims. The subject is the username.
type Claims struct {
	Type TokenKind `json:"type"`
	jwt.RegisteredClaims
}

// Identity returns the username the token was issued to.
func (c *Claims) Identity() string {
	return c.Subject
}

// TokenIssuer is the part of JWTService the services depend on.
type TokenIssuer interface {
	IssueAccess(identity string) (string, error)
	IssueRefresh(identity string) (string, error)
	Verify(token string, expected TokenKind) (*Claims, error)
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

var _ TokenIssuer = (*JWTService)(nil)

// NewJWTService creates a new JWT service with the given secret and lifetimes.
// Zero lifetimes fall back to AccessTokenExpiry and RefreshTokenExpiry.
func NewJWTService(secret string, accessTTL, refreshTTL time.Duration) *JWTService {
	if accessTTL == 0 {
		accessTTL = AccessTokenExpiry
	}
	if refreshTTL == 0 {
		refreshTTL = RefreshTokenExpiry
	}
	return &JWTService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssueAccess signs a short-lived access token for identity.
func (s *JWTService) IssueAccess(identity string) (string, error) {
	return s.issue(identity, KindAccess, s.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for identity.
func (s *JWTService) IssueRefresh(identity string) (string, error) {
	return s.issue(identity, KindRefresh, s.refreshTTL)
}

func (s *JWTService) issue(identity string, kind TokenKind, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		Type: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Verify validates signature, expiry and kind, in that order.
func (s *JWTService) Verify(tokenString string, expected TokenKind) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		// jwt/v4 reports claim failures alongside signature failures; a bad
		// signature wins so forged tokens never read as merely expired.
		forged := errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrTokenUnverifiable)
		if errors.Is(err, jwt.ErrTokenExpired) && !forged {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	if claims.Type != expected {
		if expected == KindRefresh {
			return nil, apperrors.ErrRefreshTokenRequired
		}
		return nil, apperrors.ErrAccessTokenRequired
	}

	return claims, nil
}
