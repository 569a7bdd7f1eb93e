package auth

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/diewo77/fieldops-app/internal/apperr"
)

// DefaultTokenTTL is how long an issued token stays valid unless the caller
// asks for a different lifetime.
const DefaultTokenTTL = 24 * time.Hour

// Claims are the identity facts carried by a verified token.
type Claims struct {
	UserID    uint   `json:"uid"`
	AccountID uint   `json:"aid"`
	RoleName  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies bearer tokens. The signing secret is
// injected at construction; nothing in this package reads the environment.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService builds a token service with the given secret and default
// TTL. A non-positive ttl falls back to DefaultTokenTTL.
func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: secret, ttl: ttl}
}

// Issue signs a token carrying the user, account and role claims. A zero ttl
// uses the service default; a negative ttl yields an already-expired token.
func (s *TokenService) Issue(userID, accountID uint, roleName string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = s.ttl
	}
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		AccountID: accountID,
		RoleName:  roleName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token. Signature mismatch, expiry and
// malformed structure all collapse into apperr.ErrUnauthorized so callers
// cannot tell a forged token from a stale one.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, apperr.ErrUnauthorized
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 || claims.AccountID == 0 {
		return nil, apperr.ErrUnauthorized
	}
	return claims, nil
}
