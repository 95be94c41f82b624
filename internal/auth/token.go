package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mybus/internal/domain"
)

// Claims is the decoded payload of a verified token.
type Claims struct {
	UserID string
	Role   string
}

type tokenClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256-signed session tokens. The secret
// is read-only after construction; a token stays valid until its embedded
// expiry (no revocation list, logout is client-side only).
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService builds a token service; a zero ttl falls back to 24h.
func NewTokenService(secret string, ttl time.Duration) TokenService {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed token carrying the subject id and role.
func (s TokenService) Issue(userID, role string) (string, error) {
	now := time.Now()
	claims := &tokenClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry. Expired, malformed and forged tokens
// all surface as the same unauthorized error; callers never learn which.
func (s TokenService) Verify(tokenString string) (Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Claims{}, domain.UnauthorizedError{Msg: "invalid or expired token", Err: err}
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return Claims{}, domain.UnauthorizedError{Msg: "invalid or expired token"}
	}

	return Claims{UserID: claims.UserID, Role: claims.Role}, nil
}
