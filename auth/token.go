package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenLifetime is fixed: tokens cannot be refreshed or revoked, so a stolen
// token stays valid for at most this long.
const TokenLifetime = time.Hour

const (
	tokenIssuer  = "storefront"
	minSecretLen = 32
)

// Verification failures. Callers outside this package see both as the same
// 403; the distinction only shows up in logs.
var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token has expired")
)

// Claims is the identity assertion carried by a bearer token.
type Claims struct {
	UserID  int64  `json:"userId"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// TokenVerifier is what the middleware needs from the token service.
type TokenVerifier interface {
	Verify(tokenString string) (*Claims, error)
}

// TokenService issues and verifies HS256 tokens. The secret is loaded once
// at startup; anyone holding it can mint admin tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a token service signing with secret.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", minSecretLen)
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    TokenLifetime,
		now:    time.Now,
	}, nil
}

// WithClock replaces the time source; used by tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// Issue signs a token for the given identity. It returns the token and its expiry.
func (s *TokenService) Issue(userID int64, email string, isAdmin bool) (string, time.Time, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)

	claims := &Claims{
		UserID:  userID,
		Email:   email,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, issuer and expiry and returns the decoded claims.
// Errors wrap ErrTokenExpired or ErrTokenInvalid.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	// sub and userId are written together; a mismatch means the token was not ours.
	if claims.Subject != strconv.FormatInt(claims.UserID, 10) {
		return nil, fmt.Errorf("%w: subject does not match user id", ErrTokenInvalid)
	}

	return claims, nil
}
