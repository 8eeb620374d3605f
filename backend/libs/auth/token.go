package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail signature, expiry or claim checks.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims is the JWT payload accepted by the sessions API.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 tokens.
type TokenService struct {
	secret    []byte
	expiresIn time.Duration
	now       func() time.Time
}

// NewTokenService returns a token service. A non-positive expiry defaults to one hour.
func NewTokenService(secret string, expiresIn time.Duration) *TokenService {
	if expiresIn <= 0 {
		expiresIn = time.Hour
	}
	return &TokenService{secret: []byte(secret), expiresIn: expiresIn, now: time.Now}
}

// GenerateToken issues a token for subject.
func (t *TokenService) GenerateToken(subject, role string) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", errors.New("auth: subject is required")
	}
	if len(t.secret) == 0 {
		return "", errors.New("auth: secret is empty")
	}

	now := t.now().UTC()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiresIn)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// ValidateToken verifies signature and expiry and returns the decoded claims.
func (t *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("auth: unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
