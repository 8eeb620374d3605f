package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewTokenService("test-secret", time.Minute)

	token, err := svc.GenerateToken("operator-1", "operator")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "operator-1", claims.Subject)
	assert.Equal(t, "operator", claims.Role)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewTokenService("test-secret", time.Minute)

	expired := NewTokenService("test-secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.GenerateToken("operator-1", "")
	require.NoError(t, err)

	otherSecret, err := NewTokenService("other-secret", time.Minute).GenerateToken("operator-1", "")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "expired", token: expiredToken},
		{name: "wrong secret", token: otherSecret},
		{name: "none algorithm", token: noneToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestGenerateTokenRequiresSubject(t *testing.T) {
	_, err := NewTokenService("s", 0).GenerateToken(" ", "")
	assert.Error(t, err)

	_, err = NewTokenService("", 0).GenerateToken("sub", "")
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{header: "Bearer abc", want: "abc", ok: true},
		{header: "bearer   abc ", want: "abc", ok: true},
		{header: "Basic abc"},
		{header: "Bearer"},
		{header: "Bearer  "},
		{header: ""},
	}

	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}
