package util

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

func TestGenerateTokenPair(t *testing.T) {
	tests := []struct {
		name   string
		userID uint
		email  string
		role   string
	}{
		{name: "Customer", userID: 1, email: "test@example.com", role: "user"},
		{name: "Admin", userID: 2, email: "admin@example.com", role: "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := GenerateTokenPair(tt.userID, tt.email, tt.role, testSecret, 15*time.Minute, 7*24*time.Hour)
			require.NoError(t, err)
			require.NotNil(t, tokens)
			assert.NotEmpty(t, tokens.AccessToken)
			assert.NotEmpty(t, tokens.RefreshToken)
			assert.NotEqual(t, tokens.AccessToken, tokens.RefreshToken)

			access, err := ValidateToken(tokens.AccessToken, testSecret)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, access.UserID)
			assert.Equal(t, tt.email, access.Email)
			assert.Equal(t, tt.role, access.Role)
			assert.Equal(t, TokenTypeAccess, access.TokenType)

			refresh, err := ValidateToken(tokens.RefreshToken, testSecret)
			require.NoError(t, err)
			assert.Equal(t, TokenTypeRefresh, refresh.TokenType)
		})
	}
}

func TestValidateToken_Errors(t *testing.T) {
	valid, err := GenerateTokenPair(1, "test@example.com", "user", testSecret, time.Hour, time.Hour)
	require.NoError(t, err)

	expired, err := GenerateTokenPair(1, "test@example.com", "user", testSecret, -time.Minute, time.Hour)
	require.NoError(t, err)

	noUser, err := GenerateTokenPair(0, "test@example.com", "user", testSecret, time.Hour, time.Hour)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1})
	noneToken, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{name: "Empty token", token: "", secret: testSecret, wantErr: ErrInvalidToken},
		{name: "Garbage", token: "not.a.token", secret: testSecret, wantErr: ErrInvalidToken},
		{name: "Wrong secret", token: valid.AccessToken, secret: "other-secret", wantErr: ErrInvalidToken},
		{name: "Expired", token: expired.AccessToken, secret: testSecret, wantErr: ErrExpiredToken},
		{name: "Missing user id", token: noUser.AccessToken, secret: testSecret, wantErr: ErrInvalidToken},
		{name: "Unsigned", token: noneToken, secret: testSecret, wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.secret)
			assert.Nil(t, claims)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestTokenTTL(t *testing.T) {
	assert.Equal(t, time.Duration(0), TokenTTL(nil))
	assert.Equal(t, time.Duration(0), TokenTTL(&Claims{}))

	past := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}}
	assert.Equal(t, time.Duration(0), TokenTTL(past))

	future := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
	ttl := TokenTTL(future)
	assert.Greater(t, ttl, 59*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)
}
