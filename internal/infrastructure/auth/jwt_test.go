package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nvtienanh/metagate/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *JWTService {
	return NewJWTService(&config.AuthConfig{
		JWTSecret: "test-secret",
		JWTIssuer: "metagate-test",
		TokenTTL:  time.Hour,
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestService()

	token, expiresAt, err := svc.GenerateToken(GenerateTokenInput{
		AccountID: "acc-123",
		Email:     "staff@example.com",
		IsStaff:   true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "acc-123", claims.AccountID)
	assert.Equal(t, "staff@example.com", claims.Email)
	assert.True(t, claims.IsStaff)
	assert.Equal(t, "metagate-test", claims.Issuer)
	assert.Equal(t, "acc-123", claims.Subject)
}

func TestValidateToken_Invalid(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{
			name:    "garbage token",
			token:   "not-a-jwt",
			wantErr: ErrInvalidToken,
		},
		{
			name:    "empty token",
			token:   "",
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := newTestService()
	other := NewJWTService(&config.AuthConfig{
		JWTSecret: "different-secret",
		JWTIssuer: "metagate-test",
		TokenTTL:  time.Hour,
	})

	token, _, err := svc.GenerateToken(GenerateTokenInput{AccountID: "acc-123"})
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewJWTService(&config.AuthConfig{
		JWTSecret: "test-secret",
		JWTIssuer: "metagate-test",
		TokenTTL:  -time.Minute,
	})

	token, _, err := svc.GenerateToken(GenerateTokenInput{AccountID: "acc-123"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_MissingAccountID(t *testing.T) {
	svc := newTestService()

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "metagate-test",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrMissingAccountID)
}

func TestValidateToken_WrongSigningMethod(t *testing.T) {
	svc := newTestService()

	// Tokens signed with "none" must be rejected
	claims := &Claims{AccountID: "acc-123"}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.Error(t, err)
}
