package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexora-app/mastery-api/internal/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   "test-secret-key-thats-long-enough-for-hmac",
		TokenLifetimeMinutes:        30,
		RefreshTokenLifetimeMinutes: 1440,
	}
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(testAuthConfig())
	assert.NoError(t, err)

	cfg := testAuthConfig()
	cfg.JWTSecret = "too-short"
	_, err = NewJWTService(cfg)
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	userID := uuid.New()

	svc, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)

	token, err := svc.GenerateToken(ctx, userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, tokenTypeAccess, claims.TokenType)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	userID := uuid.New()

	svc, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)

	token, err := svc.GenerateRefreshToken(ctx, userID)
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, tokenTypeRefresh, claims.TokenType)
}

func TestWrongTokenType(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	userID := uuid.New()

	svc, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)

	accessToken, err := svc.GenerateToken(ctx, userID)
	require.NoError(t, err)
	refreshToken, err := svc.GenerateRefreshToken(ctx, userID)
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, refreshToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = svc.ValidateRefreshToken(ctx, accessToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestExpiredToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	userID := uuid.New()

	svc, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)

	impl, ok := svc.(*hmacJWTService)
	require.True(t, ok)

	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	impl.timeFunc = func() time.Time { return issued }

	token, err := svc.GenerateToken(ctx, userID)
	require.NoError(t, err)

	// Just inside the lifetime plus clock skew.
	impl.timeFunc = func() time.Time { return issued.Add(31 * time.Minute) }
	_, err = svc.ValidateToken(ctx, token)
	assert.NoError(t, err)

	// Past the lifetime plus clock skew.
	impl.timeFunc = func() time.Time { return issued.Add(33 * time.Minute) }
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestInvalidToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// A token signed with a different key is rejected.
	otherCfg := testAuthConfig()
	otherCfg.JWTSecret = "another-secret-key-thats-also-long-enough"
	other, err := NewJWTService(otherCfg)
	require.NoError(t, err)

	token, err := other.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
