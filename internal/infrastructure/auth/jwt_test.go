package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lastmile/backend/internal/infrastructure/config"
)

func newTestJWTService() *JWTService {
	cfg := config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	}
	return NewJWTService(cfg)
}

func newTestInput() GenerateTokenInput {
	officeID := uuid.New()
	return GenerateTokenInput{
		UserID:   uuid.New(),
		Username: "manager01",
		Role:     "MANAGER",
		OfficeID: &officeID,
	}
}

func TestNewJWTService(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:                 "test-secret",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        5,
	}

	svc := NewJWTService(cfg)

	assert.NotNil(t, svc)
	assert.Equal(t, []byte(cfg.Secret), svc.accessSecret)
	assert.Equal(t, cfg.AccessTokenExpiration, svc.accessExpiration)
	assert.Equal(t, cfg.RefreshTokenExpiration, svc.refreshExpiration)
	assert.Equal(t, cfg.Issuer, svc.issuer)
	assert.Equal(t, cfg.MaxRefreshCount, svc.maxRefreshCount)
}

func TestNewJWTService_UsesSecretForRefreshIfNotProvided(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:        "test-secret",
		RefreshSecret: "", // Empty
	}

	svc := NewJWTService(cfg)

	assert.Equal(t, []byte(cfg.Secret), svc.refreshSecret)
}

func TestGenerateTokenPair(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	pair, err := svc.GenerateTokenPair(input)

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.AccessTokenExpiresAt.After(time.Now()))
	assert.True(t, pair.RefreshTokenExpiresAt.After(time.Now()))
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))
}

func TestValidateAccessToken_Success(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)

	require.NoError(t, err)
	assert.Equal(t, input.UserID.String(), claims.UserID)
	assert.Equal(t, input.Username, claims.Username)
	assert.Equal(t, input.Role, claims.Role)
	assert.Equal(t, input.OfficeID.String(), claims.OfficeID)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
}

func TestValidateAccessToken_NoOffice(t *testing.T) {
	svc := newTestJWTService()
	input := GenerateTokenInput{
		UserID:   uuid.New(),
		Username: "customer01",
		Role:     "CUSTOMER",
	}

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)

	require.NoError(t, err)
	assert.Empty(t, claims.OfficeID)
}

func TestValidateAccessToken_RejectsRefreshToken(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.RefreshToken)

	assert.Error(t, err)
}

func TestValidateAccessToken_InvalidToken(t *testing.T) {
	svc := newTestJWTService()

	_, err := svc.ValidateAccessToken("not-a-token")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  -1 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	}
	svc := NewJWTService(cfg)

	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.AccessToken)

	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateRefreshToken_Success(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(pair.RefreshToken)

	require.NoError(t, err)
	assert.Equal(t, input.UserID.String(), claims.UserID)
	assert.Equal(t, input.Role, claims.Role)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	assert.Equal(t, 0, claims.RefreshCount)
}

func TestRefreshTokenPair(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	newPair, err := svc.RefreshTokenPair(pair.RefreshToken)

	require.NoError(t, err)
	assert.NotEmpty(t, newPair.AccessToken)
	assert.NotEmpty(t, newPair.RefreshToken)

	claims, err := svc.ValidateAccessToken(newPair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, input.UserID.String(), claims.UserID)
	assert.Equal(t, input.Role, claims.Role)
	assert.Equal(t, input.OfficeID.String(), claims.OfficeID)

	refreshClaims, err := svc.ValidateRefreshToken(newPair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshClaims.RefreshCount)
}

func TestRefreshTokenPair_MaxRefreshExceeded(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        1,
	}
	svc := NewJWTService(cfg)

	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	pair, err = svc.RefreshTokenPair(pair.RefreshToken)
	require.NoError(t, err)

	_, err = svc.RefreshTokenPair(pair.RefreshToken)

	assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
}

func TestRefreshTokenPair_RejectsAccessToken(t *testing.T) {
	svc := newTestJWTService()

	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	_, err = svc.RefreshTokenPair(pair.AccessToken)

	assert.Error(t, err)
}

func TestClaims_GetUserUUID(t *testing.T) {
	userID := uuid.New()
	claims := &Claims{UserID: userID.String()}

	parsed, err := claims.GetUserUUID()

	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestClaims_GetUserUUID_Invalid(t *testing.T) {
	claims := &Claims{UserID: "garbage"}

	_, err := claims.GetUserUUID()

	assert.Error(t, err)
}

func TestClaims_GetOfficeUUID(t *testing.T) {
	officeID := uuid.New()
	claims := &Claims{OfficeID: officeID.String()}

	parsed, err := claims.GetOfficeUUID()

	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, officeID, *parsed)
}

func TestClaims_GetOfficeUUID_Empty(t *testing.T) {
	claims := &Claims{}

	parsed, err := claims.GetOfficeUUID()

	require.NoError(t, err)
	assert.Nil(t, parsed)
}

func TestClaims_HasRole(t *testing.T) {
	claims := &Claims{Role: "MANAGER"}

	assert.True(t, claims.HasRole("MANAGER"))
	assert.True(t, claims.HasRole("ADMIN", "MANAGER"))
	assert.False(t, claims.HasRole("ADMIN"))
	assert.False(t, claims.HasRole())
}

func TestClaims_GetRemainingTTL(t *testing.T) {
	svc := newTestJWTService()

	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	ttl := claims.GetRemainingTTL()
	assert.Greater(t, ttl, 14*time.Minute)
	assert.LessOrEqual(t, ttl, 15*time.Minute)
}
