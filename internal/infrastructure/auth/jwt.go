package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/infrastructure/config"
)

// TokenType distinguishes access from refresh tokens. Each kind is
// signed with its own secret and rejected in the other's validator.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrTokenNotYetValid   = errors.New("token is not yet valid")
	ErrMissingUserID      = errors.New("missing user_id in claims")
	ErrMissingRole        = errors.New("missing role in claims")
	ErrMaxRefreshExceeded = errors.New("maximum refresh count exceeded")
	ErrTokenBlacklisted   = errors.New("token has been revoked")
)

// Claims are the custom JWT claims. Role carries the caller's actor
// role (CUSTOMER, SHIPPER, MANAGER, ADMIN); OfficeID is set for office
// staff. Refresh tokens carry the same identity so a refreshed access
// token keeps the caller's office.
type Claims struct {
	jwt.RegisteredClaims
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	OfficeID     string    `json:"office_id,omitempty"`
	TokenType    TokenType `json:"token_type"`
	RefreshCount int       `json:"refresh_count,omitempty"`
}

// TokenPair is an access and refresh token issued together.
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"` // Bearer
}

// JWTService signs and validates the token pairs used by the API.
type JWTService struct {
	accessSecret      []byte
	refreshSecret     []byte
	accessExpiration  time.Duration
	refreshExpiration time.Duration
	issuer            string
	maxRefreshCount   int
}

// NewJWTService creates the service. When no separate refresh secret
// is configured, the access secret signs both token kinds.
func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := []byte(cfg.RefreshSecret)
	if cfg.RefreshSecret == "" {
		refreshSecret = []byte(cfg.Secret)
	}

	return &JWTService{
		accessSecret:      []byte(cfg.Secret),
		refreshSecret:     refreshSecret,
		accessExpiration:  cfg.AccessTokenExpiration,
		refreshExpiration: cfg.RefreshTokenExpiration,
		issuer:            cfg.Issuer,
		maxRefreshCount:   cfg.MaxRefreshCount,
	}
}

// GenerateTokenInput identifies the user a token pair is issued for.
type GenerateTokenInput struct {
	UserID   uuid.UUID
	Username string
	Role     string
	OfficeID *uuid.UUID
}

// GenerateTokenPair issues a fresh access and refresh token pair.
func (s *JWTService) GenerateTokenPair(input GenerateTokenInput) (*TokenPair, error) {
	officeID := ""
	if input.OfficeID != nil {
		officeID = input.OfficeID.String()
	}
	return s.issuePair(input.UserID.String(), input.Username, input.Role, officeID, 0)
}

// RefreshTokenPair exchanges a valid refresh token for a new pair.
// The refresh count carries over, bounding how long a session can be
// extended without logging in again.
func (s *JWTService) RefreshTokenPair(refreshToken string) (*TokenPair, error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	if claims.RefreshCount >= s.maxRefreshCount {
		return nil, ErrMaxRefreshExceeded
	}

	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, ErrInvalidClaims
	}

	return s.issuePair(claims.UserID, claims.Username, claims.Role, claims.OfficeID, claims.RefreshCount+1)
}

func (s *JWTService) issuePair(userID, username, role, officeID string, refreshCount int) (*TokenPair, error) {
	now := time.Now()

	accessClaims := &Claims{
		RegisteredClaims: s.registeredClaims(userID, now, s.accessExpiration),
		UserID:           userID,
		Username:         username,
		Role:             role,
		OfficeID:         officeID,
		TokenType:        TokenTypeAccess,
	}
	accessToken, err := s.signToken(accessClaims, s.accessSecret)
	if err != nil {
		return nil, err
	}

	refreshClaims := &Claims{
		RegisteredClaims: s.registeredClaims(userID, now, s.refreshExpiration),
		UserID:           userID,
		Username:         username,
		Role:             role,
		OfficeID:         officeID,
		TokenType:        TokenTypeRefresh,
		RefreshCount:     refreshCount,
	}
	refreshToken, err := s.signToken(refreshClaims, s.refreshSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  now.Add(s.accessExpiration),
		RefreshTokenExpiresAt: now.Add(s.refreshExpiration),
		TokenType:             "Bearer",
	}, nil
}

func (s *JWTService) registeredClaims(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Issuer:    s.issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{s.issuer},
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func (s *JWTService) signToken(claims *Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateAccessToken validates an access token and returns its claims.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validateToken(tokenString, s.accessSecret, TokenTypeAccess)
}

// ValidateRefreshToken validates a refresh token and returns its claims.
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validateToken(tokenString, s.refreshSecret, TokenTypeRefresh)
}

func (s *JWTService) validateToken(tokenString string, secret []byte, expectedType TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	if claims.TokenType != expectedType {
		return nil, ErrInvalidTokenType
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	if claims.Role == "" {
		return nil, ErrMissingRole
	}

	return claims, nil
}

// GetUserUUID parses the user ID from the claims.
func (c *Claims) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// GetOfficeUUID parses the office ID from the claims. Nil for callers
// without an office, such as customers.
func (c *Claims) GetOfficeUUID() (*uuid.UUID, error) {
	if c.OfficeID == "" {
		return nil, nil
	}
	id, err := uuid.Parse(c.OfficeID)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// HasRole reports whether the claims carry one of the given roles.
func (c *Claims) HasRole(roles ...string) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// GetIssuedAtTime returns the issued-at claim, or the zero time.
func (c *Claims) GetIssuedAtTime() time.Time {
	if c.IssuedAt != nil {
		return c.IssuedAt.Time
	}
	return time.Time{}
}

// GetRemainingTTL returns how long the token stays valid, zero when
// already expired.
func (c *Claims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	remaining := time.Until(c.ExpiresAt.Time)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// GetAccessTokenExpiration returns the configured access token TTL.
func (s *JWTService) GetAccessTokenExpiration() time.Duration {
	return s.accessExpiration
}

// GetRefreshTokenExpiration returns the configured refresh token TTL.
func (s *JWTService) GetRefreshTokenExpiration() time.Duration {
	return s.refreshExpiration
}
