package identity

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lastmile/backend/internal/domain/identity"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/infrastructure/auth"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // Maximum failed login attempts before lock
	LockDuration     time.Duration // How long to lock account after max attempts
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	config     AuthServiceConfig
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		config:     config,
		logger:     logger,
	}
}

// SetTokenBlacklist enables server-side session revocation. Without a
// blacklist, logout only discards tokens client-side.
func (s *AuthService) SetTokenBlacklist(blacklist auth.TokenBlacklist) {
	s.blacklist = blacklist
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	s.logger.Info("Login attempt", zap.String("username", input.Username))

	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Warn("User not found during login", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	if !user.CanLogin() {
		if user.IsLocked() {
			s.logger.Warn("Login attempt for locked account", zap.String("username", input.Username))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later or contact support")
		}
		if user.IsDeactivated() {
			s.logger.Warn("Login attempt for deactivated account", zap.String("username", input.Username))
			return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
		}
		if user.IsPending() {
			s.logger.Warn("Login attempt for pending account", zap.String("username", input.Username))
			return nil, shared.NewDomainError("ACCOUNT_PENDING", "Account is pending activation")
		}
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	}

	if !user.VerifyPassword(input.Password) {
		locked := user.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.userRepo.Update(ctx, user); err != nil {
			s.logger.Error("Failed to update user after login failure", zap.Error(err))
		}

		if locked {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("username", input.Username),
				zap.Int("attempts", s.config.MaxLoginAttempts))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Account has been locked")
		}

		s.logger.Warn("Invalid password attempt",
			zap.String("username", input.Username),
			zap.Int("failed_attempts", user.FailedAttempts))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
		OfficeID: user.OfficeID,
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	user.RecordLoginSuccess(input.IP)
	if err := s.userRepo.Update(ctx, user); err != nil {
		// Don't fail the login, the tokens are already issued
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.logger.Info("User logged in successfully",
		zap.String("username", input.Username),
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	return &LoginResult{
		TokenResult: toTokenResult(tokenPair),
		User:        toUserInfo(user),
	}, nil
}

// RefreshToken refreshes the access token using a valid refresh token
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*RefreshTokenResult, error) {
	s.logger.Info("Token refresh attempt")

	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		s.logger.Error("Invalid user ID in refresh token", zap.Error(err))
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}

	// Verify the account is still allowed in before minting new tokens
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("User not found during token refresh", zap.String("user_id", userID.String()))
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if !user.CanLogin() {
		s.logger.Warn("Token refresh for inactive user", zap.String("user_id", userID.String()))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
	}

	tokenPair, err := s.jwtService.RefreshTokenPair(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	s.logger.Info("Token refreshed successfully", zap.String("user_id", userID.String()))

	return &RefreshTokenResult{TokenResult: toTokenResult(tokenPair)}, nil
}

// Logout revokes the presented access token. With AllDevices set, every
// token issued to the user before now is revoked as well.
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if s.blacklist != nil {
		ttl := s.jwtService.GetAccessTokenExpiration()

		if input.TokenJTI != "" {
			if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, ttl); err != nil {
				s.logger.Error("Failed to blacklist token on logout",
					zap.String("user_id", input.UserID.String()), zap.Error(err))
				return shared.NewDomainError("INTERNAL_ERROR", "Failed to invalidate session")
			}
		}

		if input.AllDevices {
			// Refresh tokens live longer than access tokens, so the
			// invalidation marker has to outlive them.
			refreshTTL := s.jwtService.GetRefreshTokenExpiration()
			if err := s.blacklist.AddUserTokensToBlacklist(ctx, input.UserID.String(), refreshTTL); err != nil {
				s.logger.Error("Failed to revoke user sessions",
					zap.String("user_id", input.UserID.String()), zap.Error(err))
				return shared.NewDomainError("INTERNAL_ERROR", "Failed to revoke sessions")
			}
		}
	}

	s.logger.Info("User logout",
		zap.String("user_id", input.UserID.String()),
		zap.Bool("all_devices", input.AllDevices))
	return nil
}

// GetCurrentUser retrieves the current user's information
func (s *AuthService) GetCurrentUser(ctx context.Context, input GetCurrentUserInput) (*CurrentUserResult, error) {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	return &CurrentUserResult{User: toUserInfo(user)}, nil
}

// ChangePassword changes a user's password
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user after password change", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to update password")
	}

	s.logger.Info("User password changed", zap.String("user_id", input.UserID.String()))

	return nil
}

func toTokenResult(pair *auth.TokenPair) TokenResult {
	return TokenResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
}

func toUserInfo(user *identity.User) UserInfo {
	return UserInfo{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.GetDisplayNameOrUsername(),
		Email:       user.Email,
		Phone:       user.Phone,
		Role:        user.Role,
		OfficeID:    user.OfficeID,
		Status:      string(user.Status),
	}
}

func mapTokenError(err error) error {
	switch err {
	case auth.ErrExpiredToken:
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case auth.ErrInvalidToken:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	case auth.ErrMaxRefreshExceeded:
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError("TOKEN_ERROR", "Failed to validate refresh token")
	}
}
