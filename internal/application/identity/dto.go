package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/domain/order"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Username string
	Password string
	IP       string // Client IP for login tracking
}

// TokenResult is the token pair issued at login or refresh.
type TokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	TokenResult
	User UserInfo
}

// UserInfo contains basic user information returned after login
type UserInfo struct {
	ID          uuid.UUID
	Username    string
	DisplayName string
	Email       string
	Phone       string
	Role        order.ActorRole
	OfficeID    *uuid.UUID
	Status      string
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	TokenResult
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	UserID   uuid.UUID
	TokenJTI string // JWT ID for blacklisting (optional)
	// AllDevices revokes every session of the user, not just this token
	AllDevices bool
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// GetCurrentUserInput contains the input for getting current user info
type GetCurrentUserInput struct {
	UserID uuid.UUID
}

// CurrentUserResult contains the current user's information
type CurrentUserResult struct {
	User UserInfo
}

// CreateUserInput contains the input for creating a user account
type CreateUserInput struct {
	Username    string
	Password    string
	Role        order.ActorRole
	OfficeID    *uuid.UUID
	Email       string
	Phone       string
	DisplayName string
	Active      bool
}

// UpdateUserInput contains the input for updating user profile fields
type UpdateUserInput struct {
	UserID      uuid.UUID
	Email       *string
	Phone       *string
	DisplayName *string
}

// SetRoleInput contains the input for changing a user's role
type SetRoleInput struct {
	UserID   uuid.UUID
	Role     order.ActorRole
	OfficeID *uuid.UUID
}

// ResetPasswordInput contains the input for an administrative password reset
type ResetPasswordInput struct {
	UserID      uuid.UUID
	NewPassword string
}

// ListUsersInput contains the filters for listing users
type ListUsersInput struct {
	Role     *order.ActorRole
	OfficeID *uuid.UUID
	Page     int
	PageSize int
}
