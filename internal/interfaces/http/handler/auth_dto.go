package handler

import (
	"time"

	"github.com/google/uuid"
)

// LoginRequest is the login request body.
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// RefreshTokenRequest is the token refresh request body.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest is the password change request body.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// TokenResponse carries an issued token pair.
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// AuthUserResponse is the user profile embedded in auth responses.
type AuthUserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Role        string     `json:"role"`
	OfficeID    *uuid.UUID `json:"office_id,omitempty"`
	Status      string     `json:"status"`
}

// LoginResponse is the successful login response body.
type LoginResponse struct {
	Token TokenResponse    `json:"token"`
	User  AuthUserResponse `json:"user"`
}

// RefreshTokenResponse is the successful refresh response body.
type RefreshTokenResponse struct {
	Token TokenResponse `json:"token"`
}

// CurrentUserResponse wraps the authenticated user profile.
type CurrentUserResponse struct {
	User AuthUserResponse `json:"user"`
}

// LogoutRequest is the optional logout request body.
type LogoutRequest struct {
	// AllDevices revokes every active session of the user, not just
	// the presented token.
	AllDevices bool `json:"all_devices"`
}

// LogoutResponse is the logout confirmation body.
type LogoutResponse struct {
	Message string `json:"message"`
}
