package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/application/identity"
	"github.com/lastmile/backend/internal/interfaces/http/dto"
	"github.com/lastmile/backend/internal/interfaces/http/middleware"
)

// AuthHandler serves login, logout and session endpoints.
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
}

// NewAuthHandler creates the handler.
func NewAuthHandler(authService *identity.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func toTokenResponse(result identity.TokenResult) TokenResponse {
	return TokenResponse{
		AccessToken:           result.AccessToken,
		RefreshToken:          result.RefreshToken,
		AccessTokenExpiresAt:  result.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: result.RefreshTokenExpiresAt,
		TokenType:             result.TokenType,
	}
}

func toAuthUserResponse(user identity.UserInfo) AuthUserResponse {
	return AuthUserResponse{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Phone:       user.Phone,
		Role:        string(user.Role),
		OfficeID:    user.OfficeID,
		Status:      user.Status,
	}
}

// Login godoc
// @Summary      User login
// @Description  Authenticate with username and password, returns a token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} dto.Response{data=LoginResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identity.LoginInput{
		Username: req.Username,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, LoginResponse{
		Token: toTokenResponse(result.TokenResult),
		User:  toAuthUserResponse(result.User),
	})
}

// RefreshToken godoc
// @Summary      Refresh access token
// @Description  Exchange a refresh token for a fresh token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshTokenRequest true "Refresh token"
// @Success      200 {object} dto.Response{data=RefreshTokenResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	// User identity comes from the refresh token itself.
	result, err := h.authService.RefreshToken(c.Request.Context(), identity.RefreshTokenInput{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, RefreshTokenResponse{Token: toTokenResponse(result.TokenResult)})
}

// Logout godoc
// @Summary      User logout
// @Description  Revoke the current token, or every token when all_devices is set
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=LogoutResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		h.BadRequest(c, "Invalid user ID in token")
		return
	}

	// Body is optional; an empty request logs out this session only.
	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)

	err = h.authService.Logout(c.Request.Context(), identity.LogoutInput{
		UserID:     userID,
		TokenJTI:   claims.ID,
		AllDevices: req.AllDevices,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, LogoutResponse{
		Message: "Logged out successfully",
	})
}

// GetCurrentUser godoc
// @Summary      Get current user
// @Description  Return the authenticated user's profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=CurrentUserResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.authService.GetCurrentUser(c.Request.Context(), identity.GetCurrentUserInput{
		UserID: userID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, CurrentUserResponse{User: toAuthUserResponse(result.User)})
}

// ChangePassword godoc
// @Summary      Change password
// @Description  Change the authenticated user's password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ChangePasswordRequest true "Password change request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	err = h.authService.ChangePassword(c.Request.Context(), identity.ChangePasswordInput{
		UserID:      userID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{
		"message": "Password changed successfully",
	}))
}
