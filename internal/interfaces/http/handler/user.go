package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/application/identity"
	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/shared"
)

// UserHandler handles account management HTTP requests
type UserHandler struct {
	BaseHandler
	userService *identity.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *identity.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Create godoc
// @Summary      Create a new user account
// @Description  Create an account with a role and, for office staff, an office binding
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "User creation request"
// @Success      201 {object} dto.Response{data=AuthUserResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.userService.Create(c.Request.Context(), identity.CreateUserInput{
		Username:    req.Username,
		Password:    req.Password,
		Role:        order.ActorRole(req.Role),
		OfficeID:    req.OfficeID,
		Email:       req.Email,
		Phone:       req.Phone,
		DisplayName: req.DisplayName,
		Active:      req.Active,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toAuthUserResponse(*result))
}

// GetByID godoc
// @Summary      Get a user account
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response{data=AuthUserResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	result, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toAuthUserResponse(*result))
}

// List godoc
// @Summary      List user accounts
// @Description  List accounts filtered by role or office
// @Tags         users
// @Produce      json
// @Param        role query string false "Actor role filter"
// @Param        office_id query string false "Office filter"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]AuthUserResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var query ListUsersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	filter := shared.Filter{Page: query.Page, PageSize: query.PageSize}

	var (
		users []identity.UserInfo
		err   error
	)
	switch {
	case query.OfficeID != "":
		officeID, parseErr := uuid.Parse(query.OfficeID)
		if parseErr != nil {
			h.BadRequest(c, "Invalid office ID")
			return
		}
		users, err = h.userService.ListByOffice(c.Request.Context(), officeID, filter)
	case query.Role != "":
		users, err = h.userService.ListByRole(c.Request.Context(), order.ActorRole(query.Role), filter)
	default:
		h.BadRequest(c, "Either role or office_id filter is required")
		return
	}
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	responses := make([]AuthUserResponse, len(users))
	for i, u := range users {
		responses[i] = toAuthUserResponse(u)
	}

	h.Success(c, responses)
}

// Update godoc
// @Summary      Update a user account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        request body UpdateUserRequest true "User update request"
// @Success      200 {object} dto.Response{data=AuthUserResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.userService.Update(c.Request.Context(), identity.UpdateUserInput{
		UserID:      id,
		Email:       req.Email,
		Phone:       req.Phone,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toAuthUserResponse(*result))
}

// SetRole godoc
// @Summary      Change a user's role
// @Description  Change the role and office binding of an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        request body SetUserRoleRequest true "Role change request"
// @Success      200 {object} dto.Response{data=AuthUserResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id}/role [put]
func (h *UserHandler) SetRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	var req SetUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.userService.SetRole(c.Request.Context(), identity.SetRoleInput{
		UserID:   id,
		Role:     order.ActorRole(req.Role),
		OfficeID: req.OfficeID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toAuthUserResponse(*result))
}

// Activate godoc
// @Summary      Activate a user account
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response{data=AuthUserResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id}/activate [post]
func (h *UserHandler) Activate(c *gin.Context) {
	h.mutate(c, h.userService.Activate)
}

// Deactivate godoc
// @Summary      Deactivate a user account
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response{data=AuthUserResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id}/deactivate [post]
func (h *UserHandler) Deactivate(c *gin.Context) {
	h.mutate(c, h.userService.Deactivate)
}

// Unlock godoc
// @Summary      Unlock a locked user account
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response{data=AuthUserResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id}/unlock [post]
func (h *UserHandler) Unlock(c *gin.Context) {
	h.mutate(c, h.userService.Unlock)
}

// ResetPassword godoc
// @Summary      Reset a user's password
// @Description  Admin reset. The user must change the password on next login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        request body ResetPasswordRequest true "Password reset request"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id}/reset-password [post]
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	err = h.userService.ResetPassword(c.Request.Context(), identity.ResetPasswordInput{
		UserID:      id,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Password reset successfully"})
}

func (h *UserHandler) mutate(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*identity.UserInfo, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	result, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toAuthUserResponse(*result))
}
