package handler

import "github.com/google/uuid"

// =====================
// User Request DTOs
// =====================

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Username    string     `json:"username" binding:"required,min=3,max=100"`
	Password    string     `json:"password" binding:"required,min=8,max=128"`
	Role        string     `json:"role" binding:"required,oneof=CUSTOMER SHIPPER MANAGER ADMIN"`
	OfficeID    *uuid.UUID `json:"office_id"`
	Email       string     `json:"email" binding:"omitempty,email"`
	Phone       string     `json:"phone" binding:"omitempty,max=50"`
	DisplayName string     `json:"display_name" binding:"omitempty,max=200"`
	Active      bool       `json:"active"`
}

// UpdateUserRequest represents the request body for updating a user
type UpdateUserRequest struct {
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	DisplayName *string `json:"display_name"`
}

// SetUserRoleRequest represents the request body for changing a user's role
type SetUserRoleRequest struct {
	Role     string     `json:"role" binding:"required,oneof=CUSTOMER SHIPPER MANAGER ADMIN"`
	OfficeID *uuid.UUID `json:"office_id"`
}

// ResetPasswordRequest represents the request body for an admin password reset
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// ListUsersQuery represents the query parameters for listing users
type ListUsersQuery struct {
	Role     string `form:"role" binding:"omitempty,oneof=CUSTOMER SHIPPER MANAGER ADMIN"`
	OfficeID string `form:"office_id" binding:"omitempty,uuid"`
	Page     int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}
