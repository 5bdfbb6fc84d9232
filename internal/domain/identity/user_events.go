package identity

import (
	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/shared"
)

// Event type constants for the user aggregate
const (
	EventUserCreated         = "identity.user.created"
	EventUserPasswordChanged = "identity.user.password_changed"
	EventUserStatusChanged   = "identity.user.status_changed"
	EventUserRoleChanged     = "identity.user.role_changed"
)

// UserCreatedEvent is raised when a new user account is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Username string          `json:"username"`
	Role     order.ActorRole `json:"role"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventUserCreated, "User", u.ID),
		Username:        u.Username,
		Role:            u.Role,
	}
}

// UserPasswordChangedEvent is raised when a user's password changes
type UserPasswordChangedEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
}

// NewUserPasswordChangedEvent creates a new UserPasswordChangedEvent
func NewUserPasswordChangedEvent(u *User) *UserPasswordChangedEvent {
	return &UserPasswordChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventUserPasswordChanged, "User", u.ID),
		Username:        u.Username,
	}
}

// UserStatusChangedEvent is raised when a user's status changes
type UserStatusChangedEvent struct {
	shared.BaseDomainEvent
	Username  string     `json:"username"`
	OldStatus UserStatus `json:"old_status"`
	NewStatus UserStatus `json:"new_status"`
}

// NewUserStatusChangedEvent creates a new UserStatusChangedEvent
func NewUserStatusChangedEvent(u *User, oldStatus, newStatus UserStatus) *UserStatusChangedEvent {
	return &UserStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventUserStatusChanged, "User", u.ID),
		Username:        u.Username,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// UserRoleChangedEvent is raised when a user's role changes
type UserRoleChangedEvent struct {
	shared.BaseDomainEvent
	Username string          `json:"username"`
	OldRole  order.ActorRole `json:"old_role"`
	NewRole  order.ActorRole `json:"new_role"`
}

// NewUserRoleChangedEvent creates a new UserRoleChangedEvent
func NewUserRoleChangedEvent(u *User, oldRole, newRole order.ActorRole) *UserRoleChangedEvent {
	return &UserRoleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventUserRoleChanged, "User", u.ID),
		Username:        u.Username,
		OldRole:         oldRole,
		NewRole:         newRole,
	}
}
