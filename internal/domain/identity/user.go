package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/shared"
)

// UserStatus is the lifecycle state of an account.
type UserStatus string

const (
	UserStatusPending     UserStatus = "pending"     // Awaiting activation
	UserStatusActive      UserStatus = "active"      // Normal active status
	UserStatusLocked      UserStatus = "locked"      // Locked due to failed attempts/security
	UserStatusDeactivated UserStatus = "deactivated" // Manually deactivated
)

const bcryptCost = 12

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	letterRegex   = regexp.MustCompile(`[a-zA-Z]`)
	numberRegex   = regexp.MustCompile(`[0-9]`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// User represents an account in the system. The role decides what the account
// can do; MANAGER and SHIPPER accounts must be bound to an office.
type User struct {
	shared.BaseAggregateRoot
	Username           string
	Email              string
	Phone              string
	PasswordHash       string
	DisplayName        string
	Role               order.ActorRole
	OfficeID           *uuid.UUID
	Status             UserStatus
	LastLoginAt        *time.Time
	LastLoginIP        string
	FailedAttempts     int
	LockedUntil        *time.Time
	PasswordChangedAt  *time.Time
	MustChangePassword bool
	// AccountAgeMonths snapshots are derived from CreatedAt by the promotion
	// evaluator, not stored here.
}

// touch stamps a mutation for optimistic locking.
func (u *User) touch() {
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// NewUser creates a pending user. The username is normalized to
// lowercase.
func NewUser(username, password string, role order.ActorRole, officeID *uuid.UUID) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown actor role")
	}
	if err := validateOfficeBinding(role, officeID); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          strings.ToLower(strings.TrimSpace(username)),
		PasswordHash:      passwordHash,
		Role:              role,
		OfficeID:          officeID,
		Status:            UserStatusPending,
		PasswordChangedAt: &now,
	}

	user.AddDomainEvent(NewUserCreatedEvent(user))

	return user, nil
}

// NewActiveUser creates a user that can log in right away, used by
// admin-driven account creation.
func NewActiveUser(username, password string, role order.ActorRole, officeID *uuid.UUID) (*User, error) {
	user, err := NewUser(username, password, role, officeID)
	if err != nil {
		return nil, err
	}

	user.Status = UserStatusActive
	return user, nil
}

// SetEmail sets the user's email, normalized to lowercase.
func (u *User) SetEmail(email string) error {
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
		email = strings.ToLower(strings.TrimSpace(email))
	}

	u.Email = email
	u.touch()

	return nil
}

// SetPhone sets the user's phone number.
func (u *User) SetPhone(phone string) error {
	if phone != "" && len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}

	u.Phone = strings.TrimSpace(phone)
	u.touch()

	return nil
}

// SetDisplayName sets the name shown in the back office UI.
func (u *User) SetDisplayName(displayName string) error {
	if displayName != "" && len(displayName) > 200 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}

	u.DisplayName = strings.TrimSpace(displayName)
	u.touch()

	return nil
}

// SetRole changes the role and office binding together, so a shipper
// can never end up without an office.
func (u *User) SetRole(role order.ActorRole, officeID *uuid.UUID) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Unknown actor role")
	}
	if err := validateOfficeBinding(role, officeID); err != nil {
		return err
	}

	oldRole := u.Role
	u.Role = role
	u.OfficeID = officeID
	u.touch()

	u.AddDomainEvent(NewUserRoleChangedEvent(u, oldRole, role))

	return nil
}

// ChangePassword verifies the current password, then replaces it.
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}

	return u.SetPassword(newPassword)
}

// SetPassword replaces the password without checking the old one.
// Reserved for admin resets.
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	u.PasswordHash = passwordHash
	now := time.Now()
	u.PasswordChangedAt = &now
	u.MustChangePassword = false
	u.touch()

	u.AddDomainEvent(NewUserPasswordChangedEvent(u))

	return nil
}

// ForcePasswordChange requires a new password at the next login.
func (u *User) ForcePasswordChange() {
	u.MustChangePassword = true
	u.touch()
}

// VerifyPassword reports whether password matches the stored hash.
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// Activate moves the account to active and clears any lock state.
func (u *User) Activate() error {
	if u.Status == UserStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "User is already active")
	}

	oldStatus := u.Status
	u.Status = UserStatusActive
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.touch()

	u.AddDomainEvent(NewUserStatusChangedEvent(u, oldStatus, UserStatusActive))

	return nil
}

// Deactivate permanently disables the account.
func (u *User) Deactivate() error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError("ALREADY_DEACTIVATED", "User is already deactivated")
	}

	oldStatus := u.Status
	u.Status = UserStatusDeactivated
	u.touch()

	u.AddDomainEvent(NewUserStatusChangedEvent(u, oldStatus, UserStatusDeactivated))

	return nil
}

// Lock locks the account, optionally until a deadline. A zero
// duration locks indefinitely.
func (u *User) Lock(duration time.Duration) error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError("USER_DEACTIVATED", "Cannot lock a deactivated user")
	}

	oldStatus := u.Status
	u.Status = UserStatusLocked
	if duration > 0 {
		lockedUntil := time.Now().Add(duration)
		u.LockedUntil = &lockedUntil
	}
	u.touch()

	u.AddDomainEvent(NewUserStatusChangedEvent(u, oldStatus, UserStatusLocked))

	return nil
}

// Unlock clears the lock and reactivates the account.
func (u *User) Unlock() error {
	if u.Status != UserStatusLocked {
		return shared.NewDomainError("NOT_LOCKED", "User is not locked")
	}

	u.Status = UserStatusActive
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.touch()

	u.AddDomainEvent(NewUserStatusChangedEvent(u, UserStatusLocked, UserStatusActive))

	return nil
}

// RecordLoginSuccess stores the login time and IP and resets the
// failed attempt counter.
func (u *User) RecordLoginSuccess(ip string) {
	now := time.Now()
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	u.FailedAttempts = 0
	u.touch()
}

// RecordLoginFailure counts a failed attempt, locking the account and
// returning true once maxAttempts is reached.
func (u *User) RecordLoginFailure(maxAttempts int, lockDuration time.Duration) bool {
	u.FailedAttempts++
	u.touch()

	if u.FailedAttempts >= maxAttempts {
		_ = u.Lock(lockDuration)
		return true
	}

	return false
}

// IsActive reports whether the account is active.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// IsLocked reports whether the account is locked right now. A lock
// with an expired deadline no longer counts.
func (u *User) IsLocked() bool {
	if u.Status != UserStatusLocked {
		return false
	}

	if u.LockedUntil != nil && time.Now().After(*u.LockedUntil) {
		return false
	}

	return true
}

// IsDeactivated reports whether the account was disabled.
func (u *User) IsDeactivated() bool {
	return u.Status == UserStatusDeactivated
}

// IsPending reports whether the account awaits activation.
func (u *User) IsPending() bool {
	return u.Status == UserStatusPending
}

// CanLogin reports whether the account may authenticate.
func (u *User) CanLogin() bool {
	if u.Status == UserStatusDeactivated {
		return false
	}
	if u.Status == UserStatusPending {
		return false
	}
	if u.IsLocked() {
		return false
	}
	return true
}

// GetDisplayNameOrUsername falls back to the username when no display
// name is set.
func (u *User) GetDisplayNameOrUsername() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// AccountAgeMonths returns the whole months since the account was
// created, used by promotion eligibility.
func (u *User) AccountAgeMonths(now time.Time) int {
	months := (now.Year()-u.CreatedAt.Year())*12 + int(now.Month()) - int(u.CreatedAt.Month())
	if now.Day() < u.CreatedAt.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) < 3 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 100 characters")
	}

	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}

	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}

	if !letterRegex.MatchString(password) || !numberRegex.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}

	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}

	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}

	return nil
}

func validateOfficeBinding(role order.ActorRole, officeID *uuid.UUID) error {
	switch role {
	case order.RoleManager, order.RoleShipper:
		if officeID == nil || *officeID == uuid.Nil {
			return shared.NewDomainError("INVALID_OFFICE", "This role requires an office binding")
		}
	case order.RoleCustomer:
		if officeID != nil {
			return shared.NewDomainError("INVALID_OFFICE", "Customers cannot be bound to an office")
		}
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
