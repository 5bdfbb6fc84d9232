package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/domain/identity"
	"github.com/lastmile/backend/internal/domain/order"
)

// UserModel is the persistence model for the User aggregate.
type UserModel struct {
	AggregateModel
	Username           string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	Email              string     `gorm:"type:varchar(200);index"`
	Phone              string     `gorm:"type:varchar(50)"`
	PasswordHash       string     `gorm:"type:varchar(255);not null"`
	DisplayName        string     `gorm:"type:varchar(200)"`
	Role               string     `gorm:"type:varchar(20);not null;index"`
	OfficeID           *uuid.UUID `gorm:"type:uuid;index"`
	Status             string     `gorm:"type:varchar(20);not null;index"`
	LastLoginAt        *time.Time `gorm:"type:timestamptz"`
	LastLoginIP        string     `gorm:"type:varchar(45)"`
	FailedAttempts     int        `gorm:"not null;default:0"`
	LockedUntil        *time.Time `gorm:"type:timestamptz"`
	PasswordChangedAt  *time.Time `gorm:"type:timestamptz"`
	MustChangePassword bool       `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User aggregate.
func (m *UserModel) ToDomain() *identity.User {
	user := &identity.User{
		Username:           m.Username,
		Email:              m.Email,
		Phone:              m.Phone,
		PasswordHash:       m.PasswordHash,
		DisplayName:        m.DisplayName,
		Role:               order.ActorRole(m.Role),
		OfficeID:           m.OfficeID,
		Status:             identity.UserStatus(m.Status),
		LastLoginAt:        m.LastLoginAt,
		LastLoginIP:        m.LastLoginIP,
		FailedAttempts:     m.FailedAttempts,
		LockedUntil:        m.LockedUntil,
		PasswordChangedAt:  m.PasswordChangedAt,
		MustChangePassword: m.MustChangePassword,
	}
	m.PopulateAggregateRoot(&user.BaseAggregateRoot)
	return user
}

// FromDomain populates the persistence model from a domain User aggregate.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Username = u.Username
	m.Email = u.Email
	m.Phone = u.Phone
	m.PasswordHash = u.PasswordHash
	m.DisplayName = u.DisplayName
	m.Role = string(u.Role)
	m.OfficeID = u.OfficeID
	m.Status = string(u.Status)
	m.LastLoginAt = u.LastLoginAt
	m.LastLoginIP = u.LastLoginIP
	m.FailedAttempts = u.FailedAttempts
	m.LockedUntil = u.LockedUntil
	m.PasswordChangedAt = u.PasswordChangedAt
	m.MustChangePassword = u.MustChangePassword
}

// UserModelFromDomain creates a new persistence model from a domain User.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
