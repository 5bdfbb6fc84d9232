package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/domain/shared"
)

// BaseModel carries the columns every table has. IDs are generated in
// the domain layer, never by the database.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain maps the common columns onto a shared.BaseEntity.
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity copies the entity's identity and timestamps.
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel adds the version column used for optimistic locking
// on aggregate roots.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot copies identity, timestamps and version.
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// PopulateAggregateRoot writes the row's columns into an aggregate root
// that was constructed by a ToDomain mapper.
func (m *AggregateModel) PopulateAggregateRoot(a *shared.BaseAggregateRoot) {
	a.BaseEntity.ID = m.ID
	a.BaseEntity.CreatedAt = m.CreatedAt
	a.BaseEntity.UpdatedAt = m.UpdatedAt
	a.Version = m.Version
}
