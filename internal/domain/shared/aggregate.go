// Package shared holds the building blocks common to all domain
// packages: entity identity, aggregate versioning, domain events and
// the domain error type.
package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and timestamps every domain entity
// shares. IDs are generated client-side so an entity has its ID before
// it is ever persisted.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// BaseAggregateRoot extends BaseEntity with an optimistic-lock version
// and a buffer of domain events raised since the aggregate was loaded.
// Events stay buffered until the owning service saves the aggregate
// and hands them off.
type BaseAggregateRoot struct {
	BaseEntity
	Version int

	domainEvents []DomainEvent
}

func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// GetVersion returns the version used for optimistic locking. A save
// only succeeds when the stored version still matches.
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent buffers an event for publication after save.
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}
