// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities should be free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Mappers convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// Structure:
// - base.go: Base persistence models (BaseModel, AggregateModel)
// - identity.go: User accounts and credentials
// - network.go: Offices, employees, vehicles
// - catalog.go: Shop products
// - order.go: Orders, order items, order history
// - pricing.go: Service types, rate brackets, fee configs
// - shipment.go: Shipments and their order manifests
// - courier.go: Shipper area assignments, COD submissions, submission batches
// - settlement.go: Settlement batches and transactions
// - promotion.go: Promotions and per-user usage
// - notification.go: Stored notifications
// - import_history.go: CSV bulk import audit records
package models
