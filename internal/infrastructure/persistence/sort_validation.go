package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"username":      true,
	"email":         true,
	"display_name":  true,
	"status":        true,
	"last_login_at": true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"tracking_number": true,
	"status":          true,
	"payment_status":  true,
	"cod_status":      true,
	"weight_kg":       true,
	"cod_amount":      true,
	"total_fee":       true,
	"delivered_at":    true,
}

// OfficeSortFields contains allowed sort fields for offices
var OfficeSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"city_code":  true,
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"sku":        true,
	"active":     true,
	"unit_value": true,
	"stock":      true,
}

// ShipmentSortFields contains allowed sort fields for shipments
var ShipmentSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"code":            true,
	"type":            true,
	"status":          true,
	"total_weight_kg": true,
	"departed_at":     true,
	"completed_at":    true,
}

// PromotionSortFields contains allowed sort fields for promotions
var PromotionSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"status":     true,
	"start_date": true,
	"end_date":   true,
	"used_count": true,
}

// SubmissionBatchSortFields contains allowed sort fields for shipper batches
var SubmissionBatchSortFields = map[string]bool{
	"id":                  true,
	"created_at":          true,
	"updated_at":          true,
	"code":                true,
	"status":              true,
	"total_system_amount": true,
	"total_actual_amount": true,
	"completed_at":        true,
}

// SettlementBatchSortFields contains allowed sort fields for merchant batches
var SettlementBatchSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"code":           true,
	"status":         true,
	"balance_amount": true,
	"period_start":   true,
	"period_end":     true,
	"completed_at":   true,
}
