package importapp

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	orderapp "github.com/lastmile/backend/internal/application/order"
	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/shared"
	csvimport "github.com/lastmile/backend/internal/infrastructure/import"
)

// OrderCreator creates one order through the regular order pipeline so
// imported orders get the same fees, stock reservation, and history as
// orders created through the API.
type OrderCreator interface {
	Create(ctx context.Context, actor order.Actor, req orderapp.CreateOrderRequest) (*orderapp.OrderResponse, error)
}

// ImportedOrder identifies one order created by a bulk upload
type ImportedOrder struct {
	Row            int       `json:"row"`
	OrderID        uuid.UUID `json:"order_id"`
	TrackingNumber string    `json:"tracking_number"`
}

// OrderImportResult represents the result of an order import operation
type OrderImportResult struct {
	TotalRows    int                  `json:"total_rows"`
	ImportedRows int                  `json:"imported_rows"`
	ErrorRows    int                  `json:"error_rows"`
	Orders       []ImportedOrder      `json:"orders,omitempty"`
	Errors       []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated  bool                 `json:"is_truncated,omitempty"`
	TotalErrors  int                  `json:"total_errors,omitempty"`
}

// OrderImportService bulk-creates delivery orders from a CSV upload.
// Orders always create; there is no conflict mode.
type OrderImportService struct {
	orders OrderCreator
	logger *zap.Logger
}

// NewOrderImportService creates a new OrderImportService
func NewOrderImportService(orders OrderCreator, logger *zap.Logger) *OrderImportService {
	return &OrderImportService{
		orders: orders,
		logger: logger,
	}
}

// GetValidationRules returns the validation rules for order import
func (s *OrderImportService) GetValidationRules() []csvimport.FieldRule {
	zero := decimal.Zero
	return []csvimport.FieldRule{
		csvimport.Field("sender_name").Required().String().MinLength(1).MaxLength(100).Build(),
		csvimport.Field("sender_phone").Required().String().MinLength(8).MaxLength(20).Build(),
		csvimport.Field("sender_street").Required().String().MinLength(1).MaxLength(200).Build(),
		csvimport.Field("sender_city_code").Required().Int().Build(),
		csvimport.Field("sender_ward_code").Required().Int().Build(),
		csvimport.Field("recipient_name").Required().String().MinLength(1).MaxLength(100).Build(),
		csvimport.Field("recipient_phone").Required().String().MinLength(8).MaxLength(20).Build(),
		csvimport.Field("recipient_street").Required().String().MinLength(1).MaxLength(200).Build(),
		csvimport.Field("recipient_city_code").Required().Int().Build(),
		csvimport.Field("recipient_ward_code").Required().Int().Build(),
		csvimport.Field("origin_office_id").Required().UUID().Build(),
		csvimport.Field("destination_office_id").Required().UUID().Build(),
		csvimport.Field("service_type_id").Required().UUID().Build(),
		csvimport.Field("weight_kg").Required().Decimal().MinValue(zero).Build(),
		csvimport.Field("declared_value").Decimal().MinValue(zero).Build(),
		csvimport.Field("cod_amount").Decimal().MinValue(zero).Build(),
		csvimport.Field("pickup_type").String().Custom(validatePickupType).Build(),
		csvimport.Field("payer").String().Custom(validatePayer).Build(),
		csvimport.Field("promotion_code").String().MaxLength(50).Build(),
		csvimport.Field("note").String().MaxLength(500).Build(),
	}
}

func validatePickupType(value string) error {
	if value == "" {
		return nil
	}
	if !order.PickupType(value).IsValid() {
		return fmt.Errorf("pickup_type must be COURIER_PICKUP or DROP_OFF")
	}
	return nil
}

func validatePayer(value string) error {
	if value == "" {
		return nil
	}
	if !order.Payer(value).IsValid() {
		return fmt.Errorf("payer must be CUSTOMER or SHOP")
	}
	return nil
}

// Import creates one order per validated row on behalf of the actor.
// Row failures are collected per row; the rest of the file proceeds.
func (s *OrderImportService) Import(
	ctx context.Context,
	actor order.Actor,
	session *csvimport.ImportSession,
	validRows []*csvimport.Row,
) (*OrderImportResult, error) {
	if session.State != csvimport.StateValidated {
		return nil, shared.NewDomainError("INVALID_STATE", "Import session must be in validated state")
	}
	if !session.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERRORS", "Cannot import session with validation errors")
	}

	session.UpdateState(csvimport.StateImporting)

	result := &OrderImportResult{TotalRows: len(validRows)}
	rowErrors := csvimport.NewErrorCollection(100)

	for _, row := range validRows {
		select {
		case <-ctx.Done():
			session.UpdateState(csvimport.StateCancelled)
			return nil, ctx.Err()
		default:
		}

		req, err := s.buildRequest(actor, row)
		if err != nil {
			rowErrors.Add(csvimport.NewRowError(row.LineNumber, "", csvimport.ErrCodeImportValidation, err.Error()))
			result.ErrorRows++
			continue
		}

		resp, err := s.orders.Create(ctx, actor, *req)
		if err != nil {
			rowErrors.Add(csvimport.NewRowError(row.LineNumber, "", csvimport.ErrCodeImportValidation, err.Error()))
			result.ErrorRows++
			continue
		}

		result.ImportedRows++
		result.Orders = append(result.Orders, ImportedOrder{
			Row:            row.LineNumber,
			OrderID:        resp.ID,
			TrackingNumber: resp.TrackingNumber,
		})
	}

	result.Errors = rowErrors.Errors()
	result.IsTruncated = rowErrors.IsTruncated()
	result.TotalErrors = rowErrors.TotalCount()

	if result.ErrorRows > 0 && result.ImportedRows == 0 {
		session.UpdateState(csvimport.StateFailed)
	} else {
		session.UpdateState(csvimport.StateCompleted)
	}

	s.logger.Info("order import finished",
		zap.String("customer_id", actor.UserID.String()),
		zap.Int("imported", result.ImportedRows),
		zap.Int("errors", result.ErrorRows))

	return result, nil
}

func (s *OrderImportService) buildRequest(actor order.Actor, row *csvimport.Row) (*orderapp.CreateOrderRequest, error) {
	sender, err := parseAddress(row, "sender")
	if err != nil {
		return nil, err
	}
	recipient, err := parseAddress(row, "recipient")
	if err != nil {
		return nil, err
	}

	originOffice, err := uuid.Parse(row.Get("origin_office_id"))
	if err != nil {
		return nil, fmt.Errorf("invalid origin_office_id")
	}
	destOffice, err := uuid.Parse(row.Get("destination_office_id"))
	if err != nil {
		return nil, fmt.Errorf("invalid destination_office_id")
	}
	serviceTypeID, err := uuid.Parse(row.Get("service_type_id"))
	if err != nil {
		return nil, fmt.Errorf("invalid service_type_id")
	}

	weightKg, err := decimal.NewFromString(row.Get("weight_kg"))
	if err != nil {
		return nil, fmt.Errorf("invalid weight_kg")
	}

	declaredValue, err := parseOptionalDecimal(row.Get("declared_value"))
	if err != nil {
		return nil, fmt.Errorf("invalid declared_value")
	}
	codAmount, err := parseOptionalDecimal(row.Get("cod_amount"))
	if err != nil {
		return nil, fmt.Errorf("invalid cod_amount")
	}

	return &orderapp.CreateOrderRequest{
		PickupType:    order.PickupType(row.GetOrDefault("pickup_type", string(order.PickupCourier))),
		Payer:         order.Payer(row.GetOrDefault("payer", string(order.PayerCustomer))),
		CustomerID:    actor.UserID,
		Sender:        *sender,
		Recipient:     *recipient,
		OriginOffice:  originOffice,
		DestOffice:    destOffice,
		ServiceTypeID: serviceTypeID,
		WeightKg:      weightKg,
		DeclaredValue: declaredValue,
		CODAmount:     codAmount,
		PromotionCode: row.Get("promotion_code"),
		Note:          row.Get("note"),
	}, nil
}

func parseAddress(row *csvimport.Row, prefix string) (*orderapp.AddressInput, error) {
	cityCode, err := strconv.Atoi(row.Get(prefix + "_city_code"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s_city_code", prefix)
	}
	wardCode, err := strconv.Atoi(row.Get(prefix + "_ward_code"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s_ward_code", prefix)
	}
	return &orderapp.AddressInput{
		Name:     row.Get(prefix + "_name"),
		Phone:    row.Get(prefix + "_phone"),
		Street:   row.Get(prefix + "_street"),
		CityCode: cityCode,
		WardCode: wardCode,
	}, nil
}

func parseOptionalDecimal(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}
