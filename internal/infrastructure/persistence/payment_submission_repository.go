package persistence

import (
	"context"
	"errors"

	"github.com/lastmile/backend/internal/domain/settlement"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentSubmissionRepository implements PaymentSubmissionRepository
// using GORM
type GormPaymentSubmissionRepository struct {
	db *gorm.DB
}

// NewGormPaymentSubmissionRepository creates a new GormPaymentSubmissionRepository
func NewGormPaymentSubmissionRepository(db *gorm.DB) *GormPaymentSubmissionRepository {
	return &GormPaymentSubmissionRepository{db: db}
}

// FindByID finds a submission by ID
func (r *GormPaymentSubmissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.PaymentSubmission, error) {
	var m models.PaymentSubmissionModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindActiveByOrder returns the order's unresolved submission, or ErrNotFound
func (r *GormPaymentSubmissionRepository) FindActiveByOrder(ctx context.Context, orderID uuid.UUID) (*settlement.PaymentSubmission, error) {
	var m models.PaymentSubmissionModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND status IN ?", orderID,
			[]settlement.SubmissionStatus{settlement.SubmissionPending, settlement.SubmissionInBatch}).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindPendingByShipper returns a shipper's PENDING submissions
func (r *GormPaymentSubmissionRepository) FindPendingByShipper(ctx context.Context, shipperID uuid.UUID) ([]settlement.PaymentSubmission, error) {
	var rows []models.PaymentSubmissionModel
	if err := r.db.WithContext(ctx).
		Where("shipper_id = ? AND status = ?", shipperID, settlement.SubmissionPending).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toSubmissions(rows), nil
}

// LockPendingByIDs loads the given submissions with row locks held for the
// rest of the transaction, returning only rows still PENDING and owned by
// the shipper
func (r *GormPaymentSubmissionRepository) LockPendingByIDs(ctx context.Context, shipperID uuid.UUID, ids []uuid.UUID) ([]settlement.PaymentSubmission, error) {
	var rows []models.PaymentSubmissionModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ? AND shipper_id = ? AND status = ?", ids, shipperID, settlement.SubmissionPending).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toSubmissions(rows), nil
}

// FindByBatch returns the submissions claimed by a batch
func (r *GormPaymentSubmissionRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]settlement.PaymentSubmission, error) {
	var rows []models.PaymentSubmissionModel
	if err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toSubmissions(rows), nil
}

// Save creates or updates a submission
func (r *GormPaymentSubmissionRepository) Save(ctx context.Context, s *settlement.PaymentSubmission) error {
	m := models.PaymentSubmissionModelFromDomain(s)
	return r.db.WithContext(ctx).Save(m).Error
}

// SaveAll persists several submissions in one call
func (r *GormPaymentSubmissionRepository) SaveAll(ctx context.Context, subs []*settlement.PaymentSubmission) error {
	if len(subs) == 0 {
		return nil
	}
	rows := make([]*models.PaymentSubmissionModel, len(subs))
	for i, s := range subs {
		rows[i] = models.PaymentSubmissionModelFromDomain(s)
	}
	return r.db.WithContext(ctx).Save(rows).Error
}

func toSubmissions(rows []models.PaymentSubmissionModel) []settlement.PaymentSubmission {
	subs := make([]settlement.PaymentSubmission, len(rows))
	for i := range rows {
		subs[i] = *rows[i].ToDomain()
	}
	return subs
}

// Ensure GormPaymentSubmissionRepository implements PaymentSubmissionRepository
var _ settlement.PaymentSubmissionRepository = (*GormPaymentSubmissionRepository)(nil)
