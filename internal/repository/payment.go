package repository

import (
	"context"
	"dryclean-pos/internal/model"
	"time"

	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *model.PaymentTransaction) error
	FindByID(ctx context.Context, paymentID string) (*model.PaymentTransaction, error)
	FindBySessionID(ctx context.Context, sessionID string) (*model.PaymentTransaction, error)
	ListByOrder(ctx context.Context, orderID string) ([]*model.PaymentTransaction, error)
	MarkCompleted(ctx context.Context, tx *gorm.DB, paymentID string, at time.Time) (bool, error)
	MarkFailed(ctx context.Context, paymentID string, reason string) error
	AttachSession(ctx context.Context, paymentID, sessionID, checkoutURL string) error
	SetTransactionID(ctx context.Context, paymentID, transactionID string) error
}

type paymentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepoImpl{
		db: db,
	}
}

func (r *paymentRepoImpl) Create(ctx context.Context, tx *gorm.DB, payment *model.PaymentTransaction) error {
	return conn(r.db, tx).WithContext(ctx).Create(payment).Error
}

func (r *paymentRepoImpl) FindByID(ctx context.Context, paymentID string) (*model.PaymentTransaction, error) {
	var payment model.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("id = ?", paymentID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepoImpl) FindBySessionID(ctx context.Context, sessionID string) (*model.PaymentTransaction, error) {
	var payment model.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("gateway_session_id = ?", sessionID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepoImpl) ListByOrder(ctx context.Context, orderID string) ([]*model.PaymentTransaction, error) {
	var payments []*model.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}

	return payments, nil
}

// MarkCompleted is the settlement guard: only the caller that moves the
// transaction out of a non-completed status gets true back.
func (r *paymentRepoImpl) MarkCompleted(ctx context.Context, tx *gorm.DB, paymentID string, at time.Time) (bool, error) {
	result := conn(r.db, tx).WithContext(ctx).
		Model(&model.PaymentTransaction{}).
		Where("id = ? AND status <> ?", paymentID, model.PaymentCompleted).
		Updates(map[string]interface{}{
			"status":       model.PaymentCompleted,
			"completed_at": at,
			"updated_at":   at,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (r *paymentRepoImpl) MarkFailed(ctx context.Context, paymentID string, reason string) error {
	return r.db.WithContext(ctx).
		Model(&model.PaymentTransaction{}).
		Where("id = ? AND status = ?", paymentID, model.PaymentPending).
		Updates(map[string]interface{}{
			"status":         model.PaymentFailed,
			"failure_reason": reason,
			"updated_at":     time.Now().UTC(),
		}).Error
}

func (r *paymentRepoImpl) AttachSession(ctx context.Context, paymentID, sessionID, checkoutURL string) error {
	return r.db.WithContext(ctx).
		Model(&model.PaymentTransaction{}).
		Where("id = ?", paymentID).
		Updates(map[string]interface{}{
			"gateway_session_id": sessionID,
			"checkout_url":       checkoutURL,
			"updated_at":         time.Now().UTC(),
		}).Error
}

func (r *paymentRepoImpl) SetTransactionID(ctx context.Context, paymentID, transactionID string) error {
	return r.db.WithContext(ctx).
		Model(&model.PaymentTransaction{}).
		Where("id = ?", paymentID).
		Updates(map[string]interface{}{
			"gateway_transaction_id": transactionID,
			"updated_at":             time.Now().UTC(),
		}).Error
}
