package repository

import (
	"context"
	"dryclean-pos/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoyaltyRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *model.LoyaltyTransaction) error
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]*model.LoyaltyTransaction, error)
	SumEarnedBefore(ctx context.Context, tx *gorm.DB, customerID string, cutoff time.Time) (int64, error)
	SumDebits(ctx context.Context, tx *gorm.DB, customerID string) (int64, error)

	GetSettings(ctx context.Context) (*model.LoyaltySettings, error)
	SaveSettings(ctx context.Context, settings *model.LoyaltySettings) error
}

type loyaltyRepoImpl struct {
	db *gorm.DB
}

func NewLoyaltyRepository(db *gorm.DB) LoyaltyRepository {
	return &loyaltyRepoImpl{
		db: db,
	}
}

func (r *loyaltyRepoImpl) Create(ctx context.Context, tx *gorm.DB, entry *model.LoyaltyTransaction) error {
	return conn(r.db, tx).WithContext(ctx).Create(entry).Error
}

// ListByCustomer returns the newest entries first. limit <= 0 returns the full ledger.
func (r *loyaltyRepoImpl) ListByCustomer(ctx context.Context, customerID string, limit int) ([]*model.LoyaltyTransaction, error) {
	query := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []*model.LoyaltyTransaction
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *loyaltyRepoImpl) SumEarnedBefore(ctx context.Context, tx *gorm.DB, customerID string, cutoff time.Time) (int64, error) {
	var total int64
	err := conn(r.db, tx).WithContext(ctx).
		Model(&model.LoyaltyTransaction{}).
		Where("customer_id = ? AND points > 0 AND created_at < ?", customerID, cutoff).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	return total, err
}

// SumDebits returns the absolute value of every negative ledger delta.
func (r *loyaltyRepoImpl) SumDebits(ctx context.Context, tx *gorm.DB, customerID string) (int64, error) {
	var total int64
	err := conn(r.db, tx).WithContext(ctx).
		Model(&model.LoyaltyTransaction{}).
		Where("customer_id = ? AND points < 0", customerID).
		Select("COALESCE(-SUM(points), 0)").
		Scan(&total).Error
	return total, err
}

func (r *loyaltyRepoImpl) GetSettings(ctx context.Context) (*model.LoyaltySettings, error) {
	var settings model.LoyaltySettings
	err := r.db.WithContext(ctx).
		Where("id = ?", model.LoyaltySettingsID).
		First(&settings).Error
	if err != nil {
		return nil, err
	}

	return &settings, nil
}

func (r *loyaltyRepoImpl) SaveSettings(ctx context.Context, settings *model.LoyaltySettings) error {
	settings.ID = model.LoyaltySettingsID
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(settings).Error
}
