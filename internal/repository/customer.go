package repository

import (
	"context"
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/model"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	FindByID(ctx context.Context, tx *gorm.DB, customerID string) (*model.Customer, error)
	FindForUpdate(ctx context.Context, tx *gorm.DB, customerID string) (*model.Customer, error)
	List(ctx context.Context, filter dto.CustomerFilter) ([]*model.Customer, error)
	ListWithPoints(ctx context.Context) ([]*model.Customer, error)
	Count(ctx context.Context) (int64, error)
	UpdateFields(ctx context.Context, customer *model.Customer, columns ...string) error
	Delete(ctx context.Context, customerID string) error
	RecordOrder(ctx context.Context, tx *gorm.DB, customerID string, total decimal.Decimal, at time.Time) error
	SetLoyaltyPoints(ctx context.Context, tx *gorm.DB, customerID string, points int64) error
}

type customerRepoImpl struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepoImpl{
		db: db,
	}
}

func (r *customerRepoImpl) Create(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *customerRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, customerID string) (*model.Customer, error) {
	var customer model.Customer
	err := conn(r.db, tx).WithContext(ctx).
		Where("id = ?", customerID).
		First(&customer).Error
	if err != nil {
		return nil, err
	}

	return &customer, nil
}

// FindForUpdate reads the customer holding a row lock for the rest of tx.
func (r *customerRepoImpl) FindForUpdate(ctx context.Context, tx *gorm.DB, customerID string) (*model.Customer, error) {
	var customer model.Customer
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", customerID).
		First(&customer).Error
	if err != nil {
		return nil, err
	}

	return &customer, nil
}

func (r *customerRepoImpl) List(ctx context.Context, filter dto.CustomerFilter) ([]*model.Customer, error) {
	query := r.db.WithContext(ctx).Model(&model.Customer{})
	if filter.CustomerType != "" {
		query = query.Where("customer_type = ?", filter.CustomerType)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ? OR email LIKE ?", like, like, like)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	var customers []*model.Customer
	err := query.Order("name").Limit(limit).Find(&customers).Error
	if err != nil {
		return nil, err
	}

	return customers, nil
}

func (r *customerRepoImpl) ListWithPoints(ctx context.Context) ([]*model.Customer, error) {
	var customers []*model.Customer
	err := r.db.WithContext(ctx).
		Where("loyalty_points > 0").
		Find(&customers).Error
	if err != nil {
		return nil, err
	}

	return customers, nil
}

func (r *customerRepoImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Customer{}).Count(&count).Error
	return count, err
}

// UpdateFields writes only the named columns so the order aggregates and the
// loyalty balance are never overwritten from a stale copy.
func (r *customerRepoImpl) UpdateFields(ctx context.Context, customer *model.Customer, columns ...string) error {
	columns = append(columns, "updated_at")
	customer.UpdatedAt = time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&model.Customer{ID: customer.ID}).
		Select(columns).
		Updates(customer)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *customerRepoImpl) Delete(ctx context.Context, customerID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", customerID).
		Delete(&model.Customer{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// RecordOrder bumps the order aggregates in place and then derives the average
// from the stored totals, so concurrent orders cannot lose an increment.
func (r *customerRepoImpl) RecordOrder(ctx context.Context, tx *gorm.DB, customerID string, total decimal.Decimal, at time.Time) error {
	db := conn(r.db, tx).WithContext(ctx)

	result := db.Model(&model.Customer{}).
		Where("id = ?", customerID).
		Updates(map[string]interface{}{
			"total_orders":    gorm.Expr("total_orders + ?", 1),
			"total_spent":     gorm.Expr("total_spent + ?", total),
			"last_order_date": at,
			"updated_at":      at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return db.Model(&model.Customer{}).
		Where("id = ?", customerID).
		Update("average_order_value", gorm.Expr(
			"CASE WHEN total_orders > 0 THEN total_spent * 1.0 / total_orders ELSE 0 END",
		)).Error
}

func (r *customerRepoImpl) SetLoyaltyPoints(ctx context.Context, tx *gorm.DB, customerID string, points int64) error {
	result := conn(r.db, tx).WithContext(ctx).
		Model(&model.Customer{}).
		Where("id = ?", customerID).
		Updates(map[string]interface{}{
			"loyalty_points": points,
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
