package repository

import (
	"context"
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/model"
	"time"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	FindByID(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error)
	List(ctx context.Context, filter dto.OrderFilter) ([]*model.Order, error)
	ListDeliveries(ctx context.Context) ([]*model.Order, error)
	ListCompletedPayments(ctx context.Context, from, to *time.Time) ([]*model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, from, to model.OrderStatus, at time.Time, notes *string) (bool, error)
	UpdateDelivery(ctx context.Context, orderID string, info *model.DeliveryInfo) error
	MarkPaid(ctx context.Context, tx *gorm.DB, orderID string, method model.PaymentMethod) (bool, error)
	SetPaymentMethod(ctx context.Context, tx *gorm.DB, orderID string, method model.PaymentMethod) error
	SetLoyaltyPointsEarned(ctx context.Context, tx *gorm.DB, orderID string, points int64) error
	CountByStatus(ctx context.Context, statuses ...model.OrderStatus) (int64, error)
	CountActiveDeliveries(ctx context.Context) (int64, error)
	CountActiveByCustomer(ctx context.Context, customerID string) (int64, error)
	SumItemsByCustomer(ctx context.Context, customerID string) (int64, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return conn(r.db, tx).WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error) {
	var order model.Order
	err := conn(r.db, tx).WithContext(ctx).
		Preload("Items").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) List(ctx context.Context, filter dto.OrderFilter) ([]*model.Order, error) {
	query := r.db.WithContext(ctx).Preload("Items")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.CustomerID != "" {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.HasDelivery != nil {
		query = query.Where("has_delivery = ?", *filter.HasDelivery)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	var orders []*model.Order
	err := query.Order("created_at DESC").Limit(limit).Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) ListDeliveries(ctx context.Context) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("has_delivery = ?", true).
		Order("created_at DESC").
		Limit(500).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) ListCompletedPayments(ctx context.Context, from, to *time.Time) ([]*model.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("payment_status = ?", model.PaymentCompleted)
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}

	var orders []*model.Order
	if err := query.Order("created_at").Find(&orders).Error; err != nil {
		return nil, err
	}

	return orders, nil
}

// UpdateStatus moves the order from one status to the next and stamps the
// matching timestamp column. It reports false when the order was no longer in from.
func (r *orderRepoImpl) UpdateStatus(ctx context.Context, orderID string, from, to model.OrderStatus, at time.Time, notes *string) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": at,
	}
	if column := (model.OrderTimestamps{}).Column(to); column != "" {
		updates[column] = at
	}
	if notes != nil {
		updates["notes"] = *notes
	}

	result := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (r *orderRepoImpl) UpdateDelivery(ctx context.Context, orderID string, info *model.DeliveryInfo) error {
	// struct update so delivery_info goes through its json serializer
	result := r.db.WithContext(ctx).
		Model(&model.Order{ID: orderID}).
		Select("delivery_info", "has_delivery", "updated_at").
		Updates(&model.Order{
			DeliveryInfo: info,
			HasDelivery:  info != nil,
			UpdatedAt:    time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// MarkPaid flips payment_status to completed unless it already is. The boolean
// reports whether this call did the flip.
func (r *orderRepoImpl) MarkPaid(ctx context.Context, tx *gorm.DB, orderID string, method model.PaymentMethod) (bool, error) {
	result := conn(r.db, tx).WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND payment_status <> ?", orderID, model.PaymentCompleted).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentCompleted,
			"payment_method": method,
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (r *orderRepoImpl) SetPaymentMethod(ctx context.Context, tx *gorm.DB, orderID string, method model.PaymentMethod) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"payment_method": method,
			"updated_at":     time.Now().UTC(),
		}).Error
}

func (r *orderRepoImpl) SetLoyaltyPointsEarned(ctx context.Context, tx *gorm.DB, orderID string, points int64) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("loyalty_points_earned", points).Error
}

func (r *orderRepoImpl) CountByStatus(ctx context.Context, statuses ...model.OrderStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("status IN ?", statuses).
		Count(&count).Error
	return count, err
}

func (r *orderRepoImpl) CountActiveDeliveries(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("has_delivery = ? AND status IN ?", true, model.ActiveOrderStatuses).
		Count(&count).Error
	return count, err
}

func (r *orderRepoImpl) CountActiveByCustomer(ctx context.Context, customerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("customer_id = ? AND status IN ?", customerID, model.ActiveOrderStatuses).
		Count(&count).Error
	return count, err
}

func (r *orderRepoImpl) SumItemsByCustomer(ctx context.Context, customerID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.customer_id = ? AND orders.status <> ?", customerID, model.OrderCancelled).
		Select("COALESCE(SUM(order_items.quantity), 0)").
		Scan(&total).Error
	return total, err
}
