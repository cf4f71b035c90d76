package service

import (
	"context"
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/model"
	"dryclean-pos/internal/repository"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// a client total may differ from ours by at most a cent of rounding
var totalTolerance = decimal.RequireFromString("0.01")

type OrderService interface {
	Create(ctx context.Context, actorID string, req *dto.OrderCreateRequest) (*model.Order, error)
	Quote(ctx context.Context, req *dto.OrderCreateRequest) (*dto.OrderQuote, error)
	List(ctx context.Context, filter dto.OrderFilter) ([]*model.Order, error)
	Get(ctx context.Context, orderID string) (*model.Order, error)
	ByStatus(ctx context.Context) (*dto.OrdersByStatus, error)
	UpdateStatus(ctx context.Context, orderID string, req *dto.OrderStatusUpdateRequest) (*model.Order, error)
	UpdateDelivery(ctx context.Context, orderID string, info *model.DeliveryInfo) (*model.Order, error)
	Deliveries(ctx context.Context, filter dto.DeliveryFilter) ([]*dto.DeliveryResponse, error)
}

type orderServiceImpl struct {
	db              *gorm.DB
	settingsService LoyaltySettingsService
	loyaltyService  LoyaltyService
	orderRepo       repository.OrderRepository
	customerRepo    repository.CustomerRepository
	catalogRepo     repository.CatalogRepository
}

func NewOrderService(
	db *gorm.DB,
	settingsService LoyaltySettingsService,
	loyaltyService LoyaltyService,
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	catalogRepo repository.CatalogRepository,
) OrderService {
	return &orderServiceImpl{
		db:              db,
		settingsService: settingsService,
		loyaltyService:  loyaltyService,
		orderRepo:       orderRepo,
		customerRepo:    customerRepo,
		catalogRepo:     catalogRepo,
	}
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
	return "DC" + now.Format("060102") + strings.ToUpper(suffix)
}

func validateOrderRequest(req *dto.OrderCreateRequest) error {
	if req.CustomerID == "" {
		return newError(KindValidation, "customer_id is required")
	}
	if len(req.Items) == 0 {
		return newError(KindValidation, "order must contain at least one item")
	}
	for i, item := range req.Items {
		if item.ItemID == "" {
			return newError(KindValidation, "items[%d]: item_id is required", i)
		}
		if item.Quantity <= 0 {
			return newError(KindValidation, "items[%d]: quantity must be positive", i)
		}
		if item.ServiceType != "" && !item.ServiceType.Valid() {
			return newError(KindValidation, "items[%d]: unknown service type %q", i, item.ServiceType)
		}
		if item.UnitPrice.IsNegative() {
			return newError(KindValidation, "items[%d]: unit_price must not be negative", i)
		}
	}
	if req.Tax.IsNegative() {
		return newError(KindValidation, "tax must not be negative")
	}
	if req.ManualDiscount.IsNegative() {
		return newError(KindValidation, "manual_discount must not be negative")
	}
	if req.LoyaltyPointsRedeemed < 0 {
		return newError(KindValidation, "loyalty_points_redeemed must not be negative")
	}
	if req.DeliveryInfo != nil && !req.DeliveryInfo.Type.Valid() {
		return newError(KindValidation, "unknown delivery type %q", req.DeliveryInfo.Type)
	}
	return nil
}

func (s *orderServiceImpl) catalogItems(ctx context.Context, req *dto.OrderCreateRequest) (map[string]*model.Item, error) {
	ids := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ItemID)
	}

	items, err := s.catalogRepo.FindItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get catalog items: %w", err)
	}

	byID := make(map[string]*model.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return byID, nil
}

// buildOrder prices the cart for the customer and applies the requested
// redemption. Nothing is written.
func buildOrder(
	req *dto.OrderCreateRequest,
	customer *model.Customer,
	catalog map[string]*model.Item,
	settings *model.LoyaltySettings,
	now time.Time,
) (*model.Order, error) {
	if customer.IsBlacklisted {
		reason := "customer is blacklisted"
		if customer.BlacklistReason != nil && *customer.BlacklistReason != "" {
			reason += ": " + *customer.BlacklistReason
		}
		return nil, newError(KindForbidden, "%s", reason)
	}

	items := make([]model.OrderItem, len(req.Items))
	lines := make([]PriceLine, len(req.Items))
	for i, line := range req.Items {
		service := line.ServiceType
		if service == "" {
			service = model.ServiceRegular
		}

		item := model.OrderItem{
			ItemID:      line.ItemID,
			ItemName:    line.ItemName,
			Quantity:    line.Quantity,
			ServiceType: service,
			UnitPrice:   line.UnitPrice,
			Pieces:      line.Pieces,
			GarmentTags: line.GarmentTags,
			Notes:       line.Notes,
		}

		if line.VolumeDiscountPercent != nil {
			item.VolumeDiscountPercent = *line.VolumeDiscountPercent
		}
		if known, ok := catalog[line.ItemID]; ok {
			if item.ItemName == "" {
				item.ItemName = known.Name
			}
			if item.UnitPrice.IsZero() {
				item.UnitPrice = known.Prices.For(service)
			}
			item.VolumeDiscountPercent = SelectVolumeDiscount(known.VolumeDiscounts, line.Quantity)
		}

		items[i] = item
		lines[i] = PriceLine{
			UnitPrice:             item.UnitPrice,
			Quantity:              item.Quantity,
			VolumeDiscountPercent: item.VolumeDiscountPercent,
		}
	}

	breakdown := Price(PriceInput{
		Lines:                   lines,
		Tax:                     req.Tax,
		CustomerDiscountPercent: customer.DiscountPercent,
		ManualDiscount:          req.ManualDiscount,
	})
	for i := range items {
		items[i].TotalPrice = breakdown.Lines[i].TotalPrice
		items[i].DiscountApplied = breakdown.Lines[i].DiscountApplied
	}

	var pointsUsed int64
	if req.LoyaltyPointsRedeemed > 0 {
		redemption, err := PreviewRedemption(settings, customer, req.LoyaltyPointsRedeemed, breakdown.Total)
		if err != nil {
			return nil, err
		}
		breakdown.ApplyLoyalty(redemption.DiscountValue)
		pointsUsed = redemption.PointsToUse
	}

	if breakdown.Total.IsNegative() {
		return nil, newError(KindValidation, "discounts exceed the order amount: total would be %s", breakdown.Total.StringFixed(2))
	}
	if req.Total != nil && req.Total.Sub(breakdown.Total).Abs().GreaterThan(totalTolerance) {
		return nil, newError(KindValidation, "total %s does not match computed total %s",
			req.Total.StringFixed(2), breakdown.Total.StringFixed(2))
	}

	return &model.Order{
		CustomerID:              customer.ID,
		CustomerName:            customer.Name,
		CustomerPhone:           customer.Phone,
		CustomerType:            customer.CustomerType,
		Items:                   items,
		Subtotal:                breakdown.Subtotal,
		Tax:                     breakdown.Tax,
		TaxDetails:              req.TaxDetails,
		CustomerDiscountPercent: customer.DiscountPercent,
		CustomerDiscountAmount:  breakdown.CustomerDiscountAmount,
		VolumeDiscountAmount:    breakdown.VolumeDiscountAmount,
		ManualDiscount:          breakdown.ManualDiscount,
		LoyaltyDiscountAmount:   breakdown.LoyaltyDiscountAmount,
		Total:                   breakdown.Total,
		Notes:                   req.Notes,
		EstimatedReady:          req.EstimatedReady,
		HasDelivery:             req.DeliveryInfo != nil,
		DeliveryInfo:            req.DeliveryInfo,
		Status:                  model.OrderCleaning,
		PaymentStatus:           model.PaymentPending,
		Timestamps:              model.OrderTimestamps{CreatedAt: now},
		LoyaltyPointsRedeemed:   pointsUsed,
		UpdatedAt:               now,
	}, nil
}

func (s *orderServiceImpl) Quote(ctx context.Context, req *dto.OrderCreateRequest) (*dto.OrderQuote, error) {
	if err := validateOrderRequest(req); err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.FindByID(ctx, nil, req.CustomerID)
	if err != nil {
		return nil, notFoundOr(err, "customer")
	}

	catalog, err := s.catalogItems(ctx, req)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return nil, err
	}

	order, err := buildOrder(req, customer, catalog, settings, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	return &dto.OrderQuote{
		Items:                   order.Items,
		Subtotal:                order.Subtotal,
		Tax:                     order.Tax,
		CustomerDiscountPercent: order.CustomerDiscountPercent,
		CustomerDiscountAmount:  order.CustomerDiscountAmount,
		VolumeDiscountAmount:    order.VolumeDiscountAmount,
		ManualDiscount:          order.ManualDiscount,
		LoyaltyDiscountAmount:   order.LoyaltyDiscountAmount,
		LoyaltyPointsRedeemed:   order.LoyaltyPointsRedeemed,
		Total:                   order.Total,
	}, nil
}

// Create stores the order, its customer aggregates and any redemption in one transaction.
func (s *orderServiceImpl) Create(ctx context.Context, actorID string, req *dto.OrderCreateRequest) (*model.Order, error) {
	if err := validateOrderRequest(req); err != nil {
		return nil, err
	}

	catalog, err := s.catalogItems(ctx, req)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return nil, err
	}

	var order *model.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := s.customerRepo.FindForUpdate(ctx, tx, req.CustomerID)
		if err != nil {
			return notFoundOr(err, "customer")
		}

		now := time.Now().UTC()
		order, err = buildOrder(req, customer, catalog, settings, now)
		if err != nil {
			return err
		}
		order.ID = uuid.NewString()
		order.OrderNumber = newOrderNumber(now)
		order.CreatedBy = actorID

		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order: %w", err)
		}

		if err := s.customerRepo.RecordOrder(ctx, tx, customer.ID, order.Total, now); err != nil {
			return fmt.Errorf("update customer aggregates: %w", err)
		}

		return s.loyaltyService.Redeem(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (s *orderServiceImpl) List(ctx context.Context, filter dto.OrderFilter) ([]*model.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, newError(KindValidation, "unknown order status %q", filter.Status)
	}

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *orderServiceImpl) Get(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, nil, orderID)
	if err != nil {
		return nil, notFoundOr(err, "order")
	}
	return order, nil
}

func (s *orderServiceImpl) ByStatus(ctx context.Context) (*dto.OrdersByStatus, error) {
	cleaning, err := s.orderRepo.List(ctx, dto.OrderFilter{Status: model.OrderCleaning, Limit: 500})
	if err != nil {
		return nil, fmt.Errorf("list cleaning orders: %w", err)
	}

	ready, err := s.orderRepo.List(ctx, dto.OrderFilter{Status: model.OrderReady, Limit: 500})
	if err != nil {
		return nil, fmt.Errorf("list ready orders: %w", err)
	}

	return &dto.OrdersByStatus{
		Cleaning: cleaning,
		Ready:    ready,
	}, nil
}

func (s *orderServiceImpl) UpdateStatus(ctx context.Context, orderID string, req *dto.OrderStatusUpdateRequest) (*model.Order, error) {
	if !req.Status.Valid() {
		return nil, newError(KindValidation, "unknown order status %q", req.Status)
	}

	order, err := s.orderRepo.FindByID(ctx, nil, orderID)
	if err != nil {
		return nil, notFoundOr(err, "order")
	}

	if !order.Status.CanTransitionTo(req.Status) {
		return nil, newError(KindInvalidTransition, "cannot move order from %s to %s", order.Status, req.Status)
	}

	ok, err := s.orderRepo.UpdateStatus(ctx, orderID, order.Status, req.Status, time.Now().UTC(), req.Notes)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if !ok {
		return nil, newError(KindConflict, "order %s changed status concurrently", order.OrderNumber)
	}

	return s.Get(ctx, orderID)
}

func (s *orderServiceImpl) UpdateDelivery(ctx context.Context, orderID string, info *model.DeliveryInfo) (*model.Order, error) {
	if info != nil && !info.Type.Valid() {
		return nil, newError(KindValidation, "unknown delivery type %q", info.Type)
	}
	if info != nil && info.DeliveryFee.IsNegative() {
		return nil, newError(KindValidation, "delivery_fee must not be negative")
	}

	if err := s.orderRepo.UpdateDelivery(ctx, orderID, info); err != nil {
		return nil, notFoundOr(err, "order")
	}

	return s.Get(ctx, orderID)
}

func (s *orderServiceImpl) Deliveries(ctx context.Context, filter dto.DeliveryFilter) ([]*dto.DeliveryResponse, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, newError(KindValidation, "unknown delivery type %q", filter.Type)
	}

	orders, err := s.orderRepo.ListDeliveries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}

	result := make([]*dto.DeliveryResponse, 0, len(orders))
	for _, order := range orders {
		info := order.DeliveryInfo
		if info == nil || !matchesDelivery(info, filter) {
			continue
		}
		result = append(result, &dto.DeliveryResponse{
			OrderID:       order.ID,
			OrderNumber:   order.OrderNumber,
			CustomerName:  order.CustomerName,
			CustomerPhone: order.CustomerPhone,
			Status:        order.Status,
			DeliveryInfo:  info,
			Total:         order.Total,
			CreatedAt:     order.Timestamps.CreatedAt,
		})
	}

	return result, nil
}

func matchesDelivery(info *model.DeliveryInfo, filter dto.DeliveryFilter) bool {
	if filter.Type != "" && info.Type != filter.Type && info.Type != model.DeliveryBoth {
		return false
	}
	if filter.DriverID != "" && (info.DriverID == nil || *info.DriverID != filter.DriverID) {
		return false
	}
	if filter.Date != "" {
		pickup := info.PickupDate != nil && *info.PickupDate == filter.Date
		delivery := info.DeliveryDate != nil && *info.DeliveryDate == filter.Date
		if !pickup && !delivery {
			return false
		}
	}
	return true
}
