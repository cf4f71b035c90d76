package service

import (
	"context"
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/model"
	"dryclean-pos/internal/repository"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CustomerService interface {
	Create(ctx context.Context, req *dto.CustomerCreateRequest) (*model.Customer, error)
	List(ctx context.Context, filter dto.CustomerFilter) ([]*model.Customer, error)
	Get(ctx context.Context, customerID string) (*model.Customer, error)
	Update(ctx context.Context, customerID string, req *dto.CustomerUpdateRequest) (*model.Customer, error)
	Delete(ctx context.Context, customerID string) error
	Stats(ctx context.Context, customerID string) (*dto.CustomerStats, error)
	Orders(ctx context.Context, customerID string, limit int) ([]*model.Order, error)
}

type customerServiceImpl struct {
	customerRepo repository.CustomerRepository
	orderRepo    repository.OrderRepository
}

func NewCustomerService(
	customerRepo repository.CustomerRepository,
	orderRepo repository.OrderRepository,
) CustomerService {
	return &customerServiceImpl{
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
	}
}

func validateCustomer(c *model.Customer) error {
	if strings.TrimSpace(c.Name) == "" {
		return newError(KindValidation, "name is required")
	}
	if strings.TrimSpace(c.Phone) == "" {
		return newError(KindValidation, "phone is required")
	}
	if !c.CustomerType.Valid() {
		return newError(KindValidation, "unknown customer type %q", c.CustomerType)
	}
	if c.DiscountPercent.IsNegative() || c.DiscountPercent.GreaterThan(hundred) {
		return newError(KindValidation, "discount_percent must be between 0 and 100")
	}
	if c.BusinessInfo != nil && strings.TrimSpace(c.BusinessInfo.CompanyName) == "" {
		return newError(KindValidation, "business_info.company_name is required")
	}
	return nil
}

func (s *customerServiceImpl) Create(ctx context.Context, req *dto.CustomerCreateRequest) (*model.Customer, error) {
	customerType := req.CustomerType
	if customerType == "" {
		customerType = model.CustomerRetail
	}

	customer := &model.Customer{
		ID:                    uuid.NewString(),
		Name:                  strings.TrimSpace(req.Name),
		Phone:                 strings.TrimSpace(req.Phone),
		Email:                 req.Email,
		CustomerType:          customerType,
		DiscountPercent:       req.DiscountPercent,
		LoyaltyExcluded:       req.LoyaltyExcluded,
		IsBlacklisted:         req.IsBlacklisted,
		BlacklistReason:       req.BlacklistReason,
		RequireAdvancePayment: req.RequireAdvancePayment,
		BusinessInfo:          req.BusinessInfo,
		Address:               req.Address,
		Notes:                 req.Notes,
		TotalSpent:            decimal.Zero,
		AverageOrderValue:     decimal.Zero,
	}
	if err := validateCustomer(customer); err != nil {
		return nil, err
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("store customer: %w", err)
	}

	return customer, nil
}

func (s *customerServiceImpl) List(ctx context.Context, filter dto.CustomerFilter) ([]*model.Customer, error) {
	if filter.CustomerType != "" && !filter.CustomerType.Valid() {
		return nil, newError(KindValidation, "unknown customer type %q", filter.CustomerType)
	}

	customers, err := s.customerRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

func (s *customerServiceImpl) Get(ctx context.Context, customerID string) (*model.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, nil, customerID)
	if err != nil {
		return nil, notFoundOr(err, "customer")
	}
	return customer, nil
}

// Update applies only the fields present in req. Aggregates and the loyalty
// balance are not part of the request and are never written here.
func (s *customerServiceImpl) Update(ctx context.Context, customerID string, req *dto.CustomerUpdateRequest) (*model.Customer, error) {
	customer, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	var columns []string
	set := func(applied bool, column string) {
		if applied {
			columns = append(columns, column)
		}
	}
	set(req.Name.Apply(&customer.Name), "name")
	set(req.Phone.Apply(&customer.Phone), "phone")
	set(req.Email.Apply(&customer.Email), "email")
	set(req.CustomerType.Apply(&customer.CustomerType), "customer_type")
	set(req.DiscountPercent.Apply(&customer.DiscountPercent), "discount_percent")
	set(req.LoyaltyExcluded.Apply(&customer.LoyaltyExcluded), "loyalty_excluded")
	set(req.IsBlacklisted.Apply(&customer.IsBlacklisted), "is_blacklisted")
	set(req.BlacklistReason.Apply(&customer.BlacklistReason), "blacklist_reason")
	set(req.RequireAdvancePayment.Apply(&customer.RequireAdvancePayment), "require_advance_payment")
	set(req.BusinessInfo.Apply(&customer.BusinessInfo), "business_info")
	set(req.Address.Apply(&customer.Address), "address")
	set(req.Notes.Apply(&customer.Notes), "notes")

	if len(columns) == 0 {
		return nil, newError(KindValidation, "no fields to update")
	}
	if err := validateCustomer(customer); err != nil {
		return nil, err
	}

	if err := s.customerRepo.UpdateFields(ctx, customer, columns...); err != nil {
		return nil, notFoundOr(err, "customer")
	}

	return s.Get(ctx, customerID)
}

// Delete removes the customer record only; their orders stay.
func (s *customerServiceImpl) Delete(ctx context.Context, customerID string) error {
	if err := s.customerRepo.Delete(ctx, customerID); err != nil {
		return notFoundOr(err, "customer")
	}
	return nil
}

func (s *customerServiceImpl) Stats(ctx context.Context, customerID string) (*dto.CustomerStats, error) {
	customer, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	active, err := s.orderRepo.CountActiveByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("count active orders: %w", err)
	}

	items, err := s.orderRepo.SumItemsByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("count cleaned items: %w", err)
	}

	return &dto.CustomerStats{
		TotalOrders:       customer.TotalOrders,
		ActiveOrders:      active,
		TotalSpent:        customer.TotalSpent,
		AverageOrderValue: customer.AverageOrderValue.Round(2),
		LoyaltyPoints:     customer.LoyaltyPoints,
		TotalItemsCleaned: items,
		MemberSince:       customer.CreatedAt,
		LastOrderDate:     customer.LastOrderDate,
	}, nil
}

func (s *customerServiceImpl) Orders(ctx context.Context, customerID string, limit int) ([]*model.Order, error) {
	if _, err := s.Get(ctx, customerID); err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.List(ctx, dto.OrderFilter{CustomerID: customerID, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}
	return orders, nil
}
