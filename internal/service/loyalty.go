package service

import (
	"context"
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/model"
	"dryclean-pos/internal/repository"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const recentLoyaltyEntries = 20

type LoyaltyService interface {
	CalculateRedemption(ctx context.Context, req *dto.RedemptionRequest) (*dto.RedemptionResponse, error)
	Adjust(ctx context.Context, customerID, actorID string, req *dto.LoyaltyAdjustRequest) (*model.LoyaltyTransaction, error)
	CustomerLoyalty(ctx context.Context, customerID string) (*dto.CustomerLoyaltyResponse, error)
	ExpirePoints(ctx context.Context, now time.Time) (int, error)

	// Award credits the points for a settled payment. It must run inside the
	// settlement transaction and is a silent no-op for customers outside the program.
	Award(ctx context.Context, tx *gorm.DB, settings *model.LoyaltySettings, order *model.Order, amount decimal.Decimal) (int64, error)
	// Redeem debits the points an order was created with.
	Redeem(ctx context.Context, tx *gorm.DB, order *model.Order) error
}

type loyaltyServiceImpl struct {
	db              *gorm.DB
	settingsService LoyaltySettingsService
	customerRepo    repository.CustomerRepository
	orderRepo       repository.OrderRepository
	loyaltyRepo     repository.LoyaltyRepository
}

func NewLoyaltyService(
	db *gorm.DB,
	settingsService LoyaltySettingsService,
	customerRepo repository.CustomerRepository,
	orderRepo repository.OrderRepository,
	loyaltyRepo repository.LoyaltyRepository,
) LoyaltyService {
	return &loyaltyServiceImpl{
		db:              db,
		settingsService: settingsService,
		customerRepo:    customerRepo,
		orderRepo:       orderRepo,
		loyaltyRepo:     loyaltyRepo,
	}
}

// TierFor returns the tier with the highest min_points the balance reaches, or nil.
func TierFor(tiers []model.LoyaltyTier, balance int64) *model.LoyaltyTier {
	sorted := make([]model.LoyaltyTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinPoints > sorted[j].MinPoints
	})

	for i := range sorted {
		if balance >= sorted[i].MinPoints {
			return &sorted[i]
		}
	}
	return nil
}

// NextTier returns the cheapest tier the balance has not reached yet, or nil.
func NextTier(tiers []model.LoyaltyTier, balance int64) *model.LoyaltyTier {
	var next *model.LoyaltyTier
	for i := range tiers {
		if tiers[i].MinPoints <= balance {
			continue
		}
		if next == nil || tiers[i].MinPoints < next.MinPoints {
			tier := tiers[i]
			next = &tier
		}
	}
	return next
}

func excludedFromLoyalty(settings *model.LoyaltySettings, customer *model.Customer) bool {
	return customer.LoyaltyExcluded || (settings.ExcludeBusinessCustomers && customer.IsBusiness())
}

// PreviewRedemption validates a redemption against the customer's balance and
// caps the discount at max_redemption_percent of orderTotal. When the cap binds
// the points actually used are converted back from the capped discount.
func PreviewRedemption(settings *model.LoyaltySettings, customer *model.Customer, requested int64, orderTotal decimal.Decimal) (*dto.RedemptionResponse, error) {
	if !settings.Enabled {
		return nil, newError(KindProgramDisabled, "loyalty program is disabled")
	}
	if excludedFromLoyalty(settings, customer) {
		return nil, newError(KindCustomerExcluded, "customer is excluded from the loyalty program")
	}
	if requested <= 0 {
		return nil, newError(KindValidation, "points_to_redeem must be positive")
	}
	if requested > customer.LoyaltyPoints {
		return nil, newError(KindInsufficientPoints, "insufficient points: %d available, %d requested", customer.LoyaltyPoints, requested)
	}
	if requested < settings.MinRedemptionPoints {
		return nil, newError(KindBelowMinimumRedemption, "minimum redemption is %d points", settings.MinRedemptionPoints)
	}
	if !settings.RedemptionRate.IsPositive() {
		return nil, newError(KindProgramDisabled, "redemption rate is not configured")
	}

	maxDiscount := decimal.Max(orderTotal, decimal.Zero).
		Mul(settings.MaxRedemptionPercent).
		Div(hundred).
		Truncate(2)

	discount := decimal.NewFromInt(requested).Mul(settings.RedemptionRate).Round(2)
	if discount.GreaterThan(maxDiscount) {
		discount = maxDiscount
	}

	pointsToUse := discount.Div(settings.RedemptionRate).Floor().IntPart()
	if pointsToUse > requested {
		pointsToUse = requested
	}

	return &dto.RedemptionResponse{
		PointsRequested:    requested,
		PointsToUse:        pointsToUse,
		DiscountValue:      discount,
		MaxDiscountAllowed: maxDiscount,
		AvailablePoints:    customer.LoyaltyPoints,
		RemainingPoints:    customer.LoyaltyPoints - pointsToUse,
	}, nil
}

func (s *loyaltyServiceImpl) CalculateRedemption(ctx context.Context, req *dto.RedemptionRequest) (*dto.RedemptionResponse, error) {
	if req.CustomerID == "" {
		return nil, newError(KindValidation, "customer_id is required")
	}
	if req.OrderTotal.IsNegative() {
		return nil, newError(KindValidation, "order_total must not be negative")
	}

	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.FindByID(ctx, nil, req.CustomerID)
	if err != nil {
		return nil, notFoundOr(err, "customer")
	}

	return PreviewRedemption(settings, customer, req.PointsToRedeem, req.OrderTotal)
}

func (s *loyaltyServiceImpl) Redeem(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	points := order.LoyaltyPointsRedeemed
	if points <= 0 {
		return nil
	}

	customer, err := s.customerRepo.FindForUpdate(ctx, tx, order.CustomerID)
	if err != nil {
		return notFoundOr(err, "customer")
	}
	if customer.LoyaltyPoints < points {
		return newError(KindInsufficientPoints, "insufficient points: %d available, %d requested", customer.LoyaltyPoints, points)
	}

	balance := customer.LoyaltyPoints - points
	if err := s.customerRepo.SetLoyaltyPoints(ctx, tx, customer.ID, balance); err != nil {
		return fmt.Errorf("update loyalty balance: %w", err)
	}

	err = s.loyaltyRepo.Create(ctx, tx, &model.LoyaltyTransaction{
		ID:           uuid.NewString(),
		CustomerID:   customer.ID,
		OrderID:      &order.ID,
		Type:         model.LoyaltyRedeemed,
		Points:       -points,
		Description:  fmt.Sprintf("Redeemed on order %s", order.OrderNumber),
		BalanceAfter: balance,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("store redemption entry: %w", err)
	}

	return nil
}

func (s *loyaltyServiceImpl) Award(ctx context.Context, tx *gorm.DB, settings *model.LoyaltySettings, order *model.Order, amount decimal.Decimal) (int64, error) {
	if !settings.Enabled {
		return 0, nil
	}

	customer, err := s.customerRepo.FindForUpdate(ctx, tx, order.CustomerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get customer: %w", err)
	}
	if excludedFromLoyalty(settings, customer) {
		return 0, nil
	}

	multiplier := decimal.NewFromInt(1)
	if tier := TierFor(settings.Tiers, customer.LoyaltyPoints); tier != nil {
		multiplier = tier.Multiplier
	}

	points := amount.Mul(settings.PointsPerDollar).Mul(multiplier).Floor().IntPart()
	if points <= 0 {
		return 0, nil
	}

	balance := customer.LoyaltyPoints + points
	if err := s.customerRepo.SetLoyaltyPoints(ctx, tx, customer.ID, balance); err != nil {
		return 0, fmt.Errorf("update loyalty balance: %w", err)
	}

	if err := s.orderRepo.SetLoyaltyPointsEarned(ctx, tx, order.ID, points); err != nil {
		return 0, fmt.Errorf("set order points earned: %w", err)
	}

	err = s.loyaltyRepo.Create(ctx, tx, &model.LoyaltyTransaction{
		ID:           uuid.NewString(),
		CustomerID:   customer.ID,
		OrderID:      &order.ID,
		Type:         model.LoyaltyEarned,
		Points:       points,
		Description:  fmt.Sprintf("Earned on order %s", order.OrderNumber),
		BalanceAfter: balance,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return 0, fmt.Errorf("store earned entry: %w", err)
	}

	return points, nil
}

func (s *loyaltyServiceImpl) Adjust(ctx context.Context, customerID, actorID string, req *dto.LoyaltyAdjustRequest) (*model.LoyaltyTransaction, error) {
	if req.Reason == "" {
		return nil, newError(KindValidation, "reason is required")
	}

	var entry *model.LoyaltyTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := s.customerRepo.FindForUpdate(ctx, tx, customerID)
		if err != nil {
			return notFoundOr(err, "customer")
		}

		balance := customer.LoyaltyPoints + req.Points
		if balance < 0 {
			balance = 0
		}

		if err := s.customerRepo.SetLoyaltyPoints(ctx, tx, customer.ID, balance); err != nil {
			return fmt.Errorf("update loyalty balance: %w", err)
		}

		// the ledger keeps the delta actually applied so replaying it matches the balance
		entry = &model.LoyaltyTransaction{
			ID:           uuid.NewString(),
			CustomerID:   customer.ID,
			Type:         model.LoyaltyAdjustment,
			Points:       balance - customer.LoyaltyPoints,
			Description:  req.Reason,
			BalanceAfter: balance,
			AdjustedBy:   &actorID,
			CreatedAt:    time.Now().UTC(),
		}
		if err := s.loyaltyRepo.Create(ctx, tx, entry); err != nil {
			return fmt.Errorf("store adjustment entry: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *loyaltyServiceImpl) CustomerLoyalty(ctx context.Context, customerID string) (*dto.CustomerLoyaltyResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, nil, customerID)
	if err != nil {
		return nil, notFoundOr(err, "customer")
	}

	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.loyaltyRepo.ListByCustomer(ctx, customerID, recentLoyaltyEntries)
	if err != nil {
		return nil, fmt.Errorf("list loyalty entries: %w", err)
	}

	resp := &dto.CustomerLoyaltyResponse{
		CustomerID:      customer.ID,
		LoyaltyPoints:   customer.LoyaltyPoints,
		LoyaltyExcluded: excludedFromLoyalty(settings, customer),
		CurrentTier:     TierFor(settings.Tiers, customer.LoyaltyPoints),
		NextTier:        NextTier(settings.Tiers, customer.LoyaltyPoints),
		PointsValue:     decimal.NewFromInt(customer.LoyaltyPoints).Mul(settings.RedemptionRate).Round(2),
		Transactions:    entries,
	}
	if resp.NextTier != nil {
		resp.PointsToNextTier = resp.NextTier.MinPoints - customer.LoyaltyPoints
	}

	return resp, nil
}

// ExpirePoints expires credits older than points_expiry_days that later debits
// have not consumed yet, oldest first. It returns the number of customers touched.
func (s *loyaltyServiceImpl) ExpirePoints(ctx context.Context, now time.Time) (int, error) {
	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return 0, err
	}
	if settings.PointsExpiryDays <= 0 {
		return 0, nil
	}
	cutoff := now.UTC().AddDate(0, 0, -settings.PointsExpiryDays)

	customers, err := s.customerRepo.ListWithPoints(ctx)
	if err != nil {
		return 0, fmt.Errorf("list customers with points: %w", err)
	}

	expiredCount := 0
	for _, c := range customers {
		var expired int64
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			customer, err := s.customerRepo.FindForUpdate(ctx, tx, c.ID)
			if err != nil {
				return err
			}

			credited, err := s.loyaltyRepo.SumEarnedBefore(ctx, tx, customer.ID, cutoff)
			if err != nil {
				return fmt.Errorf("sum old credits: %w", err)
			}
			debited, err := s.loyaltyRepo.SumDebits(ctx, tx, customer.ID)
			if err != nil {
				return fmt.Errorf("sum debits: %w", err)
			}

			expired = credited - debited
			if expired > customer.LoyaltyPoints {
				expired = customer.LoyaltyPoints
			}
			if expired <= 0 {
				expired = 0
				return nil
			}

			balance := customer.LoyaltyPoints - expired
			if err := s.customerRepo.SetLoyaltyPoints(ctx, tx, customer.ID, balance); err != nil {
				return fmt.Errorf("update loyalty balance: %w", err)
			}

			return s.loyaltyRepo.Create(ctx, tx, &model.LoyaltyTransaction{
				ID:           uuid.NewString(),
				CustomerID:   customer.ID,
				Type:         model.LoyaltyExpired,
				Points:       -expired,
				Description:  fmt.Sprintf("Points earned before %s expired", cutoff.Format("2006-01-02")),
				BalanceAfter: balance,
				CreatedAt:    now.UTC(),
			})
		})
		if err != nil {
			log.Errorf("expire points for customer %s: %v", c.ID, err)
			continue
		}
		if expired > 0 {
			expiredCount++
		}
	}

	return expiredCount, nil
}
