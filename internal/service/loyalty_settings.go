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

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LoyaltySettingsService interface {
	Get(ctx context.Context) (*model.LoyaltySettings, error)
	Update(ctx context.Context, actorID string, req *dto.LoyaltySettingsRequest) (*model.LoyaltySettings, error)
}

type loyaltySettingsServiceImpl struct {
	loyaltyRepo repository.LoyaltyRepository
}

func NewLoyaltySettingsService(loyaltyRepo repository.LoyaltyRepository) LoyaltySettingsService {
	return &loyaltySettingsServiceImpl{
		loyaltyRepo: loyaltyRepo,
	}
}

// DefaultLoyaltySettings is what the program runs with until an admin saves settings.
func DefaultLoyaltySettings() *model.LoyaltySettings {
	return &model.LoyaltySettings{
		ID:                       model.LoyaltySettingsID,
		Enabled:                  true,
		PointsPerDollar:          decimal.NewFromInt(1),
		RedemptionRate:           decimal.RequireFromString("0.01"),
		MinRedemptionPoints:      100,
		MaxRedemptionPercent:     decimal.NewFromInt(50),
		PointsExpiryDays:         365,
		ExcludeBusinessCustomers: true,
		Tiers: []model.LoyaltyTier{
			{Name: "Bronze", MinPoints: 0, Multiplier: decimal.NewFromInt(1), Benefits: []string{"Earn 1 point per dollar"}},
			{Name: "Silver", MinPoints: 500, Multiplier: decimal.RequireFromString("1.25"), Benefits: []string{"25% bonus points"}},
			{Name: "Gold", MinPoints: 1000, Multiplier: decimal.RequireFromString("1.5"), Benefits: []string{"50% bonus points", "Priority service"}},
			{Name: "Platinum", MinPoints: 2500, Multiplier: decimal.NewFromInt(2), Benefits: []string{"Double points", "Priority service", "Free delivery"}},
		},
	}
}

func (s *loyaltySettingsServiceImpl) Get(ctx context.Context) (*model.LoyaltySettings, error) {
	settings, err := s.loyaltyRepo.GetSettings(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DefaultLoyaltySettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get loyalty settings: %w", err)
	}

	return settings, nil
}

func (s *loyaltySettingsServiceImpl) Update(ctx context.Context, actorID string, req *dto.LoyaltySettingsRequest) (*model.LoyaltySettings, error) {
	if err := validateLoyaltySettings(req); err != nil {
		return nil, err
	}

	tiers := make([]model.LoyaltyTier, len(req.Tiers))
	copy(tiers, req.Tiers)
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].MinPoints < tiers[j].MinPoints
	})

	settings := &model.LoyaltySettings{
		ID:                       model.LoyaltySettingsID,
		Enabled:                  req.Enabled,
		PointsPerDollar:          req.PointsPerDollar,
		RedemptionRate:           req.RedemptionRate,
		MinRedemptionPoints:      req.MinRedemptionPoints,
		MaxRedemptionPercent:     req.MaxRedemptionPercent,
		PointsExpiryDays:         req.PointsExpiryDays,
		ExcludeBusinessCustomers: req.ExcludeBusinessCustomers,
		Tiers:                    tiers,
		UpdatedBy:                &actorID,
		UpdatedAt:                time.Now().UTC(),
	}

	if err := s.loyaltyRepo.SaveSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("save loyalty settings: %w", err)
	}

	return settings, nil
}

func validateLoyaltySettings(req *dto.LoyaltySettingsRequest) error {
	if req.PointsPerDollar.IsNegative() {
		return newError(KindValidation, "points_per_dollar must not be negative")
	}
	if !req.RedemptionRate.IsPositive() {
		return newError(KindValidation, "redemption_rate must be positive")
	}
	if req.MinRedemptionPoints < 0 {
		return newError(KindValidation, "min_redemption_points must not be negative")
	}
	if req.MaxRedemptionPercent.IsNegative() || req.MaxRedemptionPercent.GreaterThan(hundred) {
		return newError(KindValidation, "max_redemption_percent must be between 0 and 100")
	}
	if req.PointsExpiryDays < 0 {
		return newError(KindValidation, "points_expiry_days must not be negative")
	}

	seen := make(map[int64]bool, len(req.Tiers))
	for _, tier := range req.Tiers {
		if tier.Name == "" {
			return newError(KindValidation, "tier name is required")
		}
		if tier.MinPoints < 0 {
			return newError(KindValidation, "tier %s: min_points must not be negative", tier.Name)
		}
		if !tier.Multiplier.IsPositive() {
			return newError(KindValidation, "tier %s: multiplier must be positive", tier.Name)
		}
		if seen[tier.MinPoints] {
			return newError(KindValidation, "two tiers share min_points %d", tier.MinPoints)
		}
		seen[tier.MinPoints] = true
	}

	return nil
}
