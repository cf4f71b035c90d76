package service

import (
	"context"
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/model"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTierFor(t *testing.T) {
	tiers := DefaultLoyaltySettings().Tiers

	assert.Equal(t, "Bronze", TierFor(tiers, 0).Name)
	assert.Equal(t, "Bronze", TierFor(tiers, 499).Name)
	assert.Equal(t, "Silver", TierFor(tiers, 500).Name)
	assert.Equal(t, "Gold", TierFor(tiers, 1000).Name)
	assert.Equal(t, "Platinum", TierFor(tiers, 100000).Name)

	assert.Nil(t, TierFor(nil, 100))
	assert.Nil(t, TierFor([]model.LoyaltyTier{{Name: "VIP", MinPoints: 50}}, 10))
}

func TestNextTier(t *testing.T) {
	tiers := DefaultLoyaltySettings().Tiers

	assert.Equal(t, "Silver", NextTier(tiers, 0).Name)
	assert.Equal(t, "Gold", NextTier(tiers, 500).Name)
	assert.Nil(t, NextTier(tiers, 2500))
}

func TestPreviewRedemption(t *testing.T) {
	retail := func(points int64) *model.Customer {
		return &model.Customer{ID: "c1", CustomerType: model.CustomerRetail, LoyaltyPoints: points}
	}

	t.Run("within cap", func(t *testing.T) {
		res, err := PreviewRedemption(DefaultLoyaltySettings(), retail(500), 200, money("100"))
		require.NoError(t, err)

		assert.Equal(t, int64(200), res.PointsToUse)
		requireMoney(t, "2", res.DiscountValue)
		requireMoney(t, "50", res.MaxDiscountAllowed)
		assert.Equal(t, int64(500), res.AvailablePoints)
		assert.Equal(t, int64(300), res.RemainingPoints)
	})

	t.Run("cap converts back to points", func(t *testing.T) {
		res, err := PreviewRedemption(DefaultLoyaltySettings(), retail(1000), 1000, money("15"))
		require.NoError(t, err)

		requireMoney(t, "7.5", res.MaxDiscountAllowed)
		requireMoney(t, "7.5", res.DiscountValue)
		assert.Equal(t, int64(1000), res.PointsRequested)
		assert.Equal(t, int64(750), res.PointsToUse)
		assert.Equal(t, int64(250), res.RemainingPoints)
	})

	t.Run("cap is truncated to cents", func(t *testing.T) {
		res, err := PreviewRedemption(DefaultLoyaltySettings(), retail(1000), 100, money("0.05"))
		require.NoError(t, err)

		requireMoney(t, "0.02", res.MaxDiscountAllowed)
		assert.Equal(t, int64(2), res.PointsToUse)
	})

	t.Run("below minimum", func(t *testing.T) {
		_, err := PreviewRedemption(DefaultLoyaltySettings(), retail(500), 50, money("100"))
		requireKind(t, err, KindBelowMinimumRedemption)
	})

	t.Run("insufficient points", func(t *testing.T) {
		_, err := PreviewRedemption(DefaultLoyaltySettings(), retail(150), 200, money("100"))
		requireKind(t, err, KindInsufficientPoints)
	})

	t.Run("program disabled wins over other checks", func(t *testing.T) {
		settings := DefaultLoyaltySettings()
		settings.Enabled = false
		_, err := PreviewRedemption(settings, retail(0), 200, money("100"))
		requireKind(t, err, KindProgramDisabled)
	})

	t.Run("business customer excluded", func(t *testing.T) {
		customer := retail(1000)
		customer.CustomerType = model.CustomerBusiness
		_, err := PreviewRedemption(DefaultLoyaltySettings(), customer, 200, money("100"))
		requireKind(t, err, KindCustomerExcluded)
	})

	t.Run("opted out customer excluded", func(t *testing.T) {
		customer := retail(1000)
		customer.LoyaltyExcluded = true
		_, err := PreviewRedemption(DefaultLoyaltySettings(), customer, 200, money("100"))
		requireKind(t, err, KindCustomerExcluded)
	})

	t.Run("non positive request", func(t *testing.T) {
		_, err := PreviewRedemption(DefaultLoyaltySettings(), retail(1000), 0, money("100"))
		requireKind(t, err, KindValidation)
	})
}

func awardInTx(t *testing.T, env *testEnv, order *model.Order, amount string) int64 {
	t.Helper()
	ctx := context.Background()

	settings, err := env.settings.Get(ctx)
	require.NoError(t, err)

	var points int64
	err = env.db.Transaction(func(tx *gorm.DB) error {
		points, err = env.loyalty.Award(ctx, tx, settings, order, money(amount))
		return err
	})
	require.NoError(t, err)
	return points
}

func TestAwardAppliesTierMultiplier(t *testing.T) {
	env := newTestEnv(t)
	customer := env.addCustomer(t, func(c *model.Customer) { c.LoyaltyPoints = 500 })
	order := env.createOrder(t, customer, env.addItem(t, "Shirt", "10"), 10)

	// Silver starts at exactly 500 points and multiplies by 1.25
	points := awardInTx(t, env, order, "100")
	assert.Equal(t, int64(125), points)

	assert.Equal(t, int64(625), env.reloadCustomer(t, customer.ID).LoyaltyPoints)

	stored, err := env.orderRepo.FindByID(context.Background(), nil, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(125), stored.LoyaltyPointsEarned)

	entries := env.ledger(t, customer.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, model.LoyaltyEarned, entries[0].Type)
	assert.Equal(t, int64(125), entries[0].Points)
	assert.Equal(t, int64(625), entries[0].BalanceAfter)
	require.NotNil(t, entries[0].OrderID)
	assert.Equal(t, order.ID, *entries[0].OrderID)
}

func TestAwardSkipsCustomersOutsideProgram(t *testing.T) {
	env := newTestEnv(t)
	item := env.addItem(t, "Suit", "20")

	business := env.addCustomer(t, func(c *model.Customer) { c.CustomerType = model.CustomerBusiness })
	optedOut := env.addCustomer(t, func(c *model.Customer) { c.LoyaltyExcluded = true })

	for _, customer := range []*model.Customer{business, optedOut} {
		order := env.createOrder(t, customer, item, 5)
		assert.Equal(t, int64(0), awardInTx(t, env, order, "100"))
		assert.Equal(t, int64(0), env.reloadCustomer(t, customer.ID).LoyaltyPoints)
		assert.Empty(t, env.ledger(t, customer.ID))
	}
}

func TestAwardIgnoresFractionalPoints(t *testing.T) {
	env := newTestEnv(t)
	customer := env.addCustomer(t, nil)
	order := env.createOrder(t, customer, env.addItem(t, "Tie", "0.5"), 1)

	assert.Equal(t, int64(0), awardInTx(t, env, order, "0.99"))
	assert.Empty(t, env.ledger(t, customer.ID))
}

func TestAdjustClampsAtZero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.addCustomer(t, func(c *model.Customer) { c.LoyaltyPoints = 30 })

	entry, err := env.loyalty.Adjust(ctx, customer.ID, "mgr-1", &dto.LoyaltyAdjustRequest{Points: -100, Reason: "correction"})
	require.NoError(t, err)

	assert.Equal(t, model.LoyaltyAdjustment, entry.Type)
	assert.Equal(t, int64(-30), entry.Points)
	assert.Equal(t, int64(0), entry.BalanceAfter)
	require.NotNil(t, entry.AdjustedBy)
	assert.Equal(t, "mgr-1", *entry.AdjustedBy)
	assert.Equal(t, int64(0), env.reloadCustomer(t, customer.ID).LoyaltyPoints)

	_, err = env.loyalty.Adjust(ctx, customer.ID, "mgr-1", &dto.LoyaltyAdjustRequest{Points: 10})
	requireKind(t, err, KindValidation)

	_, err = env.loyalty.Adjust(ctx, "missing", "mgr-1", &dto.LoyaltyAdjustRequest{Points: 10, Reason: "x"})
	requireKind(t, err, KindNotFound)
}

func TestLedgerReplaysToBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.addCustomer(t, nil)
	item := env.addItem(t, "Coat", "10")

	first := env.createOrder(t, customer, item, 20)
	assert.Equal(t, int64(200), awardInTx(t, env, first, "200"))

	_, err := env.loyalty.Adjust(ctx, customer.ID, "mgr-1", &dto.LoyaltyAdjustRequest{Points: -1000, Reason: "reset"})
	require.NoError(t, err)
	_, err = env.loyalty.Adjust(ctx, customer.ID, "mgr-1", &dto.LoyaltyAdjustRequest{Points: 300, Reason: "goodwill"})
	require.NoError(t, err)

	_, err = env.orders.Create(ctx, "staff-1", &dto.OrderCreateRequest{
		CustomerID:            customer.ID,
		Items:                 []dto.OrderItemRequest{{ItemID: item.ID, Quantity: 10}},
		LoyaltyPointsRedeemed: 100,
	})
	require.NoError(t, err)

	balance := env.reloadCustomer(t, customer.ID).LoyaltyPoints
	assert.Equal(t, int64(200), balance)

	var sum int64
	for _, entry := range env.ledger(t, customer.ID) {
		sum += entry.Points
	}
	assert.Equal(t, balance, sum)
}

func TestCustomerLoyalty(t *testing.T) {
	env := newTestEnv(t)
	customer := env.addCustomer(t, func(c *model.Customer) { c.LoyaltyPoints = 1200 })

	res, err := env.loyalty.CustomerLoyalty(context.Background(), customer.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1200), res.LoyaltyPoints)
	assert.False(t, res.LoyaltyExcluded)
	require.NotNil(t, res.CurrentTier)
	assert.Equal(t, "Gold", res.CurrentTier.Name)
	require.NotNil(t, res.NextTier)
	assert.Equal(t, "Platinum", res.NextTier.Name)
	assert.Equal(t, int64(1300), res.PointsToNextTier)
	requireMoney(t, "12", res.PointsValue)
}

func TestCalculateRedemptionUsesStoredBalance(t *testing.T) {
	env := newTestEnv(t)
	customer := env.addCustomer(t, func(c *model.Customer) { c.LoyaltyPoints = 400 })

	res, err := env.loyalty.CalculateRedemption(context.Background(), &dto.RedemptionRequest{
		CustomerID:     customer.ID,
		PointsToRedeem: 400,
		OrderTotal:     money("6"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(300), res.PointsToUse)
	requireMoney(t, "3", res.DiscountValue)

	_, err = env.loyalty.CalculateRedemption(context.Background(), &dto.RedemptionRequest{
		CustomerID:     "missing",
		PointsToRedeem: 100,
		OrderTotal:     money("6"),
	})
	requireKind(t, err, KindNotFound)
}

func TestExpirePoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.addCustomer(t, nil)
	order := env.createOrder(t, customer, env.addItem(t, "Dress", "10"), 20)

	awardInTx(t, env, order, "200")
	_, err := env.loyalty.Adjust(ctx, customer.ID, "mgr-1", &dto.LoyaltyAdjustRequest{Points: -50, Reason: "used in store"})
	require.NoError(t, err)

	// nothing is old enough yet
	count, err := env.loyalty.ExpirePoints(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, int64(150), env.reloadCustomer(t, customer.ID).LoyaltyPoints)

	later := time.Now().UTC().AddDate(0, 0, 400)
	count, err = env.loyalty.ExpirePoints(ctx, later)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, int64(0), env.reloadCustomer(t, customer.ID).LoyaltyPoints)

	entries := env.ledger(t, customer.ID)
	var expired *model.LoyaltyTransaction
	for _, entry := range entries {
		if entry.Type == model.LoyaltyExpired {
			expired = entry
		}
	}
	require.NotNil(t, expired)
	assert.Equal(t, int64(-150), expired.Points)
	assert.Equal(t, int64(0), expired.BalanceAfter)

	// a second sweep finds the old credits already consumed
	count, err = env.loyalty.ExpirePoints(ctx, later)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestExpirePointsDisabled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	defaults := DefaultLoyaltySettings()
	_, err := env.settings.Update(ctx, "admin-1", &dto.LoyaltySettingsRequest{
		Enabled:                  true,
		PointsPerDollar:          defaults.PointsPerDollar,
		RedemptionRate:           defaults.RedemptionRate,
		MinRedemptionPoints:      defaults.MinRedemptionPoints,
		MaxRedemptionPercent:     defaults.MaxRedemptionPercent,
		PointsExpiryDays:         0,
		ExcludeBusinessCustomers: true,
		Tiers:                    defaults.Tiers,
	})
	require.NoError(t, err)

	customer := env.addCustomer(t, nil)
	order := env.createOrder(t, customer, env.addItem(t, "Scarf", "10"), 10)
	awardInTx(t, env, order, "100")

	count, err := env.loyalty.ExpirePoints(ctx, time.Now().AddDate(5, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, int64(100), env.reloadCustomer(t, customer.ID).LoyaltyPoints)
}

func TestLoyaltySettings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	settings, err := env.settings.Get(ctx)
	require.NoError(t, err)
	assert.True(t, settings.Enabled)
	assert.Len(t, settings.Tiers, 4)

	saved, err := env.settings.Update(ctx, "admin-1", &dto.LoyaltySettingsRequest{
		Enabled:              true,
		PointsPerDollar:      money("2"),
		RedemptionRate:       money("0.05"),
		MinRedemptionPoints:  10,
		MaxRedemptionPercent: money("25"),
		PointsExpiryDays:     90,
		Tiers: []model.LoyaltyTier{
			{Name: "Gold", MinPoints: 1000, Multiplier: money("1.5")},
			{Name: "Base", MinPoints: 0, Multiplier: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Base", saved.Tiers[0].Name)

	settings, err = env.settings.Get(ctx)
	require.NoError(t, err)
	requireMoney(t, "2", settings.PointsPerDollar)
	assert.False(t, settings.ExcludeBusinessCustomers)
	require.Len(t, settings.Tiers, 2)
	assert.Equal(t, "Base", settings.Tiers[0].Name)
	require.NotNil(t, settings.UpdatedBy)
	assert.Equal(t, "admin-1", *settings.UpdatedBy)

	_, err = env.settings.Update(ctx, "admin-1", &dto.LoyaltySettingsRequest{
		RedemptionRate:       money("0"),
		MaxRedemptionPercent: money("25"),
	})
	requireKind(t, err, KindValidation)

	_, err = env.settings.Update(ctx, "admin-1", &dto.LoyaltySettingsRequest{
		RedemptionRate:       money("0.01"),
		MaxRedemptionPercent: money("120"),
	})
	requireKind(t, err, KindValidation)
}
