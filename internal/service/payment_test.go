package service

import (
	"context"
	"dryclean-pos/internal/client"
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/model"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) pay(t *testing.T, order *model.Order, method model.PaymentMethod) (*dto.PaymentCreateResponse, error) {
	t.Helper()
	return e.payments.Create(context.Background(), "staff-1", &dto.PaymentCreateRequest{
		OrderID:       order.ID,
		PaymentMethod: method,
	})
}

func (e *testEnv) reloadOrder(t *testing.T, id string) *model.Order {
	t.Helper()
	order, err := e.orderRepo.FindByID(context.Background(), nil, id)
	require.NoError(t, err)
	return order
}

func TestCashPaymentSettlesAndAwardsPoints(t *testing.T) {
	env := newTestEnv(t)
	customer := env.addCustomer(t, nil)
	order := env.createOrder(t, customer, env.addItem(t, "Shirt", "9.8"), 10)

	res, err := env.pay(t, order, model.PaymentCash)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, res.Payment.Status)
	assert.NotNil(t, res.Payment.CompletedAt)
	requireMoney(t, "98", res.Payment.Amount)
	assert.Nil(t, res.SessionID)

	stored := env.reloadOrder(t, order.ID)
	assert.Equal(t, model.PaymentCompleted, stored.PaymentStatus)
	require.NotNil(t, stored.PaymentMethod)
	assert.Equal(t, model.PaymentCash, *stored.PaymentMethod)
	assert.Equal(t, int64(98), stored.LoyaltyPointsEarned)

	assert.Equal(t, int64(98), env.reloadCustomer(t, customer.ID).LoyaltyPoints)
	entries := env.ledger(t, customer.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, model.LoyaltyEarned, entries[0].Type)

	_, err = env.pay(t, order, model.PaymentBankTransfer)
	requireKind(t, err, KindAlreadyPaid)
}

func TestBusinessCustomerEarnsNothingByDefault(t *testing.T) {
	env := newTestEnv(t)
	customer := env.addCustomer(t, func(c *model.Customer) { c.CustomerType = model.CustomerBusiness })
	order := env.createOrder(t, customer, env.addItem(t, "Uniform", "10"), 10)

	_, err := env.pay(t, order, model.PaymentCash)
	require.NoError(t, err)

	assert.Equal(t, model.PaymentCompleted, env.reloadOrder(t, order.ID).PaymentStatus)
	assert.Equal(t, int64(0), env.reloadCustomer(t, customer.ID).LoyaltyPoints)
	assert.Empty(t, env.ledger(t, customer.ID))
}

func TestInvoicePayment(t *testing.T) {
	env := newTestEnv(t)
	item := env.addItem(t, "Tablecloth", "15")

	retail := env.addCustomer(t, nil)
	retailOrder := env.createOrder(t, retail, item, 1)
	_, err := env.pay(t, retailOrder, model.PaymentInvoice)
	requireKind(t, err, KindInvalidPaymentMethod)

	business := env.addCustomer(t, func(c *model.Customer) {
		c.CustomerType = model.CustomerBusiness
		c.BusinessInfo = &model.BusinessInfo{CompanyName: "Hotel Central"}
	})
	businessOrder := env.createOrder(t, business, item, 4)

	res, err := env.pay(t, businessOrder, model.PaymentInvoice)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, res.Payment.Status)

	stored := env.reloadOrder(t, businessOrder.ID)
	assert.Equal(t, model.PaymentPending, stored.PaymentStatus)
	require.NotNil(t, stored.PaymentMethod)
	assert.Equal(t, model.PaymentInvoice, *stored.PaymentMethod)
}

func TestPayOnCollectionStaysPending(t *testing.T) {
	env := newTestEnv(t)
	customer := env.addCustomer(t, nil)
	order := env.createOrder(t, customer, env.addItem(t, "Shirt", "10"), 1)

	res, err := env.pay(t, order, model.PaymentPayOnCollection)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, res.Payment.Status)
	assert.Equal(t, model.PaymentPending, env.reloadOrder(t, order.ID).PaymentStatus)
	assert.Empty(t, env.ledger(t, customer.ID))

	// the order can still be settled later at the counter
	_, err = env.pay(t, order, model.PaymentCash)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, env.reloadOrder(t, order.ID).PaymentStatus)
}

func TestUnknownPaymentMethod(t *testing.T) {
	env := newTestEnv(t)
	customer := env.addCustomer(t, nil)
	order := env.createOrder(t, customer, env.addItem(t, "Shirt", "10"), 1)

	_, err := env.pay(t, order, "crypto")
	requireKind(t, err, KindInvalidPaymentMethod)

	_, err = env.payments.Create(context.Background(), "staff-1", &dto.PaymentCreateRequest{
		OrderID:       "missing",
		PaymentMethod: model.PaymentCash,
	})
	requireKind(t, err, KindNotFound)
}

func TestCardCheckoutSettlesOnceFromWebhook(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.addCustomer(t, nil)
	order := env.createOrder(t, customer, env.addItem(t, "Coat", "25"), 2)

	res, err := env.pay(t, order, model.PaymentCard)
	require.NoError(t, err)
	require.NotNil(t, res.SessionID)
	assert.Equal(t, "sess_1", *res.SessionID)
	require.NotNil(t, res.CheckoutURL)
	assert.Equal(t, "https://pay.example/sess_1", *res.CheckoutURL)
	assert.Equal(t, model.PaymentPending, res.Payment.Status)

	req := env.gateway.sessionReq
	require.NotNil(t, req)
	requireMoney(t, "50", req.Amount)
	assert.Equal(t, "USD", req.Currency)
	assert.Equal(t, "http://pos.local/payment-success?order_id="+order.ID, req.SuccessURL)
	assert.Equal(t, "http://pos.local/payment-cancelled?order_id="+order.ID, req.CancelURL)
	assert.Equal(t, order.ID, req.Metadata["order_id"])
	assert.Equal(t, res.Payment.ID, req.Metadata["payment_id"])

	env.gateway.webhook = &client.WebhookResult{
		EventID:       "evt_1",
		EventType:     "PAYMENT.CAPTURE.COMPLETED",
		SessionID:     "sess_1",
		PaymentStatus: client.CheckoutPaid,
	}
	require.NoError(t, env.payments.HandleWebhook(ctx, nil, []byte(`{}`)))
	// same event redelivered
	require.NoError(t, env.payments.HandleWebhook(ctx, nil, []byte(`{}`)))

	// a different event for the same session hits the settlement guard
	env.gateway.webhook.EventID = "evt_2"
	require.NoError(t, env.payments.HandleWebhook(ctx, nil, []byte(`{}`)))

	stored := env.reloadOrder(t, order.ID)
	assert.Equal(t, model.PaymentCompleted, stored.PaymentStatus)
	assert.Equal(t, int64(50), env.reloadCustomer(t, customer.ID).LoyaltyPoints)
	assert.Len(t, env.ledger(t, customer.ID), 1)

	payments, err := env.payments.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, model.PaymentCompleted, payments[0].Status)
}

func TestCheckStatusCompletesPaidSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.addCustomer(t, nil)
	order := env.createOrder(t, customer, env.addItem(t, "Coat", "25"), 1)

	_, err := env.pay(t, order, model.PaymentCard)
	require.NoError(t, err)

	env.gateway.status = &client.CheckoutStatus{
		Status:        "open",
		PaymentStatus: client.CheckoutUnpaid,
		AmountTotal:   money("25"),
		Currency:      "USD",
	}
	status, err := env.payments.CheckStatus(ctx, "sess_1")
	require.NoError(t, err)
	assert.Equal(t, client.CheckoutUnpaid, status.PaymentStatus)
	assert.Equal(t, model.PaymentPending, env.reloadOrder(t, order.ID).PaymentStatus)

	env.gateway.status = &client.CheckoutStatus{
		Status:        "COMPLETED",
		PaymentStatus: client.CheckoutPaid,
		AmountTotal:   money("25"),
		Currency:      "USD",
	}
	for i := 0; i < 2; i++ {
		status, err = env.payments.CheckStatus(ctx, "sess_1")
		require.NoError(t, err)
		assert.Equal(t, client.CheckoutPaid, status.PaymentStatus)
	}

	assert.Equal(t, model.PaymentCompleted, env.reloadOrder(t, order.ID).PaymentStatus)
	assert.Len(t, env.ledger(t, customer.ID), 1)

	_, err = env.payments.CheckStatus(ctx, "sess_unknown")
	requireKind(t, err, KindNotFound)
}

func TestCardNonceCharge(t *testing.T) {
	env := newTestEnv(t)
	customer := env.addCustomer(t, nil)
	item := env.addItem(t, "Gown", "40")
	nonce := "fake-valid-nonce"

	order := env.createOrder(t, customer, item, 1)
	res, err := env.payments.Create(context.Background(), "staff-1", &dto.PaymentCreateRequest{
		OrderID:       order.ID,
		PaymentMethod: model.PaymentCard,
		PaymentNonce:  &nonce,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, env.charger.charged)
	assert.Equal(t, model.PaymentCompleted, res.Payment.Status)
	require.NotNil(t, res.Payment.GatewayTransactionID)
	assert.Equal(t, "bt_1", *res.Payment.GatewayTransactionID)
	assert.Equal(t, model.PaymentCompleted, env.reloadOrder(t, order.ID).PaymentStatus)
	assert.Equal(t, int64(40), env.reloadCustomer(t, customer.ID).LoyaltyPoints)

	t.Run("declined card", func(t *testing.T) {
		env.charger.err = fmt.Errorf("%w: Do Not Honor", client.ErrCardDeclined)
		declined := env.createOrder(t, customer, item, 1)

		res, err := env.payments.Create(context.Background(), "staff-1", &dto.PaymentCreateRequest{
			OrderID:       declined.ID,
			PaymentMethod: model.PaymentCard,
			PaymentNonce:  &nonce,
		})
		require.NoError(t, err)
		assert.Equal(t, model.PaymentFailed, res.Payment.Status)
		require.NotNil(t, res.Payment.FailureReason)
		assert.Contains(t, *res.Payment.FailureReason, "Do Not Honor")

		assert.Equal(t, model.PaymentPending, env.reloadOrder(t, declined.ID).PaymentStatus)
		assert.Equal(t, int64(40), env.reloadCustomer(t, customer.ID).LoyaltyPoints)

		payments, err := env.payments.ListByOrder(context.Background(), declined.ID)
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, model.PaymentFailed, payments[0].Status)
	})
}

func TestPaymentAmountCannotExceedOrderTotal(t *testing.T) {
	env := newTestEnv(t)
	customer := env.addCustomer(t, nil)
	order := env.createOrder(t, customer, env.addItem(t, "Shirt", "10"), 1)

	_, err := env.payments.Create(context.Background(), "staff-1", &dto.PaymentCreateRequest{
		OrderID:       order.ID,
		PaymentMethod: model.PaymentCash,
		Amount:        money("1000"),
	})
	requireKind(t, err, KindValidation)

	assert.Equal(t, model.PaymentPending, env.reloadOrder(t, order.ID).PaymentStatus)
	assert.Equal(t, int64(0), env.reloadCustomer(t, customer.ID).LoyaltyPoints)
	assert.Empty(t, env.ledger(t, customer.ID))
}

func TestCheckoutUsesConfiguredCurrency(t *testing.T) {
	env := newTestEnv(t)
	customer := env.addCustomer(t, nil)
	order := env.createOrder(t, customer, env.addItem(t, "Coat", "25"), 1)

	_, err := env.business.UpdateCountry(context.Background(), "admin-1", &model.CountrySettings{
		CountryCode:  "DE",
		CountryName:  "Germany",
		CurrencyCode: "EUR",
	})
	require.NoError(t, err)

	res, err := env.pay(t, order, model.PaymentCard)
	require.NoError(t, err)
	assert.Equal(t, "EUR", res.Payment.Currency)
	require.NotNil(t, env.gateway.sessionReq)
	assert.Equal(t, "EUR", env.gateway.sessionReq.Currency)
}
