package service

import (
	"context"
	"dryclean-pos/internal/client"
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/model"
	"dryclean-pos/internal/repository"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"gorm.io/gorm"
)

// errAlreadySettled means another caller completed the transaction first.
var errAlreadySettled = errors.New("payment already settled")

type PaymentService interface {
	Create(ctx context.Context, actorID string, req *dto.PaymentCreateRequest) (*dto.PaymentCreateResponse, error)
	ListByOrder(ctx context.Context, orderID string) ([]*model.PaymentTransaction, error)
	CheckStatus(ctx context.Context, sessionID string) (*dto.PaymentStatusResponse, error)
	HandleWebhook(ctx context.Context, headers http.Header, body []byte) error
}

type paymentServiceImpl struct {
	db               *gorm.DB
	checkoutGateway  client.CheckoutGateway
	cardCharger      client.CardCharger
	serviceBaseUrl   string
	businessSettings BusinessSettingsService
	settingsService  LoyaltySettingsService
	loyaltyService   LoyaltyService
	orderRepo        repository.OrderRepository
	customerRepo     repository.CustomerRepository
	paymentRepo      repository.PaymentRepository
	webhookEventRepo repository.WebhookEventRepository
}

// NewPaymentService wires settlement. cardCharger may be nil, in which case
// card payments always go through the hosted checkout.
func NewPaymentService(
	db *gorm.DB,
	checkoutGateway client.CheckoutGateway,
	cardCharger client.CardCharger,
	serviceBaseUrl string,
	businessSettings BusinessSettingsService,
	settingsService LoyaltySettingsService,
	loyaltyService LoyaltyService,
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	paymentRepo repository.PaymentRepository,
	webhookEventRepo repository.WebhookEventRepository,
) PaymentService {
	return &paymentServiceImpl{
		db:               db,
		checkoutGateway:  checkoutGateway,
		cardCharger:      cardCharger,
		serviceBaseUrl:   serviceBaseUrl,
		businessSettings: businessSettings,
		settingsService:  settingsService,
		loyaltyService:   loyaltyService,
		orderRepo:        orderRepo,
		customerRepo:     customerRepo,
		paymentRepo:      paymentRepo,
		webhookEventRepo: webhookEventRepo,
	}
}

func (s *paymentServiceImpl) Create(ctx context.Context, actorID string, req *dto.PaymentCreateRequest) (*dto.PaymentCreateResponse, error) {
	if req.OrderID == "" {
		return nil, newError(KindValidation, "order_id is required")
	}
	if !req.PaymentMethod.Valid() {
		return nil, newError(KindInvalidPaymentMethod, "unknown payment method %q", req.PaymentMethod)
	}
	if req.Amount.IsNegative() {
		return nil, newError(KindValidation, "amount must not be negative")
	}

	order, err := s.orderRepo.FindByID(ctx, nil, req.OrderID)
	if err != nil {
		return nil, notFoundOr(err, "order")
	}
	if order.PaymentStatus == model.PaymentCompleted {
		return nil, newError(KindAlreadyPaid, "order %s is already paid", order.OrderNumber)
	}

	if req.PaymentMethod == model.PaymentInvoice {
		customerType := order.CustomerType
		if customer, err := s.customerRepo.FindByID(ctx, nil, order.CustomerID); err == nil {
			customerType = customer.CustomerType
		}
		if customerType != model.CustomerBusiness {
			return nil, newError(KindInvalidPaymentMethod, "invoice payment is only available to business customers")
		}
	}

	amount := req.Amount
	if amount.IsZero() {
		amount = order.Total
	}
	if amount.GreaterThan(order.Total) {
		return nil, newError(KindValidation, "amount %s exceeds the order total %s",
			amount.StringFixed(2), order.Total.StringFixed(2))
	}

	business, err := s.businessSettings.Get(ctx)
	if err != nil {
		return nil, err
	}

	payment := &model.PaymentTransaction{
		ID:            uuid.NewString(),
		OrderID:       order.ID,
		Amount:        amount,
		Currency:      business.Country.CurrencyCode,
		PaymentMethod: req.PaymentMethod,
		Status:        model.PaymentPending,
		CreatedBy:     actorID,
	}

	switch {
	case req.PaymentMethod.SettlesImmediately():
		err = s.createAndSettle(ctx, payment)
	case req.PaymentMethod == model.PaymentCard && req.PaymentNonce != nil && *req.PaymentNonce != "":
		err = s.chargeCard(ctx, payment, *req.PaymentNonce, order.OrderNumber)
	case req.PaymentMethod == model.PaymentCard:
		return s.startCheckout(ctx, payment, req.OriginURL)
	default:
		// pay_on_collection and invoice wait for a later settlement
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
				return fmt.Errorf("store payment: %w", err)
			}
			return s.orderRepo.SetPaymentMethod(ctx, tx, order.ID, payment.PaymentMethod)
		})
	}
	if err != nil {
		return nil, err
	}

	return &dto.PaymentCreateResponse{Payment: payment}, nil
}

func (s *paymentServiceImpl) createAndSettle(ctx context.Context, payment *model.PaymentTransaction) error {
	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
			return fmt.Errorf("store payment: %w", err)
		}
		return s.settle(ctx, tx, settings, payment)
	})
}

// settle completes the payment, marks the order paid and awards loyalty points.
// Only the caller that flips the transaction to completed gets past the guard.
func (s *paymentServiceImpl) settle(ctx context.Context, tx *gorm.DB, settings *model.LoyaltySettings, payment *model.PaymentTransaction) error {
	now := time.Now().UTC()

	completed, err := s.paymentRepo.MarkCompleted(ctx, tx, payment.ID, now)
	if err != nil {
		return fmt.Errorf("mark payment completed: %w", err)
	}
	if !completed {
		return errAlreadySettled
	}

	order, err := s.orderRepo.FindByID(ctx, tx, payment.OrderID)
	if err != nil {
		return notFoundOr(err, "order")
	}

	paid, err := s.orderRepo.MarkPaid(ctx, tx, order.ID, payment.PaymentMethod)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	if !paid {
		return newError(KindAlreadyPaid, "order %s is already paid", order.OrderNumber)
	}

	points, err := s.loyaltyService.Award(ctx, tx, settings, order, payment.Amount)
	if err != nil {
		return fmt.Errorf("award loyalty points: %w", err)
	}

	payment.Status = model.PaymentCompleted
	payment.CompletedAt = &now
	if points > 0 {
		log.Infof("order %s settled by %s, %d points earned", order.OrderNumber, payment.PaymentMethod, points)
	}
	return nil
}

func (s *paymentServiceImpl) chargeCard(ctx context.Context, payment *model.PaymentTransaction, nonce, orderNumber string) error {
	if s.cardCharger == nil {
		return newError(KindInvalidPaymentMethod, "card charges are not configured")
	}

	if err := s.paymentRepo.Create(ctx, nil, payment); err != nil {
		return fmt.Errorf("store payment: %w", err)
	}

	transactionID, err := s.cardCharger.ChargeNonce(ctx, nonce, payment.Amount, orderNumber)
	if err != nil {
		reason := err.Error()
		if failErr := s.paymentRepo.MarkFailed(ctx, payment.ID, reason); failErr != nil {
			log.Errorf("mark payment %s failed: %v", payment.ID, failErr)
		}
		if errors.Is(err, client.ErrCardDeclined) {
			payment.Status = model.PaymentFailed
			payment.FailureReason = &reason
			return nil
		}
		return fmt.Errorf("charge card: %w", err)
	}

	if err := s.paymentRepo.SetTransactionID(ctx, payment.ID, transactionID); err != nil {
		return fmt.Errorf("store gateway transaction id: %w", err)
	}
	payment.GatewayTransactionID = &transactionID

	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.settle(ctx, tx, settings, payment)
	})
}

func (s *paymentServiceImpl) startCheckout(ctx context.Context, payment *model.PaymentTransaction, originURL *string) (*dto.PaymentCreateResponse, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
			return fmt.Errorf("store payment: %w", err)
		}
		return s.orderRepo.SetPaymentMethod(ctx, tx, payment.OrderID, payment.PaymentMethod)
	})
	if err != nil {
		return nil, err
	}

	base := s.serviceBaseUrl
	if originURL != nil && *originURL != "" {
		base = *originURL
	}
	base = strings.TrimRight(base, "/")

	session, err := s.checkoutGateway.CreateCheckoutSession(ctx, &client.CheckoutSessionRequest{
		Amount:     payment.Amount,
		Currency:   payment.Currency,
		SuccessURL: fmt.Sprintf("%s/payment-success?order_id=%s", base, payment.OrderID),
		CancelURL:  fmt.Sprintf("%s/payment-cancelled?order_id=%s", base, payment.OrderID),
		Metadata: map[string]string{
			"order_id":   payment.OrderID,
			"payment_id": payment.ID,
		},
	})
	if err != nil {
		if failErr := s.paymentRepo.MarkFailed(ctx, payment.ID, err.Error()); failErr != nil {
			log.Errorf("mark payment %s failed: %v", payment.ID, failErr)
		}
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	if err := s.paymentRepo.AttachSession(ctx, payment.ID, session.SessionID, session.URL); err != nil {
		return nil, fmt.Errorf("store checkout session: %w", err)
	}
	payment.GatewaySessionID = &session.SessionID
	payment.CheckoutURL = &session.URL

	return &dto.PaymentCreateResponse{
		Payment:     payment,
		SessionID:   &session.SessionID,
		CheckoutURL: &session.URL,
	}, nil
}

func (s *paymentServiceImpl) ListByOrder(ctx context.Context, orderID string) ([]*model.PaymentTransaction, error) {
	payments, err := s.paymentRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

func (s *paymentServiceImpl) CheckStatus(ctx context.Context, sessionID string) (*dto.PaymentStatusResponse, error) {
	payment, err := s.paymentRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, notFoundOr(err, "payment session")
	}

	status, err := s.checkoutGateway.GetCheckoutStatus(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get checkout status: %w", err)
	}

	if status.PaymentStatus == client.CheckoutPaid && payment.Status != model.PaymentCompleted {
		if err := s.completeSession(ctx, payment, "", ""); err != nil {
			return nil, err
		}
	}

	return &dto.PaymentStatusResponse{
		Status:        status.Status,
		PaymentStatus: status.PaymentStatus,
		AmountTotal:   status.AmountTotal,
		Currency:      status.Currency,
	}, nil
}

// completeSession settles a hosted checkout payment. A repeat completion is not an error.
// When eventID is set the webhook event is recorded in the same transaction.
func (s *paymentServiceImpl) completeSession(ctx context.Context, payment *model.PaymentTransaction, eventID, eventType string) error {
	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if eventID != "" {
			if err := s.webhookEventRepo.MarkProcessed(ctx, tx, eventID, eventType); err != nil {
				return fmt.Errorf("record webhook event: %w", err)
			}
		}
		return s.settle(ctx, tx, settings, payment)
	})
	if errors.Is(err, errAlreadySettled) {
		return nil
	}
	return err
}

func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, headers http.Header, body []byte) error {
	result, err := s.checkoutGateway.HandleWebhook(ctx, headers, body)
	if err != nil {
		return fmt.Errorf("handle gateway webhook: %w", err)
	}

	if result.EventID != "" {
		seen, err := s.webhookEventRepo.Exists(ctx, result.EventID)
		if err != nil {
			return fmt.Errorf("check webhook event: %w", err)
		}
		if seen {
			log.Infof("webhook event %s already processed", result.EventID)
			return nil
		}
	}

	if result.PaymentStatus != client.CheckoutPaid || result.SessionID == "" {
		if result.EventID == "" {
			return nil
		}
		return s.webhookEventRepo.MarkProcessed(ctx, nil, result.EventID, result.EventType)
	}

	payment, err := s.paymentRepo.FindBySessionID(ctx, result.SessionID)
	if err != nil {
		return fmt.Errorf("find payment for session %s: %w", result.SessionID, err)
	}

	return s.completeSession(ctx, payment, result.EventID, result.EventType)
}
