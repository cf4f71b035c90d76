package service

import (
	"context"
	"dryclean-pos/internal/client"
	"dryclean-pos/internal/config"
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/model"
	"dryclean-pos/internal/repository"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubCheckoutGateway struct {
	session    *client.CheckoutSession
	status     *client.CheckoutStatus
	webhook    *client.WebhookResult
	sessionReq *client.CheckoutSessionRequest
}

func (g *stubCheckoutGateway) CreateCheckoutSession(ctx context.Context, req *client.CheckoutSessionRequest) (*client.CheckoutSession, error) {
	g.sessionReq = req
	return g.session, nil
}

func (g *stubCheckoutGateway) GetCheckoutStatus(ctx context.Context, sessionID string) (*client.CheckoutStatus, error) {
	return g.status, nil
}

func (g *stubCheckoutGateway) HandleWebhook(ctx context.Context, headers http.Header, body []byte) (*client.WebhookResult, error) {
	return g.webhook, nil
}

type stubCardCharger struct {
	transactionID string
	err           error
	charged       int
}

func (c *stubCardCharger) ChargeNonce(ctx context.Context, nonce string, amount decimal.Decimal, orderID string) (string, error) {
	c.charged++
	return c.transactionID, c.err
}

type testEnv struct {
	db *gorm.DB

	customerRepo repository.CustomerRepository
	catalogRepo  repository.CatalogRepository
	orderRepo    repository.OrderRepository
	paymentRepo  repository.PaymentRepository
	loyaltyRepo  repository.LoyaltyRepository
	userRepo     repository.UserRepository
	settingsRepo repository.SettingsRepository

	gateway *stubCheckoutGateway
	charger *stubCardCharger

	settings  LoyaltySettingsService
	business  BusinessSettingsService
	loyalty   LoyaltyService
	orders    OrderService
	payments  PaymentService
	customers CustomerService
	catalog   CatalogService
	reports   ReportService
	users     UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := client.InitDBClient(&config.Database{
		Driver: "sqlite",
		URL:    filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)

	env := &testEnv{
		db:           db,
		customerRepo: repository.NewCustomerRepository(db),
		catalogRepo:  repository.NewCatalogRepository(db),
		orderRepo:    repository.NewOrderRepository(db),
		paymentRepo:  repository.NewPaymentRepository(db),
		loyaltyRepo:  repository.NewLoyaltyRepository(db),
		userRepo:     repository.NewUserRepository(db),
		settingsRepo: repository.NewSettingsRepository(db),
		gateway: &stubCheckoutGateway{
			session: &client.CheckoutSession{SessionID: "sess_1", URL: "https://pay.example/sess_1"},
		},
		charger: &stubCardCharger{transactionID: "bt_1"},
	}

	env.settings = NewLoyaltySettingsService(env.loyaltyRepo)
	env.business = NewBusinessSettingsService(env.settingsRepo, "USD")
	env.loyalty = NewLoyaltyService(db, env.settings, env.customerRepo, env.orderRepo, env.loyaltyRepo)
	env.orders = NewOrderService(db, env.settings, env.loyalty, env.orderRepo, env.customerRepo, env.catalogRepo)
	env.payments = NewPaymentService(
		db,
		env.gateway, env.charger,
		"http://pos.local",
		env.business, env.settings, env.loyalty,
		env.orderRepo,
		env.customerRepo,
		env.paymentRepo,
		repository.NewWebhookEventRepository(db),
	)
	env.customers = NewCustomerService(env.customerRepo, env.orderRepo)
	env.catalog = NewCatalogService(env.catalogRepo)
	env.reports = NewReportService(env.orderRepo, env.customerRepo)
	env.users = NewUserService(env.userRepo, []byte("test-secret"), time.Hour)

	return env
}

func (e *testEnv) addCustomer(t *testing.T, mutate func(c *model.Customer)) *model.Customer {
	t.Helper()

	customer := &model.Customer{
		ID:                uuid.NewString(),
		Name:              "Jane Doe",
		Phone:             "555-0100",
		CustomerType:      model.CustomerRetail,
		DiscountPercent:   decimal.Zero,
		TotalSpent:        decimal.Zero,
		AverageOrderValue: decimal.Zero,
	}
	if mutate != nil {
		mutate(customer)
	}
	require.NoError(t, e.customerRepo.Create(context.Background(), customer))
	return customer
}

// addItem creates a catalog item with the given regular price in a fresh category.
func (e *testEnv) addItem(t *testing.T, name string, regular string, tiers ...model.VolumeDiscount) *model.Item {
	t.Helper()
	ctx := context.Background()

	category, err := e.catalog.CreateCategory(ctx, &dto.CategoryRequest{Name: "cat-" + name})
	require.NoError(t, err)

	price := decimal.RequireFromString(regular)
	item, err := e.catalog.CreateItem(ctx, &dto.ItemCreateRequest{
		Name:       name,
		CategoryID: category.ID,
		Prices: model.Prices{
			Regular:  price,
			Express:  price.Mul(decimal.NewFromInt(2)),
			Delicate: price.Add(decimal.NewFromInt(5)),
		},
		VolumeDiscounts: tiers,
	})
	require.NoError(t, err)
	return item
}

func (e *testEnv) createOrder(t *testing.T, customer *model.Customer, item *model.Item, quantity int) *model.Order {
	t.Helper()

	order, err := e.orders.Create(context.Background(), "staff-1", &dto.OrderCreateRequest{
		CustomerID: customer.ID,
		Items: []dto.OrderItemRequest{
			{ItemID: item.ID, Quantity: quantity},
		},
	})
	require.NoError(t, err)
	return order
}

func (e *testEnv) reloadCustomer(t *testing.T, id string) *model.Customer {
	t.Helper()
	customer, err := e.customerRepo.FindByID(context.Background(), nil, id)
	require.NoError(t, err)
	return customer
}

func (e *testEnv) ledger(t *testing.T, customerID string) []*model.LoyaltyTransaction {
	t.Helper()
	entries, err := e.loyaltyRepo.ListByCustomer(context.Background(), customerID, 0)
	require.NoError(t, err)
	return entries
}

func money(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func requireMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, money(want).Equal(got), "want %s, got %s", want, got.String())
}

func requireKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, IsKind(err, kind), "want %s, got %v", kind, err)
}
