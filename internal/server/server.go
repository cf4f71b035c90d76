package server

import (
	"context"
	"dryclean-pos/internal/handler"
	authmw "dryclean-pos/internal/middleware"
	"dryclean-pos/internal/model"
	"dryclean-pos/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

type Services struct {
	User            service.UserService
	Customer        service.CustomerService
	Catalog         service.CatalogService
	Order           service.OrderService
	Payment         service.PaymentService
	Loyalty         service.LoyaltyService
	LoyaltySettings service.LoyaltySettingsService
	Report          service.ReportService
	Settings        service.BusinessSettingsService
}

type Server struct {
	echo            *echo.Echo
	jwtSecret       []byte
	userHandler     *handler.UserHandler
	customerHandler *handler.CustomerHandler
	catalogHandler  *handler.CatalogHandler
	orderHandler    *handler.OrderHandler
	paymentHandler  *handler.PaymentHandler
	loyaltyHandler  *handler.LoyaltyHandler
	reportHandler   *handler.ReportHandler
	settingsHandler *handler.SettingsHandler
}

func NewServer(services Services, jwtSecret []byte, logger *log.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	if logger != nil {
		e.Logger = logger
	}

	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:            e,
		jwtSecret:       jwtSecret,
		userHandler:     handler.NewUserHandler(services.User),
		customerHandler: handler.NewCustomerHandler(services.Customer),
		catalogHandler:  handler.NewCatalogHandler(services.Catalog),
		orderHandler:    handler.NewOrderHandler(services.Order),
		paymentHandler:  handler.NewPaymentHandler(services.Payment),
		loyaltyHandler:  handler.NewLoyaltyHandler(services.Loyalty, services.LoyaltySettings),
		reportHandler:   handler.NewReportHandler(services.Report),
		settingsHandler: handler.NewSettingsHandler(services.Settings),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- gateway webhooks (no auth, always acked) --------
	api.POST("/webhook/paypal", s.paymentHandler.Webhook)
	api.POST("/webhook/stripe", s.paymentHandler.Webhook)

	// -------- auth --------
	api.POST("/auth/register", s.userHandler.Register, authmw.JWTAuth(s.jwtSecret, true))
	api.POST("/auth/login", s.userHandler.Login)

	authed := api.Group("", authmw.JWTAuth(s.jwtSecret, false))
	privileged := authmw.RequireRole(model.RoleAdmin, model.RoleManager)

	authed.GET("/auth/me", s.userHandler.Me)
	authed.GET("/users", s.userHandler.List, privileged)
	authed.GET("/drivers", s.userHandler.Drivers)

	// -------- catalog --------
	authed.GET("/categories", s.catalogHandler.ListCategories)
	authed.POST("/categories", s.catalogHandler.CreateCategory, privileged)
	authed.PUT("/categories/:id", s.catalogHandler.UpdateCategory, privileged)
	authed.DELETE("/categories/:id", s.catalogHandler.DeleteCategory, privileged)

	authed.GET("/items", s.catalogHandler.ListItems)
	authed.GET("/items/:id", s.catalogHandler.GetItem)
	authed.GET("/items/:id/children", s.catalogHandler.ListChildren)
	authed.POST("/items", s.catalogHandler.CreateItem, privileged)
	authed.PUT("/items/:id", s.catalogHandler.UpdateItem, privileged)
	authed.DELETE("/items/:id", s.catalogHandler.DeleteItem, privileged)

	// -------- customers --------
	authed.POST("/customers", s.customerHandler.Create)
	authed.GET("/customers", s.customerHandler.List)
	authed.GET("/customers/:id", s.customerHandler.Get)
	authed.PUT("/customers/:id", s.customerHandler.Update)
	authed.DELETE("/customers/:id", s.customerHandler.Delete, privileged)
	authed.GET("/customers/:id/stats", s.customerHandler.Stats)
	authed.GET("/customers/:id/orders", s.customerHandler.Orders)
	authed.GET("/customers/:id/loyalty", s.loyaltyHandler.CustomerLoyalty)
	authed.POST("/customers/:id/loyalty/adjust", s.loyaltyHandler.Adjust, privileged)

	// -------- orders --------
	authed.POST("/orders", s.orderHandler.Create)
	authed.POST("/orders/quote", s.orderHandler.Quote)
	authed.GET("/orders", s.orderHandler.List)
	authed.GET("/orders/by-status", s.orderHandler.ByStatus)
	authed.GET("/orders/:id", s.orderHandler.Get)
	authed.PUT("/orders/:id/status", s.orderHandler.UpdateStatus)
	authed.PUT("/orders/:id/delivery", s.orderHandler.UpdateDelivery)
	authed.GET("/orders/:id/payments", s.paymentHandler.ListByOrder)
	authed.GET("/deliveries", s.orderHandler.Deliveries)

	// -------- payments --------
	authed.POST("/payments", s.paymentHandler.Create)
	authed.GET("/payments/status/:session_id", s.paymentHandler.Status)

	// -------- loyalty --------
	authed.POST("/loyalty/calculate-redemption", s.loyaltyHandler.CalculateRedemption)
	authed.GET("/settings/loyalty", s.loyaltyHandler.GetSettings)
	authed.PUT("/settings/loyalty", s.loyaltyHandler.UpdateSettings, privileged)

	// -------- business settings --------
	authed.GET("/settings", s.settingsHandler.Get)
	authed.PUT("/settings", s.settingsHandler.Update, privileged)
	authed.PUT("/settings/country", s.settingsHandler.UpdateCountry, privileged)
	authed.PUT("/settings/tax", s.settingsHandler.UpdateTax, privileged)

	// -------- reports --------
	authed.GET("/reports/sales", s.reportHandler.Sales)
	authed.GET("/reports/dashboard", s.reportHandler.Dashboard)

	// the authed group registers catch-all routes behind JWTAuth; unknown
	// paths must stay 404 for anonymous callers
	api.RouteNotFound("", echo.NotFoundHandler)
	api.RouteNotFound("/*", echo.NotFoundHandler)
}

// Echo exposes the router, mainly for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
