package dto

import (
	"dryclean-pos/internal/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

// -------- auth --------

type RegisterRequest struct {
	Email    string     `json:"email"`
	Name     string     `json:"name"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        *model.User `json:"user"`
}

// Actor is the authenticated user behind a request.
type Actor struct {
	ID    string
	Email string
	Role  model.Role
}

type AuthClaims struct {
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
	jwt.RegisteredClaims
}

type DriverResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// -------- customers --------

type CustomerCreateRequest struct {
	Name                  string              `json:"name"`
	Phone                 string              `json:"phone"`
	Email                 *string             `json:"email"`
	CustomerType          model.CustomerType  `json:"customer_type"`
	DiscountPercent       decimal.Decimal     `json:"discount_percent"`
	LoyaltyExcluded       bool                `json:"loyalty_excluded"`
	IsBlacklisted         bool                `json:"is_blacklisted"`
	BlacklistReason       *string             `json:"blacklist_reason"`
	RequireAdvancePayment bool                `json:"require_advance_payment"`
	BusinessInfo          *model.BusinessInfo `json:"business_info"`
	Address               *model.Address      `json:"address"`
	Notes                 *string             `json:"notes"`
}

type CustomerUpdateRequest struct {
	Name                  Optional[string]              `json:"name"`
	Phone                 Optional[string]              `json:"phone"`
	Email                 Optional[*string]             `json:"email"`
	CustomerType          Optional[model.CustomerType]  `json:"customer_type"`
	DiscountPercent       Optional[decimal.Decimal]     `json:"discount_percent"`
	LoyaltyExcluded       Optional[bool]                `json:"loyalty_excluded"`
	IsBlacklisted         Optional[bool]                `json:"is_blacklisted"`
	BlacklistReason       Optional[*string]             `json:"blacklist_reason"`
	RequireAdvancePayment Optional[bool]                `json:"require_advance_payment"`
	BusinessInfo          Optional[*model.BusinessInfo] `json:"business_info"`
	Address               Optional[*model.Address]      `json:"address"`
	Notes                 Optional[*string]             `json:"notes"`
}

type CustomerFilter struct {
	CustomerType model.CustomerType
	Search       string
	Limit        int
}

type CustomerStats struct {
	TotalOrders       int64           `json:"total_orders"`
	ActiveOrders      int64           `json:"active_orders"`
	TotalSpent        decimal.Decimal `json:"total_spent"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	LoyaltyPoints     int64           `json:"loyalty_points"`
	TotalItemsCleaned int64           `json:"total_items_cleaned"`
	MemberSince       time.Time       `json:"member_since"`
	LastOrderDate     *time.Time      `json:"last_order_date"`
}

// -------- catalog --------

type CategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	SortOrder   int     `json:"sort_order"`
}

type ItemCreateRequest struct {
	Name            string                 `json:"name"`
	CategoryID      string                 `json:"category_id"`
	Description     *string                `json:"description"`
	Prices          model.Prices           `json:"prices"`
	ParentID        *string                `json:"parent_id"`
	VolumeDiscounts []model.VolumeDiscount `json:"volume_discounts"`
}

type ItemUpdateRequest struct {
	Name            Optional[string]                 `json:"name"`
	CategoryID      Optional[string]                 `json:"category_id"`
	Description     Optional[*string]                `json:"description"`
	Prices          Optional[model.Prices]           `json:"prices"`
	ParentID        Optional[*string]                `json:"parent_id"`
	VolumeDiscounts Optional[[]model.VolumeDiscount] `json:"volume_discounts"`
	IsActive        Optional[bool]                   `json:"is_active"`
}

type ItemFilter struct {
	CategoryID  string
	ParentsOnly bool
	ParentID    string
}

// -------- orders --------

type OrderItemRequest struct {
	ItemID                string            `json:"item_id"`
	ItemName              string            `json:"item_name"`
	Quantity              int               `json:"quantity"`
	ServiceType           model.ServiceType `json:"service_type"`
	UnitPrice             decimal.Decimal   `json:"unit_price"`
	VolumeDiscountPercent *decimal.Decimal  `json:"volume_discount_percent"`
	Pieces                *int              `json:"pieces"`
	GarmentTags           []string          `json:"garment_tags"`
	Notes                 *string           `json:"notes"`
}

type OrderCreateRequest struct {
	CustomerID            string                     `json:"customer_id"`
	Items                 []OrderItemRequest         `json:"items"`
	Tax                   decimal.Decimal            `json:"tax"`
	TaxDetails            map[string]decimal.Decimal `json:"tax_details"`
	ManualDiscount        decimal.Decimal            `json:"manual_discount"`
	LoyaltyPointsRedeemed int64                      `json:"loyalty_points_redeemed"`
	// Total is the client's own figure; when sent it must agree with the server's.
	Total          *decimal.Decimal    `json:"total"`
	Notes          *string             `json:"notes"`
	EstimatedReady *time.Time          `json:"estimated_ready"`
	DeliveryInfo   *model.DeliveryInfo `json:"delivery_info"`
}

// OrderQuote is the priced breakdown of a cart, computed without persisting anything.
type OrderQuote struct {
	Items                   []model.OrderItem `json:"items"`
	Subtotal                decimal.Decimal   `json:"subtotal"`
	Tax                     decimal.Decimal   `json:"tax"`
	CustomerDiscountPercent decimal.Decimal   `json:"customer_discount_percent"`
	CustomerDiscountAmount  decimal.Decimal   `json:"customer_discount_amount"`
	VolumeDiscountAmount    decimal.Decimal   `json:"volume_discount_amount"`
	ManualDiscount          decimal.Decimal   `json:"manual_discount"`
	LoyaltyDiscountAmount   decimal.Decimal   `json:"loyalty_discount_amount"`
	LoyaltyPointsRedeemed   int64             `json:"loyalty_points_redeemed"`
	Total                   decimal.Decimal   `json:"total"`
}

type DeliveryUpdateRequest struct {
	DeliveryInfo *model.DeliveryInfo `json:"delivery_info"`
}

type OrderStatusUpdateRequest struct {
	Status model.OrderStatus `json:"status"`
	Notes  *string           `json:"notes"`
}

type OrderFilter struct {
	Status        model.OrderStatus
	PaymentStatus model.PaymentStatus
	CustomerID    string
	HasDelivery   *bool
	DateFrom      *time.Time
	DateTo        *time.Time
	Limit         int
}

type OrdersByStatus struct {
	Cleaning []*model.Order `json:"cleaning"`
	Ready    []*model.Order `json:"ready"`
}

type DeliveryFilter struct {
	Date     string
	Type     model.DeliveryType
	DriverID string
}

type DeliveryResponse struct {
	OrderID       string              `json:"order_id"`
	OrderNumber   string              `json:"order_number"`
	CustomerName  string              `json:"customer_name"`
	CustomerPhone string              `json:"customer_phone"`
	Status        model.OrderStatus   `json:"status"`
	DeliveryInfo  *model.DeliveryInfo `json:"delivery_info"`
	Total         decimal.Decimal     `json:"total"`
	CreatedAt     time.Time           `json:"created_at"`
}

// -------- payments --------

type PaymentCreateRequest struct {
	OrderID       string              `json:"order_id"`
	Amount        decimal.Decimal     `json:"amount"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	OriginURL     *string             `json:"origin_url"`
	// PaymentNonce is a tokenized card from the hosted fields; when set the card is charged directly.
	PaymentNonce *string `json:"payment_nonce"`
}

type PaymentCreateResponse struct {
	Payment     *model.PaymentTransaction `json:"payment"`
	SessionID   *string                   `json:"session_id,omitempty"`
	CheckoutURL *string                   `json:"checkout_url,omitempty"`
}

type PaymentStatusResponse struct {
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	AmountTotal   decimal.Decimal `json:"amount_total"`
	Currency      string          `json:"currency"`
}

type WebhookAck struct {
	Received bool `json:"received"`
}

// -------- loyalty --------

type LoyaltyAdjustRequest struct {
	Points int64  `json:"points"`
	Reason string `json:"reason"`
}

type RedemptionRequest struct {
	CustomerID     string          `json:"customer_id"`
	PointsToRedeem int64           `json:"points_to_redeem"`
	OrderTotal     decimal.Decimal `json:"order_total"`
}

type RedemptionResponse struct {
	PointsRequested    int64           `json:"points_requested"`
	PointsToUse        int64           `json:"points_to_use"`
	DiscountValue      decimal.Decimal `json:"discount_value"`
	MaxDiscountAllowed decimal.Decimal `json:"max_discount_allowed"`
	AvailablePoints    int64           `json:"available_points"`
	RemainingPoints    int64           `json:"remaining_points"`
}

type CustomerLoyaltyResponse struct {
	CustomerID       string                      `json:"customer_id"`
	LoyaltyPoints    int64                       `json:"loyalty_points"`
	LoyaltyExcluded  bool                        `json:"loyalty_excluded"`
	CurrentTier      *model.LoyaltyTier          `json:"current_tier"`
	NextTier         *model.LoyaltyTier          `json:"next_tier"`
	PointsToNextTier int64                       `json:"points_to_next_tier"`
	PointsValue      decimal.Decimal             `json:"points_value"`
	Transactions     []*model.LoyaltyTransaction `json:"transactions"`
}

type LoyaltySettingsRequest struct {
	Enabled                  bool                `json:"enabled"`
	PointsPerDollar          decimal.Decimal     `json:"points_per_dollar"`
	RedemptionRate           decimal.Decimal     `json:"redemption_rate"`
	MinRedemptionPoints      int64               `json:"min_redemption_points"`
	MaxRedemptionPercent     decimal.Decimal     `json:"max_redemption_percent"`
	PointsExpiryDays         int                 `json:"points_expiry_days"`
	ExcludeBusinessCustomers bool                `json:"exclude_business_customers"`
	Tiers                    []model.LoyaltyTier `json:"tiers"`
}

// -------- business settings --------

type BusinessSettingsRequest struct {
	BusinessName        string                 `json:"business_name"`
	Address             *string                `json:"address"`
	Phone               *string                `json:"phone"`
	Email               *string                `json:"email"`
	Country             *model.CountrySettings `json:"country"`
	Tax                 *model.TaxSettings     `json:"tax"`
	AutoPrintReceipt    bool                   `json:"auto_print_receipt"`
	AutoPrintLabels     bool                   `json:"auto_print_labels"`
	OpenDrawerOnPayment bool                   `json:"open_drawer_on_payment"`
}

// -------- reports --------

type TopItem struct {
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type DailySales struct {
	Date   string          `json:"date"`
	Sales  decimal.Decimal `json:"sales"`
	Orders int64           `json:"orders"`
}

type SalesReport struct {
	TotalSales        decimal.Decimal                         `json:"total_sales"`
	TotalOrders       int64                                   `json:"total_orders"`
	AverageOrderValue decimal.Decimal                         `json:"average_order_value"`
	PaymentBreakdown  map[model.PaymentMethod]decimal.Decimal `json:"payment_breakdown"`
	TopItems          []TopItem                               `json:"top_items"`
	DailySales        []DailySales                            `json:"daily_sales"`
}

type Dashboard struct {
	TodayRevenue   decimal.Decimal `json:"today_revenue"`
	TodayOrders    int64           `json:"today_orders"`
	CleaningOrders int64           `json:"cleaning_orders"`
	ReadyOrders    int64           `json:"ready_orders"`
	DeliveryOrders int64           `json:"delivery_orders"`
	TotalCustomers int64           `json:"total_customers"`
	RecentOrders   []*model.Order  `json:"recent_orders"`
}
