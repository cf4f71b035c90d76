package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:64;not null" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Role         Role      `gorm:"size:16;not null" json:"role"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Address struct {
	Street     string  `json:"street"`
	City       string  `json:"city"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
	Notes      *string `json:"notes,omitempty"`
}

type BusinessInfo struct {
	CompanyName string  `json:"company_name"`
	VATNumber   *string `json:"vat_number,omitempty"`
	ContactName *string `json:"contact_name,omitempty"`
}

type Customer struct {
	ID                    string          `gorm:"primaryKey;size:64;not null" json:"id"`
	Name                  string          `gorm:"size:255;not null" json:"name"`
	Phone                 string          `gorm:"size:32;index;not null" json:"phone"`
	Email                 *string         `gorm:"size:255" json:"email"`
	CustomerType          CustomerType    `gorm:"size:16;index;not null" json:"customer_type"`
	DiscountPercent       decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"discount_percent"`
	LoyaltyPoints         int64           `gorm:"not null" json:"loyalty_points"`
	LoyaltyExcluded       bool            `gorm:"not null" json:"loyalty_excluded"`
	IsBlacklisted         bool            `gorm:"not null" json:"is_blacklisted"`
	BlacklistReason       *string         `gorm:"size:255" json:"blacklist_reason"`
	RequireAdvancePayment bool            `gorm:"not null" json:"require_advance_payment"`
	BusinessInfo          *BusinessInfo   `gorm:"serializer:json" json:"business_info"`
	Address               *Address        `gorm:"serializer:json" json:"address"`
	Notes                 *string         `gorm:"type:text" json:"notes"`

	// maintained by order creation only
	TotalOrders       int64           `gorm:"not null" json:"total_orders"`
	TotalSpent        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_spent"`
	AverageOrderValue decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"average_order_value"`
	LastOrderDate     *time.Time      `json:"last_order_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Customer) IsBusiness() bool {
	return c.CustomerType == CustomerBusiness
}

type Category struct {
	ID          string    `gorm:"primaryKey;size:64;not null" json:"id"`
	Name        string    `gorm:"size:128;uniqueIndex;not null" json:"name"`
	Description *string   `gorm:"size:255" json:"description"`
	SortOrder   int       `gorm:"not null" json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
}

type Prices struct {
	Regular  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"regular"`
	Express  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"express"`
	Delicate decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"delicate"`
}

func (p Prices) For(service ServiceType) decimal.Decimal {
	switch service {
	case ServiceExpress:
		return p.Express
	case ServiceDelicate:
		return p.Delicate
	default:
		return p.Regular
	}
}

type VolumeDiscount struct {
	MinQuantity     int             `json:"min_quantity"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

type Item struct {
	ID              string           `gorm:"primaryKey;size:64;not null" json:"id"`
	Name            string           `gorm:"size:255;not null" json:"name"`
	CategoryID      string           `gorm:"size:64;index;not null" json:"category_id"`
	Description     *string          `gorm:"size:255" json:"description"`
	Prices          Prices           `gorm:"embedded;embeddedPrefix:price_" json:"prices"`
	ParentID        *string          `gorm:"size:64;index" json:"parent_id"`
	VolumeDiscounts []VolumeDiscount `gorm:"serializer:json" json:"volume_discounts"`
	IsActive        bool             `gorm:"not null" json:"is_active"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type DeliveryInfo struct {
	Type             DeliveryType    `json:"type"`
	PickupAddress    *Address        `json:"pickup_address,omitempty"`
	DeliveryAddress  *Address        `json:"delivery_address,omitempty"`
	PickupDate       *string         `json:"pickup_date,omitempty"`
	PickupTimeSlot   *string         `json:"pickup_time_slot,omitempty"`
	DeliveryDate     *string         `json:"delivery_date,omitempty"`
	DeliveryTimeSlot *string         `json:"delivery_time_slot,omitempty"`
	DriverID         *string         `json:"driver_id,omitempty"`
	DriverName       *string         `json:"driver_name,omitempty"`
	DeliveryNotes    *string         `json:"delivery_notes,omitempty"`
	DeliveryFee      decimal.Decimal `json:"delivery_fee"`
}

// OrderTimestamps keeps one slot per status an order has reached.
// Slots are only ever filled, never cleared.
type OrderTimestamps struct {
	CreatedAt   time.Time  `gorm:"index;not null" json:"created_at"`
	ReadyAt     *time.Time `json:"ready_at"`
	CollectedAt *time.Time `json:"collected_at"`
	DeliveredAt *time.Time `json:"delivered_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
}

func (t *OrderTimestamps) Stamp(status OrderStatus, at time.Time) {
	switch status {
	case OrderReady:
		t.ReadyAt = &at
	case OrderCollected:
		t.CollectedAt = &at
	case OrderDelivered:
		t.DeliveredAt = &at
	case OrderCancelled:
		t.CancelledAt = &at
	}
}

// Column returns the column holding the timestamp for status, or "" for the initial state.
func (t OrderTimestamps) Column(status OrderStatus) string {
	switch status {
	case OrderReady:
		return "ready_at"
	case OrderCollected:
		return "collected_at"
	case OrderDelivered:
		return "delivered_at"
	case OrderCancelled:
		return "cancelled_at"
	}
	return ""
}

type Order struct {
	ID          string `gorm:"primaryKey;size:64;not null" json:"id"`
	OrderNumber string `gorm:"size:32;uniqueIndex;not null" json:"order_number"`

	// customer snapshot taken at creation
	CustomerID    string       `gorm:"size:64;index;not null" json:"customer_id"`
	CustomerName  string       `gorm:"size:255;not null" json:"customer_name"`
	CustomerPhone string       `gorm:"size:32;not null" json:"customer_phone"`
	CustomerType  CustomerType `gorm:"size:16;not null" json:"customer_type"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	Subtotal                decimal.Decimal            `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Tax                     decimal.Decimal            `gorm:"type:decimal(12,2);not null" json:"tax"`
	TaxDetails              map[string]decimal.Decimal `gorm:"serializer:json" json:"tax_details"`
	CustomerDiscountPercent decimal.Decimal            `gorm:"type:decimal(5,2);not null" json:"customer_discount_percent"`
	CustomerDiscountAmount  decimal.Decimal            `gorm:"type:decimal(12,2);not null" json:"customer_discount_amount"`
	VolumeDiscountAmount    decimal.Decimal            `gorm:"type:decimal(12,2);not null" json:"volume_discount_amount"`
	ManualDiscount          decimal.Decimal            `gorm:"type:decimal(12,2);not null" json:"manual_discount"`
	LoyaltyDiscountAmount   decimal.Decimal            `gorm:"type:decimal(12,2);not null" json:"loyalty_discount_amount"`
	Total                   decimal.Decimal            `gorm:"type:decimal(12,2);not null" json:"total"`

	Notes          *string       `gorm:"type:text" json:"notes"`
	EstimatedReady *time.Time    `json:"estimated_ready"`
	HasDelivery    bool          `gorm:"index;not null" json:"has_delivery"`
	DeliveryInfo   *DeliveryInfo `gorm:"serializer:json" json:"delivery_info"`

	Status        OrderStatus     `gorm:"size:32;index;not null" json:"status"`
	PaymentStatus PaymentStatus   `gorm:"size:32;index;not null" json:"payment_status"`
	PaymentMethod *PaymentMethod  `gorm:"size:32" json:"payment_method"`
	Timestamps    OrderTimestamps `gorm:"embedded" json:"timestamps"`

	LoyaltyPointsRedeemed int64 `gorm:"not null" json:"loyalty_points_redeemed"`
	LoyaltyPointsEarned   int64 `gorm:"not null" json:"loyalty_points_earned"`

	CreatedBy string    `gorm:"size:64" json:"created_by"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderItem struct {
	ID                    uint            `gorm:"primaryKey" json:"-"`
	OrderID               string          `gorm:"size:64;index;not null" json:"-"`
	ItemID                string          `gorm:"size:64;index;not null" json:"item_id"`
	ItemName              string          `gorm:"size:255;not null" json:"item_name"`
	Quantity              int             `gorm:"not null" json:"quantity"`
	ServiceType           ServiceType     `gorm:"size:16;not null" json:"service_type"`
	UnitPrice             decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	VolumeDiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"volume_discount_percent"`
	DiscountApplied       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount_applied"`
	Pieces                *int            `json:"pieces"`
	GarmentTags           []string        `gorm:"serializer:json" json:"garment_tags"`
	Notes                 *string         `gorm:"size:255" json:"notes"`
}

type PaymentTransaction struct {
	ID                   string          `gorm:"primaryKey;size:64;not null" json:"id"`
	OrderID              string          `gorm:"size:64;index;not null" json:"order_id"`
	Amount               decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency             string          `gorm:"size:8;not null" json:"currency"`
	PaymentMethod        PaymentMethod   `gorm:"size:32;not null" json:"payment_method"`
	Status               PaymentStatus   `gorm:"size:32;index;not null" json:"status"`
	GatewaySessionID     *string         `gorm:"size:128;uniqueIndex" json:"gateway_session_id"`
	CheckoutURL          *string         `gorm:"size:512" json:"checkout_url"`
	GatewayTransactionID *string         `gorm:"size:128" json:"gateway_transaction_id"`
	FailureReason        *string         `gorm:"size:255" json:"failure_reason,omitempty"`
	CreatedBy            string          `gorm:"size:64" json:"created_by"`
	CompletedAt          *time.Time      `json:"completed_at"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// LoyaltyTransaction is an append-only ledger entry. Summing Points per customer
// in CreatedAt order reproduces the customer's balance.
type LoyaltyTransaction struct {
	ID           string                 `gorm:"primaryKey;size:64;not null" json:"id"`
	CustomerID   string                 `gorm:"size:64;index;not null" json:"customer_id"`
	OrderID      *string                `gorm:"size:64;index" json:"order_id"`
	Type         LoyaltyTransactionType `gorm:"size:16;index;not null" json:"type"`
	Points       int64                  `gorm:"not null" json:"points"`
	Description  string                 `gorm:"size:255" json:"description"`
	BalanceAfter int64                  `gorm:"not null" json:"balance_after"`
	AdjustedBy   *string                `gorm:"size:64" json:"adjusted_by,omitempty"`
	CreatedAt    time.Time              `gorm:"index" json:"created_at"`
}

type LoyaltyTier struct {
	Name       string          `json:"name"`
	MinPoints  int64           `json:"min_points"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Benefits   []string        `json:"benefits"`
}

// LoyaltySettingsID is the key of the single loyalty settings row.
const LoyaltySettingsID = "loyalty"

type LoyaltySettings struct {
	ID                       string          `gorm:"primaryKey;size:32;not null" json:"-"`
	Enabled                  bool            `gorm:"not null" json:"enabled"`
	PointsPerDollar          decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"points_per_dollar"`
	RedemptionRate           decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"redemption_rate"`
	MinRedemptionPoints      int64           `gorm:"not null" json:"min_redemption_points"`
	MaxRedemptionPercent     decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"max_redemption_percent"`
	PointsExpiryDays         int             `gorm:"not null" json:"points_expiry_days"`
	ExcludeBusinessCustomers bool            `gorm:"not null" json:"exclude_business_customers"`
	Tiers                    []LoyaltyTier   `gorm:"serializer:json" json:"tiers"`
	UpdatedBy                *string         `gorm:"size:64" json:"updated_by,omitempty"`
	UpdatedAt                time.Time       `json:"updated_at"`
}

// BusinessSettingsID is the key of the single business settings row.
const BusinessSettingsID = "business"

type CountrySettings struct {
	CountryCode    string  `json:"country_code"`
	CountryName    string  `json:"country_name"`
	CurrencyCode   string  `json:"currency_code"`
	CurrencySymbol string  `json:"currency_symbol"`
	DateFormat     string  `json:"date_format"`
	PhoneFormat    *string `json:"phone_format,omitempty"`
}

type AdditionalTax struct {
	Name string          `json:"name"`
	Rate decimal.Decimal `json:"rate"`
}

type TaxSettings struct {
	TaxName         string          `json:"tax_name"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	TaxNumber       *string         `json:"tax_number,omitempty"`
	IsInclusive     bool            `json:"is_inclusive"`
	AdditionalTaxes []AdditionalTax `json:"additional_taxes,omitempty"`
}

type BusinessSettings struct {
	ID                  string          `gorm:"primaryKey;size:32;not null" json:"-"`
	BusinessName        string          `gorm:"size:255;not null" json:"business_name"`
	Address             *string         `gorm:"size:512" json:"address,omitempty"`
	Phone               *string         `gorm:"size:64" json:"phone,omitempty"`
	Email               *string         `gorm:"size:255" json:"email,omitempty"`
	Country             CountrySettings `gorm:"serializer:json" json:"country"`
	Tax                 TaxSettings     `gorm:"serializer:json" json:"tax"`
	AutoPrintReceipt    bool            `gorm:"not null" json:"auto_print_receipt"`
	AutoPrintLabels     bool            `gorm:"not null" json:"auto_print_labels"`
	OpenDrawerOnPayment bool            `gorm:"not null" json:"open_drawer_on_payment"`
	UpdatedBy           *string         `gorm:"size:64" json:"updated_by,omitempty"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;uniqueIndex;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
