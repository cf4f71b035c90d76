package model

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff:
		return true
	}
	return false
}

// Privileged reports whether the role may change catalog, settings and loyalty balances.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleManager
}

type CustomerType string

const (
	CustomerRetail   CustomerType = "retail"
	CustomerBusiness CustomerType = "business"
)

func (t CustomerType) Valid() bool {
	return t == CustomerRetail || t == CustomerBusiness
}

type ServiceType string

const (
	ServiceRegular  ServiceType = "regular"
	ServiceExpress  ServiceType = "express"
	ServiceDelicate ServiceType = "delicate"
)

func (s ServiceType) Valid() bool {
	switch s {
	case ServiceRegular, ServiceExpress, ServiceDelicate:
		return true
	}
	return false
}

// OrderStatus is the lifecycle of an order on the shop floor:
// cleaning -> ready -> collected | delivered, with cancelled reachable
// from any non-terminal state.
type OrderStatus string

const (
	OrderCleaning  OrderStatus = "cleaning"
	OrderReady     OrderStatus = "ready"
	OrderCollected OrderStatus = "collected"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderCleaning: {OrderReady, OrderCancelled},
	OrderReady:    {OrderCollected, OrderDelivered, OrderCancelled},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderCleaning, OrderReady, OrderCollected, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderCollected || s == OrderDelivered || s == OrderCancelled
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ActiveOrderStatuses are the statuses of orders still in the shop.
var ActiveOrderStatuses = []OrderStatus{OrderCleaning, OrderReady}

type PaymentMethod string

const (
	PaymentCash            PaymentMethod = "cash"
	PaymentCard            PaymentMethod = "card"
	PaymentBankTransfer    PaymentMethod = "bank_transfer"
	PaymentPayOnCollection PaymentMethod = "pay_on_collection"
	PaymentInvoice         PaymentMethod = "invoice"
)

// PaymentMethods lists every accepted method in reporting order.
var PaymentMethods = []PaymentMethod{
	PaymentCash,
	PaymentCard,
	PaymentBankTransfer,
	PaymentPayOnCollection,
	PaymentInvoice,
}

func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// SettlesImmediately is true for methods where money changes hands at the counter.
func (m PaymentMethod) SettlesImmediately() bool {
	return m == PaymentCash || m == PaymentBankTransfer
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type LoyaltyTransactionType string

const (
	LoyaltyEarned     LoyaltyTransactionType = "earned"
	LoyaltyRedeemed   LoyaltyTransactionType = "redeemed"
	LoyaltyExpired    LoyaltyTransactionType = "expired"
	LoyaltyAdjustment LoyaltyTransactionType = "adjustment"
)

type DeliveryType string

const (
	DeliveryPickup   DeliveryType = "pickup"
	DeliveryDelivery DeliveryType = "delivery"
	DeliveryBoth     DeliveryType = "both"
)

func (t DeliveryType) Valid() bool {
	switch t {
	case DeliveryPickup, DeliveryDelivery, DeliveryBoth:
		return true
	}
	return false
}
