package model

type PaypalLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type Amount struct {
	Currency string `json:"currency_code"`
	Value    string `json:"value"`
}

type Capture struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	CreateTime string `json:"create_time"`
	Final      bool   `json:"final_capture"`
	Amount     Amount `json:"amount"`
	CustomID   string `json:"custom_id"`
}

type Payments struct {
	Captures []Capture `json:"captures"`
}

type PurchaseUnit struct {
	ReferenceID string   `json:"reference_id"`
	CustomID    string   `json:"custom_id"`
	Amount      Amount   `json:"amount"`
	Payments    Payments `json:"payments"`
}

type RelatedIDs struct {
	OrderID string `json:"order_id"`
}

type SupplementaryData struct {
	RelatedIDs RelatedIDs `json:"related_ids"`
}

// PaypalResult is the checkout order returned by create, get and capture calls.
type PaypalResult struct {
	ID            string         `json:"id"`
	Links         []PaypalLink   `json:"links"`
	Status        string         `json:"status"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units"`
}

type PaypalResource struct {
	ID                string            `json:"id"`
	Status            string            `json:"status"`
	CustomID          string            `json:"custom_id"`
	Amount            Amount            `json:"amount"`
	PurchaseUnits     []PurchaseUnit    `json:"purchase_units"`
	SupplementaryData SupplementaryData `json:"supplementary_data"`
}

type PayPalWebhookEvent struct {
	ID         string         `json:"id"`
	EventType  string         `json:"event_type"`
	CreateTime string         `json:"create_time"`
	Resource   PaypalResource `json:"resource"`
}
