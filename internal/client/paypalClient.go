package client

import (
	"bytes"
	"context"
	"dryclean-pos/internal/config"
	"dryclean-pos/internal/model"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const (
	CheckoutPaid   = "paid"
	CheckoutUnpaid = "unpaid"
)

var ErrInvalidWebhookSignature = errors.New("invalid webhook signature")

type CheckoutSessionRequest struct {
	Amount     decimal.Decimal
	Currency   string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

type CheckoutSession struct {
	SessionID string
	URL       string
}

type CheckoutStatus struct {
	Status        string
	PaymentStatus string
	AmountTotal   decimal.Decimal
	Currency      string
}

type WebhookResult struct {
	EventID       string
	EventType     string
	SessionID     string
	PaymentStatus string
}

// CheckoutGateway is a hosted card checkout: the customer is redirected to
// URL, pays there, and the session is later reported paid by poll or webhook.
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error)
	GetCheckoutStatus(ctx context.Context, sessionID string) (*CheckoutStatus, error)
	HandleWebhook(ctx context.Context, headers http.Header, body []byte) (*WebhookResult, error)
}

type paypalClientImpl struct {
	httpClient         *http.Client
	baseApiURL         string
	paypalClientID     string
	paypalClientSecret string
	webhookID          string
}

func NewPaypalClient(paypalCfg *config.Paypal) CheckoutGateway {
	return &paypalClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:         paypalCfg.BaseApiURL,
		paypalClientID:     paypalCfg.ClientID,
		paypalClientSecret: paypalCfg.ClientSecret,
		webhookID:          paypalCfg.WebhookID,
	}
}

func (c *paypalClientImpl) getAccessToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.paypalClientID + ":" + c.paypalClientSecret),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("paypal oauth error %d: %s", resp.StatusCode, string(b))
	}

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode oauth response: %w", err)
	}

	return res.AccessToken, nil
}

// call sends an authenticated JSON request and decodes a 2xx response into out.
func (c *paypalClientImpl) call(ctx context.Context, method, path string, payload, out interface{}) error {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return fmt.Errorf("get paypal access token: %w", err)
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal req payload: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseApiURL+path, body)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paypal request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("paypal error %d: %s", resp.StatusCode, string(b))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode paypal response: %w", err)
	}
	return nil
}

func (c *paypalClientImpl) CreateCheckoutSession(ctx context.Context, sessionReq *CheckoutSessionRequest) (*CheckoutSession, error) {
	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"reference_id": sessionReq.Metadata["order_id"],
				"custom_id":    sessionReq.Metadata["payment_id"],
				"amount": map[string]string{
					"currency_code": sessionReq.Currency,
					"value":         sessionReq.Amount.StringFixed(2),
				},
			},
		},
		"application_context": map[string]string{
			"return_url": sessionReq.SuccessURL,
			"cancel_url": sessionReq.CancelURL,
		},
	}

	var result model.PaypalResult
	if err := c.call(ctx, http.MethodPost, "/v2/checkout/orders", payload, &result); err != nil {
		return nil, fmt.Errorf("create checkout order: %w", err)
	}

	return &CheckoutSession{
		SessionID: result.ID,
		URL:       _extractApproveURL(result.Links),
	}, nil
}

// GetCheckoutStatus reads the checkout order and captures it when the buyer
// has approved but funds have not been taken yet.
func (c *paypalClientImpl) GetCheckoutStatus(ctx context.Context, sessionID string) (*CheckoutStatus, error) {
	var result model.PaypalResult
	if err := c.call(ctx, http.MethodGet, "/v2/checkout/orders/"+sessionID, nil, &result); err != nil {
		return nil, fmt.Errorf("get checkout order: %w", err)
	}

	if result.Status == "APPROVED" {
		captured, err := c.captureOrder(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		result = *captured
	}

	return toCheckoutStatus(&result), nil
}

func (c *paypalClientImpl) captureOrder(ctx context.Context, orderID string) (*model.PaypalResult, error) {
	var result model.PaypalResult
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", orderID)
	if err := c.call(ctx, http.MethodPost, path, map[string]string{}, &result); err != nil {
		return nil, fmt.Errorf("capture checkout order: %w", err)
	}
	return &result, nil
}

func (c *paypalClientImpl) verifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) error {
	payload := map[string]interface{}{
		"auth_algo":         headers.Get("PAYPAL-AUTH-ALGO"),
		"cert_url":          headers.Get("PAYPAL-CERT-URL"),
		"transmission_id":   headers.Get("PAYPAL-TRANSMISSION-ID"),
		"transmission_sig":  headers.Get("PAYPAL-TRANSMISSION-SIG"),
		"transmission_time": headers.Get("PAYPAL-TRANSMISSION-TIME"),
		"webhook_id":        c.webhookID,
		"webhook_event":     json.RawMessage(body),
	}

	var res struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := c.call(ctx, http.MethodPost, "/v1/notifications/verify-webhook-signature", payload, &res); err != nil {
		return fmt.Errorf("verify webhook signature: %w", err)
	}
	if res.VerificationStatus != "SUCCESS" {
		return ErrInvalidWebhookSignature
	}
	return nil
}

func (c *paypalClientImpl) HandleWebhook(ctx context.Context, headers http.Header, body []byte) (*WebhookResult, error) {
	if err := c.verifyWebhookSignature(ctx, headers, body); err != nil {
		return nil, err
	}

	var event model.PayPalWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}

	result := &WebhookResult{
		EventID:       event.ID,
		EventType:     event.EventType,
		PaymentStatus: CheckoutUnpaid,
	}

	switch event.EventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		result.SessionID = event.Resource.SupplementaryData.RelatedIDs.OrderID
		result.PaymentStatus = CheckoutPaid
	case "CHECKOUT.ORDER.COMPLETED":
		result.SessionID = event.Resource.ID
		result.PaymentStatus = CheckoutPaid
	case "CHECKOUT.ORDER.APPROVED":
		result.SessionID = event.Resource.ID
		captured, err := c.captureOrder(ctx, event.Resource.ID)
		if err != nil {
			return nil, err
		}
		if captured.Status == "COMPLETED" {
			result.PaymentStatus = CheckoutPaid
		}
	}

	return result, nil
}

func toCheckoutStatus(result *model.PaypalResult) *CheckoutStatus {
	status := &CheckoutStatus{
		Status:        result.Status,
		PaymentStatus: CheckoutUnpaid,
	}
	if result.Status == "COMPLETED" {
		status.PaymentStatus = CheckoutPaid
	}

	if len(result.PurchaseUnits) > 0 {
		unit := result.PurchaseUnits[0]
		amount := unit.Amount
		if len(unit.Payments.Captures) > 0 {
			amount = unit.Payments.Captures[0].Amount
		}
		status.Currency = amount.Currency
		if v, err := decimal.NewFromString(amount.Value); err == nil {
			status.AmountTotal = v
		}
	}

	return status
}

func _extractApproveURL(links []model.PaypalLink) string {
	for _, link := range links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			return link.Href
		}
	}
	return ""
}
