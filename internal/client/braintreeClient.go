package client

import (
	"context"
	"dryclean-pos/internal/config"
	"errors"
	"fmt"

	"github.com/braintree-go/braintree-go"
	"github.com/shopspring/decimal"
)

var ErrCardDeclined = errors.New("card declined")

// --- INTERFACE ---

type CardCharger interface {
	// ChargeNonce charges a tokenized card from the hosted fields and settles it immediately
	ChargeNonce(ctx context.Context, nonce string, amount decimal.Decimal, orderID string) (string, error)
}

// --- IMPLEMENTATION ---

type braintreeClientImpl struct {
	gateway *braintree.Braintree
}

// NewBraintreeClient initializes the Braintree SDK gateway
func NewBraintreeClient(cfg *config.Braintree) CardCharger {
	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}

	gateway := braintree.New(
		env,
		cfg.MerchantID,
		cfg.PublicKey,
		cfg.PrivateKey,
	)

	return &braintreeClientImpl{
		gateway: gateway,
	}
}

// --- METHODS ---

func (c *braintreeClientImpl) ChargeNonce(ctx context.Context, nonce string, amount decimal.Decimal, orderID string) (string, error) {
	// Braintree expects NewDecimal(unscaled, scale): "50.00" -> NewDecimal(5000, 2)
	cents := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	btAmount := braintree.NewDecimal(cents, 2)

	req := &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             btAmount,
		PaymentMethodNonce: nonce,
		OrderId:            orderID,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true,
		},
	}

	tx, err := c.gateway.Transaction().Create(ctx, req)
	if err != nil {
		return "", fmt.Errorf("transaction creation failed: %w", err)
	}

	if tx.Status == braintree.TransactionStatusProcessorDeclined || tx.Status == braintree.TransactionStatusGatewayRejected {
		return "", fmt.Errorf("%w: %s", ErrCardDeclined, tx.ProcessorResponseText)
	}

	return tx.Id, nil
}
