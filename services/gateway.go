package services

import (
	"context"

	"github.com/shopspring/decimal"
)

// CustomerInfo identifies the paying customer on gateway requests.
type CustomerInfo struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone,omitempty"`
}

// BillingAddress is optional billing detail forwarded to the gateway.
type BillingAddress struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	Zip     string `json:"zip,omitempty"`
}

// PaymentRequest is the gateway-agnostic request accepted by the payment
// service and handed to a provider adapter.
type PaymentRequest struct {
	ApplicationID  string          `json:"applicationId"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	PaymentMethod  string          `json:"paymentMethod"`
	CustomerInfo   CustomerInfo    `json:"customerInfo"`
	BillingAddress *BillingAddress `json:"billingAddress,omitempty"`
}

// PaymentResponse is the uniform result shape returned to API clients for
// every create-payment attempt, success or failure.
type PaymentResponse struct {
	Success       bool          `json:"success"`
	PaymentID     string        `json:"paymentId"`
	TransactionID string        `json:"transactionId,omitempty"`
	RedirectURL   string        `json:"redirectUrl,omitempty"`
	Status        PaymentStatus `json:"status"`
	Message       string        `json:"message,omitempty"`
}

// GatewayResult is what a provider adapter reports back after a successful
// synchronous gateway call. RawResponse is stored verbatim on the payment
// record as the last-known provider payload.
type GatewayResult struct {
	TransactionID string
	RedirectURL   string
	RawResponse   []byte
}

// PaymentGateway adapts one external payment provider. CreatePayment
// receives the pre-generated payment token so the provider can echo it
// back on asynchronous callbacks. Implementations must not persist
// anything; the orchestrator owns the payment record.
type PaymentGateway interface {
	Name() string
	CreatePayment(ctx context.Context, token string, req PaymentRequest) (*GatewayResult, error)
}
