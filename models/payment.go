package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment represents one payment attempt against a service application.
// The ID doubles as the payment token handed to the gateway and echoed
// back in its callback; it is generated exactly once at creation.
type Payment struct {
	ID            string          `json:"id" gorm:"primaryKey;size:36"`
	ApplicationID string          `json:"application_id" gorm:"size:64;index"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(12,2)"`
	Currency      string          `json:"currency" gorm:"size:3"`
	PaymentMethod string          `json:"payment_method" gorm:"size:16"` // paytabs, stripe, paypal
	Status        string          `json:"status" gorm:"size:16;default:'pending'"`
	TransactionID string          `json:"transaction_id" gorm:"size:64;index"` // provider tran_ref
	PaymentData   string          `json:"payment_data" gorm:"type:text"`       // last raw provider response
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}
