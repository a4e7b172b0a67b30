package models

import "time"

// Receipt records that a receipt document was issued for a completed payment.
type Receipt struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	PaymentID     string    `json:"payment_id" gorm:"size:36;index"`
	ReceiptNumber string    `json:"receipt_number" gorm:"size:64;uniqueIndex"`
	IssuedBy      *uint     `json:"issued_by"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Receipt) TableName() string {
	return "receipts"
}
