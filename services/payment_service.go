package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alsafartravel/travel-services/models"
	"github.com/alsafartravel/travel-services/utils"
)

var ErrPaymentNotFound = errors.New("payment not found")

// PaymentService is the single entry point for payment operations. It hides
// which provider adapter handles a given method and owns the payment record.
type PaymentService struct {
	db       *gorm.DB
	gateways map[string]PaymentGateway
}

func NewPaymentService(db *gorm.DB, gateways ...PaymentGateway) *PaymentService {
	s := &PaymentService{
		db:       db,
		gateways: make(map[string]PaymentGateway),
	}
	for _, gw := range gateways {
		s.gateways[gw.Name()] = gw
	}
	return s
}

// RegisterGateway adds a provider adapter under its method name.
func (s *PaymentService) RegisterGateway(gw PaymentGateway) {
	s.gateways[gw.Name()] = gw
}

func (s *PaymentService) Supports(method string) bool {
	_, ok := s.gateways[method]
	return ok
}

// ProcessPayment dispatches the request to the matching adapter and, on a
// successful gateway call, persists exactly one pending payment record whose
// ID is the token the gateway will echo back. Nothing is persisted when the
// gateway call fails.
func (s *PaymentService) ProcessPayment(ctx context.Context, req PaymentRequest) *PaymentResponse {
	if req.Currency == "" {
		req.Currency = "AED"
	}

	gateway, ok := s.gateways[req.PaymentMethod]
	if !ok {
		return &PaymentResponse{
			Success: false,
			Status:  PaymentStatusFailed,
			Message: "Unsupported payment method",
		}
	}

	token := uuid.New().String()

	result, err := gateway.CreatePayment(ctx, token, req)
	if err != nil {
		utils.ErrorLogger.Printf("Gateway %s rejected payment for application %s: %v",
			gateway.Name(), req.ApplicationID, err)
		return &PaymentResponse{
			Success: false,
			Status:  PaymentStatusFailed,
			Message: "Payment processing failed",
		}
	}

	payment := models.Payment{
		ID:            token,
		ApplicationID: req.ApplicationID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
		Status:        string(PaymentStatusPending),
		TransactionID: result.TransactionID,
		PaymentData:   string(result.RawResponse),
	}

	if err := s.db.WithContext(ctx).Create(&payment).Error; err != nil {
		// The gateway order exists but the local record does not; log the
		// transaction reference so the orphan can be traced.
		utils.ErrorLogger.Printf("Failed to persist payment %s (gateway ref %s): %v",
			token, result.TransactionID, err)
		return &PaymentResponse{
			Success: false,
			Status:  PaymentStatusFailed,
			Message: "Payment processing failed",
		}
	}

	utils.InfoLogger.Printf("Created payment %s via %s for application %s, amount %s %s",
		payment.ID, payment.PaymentMethod, payment.ApplicationID,
		payment.Amount.StringFixed(2), payment.Currency)

	return &PaymentResponse{
		Success:       true,
		PaymentID:     payment.ID,
		TransactionID: payment.TransactionID,
		RedirectURL:   result.RedirectURL,
		Status:        PaymentStatusPending,
		Message:       "Payment created successfully",
	}
}

// PaymentDetail is the payment record reshaped for client consumption.
type PaymentDetail struct {
	PaymentID     string        `json:"paymentId"`
	ApplicationID string        `json:"applicationId"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency"`
	PaymentMethod string        `json:"paymentMethod"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transactionId,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func (s *PaymentService) GetPaymentStatus(paymentID string) (*PaymentDetail, error) {
	var payment models.Payment
	if err := s.db.First(&payment, "id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}

	return &PaymentDetail{
		PaymentID:     payment.ID,
		ApplicationID: payment.ApplicationID,
		Amount:        payment.Amount.InexactFloat64(),
		Currency:      payment.Currency,
		PaymentMethod: payment.PaymentMethod,
		Status:        PaymentStatus(payment.Status),
		TransactionID: payment.TransactionID,
		CreatedAt:     payment.CreatedAt,
		UpdatedAt:     payment.UpdatedAt,
	}, nil
}

// ListPayments returns all payments, newest first.
func (s *PaymentService) ListPayments() ([]models.Payment, error) {
	var payments []models.Payment
	if err := s.db.Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// GetPayment loads the raw payment record.
func (s *PaymentService) GetPayment(paymentID string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.First(&payment, "id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return &payment, nil
}

// PendingGatewayPayments returns payments for one method that still await a
// terminal state and carry a gateway transaction reference to query.
func (s *PaymentService) PendingGatewayPayments(method string) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.
		Where("payment_method = ? AND status IN ? AND transaction_id <> ''",
			method, []string{string(PaymentStatusPending), string(PaymentStatusProcessing)}).
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load pending payments: %w", err)
	}
	return payments, nil
}

// UpdatePaymentStatus applies a conditional status write: the new status
// must not move the payment backward in finality. When the transition is
// rejected the stored status is returned with updated=false and no row is
// touched. transactionData, when non-nil, replaces the stored PaymentData.
func (s *PaymentService) UpdatePaymentStatus(paymentID string, next PaymentStatus, transactionData interface{}) (PaymentStatus, bool, error) {
	return s.applyStatus(paymentID, next, "", transactionData)
}

// ApplyGatewayCallback is UpdatePaymentStatus for inbound webhooks: it also
// records the transaction reference the gateway reported, which supersedes
// the one captured at creation time.
func (s *PaymentService) ApplyGatewayCallback(paymentID string, next PaymentStatus, tranRef string, transactionData interface{}) (PaymentStatus, bool, error) {
	return s.applyStatus(paymentID, next, tranRef, transactionData)
}

func (s *PaymentService) applyStatus(paymentID string, next PaymentStatus, tranRef string, transactionData interface{}) (PaymentStatus, bool, error) {
	if !next.Valid() {
		return "", false, fmt.Errorf("invalid payment status %q", next)
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return "", false, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	var payment models.Payment
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&payment, "id = ?", paymentID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, ErrPaymentNotFound
		}
		return "", false, fmt.Errorf("failed to find payment: %w", err)
	}

	current := PaymentStatus(payment.Status)
	if !current.CanTransitionTo(next) {
		tx.Rollback()
		utils.InfoLogger.Printf("Ignoring status regression %s -> %s for payment %s",
			current, next, paymentID)
		return current, false, nil
	}

	payment.Status = string(next)
	if tranRef != "" {
		payment.TransactionID = tranRef
	}
	if transactionData != nil {
		data, err := json.Marshal(transactionData)
		if err != nil {
			tx.Rollback()
			return "", false, fmt.Errorf("failed to marshal transaction data: %w", err)
		}
		payment.PaymentData = string(data)
	}
	payment.UpdatedAt = time.Now()

	if err := tx.Save(&payment).Error; err != nil {
		tx.Rollback()
		return "", false, fmt.Errorf("failed to update payment status: %w", err)
	}
	if err := tx.Commit().Error; err != nil {
		return "", false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return next, true, nil
}
