package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/alsafartravel/travel-services/models"
)

func setupReceiptTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Payment{}, &models.Application{}, &models.Receipt{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func setupReceiptRouter(db *gorm.DB) *gin.Engine {
	ctrl := NewReceiptController(db)
	r := gin.New()
	r.POST("/api/payments/:payment_id/receipt", ctrl.GenerateReceipt)
	return r
}

func seedReceiptPayment(t *testing.T, db *gorm.DB, id, status string) {
	t.Helper()
	err := db.Create(&models.Payment{
		ID:            id,
		ApplicationID: "app-1",
		Amount:        decimal.NewFromFloat(350.00),
		Currency:      "AED",
		PaymentMethod: "paytabs",
		Status:        status,
		TransactionID: "TST1",
	}).Error
	if err != nil {
		t.Fatalf("seed payment: %v", err)
	}
}

func TestGenerateReceipt_ShortPaymentID(t *testing.T) {
	db := setupReceiptTestDB(t)
	// Shorter than the 8-char abbreviation used in receipt numbers.
	seedReceiptPayment(t, db, "pay-1", "completed")
	r := setupReceiptRouter(db)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/pay-1/receipt", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "receipt-PAY-1.pdf")

	var receipt models.Receipt
	if err := db.First(&receipt, "payment_id = ?", "pay-1").Error; err != nil {
		t.Fatalf("receipt row not created: %v", err)
	}
	assert.True(t, strings.HasPrefix(receipt.ReceiptNumber, "RCP/"))
	assert.True(t, strings.HasSuffix(receipt.ReceiptNumber, "/PAY-1"))
}

func TestGenerateReceipt_NotCompleted(t *testing.T) {
	db := setupReceiptTestDB(t)
	seedReceiptPayment(t, db, "pay-2", "pending")
	r := setupReceiptRouter(db)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/pay-2/receipt", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	db.Model(&models.Receipt{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestGenerateReceipt_NotFound(t *testing.T) {
	db := setupReceiptTestDB(t)
	r := setupReceiptRouter(db)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/missing/receipt", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
