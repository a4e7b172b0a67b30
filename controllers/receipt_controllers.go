package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
	"gorm.io/gorm"

	"github.com/alsafartravel/travel-services/events"
	"github.com/alsafartravel/travel-services/models"
	"github.com/alsafartravel/travel-services/utils"
)

type ReceiptController struct {
	DB *gorm.DB
}

func NewReceiptController(db *gorm.DB) *ReceiptController {
	return &ReceiptController{DB: db}
}

// GenerateReceipt issues a PDF receipt for a completed payment and records
// the receipt number.
func (rc *ReceiptController) GenerateReceipt(c *gin.Context) {
	paymentID := c.Param("payment_id")

	var payment models.Payment
	if err := rc.DB.First(&payment, "id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("payment not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if payment.Status != "completed" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("payment is not completed"))
		return
	}

	var application models.Application
	if err := rc.DB.First(&application, "id = ?", payment.ApplicationID).Error; err != nil &&
		!errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	receiptNumber := fmt.Sprintf("RCP/%s/%s",
		time.Now().Format("20060102"),
		shortRef(payment.ID))

	receipt := models.Receipt{
		PaymentID:     payment.ID,
		ReceiptNumber: receiptNumber,
		CreatedAt:     time.Now(),
	}
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(uint); ok {
			receipt.IssuedBy = &id
		}
	}

	if err := rc.DB.Create(&receipt).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	pdfBytes, err := buildReceiptPDF(&payment, &application, &receipt)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastReceiptGenerated(receipt)

	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=receipt-%s.pdf", shortRef(payment.ID)))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// shortRef abbreviates a payment ID for receipt numbers and filenames.
// IDs are normally 36-char UUIDs, but rows seeded by hand can be shorter.
func shortRef(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

func buildReceiptPDF(payment *models.Payment, application *models.Application, receipt *models.Receipt) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Al Safar & Partners Travel Services", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Payment Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)
	rows := [][2]string{
		{"Receipt Number", receipt.ReceiptNumber},
		{"Date", receipt.CreatedAt.Format("02 Jan 2006 15:04")},
		{"Payment ID", payment.ID},
		{"Application ID", payment.ApplicationID},
		{"Service", application.ServiceType},
		{"Applicant", application.ApplicantName},
		{"Payment Method", payment.PaymentMethod},
		{"Transaction Ref", payment.TransactionID},
		{"Amount", utils.FormatAmount(payment.Amount) + " " + payment.Currency},
		{"Status", payment.Status},
	}
	for _, row := range rows {
		pdf.CellFormat(50, 8, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, row[1], "", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "Thank you for choosing our services.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error rendering receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}
