package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alsafartravel/travel-services/events"
	"github.com/alsafartravel/travel-services/services"
	"github.com/alsafartravel/travel-services/utils"
)

// PaymentController exposes payment creation, inquiry and the PayTabs
// callback endpoint over HTTP.
type PaymentController struct {
	DB       *gorm.DB
	Payments *services.PaymentService
	PayTabs  *services.PayTabsGateway

	// AllowUnsignedCallbacks accepts callbacks without a signature header.
	// Only meant for sandbox profiles that do not sign their webhooks.
	AllowUnsignedCallbacks bool
}

func NewPaymentController(db *gorm.DB, payments *services.PaymentService, payTabs *services.PayTabsGateway, allowUnsigned bool) *PaymentController {
	return &PaymentController{
		DB:                     db,
		Payments:               payments,
		PayTabs:                payTabs,
		AllowUnsignedCallbacks: allowUnsigned,
	}
}

type CreatePaymentRequest struct {
	ApplicationID  string                    `json:"applicationId" binding:"required"`
	Amount         float64                   `json:"amount" binding:"required,gt=0"`
	Currency       string                    `json:"currency" binding:"omitempty,len=3"`
	PaymentMethod  string                    `json:"paymentMethod" binding:"required"`
	CustomerInfo   services.CustomerInfo     `json:"customerInfo" binding:"required"`
	BillingAddress *services.BillingAddress  `json:"billingAddress"`
}

// CreatePayment starts a payment through the requested provider.
func (pc *PaymentController) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if !pc.Payments.Supports(req.PaymentMethod) {
		c.JSON(http.StatusBadRequest, services.PaymentResponse{
			Success: false,
			Status:  services.PaymentStatusFailed,
			Message: "Unsupported payment method",
		})
		return
	}

	resp := pc.Payments.ProcessPayment(c.Request.Context(), services.PaymentRequest{
		ApplicationID:  req.ApplicationID,
		Amount:         decimal.NewFromFloat(req.Amount),
		Currency:       req.Currency,
		PaymentMethod:  req.PaymentMethod,
		CustomerInfo:   req.CustomerInfo,
		BillingAddress: req.BillingAddress,
	})

	if resp.Success {
		if payment, err := pc.Payments.GetPayment(resp.PaymentID); err == nil {
			events.BroadcastPaymentUpdate(*payment)
		}
	}

	c.JSON(http.StatusOK, resp)
}

// GetPayments returns one payment when ?id= is present, otherwise the full
// list, newest first.
func (pc *PaymentController) GetPayments(c *gin.Context) {
	if id := c.Query("id"); id != "" {
		detail, err := pc.Payments.GetPaymentStatus(id)
		if err != nil {
			if errors.Is(err, services.ErrPaymentNotFound) {
				c.JSON(http.StatusNotFound, gin.H{
					"success": false,
					"message": "Payment not found",
				})
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"payment": detail,
		})
		return
	}

	payments, err := pc.Payments.ListPayments()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"payments": payments,
	})
}

type payTabsCallbackRequest struct {
	PaymentToken    string          `json:"payment_token"`
	TranRef         string          `json:"tran_ref"`
	CartID          string          `json:"cart_id"`
	CartAmount      string          `json:"cart_amount"`
	CartCurrency    string          `json:"cart_currency"`
	TranType        string          `json:"tran_type"`
	RespStatus      string          `json:"resp_status"`
	RespCode        string          `json:"resp_code"`
	RespMessage     string          `json:"resp_message"`
	CustomerDetails json.RawMessage `json:"customer_details"`
}

// HandlePayTabsCallback receives the gateway's server-to-server result
// notification, verifies its signature and applies the mapped status.
func (pc *PaymentController) HandlePayTabsCallback(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("unreadable request body"))
		return
	}

	signature := c.GetHeader("Signature")
	if signature != "" {
		if !pc.PayTabs.ValidateSignature(body, signature) {
			utils.ErrorLogger.Printf("PayTabs callback signature mismatch")
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid callback signature"))
			return
		}
	} else if !pc.AllowUnsignedCallbacks {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("missing callback signature"))
		return
	}

	var req payTabsCallbackRequest
	if err := json.Unmarshal(body, &req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid callback payload"))
		return
	}
	if req.PaymentToken == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("missing payment_token"))
		return
	}

	status := services.MapPayTabsStatus(req.RespStatus, req.RespCode)

	transactionData := gin.H{
		"tran_ref":      req.TranRef,
		"resp_status":   req.RespStatus,
		"resp_code":     req.RespCode,
		"resp_message":  req.RespMessage,
		"callback_data": json.RawMessage(body),
		"updated_at":    time.Now(),
	}

	applied, updated, err := pc.Payments.ApplyGatewayCallback(req.PaymentToken, status, req.TranRef, transactionData)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Payment not found",
			})
			return
		}
		utils.ErrorLogger.Printf("Error applying PayTabs callback for %s: %v", req.PaymentToken, err)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if updated {
		utils.InfoLogger.Printf("PayTabs callback applied: payment %s -> %s (tran_ref=%s)",
			req.PaymentToken, applied, req.TranRef)
		if payment, err := pc.Payments.GetPayment(req.PaymentToken); err == nil {
			events.BroadcastPaymentUpdate(*payment)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  applied,
	})
}

// CheckPayment re-queries PayTabs for one payment and applies the result.
// Useful from the back office when a callback looks lost.
func (pc *PaymentController) CheckPayment(c *gin.Context) {
	paymentID := c.Param("payment_id")

	payment, err := pc.Payments.GetPayment(paymentID)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Payment not found",
			})
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if payment.PaymentMethod != pc.PayTabs.Name() {
		utils.RespondError(c, http.StatusBadRequest, errors.New("payment method does not support status queries"))
		return
	}
	if payment.TransactionID == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("payment has no transaction reference"))
		return
	}

	status, raw, err := pc.PayTabs.QueryTransaction(c.Request.Context(), payment.TransactionID)
	if err != nil {
		utils.RespondError(c, http.StatusBadGateway, err)
		return
	}

	applied, updated, err := pc.Payments.UpdatePaymentStatus(paymentID, status, json.RawMessage(raw))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if updated {
		if fresh, err := pc.Payments.GetPayment(paymentID); err == nil {
			events.BroadcastPaymentUpdate(*fresh)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  applied,
		"updated": updated,
	})
}
