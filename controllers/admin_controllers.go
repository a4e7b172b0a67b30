package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/alsafartravel/travel-services/models"
	"github.com/alsafartravel/travel-services/services"
	"github.com/alsafartravel/travel-services/utils"
)

type AdminController struct {
	DB      *gorm.DB
	Monitor *services.PaymentMonitor
}

func NewAdminController(db *gorm.DB, monitor *services.PaymentMonitor) *AdminController {
	return &AdminController{DB: db, Monitor: monitor}
}

// GetDashboardStats aggregates payment and application counters for the
// back-office dashboard.
func (adc *AdminController) GetDashboardStats(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" {
		utils.RespondError(c, http.StatusForbidden, errors.New("admin access required"))
		return
	}

	paymentCounts := map[string]int64{}
	for _, status := range []string{"pending", "processing", "completed", "failed"} {
		var count int64
		if err := adc.DB.Model(&models.Payment{}).
			Where("status = ?", status).Count(&count).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		paymentCounts[status] = count
	}

	var totalRevenue float64
	if err := adc.DB.Model(&models.Payment{}).
		Where("status = ?", "completed").
		Select("COALESCE(SUM(amount), 0)").Scan(&totalRevenue).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	startOfDay := time.Now().Truncate(24 * time.Hour)
	var todayRevenue float64
	if err := adc.DB.Model(&models.Payment{}).
		Where("status = ? AND updated_at >= ?", "completed", startOfDay).
		Select("COALESCE(SUM(amount), 0)").Scan(&todayRevenue).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	type serviceCount struct {
		ServiceType string `json:"service_type"`
		Count       int64  `json:"count"`
	}
	var applicationsByService []serviceCount
	if err := adc.DB.Model(&models.Application{}).
		Select("service_type, COUNT(*) as count").
		Group("service_type").Scan(&applicationsByService).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var newApplications int64
	if err := adc.DB.Model(&models.Application{}).
		Where("status = ?", "new").Count(&newApplications).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	stats := gin.H{
		"payments": gin.H{
			"by_status":     paymentCounts,
			"total_revenue": totalRevenue,
			"today_revenue": todayRevenue,
		},
		"applications": gin.H{
			"by_service": applicationsByService,
			"new":        newApplications,
		},
	}
	if adc.Monitor != nil {
		metrics := adc.Monitor.GetMetrics()
		stats["reconciliation"] = gin.H{
			"total_reconciled": metrics.TotalReconciled,
			"completed":        metrics.CompletedPayments,
			"failed":           metrics.FailedPayments,
			"processing":       metrics.ProcessingPayments,
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", stats)
}
