package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alsafartravel/travel-services/events"
	"github.com/alsafartravel/travel-services/models"
	"github.com/alsafartravel/travel-services/utils"
)

type ApplicationController struct {
	DB *gorm.DB
}

func NewApplicationController(db *gorm.DB) *ApplicationController {
	return &ApplicationController{DB: db}
}

// CreateApplication accepts a public service-request form. The returned ID
// is what payment requests reference as applicationId.
func (ac *ApplicationController) CreateApplication(c *gin.Context) {
	type request struct {
		ServiceType    string                 `json:"serviceType" binding:"required,oneof=travel_booking visa_application work_permit uae_job document_service contact"`
		ApplicantName  string                 `json:"applicantName" binding:"required"`
		ApplicantEmail string                 `json:"applicantEmail" binding:"required,email"`
		ApplicantPhone string                 `json:"applicantPhone"`
		Details        map[string]interface{} `json:"details"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	details := "{}"
	if req.Details != nil {
		data, err := json.Marshal(req.Details)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid details payload"))
			return
		}
		details = string(data)
	}

	application := models.Application{
		ID:             uuid.New().String(),
		ServiceType:    req.ServiceType,
		ApplicantName:  req.ApplicantName,
		ApplicantEmail: req.ApplicantEmail,
		ApplicantPhone: req.ApplicantPhone,
		Details:        details,
		Status:         "new",
	}

	if err := ac.DB.Create(&application).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New %s application %s from %s",
		application.ServiceType, application.ID, application.ApplicantEmail)
	events.BroadcastApplicationUpdate(application)

	utils.RespondJSON(c, http.StatusCreated, "Application submitted", gin.H{
		"application_id": application.ID,
		"status":         application.Status,
	})
}

// GetAllApplications lists applications, optionally filtered by service
// type and status, newest first.
func (ac *ApplicationController) GetAllApplications(c *gin.Context) {
	query := ac.DB.Order("created_at DESC")
	if serviceType := c.Query("service_type"); serviceType != "" {
		query = query.Where("service_type = ?", serviceType)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var applications []models.Application
	if err := query.Find(&applications).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Applications retrieved", applications)
}

// GetApplicationByID returns one application with its payments.
func (ac *ApplicationController) GetApplicationByID(c *gin.Context) {
	id := c.Param("application_id")

	var application models.Application
	if err := ac.DB.First(&application, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("application not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var payments []models.Payment
	if err := ac.DB.Where("application_id = ?", id).
		Order("created_at DESC").Find(&payments).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Application retrieved", gin.H{
		"application": application,
		"payments":    payments,
	})
}

// UpdateApplicationStatus moves an application through the review flow.
func (ac *ApplicationController) UpdateApplicationStatus(c *gin.Context) {
	id := c.Param("application_id")

	var req struct {
		Status string `json:"status" binding:"required,oneof=new in_review approved rejected"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var application models.Application
	if err := ac.DB.First(&application, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("application not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	application.Status = req.Status
	if err := ac.DB.Save(&application).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastApplicationUpdate(application)
	events.BroadcastStaffNotification(fmt.Sprintf("Application %s moved to %s",
		application.ID, application.Status))

	utils.RespondJSON(c, http.StatusOK, "Application updated", application)
}
