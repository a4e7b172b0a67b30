package models

import "time"

// Service types accepted on application forms.
const (
	ServiceTravelBooking   = "travel_booking"
	ServiceVisaApplication = "visa_application"
	ServiceWorkPermit      = "work_permit"
	ServiceUAEJob          = "uae_job"
	ServiceDocument        = "document_service"
	ServiceContact         = "contact"
)

// Application is a submitted service-request form. Details carries the
// service-specific form payload as an opaque JSON blob; payments reference
// applications by ID without a foreign key so that multiple payment
// attempts per application stay allowed.
type Application struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	ServiceType    string    `json:"service_type" gorm:"size:32;index"`
	ApplicantName  string    `json:"applicant_name" gorm:"size:255"`
	ApplicantEmail string    `json:"applicant_email" gorm:"size:255;index"`
	ApplicantPhone string    `json:"applicant_phone" gorm:"size:32"`
	Details        string    `json:"details" gorm:"type:text"`
	Status         string    `json:"status" gorm:"size:16;default:'new'"` // new, in_review, approved, rejected
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Application) TableName() string {
	return "applications"
}
