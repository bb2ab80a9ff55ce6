package model

import (
	"time"

	"traveldesk/internal/travel"

	"github.com/google/uuid"
)

// EmployeeDocument is a passport or visa held by a user. Its validity status
// is derived from ExpiryDate on read and never stored.
type EmployeeDocument struct {
	ID             uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID         uuid.UUID           `gorm:"type:uuid;not null;index" json:"user_id"`
	User           *User               `gorm:"foreignKey:UserID" json:"user,omitempty"`
	DocumentType   travel.DocumentType `gorm:"type:varchar(20);not null;index" json:"document_type"`
	DocumentNumber string              `gorm:"type:varchar(100);not null" json:"document_number"`
	IssuingCountry string              `gorm:"type:varchar(100)" json:"issuing_country"`
	CountryCode    string              `gorm:"type:varchar(3)" json:"country_code"`
	IssueDate      *time.Time          `gorm:"type:date" json:"issue_date"`
	ExpiryDate     time.Time           `gorm:"type:date;not null;index" json:"expiry_date"`
	Notes          string              `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}
