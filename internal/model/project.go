package model

import (
	"time"

	"traveldesk/internal/travel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Project is a billable project that delivery trips are charged to.
type Project struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ZohoID       *string          `gorm:"column:zoho_id;type:varchar(100);uniqueIndex" json:"zoho_id"`
	Code         string           `gorm:"type:varchar(50);index" json:"code"`
	Name         string           `gorm:"type:varchar(255);not null" json:"name"`
	TravelBudget *decimal.Decimal `gorm:"type:decimal(18,2)" json:"travel_budget"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (p Project) Spender() travel.Spender {
	s := travel.Spender{ID: p.ID, Name: p.Name, Budget: p.TravelBudget}
	if p.ZohoID != nil {
		s.ExternalID = *p.ZohoID
	}
	return s
}
