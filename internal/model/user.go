package model

import (
	"time"

	"traveldesk/internal/travel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is an employee known to the travel desk, either created locally or
// synced from the external roster provider.
type User struct {
	ID                 uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ZohoID             *string          `gorm:"column:zoho_id;type:varchar(100);uniqueIndex" json:"zoho_id"`
	Name               string           `gorm:"type:varchar(255);not null" json:"name"`
	Email              string           `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Department         string           `gorm:"type:varchar(255)" json:"department"`
	Role               travel.Role      `gorm:"type:varchar(30);not null;default:'manager'" json:"role"`
	ActiveRole         travel.Role      `gorm:"type:varchar(30)" json:"active_role,omitempty"` // admin impersonation only
	AnnualTravelBudget *decimal.Decimal `gorm:"type:decimal(18,2)" json:"annual_travel_budget"`
	CreatedAt          time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u User) Principal() travel.Principal {
	return travel.Principal{Role: u.Role, ActiveRole: u.ActiveRole}
}

func (u User) Spender() travel.Spender {
	s := travel.Spender{ID: u.ID, Name: u.Name, Budget: u.AnnualTravelBudget}
	if u.ZohoID != nil {
		s.ExternalID = *u.ZohoID
	}
	return s
}
