package model

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	ActionSubmitTravelRequest   = "SUBMIT_TRAVEL_REQUEST"
	ActionApproveTravelRequest  = "APPROVE_TRAVEL_REQUEST"
	ActionRejectTravelRequest   = "REJECT_TRAVEL_REQUEST"
	ActionAddBookings           = "ADD_BOOKINGS"
	ActionCompleteTravelRequest = "COMPLETE_TRAVEL_REQUEST"
	ActionCancelTravelRequest   = "CANCEL_TRAVEL_REQUEST"

	ActionCreateDocument = "CREATE_DOCUMENT"
	ActionUpdateDocument = "UPDATE_DOCUMENT"
	ActionDeleteDocument = "DELETE_DOCUMENT"

	ActionSyncRoster = "SYNC_ROSTER"
	ActionSwitchRole = "SWITCH_ACTIVE_ROLE"
)

// MaxEntityNameLength matches the entity_name column.
const MaxEntityNameLength = 255

// AuditLog tracks Who, What, and When for every lifecycle and document change
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nil for roster sync jobs
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

// ClipEntityName shortens name to fit the entity_name column, marking the cut with an ellipsis.
func ClipEntityName(name string) string {
	if utf8.RuneCountInString(name) <= MaxEntityNameLength {
		return name
	}
	runes := []rune(name)
	return string(runes[:MaxEntityNameLength-1]) + "…"
}
