package model

import (
	"time"

	"traveldesk/internal/travel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TravelRequest is a single trip moving through submission, PM approval and
// operations booking.
type TravelRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TravelerID  uuid.UUID `gorm:"type:uuid;not null;index" json:"traveler_id"`
	Traveler    *User     `gorm:"foreignKey:TravelerID" json:"traveler,omitempty"`
	RequesterID uuid.UUID `gorm:"type:uuid;not null;index" json:"requester_id"`
	Requester   *User     `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`

	PMApproverID *uuid.UUID `gorm:"column:pm_approver_id;type:uuid" json:"pm_approver_id"`
	PMApprover   *User      `gorm:"foreignKey:PMApproverID" json:"pm_approver,omitempty"`
	PMApprovedAt *time.Time `gorm:"column:pm_approved_at" json:"pm_approved_at"`

	ProjectID  *uuid.UUID `gorm:"type:uuid;index" json:"project_id"` // canonical, resolved at submission
	Project    *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	ProjectRef string     `gorm:"type:varchar(100);index" json:"project_ref,omitempty"` // as supplied by the caller

	Origin        string                      `gorm:"type:varchar(255);not null" json:"origin"`
	Destination   string                      `gorm:"type:varchar(255);not null" json:"destination"`
	Destinations  datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"destinations"`
	DepartureDate time.Time                   `gorm:"type:date;not null;index" json:"departure_date"`
	ReturnDate    time.Time                   `gorm:"type:date;not null" json:"return_date"`

	Purpose       travel.Purpose `gorm:"type:varchar(20);not null" json:"purpose"`
	CustomPurpose string         `gorm:"type:text" json:"custom_purpose"`

	EstimatedFlightCost *decimal.Decimal `gorm:"type:decimal(18,2)" json:"estimated_flight_cost"`
	EstimatedHotelCost  *decimal.Decimal `gorm:"type:decimal(18,2)" json:"estimated_hotel_cost"`
	EstimatedOtherCost  *decimal.Decimal `gorm:"type:decimal(18,2)" json:"estimated_other_cost"`
	ActualTotalCost     *decimal.Decimal `gorm:"type:decimal(18,2)" json:"actual_total_cost"`

	Status          travel.Status `gorm:"type:varchar(30);not null;default:'submitted';index" json:"status"`
	RejectionReason string        `gorm:"type:text" json:"rejection_reason"`
	OperationsTeam  travel.Role   `gorm:"type:varchar(30);index" json:"operations_team"`
	CompletedBy     *uuid.UUID    `gorm:"type:uuid" json:"completed_by"`
	CompletedAt     *time.Time    `json:"completed_at"`
	CancelledAt     *time.Time    `json:"cancelled_at"`
	Notes           string        `gorm:"type:text" json:"notes"`

	Bookings  []Booking `gorm:"foreignKey:TravelRequestID" json:"bookings,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r TravelRequest) Trip() travel.Trip {
	return travel.Trip{
		ID:              r.ID,
		TravelerID:      r.TravelerID,
		RequesterID:     r.RequesterID,
		ProjectID:       r.ProjectID,
		ProjectRef:      r.ProjectRef,
		Status:          r.Status,
		ActualTotalCost: r.ActualTotalCost,
	}
}

// Route is the display route, e.g. "Riyadh → Dubai → Abu Dhabi".
func (r TravelRequest) Route() string {
	return travel.FormatRoute(r.Origin, r.Destination, r.Destinations)
}

// Booking is a reservation recorded by operations while completing a request.
type Booking struct {
	ID               uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TravelRequestID  uuid.UUID          `gorm:"type:uuid;not null;index" json:"travel_request_id"`
	Type             travel.BookingType `gorm:"type:varchar(20);not null" json:"type"`
	Provider         string             `gorm:"type:varchar(255)" json:"provider"`
	BookingReference string             `gorm:"type:varchar(255)" json:"booking_reference"`
	Cost             decimal.Decimal    `gorm:"type:decimal(18,2);not null" json:"cost"`
	PerDiemRate      *decimal.Decimal   `gorm:"type:decimal(18,2)" json:"per_diem_rate"`
	CreatedBy        *uuid.UUID         `gorm:"type:uuid" json:"created_by"`
	CreatedAt        time.Time          `json:"created_at"`
}
