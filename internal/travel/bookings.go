package travel

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BookingType is the kind of reservation made by operations.
type BookingType string

const (
	BookingFlight    BookingType = "flight"
	BookingHotel     BookingType = "hotel"
	BookingCarRental BookingType = "car_rental"
	BookingPerDiem   BookingType = "per_diem"
	BookingOther     BookingType = "other"
)

func ParseBookingType(s string) (BookingType, error) {
	switch BookingType(s) {
	case BookingFlight, BookingHotel, BookingCarRental, BookingPerDiem, BookingOther:
		return BookingType(s), nil
	default:
		return "", fmt.Errorf("unknown booking type: %s", s)
	}
}

// BookingDraft is a booking row as entered by operations. Any field may be missing.
type BookingDraft struct {
	Type        string
	Provider    string
	Reference   string
	Cost        *decimal.Decimal
	PerDiemRate *decimal.Decimal
}

// PreparedBooking is a draft that passed filtering and has a definite cost.
type PreparedBooking struct {
	Type        BookingType
	Provider    string
	Reference   string
	Cost        decimal.Decimal
	PerDiemRate *decimal.Decimal
}

// PrepareBookings drops drafts without a type or cost and derives per-diem
// costs from the rate and the trip dates. An unknown type is an error.
func PrepareBookings(drafts []BookingDraft, departure, ret time.Time) ([]PreparedBooking, error) {
	out := make([]PreparedBooking, 0, len(drafts))
	for i, d := range drafts {
		if strings.TrimSpace(d.Type) == "" {
			continue
		}
		bt, err := ParseBookingType(d.Type)
		if err != nil {
			return nil, ValidationError{Field: fmt.Sprintf("bookings[%d].type", i), Message: err.Error()}
		}

		cost := d.Cost
		if bt == BookingPerDiem && d.PerDiemRate != nil {
			cost = PerDiemCost(*d.PerDiemRate, departure, ret)
		}
		if cost == nil {
			continue
		}
		if cost.IsNegative() {
			return nil, ValidationError{Field: fmt.Sprintf("bookings[%d].cost", i), Message: "cost cannot be negative"}
		}

		pb := PreparedBooking{
			Type:      bt,
			Provider:  strings.TrimSpace(d.Provider),
			Reference: strings.TrimSpace(d.Reference),
			Cost:      *cost,
		}
		if bt == BookingPerDiem {
			pb.PerDiemRate = d.PerDiemRate
		}
		out = append(out, pb)
	}
	return out, nil
}
