package travel

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Purpose is the business reason for a trip.
type Purpose string

const (
	PurposeDelivery Purpose = "delivery"
	PurposeSales    Purpose = "sales"
	PurposeEvent    Purpose = "event"
	PurposeOther    Purpose = "other"
)

// Length limits for submitted fields.
const (
	MaxPlaceLength         = 255
	MaxProjectRefLength    = 100
	MaxCustomPurposeLength = 500
	MaxLegs                = 20
)

// ValidationError names the offending field of a rejected submission.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Submission is the caller-supplied part of a new travel request.
type Submission struct {
	Origin        string
	Destination   string
	Destinations  []string
	DepartureDate time.Time
	ReturnDate    time.Time
	Purpose       Purpose
	ProjectRef    string
	CustomPurpose string
}

// ValidateSubmission checks the conditional field requirements and date
// ordering of a new request. It returns the first violation found.
func ValidateSubmission(s Submission, now time.Time) error {
	if strings.TrimSpace(s.Origin) == "" {
		return ValidationError{Field: "origin", Message: "origin is required"}
	}
	if strings.TrimSpace(s.Destination) == "" && len(s.Destinations) == 0 {
		return ValidationError{Field: "destination", Message: "destination is required"}
	}
	if err := maxLength("origin", s.Origin, MaxPlaceLength); err != nil {
		return err
	}
	if err := maxLength("destination", s.Destination, MaxPlaceLength); err != nil {
		return err
	}
	if len(s.Destinations) > MaxLegs {
		return ValidationError{Field: "destinations", Message: fmt.Sprintf("a trip can have at most %d destinations", MaxLegs)}
	}
	for i, leg := range s.Destinations {
		if strings.TrimSpace(leg) == "" {
			return ValidationError{Field: "destinations", Message: "destinations must not contain blank entries"}
		}
		if err := maxLength(fmt.Sprintf("destinations[%d]", i), leg, MaxPlaceLength); err != nil {
			return err
		}
	}
	if err := maxLength("project_id", s.ProjectRef, MaxProjectRefLength); err != nil {
		return err
	}
	if err := maxLength("custom_purpose", s.CustomPurpose, MaxCustomPurposeLength); err != nil {
		return err
	}

	switch s.Purpose {
	case PurposeDelivery:
		if strings.TrimSpace(s.ProjectRef) == "" {
			return ValidationError{Field: "project_id", Message: "project is required when purpose is delivery"}
		}
	case PurposeOther:
		if strings.TrimSpace(s.CustomPurpose) == "" {
			return ValidationError{Field: "custom_purpose", Message: "custom purpose is required when purpose is other"}
		}
	case PurposeSales, PurposeEvent:
	default:
		return ValidationError{Field: "purpose", Message: "purpose must be one of delivery, sales, event, other"}
	}

	if s.DepartureDate.IsZero() {
		return ValidationError{Field: "departure_date", Message: "departure date is required"}
	}
	if s.ReturnDate.IsZero() {
		return ValidationError{Field: "return_date", Message: "return date is required"}
	}
	if !s.ReturnDate.After(s.DepartureDate) {
		return ValidationError{Field: "return_date", Message: "return date must be after departure date"}
	}
	if dateOf(s.DepartureDate).Before(dateOf(now)) {
		return ValidationError{Field: "departure_date", Message: "departure date cannot be in the past"}
	}
	return nil
}

func maxLength(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return ValidationError{Field: field, Message: fmt.Sprintf("%s must be at most %d characters", field, limit)}
	}
	return nil
}
