package travel

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var validateNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func validSubmission() Submission {
	return Submission{
		Origin:        "Riyadh",
		Destination:   "Dubai",
		DepartureDate: date(2025, 3, 12),
		ReturnDate:    date(2025, 3, 15),
		Purpose:       PurposeSales,
	}
}

func TestValidateSubmission_Accepts(t *testing.T) {
	if err := ValidateSubmission(validSubmission(), validateNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateSubmission_DeliveryRequiresProject(t *testing.T) {
	s := validSubmission()
	s.Purpose = PurposeDelivery
	s.ProjectRef = ""

	err := ValidateSubmission(s, validateNow)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "project_id" || !strings.Contains(ve.Message, "purpose") {
		t.Fatalf("expected error naming purpose requirement, got %+v", ve)
	}

	s.ProjectRef = "P-100"
	if err := ValidateSubmission(s, validateNow); err != nil {
		t.Fatalf("unexpected error with project: %v", err)
	}
}

func TestValidateSubmission_OtherRequiresCustomPurpose(t *testing.T) {
	s := validSubmission()
	s.Purpose = PurposeOther
	err := ValidateSubmission(s, validateNow)
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Field != "custom_purpose" {
		t.Fatalf("expected custom_purpose error, got %v", err)
	}
}

func TestValidateSubmission_Dates(t *testing.T) {
	cases := []struct {
		name  string
		dep   time.Time
		ret   time.Time
		field string
	}{
		{"return equals departure", date(2025, 3, 12), date(2025, 3, 12), "return_date"},
		{"return before departure", date(2025, 3, 12), date(2025, 3, 11), "return_date"},
		{"departure in past", date(2025, 3, 9), date(2025, 3, 11), "departure_date"},
		{"missing departure", time.Time{}, date(2025, 3, 11), "departure_date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := validSubmission()
			s.DepartureDate, s.ReturnDate = tc.dep, tc.ret
			var ve ValidationError
			if err := ValidateSubmission(s, validateNow); !errors.As(err, &ve) || ve.Field != tc.field {
				t.Fatalf("expected %s error, got %v", tc.field, err)
			}
		})
	}
}

func TestValidateSubmission_DepartingTodayIsAllowed(t *testing.T) {
	s := validSubmission()
	s.DepartureDate = date(2025, 3, 10)
	if err := ValidateSubmission(s, validateNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateSubmission_UnknownPurpose(t *testing.T) {
	s := validSubmission()
	s.Purpose = "holiday"
	var ve ValidationError
	if err := ValidateSubmission(s, validateNow); !errors.As(err, &ve) || ve.Field != "purpose" {
		t.Fatalf("expected purpose error, got %v", err)
	}
}

func TestValidateSubmission_LegsSatisfyDestination(t *testing.T) {
	s := validSubmission()
	s.Destination = ""
	s.Destinations = []string{"Dubai", "Abu Dhabi"}
	if err := ValidateSubmission(s, validateNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Destinations = nil
	if err := ValidateSubmission(s, validateNow); err == nil {
		t.Fatalf("expected destination error")
	}
}

func TestValidateSubmission_Lengths(t *testing.T) {
	long := strings.Repeat("x", MaxPlaceLength+1)
	cases := []struct {
		name  string
		edit  func(*Submission)
		field string
	}{
		{"origin", func(s *Submission) { s.Origin = long }, "origin"},
		{"destination", func(s *Submission) { s.Destination = long }, "destination"},
		{"leg", func(s *Submission) { s.Destinations = []string{"Dubai", "Sharjah", long} }, "destinations[2]"},
		{"too many legs", func(s *Submission) {
			for i := 0; i <= MaxLegs; i++ {
				s.Destinations = append(s.Destinations, "Dubai")
			}
		}, "destinations"},
		{"project ref", func(s *Submission) {
			s.Purpose = PurposeDelivery
			s.ProjectRef = strings.Repeat("P", MaxProjectRefLength+1)
		}, "project_id"},
		{"custom purpose", func(s *Submission) {
			s.Purpose = PurposeOther
			s.CustomPurpose = strings.Repeat("c", MaxCustomPurposeLength+1)
		}, "custom_purpose"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := validSubmission()
			tc.edit(&s)
			var ve ValidationError
			if err := ValidateSubmission(s, validateNow); !errors.As(err, &ve) || ve.Field != tc.field {
				t.Fatalf("expected %s error, got %v", tc.field, err)
			}
		})
	}

	s := validSubmission()
	s.Origin = strings.Repeat("ر", MaxPlaceLength)
	if err := ValidateSubmission(s, validateNow); err != nil {
		t.Fatalf("limit counts characters, not bytes: %v", err)
	}
}
