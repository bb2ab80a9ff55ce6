package service

import (
	"fmt"
	"strings"
	"time"

	"traveldesk/internal/travel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uuid.UUID
	// Role is the effective role, after admin impersonation.
	Role travel.Role
	// HomeRole is the role stored on the user row.
	HomeRole travel.Role
}

func (a Actor) IsAdmin() bool {
	return a.HomeRole == travel.RoleAdmin
}

// Date is a calendar date accepting "2006-01-02" or RFC 3339 input.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	d.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(time.DateOnly) + `"`), nil
}

// Amount is an optional money value. JSON numbers, decimal strings, null and
// the empty string are accepted; the latter two leave it unset.
type Amount struct {
	Value *decimal.Decimal
}

func NewAmount(s string) Amount {
	d := decimal.RequireFromString(s)
	return Amount{Value: &d}
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		a.Value = nil
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	a.Value = &d
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if a.Value == nil {
		return []byte("null"), nil
	}
	return []byte(`"` + a.Value.StringFixed(2) + `"`), nil
}

func formatMoney(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

func formatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func formatUUID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
