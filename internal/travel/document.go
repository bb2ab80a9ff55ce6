package travel

import "time"

// DocumentStatus is the derived validity of a passport or visa. It is never stored.
type DocumentStatus string

const (
	DocumentExpired      DocumentStatus = "expired"
	DocumentExpiringSoon DocumentStatus = "expiring_soon"
	DocumentValid        DocumentStatus = "valid"
)

// ExpiringSoonWindowDays is how close to expiry a document is flagged.
const ExpiringSoonWindowDays = 30

// DocumentType is the kind of travel document held by an employee.
type DocumentType string

const (
	DocumentPassport DocumentType = "passport"
	DocumentVisa     DocumentType = "visa"
)

// DaysUntil counts whole calendar days from now's date to the expiry date.
func DaysUntil(expiry, now time.Time) int {
	return int(dateOf(expiry).Sub(dateOf(now)) / day)
}

// ClassifyExpiry derives a document status from its expiry date.
func ClassifyExpiry(expiry, now time.Time) (DocumentStatus, int) {
	days := DaysUntil(expiry, now)
	switch {
	case days <= 0:
		return DocumentExpired, days
	case days <= ExpiringSoonWindowDays:
		return DocumentExpiringSoon, days
	default:
		return DocumentValid, days
	}
}

// dateOf drops the clock part of t, keeping its calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
