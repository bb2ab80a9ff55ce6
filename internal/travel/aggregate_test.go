package travel

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestCountByStatus(t *testing.T) {
	trips := []Trip{
		{Status: StatusSubmitted},
		{Status: StatusSubmitted},
		{Status: StatusPMApproved},
		{Status: StatusOperationsCompleted},
		{Status: StatusPMRejected},
		{Status: "legacy"},
	}
	c := CountByStatus(trips)
	if c.Total != 6 || c.Pending != 2 || c.Approved != 1 || c.Completed != 1 || c.Rejected != 1 || c.Cancelled != 0 {
		t.Fatalf("unexpected counts %+v", c)
	}
}

func TestSummarizeUsers_SpendAndTripCount(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	users := []Spender{
		{ID: alice, Name: "Alice"},
		{ID: bob, Name: "Bob", Budget: dec("20000")},
	}
	trips := []Trip{
		{TravelerID: alice, Status: StatusOperationsCompleted, ActualTotalCost: dec("3000")},
		{TravelerID: alice, Status: StatusOperationsCompleted, ActualTotalCost: dec("0")},
		{TravelerID: alice, Status: StatusPMApproved},
		{TravelerID: alice, Status: StatusSubmitted},
		{TravelerID: bob, Status: StatusOperationsCompleted, ActualTotalCost: dec("5000")},
		{TravelerID: bob, Status: StatusPMRejected, ActualTotalCost: dec("999")},
	}

	got := SummarizeUsers(users, trips)
	if len(got) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(got))
	}

	a := got[0]
	if !a.TotalSpent.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("alice spent: expected 3000, got %s", a.TotalSpent)
	}
	if !a.Budget.Equal(DefaultAnnualBudget) {
		t.Fatalf("alice budget: expected default, got %s", a.Budget)
	}
	if a.Utilization != 20 {
		t.Fatalf("alice utilization: expected 20, got %v", a.Utilization)
	}
	if a.TripCount != 3 {
		t.Fatalf("alice trips: expected 3, got %d", a.TripCount)
	}

	b := got[1]
	if b.Utilization != 25 || b.TripCount != 1 {
		t.Fatalf("unexpected bob summary %+v", b)
	}
}

func TestSummarizeProjects_MatchesLocalAndExternalIDs(t *testing.T) {
	projectID := uuid.New()
	project := Spender{ID: projectID, ExternalID: "ZP-77", Name: "Aramco rollout", Budget: dec("10000")}

	trips := []Trip{
		{ProjectID: &projectID, Status: StatusOperationsCompleted, ActualTotalCost: dec("1000")},
		{ProjectRef: "ZP-77", Status: StatusOperationsCompleted, ActualTotalCost: dec("500")},
		{ProjectRef: projectID.String(), Status: StatusOperationsCompleted, ActualTotalCost: dec("250")},
		{ProjectRef: "ZP-78", Status: StatusOperationsCompleted, ActualTotalCost: dec("4000")},
		{ProjectID: ptr(uuid.New()), ProjectRef: "ZP-77", Status: StatusOperationsCompleted, ActualTotalCost: dec("4000")},
	}

	got := SummarizeProjects([]Spender{project}, trips)[0]
	if got.TotalSpent.StringFixed(2) != "1750.00" {
		t.Fatalf("expected 1750.00, got %s", got.TotalSpent.StringFixed(2))
	}
	if got.TripCount != 3 {
		t.Fatalf("expected 3 trips, got %d", got.TripCount)
	}
	if got.Utilization != 17.5 {
		t.Fatalf("expected 17.5, got %v", got.Utilization)
	}
}

func TestUtilization_ZeroBudget(t *testing.T) {
	if got := Utilization(decimal.NewFromInt(10), decimal.Zero); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func ptr[T any](v T) *T { return &v }
