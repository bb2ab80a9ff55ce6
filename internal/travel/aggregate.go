package travel

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultAnnualBudget applies to users without an annual travel budget.
var DefaultAnnualBudget = decimal.NewFromInt(15000)

// Trip is the slice of a travel request the aggregations need.
type Trip struct {
	ID              uuid.UUID
	TravelerID      uuid.UUID
	RequesterID     uuid.UUID
	ProjectID       *uuid.UUID
	ProjectRef      string
	Status          Status
	ActualTotalCost *decimal.Decimal
}

// Spender is a user or project that trips are charged to.
type Spender struct {
	ID         uuid.UUID
	ExternalID string
	Name       string
	Budget     *decimal.Decimal
}

type StatusCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

type SpendSummary struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	Budget      decimal.Decimal `json:"budget"`
	Utilization float64         `json:"utilization"`
	TripCount   int             `json:"trip_count"`
}

func CountByStatus(trips []Trip) StatusCounts {
	var c StatusCounts
	for _, t := range trips {
		c.Total++
		switch t.Status {
		case StatusSubmitted:
			c.Pending++
		case StatusPMApproved:
			c.Approved++
		case StatusPMRejected:
			c.Rejected++
		case StatusOperationsCompleted:
			c.Completed++
		case StatusCancelled:
			c.Cancelled++
		}
	}
	return c
}

// spent returns the cost a trip contributes to spend totals: only completed
// trips with a positive actual cost count.
func (t Trip) spent() (decimal.Decimal, bool) {
	if t.Status != StatusOperationsCompleted || t.ActualTotalCost == nil || !t.ActualTotalCost.IsPositive() {
		return decimal.Zero, false
	}
	return *t.ActualTotalCost, true
}

// countsAsTrip is broader than spent: trips still waiting on operations count too.
func (t Trip) countsAsTrip() bool {
	return t.Status == StatusOperationsCompleted || t.Status == StatusPMApproved
}

// BelongsTo reports whether the trip is charged to project p. Rows written
// before project references were reconciled carry only the raw reference,
// which may be either the local or the external id.
func (t Trip) BelongsTo(p Spender) bool {
	if t.ProjectID != nil {
		return *t.ProjectID == p.ID
	}
	if t.ProjectRef == "" {
		return false
	}
	return t.ProjectRef == p.ID.String() || (p.ExternalID != "" && t.ProjectRef == p.ExternalID)
}

// Utilization is spent as a percentage of budget, rounded to two places.
// A missing or non-positive budget yields 0.
func Utilization(spent, budget decimal.Decimal) float64 {
	if !budget.IsPositive() {
		return 0
	}
	return spent.Div(budget).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

func SummarizeUsers(users []Spender, trips []Trip) []SpendSummary {
	out := make([]SpendSummary, 0, len(users))
	for _, u := range users {
		budget := DefaultAnnualBudget
		if u.Budget != nil && u.Budget.IsPositive() {
			budget = *u.Budget
		}
		s := SpendSummary{ID: u.ID, Name: u.Name, Budget: budget, TotalSpent: decimal.Zero}
		for _, t := range trips {
			if t.TravelerID != u.ID {
				continue
			}
			accumulate(&s, t)
		}
		s.Utilization = Utilization(s.TotalSpent, s.Budget)
		out = append(out, s)
	}
	return out
}

func SummarizeProjects(projects []Spender, trips []Trip) []SpendSummary {
	out := make([]SpendSummary, 0, len(projects))
	for _, p := range projects {
		budget := decimal.Zero
		if p.Budget != nil {
			budget = *p.Budget
		}
		s := SpendSummary{ID: p.ID, Name: p.Name, Budget: budget, TotalSpent: decimal.Zero}
		for _, t := range trips {
			if !t.BelongsTo(p) {
				continue
			}
			accumulate(&s, t)
		}
		s.Utilization = Utilization(s.TotalSpent, s.Budget)
		out = append(out, s)
	}
	return out
}

func accumulate(s *SpendSummary, t Trip) {
	if amt, ok := t.spent(); ok {
		s.TotalSpent = s.TotalSpent.Add(amt)
	}
	if t.countsAsTrip() {
		s.TripCount++
	}
}
