package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"traveldesk/internal/model"
	"traveldesk/internal/repository"
	"traveldesk/internal/travel"

	"github.com/google/uuid"
)

const dashboardQueueSize = 20

// DashboardResponse is the role dashboard payload.
type DashboardResponse struct {
	Role              travel.Role             `json:"role"`
	Counts            travel.StatusCounts     `json:"counts"`
	Queue             []TravelRequestResponse `json:"queue"`
	QueueTotal        int64                   `json:"queue_total"`
	ExpiringDocuments int64                   `json:"expiring_documents"`
	UserSpend         []travel.SpendSummary   `json:"user_spend,omitempty"`
	ProjectSpend      []travel.SpendSummary   `json:"project_spend,omitempty"`
	GeneratedAt       string                  `json:"generated_at"`
}

type DashboardService interface {
	Dashboard(ctx context.Context, actor Actor) (*DashboardResponse, error)
	UserSpend(ctx context.Context) ([]travel.SpendSummary, error)
	ProjectSpend(ctx context.Context) ([]travel.SpendSummary, error)
}

type dashboardService struct {
	requests repository.TravelRequestRepository
	users    repository.UserRepository
	projects repository.ProjectRepository
	docs     repository.DocumentRepository
	policy   travel.ApprovalPolicy
	now      func() time.Time
}

func NewDashboardService(requests repository.TravelRequestRepository, users repository.UserRepository, projects repository.ProjectRepository, docs repository.DocumentRepository, policy travel.ApprovalPolicy, now func() time.Time) DashboardService {
	if now == nil {
		now = time.Now
	}
	return &dashboardService{requests: requests, users: users, projects: projects, docs: docs, policy: policy, now: now}
}

func (s *dashboardService) Dashboard(ctx context.Context, actor Actor) (*DashboardResponse, error) {
	trips, err := s.requests.ListTrips(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load trips: %w", err)
	}

	res := &DashboardResponse{
		Role:        actor.Role,
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
	}

	scope := trips
	if !s.seesAll(actor.Role) {
		scope = participantTrips(trips, actor.UserID)
	}
	res.Counts = travel.CountByStatus(scope)

	queue, total, err := s.requests.List(ctx, s.queueFilter(actor))
	if err != nil {
		return nil, fmt.Errorf("failed to load work queue: %w", err)
	}
	res.Queue = make([]TravelRequestResponse, 0, len(queue))
	for _, tr := range queue {
		res.Queue = append(res.Queue, toTravelRequestResponse(ctx, tr))
	}
	res.QueueTotal = total

	cutoff := s.now().UTC().AddDate(0, 0, travel.ExpiringSoonWindowDays)
	docFilter := repository.DocumentFilter{ExpiresBefore: &cutoff, Limit: 1}
	if !managesAll(actor) {
		me := actor.UserID
		docFilter.UserID = &me
	}
	_, expiring, err := s.docs.List(ctx, docFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to count expiring documents: %w", err)
	}
	res.ExpiringDocuments = expiring

	if actor.Role == travel.RoleAdmin {
		users, err := s.users.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load users: %w", err)
		}
		projects, err := s.projects.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load projects: %w", err)
		}
		res.UserSpend = rankBySpend(travel.SummarizeUsers(userSpenders(users), trips))
		res.ProjectSpend = rankBySpend(travel.SummarizeProjects(projectSpenders(projects), trips))
	}

	return res, nil
}

func (s *dashboardService) UserSpend(ctx context.Context) ([]travel.SpendSummary, error) {
	trips, err := s.requests.ListTrips(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load trips: %w", err)
	}
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return rankBySpend(travel.SummarizeUsers(userSpenders(users), trips)), nil
}

func (s *dashboardService) ProjectSpend(ctx context.Context) ([]travel.SpendSummary, error) {
	trips, err := s.requests.ListTrips(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load trips: %w", err)
	}
	projects, err := s.projects.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	return rankBySpend(travel.SummarizeProjects(projectSpenders(projects), trips)), nil
}

// queueFilter selects the requests waiting on the actor's role.
func (s *dashboardService) queueFilter(actor Actor) repository.TravelRequestFilter {
	f := repository.TravelRequestFilter{Limit: dashboardQueueSize}
	switch {
	case actor.Role == travel.RoleAdmin:
		f.Statuses = []travel.Status{travel.StatusSubmitted, travel.StatusPMApproved}
	case actor.Role.IsOperations():
		f.Statuses = []travel.Status{travel.StatusPMApproved}
		f.OperationsTeam = actor.Role
	case s.policy.CanApprove(actor.Role):
		f.Statuses = []travel.Status{travel.StatusSubmitted}
	default:
		me := actor.UserID
		f.ParticipantID = &me
		f.Statuses = []travel.Status{travel.StatusSubmitted, travel.StatusPMApproved}
	}
	return f
}

func (s *dashboardService) seesAll(role travel.Role) bool {
	return role == travel.RoleAdmin || role.IsOperations() || s.policy.CanApprove(role)
}

// participantTrips keeps the trips the user travels on or filed.
func participantTrips(trips []travel.Trip, userID uuid.UUID) []travel.Trip {
	var out []travel.Trip
	for _, t := range trips {
		if t.TravelerID == userID || t.RequesterID == userID {
			out = append(out, t)
		}
	}
	return out
}

func userSpenders(users []model.User) []travel.Spender {
	out := make([]travel.Spender, 0, len(users))
	for _, u := range users {
		out = append(out, u.Spender())
	}
	return out
}

func projectSpenders(projects []model.Project) []travel.Spender {
	out := make([]travel.Spender, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.Spender())
	}
	return out
}

// rankBySpend orders summaries by total spent, highest first, keeping name order for ties.
func rankBySpend(in []travel.SpendSummary) []travel.SpendSummary {
	sort.SliceStable(in, func(i, j int) bool {
		return in[i].TotalSpent.GreaterThan(in[j].TotalSpent)
	})
	return in
}
