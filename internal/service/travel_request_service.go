package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"traveldesk/internal/i18n"
	"traveldesk/internal/model"
	"traveldesk/internal/notify"
	"traveldesk/internal/repository"
	"traveldesk/internal/travel"
	"traveldesk/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EventTravelRequestUpdated is broadcast after every lifecycle mutation.
const EventTravelRequestUpdated = "travel_request.updated"

// EventPublisher pushes change notifications to connected dashboards.
type EventPublisher interface {
	Publish(eventType string, data interface{})
}

// --- DTOs ---

type SubmitTravelRequestDTO struct {
	TravelerID          string   `json:"traveler_id"` // defaults to the caller
	ProjectID           string   `json:"project_id"`  // local id or roster id
	Origin              string   `json:"origin"`
	Destination         string   `json:"destination"`
	Destinations        []string `json:"destinations"`
	DepartureDate       Date     `json:"departure_date" swaggertype:"string" example:"2026-11-03"`
	ReturnDate          Date     `json:"return_date" swaggertype:"string" example:"2026-11-07"`
	Purpose             string   `json:"purpose" example:"delivery"`
	CustomPurpose       string   `json:"custom_purpose"`
	EstimatedFlightCost Amount   `json:"estimated_flight_cost" swaggertype:"string"`
	EstimatedHotelCost  Amount   `json:"estimated_hotel_cost" swaggertype:"string"`
	EstimatedOtherCost  Amount   `json:"estimated_other_cost" swaggertype:"string"`
	Notes               string   `json:"notes"`
}

type ApproveTravelRequestDTO struct {
	// OperationsTeam overrides the suggested team (operations_ksa or operations_uae).
	OperationsTeam string `json:"operations_team"`
	Notes          string `json:"notes"`
}

type RejectTravelRequestDTO struct {
	Reason string `json:"reason"`
}

type BookingDraftDTO struct {
	Type             string `json:"type" example:"flight"`
	Provider         string `json:"provider"`
	BookingReference string `json:"booking_reference"`
	Cost             Amount `json:"cost" swaggertype:"string"`
	PerDiemRate      Amount `json:"per_diem_rate" swaggertype:"string"`
}

type BookingsDTO struct {
	Bookings []BookingDraftDTO `json:"bookings"`
}

type CompleteTravelRequestDTO struct {
	Bookings []BookingDraftDTO `json:"bookings"`
	Notes    string            `json:"notes"`
}

type TravelRequestListFilter struct {
	Statuses       []travel.Status
	Mine           bool
	TravelerID     *uuid.UUID
	ProjectID      *uuid.UUID
	OperationsTeam travel.Role
	Search         string
	Page           int
	Limit          int
}

type UserSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
}

type BookingResponse struct {
	ID               string  `json:"id"`
	Type             string  `json:"type"`
	Provider         string  `json:"provider"`
	BookingReference string  `json:"booking_reference"`
	Cost             string  `json:"cost"`
	PerDiemRate      *string `json:"per_diem_rate"`
	CreatedAt        string  `json:"created_at"`
}

type TravelRequestResponse struct {
	ID                  string            `json:"id"`
	Traveler            *UserSummary      `json:"traveler"`
	Requester           *UserSummary      `json:"requester"`
	PMApprover          *UserSummary      `json:"pm_approver"`
	PMApprovedAt        *string           `json:"pm_approved_at"`
	ProjectID           *string           `json:"project_id"`
	ProjectRef          string            `json:"project_ref,omitempty"`
	ProjectName         string            `json:"project_name,omitempty"`
	Origin              string            `json:"origin"`
	Destination         string            `json:"destination"`
	Destinations        []string          `json:"destinations"`
	Route               string            `json:"route"`
	DepartureDate       string            `json:"departure_date"`
	ReturnDate          string            `json:"return_date"`
	TripDays            int               `json:"trip_days"`
	Purpose             string            `json:"purpose"`
	CustomPurpose       string            `json:"custom_purpose,omitempty"`
	EstimatedFlightCost *string           `json:"estimated_flight_cost"`
	EstimatedHotelCost  *string           `json:"estimated_hotel_cost"`
	EstimatedOtherCost  *string           `json:"estimated_other_cost"`
	EstimatedTotalCost  *string           `json:"estimated_total_cost"`
	ActualTotalCost     *string           `json:"actual_total_cost"`
	Status              travel.Badge      `json:"status"`
	RejectionReason     string            `json:"rejection_reason,omitempty"`
	OperationsTeam      string            `json:"operations_team,omitempty"`
	CompletedBy         *string           `json:"completed_by"`
	CompletedAt         *string           `json:"completed_at"`
	CancelledAt         *string           `json:"cancelled_at"`
	Notes               string            `json:"notes,omitempty"`
	Bookings            []BookingResponse `json:"bookings"`
	CreatedAt           string            `json:"created_at"`
	UpdatedAt           string            `json:"updated_at"`
}

// --- Interface ---

type TravelRequestService interface {
	Submit(ctx context.Context, actor Actor, req SubmitTravelRequestDTO) (*TravelRequestResponse, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*TravelRequestResponse, error)
	List(ctx context.Context, actor Actor, filter TravelRequestListFilter) ([]TravelRequestResponse, int64, error)
	Approve(ctx context.Context, actor Actor, id uuid.UUID, req ApproveTravelRequestDTO) (*TravelRequestResponse, error)
	Reject(ctx context.Context, actor Actor, id uuid.UUID, req RejectTravelRequestDTO) (*TravelRequestResponse, error)
	AddBookings(ctx context.Context, actor Actor, id uuid.UUID, req BookingsDTO) (*TravelRequestResponse, error)
	Complete(ctx context.Context, actor Actor, id uuid.UUID, req CompleteTravelRequestDTO) (*TravelRequestResponse, error)
	Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*TravelRequestResponse, error)
}

// TravelRequestDeps wires the travel request service. Events, Mail and Now are optional.
type TravelRequestDeps struct {
	Tx       repository.TransactionManager
	Requests repository.TravelRequestRepository
	Bookings repository.BookingRepository
	Users    repository.UserRepository
	Projects repository.ProjectRepository
	Audit    repository.AuditRepository
	Policy   travel.ApprovalPolicy
	Events   EventPublisher
	Mail     notify.Sender
	Now      func() time.Time
}

type travelRequestService struct {
	tx       repository.TransactionManager
	requests repository.TravelRequestRepository
	bookings repository.BookingRepository
	users    repository.UserRepository
	projects repository.ProjectRepository
	audit    repository.AuditRepository
	policy   travel.ApprovalPolicy
	events   EventPublisher
	mail     notify.Sender
	now      func() time.Time
}

func NewTravelRequestService(d TravelRequestDeps) TravelRequestService {
	s := &travelRequestService{
		tx:       d.Tx,
		requests: d.Requests,
		bookings: d.Bookings,
		users:    d.Users,
		projects: d.Projects,
		audit:    d.Audit,
		policy:   d.Policy,
		events:   d.Events,
		mail:     d.Mail,
		now:      d.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.mail == nil {
		s.mail = notify.Noop{}
	}
	return s
}

// --- Implementation ---

func (s *travelRequestService) Submit(ctx context.Context, actor Actor, req SubmitTravelRequestDTO) (*TravelRequestResponse, error) {
	travelerID := actor.UserID
	if strings.TrimSpace(req.TravelerID) != "" {
		parsed, err := uuid.Parse(strings.TrimSpace(req.TravelerID))
		if err != nil {
			return nil, travel.ValidationError{Field: "traveler_id", Message: "traveler_id must be a valid id"}
		}
		travelerID = parsed
	}

	legs := make([]string, 0, len(req.Destinations))
	for _, leg := range req.Destinations {
		legs = append(legs, strings.TrimSpace(leg))
	}
	destination := strings.TrimSpace(req.Destination)

	sub := travel.Submission{
		Origin:        strings.TrimSpace(req.Origin),
		Destination:   destination,
		Destinations:  legs,
		DepartureDate: req.DepartureDate.Time,
		ReturnDate:    req.ReturnDate.Time,
		Purpose:       travel.Purpose(strings.TrimSpace(req.Purpose)),
		ProjectRef:    strings.TrimSpace(req.ProjectID),
		CustomPurpose: strings.TrimSpace(req.CustomPurpose),
	}
	if err := travel.ValidateSubmission(sub, s.now()); err != nil {
		return nil, err
	}
	estimates := []struct {
		field  string
		amount Amount
	}{
		{"estimated_flight_cost", req.EstimatedFlightCost},
		{"estimated_hotel_cost", req.EstimatedHotelCost},
		{"estimated_other_cost", req.EstimatedOtherCost},
	}
	for _, e := range estimates {
		if e.amount.Value != nil && e.amount.Value.IsNegative() {
			return nil, travel.ValidationError{Field: e.field, Message: "cost cannot be negative"}
		}
	}
	if destination == "" {
		destination = legs[0]
	}

	if _, err := s.users.FindByID(ctx, travelerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, travel.ValidationError{Field: "traveler_id", Message: "traveler not found"}
		}
		return nil, fmt.Errorf("failed to load traveler: %w", err)
	}

	var projectID *uuid.UUID
	if sub.ProjectRef != "" {
		project, err := s.resolveProject(ctx, sub.ProjectRef)
		if err != nil {
			return nil, err
		}
		projectID = &project.ID
	}

	tr := model.TravelRequest{
		TravelerID:          travelerID,
		RequesterID:         actor.UserID,
		ProjectID:           projectID,
		ProjectRef:          sub.ProjectRef,
		Origin:              sub.Origin,
		Destination:         destination,
		Destinations:        legs,
		DepartureDate:       sub.DepartureDate,
		ReturnDate:          sub.ReturnDate,
		Purpose:             sub.Purpose,
		CustomPurpose:       sub.CustomPurpose,
		EstimatedFlightCost: req.EstimatedFlightCost.Value,
		EstimatedHotelCost:  req.EstimatedHotelCost.Value,
		EstimatedOtherCost:  req.EstimatedOtherCost.Value,
		Status:              travel.StatusSubmitted,
		Notes:               strings.TrimSpace(req.Notes),
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requests.Create(txCtx, &tr); err != nil {
			return fmt.Errorf("failed to create travel request: %w", err)
		}
		return s.writeAudit(txCtx, actor, model.ActionSubmitTravelRequest, tr, map[string]interface{}{
			"traveler_id": travelerID.String(),
			"route":       tr.Route(),
			"purpose":     tr.Purpose,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.afterChange(ctx, tr.ID, false)
}

// resolveProject reconciles a caller-supplied project reference, either a
// local id or a roster id, to the local project row.
func (s *travelRequestService) resolveProject(ctx context.Context, ref string) (*model.Project, error) {
	var (
		project *model.Project
		err     error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		project, err = s.projects.FindByID(ctx, id)
	} else {
		project, err = s.projects.FindByZohoID(ctx, ref)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, travel.ValidationError{Field: "project_id", Message: "project not found"}
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return project, nil
}

func (s *travelRequestService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*TravelRequestResponse, error) {
	tr, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "travel request")
	}
	if !s.canView(actor, tr) {
		return nil, fmt.Errorf("%w: travel request %s", ErrForbidden, id)
	}
	res := toTravelRequestResponse(ctx, *tr)
	return &res, nil
}

func (s *travelRequestService) List(ctx context.Context, actor Actor, filter TravelRequestListFilter) ([]TravelRequestResponse, int64, error) {
	p := pagination.New(filter.Page, filter.Limit)

	repoFilter := repository.TravelRequestFilter{
		Statuses:       filter.Statuses,
		TravelerID:     filter.TravelerID,
		ProjectID:      filter.ProjectID,
		OperationsTeam: filter.OperationsTeam,
		Search:         strings.TrimSpace(filter.Search),
		Offset:         p.Offset,
		Limit:          p.Limit,
	}
	if filter.Mine || !s.seesAll(actor) {
		me := actor.UserID
		repoFilter.ParticipantID = &me
	}

	rows, total, err := s.requests.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list travel requests: %w", err)
	}

	result := make([]TravelRequestResponse, 0, len(rows))
	for _, tr := range rows {
		result = append(result, toTravelRequestResponse(ctx, tr))
	}
	return result, total, nil
}

func (s *travelRequestService) Approve(ctx context.Context, actor Actor, id uuid.UUID, req ApproveTravelRequestDTO) (*TravelRequestResponse, error) {
	if !s.policy.CanApprove(actor.Role) {
		return nil, fmt.Errorf("%w: role %s cannot approve travel requests", ErrForbidden, actor.Role)
	}

	var override travel.Role
	if team := strings.TrimSpace(req.OperationsTeam); team != "" {
		role, err := travel.ParseRole(team)
		if err != nil || !role.IsOperations() {
			return nil, travel.ValidationError{Field: "operations_team", Message: "operations_team must be operations_ksa or operations_uae"}
		}
		override = role
	}

	return s.transition(ctx, actor, id, transitionStep{
		to:     travel.StatusPMApproved,
		action: model.ActionApproveTravelRequest,
		apply: func(_ context.Context, tr *model.TravelRequest) (map[string]interface{}, error) {
			now := s.now()
			approver := actor.UserID
			tr.PMApproverID = &approver
			tr.PMApprovedAt = &now

			suggested := travel.SuggestOperationsRole(tr.Destination)
			tr.OperationsTeam = suggested
			if override != "" {
				tr.OperationsTeam = override
			}
			appendNote(tr, req.Notes)

			return map[string]interface{}{
				"operations_team": tr.OperationsTeam,
				"suggested_team":  suggested,
			}, nil
		},
	})
}

func (s *travelRequestService) Reject(ctx context.Context, actor Actor, id uuid.UUID, req RejectTravelRequestDTO) (*TravelRequestResponse, error) {
	if !s.policy.CanApprove(actor.Role) {
		return nil, fmt.Errorf("%w: role %s cannot reject travel requests", ErrForbidden, actor.Role)
	}

	return s.transition(ctx, actor, id, transitionStep{
		to:     travel.StatusPMRejected,
		action: model.ActionRejectTravelRequest,
		apply: func(_ context.Context, tr *model.TravelRequest) (map[string]interface{}, error) {
			now := s.now()
			approver := actor.UserID
			tr.PMApproverID = &approver
			tr.PMApprovedAt = &now
			tr.RejectionReason = strings.TrimSpace(req.Reason)
			return map[string]interface{}{"reason": tr.RejectionReason}, nil
		},
	})
}

func (s *travelRequestService) AddBookings(ctx context.Context, actor Actor, id uuid.UUID, req BookingsDTO) (*TravelRequestResponse, error) {
	if !s.policy.CanComplete(actor.Role) {
		return nil, fmt.Errorf("%w: only operations can add bookings", ErrForbidden)
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		tr, err := s.requests.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return notFound(err, "travel request")
		}
		if tr.Status != travel.StatusPMApproved {
			return fmt.Errorf("%w: bookings can only be added to a %s request, this one is %s",
				ErrInvalidTransition, travel.StatusPMApproved, tr.Status)
		}

		stored, err := s.storeBookings(txCtx, actor, tr, req.Bookings)
		if err != nil {
			return err
		}
		return s.writeAudit(txCtx, actor, model.ActionAddBookings, *tr, map[string]interface{}{
			"bookings": len(stored),
		})
	})
	if err != nil {
		return nil, err
	}

	return s.afterChange(ctx, id, false)
}

func (s *travelRequestService) Complete(ctx context.Context, actor Actor, id uuid.UUID, req CompleteTravelRequestDTO) (*TravelRequestResponse, error) {
	if !s.policy.CanComplete(actor.Role) {
		return nil, fmt.Errorf("%w: only operations can complete travel requests", ErrForbidden)
	}

	return s.transition(ctx, actor, id, transitionStep{
		to:     travel.StatusOperationsCompleted,
		action: model.ActionCompleteTravelRequest,
		apply: func(txCtx context.Context, tr *model.TravelRequest) (map[string]interface{}, error) {
			stored, err := s.storeBookings(txCtx, actor, tr, req.Bookings)
			if err != nil {
				return nil, err
			}

			all, err := s.bookings.ListByRequest(txCtx, tr.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to load bookings: %w", err)
			}
			costs := make([]decimal.Decimal, 0, len(all))
			for _, b := range all {
				costs = append(costs, b.Cost)
			}
			total := travel.SumCosts(costs)

			now := s.now()
			completedBy := actor.UserID
			tr.ActualTotalCost = &total
			tr.CompletedBy = &completedBy
			tr.CompletedAt = &now
			appendNote(tr, req.Notes)

			return map[string]interface{}{
				"bookings_added":    len(stored),
				"actual_total_cost": total.StringFixed(2),
			}, nil
		},
	})
}

func (s *travelRequestService) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*TravelRequestResponse, error) {
	return s.transition(ctx, actor, id, transitionStep{
		to:     travel.StatusCancelled,
		action: model.ActionCancelTravelRequest,
		authorize: func(tr *model.TravelRequest) error {
			if tr.RequesterID != actor.UserID && !actor.IsAdmin() {
				return fmt.Errorf("%w: only the requester or an admin can cancel", ErrForbidden)
			}
			return nil
		},
		apply: func(_ context.Context, tr *model.TravelRequest) (map[string]interface{}, error) {
			now := s.now()
			tr.CancelledAt = &now
			return nil, nil
		},
	})
}

type transitionStep struct {
	to        travel.Status
	action    string
	authorize func(tr *model.TravelRequest) error
	apply     func(txCtx context.Context, tr *model.TravelRequest) (map[string]interface{}, error)
}

// transition locks the request row, checks the state guard, applies the
// mutation and writes the audit entry in one transaction.
func (s *travelRequestService) transition(ctx context.Context, actor Actor, id uuid.UUID, step transitionStep) (*TravelRequestResponse, error) {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		tr, err := s.requests.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return notFound(err, "travel request")
		}
		if step.authorize != nil {
			if err := step.authorize(tr); err != nil {
				return err
			}
		}
		if !travel.CanTransition(tr.Status, step.to) {
			return fmt.Errorf("%w: cannot move travel request from %s to %s", ErrInvalidTransition, tr.Status, step.to)
		}

		from := tr.Status
		details, err := step.apply(txCtx, tr)
		if err != nil {
			return err
		}
		tr.Status = step.to

		if err := s.requests.Update(txCtx, tr); err != nil {
			return fmt.Errorf("failed to update travel request: %w", err)
		}

		if details == nil {
			details = map[string]interface{}{}
		}
		details["from"] = from
		details["to"] = step.to
		return s.writeAudit(txCtx, actor, step.action, *tr, details)
	})
	if err != nil {
		return nil, err
	}

	return s.afterChange(ctx, id, true)
}

func (s *travelRequestService) storeBookings(ctx context.Context, actor Actor, tr *model.TravelRequest, drafts []BookingDraftDTO) ([]model.Booking, error) {
	in := make([]travel.BookingDraft, 0, len(drafts))
	for _, d := range drafts {
		in = append(in, travel.BookingDraft{
			Type:        d.Type,
			Provider:    d.Provider,
			Reference:   d.BookingReference,
			Cost:        d.Cost.Value,
			PerDiemRate: d.PerDiemRate.Value,
		})
	}
	prepared, err := travel.PrepareBookings(in, tr.DepartureDate, tr.ReturnDate)
	if err != nil {
		return nil, err
	}

	createdBy := actor.UserID
	rows := make([]model.Booking, 0, len(prepared))
	for _, p := range prepared {
		rows = append(rows, model.Booking{
			TravelRequestID:  tr.ID,
			Type:             p.Type,
			Provider:         p.Provider,
			BookingReference: p.Reference,
			Cost:             p.Cost,
			PerDiemRate:      p.PerDiemRate,
			CreatedBy:        &createdBy,
		})
	}
	if err := s.bookings.CreateBatch(ctx, rows); err != nil {
		return nil, fmt.Errorf("failed to store bookings: %w", err)
	}
	return rows, nil
}

func (s *travelRequestService) writeAudit(ctx context.Context, actor Actor, action string, tr model.TravelRequest, details map[string]interface{}) error {
	raw, _ := json.Marshal(details)
	userID := actor.UserID
	entry := model.AuditLog{
		UserID:     &userID,
		Action:     action,
		EntityID:   tr.ID.String(),
		EntityName: model.ClipEntityName(tr.Route()),
		Details:    string(raw),
	}
	if err := s.audit.Log(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// afterChange reloads the request, broadcasts the change and, for status
// changes, emails the traveler. Broadcast and email are best effort.
func (s *travelRequestService) afterChange(ctx context.Context, id uuid.UUID, statusChanged bool) (*TravelRequestResponse, error) {
	tr, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "travel request")
	}

	if s.events != nil {
		s.events.Publish(EventTravelRequestUpdated, map[string]interface{}{
			"id":              tr.ID.String(),
			"status":          tr.Status,
			"operations_team": tr.OperationsTeam,
		})
	}
	if statusChanged {
		s.notifyTraveler(ctx, *tr)
	}

	res := toTravelRequestResponse(ctx, *tr)
	return &res, nil
}

func (s *travelRequestService) notifyTraveler(ctx context.Context, tr model.TravelRequest) {
	if tr.Traveler == nil || tr.Traveler.Email == "" {
		return
	}
	extra := ""
	switch tr.Status {
	case travel.StatusPMRejected:
		extra = tr.RejectionReason
	case travel.StatusOperationsCompleted:
		if tr.ActualTotalCost != nil {
			extra = tr.ActualTotalCost.StringFixed(2)
		}
	}
	data := map[string]any{
		"Name":      tr.Traveler.Name,
		"Route":     tr.Route(),
		"Departure": formatDate(tr.DepartureDate),
		"Status":    i18n.Label(ctx, travel.Classify(string(tr.Status))),
		"Extra":     extra,
	}
	msg := notify.Message{
		To:      tr.Traveler.Email,
		Subject: i18n.T(ctx, "notify.subject", data),
		Body:    i18n.T(ctx, "notify.body", data),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		log.Printf("WARNING: failed to notify traveler of request %s: %v", tr.ID, err)
	}
}

// seesAll reports whether the actor's role works across everyone's requests.
func (s *travelRequestService) seesAll(actor Actor) bool {
	return actor.Role == travel.RoleAdmin || actor.Role.IsOperations() || s.policy.CanApprove(actor.Role)
}

func (s *travelRequestService) canView(actor Actor, tr *model.TravelRequest) bool {
	return s.seesAll(actor) || tr.TravelerID == actor.UserID || tr.RequesterID == actor.UserID
}

func appendNote(tr *model.TravelRequest, note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	if tr.Notes == "" {
		tr.Notes = note
		return
	}
	tr.Notes += "\n" + note
}

func toUserSummary(u *model.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID.String(), Name: u.Name, Email: u.Email, Department: u.Department}
}

func toBookingResponse(b model.Booking) BookingResponse {
	return BookingResponse{
		ID:               b.ID.String(),
		Type:             string(b.Type),
		Provider:         b.Provider,
		BookingReference: b.BookingReference,
		Cost:             b.Cost.StringFixed(2),
		PerDiemRate:      formatMoney(b.PerDiemRate),
		CreatedAt:        b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func estimatedTotal(tr model.TravelRequest) *decimal.Decimal {
	var parts []decimal.Decimal
	for _, c := range []*decimal.Decimal{tr.EstimatedFlightCost, tr.EstimatedHotelCost, tr.EstimatedOtherCost} {
		if c != nil {
			parts = append(parts, *c)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	total := travel.SumCosts(parts)
	return &total
}

func toTravelRequestResponse(ctx context.Context, tr model.TravelRequest) TravelRequestResponse {
	destinations := []string(tr.Destinations)
	if destinations == nil {
		destinations = []string{}
	}
	bookings := make([]BookingResponse, 0, len(tr.Bookings))
	for _, b := range tr.Bookings {
		bookings = append(bookings, toBookingResponse(b))
	}

	res := TravelRequestResponse{
		ID:                  tr.ID.String(),
		Traveler:            toUserSummary(tr.Traveler),
		Requester:           toUserSummary(tr.Requester),
		PMApprover:          toUserSummary(tr.PMApprover),
		PMApprovedAt:        formatTime(tr.PMApprovedAt),
		ProjectID:           formatUUID(tr.ProjectID),
		ProjectRef:          tr.ProjectRef,
		Origin:              tr.Origin,
		Destination:         tr.Destination,
		Destinations:        destinations,
		Route:               tr.Route(),
		DepartureDate:       formatDate(tr.DepartureDate),
		ReturnDate:          formatDate(tr.ReturnDate),
		TripDays:            travel.TripDays(tr.DepartureDate, tr.ReturnDate),
		Purpose:             string(tr.Purpose),
		CustomPurpose:       tr.CustomPurpose,
		EstimatedFlightCost: formatMoney(tr.EstimatedFlightCost),
		EstimatedHotelCost:  formatMoney(tr.EstimatedHotelCost),
		EstimatedOtherCost:  formatMoney(tr.EstimatedOtherCost),
		EstimatedTotalCost:  formatMoney(estimatedTotal(tr)),
		ActualTotalCost:     formatMoney(tr.ActualTotalCost),
		Status:              i18n.Localize(ctx, travel.Classify(string(tr.Status))),
		RejectionReason:     tr.RejectionReason,
		OperationsTeam:      string(tr.OperationsTeam),
		CompletedBy:         formatUUID(tr.CompletedBy),
		CompletedAt:         formatTime(tr.CompletedAt),
		CancelledAt:         formatTime(tr.CancelledAt),
		Notes:               tr.Notes,
		Bookings:            bookings,
		CreatedAt:           tr.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:           tr.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if tr.Project != nil {
		res.ProjectName = tr.Project.Name
	}
	return res
}
