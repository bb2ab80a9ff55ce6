package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"traveldesk/internal/model"
	"traveldesk/internal/travel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

type harness struct {
	svc      TravelRequestService
	requests *fakeRequests
	bookings *fakeBookings
	users    *fakeUsers
	audit    *fakeAudit
	events   *fakePublisher
	mail     *fakeMail

	manager  *model.User
	pm       *model.User
	opsKSA   *model.User
	opsUAE   *model.User
	admin    *model.User
	traveler *model.User
	project  *model.Project
}

func newHarness(t *testing.T, approvers ...travel.Role) *harness {
	t.Helper()
	mk := func(name string, role travel.Role) *model.User {
		return &model.User{ID: uuid.New(), Name: name, Email: name + "@example.com", Role: role}
	}
	h := &harness{
		manager:  mk("maha", travel.RoleManager),
		pm:       mk("omar", travel.RolePM),
		opsKSA:   mk("faisal", travel.RoleOperationsKSA),
		opsUAE:   mk("layla", travel.RoleOperationsUAE),
		admin:    mk("root", travel.RoleAdmin),
		traveler: mk("sara", travel.RoleManager),
	}
	zoho := "ZP-100"
	budget := decimal.NewFromInt(50000)
	h.project = &model.Project{ID: uuid.New(), ZohoID: &zoho, Code: "FAL", Name: "Falcon", TravelBudget: &budget}

	h.users = newFakeUsers(h.manager, h.pm, h.opsKSA, h.opsUAE, h.admin, h.traveler)
	h.bookings = &fakeBookings{}
	h.requests = newFakeRequests(h.users, h.bookings)
	h.requests.projects = newFakeProjects(h.project)
	h.audit = &fakeAudit{}
	h.events = &fakePublisher{}
	h.mail = &fakeMail{}

	h.svc = NewTravelRequestService(TravelRequestDeps{
		Tx:       fakeTx{},
		Requests: h.requests,
		Bookings: h.bookings,
		Users:    h.users,
		Projects: h.requests.projects,
		Audit:    h.audit,
		Policy:   travel.NewApprovalPolicy(approvers),
		Events:   h.events,
		Mail:     h.mail,
		Now:      func() time.Time { return testNow },
	})
	return h
}

func day(y int, m time.Month, d int) Date {
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (h *harness) submit(t *testing.T, actor *model.User, dto SubmitTravelRequestDTO) *TravelRequestResponse {
	t.Helper()
	res, err := h.svc.Submit(context.Background(), ActorFor(*actor), dto)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return res
}

func dubaiTrip(traveler uuid.UUID) SubmitTravelRequestDTO {
	return SubmitTravelRequestDTO{
		TravelerID:    traveler.String(),
		Origin:        "Riyadh",
		Destination:   "Dubai",
		DepartureDate: day(2026, 11, 3),
		ReturnDate:    day(2026, 11, 7),
		Purpose:       "sales",
	}
}

func mustID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("parse id %q: %v", s, err)
	}
	return id
}

func assertValidationField(t *testing.T, err error, field string) {
	t.Helper()
	var ve travel.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError on %s, got %v", field, err)
	}
	if ve.Field != field {
		t.Fatalf("expected field %s, got %s (%s)", field, ve.Field, ve.Message)
	}
}

func TestSubmitReconcilesProjectAndDefaults(t *testing.T) {
	h := newHarness(t)

	res := h.submit(t, h.manager, SubmitTravelRequestDTO{
		TravelerID:          h.traveler.ID.String(),
		ProjectID:           "ZP-100",
		Origin:              " Riyadh ",
		Destinations:        []string{"Dubai", " Abu Dhabi"},
		DepartureDate:       day(2026, 11, 3),
		ReturnDate:          day(2026, 11, 7),
		Purpose:             "delivery",
		EstimatedFlightCost: NewAmount("1200"),
		EstimatedHotelCost:  NewAmount("800.5"),
	})

	if res.Status.Status != "submitted" || res.Status.Tier != travel.TierWarning || res.Status.Label != "Pending Approval" {
		t.Fatalf("unexpected status badge: %+v", res.Status)
	}
	if res.ProjectID == nil || *res.ProjectID != h.project.ID.String() {
		t.Fatalf("expected canonical project id %s, got %v", h.project.ID, res.ProjectID)
	}
	if res.ProjectRef != "ZP-100" {
		t.Fatalf("expected raw project ref kept, got %q", res.ProjectRef)
	}
	if res.ProjectName != "Falcon" {
		t.Fatalf("expected project loaded with the request, got %q", res.ProjectName)
	}
	if res.Destination != "Dubai" {
		t.Fatalf("expected destination to fall back to first leg, got %q", res.Destination)
	}
	if res.Route != "Riyadh → Dubai → Abu Dhabi" {
		t.Fatalf("unexpected route %q", res.Route)
	}
	if res.TripDays != 4 {
		t.Fatalf("expected 4 trip days, got %d", res.TripDays)
	}
	if res.EstimatedTotalCost == nil || *res.EstimatedTotalCost != "2000.50" {
		t.Fatalf("unexpected estimated total %v", res.EstimatedTotalCost)
	}
	if res.Traveler == nil || res.Traveler.ID != h.traveler.ID.String() {
		t.Fatalf("unexpected traveler %+v", res.Traveler)
	}
	if res.Requester == nil || res.Requester.ID != h.manager.ID.String() {
		t.Fatalf("unexpected requester %+v", res.Requester)
	}
	if got := h.audit.actions(); len(got) != 1 || got[0] != model.ActionSubmitTravelRequest {
		t.Fatalf("unexpected audit trail %v", got)
	}
	if len(h.events.events) != 1 || h.events.events[0] != EventTravelRequestUpdated {
		t.Fatalf("expected one update event, got %v", h.events.events)
	}
	if len(h.mail.sent) != 0 {
		t.Fatalf("submission should not email the traveler")
	}
}

func TestSubmitValidation(t *testing.T) {
	h := newHarness(t)
	actor := ActorFor(*h.manager)

	cases := []struct {
		name   string
		mutate func(*SubmitTravelRequestDTO)
		field  string
	}{
		{"delivery without project", func(d *SubmitTravelRequestDTO) { d.Purpose = "delivery" }, "project_id"},
		{"other without custom purpose", func(d *SubmitTravelRequestDTO) { d.Purpose = "other" }, "custom_purpose"},
		{"unknown project", func(d *SubmitTravelRequestDTO) { d.Purpose = "delivery"; d.ProjectID = "ZP-999" }, "project_id"},
		{"departure in the past", func(d *SubmitTravelRequestDTO) { d.DepartureDate = day(2026, 10, 18) }, "departure_date"},
		{"return before departure", func(d *SubmitTravelRequestDTO) { d.ReturnDate = day(2026, 11, 2) }, "return_date"},
		{"negative estimate", func(d *SubmitTravelRequestDTO) { d.EstimatedOtherCost = NewAmount("-5") }, "estimated_other_cost"},
		{"unknown traveler", func(d *SubmitTravelRequestDTO) { d.TravelerID = uuid.NewString() }, "traveler_id"},
		{"malformed traveler", func(d *SubmitTravelRequestDTO) { d.TravelerID = "sara" }, "traveler_id"},
		{"missing destination", func(d *SubmitTravelRequestDTO) { d.Destination = "" }, "destination"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dto := dubaiTrip(h.traveler.ID)
			tc.mutate(&dto)
			_, err := h.svc.Submit(context.Background(), actor, dto)
			assertValidationField(t, err, tc.field)
		})
	}
	if len(h.requests.rows) != 0 {
		t.Fatalf("invalid submissions must not be stored")
	}
}

func TestSubmitDepartureTodayIsAllowed(t *testing.T) {
	h := newHarness(t)
	dto := dubaiTrip(h.traveler.ID)
	dto.DepartureDate = day(2026, 10, 19)
	h.submit(t, h.manager, dto)
}

func TestApproveSuggestsOperationsTeamAndNotifies(t *testing.T) {
	h := newHarness(t)
	created := h.submit(t, h.manager, dubaiTrip(h.traveler.ID))
	id := mustID(t, created.ID)

	res, err := h.svc.Approve(context.Background(), ActorFor(*h.pm), id, ApproveTravelRequestDTO{})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if res.Status.Status != "pm_approved" || res.Status.Label != "Approved" {
		t.Fatalf("unexpected status %+v", res.Status)
	}
	if res.OperationsTeam != "operations_uae" {
		t.Fatalf("expected operations_uae for Dubai, got %q", res.OperationsTeam)
	}
	if res.PMApprover == nil || res.PMApprover.ID != h.pm.ID.String() || res.PMApprovedAt == nil {
		t.Fatalf("expected approver recorded, got %+v at %v", res.PMApprover, res.PMApprovedAt)
	}
	if len(h.mail.sent) != 1 || h.mail.sent[0].To != h.traveler.Email {
		t.Fatalf("expected traveler email, got %+v", h.mail.sent)
	}
}

func TestApproveOverrideTeam(t *testing.T) {
	h := newHarness(t)
	created := h.submit(t, h.manager, dubaiTrip(h.traveler.ID))
	id := mustID(t, created.ID)

	_, err := h.svc.Approve(context.Background(), ActorFor(*h.manager), id, ApproveTravelRequestDTO{OperationsTeam: "manager"})
	assertValidationField(t, err, "operations_team")

	res, err := h.svc.Approve(context.Background(), ActorFor(*h.manager), id, ApproveTravelRequestDTO{OperationsTeam: "operations_ksa", Notes: "KSA desk handles this client"})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if res.OperationsTeam != "operations_ksa" {
		t.Fatalf("expected override to win, got %q", res.OperationsTeam)
	}
	if res.Notes != "KSA desk handles this client" {
		t.Fatalf("unexpected notes %q", res.Notes)
	}
}

func TestApproveGuards(t *testing.T) {
	h := newHarness(t)
	created := h.submit(t, h.manager, dubaiTrip(h.traveler.ID))
	id := mustID(t, created.ID)
	ctx := context.Background()

	if _, err := h.svc.Approve(ctx, ActorFor(*h.opsKSA), id, ApproveTravelRequestDTO{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("operations approving: expected ErrForbidden, got %v", err)
	}
	if _, err := h.svc.Approve(ctx, ActorFor(*h.pm), uuid.New(), ApproveTravelRequestDTO{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing request: expected ErrNotFound, got %v", err)
	}
	if _, err := h.svc.Approve(ctx, ActorFor(*h.pm), id, ApproveTravelRequestDTO{}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := h.svc.Approve(ctx, ActorFor(*h.manager), id, ApproveTravelRequestDTO{}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second approval: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := h.svc.Reject(ctx, ActorFor(*h.manager), id, RejectTravelRequestDTO{}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("reject after approval: expected ErrInvalidTransition, got %v", err)
	}
}

func TestConfiguredApproverRoles(t *testing.T) {
	h := newHarness(t, travel.RolePM)
	created := h.submit(t, h.pm, dubaiTrip(h.traveler.ID))
	id := mustID(t, created.ID)

	if _, err := h.svc.Approve(context.Background(), ActorFor(*h.manager), id, ApproveTravelRequestDTO{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("manager outside configured approvers: expected ErrForbidden, got %v", err)
	}
	if _, err := h.svc.Approve(context.Background(), ActorFor(*h.pm), id, ApproveTravelRequestDTO{}); err != nil {
		t.Fatalf("pm approve: %v", err)
	}
}

func TestRejectStoresReason(t *testing.T) {
	h := newHarness(t)
	created := h.submit(t, h.manager, dubaiTrip(h.traveler.ID))
	id := mustID(t, created.ID)

	res, err := h.svc.Reject(context.Background(), ActorFor(*h.pm), id, RejectTravelRequestDTO{Reason: " over budget "})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if res.Status.Status != "pm_rejected" || res.Status.Tier != travel.TierDanger {
		t.Fatalf("unexpected status %+v", res.Status)
	}
	if res.RejectionReason != "over budget" {
		t.Fatalf("unexpected reason %q", res.RejectionReason)
	}

	_, err = h.svc.Complete(context.Background(), ActorFor(*h.opsUAE), id, CompleteTravelRequestDTO{})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("completing a rejected request: expected ErrInvalidTransition, got %v", err)
	}
}

func TestCompleteSumsAllBookings(t *testing.T) {
	h := newHarness(t)
	created := h.submit(t, h.manager, dubaiTrip(h.traveler.ID))
	id := mustID(t, created.ID)
	ctx := context.Background()
	ops := ActorFor(*h.opsUAE)

	if _, err := h.svc.AddBookings(ctx, ops, id, BookingsDTO{}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("bookings before approval: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := h.svc.Approve(ctx, ActorFor(*h.pm), id, ApproveTravelRequestDTO{}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	staged, err := h.svc.AddBookings(ctx, ops, id, BookingsDTO{Bookings: []BookingDraftDTO{
		{Type: "hotel", Provider: "Marriott", Cost: NewAmount("300")},
	}})
	if err != nil {
		t.Fatalf("add bookings: %v", err)
	}
	if staged.Status.Status != "pm_approved" || len(staged.Bookings) != 1 {
		t.Fatalf("expected staged booking on approved request, got %s with %d bookings", staged.Status.Status, len(staged.Bookings))
	}

	res, err := h.svc.Complete(ctx, ops, id, CompleteTravelRequestDTO{Bookings: []BookingDraftDTO{
		{Type: "flight", Provider: "Saudia", BookingReference: "SV123", Cost: NewAmount("1200")},
		{Type: "per_diem", PerDiemRate: NewAmount("100")},
		{Type: "", Cost: NewAmount("999")},
		{Type: "car_rental"},
	}})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if res.Status.Status != "operations_completed" {
		t.Fatalf("unexpected status %s", res.Status.Status)
	}
	if res.ActualTotalCost == nil || *res.ActualTotalCost != "1900.00" {
		t.Fatalf("expected actual total 1900.00, got %v", res.ActualTotalCost)
	}
	if len(res.Bookings) != 3 {
		t.Fatalf("expected 3 stored bookings, got %d", len(res.Bookings))
	}
	if res.CompletedBy == nil || *res.CompletedBy != h.opsUAE.ID.String() || res.CompletedAt == nil {
		t.Fatalf("expected completion recorded, got %v at %v", res.CompletedBy, res.CompletedAt)
	}

	want := []string{model.ActionSubmitTravelRequest, model.ActionApproveTravelRequest, model.ActionAddBookings, model.ActionCompleteTravelRequest}
	got := h.audit.actions()
	if len(got) != len(want) {
		t.Fatalf("unexpected audit trail %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("audit[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestCompleteWithoutBookingsRecordsZero(t *testing.T) {
	h := newHarness(t)
	created := h.submit(t, h.manager, dubaiTrip(h.traveler.ID))
	id := mustID(t, created.ID)
	ctx := context.Background()
	if _, err := h.svc.Approve(ctx, ActorFor(*h.pm), id, ApproveTravelRequestDTO{}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// KSA desk may complete a request routed to UAE.
	res, err := h.svc.Complete(ctx, ActorFor(*h.opsKSA), id, CompleteTravelRequestDTO{})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if res.ActualTotalCost == nil || *res.ActualTotalCost != "0.00" {
		t.Fatalf("expected zero actual cost, got %v", res.ActualTotalCost)
	}
}

func TestCompleteRequiresOperationsRole(t *testing.T) {
	h := newHarness(t)
	created := h.submit(t, h.manager, dubaiTrip(h.traveler.ID))
	id := mustID(t, created.ID)
	ctx := context.Background()
	if _, err := h.svc.Approve(ctx, ActorFor(*h.pm), id, ApproveTravelRequestDTO{}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	for _, u := range []*model.User{h.manager, h.pm, h.admin} {
		if _, err := h.svc.Complete(ctx, ActorFor(*u), id, CompleteTravelRequestDTO{}); !errors.Is(err, ErrForbidden) {
			t.Fatalf("%s completing: expected ErrForbidden, got %v", u.Role, err)
		}
	}

	h.admin.ActiveRole = travel.RoleOperationsKSA
	if _, err := h.svc.Complete(ctx, ActorFor(*h.admin), id, CompleteTravelRequestDTO{}); err != nil {
		t.Fatalf("admin acting as operations: %v", err)
	}
}

func TestCompleteRejectsInvalidBookingDraft(t *testing.T) {
	h := newHarness(t)
	created := h.submit(t, h.manager, dubaiTrip(h.traveler.ID))
	id := mustID(t, created.ID)
	ctx := context.Background()
	if _, err := h.svc.Approve(ctx, ActorFor(*h.pm), id, ApproveTravelRequestDTO{}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	_, err := h.svc.Complete(ctx, ActorFor(*h.opsUAE), id, CompleteTravelRequestDTO{Bookings: []BookingDraftDTO{
		{Type: "flight", Cost: NewAmount("100")},
		{Type: "train", Cost: NewAmount("50")},
	}})
	assertValidationField(t, err, "bookings[1].type")

	tr, _ := h.requests.FindByIDForUpdate(ctx, id)
	if tr.Status != travel.StatusPMApproved {
		t.Fatalf("failed completion must not change status, got %s", tr.Status)
	}
}

func TestCancel(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	created := h.submit(t, h.manager, dubaiTrip(h.traveler.ID))
	id := mustID(t, created.ID)

	if _, err := h.svc.Cancel(ctx, ActorFor(*h.pm), id); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-requester cancelling: expected ErrForbidden, got %v", err)
	}
	res, err := h.svc.Cancel(ctx, ActorFor(*h.manager), id)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if res.Status.Status != "cancelled" || res.Status.Tier != travel.TierNeutral || res.CancelledAt == nil {
		t.Fatalf("unexpected cancelled response %+v", res.Status)
	}

	second := h.submit(t, h.manager, dubaiTrip(h.traveler.ID))
	secondID := mustID(t, second.ID)
	if _, err := h.svc.Approve(ctx, ActorFor(*h.pm), secondID, ApproveTravelRequestDTO{}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := h.svc.Cancel(ctx, ActorFor(*h.admin), secondID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cancelling approved request: expected ErrInvalidTransition, got %v", err)
	}
}

func TestListAndGetVisibility(t *testing.T) {
	h := newHarness(t, travel.RolePM, travel.RoleAdmin)
	ctx := context.Background()
	mine := h.submit(t, h.manager, dubaiTrip(h.manager.ID))
	other := h.submit(t, h.pm, dubaiTrip(h.pm.ID))

	if _, _, err := h.svc.List(ctx, ActorFor(*h.manager), TravelRequestListFilter{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if p := h.requests.lastList.ParticipantID; p == nil || *p != h.manager.ID {
		t.Fatalf("expected list scoped to the manager, got %v", p)
	}

	if _, _, err := h.svc.List(ctx, ActorFor(*h.opsKSA), TravelRequestListFilter{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if h.requests.lastList.ParticipantID != nil {
		t.Fatalf("operations should list every request")
	}

	if _, err := h.svc.Get(ctx, ActorFor(*h.manager), mustID(t, mine.ID)); err != nil {
		t.Fatalf("get own request: %v", err)
	}
	if _, err := h.svc.Get(ctx, ActorFor(*h.manager), mustID(t, other.ID)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("get foreign request: expected ErrForbidden, got %v", err)
	}
	if _, err := h.svc.Get(ctx, ActorFor(*h.pm), mustID(t, mine.ID)); err != nil {
		t.Fatalf("approver get: %v", err)
	}
}

func TestSubmitLongRoute(t *testing.T) {
	h := newHarness(t)

	dto := dubaiTrip(h.traveler.ID)
	dto.Destination = ""
	for i := 0; i < 12; i++ {
		dto.Destinations = append(dto.Destinations, "Abu Dhabi International Airport")
	}
	res := h.submit(t, h.traveler, dto)
	if utf8.RuneCountInString(res.Route) <= model.MaxEntityNameLength {
		t.Fatalf("expected a route longer than the audit column, got %d", utf8.RuneCountInString(res.Route))
	}

	entry := h.audit.entries[len(h.audit.entries)-1]
	if n := utf8.RuneCountInString(entry.EntityName); n != model.MaxEntityNameLength {
		t.Fatalf("expected entity name clipped to %d, got %d", model.MaxEntityNameLength, n)
	}
	if !strings.HasSuffix(entry.EntityName, "…") || !strings.HasPrefix(entry.EntityName, "Riyadh → Abu Dhabi") {
		t.Fatalf("unexpected entity name %q", entry.EntityName)
	}

	dto = dubaiTrip(h.traveler.ID)
	dto.Origin = strings.Repeat("R", 300)
	_, err := h.svc.Submit(context.Background(), ActorFor(*h.traveler), dto)
	assertValidationField(t, err, "origin")

	dto = dubaiTrip(h.traveler.ID)
	dto.Destinations = []string{"Dubai", strings.Repeat("a", 256)}
	_, err = h.svc.Submit(context.Background(), ActorFor(*h.traveler), dto)
	assertValidationField(t, err, "destinations[1]")
}

func TestApproveSuggestsFromMainDestination(t *testing.T) {
	h := newHarness(t)

	dto := dubaiTrip(h.traveler.ID)
	dto.Destinations = []string{"Dubai", "Riyadh"}
	id := mustID(t, h.submit(t, h.manager, dto).ID)

	res, err := h.svc.Approve(context.Background(), ActorFor(*h.pm), id, ApproveTravelRequestDTO{})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if res.OperationsTeam != "operations_uae" {
		t.Fatalf("expected team from the main destination Dubai, got %q", res.OperationsTeam)
	}
}
