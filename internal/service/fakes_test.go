package service

import (
	"context"
	"sync"
	"time"

	"traveldesk/internal/model"
	"traveldesk/internal/notify"
	"traveldesk/internal/repository"
	"traveldesk/internal/roster"
	"traveldesk/internal/travel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeTx runs the function inline; fakes share state so there is nothing to roll back.
type fakeTx struct{}

func (fakeTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeUsers struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*model.User
}

func newFakeUsers(users ...*model.User) *fakeUsers {
	f := &fakeUsers{rows: map[uuid.UUID]*model.User{}}
	for _, u := range users {
		f.rows[u.ID] = u
	}
	return f
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.rows[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	var out []model.User
	for _, id := range ids {
		if u, err := f.FindByID(ctx, id); err == nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) List(ctx context.Context, _ string, offset, limit int) ([]model.User, int64, error) {
	all, _ := f.ListAll(ctx)
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeUsers) ListAll(context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.User, 0, len(f.rows))
	for _, u := range f.rows {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) UpdateActiveRole(_ context.Context, id uuid.UUID, role travel.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.ActiveRole = role
	return nil
}

func (f *fakeUsers) UpsertByZohoID(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.ZohoID != nil && user.ZohoID != nil && *u.ZohoID == *user.ZohoID {
			u.Name, u.Email, u.Department = user.Name, user.Email, user.Department
			user.ID = u.ID
			return nil
		}
	}
	user.ID = uuid.New()
	cp := *user
	f.rows[user.ID] = &cp
	return nil
}

type fakeProjects struct {
	rows map[uuid.UUID]*model.Project
}

func newFakeProjects(projects ...*model.Project) *fakeProjects {
	f := &fakeProjects{rows: map[uuid.UUID]*model.Project{}}
	for _, p := range projects {
		f.rows[p.ID] = p
	}
	return f
}

func (f *fakeProjects) FindByID(_ context.Context, id uuid.UUID) (*model.Project, error) {
	if p, ok := f.rows[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProjects) FindByZohoID(_ context.Context, zohoID string) (*model.Project, error) {
	for _, p := range f.rows {
		if p.ZohoID != nil && *p.ZohoID == zohoID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProjects) List(ctx context.Context, _ string, _, _ int) ([]model.Project, int64, error) {
	all, _ := f.ListAll(ctx)
	return all, int64(len(all)), nil
}

func (f *fakeProjects) ListAll(context.Context) ([]model.Project, error) {
	out := make([]model.Project, 0, len(f.rows))
	for _, p := range f.rows {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProjects) UpsertByZohoID(_ context.Context, project *model.Project) error {
	for _, p := range f.rows {
		if p.ZohoID != nil && project.ZohoID != nil && *p.ZohoID == *project.ZohoID {
			p.Name, p.Code = project.Name, project.Code
			project.ID = p.ID
			return nil
		}
	}
	project.ID = uuid.New()
	cp := *project
	f.rows[project.ID] = &cp
	return nil
}

type fakeBookings struct {
	mu   sync.Mutex
	rows []model.Booking
}

func (f *fakeBookings) CreateBatch(_ context.Context, bookings []model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range bookings {
		bookings[i].ID = uuid.New()
		bookings[i].CreatedAt = time.Now()
		f.rows = append(f.rows, bookings[i])
	}
	return nil
}

func (f *fakeBookings) ListByRequest(_ context.Context, requestID uuid.UUID) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Booking
	for _, b := range f.rows {
		if b.TravelRequestID == requestID {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeRequests struct {
	mu       sync.Mutex
	rows     map[uuid.UUID]*model.TravelRequest
	users    *fakeUsers
	projects *fakeProjects
	bookings *fakeBookings
	lastList repository.TravelRequestFilter
}

func newFakeRequests(users *fakeUsers, bookings *fakeBookings) *fakeRequests {
	return &fakeRequests{rows: map[uuid.UUID]*model.TravelRequest{}, users: users, bookings: bookings}
}

func (f *fakeRequests) put(tr model.TravelRequest) *model.TravelRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tr.ID == uuid.Nil {
		tr.ID = uuid.New()
	}
	f.rows[tr.ID] = &tr
	return &tr
}

func (f *fakeRequests) Create(_ context.Context, req *model.TravelRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req.ID = uuid.New()
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	cp := *req
	f.rows[req.ID] = &cp
	return nil
}

func (f *fakeRequests) FindByID(ctx context.Context, id uuid.UUID) (*model.TravelRequest, error) {
	tr, err := f.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if u, err := f.users.FindByID(ctx, tr.TravelerID); err == nil {
		tr.Traveler = u
	}
	if u, err := f.users.FindByID(ctx, tr.RequesterID); err == nil {
		tr.Requester = u
	}
	if tr.PMApproverID != nil {
		if u, err := f.users.FindByID(ctx, *tr.PMApproverID); err == nil {
			tr.PMApprover = u
		}
	}
	if tr.ProjectID != nil && f.projects != nil {
		if p, err := f.projects.FindByID(ctx, *tr.ProjectID); err == nil {
			tr.Project = p
		}
	}
	if f.bookings != nil {
		tr.Bookings, _ = f.bookings.ListByRequest(ctx, tr.ID)
	}
	return tr, nil
}

func (f *fakeRequests) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.TravelRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tr, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *tr
	return &cp, nil
}

func (f *fakeRequests) Update(_ context.Context, req *model.TravelRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[req.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *req
	cp.Traveler, cp.Requester, cp.PMApprover, cp.Project, cp.Bookings = nil, nil, nil, nil, nil
	f.rows[req.ID] = &cp
	return nil
}

func (f *fakeRequests) List(_ context.Context, filter repository.TravelRequestFilter) ([]model.TravelRequest, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList = filter
	var out []model.TravelRequest
	for _, tr := range f.rows {
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, tr.Status) {
			continue
		}
		if filter.ParticipantID != nil && tr.TravelerID != *filter.ParticipantID && tr.RequesterID != *filter.ParticipantID {
			continue
		}
		if filter.OperationsTeam != "" && tr.OperationsTeam != filter.OperationsTeam {
			continue
		}
		out = append(out, *tr)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRequests) ListTrips(context.Context) ([]travel.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []travel.Trip
	for _, tr := range f.rows {
		out = append(out, tr.Trip())
	}
	return out, nil
}

func containsStatus(statuses []travel.Status, s travel.Status) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

type fakeDocs struct {
	rows map[uuid.UUID]*model.EmployeeDocument
	last repository.DocumentFilter
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{rows: map[uuid.UUID]*model.EmployeeDocument{}}
}

func (f *fakeDocs) Create(_ context.Context, doc *model.EmployeeDocument) error {
	doc.ID = uuid.New()
	cp := *doc
	f.rows[doc.ID] = &cp
	return nil
}

func (f *fakeDocs) FindByID(_ context.Context, id uuid.UUID) (*model.EmployeeDocument, error) {
	if d, ok := f.rows[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDocs) Update(_ context.Context, doc *model.EmployeeDocument) error {
	if _, ok := f.rows[doc.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *doc
	f.rows[doc.ID] = &cp
	return nil
}

func (f *fakeDocs) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeDocs) List(_ context.Context, filter repository.DocumentFilter) ([]model.EmployeeDocument, int64, error) {
	f.last = filter
	var out []model.EmployeeDocument
	for _, d := range f.rows {
		if filter.UserID != nil && d.UserID != *filter.UserID {
			continue
		}
		if filter.DocumentType != "" && d.DocumentType != filter.DocumentType {
			continue
		}
		if filter.ExpiresBefore != nil && d.ExpiryDate.After(*filter.ExpiresBefore) {
			continue
		}
		out = append(out, *d)
	}
	return out, int64(len(out)), nil
}

type fakeAudit struct {
	entries []model.AuditLog
}

func (f *fakeAudit) Log(_ context.Context, entry *model.AuditLog) error {
	entry.ID = uuid.New()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAudit) List(context.Context, repository.AuditFilter) ([]model.AuditLog, int64, error) {
	return f.entries, int64(len(f.entries)), nil
}

func (f *fakeAudit) actions() []string {
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (f *fakePublisher) Publish(eventType string, _ interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
}

type fakeMail struct {
	sent []notify.Message
}

func (f *fakeMail) Send(_ context.Context, msg notify.Message) error {
	f.sent = append(f.sent, msg)
	return nil
}

type fakeRoster struct {
	employees []roster.Employee
	projects  []roster.Project
	err       error
}

func (f fakeRoster) Employees(context.Context) ([]roster.Employee, error) { return f.employees, f.err }
func (f fakeRoster) Projects(context.Context) ([]roster.Project, error)   { return f.projects, f.err }
