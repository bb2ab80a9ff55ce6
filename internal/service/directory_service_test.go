package service

import (
	"context"
	"errors"
	"testing"

	"traveldesk/internal/model"
	"traveldesk/internal/roster"
	"traveldesk/internal/travel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestSwitchActiveRole(t *testing.T) {
	admin := &model.User{ID: uuid.New(), Name: "root", Role: travel.RoleAdmin}
	manager := &model.User{ID: uuid.New(), Name: "maha", Role: travel.RoleManager}
	users := newFakeUsers(admin, manager)
	audit := &fakeAudit{}
	svc := NewDirectoryService(fakeTx{}, users, newFakeProjects(), audit, fakeRoster{})
	ctx := context.Background()

	if _, err := svc.SwitchActiveRole(ctx, ActorFor(*manager), SwitchRoleDTO{ActiveRole: "admin"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-admin switching: expected ErrForbidden, got %v", err)
	}

	res, err := svc.SwitchActiveRole(ctx, ActorFor(*admin), SwitchRoleDTO{ActiveRole: "operations_uae"})
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if res.Role != "admin" || res.ActiveRole != "operations_uae" || res.EffectiveRole != "operations_uae" {
		t.Fatalf("unexpected roles %+v", res)
	}

	// The stored active role does not change the home role, so the admin can switch back.
	impersonating := ActorFor(*admin)
	if impersonating.Role != travel.RoleOperationsUAE || !impersonating.IsAdmin() {
		t.Fatalf("unexpected actor %+v", impersonating)
	}
	res, err = svc.SwitchActiveRole(ctx, impersonating, SwitchRoleDTO{ActiveRole: "admin"})
	if err != nil {
		t.Fatalf("switch back: %v", err)
	}
	if res.ActiveRole != "" || res.EffectiveRole != "admin" {
		t.Fatalf("expected active role cleared, got %+v", res)
	}

	_, err = svc.SwitchActiveRole(ctx, ActorFor(*admin), SwitchRoleDTO{ActiveRole: "ceo"})
	assertValidationField(t, err, "active_role")

	if got := audit.actions(); len(got) != 2 || got[0] != model.ActionSwitchRole {
		t.Fatalf("unexpected audit trail %v", got)
	}
}

func TestSyncRoster(t *testing.T) {
	zoho := "E-1"
	existing := &model.User{ID: uuid.New(), ZohoID: &zoho, Name: "Old Name", Email: "sara@example.com", Role: travel.RolePM}
	admin := &model.User{ID: uuid.New(), Name: "root", Role: travel.RoleAdmin}
	users := newFakeUsers(existing, admin)
	projects := newFakeProjects()
	audit := &fakeAudit{}
	budget := decimal.NewFromInt(20000)

	source := fakeRoster{
		employees: []roster.Employee{
			{ID: "E-1", Name: "Sara Ali", Email: "Sara@Example.com", Department: "Delivery"},
			{ID: "E-2", Name: "Hadi", Email: "hadi@example.com"},
			{ID: "", Name: "ghost", Email: "ghost@example.com"},
			{ID: "E-3", Name: "No Mail"},
		},
		projects: []roster.Project{
			{ID: "P-1", Name: "Falcon", Code: "FAL", Budget: &budget},
			{ID: "P-2"},
		},
	}
	svc := NewDirectoryService(fakeTx{}, users, projects, audit, source)
	actor := ActorFor(*admin)

	res, err := svc.SyncRoster(context.Background(), &actor)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if *res != (SyncResult{Users: 2, Projects: 1, Skipped: 3}) {
		t.Fatalf("unexpected sync result %+v", *res)
	}

	updated, _ := users.FindByID(context.Background(), existing.ID)
	if updated.Name != "Sara Ali" || updated.Email != "sara@example.com" || updated.Department != "Delivery" {
		t.Fatalf("expected roster fields applied, got %+v", updated)
	}
	if updated.Role != travel.RolePM {
		t.Fatalf("sync must not overwrite an existing role, got %s", updated.Role)
	}

	all, _ := users.ListAll(context.Background())
	if len(all) != 3 {
		t.Fatalf("expected one new user, got %d users", len(all))
	}
	for _, u := range all {
		if u.Email == "hadi@example.com" && u.Role != travel.RoleManager {
			t.Fatalf("new roster users default to manager, got %s", u.Role)
		}
	}

	p, err := projects.FindByZohoID(context.Background(), "P-1")
	if err != nil {
		t.Fatalf("expected synced project: %v", err)
	}
	if p.TravelBudget == nil || !p.TravelBudget.Equal(budget) {
		t.Fatalf("unexpected project budget %v", p.TravelBudget)
	}

	entries := audit.entries
	if len(entries) != 1 || entries[0].Action != model.ActionSyncRoster || entries[0].UserID == nil || *entries[0].UserID != admin.ID {
		t.Fatalf("unexpected audit entries %+v", entries)
	}
}

func TestSyncRosterPropagatesSourceErrors(t *testing.T) {
	svc := NewDirectoryService(fakeTx{}, newFakeUsers(), newFakeProjects(), &fakeAudit{}, fakeRoster{err: roster.ErrNotConfigured})
	if _, err := svc.SyncRoster(context.Background(), nil); !errors.Is(err, roster.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestMeAndListUsers(t *testing.T) {
	budget := decimal.RequireFromString("12000")
	me := &model.User{ID: uuid.New(), Name: "maha", Email: "maha@example.com", Role: travel.RoleManager, AnnualTravelBudget: &budget}
	users := newFakeUsers(me, &model.User{ID: uuid.New(), Name: "omar", Role: travel.RolePM})
	svc := NewDirectoryService(fakeTx{}, users, newFakeProjects(), &fakeAudit{}, fakeRoster{})
	ctx := context.Background()

	res, err := svc.Me(ctx, ActorFor(*me))
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if res.EffectiveRole != "manager" || res.AnnualTravelBudget == nil || *res.AnnualTravelBudget != "12000.00" {
		t.Fatalf("unexpected profile %+v", res)
	}

	if _, err := svc.Me(ctx, Actor{UserID: uuid.New()}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown user: expected ErrNotFound, got %v", err)
	}

	list, total, err := svc.ListUsers(ctx, "", 1, 1)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if total != 2 || len(list) != 1 {
		t.Fatalf("expected one page of two users, got %d of %d", len(list), total)
	}
}
