package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"traveldesk/internal/model"
	"traveldesk/internal/repository"
	"traveldesk/internal/roster"
	"traveldesk/internal/travel"
	"traveldesk/pkg/pagination"
)

// RosterSource is the external employee and project directory.
type RosterSource interface {
	Employees(ctx context.Context) ([]roster.Employee, error)
	Projects(ctx context.Context) ([]roster.Project, error)
}

type UserResponse struct {
	ID                 string  `json:"id"`
	ZohoID             *string `json:"zoho_id"`
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	Department         string  `json:"department"`
	Role               string  `json:"role"`
	ActiveRole         string  `json:"active_role,omitempty"`
	EffectiveRole      string  `json:"effective_role"`
	AnnualTravelBudget *string `json:"annual_travel_budget"`
}

type ProjectResponse struct {
	ID           string  `json:"id"`
	ZohoID       *string `json:"zoho_id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	TravelBudget *string `json:"travel_budget"`
}

type SwitchRoleDTO struct {
	// ActiveRole is the role to impersonate; empty or "admin" clears it.
	ActiveRole string `json:"active_role" example:"operations_ksa"`
}

type SyncResult struct {
	Users    int `json:"users"`
	Projects int `json:"projects"`
	Skipped  int `json:"skipped"`
}

type DirectoryService interface {
	Me(ctx context.Context, actor Actor) (*UserResponse, error)
	ListUsers(ctx context.Context, search string, page, limit int) ([]UserResponse, int64, error)
	ListProjects(ctx context.Context, search string, page, limit int) ([]ProjectResponse, int64, error)
	SwitchActiveRole(ctx context.Context, actor Actor, req SwitchRoleDTO) (*UserResponse, error)
	SyncRoster(ctx context.Context, actor *Actor) (*SyncResult, error)
}

type directoryService struct {
	tx       repository.TransactionManager
	users    repository.UserRepository
	projects repository.ProjectRepository
	audit    repository.AuditRepository
	roster   RosterSource
}

func NewDirectoryService(tx repository.TransactionManager, users repository.UserRepository, projects repository.ProjectRepository, audit repository.AuditRepository, source RosterSource) DirectoryService {
	return &directoryService{tx: tx, users: users, projects: projects, audit: audit, roster: source}
}

func (s *directoryService) Me(ctx context.Context, actor Actor) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	res := toUserResponse(*user)
	return &res, nil
}

func (s *directoryService) ListUsers(ctx context.Context, search string, page, limit int) ([]UserResponse, int64, error) {
	p := pagination.New(page, limit)
	users, total, err := s.users.List(ctx, strings.TrimSpace(search), p.Offset, p.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	res := make([]UserResponse, 0, len(users))
	for _, u := range users {
		res = append(res, toUserResponse(u))
	}
	return res, total, nil
}

func (s *directoryService) ListProjects(ctx context.Context, search string, page, limit int) ([]ProjectResponse, int64, error) {
	pg := pagination.New(page, limit)
	projects, total, err := s.projects.List(ctx, strings.TrimSpace(search), pg.Offset, pg.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	res := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		res = append(res, ProjectResponse{
			ID:           p.ID.String(),
			ZohoID:       p.ZohoID,
			Code:         p.Code,
			Name:         p.Name,
			TravelBudget: formatMoney(p.TravelBudget),
		})
	}
	return res, total, nil
}

func (s *directoryService) SwitchActiveRole(ctx context.Context, actor Actor, req SwitchRoleDTO) (*UserResponse, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins can switch their active role", ErrForbidden)
	}

	var target travel.Role
	if raw := strings.TrimSpace(req.ActiveRole); raw != "" && raw != string(travel.RoleAdmin) {
		role, err := travel.ParseRole(raw)
		if err != nil {
			return nil, travel.ValidationError{Field: "active_role", Message: err.Error()}
		}
		target = role
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.users.UpdateActiveRole(txCtx, actor.UserID, target); err != nil {
			return notFound(err, "user")
		}
		details, _ := json.Marshal(map[string]interface{}{"active_role": target})
		userID := actor.UserID
		return s.audit.Log(txCtx, &model.AuditLog{
			UserID:   &userID,
			Action:   model.ActionSwitchRole,
			EntityID: actor.UserID.String(),
			Details:  string(details),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Me(ctx, actor)
}

// SyncRoster upserts roster users and projects by their external id. A nil
// actor marks a scheduled run.
func (s *directoryService) SyncRoster(ctx context.Context, actor *Actor) (*SyncResult, error) {
	employees, err := s.roster.Employees(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := s.roster.Projects(ctx)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{}
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for _, e := range employees {
			if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.Email) == "" {
				result.Skipped++
				continue
			}
			zohoID := strings.TrimSpace(e.ID)
			user := model.User{
				ZohoID:     &zohoID,
				Name:       strings.TrimSpace(e.Name),
				Email:      strings.ToLower(strings.TrimSpace(e.Email)),
				Department: strings.TrimSpace(e.Department),
				Role:       travel.RoleManager,
			}
			if err := s.users.UpsertByZohoID(txCtx, &user); err != nil {
				return fmt.Errorf("failed to upsert roster user %s: %w", zohoID, err)
			}
			result.Users++
		}

		for _, p := range projects {
			if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Name) == "" {
				result.Skipped++
				continue
			}
			zohoID := strings.TrimSpace(p.ID)
			project := model.Project{
				ZohoID:       &zohoID,
				Code:         strings.TrimSpace(p.Code),
				Name:         strings.TrimSpace(p.Name),
				TravelBudget: p.Budget,
			}
			if err := s.projects.UpsertByZohoID(txCtx, &project); err != nil {
				return fmt.Errorf("failed to upsert roster project %s: %w", zohoID, err)
			}
			result.Projects++
		}

		details, _ := json.Marshal(result)
		entry := model.AuditLog{
			Action:     model.ActionSyncRoster,
			EntityName: "roster",
			Details:    string(details),
		}
		if actor != nil {
			userID := actor.UserID
			entry.UserID = &userID
		}
		return s.audit.Log(txCtx, &entry)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("roster sync: %d users, %d projects, %d skipped", result.Users, result.Projects, result.Skipped)
	return result, nil
}

// RunRosterSync syncs on every tick until ctx is cancelled. Failures are logged.
func RunRosterSync(ctx context.Context, svc DirectoryService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.SyncRoster(ctx, nil); err != nil {
				log.Printf("WARNING: scheduled roster sync failed: %v", err)
			}
		}
	}
}

func toUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:                 u.ID.String(),
		ZohoID:             u.ZohoID,
		Name:               u.Name,
		Email:              u.Email,
		Department:         u.Department,
		Role:               string(u.Role),
		ActiveRole:         string(u.ActiveRole),
		EffectiveRole:      string(travel.ResolveEffectiveRole(u.Principal())),
		AnnualTravelBudget: formatMoney(u.AnnualTravelBudget),
	}
}

// ActorFor builds the actor for a loaded user.
func ActorFor(u model.User) Actor {
	return Actor{
		UserID:   u.ID,
		Role:     travel.ResolveEffectiveRole(u.Principal()),
		HomeRole: u.Role,
	}
}
