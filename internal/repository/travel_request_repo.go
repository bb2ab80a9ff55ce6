package repository

import (
	"context"

	"traveldesk/internal/model"
	"traveldesk/internal/travel"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TravelRequestFilter narrows a request listing. Zero values mean "any".
type TravelRequestFilter struct {
	Statuses    []travel.Status
	TravelerID  *uuid.UUID
	RequesterID *uuid.UUID
	// ParticipantID matches requests where the user is traveler or requester.
	ParticipantID  *uuid.UUID
	ProjectID      *uuid.UUID
	OperationsTeam travel.Role
	Search         string
	Offset         int
	Limit          int
}

type TravelRequestRepository interface {
	Create(ctx context.Context, req *model.TravelRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TravelRequest, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.TravelRequest, error)
	Update(ctx context.Context, req *model.TravelRequest) error
	List(ctx context.Context, filter TravelRequestFilter) ([]model.TravelRequest, int64, error)
	// ListTrips returns the lightweight projection used for aggregation.
	ListTrips(ctx context.Context) ([]travel.Trip, error)
}

type travelRequestRepository struct {
	db *gorm.DB
}

func NewTravelRequestRepository(db *gorm.DB) TravelRequestRepository {
	return &travelRequestRepository{db: db}
}

func (r *travelRequestRepository) Create(ctx context.Context, req *model.TravelRequest) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(req).Error
}

func (r *travelRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TravelRequest, error) {
	var req model.TravelRequest
	err := GetDB(ctx, r.db).
		Preload("Traveler").
		Preload("Requester").
		Preload("PMApprover").
		Preload("Project").
		Preload("Bookings", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *travelRequestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.TravelRequest, error) {
	var req model.TravelRequest
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *travelRequestRepository) Update(ctx context.Context, req *model.TravelRequest) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(req).Error
}

func (r *travelRequestRepository) List(ctx context.Context, filter TravelRequestFilter) ([]model.TravelRequest, int64, error) {
	var total int64
	query := GetDB(ctx, r.db).Model(&model.TravelRequest{})

	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.TravelerID != nil {
		query = query.Where("traveler_id = ?", *filter.TravelerID)
	}
	if filter.RequesterID != nil {
		query = query.Where("requester_id = ?", *filter.RequesterID)
	}
	if filter.ParticipantID != nil {
		query = query.Where("traveler_id = ? OR requester_id = ?", *filter.ParticipantID, *filter.ParticipantID)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.OperationsTeam != "" {
		query = query.Where("operations_team = ?", filter.OperationsTeam)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("origin ILIKE ? OR destination ILIKE ? OR destinations::text ILIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []model.TravelRequest
	if err := query.
		Preload("Traveler").
		Preload("Project").
		Order("departure_date asc, created_at desc").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *travelRequestRepository) ListTrips(ctx context.Context) ([]travel.Trip, error) {
	var rows []model.TravelRequest
	if err := GetDB(ctx, r.db).
		Select("id", "traveler_id", "requester_id", "project_id", "project_ref", "status", "actual_total_cost").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	trips := make([]travel.Trip, 0, len(rows))
	for _, row := range rows {
		trips = append(trips, row.Trip())
	}
	return trips, nil
}
