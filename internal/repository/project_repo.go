package repository

import (
	"context"

	"traveldesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	FindByZohoID(ctx context.Context, zohoID string) (*model.Project, error)
	List(ctx context.Context, search string, offset, limit int) ([]model.Project, int64, error)
	ListAll(ctx context.Context) ([]model.Project, error)
	UpsertByZohoID(ctx context.Context, project *model.Project) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := GetDB(ctx, r.db).First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) FindByZohoID(ctx context.Context, zohoID string) (*model.Project, error) {
	var project model.Project
	if err := GetDB(ctx, r.db).First(&project, "zoho_id = ?", zohoID).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) List(ctx context.Context, search string, offset, limit int) ([]model.Project, int64, error) {
	var projects []model.Project
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Project{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", like, like)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("name asc").Offset(offset).Limit(limit).Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (r *projectRepository) ListAll(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if err := GetDB(ctx, r.db).Order("name asc").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// UpsertByZohoID inserts a roster project or refreshes its name and code.
func (r *projectRepository) UpsertByZohoID(ctx context.Context, project *model.Project) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "zoho_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "code", "updated_at"}),
	}).Create(project).Error
}
