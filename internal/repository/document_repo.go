package repository

import (
	"context"
	"time"

	"traveldesk/internal/model"
	"traveldesk/internal/travel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentFilter struct {
	UserID       *uuid.UUID
	DocumentType travel.DocumentType
	// ExpiresBefore keeps documents whose expiry date is on or before the given day.
	ExpiresBefore *time.Time
	Offset        int
	Limit         int
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *model.EmployeeDocument) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.EmployeeDocument, error)
	Update(ctx context.Context, doc *model.EmployeeDocument) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter DocumentFilter) ([]model.EmployeeDocument, int64, error)
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *model.EmployeeDocument) error {
	return GetDB(ctx, r.db).Omit("User").Create(doc).Error
}

func (r *documentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.EmployeeDocument, error) {
	var doc model.EmployeeDocument
	if err := GetDB(ctx, r.db).Preload("User").First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) Update(ctx context.Context, doc *model.EmployeeDocument) error {
	return GetDB(ctx, r.db).Omit("User").Save(doc).Error
}

func (r *documentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.EmployeeDocument{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *documentRepository) List(ctx context.Context, filter DocumentFilter) ([]model.EmployeeDocument, int64, error) {
	var total int64
	query := GetDB(ctx, r.db).Model(&model.EmployeeDocument{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.DocumentType != "" {
		query = query.Where("document_type = ?", filter.DocumentType)
	}
	if filter.ExpiresBefore != nil {
		query = query.Where("expiry_date <= ?", *filter.ExpiresBefore)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var docs []model.EmployeeDocument
	if err := query.Preload("User").Order("expiry_date asc").Offset(filter.Offset).Limit(filter.Limit).Find(&docs).Error; err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}
