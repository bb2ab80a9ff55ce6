package repository

import (
	"context"

	"traveldesk/internal/model"
	"traveldesk/internal/travel"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines the interface for data access of User entities
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error)
	List(ctx context.Context, search string, offset, limit int) ([]model.User, int64, error)
	ListAll(ctx context.Context) ([]model.User, error)
	UpdateActiveRole(ctx context.Context, id uuid.UUID, role travel.Role) error
	UpsertByZohoID(ctx context.Context, user *model.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) List(ctx context.Context, search string, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := GetDB(ctx, r.db).Model(&model.User{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ? OR department ILIKE ?", like, like, like)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("name asc").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := GetDB(ctx, r.db).Order("name asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) UpdateActiveRole(ctx context.Context, id uuid.UUID, role travel.Role) error {
	res := GetDB(ctx, r.db).Model(&model.User{}).Where("id = ?", id).Update("active_role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpsertByZohoID inserts a roster user or refreshes its profile fields.
// A local user with the same email and no roster id is linked first.
// Locally assigned roles and budgets are left untouched on conflict.
func (r *userRepository) UpsertByZohoID(ctx context.Context, user *model.User) error {
	db := GetDB(ctx, r.db)
	if user.ZohoID != nil && user.Email != "" {
		if err := db.Model(&model.User{}).
			Where("email = ? AND zoho_id IS NULL", user.Email).
			Update("zoho_id", *user.ZohoID).Error; err != nil {
			return err
		}
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "zoho_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "department", "updated_at"}),
	}).Create(user).Error
}
