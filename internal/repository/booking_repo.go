package repository

import (
	"context"

	"traveldesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingRepository interface {
	CreateBatch(ctx context.Context, bookings []model.Booking) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.Booking, error)
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) CreateBatch(ctx context.Context, bookings []model.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&bookings).Error
}

func (r *bookingRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := GetDB(ctx, r.db).Where("travel_request_id = ?", requestID).Order("created_at asc").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}
