package repository

import (
	"context"
	"errors"

	"foodbridge/internal/models"

	"gorm.io/gorm"
)

// DistributionRepository defines persistence operations for distribution
// events and their registrations.
type DistributionRepository interface {
	// ListEvents returns events ordered by event date, soonest first.
	ListEvents(ctx context.Context) ([]models.DistributionEvent, error)
	GetEvent(ctx context.Context, id uint) (*models.DistributionEvent, error)
	CreateEvent(ctx context.Context, event *models.DistributionEvent) error
	UpdateEvent(ctx context.Context, event *models.DistributionEvent) error
	DeleteEvent(ctx context.Context, id uint) error

	// Register signs a user up and bumps the denormalized counter in one
	// transaction. Registering twice is a conflict.
	Register(ctx context.Context, eventID, userID uint) error
	// Attendees returns registrations for an event with users embedded.
	Attendees(ctx context.Context, eventID uint) ([]models.DistributionRegistration, error)
}

type distributionRepository struct {
	db *gorm.DB
}

// NewDistributionRepository returns a new DistributionRepository implementation.
func NewDistributionRepository(db *gorm.DB) DistributionRepository {
	return &distributionRepository{db: db}
}

func (r *distributionRepository) ListEvents(ctx context.Context) ([]models.DistributionEvent, error) {
	var events []models.DistributionEvent
	if err := r.db.WithContext(ctx).
		Order("event_date ASC").
		Find(&events).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return events, nil
}

func (r *distributionRepository) GetEvent(ctx context.Context, id uint) (*models.DistributionEvent, error) {
	var event models.DistributionEvent
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Distribution event", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &event, nil
}

func (r *distributionRepository) CreateEvent(ctx context.Context, event *models.DistributionEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *distributionRepository) UpdateEvent(ctx context.Context, event *models.DistributionEvent) error {
	if err := r.db.WithContext(ctx).Save(event).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *distributionRepository) DeleteEvent(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.DistributionEvent{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Distribution event", id)
	}
	return nil
}

func (r *distributionRepository) Register(ctx context.Context, eventID, userID uint) error {
	reg := models.DistributionRegistration{EventID: eventID, UserID: userID}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reg).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.NewConflictError("Already registered for this event")
			}
			return models.NewInternalError(err)
		}
		return tx.Model(&models.DistributionEvent{}).
			Where("id = ?", eventID).
			UpdateColumn("registration_count", gorm.Expr("registration_count + ?", 1)).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *distributionRepository) Attendees(ctx context.Context, eventID uint) ([]models.DistributionRegistration, error) {
	var regs []models.DistributionRegistration
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&regs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return regs, nil
}
