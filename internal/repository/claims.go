package repository

import (
	"context"
	"errors"

	"foodbridge/internal/models"

	"gorm.io/gorm"
)

// ClaimFilters narrows food claim queries.
type ClaimFilters struct {
	FoodID uint
	Status models.ClaimStatus
	Limit  int
	Offset int
}

// ClaimRepository defines persistence operations for food claims.
type ClaimRepository interface {
	List(ctx context.Context, filters ClaimFilters) ([]models.FoodClaim, error)
	GetByID(ctx context.Context, id uint) (*models.FoodClaim, error)
	Create(ctx context.Context, claim *models.FoodClaim) error
	UpdateStatus(ctx context.Context, id uint, status models.ClaimStatus) error
}

type claimRepository struct {
	db *gorm.DB
}

// NewClaimRepository returns a new ClaimRepository implementation.
func NewClaimRepository(db *gorm.DB) ClaimRepository {
	return &claimRepository{db: db}
}

func (r *claimRepository) List(ctx context.Context, filters ClaimFilters) ([]models.FoodClaim, error) {
	query := r.db.WithContext(ctx).Preload("Food")
	if filters.FoodID != 0 {
		query = query.Where("food_id = ?", filters.FoodID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	var claims []models.FoodClaim
	if err := query.Order("created_at DESC").Find(&claims).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return claims, nil
}

func (r *claimRepository) GetByID(ctx context.Context, id uint) (*models.FoodClaim, error) {
	var claim models.FoodClaim
	if err := r.db.WithContext(ctx).Preload("Food").First(&claim, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Claim", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &claim, nil
}

func (r *claimRepository) Create(ctx context.Context, claim *models.FoodClaim) error {
	if err := r.db.WithContext(ctx).Create(claim).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *claimRepository) UpdateStatus(ctx context.Context, id uint, status models.ClaimStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.FoodClaim{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Claim", id)
	}
	return nil
}
