package repository

import (
	"context"
	"errors"
	"time"

	"foodbridge/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatsRepository defines persistence for per-user impact stats and the
// aggregate counts the admin dashboard reports.
type StatsRepository interface {
	// GetByUserID returns (nil, nil) when the user has no stats row yet.
	GetByUserID(ctx context.Context, userID uint) (*models.UserStats, error)
	// Upsert writes the stats row, inserting or updating on user_id.
	Upsert(ctx context.Context, stats *models.UserStats) error

	CountUsers(ctx context.Context) (int64, error)
	CountListings(ctx context.Context, status models.ListingStatus) (int64, error)
	CountListingsByType(ctx context.Context, listingType models.ListingType) (int64, error)
	CountClaims(ctx context.Context, status models.ClaimStatus) (int64, error)
	CountTrades(ctx context.Context, status models.TradeStatus) (int64, error)
}

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository returns a new StatsRepository implementation.
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) GetByUserID(ctx context.Context, userID uint) (*models.UserStats, error) {
	var stats models.UserStats
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&stats).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &stats, nil
}

func (r *statsRepository) Upsert(ctx context.Context, stats *models.UserStats) error {
	stats.LastUpdated = time.Now()
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_donations", "total_trades", "total_food_saved",
				"total_impact_score", "last_updated",
			}),
		}).
		Create(stats).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *statsRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *statsRepository) CountListings(ctx context.Context, status models.ListingStatus) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.FoodListing{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *statsRepository) CountListingsByType(ctx context.Context, listingType models.ListingType) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.FoodListing{}).
		Where("listing_type = ?", listingType).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *statsRepository) CountClaims(ctx context.Context, status models.ClaimStatus) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.FoodClaim{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *statsRepository) CountTrades(ctx context.Context, status models.TradeStatus) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Trade{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
