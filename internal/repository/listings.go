package repository

import (
	"context"
	"errors"

	"foodbridge/internal/cache"
	"foodbridge/internal/models"

	"gorm.io/gorm"
)

// ListingFilters narrows food listing queries. Zero values mean "no filter";
// Status defaults to active for public feeds.
type ListingFilters struct {
	Category    string
	ListingType models.ListingType
	Location    string
	UserID      uint
	Status      models.ListingStatus
	Page        int
	Limit       int
}

// ListingRepository defines persistence operations for food listings.
type ListingRepository interface {
	List(ctx context.Context, filters ListingFilters) ([]models.FoodListing, error)
	Search(ctx context.Context, term string, filters ListingFilters) ([]models.FoodListing, error)
	Recent(ctx context.Context, limit int) ([]models.FoodListing, error)
	GetByID(ctx context.Context, id uint) (*models.FoodListing, error)
	Create(ctx context.Context, listing *models.FoodListing) error
	Update(ctx context.Context, listing *models.FoodListing) error
	UpdateStatus(ctx context.Context, id uint, status models.ListingStatus) error
	Delete(ctx context.Context, id uint) error
}

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository returns a new ListingRepository implementation.
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) applyFilters(query *gorm.DB, filters ListingFilters) *gorm.DB {
	status := filters.Status
	if status == "" {
		status = models.ListingStatusActive
	}
	query = query.Where("status = ?", status)

	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.ListingType != "" {
		query = query.Where("listing_type = ?", filters.ListingType)
	}
	if filters.Location != "" {
		query = query.Where("location ILIKE ?", "%"+filters.Location+"%")
	}
	if filters.UserID != 0 {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.Page > 0 && filters.Limit > 0 {
		query = query.Offset((filters.Page - 1) * filters.Limit).Limit(filters.Limit)
	}
	return query
}

func (r *listingRepository) List(ctx context.Context, filters ListingFilters) ([]models.FoodListing, error) {
	var listings []models.FoodListing
	query := r.applyFilters(r.db.WithContext(ctx).Preload("Donor"), filters)
	if err := query.Order("created_at DESC").Find(&listings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return listings, nil
}

func (r *listingRepository) Search(ctx context.Context, term string, filters ListingFilters) ([]models.FoodListing, error) {
	var listings []models.FoodListing
	query := r.applyFilters(r.db.WithContext(ctx).Preload("Donor"), filters).
		Where("title ILIKE ? OR description ILIKE ?", "%"+term+"%", "%"+term+"%")
	if err := query.Order("created_at DESC").Find(&listings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return listings, nil
}

// Recent returns the newest listings regardless of status, for the admin feed.
func (r *listingRepository) Recent(ctx context.Context, limit int) ([]models.FoodListing, error) {
	if limit <= 0 {
		limit = 10
	}
	var listings []models.FoodListing
	if err := r.db.WithContext(ctx).
		Preload("Donor").
		Order("created_at DESC").
		Limit(limit).
		Find(&listings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return listings, nil
}

func (r *listingRepository) GetByID(ctx context.Context, id uint) (*models.FoodListing, error) {
	var listing models.FoodListing
	if err := r.db.WithContext(ctx).Preload("Donor").First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Listing", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &listing, nil
}

func (r *listingRepository) Create(ctx context.Context, listing *models.FoodListing) error {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *listingRepository) Update(ctx context.Context, listing *models.FoodListing) error {
	if err := r.db.WithContext(ctx).Save(listing).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateListing(ctx, listing.ID)
	return nil
}

func (r *listingRepository) UpdateStatus(ctx context.Context, id uint, status models.ListingStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.FoodListing{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Listing", id)
	}
	cache.InvalidateListing(ctx, id)
	return nil
}

func (r *listingRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.FoodListing{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateListing(ctx, id)
	return nil
}
