package repository

import (
	"context"
	"errors"

	"foodbridge/internal/models"

	"gorm.io/gorm"
)

// TradeRepository defines persistence operations for two-party trades.
type TradeRepository interface {
	// List returns trades with both parties and both listings embedded.
	// A non-zero userID restricts to trades the user participates in.
	List(ctx context.Context, userID uint) ([]models.Trade, error)
	GetByID(ctx context.Context, id uint) (*models.Trade, error)
	Create(ctx context.Context, trade *models.Trade) error
	UpdateStatus(ctx context.Context, id uint, status models.TradeStatus) (*models.Trade, error)
	CountByStatus(ctx context.Context, status models.TradeStatus) (int64, error)
}

type tradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository returns a new TradeRepository implementation.
func NewTradeRepository(db *gorm.DB) TradeRepository {
	return &tradeRepository{db: db}
}

func (r *tradeRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Initiator").
		Preload("Recipient").
		Preload("OfferedListing").
		Preload("RequestedListing")
}

func (r *tradeRepository) List(ctx context.Context, userID uint) ([]models.Trade, error) {
	query := r.withRelations(ctx)
	if userID != 0 {
		query = query.Where("initiator_id = ? OR recipient_id = ?", userID, userID)
	}

	var trades []models.Trade
	if err := query.Order("created_at DESC").Find(&trades).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return trades, nil
}

func (r *tradeRepository) GetByID(ctx context.Context, id uint) (*models.Trade, error) {
	var trade models.Trade
	if err := r.withRelations(ctx).First(&trade, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Trade", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &trade, nil
}

func (r *tradeRepository) Create(ctx context.Context, trade *models.Trade) error {
	if err := r.db.WithContext(ctx).Create(trade).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateStatus transitions the trade and returns the updated row with
// relations embedded.
func (r *tradeRepository) UpdateStatus(ctx context.Context, id uint, status models.TradeStatus) (*models.Trade, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Trade{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Trade", id)
	}
	return r.GetByID(ctx, id)
}

func (r *tradeRepository) CountByStatus(ctx context.Context, status models.TradeStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Trade{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
