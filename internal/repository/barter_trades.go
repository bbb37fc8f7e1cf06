package repository

import (
	"context"
	"errors"
	"time"

	"foodbridge/internal/models"

	"gorm.io/gorm"
)

// Barter involvement filter values.
const (
	BarterInvolvementOffered  = "offered"
	BarterInvolvementReceived = "received"
)

// BarterFilters narrows barter trade queries.
type BarterFilters struct {
	// Type is "offered" (user initiated) or "received". The schema has no
	// recipient column, so "received" matches initiator_id <> userID — this
	// mirrors the behavior inherited from the original data layer, inverted
	// semantics and all.
	Type      string
	Status    models.TradeStatus
	TradeType string
}

// BarterTradeRepository defines persistence operations for barter trades.
type BarterTradeRepository interface {
	List(ctx context.Context, userID uint, filters BarterFilters) ([]models.BarterTrade, error)
	GetByID(ctx context.Context, id uint) (*models.BarterTrade, error)
	Create(ctx context.Context, trade *models.BarterTrade) (*models.BarterTrade, error)
	UpdateStatus(ctx context.Context, id uint, status models.TradeStatus, extra map[string]interface{}) (*models.BarterTrade, error)
}

type barterTradeRepository struct {
	db *gorm.DB
}

// NewBarterTradeRepository returns a new BarterTradeRepository implementation.
func NewBarterTradeRepository(db *gorm.DB) BarterTradeRepository {
	return &barterTradeRepository{db: db}
}

func (r *barterTradeRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Initiator").
		Preload("OfferedListing")
}

func (r *barterTradeRepository) List(ctx context.Context, userID uint, filters BarterFilters) ([]models.BarterTrade, error) {
	query := r.withRelations(ctx)

	if userID != 0 {
		switch filters.Type {
		case BarterInvolvementOffered:
			query = query.Where("initiator_id = ?", userID)
		case BarterInvolvementReceived:
			query = query.Where("initiator_id <> ?", userID)
		default:
			query = query.Where("initiator_id = ?", userID)
		}
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.TradeType != "" {
		query = query.Where("trade_type = ?", filters.TradeType)
	}

	var trades []models.BarterTrade
	if err := query.Order("created_at DESC").Find(&trades).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return trades, nil
}

func (r *barterTradeRepository) GetByID(ctx context.Context, id uint) (*models.BarterTrade, error) {
	var trade models.BarterTrade
	if err := r.withRelations(ctx).First(&trade, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Barter trade", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &trade, nil
}

// Create inserts the trade and returns it with relations embedded.
func (r *barterTradeRepository) Create(ctx context.Context, trade *models.BarterTrade) (*models.BarterTrade, error) {
	if trade.Status == "" {
		trade.Status = models.TradeStatusPending
	}
	if trade.TradeType == "" {
		trade.TradeType = "direct"
	}
	if err := r.db.WithContext(ctx).Create(trade).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return r.GetByID(ctx, trade.ID)
}

func (r *barterTradeRepository) UpdateStatus(ctx context.Context, id uint, status models.TradeStatus, extra map[string]interface{}) (*models.BarterTrade, error) {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		updates[k] = v
	}

	res := r.db.WithContext(ctx).
		Model(&models.BarterTrade{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Barter trade", id)
	}
	return r.GetByID(ctx, id)
}
