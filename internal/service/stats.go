package service

import (
	"context"
	"time"

	"foodbridge/internal/models"
	"foodbridge/internal/repository"

	"golang.org/x/sync/errgroup"
)

// AdminStats is the dashboard summary.
type AdminStats struct {
	TotalUsers       int64     `json:"total_users"`
	TotalListings    int64     `json:"total_listings"`
	ActiveTrades     int64     `json:"active_trades"`
	DonationListings int64     `json:"donation_listings"`
	LastUpdated      time.Time `json:"last_updated"`
}

// StatsService computes aggregate stats for the admin dashboard and
// maintains per-user impact stats.
type StatsService struct {
	stats  repository.StatsRepository
	trades repository.TradeRepository
}

// NewStatsService wires a StatsService.
func NewStatsService(stats repository.StatsRepository, trades repository.TradeRepository) *StatsService {
	return &StatsService{stats: stats, trades: trades}
}

// Dashboard runs the four counts concurrently. Any failing count fails the
// whole call; a partially-populated dashboard would silently under-report.
func (s *StatsService) Dashboard(ctx context.Context) (*AdminStats, error) {
	var out AdminStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.stats.CountUsers(gctx)
		out.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, err := s.stats.CountListings(gctx, "")
		out.TotalListings = n
		return err
	})
	g.Go(func() error {
		n, err := s.trades.CountByStatus(gctx, models.TradeStatusActive)
		out.ActiveTrades = n
		return err
	})
	g.Go(func() error {
		n, err := s.stats.CountListingsByType(gctx, models.ListingTypeDonation)
		out.DonationListings = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	out.LastUpdated = time.Now()
	return &out, nil
}

// UserStats returns a user's impact stats, or a zeroed row when none exists
// yet.
func (s *StatsService) UserStats(ctx context.Context, userID uint) (*models.UserStats, error) {
	stats, err := s.stats.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return &models.UserStats{UserID: userID}, nil
	}
	return stats, nil
}

// UpdateUserStats writes a user's impact stats.
func (s *StatsService) UpdateUserStats(ctx context.Context, stats *models.UserStats) error {
	return s.stats.Upsert(ctx, stats)
}
