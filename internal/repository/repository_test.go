package repository

import (
	"context"
	"testing"
	"time"

	"foodbridge/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.UserStats{}, &models.UserBadge{},
		&models.FoodListing{}, &models.FoodClaim{},
		&models.Trade{}, &models.BarterTrade{},
		&models.Notification{},
		&models.BlogPost{}, &models.Comment{}, &models.PostLike{},
		&models.CommunityPost{}, &models.CommunityComment{}, &models.CommunityPostLike{},
		&models.DistributionEvent{}, &models.DistributionRegistration{},
	))
	return db
}

func seedAccount(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Name: "Seeded", Email: email, Password: "x", Role: models.RoleUser}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestBlogLikes(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := NewBlogRepository(db)
	user := seedAccount(t, db, "reader@example.com")

	post := &models.BlogPost{Slug: "zero-waste-kitchens", Title: "Zero Waste Kitchens", Published: true}
	require.NoError(t, repo.Create(ctx, post))

	t.Run("like bumps the counter once", func(t *testing.T) {
		require.NoError(t, repo.Like(ctx, post.ID, user.ID))

		got, err := repo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.LikesCount)

		liked, err := repo.HasLiked(ctx, post.ID, user.ID)
		require.NoError(t, err)
		assert.True(t, liked)
	})

	t.Run("double like conflicts without touching the counter", func(t *testing.T) {
		err := repo.Like(ctx, post.ID, user.ID)
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.ErrCodeConflict, appErr.Code)

		got, err := repo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.LikesCount)
	})

	t.Run("unlike decrements", func(t *testing.T) {
		require.NoError(t, repo.Unlike(ctx, post.ID, user.ID))

		got, err := repo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.LikesCount)
	})

	t.Run("unlike of an absent like leaves the counter alone", func(t *testing.T) {
		require.NoError(t, repo.Unlike(ctx, post.ID, user.ID))

		got, err := repo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.LikesCount)
	})

	t.Run("unpublished posts are invisible by slug", func(t *testing.T) {
		draft := &models.BlogPost{Slug: "draft", Title: "Draft", Published: false}
		require.NoError(t, repo.Create(ctx, draft))

		got, err := repo.GetBySlug(ctx, "draft")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("duplicate slug conflicts", func(t *testing.T) {
		err := repo.Create(ctx, &models.BlogPost{Slug: "zero-waste-kitchens", Title: "Dup"})
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.ErrCodeConflict, appErr.Code)
	})
}

func TestBarterTradeInvolvementFilter(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := NewBarterTradeRepository(db)
	alice := seedAccount(t, db, "alice@example.com")
	bob := seedAccount(t, db, "bob@example.com")

	listing := &models.FoodListing{Title: "Jam Jars", Quantity: 1, UserID: alice.ID, Status: models.ListingStatusActive}
	require.NoError(t, db.Create(listing).Error)

	_, err := repo.Create(ctx, &models.BarterTrade{
		InitiatorID: alice.ID, OfferedListingID: listing.ID, RequestedItems: "Honey",
	})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.BarterTrade{
		InitiatorID: bob.ID, OfferedListingID: listing.ID, RequestedItems: "Bread",
	})
	require.NoError(t, err)

	t.Run("offered matches the initiator", func(t *testing.T) {
		trades, err := repo.List(ctx, alice.ID, BarterFilters{Type: BarterInvolvementOffered})
		require.NoError(t, err)
		require.Len(t, trades, 1)
		assert.Equal(t, alice.ID, trades[0].InitiatorID)
	})

	t.Run("received matches everyone else's offers", func(t *testing.T) {
		// Inherited inversion: with no recipient column, "received" means
		// every trade someone else initiated.
		trades, err := repo.List(ctx, alice.ID, BarterFilters{Type: BarterInvolvementReceived})
		require.NoError(t, err)
		require.Len(t, trades, 1)
		assert.Equal(t, bob.ID, trades[0].InitiatorID)
	})

	t.Run("create defaults status and trade type", func(t *testing.T) {
		trade, err := repo.Create(ctx, &models.BarterTrade{
			InitiatorID: alice.ID, OfferedListingID: listing.ID, RequestedItems: "Anything",
		})
		require.NoError(t, err)
		assert.Equal(t, models.TradeStatusPending, trade.Status)
		assert.Equal(t, "direct", trade.TradeType)
		require.NotNil(t, trade.Initiator)
	})
}

func TestDistributionRegistration(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := NewDistributionRepository(db)
	user := seedAccount(t, db, "guest@example.com")

	event := &models.DistributionEvent{Title: "Saturday Pantry", EventDate: time.Now().Add(24 * time.Hour)}
	require.NoError(t, repo.CreateEvent(ctx, event))

	t.Run("registration bumps the counter", func(t *testing.T) {
		require.NoError(t, repo.Register(ctx, event.ID, user.ID))

		got, err := repo.GetEvent(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.RegistrationCount)
	})

	t.Run("double registration conflicts", func(t *testing.T) {
		err := repo.Register(ctx, event.ID, user.ID)
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.ErrCodeConflict, appErr.Code)

		got, err := repo.GetEvent(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.RegistrationCount)
	})

	t.Run("attendees embed the user", func(t *testing.T) {
		regs, err := repo.Attendees(ctx, event.ID)
		require.NoError(t, err)
		require.Len(t, regs, 1)
		require.NotNil(t, regs[0].User)
		assert.Equal(t, "guest@example.com", regs[0].User.Email)
	})
}

func TestNotificationScoping(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := NewNotificationRepository(db)
	owner := seedAccount(t, db, "owner@example.com")
	other := seedAccount(t, db, "other@example.com")

	n := &models.Notification{UserID: owner.ID, Title: "Pickup ready", Type: models.NotificationClaimApproved}
	require.NoError(t, repo.Create(ctx, n))

	t.Run("another user cannot mark it read", func(t *testing.T) {
		err := repo.MarkRead(ctx, n.ID, other.ID)
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.ErrCodeNotFound, appErr.Code)
	})

	t.Run("the owner can", func(t *testing.T) {
		require.NoError(t, repo.MarkRead(ctx, n.ID, owner.ID))

		count, err := repo.UnreadCount(ctx, owner.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestStatsUpsert(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := NewStatsRepository(db)
	user := seedAccount(t, db, "donor@example.com")

	t.Run("absent row reads as nil, nil", func(t *testing.T) {
		stats, err := repo.GetByUserID(ctx, user.ID)
		require.NoError(t, err)
		assert.Nil(t, stats)
	})

	t.Run("upsert inserts then updates in place", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, &models.UserStats{UserID: user.ID, TotalDonations: 2}))
		require.NoError(t, repo.Upsert(ctx, &models.UserStats{UserID: user.ID, TotalDonations: 5}))

		stats, err := repo.GetByUserID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, stats)
		assert.Equal(t, 5, stats.TotalDonations)
		assert.False(t, stats.LastUpdated.IsZero())

		var count int64
		require.NoError(t, db.Model(&models.UserStats{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}
