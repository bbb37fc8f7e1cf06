package server

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"foodbridge/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedListing(t *testing.T, srv *Server, ownerID uint, title string) *models.FoodListing {
	t.Helper()
	listing := &models.FoodListing{
		Title: title, Status: models.ListingStatusActive,
		ListingType: models.ListingTypeTrade, Quantity: 1, UserID: ownerID,
	}
	require.NoError(t, srv.listingRepo.Create(context.Background(), listing))
	return listing
}

func TestTradeFlow(t *testing.T) {
	srv, app := newTestServer(t)
	alice, aliceToken := seedUser(t, srv, "alice@example.com", models.RoleUser)
	bob, bobToken := seedUser(t, srv, "bob@example.com", models.RoleUser)
	_, carolToken := seedUser(t, srv, "carol@example.com", models.RoleUser)

	offered := seedListing(t, srv, alice.ID, "Sourdough Starter")
	requested := seedListing(t, srv, bob.ID, "Tomato Seedlings")

	var tradeID uint

	t.Run("initiator proposes a trade", func(t *testing.T) {
		resp, err := app.Test(authed(jsonRequest(http.MethodPost, "/api/trades", map[string]any{
			"recipient_id":         bob.ID,
			"offered_listing_id":   offered.ID,
			"requested_listing_id": requested.ID,
			"message":              "Starter for seedlings?",
		}), aliceToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var trade models.Trade
		decodeBody(t, resp, &trade)
		assert.Equal(t, models.TradeStatusPending, trade.Status)
		tradeID = trade.ID
	})

	t.Run("cannot offer someone else's listing", func(t *testing.T) {
		resp, err := app.Test(authed(jsonRequest(http.MethodPost, "/api/trades", map[string]any{
			"recipient_id":         alice.ID,
			"offered_listing_id":   offered.ID,
			"requested_listing_id": requested.ID,
		}), bobToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("both parties see the trade", func(t *testing.T) {
		for _, token := range []string{aliceToken, bobToken} {
			resp, err := app.Test(authed(jsonRequest(http.MethodGet, "/api/trades", nil), token))
			require.NoError(t, err)

			var body struct {
				Trades []models.Trade `json:"trades"`
			}
			decodeBody(t, resp, &body)
			require.Len(t, body.Trades, 1)
		}
	})

	t.Run("a third party cannot read it", func(t *testing.T) {
		resp, err := app.Test(authed(jsonRequest(http.MethodGet,
			fmt.Sprintf("/api/trades/%d", tradeID), nil), carolToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("recipient accepts", func(t *testing.T) {
		resp, err := app.Test(authed(jsonRequest(http.MethodPut,
			fmt.Sprintf("/api/trades/%d/status", tradeID),
			map[string]any{"status": "accepted"}), bobToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var trade models.Trade
		decodeBody(t, resp, &trade)
		assert.Equal(t, models.TradeStatusAccepted, trade.Status)
	})

	t.Run("bogus status transition is rejected", func(t *testing.T) {
		resp, err := app.Test(authed(jsonRequest(http.MethodPut,
			fmt.Sprintf("/api/trades/%d/status", tradeID),
			map[string]any{"status": "vanished"}), bobToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestBarterTradeFlow(t *testing.T) {
	srv, app := newTestServer(t)
	alice, aliceToken := seedUser(t, srv, "alice@example.com", models.RoleUser)
	_, bobToken := seedUser(t, srv, "bob@example.com", models.RoleUser)

	offered := seedListing(t, srv, alice.ID, "Preserved Lemons")

	var tradeID uint

	t.Run("initiator opens a barter offer", func(t *testing.T) {
		resp, err := app.Test(authed(jsonRequest(http.MethodPost, "/api/barter-trades", map[string]any{
			"offered_listing_id": offered.ID,
			"requested_items":    "Any fresh herbs",
		}), aliceToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var trade models.BarterTrade
		decodeBody(t, resp, &trade)
		assert.Equal(t, models.TradeStatusPending, trade.Status)
		assert.Equal(t, "direct", trade.TradeType)
		tradeID = trade.ID
	})

	t.Run("offered filter returns the initiator's trades", func(t *testing.T) {
		resp, err := app.Test(authed(jsonRequest(http.MethodGet, "/api/barter-trades?type=offered", nil), aliceToken))
		require.NoError(t, err)

		var body struct {
			BarterTrades []models.BarterTrade `json:"barter_trades"`
		}
		decodeBody(t, resp, &body)
		require.Len(t, body.BarterTrades, 1)
	})

	t.Run("status update can attach an analysis", func(t *testing.T) {
		resp, err := app.Test(authed(jsonRequest(http.MethodPut,
			fmt.Sprintf("/api/barter-trades/%d/status", tradeID),
			map[string]any{"status": "accepted", "analysis": "Fair swap"}), bobToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var trade models.BarterTrade
		decodeBody(t, resp, &trade)
		assert.Equal(t, models.TradeStatusAccepted, trade.Status)
		assert.Equal(t, "Fair swap", trade.Analysis)
	})
}

func TestNotificationEndpoints(t *testing.T) {
	srv, app := newTestServer(t)
	user, token := seedUser(t, srv, "donor@example.com", models.RoleUser)

	for i := 0; i < 3; i++ {
		require.NoError(t, srv.notificationRepo.Create(context.Background(), &models.Notification{
			UserID: user.ID,
			Title:  fmt.Sprintf("Update %d", i),
			Type:   models.NotificationTradeUpdate,
		}))
	}

	t.Run("list includes the unread count", func(t *testing.T) {
		resp, err := app.Test(authed(jsonRequest(http.MethodGet, "/api/notifications", nil), token))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Notifications []models.Notification `json:"notifications"`
			UnreadCount   int                   `json:"unread_count"`
		}
		decodeBody(t, resp, &body)
		assert.Len(t, body.Notifications, 3)
		assert.Equal(t, 3, body.UnreadCount)
	})

	t.Run("mark all read clears the count", func(t *testing.T) {
		resp, err := app.Test(authed(jsonRequest(http.MethodPut, "/api/notifications/read-all", nil), token))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		count, err := srv.notificationRepo.UnreadCount(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("cannot mark another user's notification", func(t *testing.T) {
		_, otherToken := seedUser(t, srv, "other@example.com", models.RoleUser)
		resp, err := app.Test(authed(jsonRequest(http.MethodPut, "/api/notifications/1/read", nil), otherToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
