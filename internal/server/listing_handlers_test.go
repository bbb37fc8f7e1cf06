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

func TestCreateListing(t *testing.T) {
	srv, app := newTestServer(t)
	_, token := seedUser(t, srv, "donor@example.com", models.RoleUser)

	t.Run("requires authentication", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/listings", map[string]any{
			"title": "Fresh Apples",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("creates a pending listing", func(t *testing.T) {
		resp, err := app.Test(authed(jsonRequest(http.MethodPost, "/api/listings", map[string]any{
			"title":       "Fresh Apples",
			"description": "Two crates from the weekend market",
			"quantity":    12,
			"unit":        "kg",
			"category":    "produce",
		}), token))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var listing models.FoodListing
		decodeBody(t, resp, &listing)
		assert.Equal(t, models.ListingStatusPending, listing.Status)
		assert.Equal(t, models.ListingTypeDonation, listing.ListingType)
	})

	t.Run("rejects an empty title", func(t *testing.T) {
		resp, err := app.Test(authed(jsonRequest(http.MethodPost, "/api/listings", map[string]any{
			"description": "no title",
		}), token))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestListingVisibility(t *testing.T) {
	srv, app := newTestServer(t)
	donor, _ := seedUser(t, srv, "donor@example.com", models.RoleUser)

	active := &models.FoodListing{
		Title: "Day-old Bread", Status: models.ListingStatusActive,
		ListingType: models.ListingTypeDonation, Quantity: 1, UserID: donor.ID,
	}
	pending := &models.FoodListing{
		Title: "Unreviewed Soup", Status: models.ListingStatusPending,
		ListingType: models.ListingTypeDonation, Quantity: 1, UserID: donor.ID,
	}
	require.NoError(t, srv.listingRepo.Create(context.Background(), active))
	require.NoError(t, srv.listingRepo.Create(context.Background(), pending))

	t.Run("public feed shows only active listings", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodGet, "/api/listings", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Listings []models.FoodListing `json:"listings"`
		}
		decodeBody(t, resp, &body)
		require.Len(t, body.Listings, 1)
		assert.Equal(t, "Day-old Bread", body.Listings[0].Title)
	})

	t.Run("single listing fetch works for any status", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodGet, fmt.Sprintf("/api/listings/%d", pending.ID), nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unknown listing is 404", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodGet, "/api/listings/9999", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestUpdateListingOwnership(t *testing.T) {
	srv, app := newTestServer(t)
	donor, donorToken := seedUser(t, srv, "donor@example.com", models.RoleUser)
	_, otherToken := seedUser(t, srv, "other@example.com", models.RoleUser)

	listing := &models.FoodListing{
		Title: "Rice Bags", Status: models.ListingStatusActive,
		ListingType: models.ListingTypeDonation, Quantity: 3, UserID: donor.ID,
	}
	require.NoError(t, srv.listingRepo.Create(context.Background(), listing))
	target := fmt.Sprintf("/api/listings/%d", listing.ID)

	t.Run("a stranger cannot edit it", func(t *testing.T) {
		resp, err := app.Test(authed(jsonRequest(http.MethodPut, target, map[string]any{
			"title": "Hijacked",
		}), otherToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("the owner can edit it", func(t *testing.T) {
		resp, err := app.Test(authed(jsonRequest(http.MethodPut, target, map[string]any{
			"title":    "Rice Bags (updated)",
			"quantity": 2,
		}), donorToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var updated models.FoodListing
		decodeBody(t, resp, &updated)
		assert.Equal(t, "Rice Bags (updated)", updated.Title)
	})

	t.Run("a stranger cannot delete it", func(t *testing.T) {
		resp, err := app.Test(authed(jsonRequest(http.MethodDelete, target, nil), otherToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("the owner can delete it", func(t *testing.T) {
		resp, err := app.Test(authed(jsonRequest(http.MethodDelete, target, nil), donorToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}

func TestCreateClaim(t *testing.T) {
	srv, app := newTestServer(t)
	donor, _ := seedUser(t, srv, "donor@example.com", models.RoleUser)

	listing := &models.FoodListing{
		Title: "Canned Goods", Status: models.ListingStatusActive,
		ListingType: models.ListingTypeDonation, Quantity: 10, UserID: donor.ID,
	}
	require.NoError(t, srv.listingRepo.Create(context.Background(), listing))

	t.Run("visitors can claim without an account", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/claims", map[string]any{
			"food_id":         listing.ID,
			"requester_name":  "Walk-in Neighbor",
			"requester_email": "neighbor@example.com",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var claim models.FoodClaim
		decodeBody(t, resp, &claim)
		assert.Equal(t, models.ClaimStatusPending, claim.Status)
		assert.Nil(t, claim.RequesterID)
		assert.Equal(t, 1, claim.MembersCount)
	})

	t.Run("a signed-in claimant gets linked", func(t *testing.T) {
		claimant, token := seedUser(t, srv, "claimant@example.com", models.RoleUser)
		resp, err := app.Test(authed(jsonRequest(http.MethodPost, "/api/claims", map[string]any{
			"food_id":         listing.ID,
			"requester_name":  "Signed In",
			"requester_email": "claimant@example.com",
			"members_count":   4,
		}), token))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var claim models.FoodClaim
		decodeBody(t, resp, &claim)
		require.NotNil(t, claim.RequesterID)
		assert.Equal(t, claimant.ID, *claim.RequesterID)
	})

	t.Run("claiming an unknown listing is 404", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/claims", map[string]any{
			"food_id":         9999,
			"requester_name":  "Nobody",
			"requester_email": "nobody@example.com",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAdminModerationFlow(t *testing.T) {
	srv, app := newTestServer(t)
	donor, _ := seedUser(t, srv, "donor@example.com", models.RoleUser)
	_, adminToken := seedUser(t, srv, "admin@example.com", models.RoleAdmin)

	listing := &models.FoodListing{
		Title: "Bulk Pasta", Status: models.ListingStatusPending,
		ListingType: models.ListingTypeDonation, Quantity: 5, UserID: donor.ID,
	}
	require.NoError(t, srv.listingRepo.Create(context.Background(), listing))

	t.Run("pending queue lists the submission", func(t *testing.T) {
		resp, err := app.Test(authed(jsonRequest(http.MethodGet, "/api/admin/listings", nil), adminToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Listings []models.FoodListing `json:"listings"`
		}
		decodeBody(t, resp, &body)
		require.Len(t, body.Listings, 1)
	})

	t.Run("decline notifies the donor", func(t *testing.T) {
		resp, err := app.Test(authed(jsonRequest(http.MethodPut,
			fmt.Sprintf("/api/admin/listings/%d/review", listing.ID),
			map[string]any{"status": "declined"}), adminToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		notifs, err := srv.notificationRepo.ListForUser(context.Background(), donor.ID, 10)
		require.NoError(t, err)
		require.Len(t, notifs, 1)
		assert.Equal(t, models.NotificationSubmissionDeclined, notifs[0].Type)
	})
}
