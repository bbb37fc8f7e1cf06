package server

import (
	"io"
	"log/slog"

	"foodbridge/internal/models"
	"foodbridge/internal/notifications"
	"foodbridge/internal/repository"
	"foodbridge/internal/storage"

	"github.com/gofiber/fiber/v2"
)

type createListingRequest struct {
	Title       string  `json:"title" validate:"required,min=2,max=160"`
	Description string  `json:"description" validate:"max=4000"`
	ImageURL    string  `json:"image_url"`
	Quantity    float64 `json:"quantity" validate:"gte=0"`
	Unit        string  `json:"unit" validate:"max=30"`
	Category    string  `json:"category" validate:"max=60"`
	ListingType string  `json:"listing_type" validate:"omitempty,oneof=donation trade"`
	Location    string  `json:"location" validate:"max=200"`
}

// GetListings returns active listings, optionally filtered by category,
// type, location, or owner.
func (s *Server) GetListings(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	filters := repository.ListingFilters{
		Category:    c.Query("category"),
		ListingType: models.ListingType(c.Query("listing_type")),
		Location:    c.Query("location"),
		Page:        page,
		Limit:       limit,
	}
	if c.Query("mine") == "true" {
		if userID, ok := s.optionalUserID(c); ok {
			filters.UserID = userID
			// Owners see their own listings in every status.
			filters.Status = models.ListingStatus(c.Query("status", string(models.ListingStatusActive)))
		}
	}

	listings, err := s.listingRepo.List(c.Context(), filters)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{
		"listings": listings,
		"page":     page,
		"limit":    limit,
	})
}

// SearchListings performs a text search over active listings.
func (s *Server) SearchListings(c *fiber.Ctx) error {
	term := c.Query("q")
	if term == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search term is required"))
	}

	page, limit := parsePagination(c)
	filters := repository.ListingFilters{
		Category: c.Query("category"),
		Page:     page,
		Limit:    limit,
	}

	listings, err := s.listingRepo.Search(c.Context(), term, filters)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"listings": listings})
}

// GetListing returns one listing by ID.
func (s *Server) GetListing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	listing, err := s.listingRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(listing)
}

// CreateListing stores a new listing in pending status for admin review.
func (s *Server) CreateListing(c *fiber.Ctx) error {
	var req createListingRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	listingType := models.ListingType(req.ListingType)
	if listingType == "" {
		listingType = models.ListingTypeDonation
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	listing := &models.FoodListing{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Quantity:    quantity,
		Unit:        req.Unit,
		Category:    req.Category,
		ListingType: listingType,
		Location:    req.Location,
		Status:      models.ListingStatusPending,
		UserID:      currentUserID(c),
	}
	if err := s.listingRepo.Create(c.Context(), listing); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	s.publishListingEvent(c, notifications.ActionInsert, listing)
	return c.Status(fiber.StatusCreated).JSON(listing)
}

// UpdateListing modifies a listing owned by the caller.
func (s *Server) UpdateListing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	listing, err := s.listingRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	if listing.UserID != currentUserID(c) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("You can only edit your own listings"))
	}

	var req createListingRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	listing.Title = req.Title
	listing.Description = req.Description
	if req.ImageURL != "" {
		listing.ImageURL = req.ImageURL
	}
	if req.Quantity > 0 {
		listing.Quantity = req.Quantity
	}
	listing.Unit = req.Unit
	listing.Category = req.Category
	listing.Location = req.Location
	if req.ListingType != "" {
		listing.ListingType = models.ListingType(req.ListingType)
	}

	if err := s.listingRepo.Update(c.Context(), listing); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	s.publishListingEvent(c, notifications.ActionUpdate, listing)
	return c.JSON(listing)
}

// DeleteListing removes a listing owned by the caller.
func (s *Server) DeleteListing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	listing, err := s.listingRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	if listing.UserID != currentUserID(c) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("You can only delete your own listings"))
	}

	if err := s.listingRepo.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	s.publishListingEvent(c, notifications.ActionDelete, fiber.Map{"id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// UploadImage stores a multipart image and returns its public URL.
func (s *Server) UploadImage(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A 'file' form field is required"))
	}
	if fileHeader.Size > 10<<20 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("File exceeds the 10MB limit"))
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !storage.AllowedImageType(contentType) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Only JPEG, PNG, GIF and WebP images are accepted"))
	}

	f, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	object := storage.ObjectName(fileHeader.Filename)
	url, err := s.uploader.Upload(c.Context(), s.config.StorageBucket, object, data, contentType)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": url})
}

// publishListingEvent best-effort publishes a listing change to the shared
// feed. Failures are logged, never surfaced to the caller.
func (s *Server) publishListingEvent(c *fiber.Ctx, action string, payload interface{}) {
	err := s.notifier.PublishResource(c.Context(), notifications.FeedFoodListings, notifications.Event{
		Resource: notifications.FeedFoodListings,
		Action:   action,
		Payload:  payload,
	})
	if err != nil {
		slog.Warn("failed to publish listing event", "action", action, "error", err)
	}
}
