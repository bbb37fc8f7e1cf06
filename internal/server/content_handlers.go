package server

import (
	"foodbridge/internal/models"

	"github.com/gofiber/fiber/v2"
)

type createCommentRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

type createCommunityPostRequest struct {
	Title    string `json:"title" validate:"required,min=2,max=200"`
	Content  string `json:"content" validate:"required,max=8000"`
	Category string `json:"category" validate:"max=60"`
}

// GetBlogPosts returns published posts, newest first.
func (s *Server) GetBlogPosts(c *fiber.Ctx) error {
	posts, err := s.blogRepo.ListPublished(c.Context())
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// GetBlogPost returns one published post by slug.
func (s *Server) GetBlogPost(c *fiber.Ctx) error {
	slug := c.Params("slug")

	post, err := s.blogRepo.GetBySlug(c.Context(), slug)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Blog post", slug))
	}

	// A signed-in reader also learns whether they liked the post.
	liked := false
	if userID, ok := s.optionalUserID(c); ok {
		liked, _ = s.blogRepo.HasLiked(c.Context(), post.ID, userID)
	}
	return c.JSON(fiber.Map{"post": post, "liked": liked})
}

// GetBlogComments returns the comments of a published post.
func (s *Server) GetBlogComments(c *fiber.Ctx) error {
	slug := c.Params("slug")

	post, err := s.blogRepo.GetBySlug(c.Context(), slug)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Blog post", slug))
	}

	comments, err := s.blogRepo.ListComments(c.Context(), post.ID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// CreateBlogComment adds a comment to a blog post.
func (s *Server) CreateBlogComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req createCommentRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.communityService.CommentOnBlogPost(c.Context(), currentUserID(c), postID, req.Content)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// LikeBlogPost records the caller's like.
func (s *Server) LikeBlogPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.communityService.LikeBlogPost(c.Context(), postID, currentUserID(c)); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"liked": true})
}

// UnlikeBlogPost removes the caller's like.
func (s *Server) UnlikeBlogPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.communityService.UnlikeBlogPost(c.Context(), postID, currentUserID(c)); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"liked": false})
}

// GetCommunityPosts returns discussion posts, newest first.
func (s *Server) GetCommunityPosts(c *fiber.Ctx) error {
	page, limit := parsePagination(c)

	posts, err := s.communityRepo.ListPosts(c.Context(), limit, (page-1)*limit)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"posts": posts, "page": page, "limit": limit})
}

// CreateCommunityPost starts a new discussion.
func (s *Server) CreateCommunityPost(c *fiber.Ctx) error {
	var req createCommunityPostRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.communityService.CreatePost(c.Context(), currentUserID(c), req.Title, req.Content, req.Category)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// CreateCommunityComment replies to a discussion post.
func (s *Server) CreateCommunityComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req createCommentRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.communityService.CreateComment(c.Context(), currentUserID(c), postID, req.Content)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// LikeCommunityPost records the caller's like.
func (s *Server) LikeCommunityPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.communityService.LikePost(c.Context(), postID, currentUserID(c)); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"liked": true})
}

// UnlikeCommunityPost removes the caller's like.
func (s *Server) UnlikeCommunityPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.communityService.UnlikePost(c.Context(), postID, currentUserID(c)); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"liked": false})
}

// DeleteCommunityPost removes a post authored by the caller.
func (s *Server) DeleteCommunityPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.communityRepo.GetPost(c.Context(), postID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	if post.AuthorID != currentUserID(c) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("You can only delete your own posts"))
	}

	if err := s.communityRepo.DeletePost(c.Context(), postID); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
