package service

import (
	"context"
	"strings"

	"foodbridge/internal/models"
	"foodbridge/internal/repository"
)

// CommunityService handles discussion posts and blog engagement.
type CommunityService struct {
	community repository.CommunityRepository
	blog      repository.BlogRepository
}

// NewCommunityService wires a CommunityService.
func NewCommunityService(community repository.CommunityRepository, blog repository.BlogRepository) *CommunityService {
	return &CommunityService{community: community, blog: blog}
}

// CreatePost validates and stores a community post.
func (s *CommunityService) CreatePost(ctx context.Context, authorID uint, title, content, category string) (*models.CommunityPost, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, models.NewValidationError("Title and content are required")
	}

	post := &models.CommunityPost{
		Title:    title,
		Content:  content,
		Category: category,
		AuthorID: authorID,
	}
	if post.Category == "" {
		post.Category = "general"
	}
	if err := s.community.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment replies to a community post.
func (s *CommunityService) CreateComment(ctx context.Context, authorID, postID uint, content string) (*models.CommunityComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if _, err := s.community.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.CommunityComment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.community.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// LikePost records a like on a community post.
func (s *CommunityService) LikePost(ctx context.Context, postID, userID uint) error {
	return s.community.LikePost(ctx, postID, userID)
}

// UnlikePost removes a like on a community post.
func (s *CommunityService) UnlikePost(ctx context.Context, postID, userID uint) error {
	return s.community.UnlikePost(ctx, postID, userID)
}

// LikeBlogPost records a like and bumps the blog post's counter.
func (s *CommunityService) LikeBlogPost(ctx context.Context, postID, userID uint) error {
	return s.blog.Like(ctx, postID, userID)
}

// UnlikeBlogPost removes a like and decrements the counter.
func (s *CommunityService) UnlikeBlogPost(ctx context.Context, postID, userID uint) error {
	return s.blog.Unlike(ctx, postID, userID)
}

// CommentOnBlogPost replies to a published blog post.
func (s *CommunityService) CommentOnBlogPost(ctx context.Context, authorID, postID uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if _, err := s.blog.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.blog.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
