package repository

import (
	"context"
	"errors"

	"foodbridge/internal/models"

	"gorm.io/gorm"
)

// CommunityRepository defines persistence operations for community posts,
// comments, and likes.
type CommunityRepository interface {
	// ListPosts returns posts newest first, with author and comments embedded.
	ListPosts(ctx context.Context, limit, offset int) ([]models.CommunityPost, error)
	GetPost(ctx context.Context, id uint) (*models.CommunityPost, error)
	CreatePost(ctx context.Context, post *models.CommunityPost) error
	DeletePost(ctx context.Context, id uint) error

	CreateComment(ctx context.Context, comment *models.CommunityComment) error

	LikePost(ctx context.Context, postID, userID uint) error
	UnlikePost(ctx context.Context, postID, userID uint) error
}

type communityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository returns a new CommunityRepository implementation.
func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

func (r *communityRepository) ListPosts(ctx context.Context, limit, offset int) ([]models.CommunityPost, error) {
	query := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("community_comments.created_at ASC")
		}).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var posts []models.CommunityPost
	if err := query.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *communityRepository) GetPost(ctx context.Context, id uint) (*models.CommunityPost, error) {
	var post models.CommunityPost
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Comments").
		First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Community post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *communityRepository) CreatePost(ctx context.Context, post *models.CommunityPost) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *communityRepository) DeletePost(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.CommunityPost{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Community post", id)
	}
	return nil
}

func (r *communityRepository) CreateComment(ctx context.Context, comment *models.CommunityComment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *communityRepository) LikePost(ctx context.Context, postID, userID uint) error {
	like := models.CommunityPostLike{PostID: postID, UserID: userID}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&like).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.NewConflictError("Post already liked")
			}
			return models.NewInternalError(err)
		}
		return tx.Model(&models.CommunityPost{}).
			Where("id = ?", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + ?", 1)).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *communityRepository) UnlikePost(ctx context.Context, postID, userID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).
			Delete(&models.CommunityPostLike{})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.CommunityPost{}).
			Where("id = ? AND likes_count > 0", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count - ?", 1)).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return models.NewInternalError(err)
	}
	return nil
}
