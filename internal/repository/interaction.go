package repository

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// InteractionRepository covers likes and saved posts. Both operations are
// toggles: the partial unique indexes on likes and the composite index on
// saved_posts make concurrent duplicate inserts impossible, so two racing
// toggles resolve to insert-then-delete rather than two rows.
type InteractionRepository interface {
	ToggleLike(ctx context.Context, userID uint, target models.LikeTarget) (liked bool, count int64, err error)
	ToggleSave(ctx context.Context, userID, postID uint) (saved bool, err error)
	ListSaved(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
}

type interactionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository creates a new interaction repository
func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &interactionRepository{db: db}
}

// ToggleLike flips the user's like on the target and reports the state and
// like count after the flip. The insert targets the partial unique index so
// that ON CONFLICT DO NOTHING detects an existing like atomically; zero rows
// affected means the like existed and the toggle becomes a removal.
func (r *interactionRepository) ToggleLike(ctx context.Context, userID uint, target models.LikeTarget) (bool, int64, error) {
	if err := target.Validate(); err != nil {
		return false, 0, err
	}

	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var insert *gorm.DB
		if target.Kind == models.LikeTargetPost {
			insert = tx.Exec(
				`INSERT INTO likes (user_id, post_id, created_at) VALUES (?, ?, NOW())
				 ON CONFLICT (user_id, post_id) WHERE post_id IS NOT NULL DO NOTHING`,
				userID, target.ID,
			)
		} else {
			insert = tx.Exec(
				`INSERT INTO likes (user_id, comment_id, created_at) VALUES (?, ?, NOW())
				 ON CONFLICT (user_id, comment_id) WHERE comment_id IS NOT NULL DO NOTHING`,
				userID, target.ID,
			)
		}
		if insert.Error != nil {
			return insert.Error
		}
		if insert.RowsAffected > 0 {
			liked = true
			return nil
		}

		var del *gorm.DB
		if target.Kind == models.LikeTargetPost {
			del = tx.Exec(`DELETE FROM likes WHERE user_id = ? AND post_id = ?`, userID, target.ID)
		} else {
			del = tx.Exec(`DELETE FROM likes WHERE user_id = ? AND comment_id = ?`, userID, target.ID)
		}
		if del.Error != nil {
			return del.Error
		}
		liked = false
		return nil
	})
	if err != nil {
		return false, 0, err
	}

	var count int64
	countQuery := r.db.WithContext(ctx).Model(&models.Like{})
	if target.Kind == models.LikeTargetPost {
		countQuery = countQuery.Where("post_id = ?", target.ID)
	} else {
		countQuery = countQuery.Where("comment_id = ?", target.ID)
	}
	if err := countQuery.Count(&count).Error; err != nil {
		return liked, 0, err
	}

	cache.InvalidatePopular(ctx)
	return liked, count, nil
}

// ToggleSave flips the saved flag for the post and reports the state after
// the flip.
func (r *interactionRepository) ToggleSave(ctx context.Context, userID, postID uint) (bool, error) {
	var saved bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		insert := tx.Exec(
			`INSERT INTO saved_posts (user_id, post_id, saved_at) VALUES (?, ?, NOW())
			 ON CONFLICT (user_id, post_id) DO NOTHING`,
			userID, postID,
		)
		if insert.Error != nil {
			return insert.Error
		}
		if insert.RowsAffected > 0 {
			saved = true
			return nil
		}

		del := tx.Exec(`DELETE FROM saved_posts WHERE user_id = ? AND post_id = ?`, userID, postID)
		if del.Error != nil {
			return del.Error
		}
		saved = false
		return nil
	})
	return saved, err
}

// ListSaved returns the user's saved posts, most recently saved first. Posts
// that slipped out of the user's visibility since saving are filtered out.
func (r *interactionRepository) ListSaved(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	if limit <= 0 {
		limit = 20
	}
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Select("posts.*, "+
			"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) as comments_count, "+
			"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count, "+
			"EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked, "+
			"true as saved", userID).
		Joins("JOIN saved_posts ON saved_posts.post_id = posts.id AND saved_posts.user_id = ?", userID).
		Where("posts.status = ? OR posts.user_id = ?", models.PostStatusPublished, userID).
		Preload("User").
		Preload("Categories").
		Preload("Tags").
		Order("saved_posts.saved_at DESC, posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}
