package repository

import (
	"context"
	"errors"

	"inkwell/internal/access"
	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// PostSort names the supported list orderings. A leading '-' means descending.
type PostSort string

const (
	SortNewest       PostSort = "-created_at"
	SortOldest       PostSort = "created_at"
	SortUpdatedDesc  PostSort = "-updated_at"
	SortUpdatedAsc   PostSort = "updated_at"
	SortTitleAsc     PostSort = "title"
	SortTitleDesc    PostSort = "-title"
)

// PostFilter restricts List results. Zero values mean "no restriction".
// Visibility is applied before any of these: a filter can only narrow what
// the viewer is allowed to see, never widen it.
type PostFilter struct {
	Status       models.PostStatus
	CategorySlug string
	TagSlug      string
	AuthorID     uint
	Search       string
}

// PostQuery bundles filter, sort and paging for List.
type PostQuery struct {
	Viewer access.Principal
	Filter PostFilter
	Sort   PostSort
	Limit  int
	Offset int
}

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string, viewer access.Principal) (*models.Post, error)
	List(ctx context.Context, q PostQuery) ([]*models.Post, error)
	Popular(ctx context.Context, viewer access.Principal, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, post *models.Post) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	ReplaceCategories(ctx context.Context, post *models.Post, categoryIDs []uint) error
	ReplaceTags(ctx context.Context, post *models.Post, tagIDs []uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return err
	}
	cache.InvalidatePopular(ctx)
	return nil
}

// GetByID loads a post without applying the visibility rule. Callers must
// authorize through the access package before exposing the result.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), 0).
		Preload("User").
		Preload("Categories").
		Preload("Tags").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, err
	}
	return &post, nil
}

// GetBySlug applies the visibility rule in SQL: a draft invisible to the
// viewer produces NotFound, indistinguishable from a missing slug.
func (r *postRepository) GetBySlug(ctx context.Context, slug string, viewer access.Principal) (*models.Post, error) {
	var post models.Post

	fetch := func() error {
		err := r.applyVisibility(r.applyPostDetails(r.db.WithContext(ctx), viewer.ID), viewer).
			Preload("User").
			Preload("Categories").
			Preload("Tags").
			Where("posts.slug = ?", slug).
			First(&post).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post")
		}
		return err
	}

	var err error
	if viewer.IsAnonymous {
		// Anonymous reads share one cache entry; personalized fields are
		// always false for anonymous viewers so the entry is reusable.
		err = cache.Aside(ctx, cache.PostKey(slug), &post, cache.PostTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, q PostQuery) ([]*models.Post, error) {
	if q.Limit <= 0 {
		q.Limit = 20
	}
	var posts []*models.Post

	db := r.applyVisibility(r.applyPostDetails(r.db.WithContext(ctx), q.Viewer.ID), q.Viewer).
		Preload("User").
		Preload("Categories").
		Preload("Tags")

	f := q.Filter
	if f.Status != "" {
		db = db.Where("posts.status = ?", f.Status)
	}
	if f.AuthorID != 0 {
		db = db.Where("posts.user_id = ?", f.AuthorID)
	}
	if f.CategorySlug != "" {
		db = db.
			Joins("JOIN post_categories ON post_categories.post_id = posts.id").
			Joins("JOIN categories ON categories.id = post_categories.category_id AND categories.slug = ?", f.CategorySlug)
	}
	if f.TagSlug != "" {
		db = db.
			Joins("JOIN post_tags ON post_tags.post_id = posts.id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id AND tags.slug = ?", f.TagSlug)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		db = db.Where("posts.title ILIKE ? OR posts.content ILIKE ?", like, like)
	}

	err := r.applySort(db, q.Sort).
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&posts).Error
	return posts, err
}

// Popular orders visible posts by like count, newest first among ties, with
// the id as a final key so the order is a deterministic total order.
func (r *postRepository) Popular(ctx context.Context, viewer access.Principal, limit, offset int) ([]*models.Post, error) {
	if limit <= 0 {
		limit = 20
	}
	var posts []*models.Post
	err := r.applyVisibility(r.applyPostDetails(r.db.WithContext(ctx), viewer.ID), viewer).
		Preload("User").
		Preload("Categories").
		Preload("Tags").
		Order("likes_count DESC, posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

// applySort appends the ORDER BY clause for the requested sort key.
// Unrecognized keys fall back to newest-created-first.
func (r *postRepository) applySort(db *gorm.DB, sort PostSort) *gorm.DB {
	switch sort {
	case SortOldest:
		return db.Order("posts.created_at ASC")
	case SortUpdatedDesc:
		return db.Order("posts.updated_at DESC")
	case SortUpdatedAsc:
		return db.Order("posts.updated_at ASC")
	case SortTitleAsc:
		return db.Order("posts.title ASC")
	case SortTitleDesc:
		return db.Order("posts.title DESC")
	default: // SortNewest and anything unrecognized
		return db.Order("posts.created_at DESC")
	}
}

// applyVisibility narrows the query to what the viewer may see: everything
// for admins, published-only for anonymous viewers, published plus own posts
// for everyone else.
func (r *postRepository) applyVisibility(db *gorm.DB, viewer access.Principal) *gorm.DB {
	if access.IsAdmin(viewer) {
		return db
	}
	if viewer.IsAnonymous || viewer.ID == 0 {
		return db.Where("posts.status = ?", models.PostStatusPublished)
	}
	return db.Where("posts.status = ? OR posts.user_id = ?", models.PostStatusPublished, viewer.ID)
}

// applyPostDetails adds subqueries to fetch counts and viewer flags in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) as comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked"+
			", EXISTS(SELECT 1 FROM saved_posts WHERE saved_posts.post_id = posts.id AND saved_posts.user_id = ?) as saved",
			currentUserID, currentUserID)
	}

	return db.Select(selectQuery + ", false as liked, false as saved")
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.Slug)
	return nil
}

// Delete removes the post and everything that hangs off it: comments, likes
// on the post and on its comments, and saved-post rows. Interaction rows are
// hard-deleted; the post and its comments keep the soft-delete convention.
func (r *postRepository) Delete(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`DELETE FROM likes WHERE post_id = ? OR comment_id IN (SELECT id FROM comments WHERE post_id = ?)`,
			post.ID, post.ID,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM saved_posts WHERE post_id = ?`, post.ID).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, post.ID).Error
	})
	if err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.Slug)
	return nil
}

func (r *postRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) ReplaceCategories(ctx context.Context, post *models.Post, categoryIDs []uint) error {
	var categories []models.Category
	if len(categoryIDs) > 0 {
		if err := r.db.WithContext(ctx).Where("id IN ?", categoryIDs).Find(&categories).Error; err != nil {
			return err
		}
		if len(categories) != len(categoryIDs) {
			return models.NewValidationError("One or more categories do not exist")
		}
	}
	if err := r.db.WithContext(ctx).Model(post).Association("Categories").Replace(&categories); err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.Slug)
	return nil
}

func (r *postRepository) ReplaceTags(ctx context.Context, post *models.Post, tagIDs []uint) error {
	var tags []models.Tag
	if len(tagIDs) > 0 {
		if err := r.db.WithContext(ctx).Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
			return err
		}
		if len(tags) != len(tagIDs) {
			return models.NewValidationError("One or more tags do not exist")
		}
	}
	if err := r.db.WithContext(ctx).Model(post).Association("Tags").Replace(&tags); err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.Slug)
	return nil
}
