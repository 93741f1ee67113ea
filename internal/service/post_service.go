package service

import (
	"context"

	"inkwell/internal/access"
	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/slug"
)

type PostService struct {
	postRepo repository.PostRepository
}

type CreatePostInput struct {
	Principal   access.Principal
	Title       string
	Content     string
	ImageRef    string
	Status      models.PostStatus
	CategoryIDs []uint
	TagIDs      []uint
}

type ListPostsInput struct {
	Viewer       access.Principal
	Status       models.PostStatus
	CategorySlug string
	TagSlug      string
	AuthorID     uint
	Search       string
	Sort         repository.PostSort
	Limit        int
	Offset       int
}

type UpdatePostInput struct {
	Principal   access.Principal
	Slug        string
	Title       string
	Content     string
	ImageRef    string
	Status      models.PostStatus
	CategoryIDs *[]uint
	TagIDs      *[]uint
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

const (
	maxTitleLen   = 300
	maxContentLen = 50000 // 50K characters
)

// CreatePost creates a post owned by the calling principal. The slug is
// derived from the title and disambiguated against existing posts; the
// author can never be chosen by the caller.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Principal.IsAnonymous {
		return nil, models.NewAuthRequiredError("Authentication required")
	}
	if !access.CanAuthor(in.Principal) {
		return nil, models.NewPermissionDeniedError("Only authors can create posts")
	}

	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	status := in.Status
	if status == "" {
		status = models.PostStatusDraft
	}
	if !models.ValidPostStatus(status) {
		return nil, models.NewValidationError("Invalid status")
	}

	postSlug, err := slug.Unique(ctx, slug.Generate(in.Title), s.postRepo.SlugExists)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:    in.Title,
		Slug:     postSlug,
		Content:  in.Content,
		ImageRef: in.ImageRef,
		Status:   status,
		UserID:   in.Principal.ID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	if len(in.CategoryIDs) > 0 {
		if err := s.postRepo.ReplaceCategories(ctx, post, in.CategoryIDs); err != nil {
			return nil, err
		}
	}
	if len(in.TagIDs) > 0 {
		if err := s.postRepo.ReplaceTags(ctx, post, in.TagIDs); err != nil {
			return nil, err
		}
	}

	observability.PostsCreated.WithLabelValues(string(status)).Inc()
	return s.postRepo.GetBySlug(ctx, post.Slug, in.Principal)
}

// GetPost resolves a post by slug for the viewer. Drafts the viewer may not
// see surface as NotFound.
func (s *PostService) GetPost(ctx context.Context, postSlug string, viewer access.Principal) (*models.Post, error) {
	return s.postRepo.GetBySlug(ctx, postSlug, viewer)
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	return s.postRepo.List(ctx, repository.PostQuery{
		Viewer: in.Viewer,
		Filter: repository.PostFilter{
			Status:       in.Status,
			CategorySlug: in.CategorySlug,
			TagSlug:      in.TagSlug,
			AuthorID:     in.AuthorID,
			Search:       in.Search,
		},
		Sort:   in.Sort,
		Limit:  in.Limit,
		Offset: in.Offset,
	})
}

// PopularPosts lists visible posts by like count. The anonymous view of the
// first page is the hot path and is served from cache.
func (s *PostService) PopularPosts(ctx context.Context, viewer access.Principal, limit, offset int) ([]*models.Post, error) {
	if viewer.IsAnonymous && offset == 0 && limit <= 20 {
		var posts []*models.Post
		err := cache.Aside(ctx, cache.PopularKey(), &posts, cache.PopularTTL, func() error {
			var fetchErr error
			posts, fetchErr = s.postRepo.Popular(ctx, viewer, limit, offset)
			return fetchErr
		})
		return posts, err
	}
	return s.postRepo.Popular(ctx, viewer, limit, offset)
}

// MyPosts lists the caller's own posts, drafts included.
func (s *PostService) MyPosts(ctx context.Context, principal access.Principal, limit, offset int) ([]*models.Post, error) {
	if principal.IsAnonymous {
		return nil, models.NewAuthRequiredError("Authentication required")
	}
	return s.postRepo.List(ctx, repository.PostQuery{
		Viewer: principal,
		Filter: repository.PostFilter{AuthorID: principal.ID},
		Limit:  limit,
		Offset: offset,
	})
}

// UpdatePost applies a partial update. The slug stays stable across title
// edits so published URLs never break.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if in.Principal.IsAnonymous {
		return nil, models.NewAuthRequiredError("Authentication required")
	}

	post, err := s.postRepo.GetBySlug(ctx, in.Slug, in.Principal)
	if err != nil {
		return nil, err
	}
	if !access.CanEditPost(in.Principal, post) {
		return nil, models.NewPermissionDeniedError("You can only update your own posts")
	}

	if in.Title != "" {
		if len(in.Title) > maxTitleLen {
			return nil, models.NewValidationError("Title too long (max 300 characters)")
		}
		post.Title = in.Title
	}
	if in.Content != "" {
		if len(in.Content) > maxContentLen {
			return nil, models.NewValidationError("Content too long (max 50000 characters)")
		}
		post.Content = in.Content
	}
	if in.ImageRef != "" {
		post.ImageRef = in.ImageRef
	}
	if in.Status != "" {
		if !models.ValidPostStatus(in.Status) {
			return nil, models.NewValidationError("Invalid status")
		}
		post.Status = in.Status
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	if in.CategoryIDs != nil {
		if err := s.postRepo.ReplaceCategories(ctx, post, *in.CategoryIDs); err != nil {
			return nil, err
		}
	}
	if in.TagIDs != nil {
		if err := s.postRepo.ReplaceTags(ctx, post, *in.TagIDs); err != nil {
			return nil, err
		}
	}

	return s.postRepo.GetBySlug(ctx, post.Slug, in.Principal)
}

// DeletePost removes the post and its comments, likes and saves. Visibility
// applies first, so deleting someone else's draft reads as NotFound rather
// than Forbidden.
func (s *PostService) DeletePost(ctx context.Context, principal access.Principal, postSlug string) error {
	if principal.IsAnonymous {
		return models.NewAuthRequiredError("Authentication required")
	}

	post, err := s.postRepo.GetBySlug(ctx, postSlug, principal)
	if err != nil {
		return err
	}
	if !access.CanEditPost(principal, post) {
		return models.NewPermissionDeniedError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, post)
}
