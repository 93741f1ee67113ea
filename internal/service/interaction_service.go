package service

import (
	"context"

	"inkwell/internal/access"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

// InteractionService handles likes and saved posts. Targets resolve through
// the viewer's visibility first, so interacting with a hidden draft reads as
// NotFound.
type InteractionService struct {
	interactionRepo repository.InteractionRepository
	postRepo        repository.PostRepository
	commentRepo     repository.CommentRepository
}

// ToggleResult reports the state after a toggle.
type ToggleResult struct {
	Active bool  `json:"active"`
	Count  int64 `json:"count"`
}

func NewInteractionService(
	interactionRepo repository.InteractionRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
) *InteractionService {
	return &InteractionService{
		interactionRepo: interactionRepo,
		postRepo:        postRepo,
		commentRepo:     commentRepo,
	}
}

// TogglePostLike flips the principal's like on the post.
func (s *InteractionService) TogglePostLike(ctx context.Context, principal access.Principal, postSlug string) (*ToggleResult, error) {
	if principal.IsAnonymous {
		return nil, models.NewAuthRequiredError("Authentication required")
	}

	post, err := s.postRepo.GetBySlug(ctx, postSlug, principal)
	if err != nil {
		return nil, err
	}

	liked, count, err := s.interactionRepo.ToggleLike(ctx, principal.ID, models.PostTarget(post.ID))
	if err != nil {
		return nil, err
	}
	observability.RecordLikeToggle("post", liked)
	return &ToggleResult{Active: liked, Count: count}, nil
}

// ToggleCommentLike flips the principal's like on the comment. The comment
// only counts as visible if its post is.
func (s *InteractionService) ToggleCommentLike(ctx context.Context, principal access.Principal, commentID uint) (*ToggleResult, error) {
	if principal.IsAnonymous {
		return nil, models.NewAuthRequiredError("Authentication required")
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, comment.PostID)
	if err != nil {
		return nil, err
	}
	if !access.CanViewPost(principal, post) {
		return nil, models.NewNotFoundError("Comment")
	}

	liked, count, err := s.interactionRepo.ToggleLike(ctx, principal.ID, models.CommentTarget(comment.ID))
	if err != nil {
		return nil, err
	}
	observability.RecordLikeToggle("comment", liked)
	return &ToggleResult{Active: liked, Count: count}, nil
}

// ToggleSave flips whether the post sits in the principal's saved list.
func (s *InteractionService) ToggleSave(ctx context.Context, principal access.Principal, postSlug string) (*ToggleResult, error) {
	if principal.IsAnonymous {
		return nil, models.NewAuthRequiredError("Authentication required")
	}

	post, err := s.postRepo.GetBySlug(ctx, postSlug, principal)
	if err != nil {
		return nil, err
	}

	saved, err := s.interactionRepo.ToggleSave(ctx, principal.ID, post.ID)
	if err != nil {
		return nil, err
	}
	observability.RecordSaveToggle(saved)
	return &ToggleResult{Active: saved}, nil
}

// SavedPosts lists the principal's saved posts, most recently saved first.
func (s *InteractionService) SavedPosts(ctx context.Context, principal access.Principal, limit, offset int) ([]*models.Post, error) {
	if principal.IsAnonymous {
		return nil, models.NewAuthRequiredError("Authentication required")
	}
	return s.interactionRepo.ListSaved(ctx, principal.ID, limit, offset)
}
