package service

import (
	"context"
	"strings"

	"inkwell/internal/access"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

type CreateCommentInput struct {
	Principal access.Principal
	PostSlug  string
	Text      string
	ParentID  *uint
}

type UpdateCommentInput struct {
	Principal access.Principal
	CommentID uint
	Text      string
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

const maxCommentLen = 2000

// CreateComment adds a comment to a post the principal can see. Replying to
// a reply re-roots the comment under the top-level ancestor, which keeps the
// thread exactly two levels deep.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.Principal.IsAnonymous {
		return nil, models.NewAuthRequiredError("Authentication required")
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, models.NewValidationError("Comment text is required")
	}
	if len(text) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 2000 characters)")
	}

	post, err := s.postRepo.GetBySlug(ctx, in.PostSlug, in.Principal)
	if err != nil {
		return nil, err
	}

	level := "top"
	parentID := in.ParentID
	if parentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != post.ID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
		if parent.ParentID != nil {
			parentID = parent.ParentID
		}
		level = "reply"
	}

	comment := &models.Comment{
		Text:     text,
		UserID:   in.Principal.ID,
		PostID:   post.ID,
		ParentID: parentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	observability.CommentsCreated.WithLabelValues(level).Inc()
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns the two-level comment thread for a post the viewer
// can see.
func (s *CommentService) ListComments(ctx context.Context, postSlug string, viewer access.Principal) ([]*models.Comment, error) {
	post, err := s.postRepo.GetBySlug(ctx, postSlug, viewer)
	if err != nil {
		return nil, err
	}
	return s.commentRepo.ListForPost(ctx, post.ID)
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	if in.Principal.IsAnonymous {
		return nil, models.NewAuthRequiredError("Authentication required")
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, models.NewValidationError("Comment text is required")
	}
	if len(text) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 2000 characters)")
	}

	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if !access.CanModifyComment(in.Principal, comment) {
		return nil, models.NewPermissionDeniedError("You can only edit your own comments")
	}

	comment.Text = text
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) DeleteComment(ctx context.Context, principal access.Principal, commentID uint) error {
	if principal.IsAnonymous {
		return models.NewAuthRequiredError("Authentication required")
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if !access.CanModifyComment(principal, comment) {
		return models.NewPermissionDeniedError("You can only delete your own comments")
	}
	return s.commentRepo.Delete(ctx, comment)
}
