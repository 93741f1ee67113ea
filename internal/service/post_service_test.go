package service

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/access"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn            func(context.Context, *models.Post) error
	getByIDFn           func(context.Context, uint) (*models.Post, error)
	getBySlugFn         func(context.Context, string, access.Principal) (*models.Post, error)
	listFn              func(context.Context, repository.PostQuery) ([]*models.Post, error)
	popularFn           func(context.Context, access.Principal, int, int) ([]*models.Post, error)
	updateFn            func(context.Context, *models.Post) error
	deleteFn            func(context.Context, *models.Post) error
	slugExistsFn        func(context.Context, string) (bool, error)
	replaceCategoriesFn func(context.Context, *models.Post, []uint) error
	replaceTagsFn       func(context.Context, *models.Post, []uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetBySlug(ctx context.Context, slug string, viewer access.Principal) (*models.Post, error) {
	return s.getBySlugFn(ctx, slug, viewer)
}
func (s *postRepoStub) List(ctx context.Context, q repository.PostQuery) ([]*models.Post, error) {
	return s.listFn(ctx, q)
}
func (s *postRepoStub) Popular(ctx context.Context, viewer access.Principal, limit, offset int) ([]*models.Post, error) {
	return s.popularFn(ctx, viewer, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, post *models.Post) error {
	return s.deleteFn(ctx, post)
}
func (s *postRepoStub) SlugExists(ctx context.Context, slug string) (bool, error) {
	return s.slugExistsFn(ctx, slug)
}
func (s *postRepoStub) ReplaceCategories(ctx context.Context, post *models.Post, ids []uint) error {
	return s.replaceCategoriesFn(ctx, post, ids)
}
func (s *postRepoStub) ReplaceTags(ctx context.Context, post *models.Post, ids []uint) error {
	return s.replaceTagsFn(ctx, post, ids)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:  func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, _ uint) (*models.Post, error) { return &models.Post{}, nil },
		getBySlugFn: func(_ context.Context, _ string, _ access.Principal) (*models.Post, error) {
			return &models.Post{}, nil
		},
		listFn: func(_ context.Context, _ repository.PostQuery) ([]*models.Post, error) { return nil, nil },
		popularFn: func(_ context.Context, _ access.Principal, _, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		updateFn:            func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:            func(_ context.Context, _ *models.Post) error { return nil },
		slugExistsFn:        func(_ context.Context, _ string) (bool, error) { return false, nil },
		replaceCategoriesFn: func(_ context.Context, _ *models.Post, _ []uint) error { return nil },
		replaceTagsFn:       func(_ context.Context, _ *models.Post, _ []uint) error { return nil },
	}
}

// assertAppErrorCode asserts that err is an AppError carrying the given code.
func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

var (
	reader = access.Principal{ID: 1, Role: models.RoleReader, Active: true}
	author = access.Principal{ID: 2, Role: models.RoleAuthor, Active: true}
	admin  = access.Principal{ID: 3, Role: models.RoleAdmin, Active: true}
)

func TestPostService_CreatePost_Permissions(t *testing.T) {
	svc := NewPostService(noopPostRepo())
	ctx := context.Background()

	tests := []struct {
		name         string
		principal    access.Principal
		expectedCode string
	}{
		{"Anonymous", access.Anonymous(), models.CodeAuthRequired},
		{"Reader", reader, models.CodePermissionDenied},
		{"Author", author, ""},
		{"Admin", admin, ""},
		{"Staff Reader", access.Principal{ID: 4, Role: models.RoleReader, Staff: true, Active: true}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(ctx, CreatePostInput{
				Principal: tt.principal,
				Title:     "A Post",
				Content:   "Body",
			})
			if tt.expectedCode == "" {
				assert.NoError(t, err)
			} else {
				assertAppErrorCode(t, err, tt.expectedCode)
			}
		})
	}
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	svc := NewPostService(noopPostRepo())
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, CreatePostInput{Principal: author, Content: "Body"})
	assertAppErrorCode(t, err, models.CodeValidation)

	_, err = svc.CreatePost(ctx, CreatePostInput{Principal: author, Title: "T"})
	assertAppErrorCode(t, err, models.CodeValidation)

	_, err = svc.CreatePost(ctx, CreatePostInput{Principal: author, Title: "T", Content: "B", Status: "archived"})
	assertAppErrorCode(t, err, models.CodeValidation)
}

func TestPostService_CreatePost_SlugDedup(t *testing.T) {
	repo := noopPostRepo()
	taken := map[string]bool{"my-post": true, "my-post-1": true}
	repo.slugExistsFn = func(_ context.Context, s string) (bool, error) { return taken[s], nil }

	var created *models.Post
	repo.createFn = func(_ context.Context, p *models.Post) error {
		created = p
		return nil
	}

	svc := NewPostService(repo)
	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		Principal: author,
		Title:     "My Post!",
		Content:   "Body",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "my-post-2", created.Slug)
}

func TestPostService_CreatePost_AuthorIsPrincipal(t *testing.T) {
	repo := noopPostRepo()
	var created *models.Post
	repo.createFn = func(_ context.Context, p *models.Post) error {
		created = p
		return nil
	}

	svc := NewPostService(repo)
	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		Principal: author,
		Title:     "T",
		Content:   "B",
	})
	require.NoError(t, err)
	assert.Equal(t, author.ID, created.UserID)
	assert.Equal(t, models.PostStatusDraft, created.Status, "status defaults to draft")
}

func TestPostService_UpdatePost_Permissions(t *testing.T) {
	ownPost := &models.Post{ID: 1, Slug: "p", UserID: author.ID, Status: models.PostStatusPublished}

	repo := noopPostRepo()
	repo.getBySlugFn = func(_ context.Context, _ string, _ access.Principal) (*models.Post, error) {
		clone := *ownPost
		return &clone, nil
	}
	svc := NewPostService(repo)
	ctx := context.Background()

	t.Run("Owner Can Update", func(t *testing.T) {
		_, err := svc.UpdatePost(ctx, UpdatePostInput{Principal: author, Slug: "p", Title: "New"})
		assert.NoError(t, err)
	})

	t.Run("Admin Can Update", func(t *testing.T) {
		_, err := svc.UpdatePost(ctx, UpdatePostInput{Principal: admin, Slug: "p", Title: "New"})
		assert.NoError(t, err)
	})

	t.Run("Other User Forbidden", func(t *testing.T) {
		_, err := svc.UpdatePost(ctx, UpdatePostInput{Principal: reader, Slug: "p", Title: "New"})
		assertAppErrorCode(t, err, models.CodePermissionDenied)
	})

	t.Run("Anonymous Unauthorized", func(t *testing.T) {
		_, err := svc.UpdatePost(ctx, UpdatePostInput{Principal: access.Anonymous(), Slug: "p", Title: "New"})
		assertAppErrorCode(t, err, models.CodeAuthRequired)
	})
}

func TestPostService_UpdatePost_SlugStable(t *testing.T) {
	repo := noopPostRepo()
	repo.getBySlugFn = func(_ context.Context, _ string, _ access.Principal) (*models.Post, error) {
		return &models.Post{ID: 1, Slug: "original-title", UserID: author.ID}, nil
	}
	var updated *models.Post
	repo.updateFn = func(_ context.Context, p *models.Post) error {
		updated = p
		return nil
	}

	svc := NewPostService(repo)
	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		Principal: author,
		Slug:      "original-title",
		Title:     "Completely Different Title",
	})
	require.NoError(t, err)
	assert.Equal(t, "original-title", updated.Slug)
}

func TestPostService_DeletePost_HiddenDraftIsNotFound(t *testing.T) {
	repo := noopPostRepo()
	// The repo applies visibility, so another user's draft never comes back.
	repo.getBySlugFn = func(_ context.Context, _ string, _ access.Principal) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post")
	}

	svc := NewPostService(repo)
	err := svc.DeletePost(context.Background(), reader, "someone-elses-draft")
	assertAppErrorCode(t, err, models.CodeNotFound)
}
