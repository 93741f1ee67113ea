package service

import (
	"context"
	"testing"

	"inkwell/internal/access"
	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// categoryRepoStub is a stub for repository.CategoryRepository.
type categoryRepoStub struct {
	createFn     func(context.Context, *models.Category) error
	getByIDFn    func(context.Context, uint) (*models.Category, error)
	getBySlugFn  func(context.Context, string) (*models.Category, error)
	listFn       func(context.Context) ([]*models.Category, error)
	updateFn     func(context.Context, *models.Category) error
	deleteFn     func(context.Context, uint) error
	slugExistsFn func(context.Context, string) (bool, error)
}

func (s *categoryRepoStub) Create(ctx context.Context, c *models.Category) error {
	return s.createFn(ctx, c)
}
func (s *categoryRepoStub) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	return s.getByIDFn(ctx, id)
}
func (s *categoryRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *categoryRepoStub) List(ctx context.Context) ([]*models.Category, error) {
	return s.listFn(ctx)
}
func (s *categoryRepoStub) Update(ctx context.Context, c *models.Category) error {
	return s.updateFn(ctx, c)
}
func (s *categoryRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *categoryRepoStub) SlugExists(ctx context.Context, slug string) (bool, error) {
	return s.slugExistsFn(ctx, slug)
}

// tagRepoStub is a stub for repository.TagRepository.
type tagRepoStub struct {
	createFn     func(context.Context, *models.Tag) error
	getByIDFn    func(context.Context, uint) (*models.Tag, error)
	getBySlugFn  func(context.Context, string) (*models.Tag, error)
	listFn       func(context.Context) ([]*models.Tag, error)
	updateFn     func(context.Context, *models.Tag) error
	deleteFn     func(context.Context, uint) error
	slugExistsFn func(context.Context, string) (bool, error)
}

func (s *tagRepoStub) Create(ctx context.Context, tag *models.Tag) error { return s.createFn(ctx, tag) }
func (s *tagRepoStub) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	return s.getByIDFn(ctx, id)
}
func (s *tagRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *tagRepoStub) List(ctx context.Context) ([]*models.Tag, error)       { return s.listFn(ctx) }
func (s *tagRepoStub) Update(ctx context.Context, tag *models.Tag) error     { return s.updateFn(ctx, tag) }
func (s *tagRepoStub) Delete(ctx context.Context, id uint) error             { return s.deleteFn(ctx, id) }
func (s *tagRepoStub) SlugExists(ctx context.Context, slug string) (bool, error) {
	return s.slugExistsFn(ctx, slug)
}

func noopCategoryRepo() *categoryRepoStub {
	return &categoryRepoStub{
		createFn:  func(_ context.Context, _ *models.Category) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Category, error) { return &models.Category{ID: id}, nil },
		getBySlugFn: func(_ context.Context, _ string) (*models.Category, error) {
			return &models.Category{}, nil
		},
		listFn:       func(_ context.Context) ([]*models.Category, error) { return nil, nil },
		updateFn:     func(_ context.Context, _ *models.Category) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
		slugExistsFn: func(_ context.Context, _ string) (bool, error) { return false, nil },
	}
}

func noopTagRepo() *tagRepoStub {
	return &tagRepoStub{
		createFn:     func(_ context.Context, _ *models.Tag) error { return nil },
		getByIDFn:    func(_ context.Context, id uint) (*models.Tag, error) { return &models.Tag{ID: id}, nil },
		getBySlugFn:  func(_ context.Context, _ string) (*models.Tag, error) { return &models.Tag{}, nil },
		listFn:       func(_ context.Context) ([]*models.Tag, error) { return nil, nil },
		updateFn:     func(_ context.Context, _ *models.Tag) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
		slugExistsFn: func(_ context.Context, _ string) (bool, error) { return false, nil },
	}
}

func TestTaxonomyService_AdminOnlyWrites(t *testing.T) {
	svc := NewTaxonomyService(noopCategoryRepo(), noopTagRepo())
	ctx := context.Background()

	tests := []struct {
		name         string
		principal    access.Principal
		expectedCode string
	}{
		{"Anonymous", access.Anonymous(), models.CodeAuthRequired},
		{"Reader", reader, models.CodePermissionDenied},
		{"Author", author, models.CodePermissionDenied},
		{"Admin", admin, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCategory(ctx, tt.principal, "Tech")
			if tt.expectedCode == "" {
				assert.NoError(t, err)
			} else {
				assertAppErrorCode(t, err, tt.expectedCode)
			}

			_, err = svc.CreateTag(ctx, tt.principal, "golang")
			if tt.expectedCode == "" {
				assert.NoError(t, err)
			} else {
				assertAppErrorCode(t, err, tt.expectedCode)
			}
		})
	}
}

func TestTaxonomyService_CreateCategory_SlugDedup(t *testing.T) {
	repo := noopCategoryRepo()
	taken := map[string]bool{"tech": true}
	repo.slugExistsFn = func(_ context.Context, s string) (bool, error) { return taken[s], nil }

	var created *models.Category
	repo.createFn = func(_ context.Context, c *models.Category) error {
		created = c
		return nil
	}

	svc := NewTaxonomyService(repo, noopTagRepo())
	_, err := svc.CreateCategory(context.Background(), admin, "Tech")
	require.NoError(t, err)
	assert.Equal(t, "tech-1", created.Slug)
}

func TestTaxonomyService_RenameCategory_SlugStable(t *testing.T) {
	repo := noopCategoryRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Category, error) {
		return &models.Category{ID: id, Name: "Tech", Slug: "tech"}, nil
	}

	svc := NewTaxonomyService(repo, noopTagRepo())
	category, err := svc.RenameCategory(context.Background(), admin, 1, "Technology")
	require.NoError(t, err)
	assert.Equal(t, "Technology", category.Name)
	assert.Equal(t, "tech", category.Slug)
}
