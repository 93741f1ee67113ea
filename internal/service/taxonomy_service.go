package service

import (
	"context"

	"inkwell/internal/access"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/slug"
)

// TaxonomyService manages categories and tags. Reads are public; writes are
// admin-only.
type TaxonomyService struct {
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
}

func NewTaxonomyService(categoryRepo repository.CategoryRepository, tagRepo repository.TagRepository) *TaxonomyService {
	return &TaxonomyService{categoryRepo: categoryRepo, tagRepo: tagRepo}
}

const (
	maxCategoryNameLen = 100
	maxTagNameLen      = 50
)

func (s *TaxonomyService) requireAdmin(principal access.Principal) error {
	if principal.IsAnonymous {
		return models.NewAuthRequiredError("Authentication required")
	}
	if !access.IsAdmin(principal) {
		return models.NewPermissionDeniedError("Admin access required")
	}
	return nil
}

func (s *TaxonomyService) CreateCategory(ctx context.Context, principal access.Principal, name string) (*models.Category, error) {
	if err := s.requireAdmin(principal); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if len(name) > maxCategoryNameLen {
		return nil, models.NewValidationError("Name too long (max 100 characters)")
	}

	categorySlug, err := slug.Unique(ctx, slug.Generate(name), s.categoryRepo.SlugExists)
	if err != nil {
		return nil, err
	}

	category := &models.Category{Name: name, Slug: categorySlug}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *TaxonomyService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *TaxonomyService) GetCategory(ctx context.Context, categorySlug string) (*models.Category, error) {
	return s.categoryRepo.GetBySlug(ctx, categorySlug)
}

// RenameCategory changes the display name. The slug stays stable so links to
// category pages keep working.
func (s *TaxonomyService) RenameCategory(ctx context.Context, principal access.Principal, id uint, name string) (*models.Category, error) {
	if err := s.requireAdmin(principal); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if len(name) > maxCategoryNameLen {
		return nil, models.NewValidationError("Name too long (max 100 characters)")
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = name
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *TaxonomyService) DeleteCategory(ctx context.Context, principal access.Principal, id uint) error {
	if err := s.requireAdmin(principal); err != nil {
		return err
	}
	return s.categoryRepo.Delete(ctx, id)
}

func (s *TaxonomyService) CreateTag(ctx context.Context, principal access.Principal, name string) (*models.Tag, error) {
	if err := s.requireAdmin(principal); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if len(name) > maxTagNameLen {
		return nil, models.NewValidationError("Name too long (max 50 characters)")
	}

	tagSlug, err := slug.Unique(ctx, slug.Generate(name), s.tagRepo.SlugExists)
	if err != nil {
		return nil, err
	}

	tag := &models.Tag{Name: name, Slug: tagSlug}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *TaxonomyService) ListTags(ctx context.Context) ([]*models.Tag, error) {
	return s.tagRepo.List(ctx)
}

func (s *TaxonomyService) GetTag(ctx context.Context, tagSlug string) (*models.Tag, error) {
	return s.tagRepo.GetBySlug(ctx, tagSlug)
}

func (s *TaxonomyService) DeleteTag(ctx context.Context, principal access.Principal, id uint) error {
	if err := s.requireAdmin(principal); err != nil {
		return err
	}
	return s.tagRepo.Delete(ctx, id)
}
