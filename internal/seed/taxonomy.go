package seed

import (
	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInCategory is a permanent editorial category.
type BuiltInCategory struct {
	Name string
	Slug string
}

// BuiltInCategories defines the categories every deployment starts with.
var BuiltInCategories = []BuiltInCategory{
	{Name: "Engineering", Slug: "engineering"},
	{Name: "Essays", Slug: "essays"},
	{Name: "Tutorials", Slug: "tutorials"},
	{Name: "Reviews", Slug: "reviews"},
	{Name: "News", Slug: "news"},
	{Name: "Interviews", Slug: "interviews"},
	{Name: "Opinion", Slug: "opinion"},
	{Name: "Design", Slug: "design"},
}

// BuiltInTags defines a starter tag vocabulary so seeded posts have
// something to attach to.
var BuiltInTags = []string{
	"golang", "databases", "distributed-systems", "web", "performance",
	"testing", "devops", "security", "career", "open-source",
	"productivity", "writing",
}

// Taxonomy seeds the permanent categories and starter tags. Safe to run
// repeatedly: existing slugs are left untouched.
func Taxonomy(db *gorm.DB) error {
	for _, item := range BuiltInCategories {
		category := models.Category{Name: item.Name, Slug: item.Slug}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).Create(&category).Error
		if err != nil {
			return err
		}
	}

	for _, name := range BuiltInTags {
		tag := models.Tag{Name: name, Slug: name}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).Create(&tag).Error
		if err != nil {
			return err
		}
	}

	return nil
}
