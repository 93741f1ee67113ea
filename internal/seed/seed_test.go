package seed

import (
	"testing"

	"inkwell/internal/models"
)

func TestSeeder_Apply(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	s := NewSeeder(db, Options{SkipBcrypt: true})

	preset := Preset{
		Name:            "test",
		Readers:         3,
		Authors:         2,
		PostsPerAuthor:  4,
		CommentsPerPost: 3,
		ReplyRate:       0.5,
		LikeRate:        0.5,
		SaveRate:        0.25,
	}
	if err := s.Apply(preset); err != nil {
		t.Fatalf("apply preset: %v", err)
	}

	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	// admin + authors + readers
	if want := int64(1 + preset.Authors + preset.Readers); userCount != want {
		t.Fatalf("expected %d users, got %d", want, userCount)
	}

	var admin models.User
	if err := db.Where("email = ?", "admin@inkwell.dev").First(&admin).Error; err != nil {
		t.Fatalf("admin account missing: %v", err)
	}
	if admin.Role != models.RoleAdmin {
		t.Fatalf("expected admin role, got %v", admin.Role)
	}

	var postCount int64
	if err := db.Model(&models.Post{}).Count(&postCount).Error; err != nil {
		t.Fatalf("count posts: %v", err)
	}
	if want := int64(preset.Authors * preset.PostsPerAuthor); postCount != want {
		t.Fatalf("expected %d posts, got %d", want, postCount)
	}

	// Comments only land on published posts, and threads stay two levels
	// deep: no comment's parent is itself a reply.
	var badParents int64
	err := db.Model(&models.Comment{}).
		Joins("JOIN comments parents ON parents.id = comments.parent_id").
		Where("parents.parent_id IS NOT NULL").
		Count(&badParents).Error
	if err != nil {
		t.Fatalf("count nested replies: %v", err)
	}
	if badParents != 0 {
		t.Fatalf("found %d replies nested below the top level", badParents)
	}

	var draftComments int64
	err = db.Model(&models.Comment{}).
		Joins("JOIN posts ON posts.id = comments.post_id").
		Where("posts.status <> ?", models.PostStatusPublished).
		Count(&draftComments).Error
	if err != nil {
		t.Fatalf("count draft comments: %v", err)
	}
	if draftComments != 0 {
		t.Fatalf("found %d comments on unpublished posts", draftComments)
	}
}

func TestSeeder_ClearAll(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	s := NewSeeder(db, Options{SkipBcrypt: true})

	if err := s.Apply(Presets["minimal"]); err != nil {
		t.Fatalf("apply preset: %v", err)
	}
	if err := s.ClearAll(); err != nil {
		t.Fatalf("clear all: %v", err)
	}

	for _, model := range []interface{}{
		&models.User{}, &models.Post{}, &models.Comment{},
		&models.Like{}, &models.SavedPost{},
		&models.Category{}, &models.Tag{},
	} {
		var count int64
		if err := db.Model(model).Count(&count).Error; err != nil {
			t.Fatalf("count %T: %v", model, err)
		}
		if count != 0 {
			t.Fatalf("expected %T to be empty after clear, found %d rows", model, count)
		}
	}
}

func TestSeeder_Apply_RejectsInvalidPreset(t *testing.T) {
	t.Parallel()

	s := NewSeeder(openTestDB(t), Options{SkipBcrypt: true})
	if err := s.Apply(Preset{Name: "broken", Authors: 0}); err == nil {
		t.Fatal("expected validation error for zero authors")
	}
}
