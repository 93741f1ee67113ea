package models

import (
	"time"

	"gorm.io/gorm"
)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// ValidPostStatus reports whether s is a known publication state.
func ValidPostStatus(s PostStatus) bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

// Post represents a blog post in the Inkwell application.
//
// A draft post is visible only to its author and to admins. Ownership is
// exclusive and immutable: UserID is bound at creation and never changes.
type Post struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	Title    string     `gorm:"not null" json:"title"`
	Slug     string     `gorm:"uniqueIndex;not null" json:"slug"`
	Content  string     `gorm:"type:text;not null" json:"content"`
	ImageRef string     `json:"image_ref,omitempty"`
	Status   PostStatus `gorm:"type:varchar(10);not null;default:draft;index" json:"status"`
	UserID   uint       `gorm:"not null;index" json:"user_id"`
	User     User       `gorm:"foreignKey:UserID" json:"author"`

	Categories []Category `gorm:"many2many:post_categories" json:"categories,omitempty"`
	Tags       []Tag      `gorm:"many2many:post_tags" json:"tags,omitempty"`

	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked bool `gorm:"->" json:"liked"`
	// Saved indicates whether the current requesting user bookmarked this post (computed)
	Saved bool `gorm:"->" json:"saved"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
