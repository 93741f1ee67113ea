package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a post in the Inkwell application.
//
// Threads are two levels deep: a comment with ParentID == nil is top-level,
// anything else is a reply. A reply's parent must belong to the same post.
type Comment struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	Text     string `gorm:"type:text;not null" json:"text"`
	UserID   uint  `gorm:"not null;index" json:"user_id"`
	PostID   uint  `gorm:"not null;index" json:"post_id"`
	ParentID *uint `gorm:"index" json:"parent_id,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"user"`
	Post Post `gorm:"foreignKey:PostID" json:"post,omitempty"`

	// Replies is assembled by the repository's grouped thread query; it is
	// never loaded through GORM association traversal.
	Replies []*Comment `gorm:"-" json:"replies"`

	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
