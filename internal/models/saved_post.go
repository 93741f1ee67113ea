package models

import "time"

// SavedPost is a user's personal bookmark on a post. Unique per (user, post);
// visible only to the owning user. Rows are hard-deleted on unsave so the
// composite unique index stays authoritative for toggle semantics.
type SavedPost struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	UserID  uint      `gorm:"not null;uniqueIndex:idx_saved_user_post" json:"user_id"`
	PostID  uint      `gorm:"not null;uniqueIndex:idx_saved_user_post" json:"post_id"`
	SavedAt time.Time `gorm:"autoCreateTime" json:"saved_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Post Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
}
