package models

import "time"

// LikeTargetKind discriminates what a Like points at.
type LikeTargetKind string

const (
	LikeTargetPost    LikeTargetKind = "post"
	LikeTargetComment LikeTargetKind = "comment"
)

// LikeTarget is the tagged target of a like: exactly one of a post or a
// comment. Exclusivity is enforced here at the type level; the database
// backs it up with a CHECK constraint on the likes table.
type LikeTarget struct {
	Kind LikeTargetKind
	ID   uint
}

// PostTarget returns a like target pointing at the given post.
func PostTarget(postID uint) LikeTarget {
	return LikeTarget{Kind: LikeTargetPost, ID: postID}
}

// CommentTarget returns a like target pointing at the given comment.
func CommentTarget(commentID uint) LikeTarget {
	return LikeTarget{Kind: LikeTargetComment, ID: commentID}
}

// Validate rejects targets that name no entity or an unknown kind.
func (t LikeTarget) Validate() error {
	switch t.Kind {
	case LikeTargetPost, LikeTargetComment:
	default:
		return NewValidationError("Like target must be exactly one of post or comment")
	}
	if t.ID == 0 {
		return NewValidationError("Like target ID is required")
	}
	return nil
}

// Like represents a user's like on exactly one of a post or a comment.
// At most one row may exist per (user, target) pair; the pair uniqueness is
// enforced by partial unique indexes so likes can be toggled atomically.
// Rows are hard-deleted on unlike, so there is no soft-delete column here.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	PostID    *uint     `gorm:"index" json:"post_id,omitempty"`
	CommentID *uint     `gorm:"index" json:"comment_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	User    User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Post    *Post    `gorm:"foreignKey:PostID" json:"post,omitempty"`
	Comment *Comment `gorm:"foreignKey:CommentID" json:"comment,omitempty"`
}

// Target reconstructs the tagged target from the stored row.
func (l *Like) Target() LikeTarget {
	if l.PostID != nil {
		return PostTarget(*l.PostID)
	}
	if l.CommentID != nil {
		return CommentTarget(*l.CommentID)
	}
	return LikeTarget{}
}
