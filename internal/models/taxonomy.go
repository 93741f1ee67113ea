package models

// Category groups posts by broad subject. Pure reference data: deleting a
// category removes only the associations, never the posts.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"unique;not null;size:100" json:"name"`
	Slug string `gorm:"uniqueIndex;not null" json:"slug"`

	Posts []Post `gorm:"many2many:post_categories" json:"-"`
}

// Tag is a free-form label on posts. Same reference-data semantics as Category.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"unique;not null;size:50" json:"name"`
	Slug string `gorm:"uniqueIndex;not null" json:"slug"`

	Posts []Post `gorm:"many2many:post_tags" json:"-"`
}
