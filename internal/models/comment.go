package models

import "gorm.io/gorm"

// Comment represents a comment on a post. A non-nil ParentCommentID makes it
// a reply; replies nest a single level deep.
type Comment struct {
	gorm.Model
	PostID          uint   `gorm:"not null;index"`
	UserID          uint   `gorm:"not null;index"`
	Content         string `gorm:"type:text;not null"`
	ParentCommentID *uint  `gorm:"index"`
	IsDeleted       bool   `gorm:"not null;default:false"`

	User          User     `gorm:"foreignKey:UserID"`
	ParentComment *Comment `gorm:"foreignKey:ParentCommentID"`
}
