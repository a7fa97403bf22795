package models

import "gorm.io/gorm"

// PostReaction is a user's reaction to a post. At most one per (post, user);
// reacting again replaces the type.
type PostReaction struct {
	gorm.Model
	PostID       uint   `gorm:"not null;uniqueIndex:idx_post_reactions_post_user"`
	UserID       uint   `gorm:"not null;uniqueIndex:idx_post_reactions_post_user"`
	ReactionType string `gorm:"size:50;not null"`

	User User `gorm:"foreignKey:UserID"`
}
