package models

import "gorm.io/gorm"

// PrivacyMode controls who may see a post.
type PrivacyMode string

const (
	PrivacyPublic  PrivacyMode = "public"
	PrivacyFriends PrivacyMode = "friends"
	PrivacyPrivate PrivacyMode = "private"
)

// Valid reports whether m is one of the known privacy modes.
func (m PrivacyMode) Valid() bool {
	switch m {
	case PrivacyPublic, PrivacyFriends, PrivacyPrivate:
		return true
	}
	return false
}

// Post represents a user's post. Deletion is soft: IsDeleted is flipped and
// the row kept, so reactions and comments stay consistent.
type Post struct {
	gorm.Model
	UserID      uint        `gorm:"not null;index"`
	Caption     string      `gorm:"type:text"`
	PrivacyMode PrivacyMode `gorm:"type:varchar(20);not null;default:'public'"`
	IsDeleted   bool        `gorm:"not null;default:false;index"`

	User  User        `gorm:"foreignKey:UserID"`
	Media []PostMedia `gorm:"foreignKey:PostID"`
}

// PostMedia is one media attachment of a post, kept in OrderIndex order.
type PostMedia struct {
	gorm.Model
	PostID     uint   `gorm:"not null;index"`
	MediaURL   string `gorm:"size:512;not null"`
	MediaType  string `gorm:"size:50;not null"`
	OrderIndex int    `gorm:"not null;default:0"`
}
