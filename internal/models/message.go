package models

import "gorm.io/gorm"

// Message represents a direct message between two users.
type Message struct {
	gorm.Model
	SenderID   uint   `gorm:"not null;index:idx_messages_conversation"`
	ReceiverID uint   `gorm:"not null;index:idx_messages_conversation"`
	Content    string `gorm:"type:text"`
	IsRead     bool   `gorm:"not null;default:false"`
	IsDeleted  bool   `gorm:"not null;default:false"`

	Sender   User           `gorm:"foreignKey:SenderID"`
	Receiver User           `gorm:"foreignKey:ReceiverID"`
	Media    []MessageMedia `gorm:"foreignKey:MessageID"`
}

// MessageMedia is one media attachment of a direct message.
type MessageMedia struct {
	gorm.Model
	MessageID    uint   `gorm:"not null;index"`
	MediaURL     string `gorm:"size:512;not null"`
	MediaType    string `gorm:"size:50;not null"`
	ThumbnailURL string `gorm:"size:512"`
}
