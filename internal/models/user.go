package models

import "gorm.io/gorm"

// User represents a user in the system.
type User struct {
	gorm.Model
	Nickname     string `gorm:"size:255;unique;not null"`
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	FullName     string `gorm:"size:255"`
	AvatarURL    string `gorm:"size:512"`
	Bio          string
	Role         string `gorm:"size:50;not null;default:'user';index"`
}
