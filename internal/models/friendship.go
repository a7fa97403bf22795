package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// FriendshipStatus defines the state of a relationship between two users.
type FriendshipStatus string

const (
	// StatusPending means a friend request has been sent but not yet accepted.
	StatusPending FriendshipStatus = "pending"

	// StatusAccepted means the users are friends. A record created directly
	// with this status (no approval step) represents a follow; RequesterID
	// identifies the follower.
	StatusAccepted FriendshipStatus = "accepted"

	// StatusBlocked means the pair is blocked; RequesterID names whoever
	// blocked first. It replaces whatever record existed for the pair.
	StatusBlocked FriendshipStatus = "blocked"
)

// ErrSelfRelation is returned when both sides of a friendship are the same user.
var ErrSelfRelation = errors.New("friendship requires two distinct users")

// Friendship represents the single relationship record between two users.
// Direction is preserved in RequesterID/AddresseeID (who asked, who follows,
// who blocked); PairLo/PairHi hold the canonical unordered pair, and the
// unique index on them guarantees at most one record per pair at the store
// level.
type Friendship struct {
	ID          uint             `gorm:"primaryKey"`
	RequesterID uint             `gorm:"not null;index"`
	AddresseeID uint             `gorm:"not null;index"`
	PairLo      uint             `gorm:"not null;uniqueIndex:idx_friendships_pair"`
	PairHi      uint             `gorm:"not null;uniqueIndex:idx_friendships_pair"`
	Status      FriendshipStatus `gorm:"type:varchar(20);not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Requester User `gorm:"foreignKey:RequesterID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Addressee User `gorm:"foreignKey:AddresseeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// PairKey canonicalizes two user IDs into an order-independent (lo, hi) pair.
func PairKey(a, b uint) (lo, hi uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// BeforeSave keeps the canonical pair columns in sync and rejects
// self-relationships before they ever reach the store.
func (f *Friendship) BeforeSave(tx *gorm.DB) error {
	if f.RequesterID == f.AddresseeID {
		return ErrSelfRelation
	}
	f.PairLo, f.PairHi = PairKey(f.RequesterID, f.AddresseeID)
	return nil
}

// CounterpartOf returns the other user in the relationship.
func (f *Friendship) CounterpartOf(userID uint) uint {
	if f.RequesterID == userID {
		return f.AddresseeID
	}
	return f.RequesterID
}

// Involves reports whether userID is either side of the relationship.
func (f *Friendship) Involves(userID uint) bool {
	return f.RequesterID == userID || f.AddresseeID == userID
}
