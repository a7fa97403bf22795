package relationship

import (
	"context"
	"errors"

	"socialnet/backend/internal/models"
)

// ErrDuplicatePair is returned by Store.Insert when a record for the
// canonical unordered pair already exists. The engine translates it into a
// caller-facing conflict.
var ErrDuplicatePair = errors.New("relationship already exists for pair")

// Role selects which side of a relationship a user must occupy when listing
// by status.
type Role int

const (
	// RoleAny matches relationships where the user is on either side.
	RoleAny Role = iota
	// RoleRequester matches relationships the user initiated.
	RoleRequester
	// RoleAddressee matches relationships initiated toward the user.
	RoleAddressee
)

// Store is the durable keyed storage for relationship records. Lookups that
// find nothing return apperr.ErrNotFound. Mutations are single-round-trip
// and atomic: they either fully apply or leave the store unchanged.
type Store interface {
	// ByID returns the relationship with the given id.
	ByID(ctx context.Context, id uint) (*models.Friendship, error)

	// ByPair returns the relationship between two users regardless of
	// direction.
	ByPair(ctx context.Context, a, b uint) (*models.Friendship, error)

	// AcceptedBetween returns the accepted relationship between two users
	// regardless of direction.
	AcceptedBetween(ctx context.Context, a, b uint) (*models.Friendship, error)

	// ListByStatus returns the user's relationships with the given status,
	// filtered by the user's role, in insertion order.
	ListByStatus(ctx context.Context, userID uint, status models.FriendshipStatus, role Role) ([]models.Friendship, error)

	// Insert stores a new relationship, filling in its ID. Returns
	// ErrDuplicatePair if a record for the canonical pair already exists.
	Insert(ctx context.Context, f *models.Friendship) error

	// UpdateStatus transitions the relationship with the given id.
	UpdateStatus(ctx context.Context, id uint, status models.FriendshipStatus) error

	// Delete removes the relationship with the given id.
	Delete(ctx context.Context, id uint) error
}

// UserDirectory answers whether a user id refers to an existing user. The
// engine validates both actors through it before any mutation.
type UserDirectory interface {
	UserExists(ctx context.Context, id uint) (bool, error)
}
