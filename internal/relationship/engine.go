// Package relationship owns the state machine for user relationships:
// friend requests, friendships, follows and blocks. A single record exists
// per unordered user pair; direction is preserved so accept/cancel authority
// and follow/block direction stay recoverable. All mutations on one pair are
// serialized; operations on disjoint pairs proceed in parallel.
package relationship

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"socialnet/backend/internal/models"
	"socialnet/backend/pkg/apperr"
)

// Engine is the public contract of the relationship state machine. Handlers
// depend on this interface.
type Engine interface {
	// SendRequest creates a pending relationship from requester to addressee.
	SendRequest(ctx context.Context, requesterID, addresseeID uint) (*models.Friendship, error)

	// Accept transitions a pending relationship to accepted. Only the
	// addressee may accept.
	Accept(ctx context.Context, relationshipID, actingUserID uint) (*models.Friendship, error)

	// Cancel deletes a pending relationship. Only the requester may cancel.
	Cancel(ctx context.Context, relationshipID, actingUserID uint) error

	// Follow creates an accepted relationship directly, with the follower
	// as requester.
	Follow(ctx context.Context, followerID, targetID uint) (*models.Friendship, error)

	// Unfriend deletes the accepted relationship between two users,
	// regardless of direction.
	Unfriend(ctx context.Context, userA, userB uint) error

	// Block replaces any pending or accepted relationship between blocker
	// and target with a blocked record whose requester is the blocker. An
	// already blocked pair is left untouched, whichever side blocked first.
	Block(ctx context.Context, blockerID, targetID uint) error

	// AreFriends reports whether an accepted relationship exists between
	// the two users in either direction. A user is always their own friend.
	AreFriends(ctx context.Context, a, b uint) (bool, error)

	// IsBlocked reports whether a blocked relationship exists between the
	// two users, in either direction.
	IsBlocked(ctx context.Context, a, b uint) (bool, error)

	// FriendsOf returns the user's accepted relationships, either direction.
	FriendsOf(ctx context.Context, userID uint) ([]models.Friendship, error)

	// IncomingPending returns pending requests sent to the user.
	IncomingPending(ctx context.Context, userID uint) ([]models.Friendship, error)

	// OutgoingPending returns pending requests the user has sent.
	OutgoingPending(ctx context.Context, userID uint) ([]models.Friendship, error)

	// FollowersOf returns accepted relationships where others follow the user.
	FollowersOf(ctx context.Context, userID uint) ([]models.Friendship, error)

	// FollowingOf returns accepted relationships where the user follows others.
	FollowingOf(ctx context.Context, userID uint) ([]models.Friendship, error)
}

// lockStripes is the number of pair-lock stripes. Two pairs may share a
// stripe, which costs throughput but never correctness.
const lockStripes = 64

type engine struct {
	store Store
	users UserDirectory
	locks [lockStripes]sync.Mutex
}

// NewEngine builds an Engine over a relationship store and a user directory.
func NewEngine(store Store, users UserDirectory) Engine {
	return &engine{store: store, users: users}
}

// lockPair serializes check-then-act sequences on one unordered pair. The
// returned func releases the lock.
func (e *engine) lockPair(a, b uint) func() {
	lo, hi := models.PairKey(a, b)
	i := (lo*31 + hi) % lockStripes
	e.locks[i].Lock()
	return e.locks[i].Unlock
}

// requireUsers fails with NotFound unless every given user id exists.
func (e *engine) requireUsers(ctx context.Context, ids ...uint) error {
	for _, id := range ids {
		ok, err := e.users.UserExists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: user %d", apperr.ErrNotFound, id)
		}
	}
	return nil
}

// conflictFor describes an existing relationship blocking a new one, with a
// message precise enough for callers to surface directly.
func conflictFor(existing *models.Friendship) error {
	switch existing.Status {
	case models.StatusPending:
		return fmt.Errorf("%w: a friend request between these users already exists", apperr.ErrConflict)
	case models.StatusAccepted:
		return fmt.Errorf("%w: these users are already friends", apperr.ErrConflict)
	case models.StatusBlocked:
		return fmt.Errorf("%w: relationship is blocked", apperr.ErrConflict)
	}
	return fmt.Errorf("%w: a relationship between these users already exists", apperr.ErrConflict)
}

// createPair is the shared body of SendRequest and Follow.
func (e *engine) createPair(ctx context.Context, requesterID, addresseeID uint, status models.FriendshipStatus) (*models.Friendship, error) {
	if requesterID == addresseeID {
		return nil, fmt.Errorf("%w: cannot create a relationship with yourself", apperr.ErrInvalidOperation)
	}
	if err := e.requireUsers(ctx, requesterID, addresseeID); err != nil {
		return nil, err
	}

	unlock := e.lockPair(requesterID, addresseeID)
	defer unlock()

	existing, err := e.store.ByPair(ctx, requesterID, addresseeID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, conflictFor(existing)
	}

	f := &models.Friendship{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      status,
	}
	if err := e.store.Insert(ctx, f); err != nil {
		// A concurrent writer on another engine instance can still win the
		// race; the store's pair uniqueness is the backstop.
		if errors.Is(err, ErrDuplicatePair) {
			return nil, fmt.Errorf("%w: a relationship between these users already exists", apperr.ErrConflict)
		}
		return nil, err
	}
	return f, nil
}

func (e *engine) SendRequest(ctx context.Context, requesterID, addresseeID uint) (*models.Friendship, error) {
	return e.createPair(ctx, requesterID, addresseeID, models.StatusPending)
}

func (e *engine) Follow(ctx context.Context, followerID, targetID uint) (*models.Friendship, error) {
	return e.createPair(ctx, followerID, targetID, models.StatusAccepted)
}

func (e *engine) Accept(ctx context.Context, relationshipID, actingUserID uint) (*models.Friendship, error) {
	f, err := e.store.ByID(ctx, relationshipID)
	if err != nil {
		return nil, err
	}

	unlock := e.lockPair(f.RequesterID, f.AddresseeID)
	defer unlock()

	// Re-read under the pair lock; the record may have changed in between.
	f, err = e.store.ByID(ctx, relationshipID)
	if err != nil {
		return nil, err
	}
	if f.AddresseeID != actingUserID {
		return nil, fmt.Errorf("%w: only the addressee can accept a friend request", apperr.ErrForbidden)
	}
	if f.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: request is not pending", apperr.ErrInvalidState)
	}

	if err := e.store.UpdateStatus(ctx, relationshipID, models.StatusAccepted); err != nil {
		return nil, err
	}
	f.Status = models.StatusAccepted
	return f, nil
}

func (e *engine) Cancel(ctx context.Context, relationshipID, actingUserID uint) error {
	f, err := e.store.ByID(ctx, relationshipID)
	if err != nil {
		return err
	}

	unlock := e.lockPair(f.RequesterID, f.AddresseeID)
	defer unlock()

	f, err = e.store.ByID(ctx, relationshipID)
	if err != nil {
		return err
	}
	if f.RequesterID != actingUserID {
		return fmt.Errorf("%w: only the requester can cancel a friend request", apperr.ErrForbidden)
	}
	if f.Status != models.StatusPending {
		return fmt.Errorf("%w: request is not pending", apperr.ErrInvalidState)
	}

	return e.store.Delete(ctx, relationshipID)
}

func (e *engine) Unfriend(ctx context.Context, userA, userB uint) error {
	unlock := e.lockPair(userA, userB)
	defer unlock()

	f, err := e.store.AcceptedBetween(ctx, userA, userB)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("%w: these users are not friends", apperr.ErrNotFound)
		}
		return err
	}
	return e.store.Delete(ctx, f.ID)
}

func (e *engine) Block(ctx context.Context, blockerID, targetID uint) error {
	if blockerID == targetID {
		return fmt.Errorf("%w: cannot block yourself", apperr.ErrInvalidOperation)
	}
	if err := e.requireUsers(ctx, blockerID, targetID); err != nil {
		return err
	}

	unlock := e.lockPair(blockerID, targetID)
	defer unlock()

	existing, err := e.store.ByPair(ctx, blockerID, targetID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	if existing != nil {
		// An already blocked pair stays as is, whichever side blocked first.
		if existing.Status == models.StatusBlocked {
			return nil
		}
		// Replace rather than mutate so the requester side always names the
		// blocker.
		if err := e.store.Delete(ctx, existing.ID); err != nil {
			return err
		}
	}

	return e.store.Insert(ctx, &models.Friendship{
		RequesterID: blockerID,
		AddresseeID: targetID,
		Status:      models.StatusBlocked,
	})
}

func (e *engine) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	if a == b {
		return true, nil
	}
	_, err := e.store.AcceptedBetween(ctx, a, b)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (e *engine) IsBlocked(ctx context.Context, a, b uint) (bool, error) {
	if a == b {
		return false, nil
	}
	f, err := e.store.ByPair(ctx, a, b)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return f.Status == models.StatusBlocked, nil
}

func (e *engine) FriendsOf(ctx context.Context, userID uint) ([]models.Friendship, error) {
	rels, err := e.store.ListByStatus(ctx, userID, models.StatusAccepted, RoleAny)
	if err != nil {
		return nil, err
	}
	return dedupByCounterpart(userID, rels), nil
}

func (e *engine) IncomingPending(ctx context.Context, userID uint) ([]models.Friendship, error) {
	rels, err := e.store.ListByStatus(ctx, userID, models.StatusPending, RoleAddressee)
	if err != nil {
		return nil, err
	}
	return dedupByCounterpart(userID, rels), nil
}

func (e *engine) OutgoingPending(ctx context.Context, userID uint) ([]models.Friendship, error) {
	rels, err := e.store.ListByStatus(ctx, userID, models.StatusPending, RoleRequester)
	if err != nil {
		return nil, err
	}
	return dedupByCounterpart(userID, rels), nil
}

func (e *engine) FollowersOf(ctx context.Context, userID uint) ([]models.Friendship, error) {
	rels, err := e.store.ListByStatus(ctx, userID, models.StatusAccepted, RoleAddressee)
	if err != nil {
		return nil, err
	}
	return dedupByCounterpart(userID, rels), nil
}

func (e *engine) FollowingOf(ctx context.Context, userID uint) ([]models.Friendship, error) {
	rels, err := e.store.ListByStatus(ctx, userID, models.StatusAccepted, RoleRequester)
	if err != nil {
		return nil, err
	}
	return dedupByCounterpart(userID, rels), nil
}

// dedupByCounterpart keeps the first relationship seen per counterpart user,
// preserving insertion order.
func dedupByCounterpart(userID uint, rels []models.Friendship) []models.Friendship {
	seen := make(map[uint]struct{}, len(rels))
	out := make([]models.Friendship, 0, len(rels))
	for _, f := range rels {
		other := f.CounterpartOf(userID)
		if _, ok := seen[other]; ok {
			continue
		}
		seen[other] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Counterparts maps relationships to the user ids facing userID, in order.
func Counterparts(userID uint, rels []models.Friendship) []uint {
	ids := make([]uint, 0, len(rels))
	for _, f := range rels {
		ids = append(ids, f.CounterpartOf(userID))
	}
	return ids
}
