package relationship

import (
	"context"
	"errors"
	"sync"
	"testing"

	"socialnet/backend/internal/models"
	"socialnet/backend/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(userIDs ...uint) (Engine, *MemStore) {
	store := NewMemStore()
	store.AddUsers(userIDs...)
	return NewEngine(store, store), store
}

func TestSendRequestCreatesPending(t *testing.T) {
	engine, _ := newTestEngine(1, 2)

	f, err := engine.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)

	assert.Equal(t, uint(1), f.RequesterID)
	assert.Equal(t, uint(2), f.AddresseeID)
	assert.Equal(t, models.StatusPending, f.Status)

	friends, err := engine.AreFriends(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, friends, "a pending request must not count as friendship")
}

func TestSendRequestToSelf(t *testing.T) {
	engine, _ := newTestEngine(1)

	_, err := engine.SendRequest(context.Background(), 1, 1)
	assert.ErrorIs(t, err, apperr.ErrInvalidOperation)
}

func TestSendRequestToUnknownUser(t *testing.T) {
	engine, _ := newTestEngine(1)

	_, err := engine.SendRequest(context.Background(), 1, 99)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSendRequestDuplicateConflicts(t *testing.T) {
	engine, store := newTestEngine(1, 2)

	_, err := engine.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)

	// Same direction
	_, err = engine.SendRequest(context.Background(), 1, 2)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// Opposite direction hits the same pair record
	_, err = engine.SendRequest(context.Background(), 2, 1)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	assert.Equal(t, 1, store.Len())
}

func TestAcceptByAddressee(t *testing.T) {
	engine, _ := newTestEngine(1, 2)

	f, err := engine.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)

	accepted, err := engine.Accept(context.Background(), f.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, accepted.Status)

	// Friendship is symmetric once accepted
	friends, err := engine.AreFriends(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, friends)

	friends, err = engine.AreFriends(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.True(t, friends)
}

func TestAcceptByRequesterForbidden(t *testing.T) {
	engine, _ := newTestEngine(1, 2)

	f, err := engine.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)

	_, err = engine.Accept(context.Background(), f.ID, 1)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestAcceptByThirdPartyForbidden(t *testing.T) {
	engine, _ := newTestEngine(1, 2, 3)

	f, err := engine.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)

	_, err = engine.Accept(context.Background(), f.ID, 3)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestAcceptNonPendingInvalidState(t *testing.T) {
	engine, _ := newTestEngine(1, 2)

	f, err := engine.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)

	_, err = engine.Accept(context.Background(), f.ID, 2)
	require.NoError(t, err)

	_, err = engine.Accept(context.Background(), f.ID, 2)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestAcceptMissingRelationship(t *testing.T) {
	engine, _ := newTestEngine(1)

	_, err := engine.Accept(context.Background(), 42, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCancelByRequester(t *testing.T) {
	engine, store := newTestEngine(1, 2)

	f, err := engine.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)

	require.NoError(t, engine.Cancel(context.Background(), f.ID, 1))
	assert.Equal(t, 0, store.Len())

	// The pair is clean again
	_, err = engine.SendRequest(context.Background(), 2, 1)
	assert.NoError(t, err)
}

func TestCancelByAddresseeForbidden(t *testing.T) {
	engine, _ := newTestEngine(1, 2)

	f, err := engine.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)

	err = engine.Cancel(context.Background(), f.ID, 2)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestCancelAcceptedInvalidState(t *testing.T) {
	engine, _ := newTestEngine(1, 2)

	f, err := engine.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)
	_, err = engine.Accept(context.Background(), f.ID, 2)
	require.NoError(t, err)

	err = engine.Cancel(context.Background(), f.ID, 1)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestFollowIsImmediatelyAccepted(t *testing.T) {
	engine, _ := newTestEngine(1, 2)

	f, err := engine.Follow(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, f.Status)
	assert.Equal(t, uint(1), f.RequesterID)

	friends, err := engine.AreFriends(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.True(t, friends)
}

func TestFollowExistingPairConflicts(t *testing.T) {
	engine, _ := newTestEngine(1, 2)

	_, err := engine.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)

	_, err = engine.Follow(context.Background(), 2, 1)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestUnfriendRemovesPair(t *testing.T) {
	engine, store := newTestEngine(1, 2)

	_, err := engine.Follow(context.Background(), 1, 2)
	require.NoError(t, err)

	// Direction does not matter for unfriending
	require.NoError(t, engine.Unfriend(context.Background(), 2, 1))
	assert.Equal(t, 0, store.Len())

	friends, err := engine.AreFriends(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, friends)

	// A fresh request can follow the removal
	_, err = engine.SendRequest(context.Background(), 2, 1)
	assert.NoError(t, err)
}

func TestUnfriendWithoutFriendship(t *testing.T) {
	engine, _ := newTestEngine(1, 2)

	err := engine.Unfriend(context.Background(), 1, 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// Pending is not enough
	_, err = engine.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)
	err = engine.Unfriend(context.Background(), 1, 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestBlockReplacesPending(t *testing.T) {
	engine, store := newTestEngine(1, 2)

	_, err := engine.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)

	// The addressee blocks; the record flips with the blocker as requester
	require.NoError(t, engine.Block(context.Background(), 2, 1))
	require.Equal(t, 1, store.Len())

	f, err := store.ByPair(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBlocked, f.Status)
	assert.Equal(t, uint(2), f.RequesterID)
}

func TestBlockReplacesFriendship(t *testing.T) {
	engine, store := newTestEngine(1, 2)

	_, err := engine.Follow(context.Background(), 1, 2)
	require.NoError(t, err)

	require.NoError(t, engine.Block(context.Background(), 1, 2))

	friends, err := engine.AreFriends(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, friends)

	f, err := store.ByPair(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBlocked, f.Status)
}

func TestBlockIdempotentForSameBlocker(t *testing.T) {
	engine, store := newTestEngine(1, 2)

	require.NoError(t, engine.Block(context.Background(), 1, 2))
	before, err := store.ByPair(context.Background(), 1, 2)
	require.NoError(t, err)

	require.NoError(t, engine.Block(context.Background(), 1, 2))
	after, err := store.ByPair(context.Background(), 1, 2)
	require.NoError(t, err)

	assert.Equal(t, before.ID, after.ID, "repeat block by the same user must not touch the record")
}

func TestBlockCounterBlockIsNoop(t *testing.T) {
	engine, store := newTestEngine(1, 2)

	require.NoError(t, engine.Block(context.Background(), 1, 2))
	before, err := store.ByPair(context.Background(), 1, 2)
	require.NoError(t, err)

	// A block from the other side leaves the existing record untouched
	require.NoError(t, engine.Block(context.Background(), 2, 1))

	after, err := store.ByPair(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, models.StatusBlocked, after.Status)
	assert.Equal(t, uint(1), after.RequesterID, "the first blocker stays on record")
	assert.Equal(t, 1, store.Len())
}

func TestBlockedPairRejectsNewRelationships(t *testing.T) {
	engine, _ := newTestEngine(1, 2)

	require.NoError(t, engine.Block(context.Background(), 1, 2))

	_, err := engine.SendRequest(context.Background(), 2, 1)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = engine.Follow(context.Background(), 2, 1)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestBlockSelf(t *testing.T) {
	engine, _ := newTestEngine(1)

	err := engine.Block(context.Background(), 1, 1)
	assert.ErrorIs(t, err, apperr.ErrInvalidOperation)
}

func TestIsBlockedEitherDirection(t *testing.T) {
	engine, _ := newTestEngine(1, 2)

	require.NoError(t, engine.Block(context.Background(), 1, 2))

	blocked, err := engine.IsBlocked(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = engine.IsBlocked(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.True(t, blocked)
}

func TestAreFriendsWithSelf(t *testing.T) {
	engine, _ := newTestEngine(1)

	friends, err := engine.AreFriends(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.True(t, friends)
}

func TestProjections(t *testing.T) {
	engine, _ := newTestEngine(1, 2, 3, 4, 5)

	// 1 follows 2, 3 follows 1, 1 requested 4, 5 requested 1
	_, err := engine.Follow(context.Background(), 1, 2)
	require.NoError(t, err)
	_, err = engine.Follow(context.Background(), 3, 1)
	require.NoError(t, err)
	_, err = engine.SendRequest(context.Background(), 1, 4)
	require.NoError(t, err)
	_, err = engine.SendRequest(context.Background(), 5, 1)
	require.NoError(t, err)

	friends, err := engine.FriendsOf(context.Background(), 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{2, 3}, Counterparts(1, friends))

	following, err := engine.FollowingOf(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, Counterparts(1, following))

	followers, err := engine.FollowersOf(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{3}, Counterparts(1, followers))

	outgoing, err := engine.OutgoingPending(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{4}, Counterparts(1, outgoing))

	incoming, err := engine.IncomingPending(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{5}, Counterparts(1, incoming))
}

func TestConcurrentOpposingRequests(t *testing.T) {
	engine, store := newTestEngine(1, 2)

	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = engine.SendRequest(context.Background(), 1, 2)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = engine.SendRequest(context.Background(), 2, 1)
	}()
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, apperr.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes, "exactly one request must win")
	assert.Equal(t, 1, conflicts, "the loser must see a conflict")
	assert.Equal(t, 1, store.Len())
}

func TestConcurrentBlockAndRequest(t *testing.T) {
	engine, store := newTestEngine(1, 2)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = engine.Block(context.Background(), 1, 2)
	}()
	go func() {
		defer wg.Done()
		_, _ = engine.SendRequest(context.Background(), 2, 1)
	}()
	wg.Wait()

	// Whatever the interleaving, a single record remains for the pair.
	assert.Equal(t, 1, store.Len())
}
