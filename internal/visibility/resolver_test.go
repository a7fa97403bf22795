package visibility

import (
	"context"
	"testing"

	"socialnet/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFriendQuerier answers AreFriends from a fixed set of pairs.
type fakeFriendQuerier struct {
	pairs map[[2]uint]bool
}

func newFakeFriendQuerier() *fakeFriendQuerier {
	return &fakeFriendQuerier{pairs: map[[2]uint]bool{}}
}

func (q *fakeFriendQuerier) befriend(a, b uint) {
	lo, hi := models.PairKey(a, b)
	q.pairs[[2]uint{lo, hi}] = true
}

func (q *fakeFriendQuerier) unfriend(a, b uint) {
	lo, hi := models.PairKey(a, b)
	delete(q.pairs, [2]uint{lo, hi})
}

func (q *fakeFriendQuerier) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	if a == b {
		return true, nil
	}
	lo, hi := models.PairKey(a, b)
	return q.pairs[[2]uint{lo, hi}], nil
}

func TestCanViewOwnerAlwaysSees(t *testing.T) {
	resolver := NewResolver(newFakeFriendQuerier())

	for _, mode := range []models.PrivacyMode{models.PrivacyPublic, models.PrivacyFriends, models.PrivacyPrivate} {
		ok, err := resolver.CanView(context.Background(), 1, 1, mode)
		require.NoError(t, err)
		assert.True(t, ok, "owner must see their own %s content", mode)
	}
}

func TestCanViewPublic(t *testing.T) {
	resolver := NewResolver(newFakeFriendQuerier())

	ok, err := resolver.CanView(context.Background(), 1, 2, models.PrivacyPublic)
	require.NoError(t, err)
	assert.True(t, ok, "public content is visible to strangers")
}

func TestCanViewFriendsOnly(t *testing.T) {
	rel := newFakeFriendQuerier()
	resolver := NewResolver(rel)

	ok, err := resolver.CanView(context.Background(), 1, 2, models.PrivacyFriends)
	require.NoError(t, err)
	assert.False(t, ok, "strangers must not see friends-only content")

	rel.befriend(1, 2)
	ok, err = resolver.CanView(context.Background(), 1, 2, models.PrivacyFriends)
	require.NoError(t, err)
	assert.True(t, ok)

	// No caching: the next call reflects the unfriend immediately
	rel.unfriend(1, 2)
	ok, err = resolver.CanView(context.Background(), 1, 2, models.PrivacyFriends)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanViewPrivate(t *testing.T) {
	rel := newFakeFriendQuerier()
	rel.befriend(1, 2)
	resolver := NewResolver(rel)

	ok, err := resolver.CanView(context.Background(), 1, 2, models.PrivacyPrivate)
	require.NoError(t, err)
	assert.False(t, ok, "private content is owner-only even for friends")
}

func TestCanViewUnknownModeIsOwnerOnly(t *testing.T) {
	resolver := NewResolver(newFakeFriendQuerier())

	ok, err := resolver.CanView(context.Background(), 1, 2, models.PrivacyMode("weird"))
	require.NoError(t, err)
	assert.False(t, ok)
}
