package visibility

import (
	"context"
	"testing"

	"socialnet/backend/internal/models"
	"socialnet/backend/internal/relationship"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests run the resolver and feed against the real relationship
// engine instead of a fake, so state transitions and visibility are
// exercised together.

func newLiveStack(userIDs ...uint) (relationship.Engine, *Resolver) {
	store := relationship.NewMemStore()
	store.AddUsers(userIDs...)
	engine := relationship.NewEngine(store, store)
	return engine, NewResolver(engine)
}

func TestFriendsPostAppearsAfterAccept(t *testing.T) {
	engine, resolver := newLiveStack(1, 2)
	source := &fakePostSource{posts: []models.Post{
		post(1, 1, models.PrivacyFriends),
	}}
	feed := NewFeed(source, resolver)

	// Pending request is not enough
	f, err := engine.SendRequest(context.Background(), 2, 1)
	require.NoError(t, err)

	posts, err := feed.For(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, posts, "a pending request must not reveal friends-only posts")

	// Acceptance makes the post visible
	_, err = engine.Accept(context.Background(), f.ID, 1)
	require.NoError(t, err)

	posts, err = feed.For(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, postIDs(posts))
}

func TestBlockHidesFriendsContentButNotPublic(t *testing.T) {
	engine, resolver := newLiveStack(1, 2)

	_, err := engine.Follow(context.Background(), 2, 1)
	require.NoError(t, err)

	ok, err := resolver.CanView(context.Background(), 1, 2, models.PrivacyFriends)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, engine.Block(context.Background(), 1, 2))

	// The block severs the friendship for FRIENDS-mode content
	ok, err = resolver.CanView(context.Background(), 1, 2, models.PrivacyFriends)
	require.NoError(t, err)
	assert.False(t, ok)

	// It works in the other direction too
	ok, err = resolver.CanView(context.Background(), 2, 1, models.PrivacyFriends)
	require.NoError(t, err)
	assert.False(t, ok)

	// Public content stays public
	ok, err = resolver.CanView(context.Background(), 1, 2, models.PrivacyPublic)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnfriendRemovesFeedAccess(t *testing.T) {
	engine, resolver := newLiveStack(1, 2)
	source := &fakePostSource{posts: []models.Post{
		post(1, 1, models.PrivacyFriends),
		post(2, 1, models.PrivacyPublic),
	}}
	feed := NewFeed(source, resolver)

	_, err := engine.Follow(context.Background(), 2, 1)
	require.NoError(t, err)

	posts, err := feed.For(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, postIDs(posts))

	require.NoError(t, engine.Unfriend(context.Background(), 1, 2))

	posts, err = feed.For(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, postIDs(posts), "only the public post survives the unfriend")
}
